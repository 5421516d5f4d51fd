// Package store persists fetched list pages on disk so repeated runs and
// offline mode can serve them without contacting the server.
//
// Entries are JSON files under ~/.fedipage/cache named by a SHA-256 key of
// the request parameters, each carrying its own expiry. CachedFetcher wraps
// a viewmodel.Fetcher with write-through caching.
package store
