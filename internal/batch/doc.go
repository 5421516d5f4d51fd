// Package batch splits item slices into fixed-size batches and runs a
// callback per batch, sequentially or with bounded concurrency.
//
// The Mastodon relationships endpoint accepts a limited number of account
// IDs per request, so enrichment of a page is fanned out through Map.
package batch
