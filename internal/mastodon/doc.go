// Package mastodon is a small REST client for the account endpoints of a
// Mastodon-compatible server, plus AccountSource, which adapts the
// following and followers lists to the viewmodel.Fetcher contract.
//
// Pagination follows the server's Link header: the max_id of the "next"
// link is the cursor of the following page.
package mastodon
