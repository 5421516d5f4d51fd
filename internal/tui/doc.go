// Package tui renders account lists in the terminal.
//
// AccountListModel is a Bubble Tea model fed by a list view model
// subscription: every published snapshot is reconciled into the visible
// rows, the next page is requested when the last row scrolls into view, and
// a spinner runs while a page is pending or a failed request waits for its
// retry. DetectOutputMode decides between the interactive screen, styled
// text and plain text.
package tui
