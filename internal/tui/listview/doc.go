// Package listview renders long lists in a Bubble Tea viewport.
//
// Only the rows around the cursor are rendered, so a list of thousands of
// accounts stays responsive. SetItems reconciles a fresh snapshot against
// the rows on screen: the cursor stays on the same item when its key is
// still present.
package listview
