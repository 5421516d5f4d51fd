// Package pagination holds the list flags shared by the account commands:
// page size and page limits, client-side sorting of the loaded rows, and the
// metadata envelope written with structured output.
package pagination
