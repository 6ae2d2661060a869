// Package sheets defines the spreadsheet export port. Implementations live
// in subpackages.
package sheets

import "context"

// Exporter writes table records to a named sheet. records[0] is the header.
type Exporter interface {
	// ReplaceSheet clears the sheet and writes records from A1.
	ReplaceSheet(ctx context.Context, sheet string, records [][]string) (ref string, err error)
	// AppendRows adds records after the last used row.
	AppendRows(ctx context.Context, sheet string, records [][]string) (ref string, err error)
}
