package output

import (
	"fmt"
	"io"

	"github.com/rodaine/table"
)

// Column defines a column for table output
type Column struct {
	Name  string // Display name
	Key   string // Row map key
	Width int    // Truncate values beyond this width (0 = no limit)
}

// RenderTable renders rows as an aligned table. firstColumn, when set, styles
// the cells of the first column.
func RenderTable(w io.Writer, columns []Column, rows []map[string]string, firstColumn func(...string) string) {
	if len(rows) == 0 {
		return
	}

	headers := make([]interface{}, len(columns))
	for i, col := range columns {
		headers[i] = col.Name
	}

	tbl := table.New(headers...).WithWriter(w)
	if firstColumn != nil {
		tbl.WithFirstColumnFormatter(func(format string, vals ...interface{}) string {
			return firstColumn(fmt.Sprintf(format, vals...))
		})
	}

	for _, row := range rows {
		rowData := make([]interface{}, len(columns))
		for i, col := range columns {
			value := row[col.Key]
			if col.Width > 0 {
				value = TruncateString(value, col.Width)
			}
			rowData[i] = value
		}
		tbl.AddRow(rowData...)
	}

	tbl.Print()
}

// TruncateString truncates a string to maxLen and adds "..." if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
