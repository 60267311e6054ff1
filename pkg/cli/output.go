package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// OutputFormat selects how command results are rendered.
type OutputFormat string

const (
	// FormatTable renders rows as an aligned table (default).
	FormatTable OutputFormat = "table"
	// FormatJSON renders results as indented JSON.
	FormatJSON OutputFormat = "json"
)

// ParseFormat converts a flag value to an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(s) {
	case "", "table":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid output format %q (expected table or json)", s)
	}
}

// Tabular is implemented by results that can render as a table.
type Tabular interface {
	// Header returns the column titles.
	Header() []string
	// Rows returns one slice of cells per result row.
	Rows() [][]string
}

// Render writes data to w in the requested format. Table output
// requires data to implement Tabular; JSON accepts anything
// marshallable.
func Render(w io.Writer, format OutputFormat, data any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)

	case FormatTable:
		t, ok := data.(Tabular)
		if !ok {
			return fmt.Errorf("result %T cannot render as a table", data)
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(t.Header(), "\t"))
		for _, row := range t.Rows() {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		return tw.Flush()

	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
