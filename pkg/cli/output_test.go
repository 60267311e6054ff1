package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

type fakeResult struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type fakeTable []fakeResult

func (t fakeTable) Header() []string {
	return []string{"NAME", "COUNT"}
}

func (t fakeTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		rows = append(rows, []string{r.Name, "1"})
	}
	return rows
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %t", tt.in, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	data := fakeTable{{Name: "ollama", Count: 1}}

	if err := Render(&buf, FormatJSON, data); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var out []fakeResult
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("Output is not JSON: %v", err)
	}
	if len(out) != 1 || out[0].Name != "ollama" {
		t.Errorf("Unexpected output: %v", out)
	}
}

func TestRender_Table(t *testing.T) {
	var buf bytes.Buffer
	data := fakeTable{{Name: "ollama"}, {Name: "openai"}}

	if err := Render(&buf, FormatTable, data); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "NAME") || !strings.Contains(out, "ollama") || !strings.Contains(out, "openai") {
		t.Errorf("Unexpected table output:\n%s", out)
	}
}

func TestRender_TableNeedsTabular(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, FormatTable, map[string]int{"x": 1}); err == nil {
		t.Error("Expected error for non-tabular data")
	}
}
