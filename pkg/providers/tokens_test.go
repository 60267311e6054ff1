package providers

import "testing"

func TestApproxOutputTokens(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty", "", 0},
		{"whitespace only", "   \n\t  ", 0},
		{"single word", "hello", 1},
		{"ten words", "one two three four five six seven eight nine ten", 13},
		{"irregular whitespace", "  a   b\nc\t d ", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := approxOutputTokens(tt.content); got != tt.want {
				t.Errorf("approxOutputTokens(%q) = %d, want %d", tt.content, got, tt.want)
			}
		})
	}
}
