package scripta

import "testing"

func TestClassifyLines(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []Line
	}{
		{
			name:   "single line, no trailing newline",
			source: "hello",
			want: []Line{
				{Indent: 0, Prefix: "", Content: "hello", LineNumber: 1, Position: 0},
			},
		},
		{
			name:   "indented line",
			source: "   hi",
			want: []Line{
				{Indent: 3, Prefix: "   ", Content: "   hi", LineNumber: 1, Position: 0},
			},
		},
		{
			name:   "trailing newline does not add a phantom line",
			source: "a\nb\n",
			want: []Line{
				{Indent: 0, Prefix: "", Content: "a", LineNumber: 1, Position: 0},
				{Indent: 0, Prefix: "", Content: "b", LineNumber: 2, Position: 2},
			},
		},
		{
			name:   "CRLF input strips the carriage return",
			source: "a\r\nb\r\n",
			want: []Line{
				{Indent: 0, Prefix: "", Content: "a", LineNumber: 1, Position: 0},
				{Indent: 0, Prefix: "", Content: "b", LineNumber: 2, Position: 3},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyLines(tt.source)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d lines, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("line %d: got %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLineIsBlank(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{"", true},
		{"   ", true},
		{"a", false},
		{"   a", false},
	}
	for _, tt := range tests {
		l := Line{Content: tt.content}
		if got := l.IsBlank(); got != tt.want {
			t.Errorf("IsBlank(%q) = %v, want %v", tt.content, got, tt.want)
		}
	}
}
