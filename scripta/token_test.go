package scripta

import "testing"

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []Token
	}{
		{
			name: "plain text",
			line: "hello",
			want: []Token{{Kind: TokText, Text: "hello", Begin: 0, End: 5, Index: 0}},
		},
		{
			name: "text and space",
			line: "a b",
			want: []Token{
				{Kind: TokText, Text: "a", Begin: 0, End: 1, Index: 0},
				{Kind: TokSpace, Text: " ", Begin: 1, End: 2, Index: 1},
				{Kind: TokText, Text: "b", Begin: 2, End: 3, Index: 2},
			},
		},
		{
			name: "brackets",
			line: "[b a]",
			want: []Token{
				{Kind: TokLB, Begin: 0, End: 1, Index: 0},
				{Kind: TokText, Text: "b", Begin: 1, End: 2, Index: 1},
				{Kind: TokSpace, Text: " ", Begin: 2, End: 3, Index: 2},
				{Kind: TokText, Text: "a", Begin: 3, End: 4, Index: 3},
				{Kind: TokRB, Begin: 4, End: 5, Index: 4},
			},
		},
		{
			name: "math dollar delimiters",
			line: "$x$",
			want: []Token{
				{Kind: TokMath, Begin: 0, End: 1, Index: 0},
				{Kind: TokText, Text: "x", Begin: 1, End: 2, Index: 1},
				{Kind: TokMath, Begin: 2, End: 3, Index: 2},
			},
		},
		{
			name: "escaped paren math delimiters collapse to TokMath",
			line: `\(x\)`,
			want: []Token{
				{Kind: TokMath, Begin: 0, End: 2, Index: 0},
				{Kind: TokText, Text: "x", Begin: 2, End: 3, Index: 1},
				{Kind: TokMath, Begin: 3, End: 5, Index: 2},
			},
		},
		{
			name: "backtick code",
			line: "`x`",
			want: []Token{
				{Kind: TokCode, Begin: 0, End: 1, Index: 0},
				{Kind: TokText, Text: "x", Begin: 1, End: 2, Index: 1},
				{Kind: TokCode, Begin: 2, End: 3, Index: 2},
			},
		},
		{
			name: "empty line produces no tokens",
			line: "",
			want: nil,
		},
		{
			name: "invalid UTF-8 byte becomes TokError",
			line: "a\xffb",
			want: []Token{
				{Kind: TokText, Text: "a", Begin: 0, End: 1, Index: 0},
				{Kind: TokError, Text: "invalid UTF-8 byte sequence", Begin: 1, End: 2, Index: 1},
				{Kind: TokText, Text: "b", Begin: 2, End: 3, Index: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenize(tt.line)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d tokens %+v, want %d %+v", len(got), got, len(tt.want), tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("token %d: got %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTokenizeNeverPanics(t *testing.T) {
	inputs := []string{"", " ", "[[[", "]]]", "$$$", "```", `\(\)\(`, "\xff\xfe\xfd", "[a $b `c] d"}
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("tokenize(%q) panicked: %v", in, r)
				}
			}()
			tokenize(in)
		}()
	}
}
