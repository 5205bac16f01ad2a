package scripta

import (
	"context"
	"strings"
	"testing"
)

func TestCompileEmptySource(t *testing.T) {
	out := Compile(context.Background(), DefaultParameters(), "")
	if len(out.Forest) != 0 {
		t.Errorf("got %d root blocks for empty source, want 0", len(out.Forest))
	}
	if out.Accumulator == nil {
		t.Fatalf("expected a non-nil accumulator")
	}
}

func TestCompileEndToEndSectionsAndTheorems(t *testing.T) {
	source := "# Introduction\n\n| theorem\nEvery finite group has a composition series.\n\n## Background"
	out := Compile(context.Background(), DefaultParameters(), source)

	var sectionLabel, theoremLabel string
	WalkDepthFirst(out.Forest, func(n *Tree[ExpressionBlock]) {
		switch n.Value.Heading.Name {
		case "section":
			if sectionLabel == "" {
				sectionLabel = n.Value.Properties["label"]
			}
		case "theorem":
			theoremLabel = n.Value.Properties["label"]
		}
	})
	if sectionLabel != "1" {
		t.Errorf("first section label = %q, want %q", sectionLabel, "1")
	}
	if theoremLabel != "1.1" {
		t.Errorf("theorem label = %q, want %q", theoremLabel, "1.1")
	}
}

func TestCompileFrontMatterParsedAndPromoted(t *testing.T) {
	source := "---\ntitle: My Document\nauthor: Ada\n---\n\nHello there."
	out := Compile(context.Background(), DefaultParameters(), source)

	if out.Accumulator.KeyValueDict["title"] != "My Document" {
		t.Errorf("KeyValueDict[title] = %q, want %q", out.Accumulator.KeyValueDict["title"], "My Document")
	}
	if out.Accumulator.KeyValueDict["author"] != "Ada" {
		t.Errorf("KeyValueDict[author] = %q, want %q", out.Accumulator.KeyValueDict["author"], "Ada")
	}

	found := false
	WalkDepthFirst(out.Forest, func(n *Tree[ExpressionBlock]) {
		if n.Value.Heading.Kind == HeadingParagraph {
			found = true
		}
	})
	if !found {
		t.Errorf("expected the paragraph block to survive front-matter stripping")
	}
}

func TestCompileMalformedFrontMatterFallsBackToWholeSource(t *testing.T) {
	source := "---\ntitle: unterminated\n\nno closing fence"
	out := Compile(context.Background(), DefaultParameters(), source)
	if len(out.Forest) == 0 {
		t.Fatalf("expected the unterminated front-matter block to be parsed as ordinary content")
	}
}

func TestCompileSuppressDocumentBlocksFilter(t *testing.T) {
	source := "| document\nTitle Page\n\n# Chapter One"
	params := DefaultParameters()
	params.Filter = SuppressDocumentBlocks
	out := Compile(context.Background(), params, source)

	for _, root := range out.Forest {
		if root.Value.Heading.Name == "document" || root.Value.Heading.Name == "title" {
			t.Errorf("expected document/title roots to be filtered out, found %q", root.Value.Heading.Name)
		}
	}
}

func TestCompileDiagnosticsSurfaceRecoveryMessages(t *testing.T) {
	source := "This line has [an unterminated bracket"
	out := Compile(context.Background(), DefaultParameters(), source)
	if len(out.Diagnostics()) == 0 {
		t.Errorf("expected at least one diagnostic for an unmatched bracket")
	}
}

func TestCompileCodeBlockGetsHighlightedHTML(t *testing.T) {
	source := "```go\nfunc main() {}\n```\n"
	out := Compile(context.Background(), DefaultParameters(), source)

	var html string
	WalkDepthFirst(out.Forest, func(n *Tree[ExpressionBlock]) {
		if n.Value.Heading.Name == "code" {
			html = n.Value.Properties["highlighted-html"]
		}
	})
	if html == "" {
		t.Errorf("expected highlighted-html to be populated for a code block")
	}
}

// invariant #1 (spec.md §5): Compile is total over any byte sequence.
func TestCompileNeverPanics(t *testing.T) {
	inputs := []string{
		"",
		"\n\n\n",
		"\xff\xfe\xfd garbage bytes",
		"[[[[[[[[[[unterminated",
		strings.Repeat("# heading\n", 500),
		"---\nno closing fence at all",
		"| theorem\n" + strings.Repeat("x", 10000),
		"- \n- \n- \n",
		"$$\nunterminated math block",
		"| quiver type:d2\nnot valid d2 source {{{",
	}
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Compile on %q panicked: %v", in, r)
				}
			}()
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			Compile(ctx, DefaultParameters(), in)
		}()
	}
}

func TestCompileDiagramFailureIsNonFatal(t *testing.T) {
	source := "| quiver type:d2\nthis is not { valid d2 source ]["
	out := Compile(context.Background(), DefaultParameters(), source)

	var quiver *ExpressionBlock
	WalkDepthFirst(out.Forest, func(n *Tree[ExpressionBlock]) {
		if n.Value.Heading.Name == "quiver" {
			v := n.Value
			quiver = &v
		}
	})
	if quiver == nil {
		t.Fatalf("expected the quiver block to survive a diagram compile failure")
	}
}
