package scripta

import "context"

// Filter selects which trees survive the compiler façade's final pass,
// per spec.md §4.9.
type Filter int

const (
	NoFilter Filter = iota
	SuppressDocumentBlocks
)

// Theme is a semantic hint forwarded to the downstream renderer; the core
// never reads it.
type Theme int

const (
	ThemeLight Theme = iota
	ThemeDark
)

// Sizing groups the renderer-facing layout hints of CompilerParameters.
type Sizing struct {
	BaseFontSize     float64
	ParagraphSpacing float64
	MarginLeft       float64
	MarginRight      float64
	Indentation      float64
	IndentUnit       float64
	Scale            float64
}

// CompilerParameters is the compiler façade's input configuration
// (spec.md §6). The core only reads Filter and MaxLevel; the rest are
// semantic hints threaded through for a downstream renderer.
type CompilerParameters struct {
	Filter     Filter
	WindowWidth int
	SelectedID string
	Theme      Theme
	EditCount  int
	Width      int
	ShowTOC    bool
	Sizing     Sizing
	MaxLevel   int
}

// DefaultParameters returns CompilerParameters with the core's defaults
// (NoFilter, maxLevel 4 — the full depth of a Vector).
func DefaultParameters() CompilerParameters {
	return CompilerParameters{Filter: NoFilter, MaxLevel: 4}
}

// Severity discriminates a CompileMessage's urgency, surfaced by
// Output.Diagnostics() for hosts that want to flag parse recoveries
// without walking the whole forest.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// CompileMessage is one parser-recovery or diagram-compilation note attached
// to a block, promoted to the compile's top-level diagnostics surface.
type CompileMessage struct {
	Severity   Severity
	Text       string
	LineNumber int
}

// Output is the compiler façade's result: a rewritten forest plus the
// final accumulator state, sufficient for a renderer to produce
// { body, banner, toc, title } (spec.md §6).
type Output struct {
	Forest      []*Tree[ExpressionBlock]
	Accumulator *Accumulator
}

// Diagnostics flattens every block's parser messages into one ordered
// slice of CompileMessage, for hosts that want a flat error/warning feed
// instead of walking the forest themselves.
func (o Output) Diagnostics() []CompileMessage {
	var msgs []CompileMessage
	WalkDepthFirst(o.Forest, func(n *Tree[ExpressionBlock]) {
		for _, m := range n.Value.Meta.Messages {
			msgs = append(msgs, CompileMessage{
				Severity:   SeverityWarning,
				Text:       m,
				LineNumber: n.Value.Meta.LineNumber,
			})
		}
	})
	return msgs
}

// Compile threads C1 through C8: classify, parse into primitive blocks,
// build the forest, run the block-to-expression pipeline, fold the
// accumulator, then apply params.Filter. Compile is total — it never
// panics, regardless of the byte sequence in source.
//
// ctx bounds any diagram compilation (C's "domain stack" addition: a
// Verbatim "quiver" block with a `type:d2` property is rendered to SVG via
// d2, which can be slow on pathological input); it is not consulted
// elsewhere in the core, which has no suspension points of its own.
func Compile(ctx context.Context, params CompilerParameters, source string) Output {
	maxLevel := params.MaxLevel
	if maxLevel <= 0 {
		maxLevel = 4
	}

	cfg, body := ParseFrontMatter(source)

	blocks := ParseBlocks(body)
	primForest := BuildForest(blocks, func(b PrimitiveBlock) int { return b.Indent })
	exprForest := mapForest(primForest, blockToExpression)
	exprForest = renderDiagrams(ctx, exprForest)
	exprForest = annotateCode(exprForest)

	forest, acc := Accumulate(exprForest, maxLevel)
	for k, v := range configToKeyValues(cfg, frontMatterKeys) {
		acc.KeyValueDict[k] = v
	}
	forest = applyFilter(forest, params.Filter)

	return Output{Forest: forest, Accumulator: acc}
}

// applyFilter removes any root tree whose block name is "document" or
// "title", when requested.
func applyFilter(forest []*Tree[ExpressionBlock], filter Filter) []*Tree[ExpressionBlock] {
	if filter != SuppressDocumentBlocks {
		return forest
	}
	out := forest[:0:0]
	for _, t := range forest {
		if t.Value.Heading.Name == "document" || t.Value.Heading.Name == "title" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// frontMatterKeys are the front-matter fields Compile promotes into the
// accumulator's keyValueDict, mirroring the handful of settings the
// teacher's Config reads (title, codeStyle, ...).
var frontMatterKeys = []string{"title", "author", "date", "has-chapters", "rite.codeStyle"}

// mapForest rebuilds a forest of U from a forest of T, preserving shape.
func mapForest[T, U any](trees []*Tree[T], f func(T) U) []*Tree[U] {
	out := make([]*Tree[U], len(trees))
	for i, t := range trees {
		out[i] = &Tree[U]{Value: f(t.Value), Children: mapForest(t.Children, f)}
	}
	return out
}
