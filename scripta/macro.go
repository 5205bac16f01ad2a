package scripta

import (
	"strings"

	"github.com/jxxcarlson/scripta/sliceedit"
)

// BuildMathMacroDict parses a `mathmacros` verbatim body (C10): one
// `name:expansion` pair per non-blank line, same token grammar as a header
// property (spec.md §4.5's `splitKeyValue`). Malformed lines are skipped,
// never erroring, per spec.md §7's "malformed... line skipped" rule.
func BuildMathMacroDict(raw string) map[string]string {
	return parseMacroLines(raw)
}

// BuildTextMacroDict parses a `textmacros` verbatim body the same way.
func BuildTextMacroDict(raw string) map[string]string {
	return parseMacroLines(raw)
}

func parseMacroLines(raw string) map[string]string {
	dict := map[string]string{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := splitKeyValue(line)
		if !ok {
			continue
		}
		dict[key] = strings.TrimSpace(value)
	}
	return dict
}

// ExpandTextMacros implements the text-macro expander contract of spec.md's
// Glossary (`expand(dict, expr) → expr`, `buildDictionary(lines) → dict`):
// a zero-argument `Fun` whose name names a macro expands in place to the
// macro's body as plain Text; anything else recurses into its children
// unchanged. An empty dict is the identity function, matching the
// reference's stub behavior for the common case of a document with no
// `textmacros` block.
func ExpandTextMacros(dict map[string]string, exprs []Expression) []Expression {
	if len(dict) == 0 || len(exprs) == 0 {
		return exprs
	}
	out := make([]Expression, len(exprs))
	for i, e := range exprs {
		out[i] = expandMacroExpr(dict, e)
	}
	return out
}

func expandMacroExpr(dict map[string]string, e Expression) Expression {
	switch v := e.(type) {
	case Fun:
		if len(v.Args) == 0 {
			if repl, ok := dict[v.Name]; ok {
				return Text{Str: repl, MetaData: v.MetaData}
			}
		}
		v.Args = ExpandTextMacros(dict, v.Args)
		return v
	case ExprList:
		v.Children = ExpandTextMacros(dict, v.Children)
		return v
	default:
		return e
	}
}

// ExpandMathMacros substitutes every occurrence of a math macro's name
// (written `\name` in the body, as in LaTeX `\newcommand`) with its
// expansion, across the whole raw body in one batched edit pass.
func ExpandMathMacros(dict map[string]string, raw string) string {
	if len(dict) == 0 {
		return raw
	}
	pairs := make(map[string]string, len(dict))
	for name, expansion := range dict {
		pairs[`\`+name] = expansion
	}
	buf := sliceedit.NewBuffer([]byte(raw))
	buf.ReplaceAllPairs(pairs)
	return buf.String()
}
