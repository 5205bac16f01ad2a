package scripta

import (
	"fmt"
	"strings"
)

// ExprMeta carries the position metadata attached to every Expression, per
// spec.md §3's "Meta (expression)".
type ExprMeta struct {
	Begin int
	End   int
	Index int
	ID    string
}

// Expression is the sum type produced by the inline parser: Text, Fun, VFun
// or ExprList. Implementations are value types; Meta() exposes the shared
// metadata field without forcing a common embedded struct on every variant
// (the variants carry genuinely different payloads).
type Expression interface {
	Meta() ExprMeta
	expressionNode()
}

// Text is a plain-text inline expression.
type Text struct {
	Str      string
	MetaData ExprMeta
}

func (e Text) Meta() ExprMeta { return e.MetaData }
func (Text) expressionNode()  {}

// Fun is a named function applied to a (possibly empty) list of arguments,
// produced from `[name ...]`.
type Fun struct {
	Name     string
	Args     []Expression
	MetaData ExprMeta
}

func (e Fun) Meta() ExprMeta { return e.MetaData }
func (Fun) expressionNode()  {}

// VFun is a "verbatim function" whose body is a single unparsed string,
// produced from `$...$`/`\(...\)` (Name "math") or `` `...` `` (Name "code").
type VFun struct {
	Name     string
	Body     string
	MetaData ExprMeta
}

func (e VFun) Meta() ExprMeta { return e.MetaData }
func (VFun) expressionNode()  {}

// ExprList is an indented group, used for list items.
type ExprList struct {
	Indent   int
	Children []Expression
	MetaData ExprMeta
}

func (e ExprList) Meta() ExprMeta { return e.MetaData }
func (ExprList) expressionNode()  {}

// errorHighlight wraps marker text the way every inline-parser recovery path
// does, per spec.md §4.4/§7: `Fun "errorHighlight" [Text marker]`.
func errorHighlightExpr(marker string, meta ExprMeta) Expression {
	return Fun{
		Name: "errorHighlight",
		Args: []Expression{
			Text{Str: marker, MetaData: meta},
		},
		MetaData: meta,
	}
}

// inlineParser implements the shift-reduce machine of C4 as a loop over an
// explicit index into a token buffer (not Go call-stack recursion for the
// top-level shift; recursion is used only to re-parse the bounded interior
// of a matched bracket, per spec.md §9).
type inlineParser struct {
	source     string
	lineNumber int
	tokens     []Token
	i          int
	nextIndex  int
	messages   []string
}

// ParseInline runs the inline expression parser (C4) over one source line
// (which may itself be the join of several raw lines, e.g. a paragraph
// body) and returns the resulting expression list together with any
// recovery messages. ParseInline is total: it never panics.
func ParseInline(lineNumber int, source string) ([]Expression, []string) {
	p := &inlineParser{
		source:     source,
		lineNumber: lineNumber,
		tokens:     tokenize(source),
	}
	exprs := p.parseUntil(len(p.tokens))
	return exprs, p.messages
}

func (p *inlineParser) addMessage(format string, args ...any) {
	msg := fmt.Sprintf(format, args...) + fmt.Sprintf(" (line %d)", p.lineNumber)
	p.messages = append(p.messages, msg)
}

func (p *inlineParser) exprID() string {
	id := fmt.Sprintf("e-%d.%d", p.lineNumber, p.nextIndex)
	p.nextIndex++
	return id
}

func (p *inlineParser) metaFor(begin, end, tokenIndex int) ExprMeta {
	return ExprMeta{Begin: begin, End: end, Index: tokenIndex, ID: p.exprID()}
}

// parseUntil consumes tokens from p.i up to (not including) end, and
// returns the expressions produced. It always consumes through end:
// malformed interiors recover locally and keep going, per the "parser is
// total" contract in spec.md §4.4.
func (p *inlineParser) parseUntil(end int) []Expression {
	var out []Expression

	for p.i < end {
		tok := p.tokens[p.i]

		switch tok.Kind {
		case TokText, TokSpace:
			meta := p.metaFor(tok.Begin, tok.End, tok.Index)
			out = append(out, Text{Str: tok.Text, MetaData: meta})
			p.i++

		case TokRB:
			meta := p.metaFor(tok.Begin, tok.End, tok.Index)
			p.addMessage("Extra right bracket(s)")
			out = append(out, errorHighlightExpr(" extra ]?", meta))
			p.i++

		case TokLB:
			out = append(out, p.reduceBracket(end))

		case TokMath:
			out = append(out, p.reduceVerbatim(end, TokMath, "math", "$", "opening dollar sign needs to be matched"))

		case TokCode:
			out = append(out, p.reduceVerbatim(end, TokCode, "code", "`", "opening backtick needs to be matched"))

		case TokError:
			meta := p.metaFor(tok.Begin, tok.End, tok.Index)
			p.addMessage("Unknown error")
			out = append(out, errorHighlightExpr(" ?!? ", meta))
			p.i++

		default:
			p.i++
		}
	}

	return out
}

// reduceBracket handles a TokLB found at p.i: it locates the matching close
// within [p.i, end), and either reduces `[name args...]` to a Fun, or enters
// error recovery per spec.md §4.4's table.
func (p *inlineParser) reduceBracket(end int) Expression {
	lbIdx := p.i
	lbTok := p.tokens[lbIdx]

	closeAt := matchBracket(p.tokens, lbIdx, end)
	if closeAt == -1 {
		return p.recoverUnmatchedBracket(lbIdx, end)
	}

	// Find the first non-space interior token: it must name the function.
	nameIdx := lbIdx + 1
	for nameIdx < closeAt && p.tokens[nameIdx].Kind == TokSpace {
		nameIdx++
	}
	if nameIdx >= closeAt {
		meta := p.metaFor(lbTok.Begin, p.tokens[closeAt].End, lbTok.Index)
		p.addMessage("Brackets must enclose something")
		p.i = closeAt + 1
		return errorHighlightExpr("[?]", meta)
	}

	name := p.tokens[nameIdx].Text

	p.i = nameIdx + 1
	args := p.parseUntil(closeAt)

	args = fixupArgs(args)

	meta := p.metaFor(lbTok.Begin, p.tokens[closeAt].End, lbTok.Index)
	p.i = closeAt + 1

	return Fun{Name: name, Args: args, MetaData: meta}
}

// recoverUnmatchedBracket implements the LB-headed rows of spec.md §4.4's
// recovery table, distinguishing on what immediately follows the bracket.
func (p *inlineParser) recoverUnmatchedBracket(lbIdx, end int) Expression {
	lbTok := p.tokens[lbIdx]

	if lbIdx+1 >= end {
		meta := p.metaFor(lbTok.Begin, lbTok.End, lbTok.Index)
		p.addMessage("That left bracket needs something after it")
		p.i = end
		return errorHighlightExpr("[...?", meta)
	}

	next := p.tokens[lbIdx+1]
	switch next.Kind {
	case TokSpace:
		meta := p.metaFor(lbTok.Begin, next.End, lbTok.Index)
		p.addMessage("Can't have space after left bracket")
		p.i = lbIdx + 2
		return errorHighlightExpr("[ - can't have space after the bracket", meta)

	case TokText:
		meta := p.metaFor(lbTok.Begin, next.End, lbTok.Index)
		p.addMessage("Missing right bracket")
		p.i = lbIdx + 2
		return errorHighlightExpr("["+next.Text+"]?", meta)

	default:
		meta := p.metaFor(lbTok.Begin, next.End, lbTok.Index)
		p.addMessage("Unknown error")
		p.i = end
		return errorHighlightExpr(" ?!? ", meta)
	}
}

// reduceVerbatim handles a TokMath/TokCode delimiter found at p.i.
func (p *inlineParser) reduceVerbatim(end int, kind TokenKind, name, delim, missingMsg string) Expression {
	openIdx := p.i
	openTok := p.tokens[openIdx]

	closeAt := -1
	for j := openIdx + 1; j < end; j++ {
		if p.tokens[j].Kind == kind {
			closeAt = j
			break
		}
	}

	if closeAt == -1 {
		meta := p.metaFor(openTok.Begin, openTok.End, openTok.Index)
		p.addMessage(missingMsg)
		p.i = end
		return errorHighlightExpr(delim+"?"+delim, meta)
	}

	bodyBegin := openTok.End
	bodyEnd := p.tokens[closeAt].Begin
	body := p.source[bodyBegin:bodyEnd]

	meta := p.metaFor(openTok.Begin, p.tokens[closeAt].End, openTok.Index)
	p.i = closeAt + 1

	return VFun{Name: name, Body: body, MetaData: meta}
}

// matchBracket finds, within tokens[lo:hi], the index of the TokRB that
// closes the TokLB at lo, counting nested brackets. It returns -1 if none
// is found or the running depth ever goes negative, per C3's match().
func matchBracket(tokens []Token, lo, hi int) int {
	rel := match(symbols(tokens[lo:hi]))
	if rel == -1 {
		return -1
	}
	return lo + rel
}

// fixupArgs trims leading whitespace from a Fun's first textual argument,
// per spec.md §4.4's "fixup pass".
func fixupArgs(args []Expression) []Expression {
	if len(args) == 0 {
		return args
	}
	if t, ok := args[0].(Text); ok {
		trimmed := strings.TrimLeft(t.Str, " ")
		if trimmed == "" {
			return args[1:]
		}
		t.Str = trimmed
		args[0] = t
	}
	return args
}
