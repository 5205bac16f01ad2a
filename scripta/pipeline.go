package scripta

import "strings"

// BlockBody is the Either(Raw | Parsed) union attached to an
// ExpressionBlock, per spec.md §3.
type BlockBody struct {
	Raw    string
	Parsed []Expression
	IsRaw  bool
}

// ExpressionBlock is the same shape as PrimitiveBlock except its body has
// been parsed into expressions (or kept raw, for verbatim blocks).
type ExpressionBlock struct {
	Heading    Heading
	Indent     int
	Args       []string
	Properties map[string]string
	Body       BlockBody
	Meta       BlockMeta
}

// RunPipeline implements C7: it turns each PrimitiveBlock into an
// ExpressionBlock by parsing its body per the heading-dispatch table of
// spec.md §4.7. The block's id is additionally copied into
// properties["id"] so downstream renderers can attach DOM ids.
func RunPipeline(blocks []PrimitiveBlock) []ExpressionBlock {
	out := make([]ExpressionBlock, len(blocks))
	for i, b := range blocks {
		out[i] = blockToExpression(b)
	}
	return out
}

func blockToExpression(b PrimitiveBlock) ExpressionBlock {
	props := copyProperties(b.Properties)
	props["id"] = b.Meta.ID

	eb := ExpressionBlock{
		Heading:    b.Heading,
		Indent:     b.Indent,
		Args:       b.Args,
		Properties: props,
		Meta:       b.Meta,
	}

	// ParseInline's lineNumber feeds directly into expression ids and
	// recovery messages (spec.md §8 scenarios 1 and 7 use 0-indexed lines,
	// e.g. "hello" -> id "e-0.0"), but BlockMeta's LineNumber/BodyLineNumber
	// are 1-indexed (line.go's classifyLines numbers from 1).
	lineNumber := b.Meta.LineNumber - 1
	if b.Meta.BodyLineNumber != 0 {
		lineNumber = b.Meta.BodyLineNumber - 1
	}

	switch {
	case b.Heading.Kind == HeadingVerbatim:
		eb.Body = BlockBody{IsRaw: true, Raw: strings.Join(b.Body, "\n")}

	case b.Heading.Name == "item" || b.Heading.Name == "numbered":
		exprs, msgs := ParseInline(lineNumber, stripListPrefix(b.FirstLine))
		eb.Meta.Messages = append(eb.Meta.Messages, msgs...)
		eb.Body = BlockBody{Parsed: []Expression{
			ExprList{Indent: b.Indent, Children: exprs, MetaData: ExprMeta{ID: b.Meta.ID}},
		}}

	case b.Heading.Name == "itemList" || b.Heading.Name == "numberedList":
		entries := append([]string{b.FirstLine}, b.Body...)
		children := make([]Expression, 0, len(entries))
		for _, entry := range entries {
			exprs, msgs := ParseInline(lineNumber, stripListPrefix(entry))
			eb.Meta.Messages = append(eb.Meta.Messages, msgs...)
			children = append(children, ExprList{Indent: b.Indent, Children: exprs, MetaData: ExprMeta{ID: b.Meta.ID}})
		}
		eb.Body = BlockBody{Parsed: children}

	default:
		source := b.FirstLine
		if len(b.Body) > 0 {
			if source != "" {
				source += "\n"
			}
			source += strings.Join(b.Body, "\n")
		}
		exprs, msgs := ParseInline(lineNumber, source)
		eb.Meta.Messages = append(eb.Meta.Messages, msgs...)
		eb.Body = BlockBody{Parsed: exprs}
	}

	return eb
}

// stripListPrefix removes a leading "- " or ". " bullet marker from a list
// entry, per spec.md §4.7's strip(firstLine).
func stripListPrefix(s string) string {
	if strings.HasPrefix(s, "- ") || strings.HasPrefix(s, ". ") {
		return s[2:]
	}
	return s
}

func copyProperties(m map[string]string) map[string]string {
	out := make(map[string]string, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
