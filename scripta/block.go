package scripta

import (
	"strconv"
	"strings"
)

// HeadingKind discriminates the three heading shapes a primitive block can
// carry, per spec.md §3's "Heading" tagged union.
type HeadingKind int

const (
	HeadingParagraph HeadingKind = iota
	HeadingOrdinary
	HeadingVerbatim
)

func (k HeadingKind) String() string {
	switch k {
	case HeadingParagraph:
		return "Paragraph"
	case HeadingOrdinary:
		return "Ordinary"
	case HeadingVerbatim:
		return "Verbatim"
	}
	return "?"
}

// Heading names the block's kind: Paragraph carries no name; Ordinary and
// Verbatim carry the keyword that opened the block ("section", "theorem",
// "code", ...).
type Heading struct {
	Kind HeadingKind
	Name string
}

// indentationQuantum is the number of spaces that separate one list-nesting
// level from the next (spec.md Glossary).
const indentationQuantum = 3

// verbatimNames is the fixed set of block keywords whose bodies are carried
// through unparsed (spec.md Glossary, "Reserved verbatim block names").
var verbatimNames = map[string]bool{
	"math": true, "chem": true, "compute": true, "equation": true,
	"aligned": true, "array": true, "textarray": true, "table": true,
	"code": true, "verse": true, "verbatim": true, "load": true,
	"load-data": true, "load-files": true, "include": true, "hide": true,
	"texComment": true, "docinfo": true, "mathmacros": true, "textmacros": true,
	"csvtable": true, "chart": true, "svg": true, "quiver": true,
	"image": true, "tikz": true, "setup": true, "iframe": true,
	"settings": true, "book": true, "article": true,
}

// numberedBlockNames is the fixed set of block keywords that receive an
// automatically assigned label during the accumulator pass (spec.md
// Glossary, "Numbered block names").
var numberedBlockNames = map[string]bool{
	"q": true, "axiom": true, "box": true, "theorem": true,
	"definition": true, "lemma": true, "construction": true,
	"principle": true, "proposition": true, "corollary": true,
	"note": true, "remark": true, "exercise": true, "question": true,
	"problem": true, "example": true, "equation": true, "aligned": true,
	"quiver": true, "image": true, "iframe": true, "chart": true,
}

// itemsNotNumbered is consulted by the accumulator's "document" handler
// (spec.md §4.8) to decide whether a document title bumps documentIndex.
var itemsNotNumbered = map[string]bool{
	"preface": true, "introduction": true, "appendix": true,
	"references": true, "index": true, "scratch": true,
}

// isKnownHeaderName is consulted by the extended-header continuation rule
// (spec.md §4.5): a continuation's leading token must either carry a colon
// or fail to name a block the reader would recognize as opening its own
// sibling header.
func isKnownHeaderName(name string) bool {
	return verbatimNames[name] || name == "section"
}

// BlockMeta is the Meta(block) record of spec.md §3.
type BlockMeta struct {
	ID             string
	Position       int
	LineNumber     int
	NumberOfLines  int
	BodyLineNumber int // 0 means "not applicable"
	Messages       []string
	SourceText     string
	Error          string
}

// PrimitiveBlock is the output of C5, before C7 parses its body into
// expressions.
type PrimitiveBlock struct {
	Heading    Heading
	Indent     int
	Args       []string
	Properties map[string]string
	FirstLine  string // paragraphs: first content line; headed blocks: empty
	Body       []string
	Meta       BlockMeta
}

// blockBuilder accumulates one in-progress block across several calls to
// ParseBlocks' driver loop.
type blockBuilder struct {
	heading     Heading
	indent      int
	args        []string
	properties  map[string]string
	firstLine   string
	body        []string
	listEntries []string // item/numbered/itemList/numberedList: one entry per bullet
	rawLines    []string // every original line consumed, in order, for sourceText
	position    int
	lineNumber  int
	bodyLine    int
	messages    []string

	headerClosed bool // extended-header continuation window has ended
}

// isListHeading reports whether b's heading is one of the four list kinds
// (item/numbered, promoted or not), which are tracked via listEntries
// instead of firstLine/body directly.
func (b *blockBuilder) isListHeading() bool {
	switch b.heading.Name {
	case "item", "itemList", "numbered", "numberedList":
		return b.heading.Kind == HeadingOrdinary
	}
	return false
}

func (b *blockBuilder) listPrefix() string {
	if strings.HasPrefix(b.heading.Name, "numbered") {
		return ". "
	}
	return "- "
}

// ParseBlocks runs the primitive block parser (C5): a 5-state line-driven
// machine over classifyLines' output. It is total: every line is consumed,
// and a line that opens no recognized header starts a Paragraph.
func ParseBlocks(source string) []PrimitiveBlock {
	lines := classifyLines(source)

	var blocks []PrimitiveBlock
	var cur *blockBuilder
	blockIndex := 0

	finalize := func() {
		if cur == nil {
			return
		}
		blocks = append(blocks, cur.finish(blockIndex))
		blockIndex++
		cur = nil
	}

	for _, ln := range lines {
		switch {
		case cur == nil && ln.IsBlank():
			// not in block, empty (or blank-but-indented) line: advance.
			continue

		case cur == nil:
			// not in block, content line: open a new block.
			cur = openBlock(ln)

		case ln.IsBlank():
			// in block, empty line: finalize and commit.
			finalize()

		default:
			// in block, content line: add it, applying header
			// continuation / list coalescing rules.
			cur.addLine(ln)
		}
	}
	finalize()

	return blocks
}

// The fence/pipe prefixes recognized on block open, per spec.md §4.5's table
// (the bullet/numbered/section forms are handled separately since their
// "keyword" is the prefix itself).
var (
	legacyPipePrefix = "|| "
	pipePrefix       = "| "
	codeFence        = "```"
	mathFence        = "$$"
)

// openBlock classifies the opening line of a new block and seeds a
// blockBuilder for it.
func openBlock(ln Line) *blockBuilder {
	trimmed := ln.Trimmed()

	b := &blockBuilder{
		properties: map[string]string{},
		position:   ln.Position,
		lineNumber: ln.LineNumber,
		indent:     ln.Indent,
		rawLines:   []string{ln.Content},
	}

	switch {
	case strings.HasPrefix(trimmed, legacyPipePrefix):
		name, rest := splitFirstWord(trimmed[len(legacyPipePrefix):])
		b.heading = Heading{Kind: HeadingVerbatim, Name: name}
		b.setHeaderArgs(rest)

	case strings.HasPrefix(trimmed, pipePrefix):
		name, rest := splitFirstWord(trimmed[len(pipePrefix):])
		kind := HeadingOrdinary
		if verbatimNames[name] {
			kind = HeadingVerbatim
		}
		b.heading = Heading{Kind: kind, Name: name}
		b.setHeaderArgs(rest)
		if name == "section" {
			b.applySectionLevel()
		}

	case strings.HasPrefix(trimmed, codeFence):
		b.heading = Heading{Kind: HeadingVerbatim, Name: "code"}
		b.setHeaderArgs(strings.TrimPrefix(trimmed, codeFence))

	case strings.HasPrefix(trimmed, mathFence):
		b.heading = Heading{Kind: HeadingVerbatim, Name: "math"}
		b.setHeaderArgs(strings.TrimPrefix(trimmed, mathFence))

	case strings.HasPrefix(trimmed, "### "):
		b.heading = Heading{Kind: HeadingOrdinary, Name: "section"}
		b.setHeaderArgs(trimmed[4:])
		b.properties["level"] = "3"

	case strings.HasPrefix(trimmed, "## "):
		b.heading = Heading{Kind: HeadingOrdinary, Name: "section"}
		b.setHeaderArgs(trimmed[3:])
		b.properties["level"] = "2"

	case strings.HasPrefix(trimmed, "# "):
		b.heading = Heading{Kind: HeadingOrdinary, Name: "section"}
		b.setHeaderArgs(trimmed[2:])
		b.properties["level"] = "1"

	case strings.HasPrefix(trimmed, "- "):
		b.heading = Heading{Kind: HeadingOrdinary, Name: "item"}
		b.listEntries = []string{trimmed}
		b.headerClosed = true
		return b

	case strings.HasPrefix(trimmed, ". "):
		b.heading = Heading{Kind: HeadingOrdinary, Name: "numbered"}
		b.listEntries = []string{trimmed}
		b.headerClosed = true
		return b

	default:
		b.heading = Heading{Kind: HeadingParagraph}
		b.firstLine = trimmed
		return b
	}

	return b
}

// setHeaderArgs whitespace-splits rest into args/properties and merges them
// into b. Later calls (header continuation lines) overwrite earlier keys,
// per spec.md §4.5 ("the new keys win on conflict").
func (b *blockBuilder) setHeaderArgs(rest string) {
	args, kvs := splitArgsAndProperties(rest)
	b.args = append(b.args, args...)
	for _, kv := range kvs {
		b.properties[kv.Key] = kv.Value
	}
}

// applySectionLevel implements spec.md §4.5's rule for the `| section ...`
// form: the first positional arg is the level, default "1".
func (b *blockBuilder) applySectionLevel() {
	level := "1"
	if len(b.args) > 0 {
		level = b.args[0]
		b.args = b.args[1:]
	}
	b.properties["level"] = level
}

// addLine feeds one in-block content line through header continuation and
// list coalescing, per spec.md §4.5.
func (b *blockBuilder) addLine(ln Line) {
	trimmed := ln.Trimmed()
	b.rawLines = append(b.rawLines, ln.Content)

	// Extended-header continuation only applies to headed blocks, and only
	// until the first non-matching line closes the window.
	if !b.headerClosed && b.heading.Kind != HeadingParagraph {
		if strings.HasPrefix(trimmed, pipePrefix) {
			rest := trimmed[len(pipePrefix):]
			firstTok, _ := splitFirstWord(rest)
			if strings.Contains(firstTok, ":") || !isKnownHeaderName(firstTok) {
				// The whole token-run (not just the first word) is re-split,
				// since "title:Pythagorean" is itself one key:value token.
				b.setHeaderArgs(rest)
				return
			}
		}
		b.headerClosed = true
	}

	if b.bodyLine == 0 && b.heading.Kind != HeadingParagraph && !b.isListHeading() {
		b.bodyLine = ln.LineNumber
	}

	if b.isListHeading() {
		b.addListLine(trimmed)
		return
	}

	// Body lines keep their original indentation (not the header-matching
	// trimmed view above) so stripIndent has leading whitespace to strip:
	// Verbatim blocks need it to recover relative indentation inside code
	// and math bodies, Ordinary/Paragraph blocks need it to dedent by the
	// common leading space count.
	b.body = append(b.body, ln.Content)
}

// addListLine appends trimmed to an item/numbered block's entries: a second
// bullet at the same prefix promotes "item"/"numbered" to
// "itemList"/"numberedList" (spec.md §4.5's list coalescing); anything else
// is a space-joined continuation of the current last entry.
func (b *blockBuilder) addListLine(trimmed string) {
	prefix := b.listPrefix()

	if strings.HasPrefix(trimmed, prefix) {
		if b.heading.Name == "item" || b.heading.Name == "numbered" {
			b.heading.Name += "List"
		}
		b.listEntries = append(b.listEntries, trimmed)
		return
	}
	if len(b.listEntries) == 0 {
		b.listEntries = append(b.listEntries, trimmed)
		return
	}
	b.listEntries[len(b.listEntries)-1] += " " + trimmed
}

// splitFirstWord splits s on its first run of spaces, returning the leading
// word and the (left-trimmed) remainder.
func splitFirstWord(s string) (word, rest string) {
	s = strings.TrimLeft(s, " ")
	idx := strings.IndexByte(s, ' ')
	if idx == -1 {
		return s, ""
	}
	return s[:idx], strings.TrimLeft(s[idx+1:], " ")
}

// finish reverses nothing (body is already appended in forward order) and
// produces the finalized PrimitiveBlock, reconstructing sourceText from the
// raw lines actually consumed rather than literally "firstLine \n
// join(body)" — the latter would lose the header text for headed blocks,
// whose FirstLine is empty by spec, violating invariant #6 ("sourceText
// equals the join of the original lines that produced it").
func (b *blockBuilder) finish(index int) PrimitiveBlock {
	firstLine := b.firstLine
	var body []string
	if b.isListHeading() && len(b.listEntries) > 0 {
		// List entries keep their bullet prefix verbatim and are never
		// dedented further: firstLine is the opening entry, body holds the
		// rest, per C7's "one ExprList per entry in firstLine :: body".
		firstLine = b.listEntries[0]
		body = append([]string(nil), b.listEntries[1:]...)
	} else {
		body = b.stripIndent()
	}

	meta := BlockMeta{
		ID:            itoaBlockID(b.lineNumber, index),
		Position:      b.position,
		LineNumber:    b.lineNumber,
		NumberOfLines: len(b.rawLines),
		Messages:      b.messages,
		SourceText:    strings.Join(b.rawLines, "\n"),
	}
	if b.bodyLine != 0 {
		meta.BodyLineNumber = b.bodyLine
	}

	return PrimitiveBlock{
		Heading:    b.heading,
		Indent:     b.indent,
		Args:       b.args,
		Properties: b.properties,
		FirstLine:  firstLine,
		Body:       body,
		Meta:       meta,
	}
}

// stripIndent applies spec.md §3's two stripping rules: Verbatim blocks
// strip the header's own indent from every body line; Ordinary blocks
// and Paragraphs (whose body holds the lines after firstLine) dedent by
// the common leading indentation among body lines.
func (b *blockBuilder) stripIndent() []string {
	if len(b.body) == 0 {
		return b.body
	}

	if b.heading.Kind == HeadingVerbatim {
		out := make([]string, len(b.body))
		for i, line := range b.body {
			out[i] = stripUpTo(line, b.indent)
		}
		return out
	}

	common := -1
	for _, line := range b.body {
		if strings.TrimLeft(line, " ") == "" {
			continue
		}
		n := 0
		for n < len(line) && line[n] == ' ' {
			n++
		}
		if common == -1 || n < common {
			common = n
		}
	}
	if common <= 0 {
		return b.body
	}
	out := make([]string, len(b.body))
	for i, line := range b.body {
		out[i] = stripUpTo(line, common)
	}
	return out
}

// stripUpTo removes up to n leading spaces from s.
func stripUpTo(s string, n int) string {
	i := 0
	for i < n && i < len(s) && s[i] == ' ' {
		i++
	}
	return s[i:]
}

func itoaBlockID(lineNumber, index int) string {
	return strconv.Itoa(lineNumber) + "-" + strconv.Itoa(index)
}
