package scripta

import (
	"strconv"
	"strings"
)

// Reference is a cross-reference target: reference[tag] → {id, numRef},
// consulted by a renderer resolving `[ref tag]` / `[eqref tag]`.
type Reference struct {
	ID     string
	NumRef string
}

// NumberedItem records the level/index pair assigned to one numbered list
// entry, keyed by the entry's expression id.
type NumberedItem struct {
	Level int
	Index int
}

// Accumulator is the mutable fold state threaded depth-first, left-to-right
// through the forest by Accumulate (C8). It is owned exclusively by one
// fold and never shared across compiles.
type Accumulator struct {
	HeadingIndex   Vector
	DocumentIndex  Vector
	Counter        map[string]int
	BlockCounter   int
	ChapterCounter int
	DeltaLevel     int
	MaxLevel       int

	ItemVector       Vector
	InListState      bool
	NumberedItemDict map[string]NumberedItem

	Reference map[string]Reference
	Terms     map[string]string
	Footnotes map[string]string

	FootnoteNumbers map[string]int

	MathMacroDict map[string]string
	TextMacroDict map[string]string
	KeyValueDict  map[string]string

	QAndAOpen string
	QAndADict map[string]string

	Bibliography map[string]int
}

// NewAccumulator returns a fresh, empty Accumulator. maxLevel is the
// section depth at which blockCounter resets (spec.md §3).
func NewAccumulator(maxLevel int) *Accumulator {
	if maxLevel <= 0 {
		maxLevel = 4
	}
	return &Accumulator{
		MaxLevel:         maxLevel,
		Counter:          map[string]int{},
		NumberedItemDict: map[string]NumberedItem{},
		Reference:        map[string]Reference{},
		Terms:            map[string]string{},
		Footnotes:        map[string]string{},
		FootnoteNumbers:  map[string]int{},
		MathMacroDict:    map[string]string{},
		TextMacroDict:    map[string]string{},
		KeyValueDict:     map[string]string{},
		QAndADict:        map[string]string{},
		Bibliography:     map[string]int{},
	}
}

// bibliographyCount returns the number of bibitem entries assigned so far,
// ignoring the placeholder zero entries scanParagraph inserts for a `cite`
// whose bibitem hasn't been seen yet — counting len(acc.Bibliography)
// directly would include those placeholders and break invariant #4's
// contiguous 1..n numbering whenever a citation precedes its bibitem.
func (acc *Accumulator) bibliographyCount() int {
	n := 0
	for _, v := range acc.Bibliography {
		if v > 0 {
			n++
		}
	}
	return n
}

// reduceName maps a verbatim block name onto the counter bucket it shares
// with siblings, per spec.md §4.8.
func reduceName(name string) string {
	switch name {
	case "equation", "aligned":
		return "equation"
	case "code":
		return "listing"
	case "quiver", "image", "iframe", "chart", "table", "csvtable", "svg", "tikz":
		return "figure"
	default:
		return name
	}
}

// Accumulate runs the two-phase fold (C8) depth-first, left-to-right over
// forest, producing the rewritten forest and the final accumulator state.
func Accumulate(forest []*Tree[ExpressionBlock], maxLevel int) ([]*Tree[ExpressionBlock], *Accumulator) {
	acc := NewAccumulator(maxLevel)
	return foldTrees(acc, forest), acc
}

func foldTrees(acc *Accumulator, trees []*Tree[ExpressionBlock]) []*Tree[ExpressionBlock] {
	out := make([]*Tree[ExpressionBlock], len(trees))
	for i, t := range trees {
		eff := updateAccumulator(acc, t.Value)
		newBlock := transformBlock(acc, t.Value, eff)
		out[i] = &Tree[ExpressionBlock]{
			Value:    newBlock,
			Children: foldTrees(acc, t.Children),
		}
	}
	return out
}

// blockEffects carries what updateAccumulator computed for one block, for
// transformBlock's rewrite phase to apply.
type blockEffects struct {
	label          string
	hasLabel       bool
	equationNumber string
	figure         string
	chapterNumber  string
	level          string
}

// currentLabel assembles "<chapter.>?<section.>?<counter>" using the
// accumulator's current headingIndex (truncated at maxLevel, zeros
// elided), per spec.md §4.8's "Label strings" rule.
func (acc *Accumulator) currentLabel(counter int) string {
	var sb strings.Builder
	if acc.ChapterCounter > 0 {
		sb.WriteString(strconv.Itoa(acc.ChapterCounter))
		sb.WriteByte('.')
	}
	section := acc.HeadingIndex.String(acc.MaxLevel)
	if section != "0" {
		sb.WriteString(section)
		sb.WriteByte('.')
	}
	sb.WriteString(strconv.Itoa(counter))
	return sb.String()
}

// updateAccumulator implements the block-kind dispatch table of spec.md
// §4.8's update phase: it mutates acc in place and returns the effects the
// rewrite phase needs.
func updateAccumulator(acc *Accumulator, block ExpressionBlock) blockEffects {
	var eff blockEffects

	switch block.Heading.Kind {
	case HeadingOrdinary:
		switch block.Heading.Name {
		case "title":
			if acc.DeltaLevel != 1 {
				acc.HeadingIndex = Vector{}
			}
			if fs, ok := block.Properties["first-section"]; ok {
				if n, err := strconv.Atoi(fs); err == nil {
					acc.HeadingIndex = acc.HeadingIndex.Reset(n)
				}
			}
			if n2l, ok := block.Properties["number-to-level"]; ok {
				acc.KeyValueDict["number-to-level"] = n2l
			}

		case "setcounter":
			n := firstBodyInt(block.Body)
			acc.HeadingIndex = Vector{n, 0, 0, 0}

		case "shiftandsetcounter":
			n := firstBodyInt(block.Body)
			acc.HeadingIndex = Vector{n, 0, 0, 0}
			acc.DeltaLevel = 1

		case "chapter":
			acc.ChapterCounter++
			acc.HeadingIndex = Vector{}
			acc.Counter["equation"] = 0
			acc.BlockCounter = 0
			eff.chapterNumber = strconv.Itoa(acc.ChapterCounter)
			eff.label = eff.chapterNumber
			eff.hasLabel = true
			acc.emitReference(block, eff.label)

		case "section":
			// ChapterCounter is tracked and prefixed separately below, so a
			// section level always indexes HeadingIndex from 1 regardless of
			// whether a chapter is open — shifting it here would leave a
			// phantom leading zero in the rendered label (e.g. "1.0.1").
			level := propInt(block.Properties, "level", 1) + acc.DeltaLevel
			acc.HeadingIndex = acc.HeadingIndex.Increment(level)
			if level <= acc.MaxLevel {
				acc.BlockCounter = 0
				acc.Counter["equation"] = 0
			}
			eff.level = strconv.Itoa(level)
			section := acc.HeadingIndex.String(acc.MaxLevel)
			if acc.ChapterCounter > 0 {
				eff.label = strconv.Itoa(acc.ChapterCounter) + "." + section
			} else {
				eff.label = section
			}
			eff.hasLabel = true
			acc.emitReference(block, eff.label)

		case "document":
			if !itemsNotNumbered[firstArg(block.Args)] {
				acc.DocumentIndex = acc.DocumentIndex.Increment(1)
			}

		case "q":
			acc.QAndAOpen = block.Properties["id"]
			acc.BlockCounter++

		case "a":
			if acc.QAndAOpen != "" {
				acc.QAndADict[acc.QAndAOpen] = block.Properties["id"]
				acc.QAndAOpen = ""
			}

		case "set-key":
			if len(block.Args) >= 2 {
				acc.KeyValueDict[block.Args[0]] = strings.Join(block.Args[1:], " ")
			}

		case "list":
			acc.ItemVector = Vector{}

		case "bibitem":
			key := firstArg(block.Args)
			if key != "" {
				n := acc.bibliographyCount() + 1
				acc.Bibliography[key] = n
				acc.Reference[key] = Reference{ID: block.Properties["id"], NumRef: strconv.Itoa(n)}
			}

		case "numbered":
			level := block.Indent / indentationQuantum
			acc.ItemVector = acc.ItemVector.Increment(level + 1)
			eff.label = acc.ItemVector.String(4)
			eff.hasLabel = true
			idx := level
			if idx > len(acc.ItemVector)-1 {
				idx = len(acc.ItemVector) - 1
			}
			acc.NumberedItemDict[block.Properties["id"]] = NumberedItem{Level: level, Index: acc.ItemVector[idx]}
			acc.emitReference(block, eff.label)

		case "item":
			acc.InListState = !acc.InListState

		default:
			if numberedBlockNames[block.Heading.Name] {
				acc.BlockCounter++
				eff.label = acc.currentLabel(acc.BlockCounter)
				eff.hasLabel = true
				acc.emitReference(block, eff.label)
			}
		}

	case HeadingVerbatim:
		switch block.Heading.Name {
		case "mathmacros":
			for k, v := range BuildMathMacroDict(block.Body.Raw) {
				acc.MathMacroDict[k] = v
			}
		case "textmacros":
			for k, v := range BuildTextMacroDict(block.Body.Raw) {
				acc.TextMacroDict[k] = v
			}
		case "settings":
			for k, v := range block.Properties {
				acc.KeyValueDict[k] = v
			}
		default:
			if _, ok := block.Properties["label"]; ok {
				bucket := reduceName(block.Heading.Name)
				acc.Counter[bucket]++
				eff.label = acc.currentLabel(acc.Counter[bucket])
				eff.hasLabel = true
				if bucket == "equation" {
					eff.equationNumber = eff.label
				}
				if bucket == "figure" {
					eff.figure = eff.label
				}
				acc.emitReference(block, eff.label)
			}
		}

	case HeadingParagraph:
		acc.scanParagraph(block)
	}

	return eff
}

// emitReference records block's tag (if any) as pointing at label.
func (acc *Accumulator) emitReference(block ExpressionBlock, label string) {
	tag := block.Properties["tag"]
	if tag == "" {
		tag = slugify(firstTextLine(block))
	}
	if tag == "" {
		return
	}
	acc.Reference[tag] = Reference{ID: block.Properties["id"], NumRef: label}
}

// scanParagraph walks a paragraph's parsed body for term/cite/footnote
// expressions and updates the corresponding accumulator tables, per
// spec.md §4.8's Paragraph row.
func (acc *Accumulator) scanParagraph(block ExpressionBlock) {
	walkExpressions(block.Body.Parsed, func(e Expression) {
		fn, ok := e.(Fun)
		if !ok {
			return
		}
		switch fn.Name {
		case "term", "term_":
			if text := firstArgText(fn); text != "" {
				acc.Terms[text] = fn.MetaData.ID
			}
		case "cite":
			if key := firstArgText(fn); key != "" {
				if _, ok := acc.Bibliography[key]; !ok {
					acc.Bibliography[key] = 0
				}
			}
		case "footnote":
			if text := firstArgText(fn); text != "" {
				if _, ok := acc.Footnotes[text]; !ok {
					acc.Footnotes[text] = fn.MetaData.ID
					acc.FootnoteNumbers[fn.MetaData.ID] = len(acc.FootnoteNumbers) + 1
				}
			}
		}
	})
}

// transformBlock implements the rewrite phase of spec.md §4.8: it produces
// a new ExpressionBlock with the canonical label/tag/equation-number/
// figure/chapter-number/level properties inserted, book/article key-value
// bodies merged in, and — for numberedBlockNames bodies — text macros
// expanded.
func transformBlock(acc *Accumulator, block ExpressionBlock, eff blockEffects) ExpressionBlock {
	props := copyProperties(block.Properties)

	if eff.hasLabel {
		props["label"] = eff.label
	}
	if eff.equationNumber != "" {
		props["equation-number"] = eff.equationNumber
	}
	if eff.figure != "" {
		props["figure"] = eff.figure
	}
	if eff.chapterNumber != "" {
		props["chapter-number"] = eff.chapterNumber
	}
	if eff.level != "" {
		props["level"] = eff.level
	}
	if _, ok := props["tag"]; !ok {
		if tag := slugify(firstTextLine(block)); tag != "" {
			props["tag"] = tag
		}
	}

	if block.Heading.Name == "book" || block.Heading.Name == "article" {
		for k, v := range parseKeyValueBody(block.Body.Raw) {
			props[k] = v
		}
	}

	body := block.Body
	if block.Heading.Kind == HeadingOrdinary && numberedBlockNames[block.Heading.Name] {
		body.Parsed = ExpandTextMacros(acc.TextMacroDict, body.Parsed)
	}
	if block.Heading.Kind == HeadingVerbatim && (block.Heading.Name == "math" || block.Heading.Name == "aligned") {
		body.Raw = ExpandMathMacros(acc.MathMacroDict, body.Raw)
	}

	return ExpressionBlock{
		Heading:    block.Heading,
		Indent:     block.Indent,
		Args:       block.Args,
		Properties: props,
		Body:       body,
		Meta:       block.Meta,
	}
}

// walkExpressions visits every expression in a tree of Fun/ExprList
// children, depth-first.
func walkExpressions(exprs []Expression, visit func(Expression)) {
	for _, e := range exprs {
		visit(e)
		switch v := e.(type) {
		case Fun:
			walkExpressions(v.Args, visit)
		case ExprList:
			walkExpressions(v.Children, visit)
		}
	}
}

func firstArgText(fn Fun) string {
	for _, a := range fn.Args {
		if t, ok := a.(Text); ok {
			s := strings.TrimSpace(t.Str)
			if s != "" {
				return s
			}
		}
	}
	return ""
}

func firstTextLine(block ExpressionBlock) string {
	if block.Body.IsRaw {
		line, _, _ := strings.Cut(block.Body.Raw, "\n")
		return line
	}
	for _, e := range block.Body.Parsed {
		if t, ok := e.(Text); ok && strings.TrimSpace(t.Str) != "" {
			return t.Str
		}
	}
	return ""
}

// slugify turns a line of text into a tag: lowercase, spaces to '-',
// stripped of anything but alphanumerics, '-' and '_'.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var sb strings.Builder
	prevDash := false
	for _, r := range s {
		switch {
		case r == ' ':
			if !prevDash {
				sb.WriteByte('-')
				prevDash = true
			}
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_':
			sb.WriteRune(r)
			prevDash = r == '-'
		}
	}
	return strings.Trim(sb.String(), "-")
}

// firstBodyInt implements spec.md §9's "setcounter expects the body to be a
// single Text expression" rule: anything else falls back to 1.
func firstBodyInt(body BlockBody) int {
	if len(body.Parsed) == 1 {
		if t, ok := body.Parsed[0].(Text); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(t.Str)); err == nil {
				return n
			}
		}
	}
	return 1
}

func propInt(props map[string]string, key string, fallback int) int {
	v, ok := props[key]
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// parseKeyValueBody parses a raw "book"/"article" verbatim body — one
// key:value pair per line — into a map, skipping malformed lines rather
// than erroring (spec.md §7's "malformed front matter" rule).
func parseKeyValueBody(raw string) map[string]string {
	out := map[string]string{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := splitKeyValue(line)
		if !ok {
			continue
		}
		out[key] = strings.TrimSpace(value)
	}
	return out
}
