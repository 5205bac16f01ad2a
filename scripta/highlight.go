package scripta

import (
	"bytes"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// annotateCode walks the forest and, for every Verbatim "code" block,
// attaches a syntax-highlighted HTML rendering of its body as
// properties["highlighted-html"]. This is content annotation, not
// rendering proper: the core still hands the raw body to a renderer via
// Body.Raw, but saves the (expensive, deterministic) highlighting pass so
// renderers don't each need their own chroma wiring.
func annotateCode(forest []*Tree[ExpressionBlock]) []*Tree[ExpressionBlock] {
	return mapForest(forest, func(b ExpressionBlock) ExpressionBlock {
		if b.Heading.Kind != HeadingVerbatim || b.Heading.Name != "code" {
			return b
		}
		lang := b.Properties["language"]
		if lang == "" {
			lang = firstArg(b.Args)
		}
		highlighted, err := highlightSource(b.Body.Raw, lang)
		if err != nil {
			return b
		}
		props := copyProperties(b.Properties)
		props["highlighted-html"] = highlighted
		b.Properties = props
		return b
	})
}

// highlightSource renders source in lang to HTML via chroma. When lang is
// unknown or empty, chroma guesses the language from source; plain-text
// lexing is used when that guess fails too.
func highlightSource(source, lang string) (string, error) {
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Analyse(source)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("github")
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, source)
	if err != nil {
		return "", err
	}

	formatter := html.New(html.WithClasses(true))
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return "", err
	}
	return buf.String(), nil
}
