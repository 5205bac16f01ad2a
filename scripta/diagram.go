package scripta

import (
	"context"

	"oss.terrastruct.com/d2/d2layouts/d2dagrelayout"
	"oss.terrastruct.com/d2/d2lib"
	"oss.terrastruct.com/d2/d2renderers/d2svg"
	"oss.terrastruct.com/d2/d2themes/d2themescatalog"
	"oss.terrastruct.com/d2/lib/textmeasure"
)

// renderDiagrams walks the forest and, for every Verbatim "quiver" block
// carrying a `type:d2` property, compiles its raw body as a d2 diagram and
// attaches the rendered SVG as properties["rendered-svg"]. A block that fails
// to compile (malformed diagram source) is left untouched — the core never
// aborts on malformed input (spec.md §7) — and its parser messages gain a
// note instead.
func renderDiagrams(ctx context.Context, forest []*Tree[ExpressionBlock]) []*Tree[ExpressionBlock] {
	return mapForest(forest, func(b ExpressionBlock) ExpressionBlock {
		if b.Heading.Kind != HeadingVerbatim || b.Heading.Name != "quiver" {
			return b
		}
		if b.Properties["type"] != "d2" {
			return b
		}

		svg, err := compileDiagram(ctx, b.Body.Raw)
		if err != nil {
			log.Warnw("diagram compilation failed", "block", b.Properties["id"], "error", err)
			b.Meta.Messages = append(b.Meta.Messages, "diagram compilation failed: "+err.Error())
			return b
		}

		props := copyProperties(b.Properties)
		props["rendered-svg"] = svg
		b.Properties = props
		return b
	})
}

// compileDiagram compiles a d2 diagram source string to an SVG document.
func compileDiagram(ctx context.Context, source string) (string, error) {
	ruler, err := textmeasure.NewRuler()
	if err != nil {
		return "", err
	}

	diagram, _, err := d2lib.Compile(ctx, source, &d2lib.CompileOptions{
		Layout: d2dagrelayout.DefaultLayout,
		Ruler:  ruler,
	})
	if err != nil {
		return "", err
	}

	out, err := d2svg.Render(diagram, &d2svg.RenderOpts{
		Pad:     d2svg.DEFAULT_PADDING,
		ThemeID: d2themescatalog.NeutralDefault.ID,
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}
