// Package tmmarkdown is a goldmark extension that renders ```math fenced code blocks
// as inline SVG.
package tmmarkdown

import (
	"bytes"
	"context"
	"io"
	"strings"

	"cdr.dev/slog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"oss.terrastruct.com/texmath/lib/log"
	"oss.terrastruct.com/texmath/lib/svg"
	"oss.terrastruct.com/texmath/tmlib"
	"oss.terrastruct.com/texmath/tmrenderers/tmsvg"
)

const LANGUAGE = "math"

type Extension struct {
	// Context carries the logger math blocks are rendered with.
	Context context.Context
	Opts    *tmsvg.RenderOpts
	// Highlight names a chroma style. When set, other fenced code blocks are
	// syntax highlighted with CSS classes.
	Highlight string
}

var _ goldmark.Extender = (*Extension)(nil)

func (e *Extension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithASTTransformers(
			util.Prioritized(mathTransformer{}, 100),
		),
	)
	m.Renderer().AddOptions(
		renderer.WithNodeRenderers(
			util.Prioritized(&mathRenderer{ext: e}, 100),
		),
	)
	if e.Highlight != "" {
		m.Renderer().AddOptions(
			renderer.WithNodeRenderers(
				util.Prioritized(newCodeRenderer(e.Highlight), 100),
			),
		)
	}
}

// Convert renders markdown source to HTML.
func Convert(ctx context.Context, source []byte, w io.Writer, opts *tmsvg.RenderOpts) error {
	md := goldmark.New(goldmark.WithExtensions(&Extension{Context: ctx, Opts: opts}))
	return md.Convert(source, w)
}

type mathBlock struct {
	ast.BaseBlock
}

var KindMathBlock = ast.NewNodeKind("MathBlock")

func (n *mathBlock) Kind() ast.NodeKind {
	return KindMathBlock
}

func (n *mathBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

type mathTransformer struct{}

func (mathTransformer) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	var blocks []*ast.FencedCodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if ok && bytes.Equal(fcb.Language(reader.Source()), []byte(LANGUAGE)) {
			blocks = append(blocks, fcb)
		}
		return ast.WalkContinue, nil
	})
	for _, fcb := range blocks {
		parent := fcb.Parent()
		if parent == nil {
			continue
		}
		mb := &mathBlock{}
		mb.SetLines(fcb.Lines())
		parent.ReplaceChild(parent, fcb, mb)
	}
}

type mathRenderer struct {
	ext *Extension
}

func (r *mathRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMathBlock, r.render)
}

func (r *mathRenderer) render(w util.BufWriter, source []byte, n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		b.Write(line.Value(source))
	}
	expr := strings.TrimSpace(b.String())

	ctx := r.ext.Context
	if ctx == nil {
		ctx = context.Background()
	}
	out, err := tmlib.RenderMath(ctx, expr, r.ext.Opts)
	if err != nil {
		log.Warn(ctx, "failed to render math block", slog.F("expr", expr), slog.Error(err))
		_, _ = w.WriteString(`<pre class="texmath-error">`)
		_, _ = w.WriteString(svg.EscapeText(err.Error()))
		_, _ = w.WriteString("</pre>\n")
		return ast.WalkSkipChildren, nil
	}
	_, _ = w.WriteString(`<div class="texmath">`)
	_, _ = w.WriteString(out)
	_, _ = w.WriteString("</div>\n")
	return ast.WalkSkipChildren, nil
}
