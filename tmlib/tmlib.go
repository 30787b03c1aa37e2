// Package tmlib renders math expressions to SVG.
package tmlib

import (
	"context"
	"errors"
	"time"

	"cdr.dev/slog"

	"oss.terrastruct.com/texmath/lib/log"
	"oss.terrastruct.com/texmath/tmcompiler"
	"oss.terrastruct.com/texmath/tmfonts"
	"oss.terrastruct.com/texmath/tmrenderers/tmsvg"
	"oss.terrastruct.com/texmath/tmworld"
)

// ErrNoPages is returned when an expression compiles to a document without pages.
var ErrNoPages = errors.New("no pages in document")

// RenderMath typesets expr as inline math with the embedded fonts and returns the first
// page as SVG. Compilation failures are returned as tmcompiler.Diagnostics.
func RenderMath(ctx context.Context, expr string, opts *tmsvg.RenderOpts) (string, error) {
	return RenderMathWith(ctx, expr, tmfonts.Default(), opts)
}

// RenderMathWith is RenderMath with an explicit font catalog.
func RenderMathWith(ctx context.Context, expr string, catalog *tmfonts.Catalog, opts *tmsvg.RenderOpts) (string, error) {
	start := time.Now()
	w := tmworld.NewMathWorld(expr, catalog)

	doc, err := tmcompiler.Compile(ctx, w)
	if err != nil {
		log.Debug(ctx, "compilation failed", slog.F("expr", expr), slog.Error(err))
		return "", err
	}
	if len(doc.Pages) == 0 {
		return "", ErrNoPages
	}

	out, err := tmsvg.Render(doc.Pages[0], opts)
	if err != nil {
		return "", err
	}
	log.Debug(ctx, "rendered",
		slog.F("expr", expr),
		slog.F("pages", len(doc.Pages)),
		slog.F("bytes", len(out)),
		slog.F("elapsed", time.Since(start)),
	)
	return string(out), nil
}
