// Package tmcompiler typesets the main source of a World with the TeX engine and reads
// the result back as a tmtarget.Document.
package tmcompiler

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"cdr.dev/slog"
	"oss.terrastruct.com/xdefer"
	"star-tex.org/x/tex"
	"star-tex.org/x/tex/dvi"
	"star-tex.org/x/tex/kpath"

	"oss.terrastruct.com/texmath/lib/log"
	"oss.terrastruct.com/texmath/tmtarget"
	"oss.terrastruct.com/texmath/tmworld"
)

// The engine keeps global state and is not documented as safe for concurrent use.
var engineMu sync.Mutex

// Compile typesets w. A failed compilation returns Diagnostics.
func Compile(ctx context.Context, w tmworld.World) (*tmtarget.Document, error) {
	src, err := w.Source(w.Main())
	if err != nil {
		return nil, Diagnostics{{Severity: SEVERITY_ERROR, Message: err.Error()}}
	}

	j := assemble(w.Library(), src.Text(), dateRegisters(w.Today(nil)))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	transcript, out, runErr := run(j.text)
	log.Debug(ctx, "engine finished",
		slog.F("main", w.Main().String()),
		slog.F("dvi_bytes", len(out)),
		slog.F("ok", runErr == nil),
	)

	ds := parseTranscript(transcript, j.firstLine, j.lineCount)
	for _, d := range ds.warnings() {
		log.Debug(ctx, "typesetting warning", slog.F("message", d.Message))
	}
	if errs := ds.errors(); len(errs) > 0 {
		return nil, errs
	}
	if runErr != nil {
		return nil, Diagnostics{{Severity: SEVERITY_ERROR, Message: runErr.Error()}}
	}
	return convert(newFontMap(w), out)
}

type job struct {
	text string
	// firstLine is the line of the job holding line 1 of the main source.
	firstLine int
	lineCount int
}

// dateRegisters pins \year, \month, \day and \time. Without a date they are zero so the
// output never depends on the clock.
func dateRegisters(d tmworld.Datetime, ok bool) string {
	if !ok {
		d = tmworld.Datetime{}
	}
	return fmt.Sprintf(`\year=%d \month=%d \day=%d \time=%d `, d.Year, d.Month, d.Day, d.Hour*60+d.Minute)
}

// assemble wraps source so that its content is typeset into box 0, which \shipmath then
// ships as the only page.
func assemble(lib *tmworld.Library, source, dates string) job {
	var b strings.Builder
	b.WriteString(lib.Preamble)
	if !strings.HasSuffix(lib.Preamble, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(dates)
	b.WriteString("\n")
	b.WriteString(`\setbox0\hbox\bgroup\ignorespaces`)
	b.WriteString("\n")
	first := strings.Count(b.String(), "\n") + 1
	b.WriteString(source)
	b.WriteString("\n")
	b.WriteString(`\unskip\egroup\shipmath\end`)
	b.WriteString("\n")
	return job{
		text:      b.String(),
		firstLine: first,
		lineCount: strings.Count(source, "\n") + 1,
	}
}

func run(text string) (transcript string, out []byte, err error) {
	engineMu.Lock()
	defer engineMu.Unlock()

	var stdout, dviOut bytes.Buffer
	defer func() {
		if r := recover(); r != nil {
			transcript = stdout.String()
			err = fmt.Errorf("engine stopped: %v", r)
		}
	}()
	e := tex.New()
	e.Stdout = &stdout
	e.Stdin = bytes.NewReader(nil)
	err = e.Process(&dviOut, strings.NewReader(text))
	return stdout.String(), dviOut.Bytes(), err
}

// convert runs the DVI output through a dvi.Machine. Character widths come from the
// TeX font metrics, the same the engine typeset with.
func convert(fm *fontMap, b []byte) (_ *tmtarget.Document, err error) {
	defer xdefer.Errorf(&err, "failed to read typeset output")

	// TeX writes nothing when no page was shipped.
	if len(b) == 0 {
		return &tmtarget.Document{}, nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed output: %v", r)
		}
	}()
	prog, err := dvi.Compile(b)
	if err != nil {
		return nil, err
	}
	pr := newPageRenderer(fm)
	m := dvi.NewMachine(
		dvi.WithContext(kpath.New()),
		dvi.WithRenderer(pr),
		dvi.WithHandlers(pr),
	)
	if err := m.Run(prog); err != nil {
		return nil, err
	}
	if pr.err != nil {
		return nil, pr.err
	}
	return pr.doc, nil
}

// parsePaperSize parses "W,H" where both are TeX dimensions as printed by \the, returning
// scaled points.
func parsePaperSize(v string) (w, h int32, ok bool) {
	ws, hs, ok := strings.Cut(v, ",")
	if !ok {
		return 0, 0, false
	}
	w, ok = parseDimen(ws)
	if !ok {
		return 0, 0, false
	}
	h, ok = parseDimen(hs)
	if !ok {
		return 0, 0, false
	}
	return w, h, true
}

// parseDimen parses a dimension in pt into scaled points.
func parseDimen(s string) (int32, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "pt") {
		return 0, false
	}
	pt, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "pt")), 64)
	if err != nil || pt < 0 {
		return 0, false
	}
	return int32(pt*65536 + 0.5), true
}
