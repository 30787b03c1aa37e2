// Package tmcli implements the texmath command.
package tmcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"cdr.dev/slog"
	"github.com/spf13/pflag"
	"github.com/yuin/goldmark"
	tunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"oss.terrastruct.com/texmath/lib/color"
	"oss.terrastruct.com/texmath/lib/go2"
	"oss.terrastruct.com/texmath/lib/log"
	"oss.terrastruct.com/texmath/lib/version"
	"oss.terrastruct.com/texmath/lib/xmain"
	"oss.terrastruct.com/texmath/tmlib"
	"oss.terrastruct.com/texmath/tmmarkdown"
	"oss.terrastruct.com/texmath/tmrenderers/tmsvg"
)

func Run(ctx context.Context, ms *xmain.State) (err error) {
	// These should be kept up-to-date with help.go
	fileFlag := ms.Opts.String("TEXMATH_FILE", "file", "f", "", "read the expression from a file instead of the arguments. Use - for stdin.")
	markdownFlag, err := ms.Opts.Bool("TEXMATH_MARKDOWN", "markdown", "m", false, "treat the input file as markdown and convert it to HTML, rendering ```math blocks as SVG. Requires --file.")
	if err != nil {
		return err
	}
	watchFlag, err := ms.Opts.Bool("TEXMATH_WATCH", "watch", "w", false, "watch the input file and render again whenever it changes. Requires --file and an output path.")
	if err != nil {
		return err
	}
	hostFlag := ms.Opts.String("HOST", "host", "h", "localhost", "host the --watch preview server listens on.")
	portFlag := ms.Opts.String("PORT", "port", "p", "0", "port the --watch preview server listens on. 0 picks a free port.")
	browserFlag := ms.Opts.String("BROWSER", "browser", "", "", "browser executable that --watch opens. Setting to 0 opens no browser.")
	highlightFlag := ms.Opts.String("TEXMATH_HIGHLIGHT", "highlight", "", "", "with --markdown, syntax highlight other fenced code blocks using this chroma style (e.g. github).")
	fillFlag := ms.Opts.String("TEXMATH_FILL", "fill", "", "", "CSS color of the rendered math (default black).")
	noXMLTagFlag, err := ms.Opts.Bool("TEXMATH_NO_XML_TAG", "no-xml-tag", "", true, "omit the XML declaration (<?xml ...?>) from the SVG. Set to false for standalone .svg files.")
	if err != nil {
		return err
	}
	debugFlag, err := ms.Opts.Bool("DEBUG", "debug", "d", false, "print debug logs.")
	if err != nil {
		ms.Log.Warn.Printf("Invalid DEBUG flag value ignored")
		debugFlag = go2.Pointer(false)
	}
	versionFlag, err := ms.Opts.Bool("", "version", "v", false, "get the version")
	if err != nil {
		return err
	}

	err = ms.Opts.Flags.Parse(ms.Opts.Args)
	if !errors.Is(err, pflag.ErrHelp) && err != nil {
		return xmain.UsageErrorf("failed to parse flags: %v", err)
	}
	if errors.Is(err, pflag.ErrHelp) {
		help(ms)
		return nil
	}

	if *versionFlag {
		fmt.Fprintln(ms.Stdout, version.Version)
		return nil
	}
	if *debugFlag {
		ctx = log.Leveled(ctx, slog.LevelDebug)
		ms.Env.Setenv("DEBUG", "1")
	}
	if *browserFlag != "" {
		ms.Env.Setenv("BROWSER", *browserFlag)
	}

	args := ms.Opts.Flags.Args()
	inputPath := *fileFlag
	var expr *string
	if inputPath == "" {
		if len(args) == 0 {
			help(ms)
			return nil
		}
		if args[0] != "-" {
			expr = &args[0]
		} else {
			inputPath = "-"
		}
		args = args[1:]
	}
	if len(args) > 1 {
		return xmain.UsageErrorf("too many arguments passed")
	}
	outputPath := "-"
	if len(args) == 1 {
		outputPath = args[0]
	}

	if *markdownFlag && *fileFlag == "" {
		return xmain.UsageErrorf("--markdown requires --file")
	}
	if *highlightFlag != "" && !*markdownFlag {
		return xmain.UsageErrorf("--highlight requires --markdown")
	}
	if *watchFlag {
		if inputPath == "" || inputPath == "-" {
			return xmain.UsageErrorf("--watch requires --file with a path")
		}
		if outputPath == "-" {
			return xmain.UsageErrorf("--watch requires an output path")
		}
	}

	job := &renderJob{
		markdown:  *markdownFlag,
		highlight: *highlightFlag,
		opts: &tmsvg.RenderOpts{
			NoXMLTag: noXMLTagFlag,
		},
	}
	if *fillFlag != "" {
		job.opts.Fill = fillFlag
		if l, err := color.Luminance(*fillFlag); err == nil && l > 0.9 {
			ms.Log.Warn.Printf("fill %q is nearly white and may be invisible on light backgrounds", *fillFlag)
		}
	}

	if *watchFlag {
		w, err := newWatcher(ctx, ms, watcherOpts{
			job:        job,
			host:       *hostFlag,
			port:       *portFlag,
			inputPath:  ms.AbsPath(inputPath),
			outputPath: outputPath,
		})
		if err != nil {
			return err
		}
		return w.run()
	}

	var input []byte
	if expr != nil {
		input = []byte(*expr)
	} else {
		input, err = ms.ReadPath(inputPath)
		if err != nil {
			return err
		}
	}
	out, err := job.render(ctx, input)
	if err != nil {
		return err
	}
	if outputPath != "-" {
		defer func() {
			if err == nil {
				ms.Log.Success.Printf("successfully rendered %s", ms.HumanPath(outputPath))
			}
		}()
	}
	return ms.WritePath(outputPath, out)
}

type renderJob struct {
	markdown  bool
	highlight string
	opts      *tmsvg.RenderOpts
}

func (j *renderJob) render(ctx context.Context, b []byte) ([]byte, error) {
	input, err := decodeInput(b)
	if err != nil {
		return nil, err
	}
	if j.markdown {
		md := goldmark.New(goldmark.WithExtensions(&tmmarkdown.Extension{
			Context:   ctx,
			Opts:      j.opts,
			Highlight: j.highlight,
		}))
		var buf bytes.Buffer
		err := md.Convert(input, &buf)
		if err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	svg, err := tmlib.RenderMath(ctx, strings.TrimSpace(string(input)), j.opts)
	if err != nil {
		return nil, err
	}
	return append([]byte(svg), '\n'), nil
}

// decodeInput strips a byte order mark and transcodes UTF-16 input to UTF-8.
func decodeInput(b []byte) ([]byte, error) {
	out, _, err := transform.Bytes(tunicode.BOMOverride(tunicode.UTF8.NewDecoder()), b)
	if err != nil {
		return nil, fmt.Errorf("failed to decode input: %w", err)
	}
	return out, nil
}
