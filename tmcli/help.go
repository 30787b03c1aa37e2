package tmcli

import (
	"fmt"
	"path/filepath"

	"oss.terrastruct.com/texmath/lib/version"
	"oss.terrastruct.com/texmath/lib/xmain"
)

func help(ms *xmain.State) {
	fmt.Fprintf(ms.Stdout, `%[1]s %[2]s
Usage:
  %[1]s [--fill=black] <expression> [file.svg]
  %[1]s [--watch] --file file.tex [file.svg]
  %[1]s --markdown [--highlight=github] --file doc.md [doc.html]

%[1]s typesets a TeX math expression and renders it to SVG.
The expression is read from the first argument or, with --file, from a file.
Output is written to stdout if an output path is not provided.
With --watch, the output is also served as a live preview and opened in a browser.

Use - to have %[1]s read from stdin or write to stdout.

Flags:
%[3]s
`, filepath.Base(ms.Name), version.Version, ms.Opts.Defaults())
}
