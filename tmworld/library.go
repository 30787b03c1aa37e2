package tmworld

import "strings"

// Library is the standard library every document is compiled against: TeX source
// evaluated before the main file.
type Library struct {
	Preamble string
}

const (
	// Errors are reported on the transcript and compilation runs to the end instead of
	// waiting on the terminal.
	interaction = `\nonstopmode`

	// Documents have no access to the file system.
	// \input reads a file name of letters and others up to a space, which it drops,
	// or any other token, which it leaves.
	sandbox = `\def\input{\begingroup\def\inputname{}\futurelet\next\inputscan}
\def\inputscan{\let\inputstep\inputdone
  \ifcat\noexpand\next a\let\inputstep\inputadd\fi
  \ifcat\noexpand\next 0\let\inputstep\inputadd\fi
  \ifcat\noexpand\next\space\let\inputstep\inputspace\fi
  \inputstep}
\def\inputadd#1{\edef\inputname{\inputname#1}\futurelet\next\inputscan}
\def\inputspace{\afterassignment\inputdone\let\next= }
\def\inputdone{\errmessage{file not found (searched at \inputname)}\endgroup}
\let\openin\undefined
\let\openout\undefined
\let\read\undefined`

	// \autopage{margin} fits the page around the typeset math.
	// \textsize{size} scales the 10pt plain fonts to size through \mag.
	// \shipmath ships box 0 as one page and records its size as a papersize special.
	pageMacros = `\newdimen\pagemargin
\def\autopage#1{\global\pagemargin=#1\relax\ignorespaces}
\def\textsize#1{\dimen0=#1\relax\count255=\dimen0
  \multiply\count255 by 100 \divide\count255 by 65536
  \global\mag=\count255 \ignorespaces}
\def\shipmath{\setbox2\vbox{\kern\pagemargin
    \hbox{\kern\pagemargin\box0\kern\pagemargin}\kern\pagemargin}%
  \dimen0=\wd2 \dimen2=\ht2
  \shipout\vbox{\special{papersize=\the\dimen0,\the\dimen2}\box2}}`

	mathMacros = `\def\frac#1#2{{#1\over#2}}
\def\dfrac#1#2{{\displaystyle{#1\over#2}}}
\def\tfrac#1#2{{\textstyle{#1\over#2}}}
\def\binom#1#2{{#1\choose#2}}
\def\text#1{\hbox{#1}}
\def\mathrm#1{{\rm#1}}
\def\mathbf#1{{\bf#1}}
\def\mathit#1{{\it#1}}
\def\mathtt#1{{\tt#1}}`
)

// NewLibrary returns the default library. Every call builds a fresh value.
func NewLibrary() *Library {
	return &Library{
		Preamble: strings.Join([]string{
			interaction,
			sandbox,
			pageMacros,
			mathMacros,
		}, "\n") + "\n",
	}
}
