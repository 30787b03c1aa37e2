package tmcompiler

import (
	"bufio"
	"strconv"
	"strings"

	"oss.terrastruct.com/texmath/lib/go2"
)

type Severity string

const (
	SEVERITY_ERROR   Severity = "error"
	SEVERITY_WARNING Severity = "warning"
)

type Diagnostic struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	// Line is the line of the main source the diagnostic points at, 0 when unknown.
	Line int `json:"line,omitempty"`
}

// Diagnostics is the error returned when compilation fails.
type Diagnostics []Diagnostic

func (ds Diagnostics) Error() string {
	msgs := make([]string, 0, len(ds))
	for _, d := range ds {
		msgs = append(msgs, d.Message)
	}
	return strings.Join(msgs, "; ")
}

func (ds Diagnostics) errors() Diagnostics {
	return go2.Filter(ds, func(d Diagnostic) bool {
		return d.Severity == SEVERITY_ERROR
	})
}

func (ds Diagnostics) warnings() Diagnostics {
	return go2.Filter(ds, func(d Diagnostic) bool {
		return d.Severity == SEVERITY_WARNING
	})
}

// TeX breaks terminal lines at this many characters.
const maxPrintLine = 79

var warningPrefixes = []string{
	"Overfull ",
	"Underfull ",
	"Missing character: ",
}

// parseTranscript extracts diagnostics from the engine's terminal output. Errors are the
// lines starting with "! ". The first "l.<n>" context line after an error gives its line in
// the job, which firstLine maps back to line 1 of the main source.
func parseTranscript(transcript string, firstLine, lineCount int) Diagnostics {
	var lines []string
	s := bufio.NewScanner(strings.NewReader(transcript))
	s.Buffer(make([]byte, 0, 4096), 1<<20)
	for s.Scan() {
		lines = append(lines, s.Text())
	}

	var ds Diagnostics
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		var sev Severity
		var msg string
		if strings.HasPrefix(line, "! ") {
			sev = SEVERITY_ERROR
			msg = strings.TrimPrefix(line, "! ")
		} else if hasAnyPrefix(line, warningPrefixes) {
			sev = SEVERITY_WARNING
			msg = line
		} else {
			continue
		}
		for len(lines[i]) == maxPrintLine && i+1 < len(lines) {
			i++
			msg += lines[i]
		}
		d := Diagnostic{
			Severity: sev,
			Message:  strings.TrimSpace(msg),
		}
		if sev == SEVERITY_ERROR {
			if n, ok := contextLine(lines[i+1:]); ok {
				n -= firstLine - 1
				if n >= 1 && n <= lineCount {
					d.Line = n
				}
			}
		}
		ds = append(ds, d)
	}
	return ds
}

// contextLine finds the "l.<n>" line of the error whose message precedes lines.
func contextLine(lines []string) (int, bool) {
	for _, line := range lines {
		if strings.HasPrefix(line, "! ") {
			return 0, false
		}
		if !strings.HasPrefix(line, "l.") {
			continue
		}
		digits := line[2:]
		if i := strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' }); i >= 0 {
			digits = digits[:i]
		}
		n, err := strconv.Atoi(digits)
		return n, err == nil
	}
	return 0, false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
