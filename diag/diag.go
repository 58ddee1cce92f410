// Package diag renders compile errors as a caret-pointing diagnostic:
// the offending source line, followed by a caret under the column the
// error is anchored at.
//
// Grounded on akashmaji946-go-mix/repl/repl.go for the coloring
// approach (github.com/fatih/color) and gmofishsauce-wut4/emul/main.go
// for gating color behind golang.org/x/term.IsTerminal. Disabling color
// (NO_COLOR, the driver's -no-color flag, or "color: never" in the
// config file) must reproduce the
// exact same text with the escape codes simply absent — Reporter never
// changes the message or the exit behavior, only whether it's colored.
package diag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/evipepota/evicc/compileerr"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// Reporter renders compileerr.Errors against a fixed source buffer.
type Reporter struct {
	source string
	out    io.Writer
	color  bool

	lineLabel *color.Color
	caretMsg  *color.Color
}

// New returns a Reporter for the given source text, writing to out.
// useColor forces coloring on or off; callers that want automatic TTY
// detection should pass AutoColor(out) instead.
func New(source string, out io.Writer, useColor bool) *Reporter {
	return &Reporter{
		source:    source,
		out:       out,
		color:     useColor,
		lineLabel: color.New(color.FgCyan),
		caretMsg:  color.New(color.FgRed, color.Bold),
	}
}

// AutoColor reports whether out should be colorized: it must be a
// terminal, and NO_COLOR must be unset (https://no-color.org).
func AutoColor(out io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Report writes err as a caret diagnostic. If err has no source
// location (compileerr.Error.HasLocation is false — e.g. "args error"),
// just the message is written.
func (r *Reporter) Report(err *compileerr.Error) {
	if !err.HasLocation() {
		r.printf("%s\n", err.Error())
		return
	}

	_, col, text := r.locate(err.Offset)
	r.printLine(text)
	r.printf("%s%s\n", strings.Repeat(" ", col), r.caret(err.Error()))
}

// locate converts a byte offset into a 1-based line number, a 0-based
// column, and the full text of that line.
func (r *Reporter) locate(offset int) (line, col int, text string) {
	line = 1
	lineStart := 0
	for i := 0; i < offset && i < len(r.source); i++ {
		if r.source[i] == '\n' {
			line++
			lineStart = i + 1
		}
	}
	col = offset - lineStart

	end := len(r.source)
	if idx := strings.IndexByte(r.source[lineStart:], '\n'); idx >= 0 {
		end = lineStart + idx
	}
	return line, col, r.source[lineStart:end]
}

func (r *Reporter) printLine(text string) {
	if r.color {
		r.lineLabel.Fprintln(r.out, text)
		return
	}
	fmt.Fprintln(r.out, text)
}

func (r *Reporter) caret(msg string) string {
	return "^ " + msg
}

func (r *Reporter) printf(format string, args ...any) {
	if r.color {
		r.caretMsg.Fprintf(r.out, format, args...)
		return
	}
	fmt.Fprintf(r.out, format, args...)
}
