// Package replline implements the interactive -repl mode: a
// read-compile-print loop over one-line programs, for trying
// out the compiler without writing a whole translation unit to a file.
//
// Grounded on akashmaji946-go-mix/repl/repl.go: readline for line
// editing and history (github.com/chzyer/readline), fatih/color for
// output coloring. The one-shot CLI contract in spec §6 is unaffected —
// this is an additional, opt-in mode the driver wires up behind -repl.
package replline

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/evipepota/evicc/compileerr"
	"github.com/evipepota/evicc/compiler"
	"github.com/fatih/color"
)

const prompt = "evicc> "

var (
	errorColor = color.New(color.FgRed)
	asmColor   = color.New(color.FgGreen)
	dirColor   = color.New(color.FgCyan)
)

// Run starts the interactive loop, writing compiled assembly (or
// diagnostics) to writer. It returns when the user exits (".exit",
// EOF/Ctrl+D) or readline itself fails to start.
func Run(writer io.Writer) error {
	fmt.Fprintln(writer, "evicc interactive mode — one statement per line, \".exit\" to quit")

	rl, err := readline.New(prompt)
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			fmt.Fprintln(writer, "goodbye")
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == ".exit" {
			fmt.Fprintln(writer, "goodbye")
			return nil
		}
		rl.SaveHistory(line)

		execute(writer, line)
	}
}

// execute wraps line as the body of a standalone main and compiles it,
// printing the resulting assembly with simple coloring or, on failure,
// the diagnostic message in place — the loop itself never exits on a
// compile error.
func execute(writer io.Writer, line string) {
	program := fmt.Sprintf("int main() { %s }", line)

	out, err := compiler.New(program).Compile()
	if err != nil {
		if ce, ok := err.(*compileerr.Error); ok {
			errorColor.Fprintf(writer, "error: %s\n", ce.Error())
			return
		}
		errorColor.Fprintf(writer, "error: %s\n", err.Error())
		return
	}

	printColored(writer, out)
}

// printColored renders lines starting with '.' (directives and .L
// labels) in cyan and everything else (function labels, instructions)
// in green.
func printColored(writer io.Writer, asm string) {
	for _, l := range strings.Split(strings.TrimRight(asm, "\n"), "\n") {
		if strings.HasPrefix(strings.TrimSpace(l), ".") {
			dirColor.Fprintln(writer, l)
		} else {
			asmColor.Fprintln(writer, l)
		}
	}
}
