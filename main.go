// This is the main-driver for our compiler.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/evipepota/evicc/compileerr"
	"github.com/evipepota/evicc/compiler"
	"github.com/evipepota/evicc/config"
	"github.com/evipepota/evicc/diag"
	"github.com/evipepota/evicc/replline"
)

func main() {
	os.Exit(run())
}

// run implements the driver and returns the process exit code, kept
// separate from main so os.Exit doesn't short-circuit deferred flushes.
func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "evicc: bad config: %s\n", err)
		return 1
	}

	//
	// Look for flags. Any set here override the optional .evicc.yaml,
	// matching the teacher's own -debug/-compile/-run layering.
	//
	debug := flag.Bool("debug", cfg.Debug, "Insert an int3 breakpoint at the top of main.")
	trace := flag.Bool("trace", cfg.Trace, "Log one line per pipeline stage to stderr.")
	noColor := flag.Bool("no-color", cfg.Color == config.ColorNever, "Disable colorized diagnostics.")
	forceColor := flag.Bool("color", cfg.Color == config.ColorAlways, "Force colorized diagnostics even when stderr isn't a terminal.")
	repl := flag.Bool("repl", false, "Start an interactive read-compile-print loop instead of compiling a file argument.")
	flag.Parse()

	if *repl {
		if err := replline.Run(os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "evicc: %s\n", err)
			return 1
		}
		return 0
	}

	//
	// Ensure we have a single source program as our only argument.
	//
	if len(flag.Args()) != 1 {
		fmt.Fprintln(os.Stderr, "args error")
		return 1
	}
	program := flag.Args()[0]

	useColor := diag.AutoColor(os.Stderr)
	if *forceColor {
		useColor = true
	}
	if *noColor {
		useColor = false
	}
	reporter := diag.New(program, os.Stderr, useColor)

	comp := compiler.New(program)
	comp.SetDebug(*debug)
	comp.SetTrace(*trace)

	out, err := comp.Compile()
	if err != nil {
		if ce, ok := err.(*compileerr.Error); ok {
			reporter.Report(ce)
		} else {
			fmt.Fprintf(os.Stderr, "unexpected error: %s\n", err)
		}
		return 1
	}

	fmt.Fprint(os.Stdout, out)
	os.Stdout.Sync()
	return 0
}
