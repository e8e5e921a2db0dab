// Command mexc is the driver binary for the MEX compiler front end:
// spec.md §1 leaves "a command-line driver" out of scope for the front
// end itself, but something has to open a source file, run the
// lexer/parser/sema/quadio pipeline over it, and report diagnostics --
// this is that harness.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	compiler "github.com/mexlang/mexc"
	"github.com/mexlang/mexc/internal/diag"
	"github.com/mexlang/mexc/internal/logio"
	"github.com/mexlang/mexc/internal/panicerr"
	"github.com/mexlang/mexc/internal/quadio"
)

func main() {
	var (
		output           string
		timeout          time.Duration
		padStructs       bool
		warningsAsErrors bool
	)
	flag.StringVar(&output, "o", "", "write the compiled quad program here (default: <input>q)")
	flag.DurationVar(&timeout, "timeout", 0, "abort compilation after this long")
	flag.BoolVar(&padStructs, "pad-structs", false, "align struct fields the way a back end would")
	flag.BoolVar(&warningsAsErrors, "warnings-as-errors", false, "treat every warning as a compilation failure")
	flag.Parse()

	log := logio.Logger{}
	log.SetOutput(os.Stderr)
	defer func() { os.Exit(log.ExitCode()) }()

	if flag.NArg() != 1 {
		log.Errorf("usage: mexc [flags] <source.mex>")
		return
	}
	inputName := flag.Arg(0)
	outputName := output
	if outputName == "" {
		outputName = inputName + "q"
	}

	ctx := context.Background()
	if timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	log.ErrorIf(panicerr.Recover("mexc", func() error {
		return run(ctx, &log, inputName, outputName, padStructs, warningsAsErrors)
	}))
}

func run(ctx context.Context, log *logio.Logger, inputName, outputName string, padStructs, warningsAsErrors bool) error {
	f, err := os.Open(inputName)
	if err != nil {
		return err
	}
	defer f.Close()

	c := compiler.New(
		compiler.WithStructPadding(padStructs),
		compiler.WithWarningsAsErrors(warningsAsErrors),
	)

	type outcome struct {
		res *compiler.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := c.Compile(f, inputName)
		done <- outcome{res, err}
	}()

	var oc outcome
	select {
	case <-ctx.Done():
		return ctx.Err()
	case oc = <-done:
	}
	if oc.err != nil {
		return oc.err
	}
	res := oc.res

	for _, d := range res.Diagnostics {
		if d.Severity == diag.Error {
			log.Printf("ERROR", "%v", d)
		} else {
			log.Printf("WARN", "%v", d)
		}
	}
	if res.Failed() {
		return fmt.Errorf("%s: compilation failed", inputName)
	}

	out, err := os.Create(outputName)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := quadio.Write(out, res.Program); err != nil {
		return err
	}
	return out.Close()
}
