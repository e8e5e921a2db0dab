package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"regexp"
	"time"

	"golang.org/x/net/context"
	"golang.org/x/sync/errgroup"
)

// gen_quadtests scans internal/quad/quad.go's Op const block for each
// opcode's trailing doc comment and emits internal/quadtest's
// OpDoc map, the same "//go:generate scan one source file, regexp out
// the per-symbol comment, emit a lookup table" shape as the teacher's
// scripts/gen_vm_expects.go, retargeted from vmTestCase builder methods
// to quad.Op documentation.

type namedReader interface {
	io.ReadCloser
	Name() string
}

var (
	in  namedReader    = os.Stdin
	out io.WriteCloser = os.Stdout
)

func parseFlags() {
	flag.Parse()

	args := flag.Args()

	if len(args) > 0 {
		name := args[0]
		f, err := os.Open(name)
		if err != nil {
			log.Fatalf("failed to open %v: %v", name, err)
		}
		args = args[1:]
		in = f
	}

	if len(args) > 0 {
		name := args[0]
		f, err := os.Create(name)
		if err != nil {
			log.Fatalf("failed to create %v: %v", name, err)
		}
		args = args[1:]
		out = f
	}
}

func main() {
	ctx := context.Background()
	parseFlags()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)

	ready := make(chan struct{})

	eg.Go(func() error {
		gofmt := exec.CommandContext(ctx, "goimports")
		fmtPipe, err := gofmt.StdinPipe()
		if err != nil {
			return err
		}

		defer out.Close()
		gofmt.Stdout = out
		gofmt.Stderr = os.Stderr

		out = fmtPipe

		close(ready)
		if err := gofmt.Run(); err != nil {
			return fmt.Errorf("gofmt run failed: %w", err)
		}
		return nil
	})

	eg.Go(func() (rerr error) {
		select {
		case <-ctx.Done():
		case <-ready:
		}

		defer func() {
			if cerr := in.Close(); rerr == nil {
				rerr = cerr
			}
			if cerr := out.Close(); rerr == nil {
				rerr = cerr
			}
		}()

		return run(ctx)
	})

	if err := eg.Wait(); err != nil {
		log.Fatalln(err)
	}
}

var (
	constBlockStart = regexp.MustCompile(`^const \(`)
	opLine          = regexp.MustCompile(`^\tOp(\w+)(?:\s+Op\s*=\s*iota)?(?:\s*//\s*(.*))?$`)
)

// run scans in line by line, picking out every `OpFoo // doc` entry of
// the first const block it finds, and writes a generated OpDoc map
// keyed by the quad.Op constant itself (quad.OpFoo); opcodes without a
// trailing comment get no entry.
func run(ctx context.Context) error {
	var buf bytes.Buffer
	buf.Grow(1024)
	buf.WriteString("package quadtest\n\n")

	buf.WriteString("// @generated from ")
	buf.WriteString(in.Name())
	buf.WriteString("\n\n")

	if args := flag.Args(); len(args) >= 2 {
		buf.WriteString("//go:generate go run scripts/gen_quadtests.go --")
		for _, arg := range args {
			buf.WriteByte(' ')
			buf.WriteString(arg)
		}
		buf.WriteString("\n\n")
	}

	buf.WriteString(`import "github.com/mexlang/mexc/internal/quad"` + "\n\n")
	buf.WriteString("// OpDoc maps an opcode to the doc comment next to its const\n")
	buf.WriteString("// declaration, for richer quadtest failure messages than quad.Op.String() alone.\n")
	buf.WriteString("var OpDoc = map[quad.Op]string{\n")

	inBlock := false
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		line := sc.Text()
		if !inBlock {
			if constBlockStart.MatchString(line) {
				inBlock = true
			}
			continue
		}
		if line == ")" {
			break
		}
		if match := opLine.FindStringSubmatch(line); match != nil {
			name, doc := match[1], match[2]
			if doc == "" {
				continue
			}
			fmt.Fprintf(&buf, "\tquad.Op%s: %q,\n", name, doc)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	buf.WriteString("}\n")

	if err := sc.Err(); err != nil {
		return err
	}
	_, err := buf.WriteTo(out)
	return err
}
