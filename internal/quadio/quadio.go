// Package quadio implements the Quad sink contract of spec.md §6: an
// append-only, length-prefixed binary encoding of a compiled program's
// quad buffers and symbol table, written alongside the diagnostics
// stream once a compilation succeeds.
package quadio

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/mexlang/mexc/internal/quad"
	"github.com/mexlang/mexc/internal/symtab"
)

// magic identifies a mexc quad-stream file; version allows the encoding
// to evolve without breaking existing readers silently.
const (
	magic   uint32 = 0x4d455851 // "MEXQ"
	version uint32 = 1
)

// Function is one compiled function's quad buffer plus the symbol-table
// metadata a back end needs to lower it: its name, argument layout, and
// start/end quad indices (spec.md §3's curfn record, post-compilation).
type Function struct {
	Name      string
	Args      []symtab.Arg
	Variadic  bool
	StartQuad int
	EndQuad   int
	Quads     []quad.Quad
}

// Program is the full output of one compilation: every compiled function
// body, plus the flattened global symbol table a reader needs to resolve
// non-local symbol operands. The order of Functions and of Globals is not
// defined; in particular it is not declaration order.
type Program struct {
	Functions []Function
	Globals   []Global
}

// Global describes one file-scope symbol (a variable or a function
// declaration/definition) for the serialized symbol table spec.md §6
// says "Symbol operands reference entries in."
type Global struct {
	Name   string
	Kind   symtab.Kind
	Offset int
}

// Write encodes prog to w as a sequence of length-prefixed records.
func Write(w io.Writer, prog *Program) error {
	bw := &byteWriter{w: w}
	bw.u32(magic)
	bw.u32(version)

	bw.u32(uint32(len(prog.Globals)))
	for _, g := range prog.Globals {
		bw.str(g.Name)
		bw.u32(uint32(g.Kind))
		bw.i64(int64(g.Offset))
	}

	bw.u32(uint32(len(prog.Functions)))
	for _, fn := range prog.Functions {
		if err := writeFunction(bw, fn); err != nil {
			return err
		}
	}
	return bw.err
}

func writeFunction(bw *byteWriter, fn Function) error {
	bw.str(fn.Name)
	bw.u32(uint32(len(fn.Args)))
	for _, a := range fn.Args {
		bw.str(a.Name)
		bw.u8(boolByte(a.Ref))
	}
	bw.u8(boolByte(fn.Variadic))
	bw.i64(int64(fn.StartQuad))
	bw.i64(int64(fn.EndQuad))

	bw.u32(uint32(len(fn.Quads)))
	for _, q := range fn.Quads {
		bw.u32(uint32(q.Op))
		writeOperand(bw, q.Dest)
		writeOperand(bw, q.Src1)
		writeOperand(bw, q.Src2)
	}
	return bw.err
}

func writeOperand(bw *byteWriter, o quad.Operand) {
	bw.u8(uint8(o.Kind))
	switch o.Kind {
	case quad.OperandConst:
		bw.i64(o.Const)
	case quad.OperandSymbol:
		bw.str(o.Symbol)
	case quad.OperandTemp:
		bw.i64(int64(o.Temp))
	case quad.OperandTarget:
		bw.u8(boolByte(o.Target.Resolved))
		bw.i64(int64(o.Target.Index))
		bw.i64(int64(o.Target.ListID))
	}
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// byteWriter accumulates the first error encountered so call sites don't
// need to check every individual binary.Write ("sticky error" writer
// idiom).
type byteWriter struct {
	w   io.Writer
	err error
}

func (bw *byteWriter) u8(v uint8) {
	if bw.err != nil {
		return
	}
	_, bw.err = bw.w.Write([]byte{v})
}

func (bw *byteWriter) u32(v uint32) {
	if bw.err != nil {
		return
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, bw.err = bw.w.Write(buf[:])
}

func (bw *byteWriter) i64(v int64) {
	if bw.err != nil {
		return
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	_, bw.err = bw.w.Write(buf[:])
}

func (bw *byteWriter) str(s string) {
	bw.u32(uint32(len(s)))
	if bw.err != nil {
		return
	}
	_, bw.err = io.WriteString(bw.w, s)
}

// Read decodes a Program previously written by Write.
func Read(r io.Reader) (*Program, error) {
	br := &byteReader{r: r}
	gotMagic := br.u32()
	if br.err != nil {
		return nil, br.err
	}
	if gotMagic != magic {
		return nil, fmt.Errorf("quadio: bad magic %#x", gotMagic)
	}
	gotVersion := br.u32()
	if gotVersion != version {
		return nil, fmt.Errorf("quadio: unsupported version %d", gotVersion)
	}

	prog := &Program{}
	nGlobals := br.u32()
	for i := uint32(0); i < nGlobals && br.err == nil; i++ {
		var g Global
		g.Name = br.str()
		g.Kind = symtab.Kind(br.u32())
		g.Offset = int(br.i64())
		prog.Globals = append(prog.Globals, g)
	}

	nFuncs := br.u32()
	for i := uint32(0); i < nFuncs && br.err == nil; i++ {
		fn, err := readFunction(br)
		if err != nil {
			return nil, err
		}
		prog.Functions = append(prog.Functions, fn)
	}
	if br.err != nil {
		return nil, br.err
	}
	return prog, nil
}

func readFunction(br *byteReader) (Function, error) {
	var fn Function
	fn.Name = br.str()
	nArgs := br.u32()
	for i := uint32(0); i < nArgs && br.err == nil; i++ {
		name := br.str()
		ref := br.u8() != 0
		fn.Args = append(fn.Args, symtab.Arg{Name: name, Ref: ref})
	}
	fn.Variadic = br.u8() != 0
	fn.StartQuad = int(br.i64())
	fn.EndQuad = int(br.i64())

	nQuads := br.u32()
	for i := uint32(0); i < nQuads && br.err == nil; i++ {
		op := quad.Op(br.u32())
		dest := readOperand(br)
		src1 := readOperand(br)
		src2 := readOperand(br)
		fn.Quads = append(fn.Quads, quad.Quad{Op: op, Dest: dest, Src1: src1, Src2: src2})
	}
	return fn, br.err
}

func readOperand(br *byteReader) quad.Operand {
	kind := quad.OperandKind(br.u8())
	switch kind {
	case quad.OperandConst:
		return quad.ConstOperand(br.i64())
	case quad.OperandSymbol:
		return quad.SymbolOperand(br.str())
	case quad.OperandTemp:
		return quad.TempOperand(int(br.i64()))
	case quad.OperandTarget:
		resolved := br.u8() != 0
		index := int(br.i64())
		listID := int(br.i64())
		return quad.TargetOperand(quad.Target{Resolved: resolved, Index: index, ListID: listID})
	default:
		return quad.Operand{}
	}
}

type byteReader struct {
	r   io.Reader
	err error
}

func (br *byteReader) u8() uint8 {
	if br.err != nil {
		return 0
	}
	var buf [1]byte
	_, br.err = io.ReadFull(br.r, buf[:])
	return buf[0]
}

func (br *byteReader) u32() uint32 {
	if br.err != nil {
		return 0
	}
	var buf [4]byte
	_, br.err = io.ReadFull(br.r, buf[:])
	return binary.LittleEndian.Uint32(buf[:])
}

func (br *byteReader) i64() int64 {
	if br.err != nil {
		return 0
	}
	var buf [8]byte
	_, br.err = io.ReadFull(br.r, buf[:])
	return int64(binary.LittleEndian.Uint64(buf[:]))
}

func (br *byteReader) str() string {
	n := br.u32()
	if br.err != nil || n == 0 {
		return ""
	}
	buf := make([]byte, n)
	_, br.err = io.ReadFull(br.r, buf)
	return string(buf)
}
