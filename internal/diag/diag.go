// Package diag implements the error sink contract of spec.md §6/§7: a
// stream of (code, args) diagnostics at warning or error severity, with
// semantic errors recovered locally (parsing continues) while still
// marking the overall compilation as failed.
package diag

import (
	"fmt"

	"github.com/mexlang/mexc/internal/token"
)

// Code enumerates the MEXERR_*/MEXWARN_* diagnostic codes named in
// spec.md §6.
type Code int

const (
	ErrDuplicate Code = iota
	ErrUndeclared
	ErrTypeMismatch
	ErrInvalidRange
	ErrNotAFunction
	ErrNotAnLvalue
	ErrBadSubscript
	ErrWrongArgCount
	ErrDupLabel
	ErrRetType
	WarnMeaninglessExpr
	WarnNarrowingConversion
)

var codeNames = map[Code]string{
	ErrDuplicate:            "MEXERR_DUPLICATE",
	ErrUndeclared:           "MEXERR_UNDECLARED",
	ErrTypeMismatch:         "MEXERR_TYPEMISMATCH",
	ErrInvalidRange:         "MEXERR_INVALIDRANGE",
	ErrNotAFunction:         "MEXERR_NOTAFUNCTION",
	ErrNotAnLvalue:          "MEXERR_NOTANLVALUE",
	ErrBadSubscript:         "MEXERR_BADSUBSCRIPT",
	ErrWrongArgCount:        "MEXERR_WRONGARGCOUNT",
	ErrDupLabel:             "MEXERR_DUPLABEL",
	ErrRetType:              "MEXERR_RETTYPE",
	WarnMeaninglessExpr:     "MEXERR_WARN_MEANINGLESSEXPR",
	WarnNarrowingConversion: "MEXERR_WARN_NARROWINGCONVERSION",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Severity distinguishes a warning from an error, per spec.md §7's two
// taxonomic axes (phase, severity); diag only models the semantic-error
// severity axis -- parse-phase errors are reported the same way, tagged
// with ErrCode-less text via Sink.Syntax.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one reported error or warning.
type Diagnostic struct {
	Code     Code
	Severity Severity
	Pos      token.Pos
	Args     []interface{}
	Message  string // set instead of Code for parse-phase syntax errors
}

func (d Diagnostic) String() string {
	msg := d.Message
	if msg == "" {
		msg = fmt.Sprintf(d.format(), d.Args...)
	}
	return fmt.Sprintf("%v: %v: %s", d.Pos, d.Severity, msg)
}

func (d Diagnostic) format() string {
	switch d.Code {
	case ErrDuplicate:
		return "%q is already declared in this scope"
	case ErrUndeclared:
		return "%q is not declared"
	case ErrTypeMismatch:
		return "cannot convert %v to %v"
	case ErrInvalidRange:
		return "invalid array range [%v..%v]"
	case ErrNotAFunction:
		return "%q is not a function"
	case ErrNotAnLvalue:
		return "expression is not an lvalue"
	case ErrBadSubscript:
		return "subscript %v out of range [%v..%v]"
	case ErrWrongArgCount:
		return "wrong number of arguments to %q: got %v, want %v"
	case ErrDupLabel:
		return "label %q already defined"
	case ErrRetType:
		return "cannot return %v from function returning %v"
	case WarnMeaninglessExpr:
		return "expression statement has no effect"
	case WarnNarrowingConversion:
		return "assigning %v into %v truncates the value"
	default:
		return "unknown diagnostic"
	}
}

// Sink accumulates diagnostics for one compilation and answers whether
// the overall pass has failed (spec.md §7: "Compilation exits with a
// failure indicator if any error was reported, regardless of successful
// parse termination").
type Sink struct {
	Diagnostics []Diagnostic
	failed      bool

	// warnAsError promotes every Warn call to a failing Error, per
	// SPEC_FULL.md §4.7's warn/error-split supplement (compiler.WithWarningsAsErrors).
	warnAsError bool
}

// NewSink returns a Sink. warnAsError, if true, makes every warning also
// fail the compilation (compiler.WithWarningsAsErrors).
func NewSink(warnAsError bool) *Sink {
	return &Sink{warnAsError: warnAsError}
}

// Error reports a semantic error at pos. Recovery is the caller's job
// (substitute a plausible value and continue); Error only records the
// failure.
func (s *Sink) Error(pos token.Pos, code Code, args ...interface{}) {
	s.Diagnostics = append(s.Diagnostics, Diagnostic{Code: code, Severity: Error, Pos: pos, Args: args})
	s.failed = true
}

// Warn reports a semantic warning at pos. Warnings never fail the pass
// (spec.md §7: "Warnings... do not suppress code generation") unless the
// sink was constructed with warnAsError.
func (s *Sink) Warn(pos token.Pos, code Code, args ...interface{}) {
	sev := Warning
	if s.warnAsError {
		sev = Error
		s.failed = true
	}
	s.Diagnostics = append(s.Diagnostics, Diagnostic{Code: code, Severity: sev, Pos: pos, Args: args})
}

// Syntax reports a parse-phase error (spec.md §4.1's LALR error-recovery
// protocol triggers this; the message is free text rather than a Code).
func (s *Sink) Syntax(pos token.Pos, message string) {
	s.Diagnostics = append(s.Diagnostics, Diagnostic{Severity: Error, Pos: pos, Message: message})
	s.failed = true
}

// Failed reports whether any error (as opposed to warning) has been
// reported so far.
func (s *Sink) Failed() bool { return s.failed }
