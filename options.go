package compiler

// Option configures a Compiler, following the teacher's VMOption
// functional-options pattern (api.go/options.go): a closed interface
// with an unexported apply method, a variadic Options combinator that
// flattens nested option lists, and a no-op zero value.
type Option interface{ apply(c *config) }

type config struct {
	// padStructs enables back-end-style struct field alignment instead of
	// the default packed (no-padding) layout spec.md §4.3 describes.
	padStructs bool

	// warningsAsErrors promotes every diag.Warning to a failing
	// diag.Error, for callers that want a stricter build (e.g. CI).
	warningsAsErrors bool
}

func defaultConfig() config {
	return config{}
}

// Options flattens a list of Option values into one, the same way the
// teacher's VMOptions does for VMOption.
func Options(opts ...Option) Option {
	var res options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil, noption:
		case options:
			res = append(res, impl...)
		default:
			res = append(res, opt)
		}
	}
	switch len(res) {
	case 0:
		return noption{}
	case 1:
		return res[0]
	default:
		return res
	}
}

type noption struct{}

func (noption) apply(*config) {}

type options []Option

func (opts options) apply(c *config) {
	for _, opt := range opts {
		if opt != nil {
			opt.apply(c)
		}
	}
}

type padStructsOption bool

func (o padStructsOption) apply(c *config) { c.padStructs = bool(o) }

// WithStructPadding toggles back-end-style field alignment in struct
// descriptors, per SPEC_FULL.md §4.3's supplement to spec.md §4.3's
// "no padding unless the back-end requires it" clause.
func WithStructPadding(pad bool) Option { return padStructsOption(pad) }

type warningsAsErrorsOption bool

func (o warningsAsErrorsOption) apply(c *config) { c.warningsAsErrors = bool(o) }

// WithWarningsAsErrors promotes every warning diagnostic to a failing
// error, per SPEC_FULL.md §4.7's warn/error-split supplement.
func WithWarningsAsErrors(v bool) Option { return warningsAsErrorsOption(v) }
