package jscore

import "log/slog"

var defaultOptions = options{}

type Option interface {
	apply(*options)
}

// RootEnumerator reports the environments the host keeps active outside the
// runtime's own call stack. The collector calls it once per cycle.
type RootEnumerator func() []EnvRef

type options struct {
	lenientAssignment bool
	rootEnumerator    RootEnumerator
	collectThreshold  int
	logger            *slog.Logger
}

type funcOption struct {
	f func(*options)
}

func (fdo *funcOption) apply(do *options) {
	fdo.f(do)
}

func newFuncOption(f func(*options)) *funcOption {
	return &funcOption{
		f: f,
	}
}

// WithLenientAssignment selects non-strict semantics: resolving an unknown
// name creates a global, and failed writes and deletes are silently ignored
// instead of returning a TypeError.
func WithLenientAssignment(lenient bool) Option {
	return newFuncOption(func(o *options) {
		o.lenientAssignment = lenient
	})
}

// WithRootEnumerator installs the host's active-environment callback.
func WithRootEnumerator(fn RootEnumerator) Option {
	return newFuncOption(func(o *options) {
		o.rootEnumerator = fn
	})
}

// WithCollectThreshold sets how many allocations MaybeCollect waits for
// before running a cycle. Zero disables it.
func WithCollectThreshold(n int) Option {
	return newFuncOption(func(o *options) {
		o.collectThreshold = n
	})
}

// WithLogger sets the logger for debug records about collection cycles and
// implicit globals. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return newFuncOption(func(o *options) {
		o.logger = l
	})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
