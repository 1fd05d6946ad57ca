package jscore

import "log/slog"

// Version is the version of the core, checked by scenario requirements.
const Version = "0.4.0"

type global struct {
	ObjectPrototype   ObjectRef
	FunctionPrototype ObjectRef
}

// Runtime is one heap with its global environment and intrinsics. It is not
// safe for concurrent use; the symbol registry is the only state shared
// between runtimes.
type Runtime struct {
	heap      heap
	globalEnv EnvRef
	global    global

	stack     []EnvRef
	callDepth int
	cycles    int

	opts options
	log  *slog.Logger
}

func New(opts ...Option) *Runtime {
	r := &Runtime{
		opts: defaultOptions,
	}
	for _, opt := range opts {
		opt.apply(&r.opts)
	}
	r.log = r.opts.logger
	if r.log == nil {
		r.log = discardLogger()
	}
	r.heap.init()
	r.globalEnv = r.newEnv(NoEnv)
	r.initObject()
	return r
}

// Global returns the global environment. It is always a root.
func (r *Runtime) Global() EnvRef {
	return r.globalEnv
}

func (r *Runtime) ObjectPrototype() ObjectRef {
	return r.global.ObjectPrototype
}

func (r *Runtime) FunctionPrototype() ObjectRef {
	return r.global.FunctionPrototype
}

// ActiveEnvironments returns the invocation environments of the calls in
// progress, outermost first.
func (r *Runtime) ActiveEnvironments() []EnvRef {
	return append([]EnvRef(nil), r.stack...)
}

// Lenient reports whether the runtime uses non-strict assignment semantics.
func (r *Runtime) Lenient() bool {
	return r.opts.lenientAssignment
}
