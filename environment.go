package jscore

// environment is a lexical scope record. The outer link is fixed when the
// environment is created, so chains cannot loop.
type environment struct {
	outer EnvRef
	vars  map[string]Value
	names []string
}

func (e *environment) trace(m *marker) {
	m.markEnv(e.outer)
	for _, v := range e.vars {
		m.markValue(v)
	}
}

func (e *environment) declare(name string, v Value) {
	if _, exists := e.vars[name]; !exists {
		e.names = append(e.names, name)
	}
	e.vars[name] = v
}

// Binding names a variable slot: the environment that declares it and the
// name. It carries no value; Read and Write go to the live table every time,
// so all bindings to the same slot see each other's writes.
type Binding struct {
	env  EnvRef
	name string
}

func (b Binding) Env() EnvRef {
	return b.env
}

func (b Binding) Name() string {
	return b.name
}

func (r *Runtime) newEnv(outer EnvRef) EnvRef {
	return r.heap.allocEnv(&environment{
		outer: outer,
		vars:  make(map[string]Value),
	})
}

// AllocateEnvironment creates an empty environment whose outer link is
// outer. Pass NoEnv for a detached top-level scope.
func (r *Runtime) AllocateEnvironment(outer EnvRef) (EnvRef, error) {
	if outer != NoEnv {
		if _, err := r.heap.env(outer); err != nil {
			return NoEnv, err
		}
	}
	return r.newEnv(outer), nil
}

// Outer returns the outer link of env.
func (r *Runtime) Outer(env EnvRef) (EnvRef, error) {
	e, err := r.heap.env(env)
	if err != nil {
		return NoEnv, err
	}
	return e.outer, nil
}

// Declare installs name in env. Declaring an existing name replaces the
// value in place: the last declaration wins.
func (r *Runtime) Declare(env EnvRef, name string, value Value) error {
	e, err := r.heap.env(env)
	if err != nil {
		return err
	}
	e.declare(name, value)
	return nil
}

// Resolve finds the environment on env's chain that declares name. At the
// end of the chain it returns a *ReferenceError, or in lenient mode the
// global binding of name, declared as undefined if the global environment
// lacks it. A detached chain still ends at the global environment there.
func (r *Runtime) Resolve(env EnvRef, name string) (Binding, error) {
	for cur := env; cur != NoEnv; {
		e, err := r.heap.env(cur)
		if err != nil {
			return Binding{}, err
		}
		if _, exists := e.vars[name]; exists {
			return Binding{env: cur, name: name}, nil
		}
		cur = e.outer
	}
	if !r.opts.lenientAssignment {
		return Binding{}, &ReferenceError{Name: name}
	}
	g, err := r.heap.env(r.globalEnv)
	if err != nil {
		return Binding{}, err
	}
	if _, exists := g.vars[name]; !exists {
		g.declare(name, _undefined)
		r.log.Debug("implicit global", "name", name)
	}
	return Binding{env: r.globalEnv, name: name}, nil
}

func (r *Runtime) Read(b Binding) (Value, error) {
	e, err := r.heap.env(b.env)
	if err != nil {
		return nil, err
	}
	v, exists := e.vars[b.name]
	if !exists {
		return nil, &ReferenceError{Name: b.name}
	}
	return v, nil
}

func (r *Runtime) Write(b Binding, value Value) error {
	e, err := r.heap.env(b.env)
	if err != nil {
		return err
	}
	if _, exists := e.vars[b.name]; !exists {
		return &ReferenceError{Name: b.name}
	}
	e.vars[b.name] = value
	return nil
}

// Lookup resolves name from env and reads it.
func (r *Runtime) Lookup(env EnvRef, name string) (Value, error) {
	b, err := r.Resolve(env, name)
	if err != nil {
		return nil, err
	}
	return r.Read(b)
}

// Assign resolves name from env and writes value to it.
func (r *Runtime) Assign(env EnvRef, name string, value Value) error {
	b, err := r.Resolve(env, name)
	if err != nil {
		return err
	}
	return r.Write(b, value)
}

// Variables returns the names declared directly in env, in declaration
// order.
func (r *Runtime) Variables(env EnvRef) ([]string, error) {
	e, err := r.heap.env(env)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), e.names...), nil
}
