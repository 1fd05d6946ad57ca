package jscore

// Func is the body of a function. For closures call.Env is the fresh
// invocation environment with the parameters already declared; native
// functions get NoEnv.
type Func func(r *Runtime, call FunctionCall) (Value, error)

type FunctionCall struct {
	This      Value
	Arguments []Value
	Callee    ObjectRef
	Env       EnvRef
}

func (f FunctionCall) Argument(idx int) Value {
	if idx < len(f.Arguments) {
		return f.Arguments[idx]
	}
	return _undefined
}

// funcObject is a closure: a body plus the environment it was created in.
type funcObject struct {
	baseObject

	name   string
	params []string
	env    EnvRef
	body   Func
}

type nativeFuncObject struct {
	baseObject

	name string
	f    Func
}

func (f *funcObject) trace(m *marker) {
	f.baseObject.trace(m)
	m.markEnv(f.env)
}

func (r *Runtime) initFuncProps(b *baseObject, name string, length int) {
	b._putProp("length", intToValue(int64(length)), false, false, true)
	b._putProp("name", stringValue(name), false, false, true)
}

// NewClosure creates a function object that captures env. Every call of the
// function gets a new environment whose outer link is env; closures created
// against the same env share it.
func (r *Runtime) NewClosure(env EnvRef, name string, params []string, body Func) (ObjectRef, error) {
	if _, err := r.heap.env(env); err != nil {
		return NoObject, err
	}
	f := &funcObject{
		baseObject: baseObject{
			class:      classFunction,
			prototype:  r.global.FunctionPrototype,
			extensible: true,
		},
		name:   name,
		params: append([]string(nil), params...),
		env:    env,
		body:   body,
	}
	f.init()
	ref := r.heap.allocObject(f)
	r.initFuncProps(&f.baseObject, name, len(params))
	f.addPrototype(r, ref)
	return ref, nil
}

func (f *funcObject) addPrototype(r *Runtime, self ObjectRef) {
	proto := r.NewObject()
	po, _ := r.heap.object(proto)
	po.base()._putProp("constructor", self, true, false, true)
	f._putProp("prototype", proto, true, false, false)
}

// NewNativeFunction wraps a Go function as a callable object.
func (r *Runtime) NewNativeFunction(name string, length int, fn Func) ObjectRef {
	f := &nativeFuncObject{
		baseObject: baseObject{
			class:      classFunction,
			prototype:  r.global.FunctionPrototype,
			extensible: true,
		},
		name: name,
		f:    fn,
	}
	f.init()
	r.initFuncProps(&f.baseObject, name, length)
	return r.heap.allocObject(f)
}

// CapturedEnvironment returns the environment a closure was created in.
func (r *Runtime) CapturedEnvironment(fn ObjectRef) (EnvRef, error) {
	o, err := r.heap.object(fn)
	if err != nil {
		return NoEnv, err
	}
	if f, ok := o.(*funcObject); ok {
		return f.env, nil
	}
	return NoEnv, newTypeError("%s is not a closure", fn)
}

// IsCallable reports whether v refers to a function object.
func (r *Runtime) IsCallable(v Value) bool {
	ref, ok := v.(ObjectRef)
	if !ok {
		return false
	}
	o, err := r.heap.object(ref)
	if err != nil {
		return false
	}
	switch o.(type) {
	case *funcObject, *nativeFuncObject:
		return true
	}
	return false
}

// Call invokes fn with the given this value and arguments.
func (r *Runtime) Call(fn Value, this Value, args ...Value) (Value, error) {
	ref, ok := fn.(ObjectRef)
	if !ok {
		return nil, newTypeError("%s is not a function", fn)
	}
	o, err := r.heap.object(ref)
	if err != nil {
		return nil, err
	}
	if this == nil {
		this = _undefined
	}
	switch f := o.(type) {
	case *funcObject:
		env := r.newEnv(f.env)
		e, _ := r.heap.env(env)
		for i, p := range f.params {
			if i < len(args) {
				e.declare(p, args[i])
			} else {
				e.declare(p, _undefined)
			}
		}
		r.stack = append(r.stack, env)
		r.callDepth++
		defer func() {
			r.stack = r.stack[:len(r.stack)-1]
			r.callDepth--
		}()
		return result(f.body(r, FunctionCall{This: this, Arguments: args, Callee: ref, Env: env}))
	case *nativeFuncObject:
		r.callDepth++
		defer func() {
			r.callDepth--
		}()
		return result(f.f(r, FunctionCall{This: this, Arguments: args, Callee: ref}))
	}
	return nil, newTypeError("%s is not a function", fn)
}

func result(v Value, err error) (Value, error) {
	if err != nil {
		return nil, err
	}
	if v == nil {
		return _undefined, nil
	}
	return v, nil
}

// Construct is the new operator: the new object inherits from
// fn.prototype, and the body's result replaces it only if that result is an
// object.
func (r *Runtime) Construct(fn Value, args ...Value) (ObjectRef, error) {
	if !r.IsCallable(fn) {
		return NoObject, newTypeError("%s is not a constructor", fn)
	}
	ref := fn.(ObjectRef)
	protoVal, err := r.Get(ref, StringKey("prototype"))
	if err != nil {
		return NoObject, err
	}
	proto, ok := protoVal.(ObjectRef)
	if !ok {
		proto = r.global.ObjectPrototype
	}
	obj := r.AllocateObject(proto)
	ret, err := r.Call(ref, obj, args...)
	if err != nil {
		return NoObject, err
	}
	if o, ok := ret.(ObjectRef); ok {
		return o, nil
	}
	return obj, nil
}

// InstanceOf implements the instanceof operator. A Symbol.hasInstance method
// on ctor decides the result; otherwise it reports whether ctor.prototype is
// on v's prototype chain.
func (r *Runtime) InstanceOf(v Value, ctor ObjectRef) (bool, error) {
	handler, err := r.Get(ctor, SymbolKey(SymHasInstance))
	if err != nil {
		return false, err
	}
	if !IsUndefined(handler) && !IsNull(handler) {
		if !r.IsCallable(handler) {
			return false, newTypeError("%s is not a function", SymHasInstance.desc)
		}
		res, err := r.Call(handler, ctor, v)
		if err != nil {
			return false, err
		}
		return res.ToBoolean(), nil
	}
	return r.ordinaryHasInstance(v, ctor)
}

func (r *Runtime) ordinaryHasInstance(v Value, ctor ObjectRef) (bool, error) {
	if !r.IsCallable(ctor) {
		return false, newTypeError("Right-hand side of 'instanceof' is not callable")
	}
	obj, ok := v.(ObjectRef)
	if !ok {
		return false, nil
	}
	protoVal, err := r.Get(ctor, StringKey("prototype"))
	if err != nil {
		return false, err
	}
	proto, ok := protoVal.(ObjectRef)
	if !ok {
		return false, newTypeError("Function has non-object prototype '%s' in instanceof check", protoVal)
	}
	found := false
	err = r.walkChain(obj, func(_ ObjectRef, o objectImpl) bool {
		if o.base().prototype == proto {
			found = true
			return false
		}
		return true
	})
	return found, err
}
