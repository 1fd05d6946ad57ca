package jscore

// Flag is a tri-state attribute for property definitions.
type Flag int

const (
	FLAG_NOT_SET Flag = iota
	FLAG_FALSE
	FLAG_TRUE
)

func (f Flag) Bool() bool {
	return f == FLAG_TRUE
}

func ToFlag(b bool) Flag {
	if b {
		return FLAG_TRUE
	}
	return FLAG_FALSE
}

// PropertyDescriptor describes a property to define. Getter and Setter are
// function objects or NoObject; a descriptor with either is an accessor.
type PropertyDescriptor struct {
	Value Value

	Writable, Configurable, Enumerable Flag

	Getter, Setter ObjectRef
}

func (p PropertyDescriptor) isAccessor() bool {
	return p.Getter != NoObject || p.Setter != NoObject
}

// AllocateObject creates an empty ordinary object with the given prototype,
// or none for NoObject.
func (r *Runtime) AllocateObject(proto ObjectRef) ObjectRef {
	o := &baseObject{
		class:      classObject,
		prototype:  proto,
		extensible: true,
	}
	o.init()
	return r.heap.allocObject(o)
}

// NewObject creates an empty object inheriting from Object.prototype.
func (r *Runtime) NewObject() ObjectRef {
	return r.AllocateObject(r.global.ObjectPrototype)
}

// ClassName returns the internal class of obj: "Object" or "Function".
func (r *Runtime) ClassName(obj ObjectRef) (string, error) {
	o, err := r.heap.object(obj)
	if err != nil {
		return "", err
	}
	return o.className(), nil
}

// TypeOf is the typeof operator.
func (r *Runtime) TypeOf(v Value) string {
	if r.IsCallable(v) {
		return "function"
	}
	return v.typeOf()
}

func (r *Runtime) GetPrototypeOf(obj ObjectRef) (Value, error) {
	o, err := r.heap.object(obj)
	if err != nil {
		return nil, err
	}
	return r.protoValue(o), nil
}

// SetPrototypeOf replaces the prototype link of obj. null clears it, an
// object replaces it and any other value is ignored. Loops are allowed.
func (r *Runtime) SetPrototypeOf(obj ObjectRef, proto Value) error {
	o, err := r.heap.object(obj)
	if err != nil {
		return err
	}
	return r.setProtoValue(o.base(), proto)
}

func (r *Runtime) setProtoValue(o *baseObject, val Value) error {
	var proto ObjectRef
	if val != _null {
		if obj, ok := val.(ObjectRef); ok {
			if _, err := r.heap.object(obj); err != nil {
				return err
			}
			proto = obj
		} else {
			return nil
		}
	}
	if o.prototype == proto {
		return nil
	}
	if !o.extensible {
		return r.typeErrorResult(!r.opts.lenientAssignment, "object is not extensible")
	}
	o.prototype = proto
	return nil
}

// PreventExtensions stops new own properties from being added to obj.
func (r *Runtime) PreventExtensions(obj ObjectRef) error {
	o, err := r.heap.object(obj)
	if err != nil {
		return err
	}
	o.base().extensible = false
	return nil
}

// DefineOwnProperty creates or updates an own property of obj from descr.
// Attributes left FLAG_NOT_SET keep their current value, or default to false
// for a new property.
func (r *Runtime) DefineOwnProperty(obj ObjectRef, key PropertyKey, descr PropertyDescriptor) error {
	o, err := r.heap.object(obj)
	if err != nil {
		return err
	}
	b := o.base()
	existingValue := b.getOwnProp(key)
	for _, f := range []ObjectRef{descr.Getter, descr.Setter} {
		if f != NoObject && !r.IsCallable(f) {
			return newTypeError("Getter or setter must be a function: %s", f)
		}
	}

	var existing *valueProperty
	if existingValue == nil {
		if !b.extensible {
			return newTypeError("Cannot define property %s, object is not extensible", key)
		}
		existing = &valueProperty{}
	} else {
		var ok bool
		if existing, ok = existingValue.(*valueProperty); !ok {
			existing = &valueProperty{
				writable:     true,
				enumerable:   true,
				configurable: true,
				value:        existingValue,
			}
		}
		if !existing.configurable {
			if descr.Configurable == FLAG_TRUE ||
				descr.Enumerable != FLAG_NOT_SET && descr.Enumerable.Bool() != existing.enumerable ||
				existing.accessor != descr.isAccessor() && (descr.Value != nil || descr.isAccessor()) ||
				!existing.accessor && !existing.writable && (descr.Writable == FLAG_TRUE || descr.Value != nil && !descr.Value.SameAs(existing.value)) ||
				existing.accessor && (descr.Getter != NoObject && descr.Getter != existing.getterFunc || descr.Setter != NoObject && descr.Setter != existing.setterFunc) {
				return newTypeError("Cannot redefine property: %s", key)
			}
		}
	}

	if descr.Writable != FLAG_NOT_SET {
		existing.writable = descr.Writable.Bool()
	}
	if descr.Enumerable != FLAG_NOT_SET {
		existing.enumerable = descr.Enumerable.Bool()
	}
	if descr.Configurable != FLAG_NOT_SET {
		existing.configurable = descr.Configurable.Bool()
	}
	if descr.Value != nil {
		existing.value = descr.Value
		existing.getterFunc = NoObject
		existing.setterFunc = NoObject
		existing.accessor = false
	} else if descr.Writable != FLAG_NOT_SET {
		existing.accessor = false
	}
	if descr.isAccessor() {
		if descr.Getter != NoObject {
			existing.getterFunc = descr.Getter
		}
		if descr.Setter != NoObject {
			existing.setterFunc = descr.Setter
		}
		existing.value = nil
		existing.writable = false
		existing.accessor = true
	}
	if !existing.accessor && existing.value == nil {
		existing.value = _undefined
	}

	if existing.writable && existing.enumerable && existing.configurable && !existing.accessor {
		b._put(key, existing.value)
	} else {
		b._put(key, existing)
	}
	return nil
}

// DefineDataProperty is DefineOwnProperty for a data property.
func (r *Runtime) DefineDataProperty(obj ObjectRef, key PropertyKey, value Value, writable, configurable, enumerable Flag) error {
	return r.DefineOwnProperty(obj, key, PropertyDescriptor{
		Value:        value,
		Writable:     writable,
		Configurable: configurable,
		Enumerable:   enumerable,
	})
}

// DefineAccessorProperty is DefineOwnProperty for a getter/setter pair.
func (r *Runtime) DefineAccessorProperty(obj ObjectRef, key PropertyKey, getter, setter ObjectRef, configurable, enumerable Flag) error {
	if getter == NoObject && setter == NoObject {
		return newTypeError("accessor property %s needs a getter or a setter", key)
	}
	return r.DefineOwnProperty(obj, key, PropertyDescriptor{
		Getter:       getter,
		Setter:       setter,
		Configurable: configurable,
		Enumerable:   enumerable,
	})
}

// OwnKeys lists the enumerable own string keys of obj: integer-like keys in
// ascending numeric order, then the others in insertion order. Symbol keys
// never appear. This is Object.keys.
func (r *Runtime) OwnKeys(obj ObjectRef) ([]PropertyKey, error) {
	o, err := r.heap.object(obj)
	if err != nil {
		return nil, err
	}
	return o.base().ownKeys(false, nil), nil
}

// OwnPropertyNames is OwnKeys including non-enumerable keys.
func (r *Runtime) OwnPropertyNames(obj ObjectRef) ([]PropertyKey, error) {
	o, err := r.heap.object(obj)
	if err != nil {
		return nil, err
	}
	return o.base().ownKeys(true, nil), nil
}

// OwnPropertySymbols lists the own symbol keys of obj in insertion order.
func (r *Runtime) OwnPropertySymbols(obj ObjectRef) ([]PropertyKey, error) {
	o, err := r.heap.object(obj)
	if err != nil {
		return nil, err
	}
	return o.base().ownSymbols(true, nil), nil
}

// ForInKeys lists the keys a for-in loop visits: the enumerable string keys
// of obj, then those of each prototype not already seen. A key is reported
// once, at its first occurrence; a non-enumerable own key still hides the
// inherited one.
func (r *Runtime) ForInKeys(obj ObjectRef) ([]PropertyKey, error) {
	var keys []PropertyKey
	seen := make(map[string]struct{})
	err := r.walkChain(obj, func(_ ObjectRef, o objectImpl) bool {
		b := o.base()
		for _, k := range b.ownKeys(true, nil) {
			if _, dup := seen[k.name]; dup {
				continue
			}
			seen[k.name] = struct{}{}
			if isEnumerable(b.values[k.name]) {
				keys = append(keys, k)
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// ObjectAssign copies the enumerable own string and symbol properties of
// each source into target through Set, left to right. This is
// Object.assign: symbols are copied even though enumeration skips them.
func (r *Runtime) ObjectAssign(target ObjectRef, sources ...ObjectRef) error {
	if _, err := r.heap.object(target); err != nil {
		return err
	}
	for _, src := range sources {
		o, err := r.heap.object(src)
		if err != nil {
			return err
		}
		b := o.base()
		keys := b.ownSymbols(false, b.ownKeys(false, nil))
		for _, k := range keys {
			v, err := r.Get(src, k)
			if err != nil {
				return err
			}
			if err := r.Set(target, k, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Runtime) objectproto_toString(_ *Runtime, call FunctionCall) (Value, error) {
	switch this := call.This.(type) {
	case valueUndefined:
		return stringValue("[object Undefined]"), nil
	case valueNull:
		return stringValue("[object Null]"), nil
	case ObjectRef:
		tag, err := r.Get(this, SymbolKey(SymToStringTag))
		if err != nil {
			return nil, err
		}
		if s, ok := tag.(valueString); ok {
			return stringValue("[object " + string(s) + "]"), nil
		}
		class, err := r.ClassName(this)
		if err != nil {
			return nil, err
		}
		return stringValue("[object " + class + "]"), nil
	}
	return stringValue("[object " + primitiveClass(call.This) + "]"), nil
}

func primitiveClass(v Value) string {
	switch v.(type) {
	case valueInt, valueFloat:
		return "Number"
	case valueString:
		return "String"
	case valueBool:
		return "Boolean"
	case *Symbol:
		return "Symbol"
	}
	return classObject
}

func (r *Runtime) objectproto_valueOf(_ *Runtime, call FunctionCall) (Value, error) {
	return call.This, nil
}

func (r *Runtime) objectproto_hasOwnProperty(_ *Runtime, call FunctionCall) (Value, error) {
	key, err := r.ToPropertyKey(call.Argument(0))
	if err != nil {
		return nil, err
	}
	obj, ok := call.This.(ObjectRef)
	if !ok {
		return valueFalse, nil
	}
	has, err := r.HasOwnProperty(obj, key)
	if err != nil {
		return nil, err
	}
	return ToValue(has), nil
}

func (r *Runtime) initObject() {
	r.global.ObjectPrototype = r.AllocateObject(NoObject)

	fp := &nativeFuncObject{
		baseObject: baseObject{
			class:      classFunction,
			prototype:  r.global.ObjectPrototype,
			extensible: true,
		},
		f: func(*Runtime, FunctionCall) (Value, error) {
			return _undefined, nil
		},
	}
	fp.init()
	r.initFuncProps(&fp.baseObject, "", 0)
	r.global.FunctionPrototype = r.heap.allocObject(fp)

	o, _ := r.heap.object(r.global.ObjectPrototype)
	b := o.base()
	b._putProp("toString", r.NewNativeFunction("toString", 0, r.objectproto_toString), true, false, true)
	b._putProp("valueOf", r.NewNativeFunction("valueOf", 0, r.objectproto_valueOf), true, false, true)
	b._putProp("hasOwnProperty", r.NewNativeFunction("hasOwnProperty", 1, r.objectproto_hasOwnProperty), true, false, true)
}
