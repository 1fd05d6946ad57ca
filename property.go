package jscore

// walkChain calls fn for obj and then each object on its prototype chain
// until fn returns false or the chain ends. A prototype loop ends the walk at
// the first revisited object.
func (r *Runtime) walkChain(obj ObjectRef, fn func(ref ObjectRef, o objectImpl) bool) error {
	seen := make(map[ObjectRef]struct{}, 4)
	for cur := obj; cur != NoObject; {
		if _, loop := seen[cur]; loop {
			return nil
		}
		seen[cur] = struct{}{}
		o, err := r.heap.object(cur)
		if err != nil {
			return err
		}
		if !fn(cur, o) {
			return nil
		}
		cur = o.base().prototype
	}
	return nil
}

func (r *Runtime) protoValue(o objectImpl) Value {
	if p := o.base().prototype; p != NoObject {
		return p
	}
	return _null
}

// Get reads key from obj or the nearest object on its prototype chain that
// has it. A missing key yields undefined. Getters run with obj as this.
func (r *Runtime) Get(obj ObjectRef, key PropertyKey) (Value, error) {
	return r.get(obj, key, obj)
}

// GetStr is Get with a string key.
func (r *Runtime) GetStr(obj ObjectRef, name string) (Value, error) {
	return r.get(obj, StringKey(name), obj)
}

func (r *Runtime) get(obj ObjectRef, key PropertyKey, receiver Value) (Value, error) {
	if key.sym == nil && key.name == __proto__ {
		o, err := r.heap.object(obj)
		if err != nil {
			return nil, err
		}
		if o.base().getOwnProp(key) == nil {
			return r.protoValue(o), nil
		}
	}
	var prop Value
	err := r.walkChain(obj, func(_ ObjectRef, o objectImpl) bool {
		prop = o.base().getOwnProp(key)
		return prop == nil
	})
	if err != nil {
		return nil, err
	}
	if prop == nil {
		return _undefined, nil
	}
	if p, ok := prop.(*valueProperty); ok {
		return r.propGet(p, receiver)
	}
	return prop, nil
}

func (r *Runtime) propGet(p *valueProperty, this Value) (Value, error) {
	if !p.accessor {
		if p.value != nil {
			return p.value, nil
		}
		return _undefined, nil
	}
	if p.getterFunc == NoObject {
		return _undefined, nil
	}
	return r.Call(p.getterFunc, this)
}

// Set writes key on obj. An accessor found anywhere on the chain has its
// setter called with obj as this; otherwise the value lands in an own
// property of obj, shadowing any inherited one. Prototypes are never written
// implicitly.
func (r *Runtime) Set(obj ObjectRef, key PropertyKey, value Value) error {
	throw := !r.opts.lenientAssignment
	target, err := r.heap.object(obj)
	if err != nil {
		return err
	}
	t := target.base()
	if key.sym == nil && key.name == __proto__ && t.getOwnProp(key) == nil {
		return r.setProtoValue(t, value)
	}

	var found *valueProperty
	var foundOn ObjectRef
	err = r.walkChain(obj, func(ref ObjectRef, o objectImpl) bool {
		prop := o.base().getOwnProp(key)
		if prop == nil {
			return true
		}
		if p, ok := prop.(*valueProperty); ok && (p.accessor || ref == obj) {
			found, foundOn = p, ref
		} else if ref == obj {
			foundOn = ref
		}
		return false
	})
	if err != nil {
		return err
	}

	if found != nil {
		if found.accessor {
			if found.setterFunc == NoObject {
				return r.typeErrorResult(throw, "Cannot set property %s which has only a getter", key)
			}
			_, err := r.Call(found.setterFunc, obj, value)
			return err
		}
		if !found.writable {
			return r.typeErrorResult(throw, "Cannot assign to read only property '%s'", key)
		}
		found.value = value
		return nil
	}
	if foundOn == obj {
		t._put(key, value)
		return nil
	}
	if !t.extensible {
		return r.typeErrorResult(throw, "Cannot add property %s, object is not extensible", key)
	}
	t._put(key, value)
	return nil
}

// SetStr is Set with a string key.
func (r *Runtime) SetStr(obj ObjectRef, name string, value Value) error {
	return r.Set(obj, StringKey(name), value)
}

// Delete removes an own property of obj. Missing and inherited keys report
// success without touching the chain. A non-configurable property reports
// false, or a TypeError in strict mode.
func (r *Runtime) Delete(obj ObjectRef, key PropertyKey) (bool, error) {
	o, err := r.heap.object(obj)
	if err != nil {
		return false, err
	}
	b := o.base()
	prop := b.getOwnProp(key)
	if prop == nil {
		return true, nil
	}
	if p, ok := prop.(*valueProperty); ok && !p.configurable {
		return false, r.typeErrorResult(!r.opts.lenientAssignment, "Cannot delete property '%s' of %s", key, obj)
	}
	b._delete(key)
	return true, nil
}

// HasProperty is the in operator.
func (r *Runtime) HasProperty(obj ObjectRef, key PropertyKey) (bool, error) {
	found := false
	err := r.walkChain(obj, func(_ ObjectRef, o objectImpl) bool {
		found = o.base().hasOwn(key)
		return !found
	})
	return found, err
}

// HasOwnProperty reports whether key is an own property of obj.
func (r *Runtime) HasOwnProperty(obj ObjectRef, key PropertyKey) (bool, error) {
	o, err := r.heap.object(obj)
	if err != nil {
		return false, err
	}
	return o.base().hasOwn(key), nil
}
