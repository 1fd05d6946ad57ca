package jscore

import "math"

// Hint is the preferred type passed to an object-to-primitive conversion.
type Hint string

const (
	HintDefault Hint = "default"
	HintNumber  Hint = "number"
	HintString  Hint = "string"
)

// ToPrimitive converts v to a primitive. Primitives are returned unchanged.
// For objects Symbol.toPrimitive is tried first; otherwise toString and
// valueOf are tried in the order the hint prefers, skipping any that return
// an object.
func (r *Runtime) ToPrimitive(v Value, hint Hint) (Value, error) {
	obj, ok := v.(ObjectRef)
	if !ok {
		return v, nil
	}
	if v, err := r.tryExoticToPrimitive(obj, hint); v != nil || err != nil {
		return v, err
	}
	order := [2]string{"valueOf", "toString"}
	if hint == HintString {
		order = [2]string{"toString", "valueOf"}
	}
	for _, name := range order {
		v, err := r.tryPrimitive(obj, name)
		if v != nil || err != nil {
			return v, err
		}
	}
	return nil, newTypeError("Cannot convert object to primitive value")
}

func (r *Runtime) tryExoticToPrimitive(obj ObjectRef, hint Hint) (Value, error) {
	method, err := r.Get(obj, SymbolKey(SymToPrimitive))
	if err != nil {
		return nil, err
	}
	if method == _undefined || method == _null {
		return nil, nil
	}
	if !r.IsCallable(method) {
		return nil, newTypeError("%s is not a method", method)
	}
	v, err := r.Call(method, obj, stringValue(string(hint)))
	if err != nil {
		return nil, err
	}
	if _, fail := v.(ObjectRef); fail {
		return nil, newTypeError("Cannot convert object to primitive value")
	}
	return v, nil
}

func (r *Runtime) tryPrimitive(obj ObjectRef, methodName string) (Value, error) {
	method, err := r.GetStr(obj, methodName)
	if err != nil {
		return nil, err
	}
	if !r.IsCallable(method) {
		return nil, nil
	}
	v, err := r.Call(method, obj)
	if err != nil {
		return nil, err
	}
	if _, fail := v.(ObjectRef); fail {
		return nil, nil
	}
	return v, nil
}

// ToString converts v to a string. Symbols do not convert implicitly.
func (r *Runtime) ToString(v Value) (string, error) {
	p, err := r.ToPrimitive(v, HintString)
	if err != nil {
		return "", err
	}
	if _, ok := p.(*Symbol); ok {
		return "", newTypeError("Cannot convert a Symbol value to a string")
	}
	return p.String(), nil
}

// ToNumber converts v to a number.
func (r *Runtime) ToNumber(v Value) (float64, error) {
	p, err := r.ToPrimitive(v, HintNumber)
	if err != nil {
		return math.NaN(), err
	}
	if _, ok := p.(*Symbol); ok {
		return math.NaN(), newTypeError("Cannot convert a Symbol value to a number")
	}
	return p.ToFloat(), nil
}

// ToPropertyKey converts v to a property key. Symbols stay symbols; numbers
// use their canonical string form, so 0 and "0" name the same property.
func (r *Runtime) ToPropertyKey(v Value) (PropertyKey, error) {
	p, err := r.ToPrimitive(v, HintString)
	if err != nil {
		return PropertyKey{}, err
	}
	if s, ok := p.(*Symbol); ok {
		return SymbolKey(s), nil
	}
	return StringKey(p.String()), nil
}
