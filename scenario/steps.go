package scenario

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/TruptiM18/jscore"
)

func (h *Host) newObject(a *Args) error {
	if a.Name == "" {
		return fmt.Errorf("object: missing name")
	}
	var obj jscore.ObjectRef
	if a.Proto.Kind == 0 {
		obj = h.rt.NewObject()
	} else {
		proto, err := h.value(&a.Proto)
		if err != nil {
			return err
		}
		switch p := proto.(type) {
		case jscore.ObjectRef:
			obj = h.rt.AllocateObject(p)
		default:
			if !jscore.IsNull(proto) {
				return fmt.Errorf("object: proto must be an object or null, got %s", describe(proto))
			}
			obj = h.rt.AllocateObject(jscore.NoObject)
		}
	}
	h.labels[a.Name] = obj
	return nil
}

func (h *Host) env(a *Args) error {
	if a.Name == "" || a.Name == globalEnv {
		return fmt.Errorf("env: invalid name %q", a.Name)
	}
	outer, err := h.lookupEnv(a.Outer)
	if err != nil {
		return err
	}
	env, err := h.rt.AllocateEnvironment(outer)
	if err != nil {
		return err
	}
	h.envs[a.Name] = env
	return nil
}

func (h *Host) lookupEnv(name string) (jscore.EnvRef, error) {
	if name == "" || name == globalEnv {
		return h.rt.Global(), nil
	}
	if env, ok := h.envs[name]; ok {
		return env, nil
	}
	return jscore.NoEnv, fmt.Errorf("unknown environment %q", name)
}

func (h *Host) lookup(name string) (jscore.Value, error) {
	name = strings.TrimPrefix(name, "@")
	if v, ok := h.labels[name]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("unknown label %q", name)
}

func (h *Host) lookupObject(name string) (jscore.ObjectRef, error) {
	v, err := h.lookup(name)
	if err != nil {
		return jscore.NoObject, err
	}
	if obj, ok := v.(jscore.ObjectRef); ok {
		return obj, nil
	}
	return jscore.NoObject, fmt.Errorf("label %q is not an object", name)
}

// value decodes a scalar node. An absent node is undefined.
func (h *Host) value(n *yaml.Node) (jscore.Value, error) {
	if n.Kind == 0 {
		return jscore.Undefined(), nil
	}
	if n.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("line %d: expected a scalar", n.Line)
	}
	switch n.ShortTag() {
	case "!!null":
		return jscore.Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return jscore.ToValue(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, err
		}
		return jscore.ToValue(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return jscore.ToValue(f), nil
	case "!!str":
		return h.stringValue(n.Value)
	}
	return nil, fmt.Errorf("line %d: unsupported value tag %s", n.Line, n.ShortTag())
}

func (h *Host) stringValue(s string) (jscore.Value, error) {
	switch {
	case strings.HasPrefix(s, "@@"):
		return jscore.ToValue(s[1:]), nil
	case s == "@undefined":
		return jscore.Undefined(), nil
	case strings.HasPrefix(s, "@"):
		return h.lookup(s)
	}
	return jscore.ToValue(s), nil
}

func (h *Host) targetKey(a *Args) (jscore.ObjectRef, jscore.PropertyKey, error) {
	obj, err := h.lookupObject(a.Target)
	if err != nil {
		return jscore.NoObject, jscore.PropertyKey{}, err
	}
	if a.Key.Kind == 0 {
		return jscore.NoObject, jscore.PropertyKey{}, fmt.Errorf("missing key")
	}
	kv, err := h.value(&a.Key)
	if err != nil {
		return jscore.NoObject, jscore.PropertyKey{}, err
	}
	key, err := h.rt.ToPropertyKey(kv)
	if err != nil {
		return jscore.NoObject, jscore.PropertyKey{}, err
	}
	return obj, key, nil
}

func (h *Host) expectValue(a *Args, got jscore.Value) error {
	if a.Expect.Kind == 0 {
		return nil
	}
	want, err := h.value(&a.Expect)
	if err != nil {
		return err
	}
	if !want.SameAs(got) {
		return fmt.Errorf("%w: got %s, want %s", ErrMismatch, describe(got), describe(want))
	}
	return nil
}

func describe(v jscore.Value) string {
	if jscore.TypeOf(v) == "string" {
		return strconv.Quote(v.String())
	}
	return v.String()
}

func (h *Host) enumerate(op string, a *Args) error {
	obj, err := h.lookupObject(a.Target)
	if err != nil {
		return err
	}
	var keys []jscore.PropertyKey
	switch op {
	case "keys":
		keys, err = h.rt.OwnKeys(obj)
	case "forin":
		keys, err = h.rt.ForInKeys(obj)
	case "names":
		keys, err = h.rt.OwnPropertyNames(obj)
	case "symbols":
		keys, err = h.rt.OwnPropertySymbols(obj)
	}
	if err != nil {
		return err
	}
	if a.Expect.Kind == 0 {
		return nil
	}
	if a.Expect.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: %s: expect must be a list", a.Expect.Line, op)
	}

	got := make([]string, 0, len(keys))
	for _, k := range keys {
		got = append(got, k.String())
	}
	want := make([]string, 0, len(a.Expect.Content))
	for _, item := range a.Expect.Content {
		if op != "symbols" {
			want = append(want, item.Value)
			continue
		}
		v, err := h.value(item)
		if err != nil {
			return err
		}
		want = append(want, v.String())
	}
	if !slices.Equal(got, want) {
		return fmt.Errorf("%w: %s %v, want %v", ErrMismatch, op, got, want)
	}
	if op == "symbols" {
		// Descriptions can collide; compare identities too.
		for i, item := range a.Expect.Content {
			v, _ := h.value(item)
			if !keys[i].Value().SameAs(v) {
				return fmt.Errorf("%w: symbol %d is %s, a different symbol with the same description", ErrMismatch, i, got[i])
			}
		}
	}
	return nil
}

func (h *Host) symbol(a *Args) error {
	if a.Name == "" {
		return fmt.Errorf("symbol: missing name")
	}
	var sym *jscore.Symbol
	switch {
	case a.Intern:
		if a.Description == nil {
			return fmt.Errorf("symbol: an interned symbol needs a description")
		}
		sym = jscore.InternSymbol(*a.Description)
	case a.Description == nil:
		sym = jscore.NewUniqueSymbol()
	default:
		sym = jscore.NewSymbol(*a.Description)
	}
	h.labels[a.Name] = sym
	return nil
}

func (h *Host) keyFor(a *Args) error {
	v, err := h.lookup(a.Symbol)
	if err != nil {
		return err
	}
	sym, ok := v.(*jscore.Symbol)
	if !ok {
		return fmt.Errorf("keyfor: label %q is not a symbol", a.Symbol)
	}
	key, found := jscore.LookupInternedKey(sym)
	if a.Found != nil && *a.Found != found {
		return fmt.Errorf("%w: found %t, want %t", ErrMismatch, found, *a.Found)
	}
	got := jscore.Undefined()
	if found {
		got = jscore.ToValue(key)
	}
	return h.expectValue(a, got)
}

func (h *Host) alive(a *Args) error {
	var live bool
	if env, ok := h.envs[a.Target]; ok {
		live = h.rt.IsLiveEnv(env)
	} else {
		obj, err := h.lookupObject(a.Target)
		if err != nil {
			return err
		}
		live = h.rt.IsLive(obj)
	}
	if a.Expect.Kind == 0 {
		if !live {
			return fmt.Errorf("%w: %s was reclaimed", ErrMismatch, a.Target)
		}
		return nil
	}
	return h.expectValue(a, jscore.ToValue(live))
}

// counter binds makeCounter in env: every call returns a new closure over
// its own count, starting at zero.
func (h *Host) counter(a *Args) error {
	env, err := h.lookupEnv(a.Env)
	if err != nil {
		return err
	}
	name := a.Name
	if name == "" {
		name = "makeCounter"
	}
	fn, err := h.rt.NewClosure(env, name, nil, makeCounter)
	if err != nil {
		return err
	}
	if err := h.rt.Declare(env, name, fn); err != nil {
		return err
	}
	h.labels[name] = fn
	return nil
}

func makeCounter(r *jscore.Runtime, call jscore.FunctionCall) (jscore.Value, error) {
	if err := r.Declare(call.Env, "count", jscore.ToValue(0)); err != nil {
		return nil, err
	}
	return r.NewClosure(call.Env, "counter", nil, increment)
}

func increment(r *jscore.Runtime, call jscore.FunctionCall) (jscore.Value, error) {
	b, err := r.Resolve(call.Env, "count")
	if err != nil {
		return nil, err
	}
	v, err := r.Read(b)
	if err != nil {
		return nil, err
	}
	n, err := r.ToNumber(v)
	if err != nil {
		return nil, err
	}
	next := jscore.ToValue(n + 1)
	return next, r.Write(b, next)
}

func (h *Host) call(a *Args) error {
	fn, err := h.lookup(a.Fn)
	if err != nil {
		return err
	}
	this, err := h.value(&a.This)
	if err != nil {
		return err
	}
	var args []jscore.Value
	if a.Arguments.Kind != 0 {
		if a.Arguments.Kind != yaml.SequenceNode {
			return fmt.Errorf("line %d: call: args must be a list", a.Arguments.Line)
		}
		for _, item := range a.Arguments.Content {
			v, err := h.value(item)
			if err != nil {
				return err
			}
			args = append(args, v)
		}
	}
	v, err := h.rt.Call(fn, this, args...)
	if err != nil {
		return err
	}
	if a.As != "" {
		h.labels[a.As] = v
	}
	return h.expectValue(a, v)
}
