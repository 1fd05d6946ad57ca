package jscore

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuncProps(t *testing.T) {
	r := New()
	fn, err := r.NewClosure(r.Global(), "sum", []string{"a", "b"}, func(*Runtime, FunctionCall) (Value, error) {
		return nil, nil
	})
	require.NoError(t, err)

	assert.Equal(t, "sum", mustGet(t, r, fn, "name").String())
	assert.True(t, mustGet(t, r, fn, "length").SameAs(intToValue(2)))
	assert.Equal(t, "function", r.TypeOf(fn))
	assert.Equal(t, "object", TypeOf(fn))

	keys, err := r.OwnKeys(fn)
	require.NoError(t, err)
	assert.Empty(t, keys)

	keys, err = r.OwnPropertyNames(fn)
	require.NoError(t, err)
	assert.Equal(t, []string{"length", "name", "prototype"}, names(keys))

	proto, err := r.GetPrototypeOf(fn)
	require.NoError(t, err)
	assert.Equal(t, r.FunctionPrototype(), proto)
}

func TestFuncPrototypeConstructor(t *testing.T) {
	r := New()
	fn, err := r.NewClosure(r.Global(), "A", nil, func(*Runtime, FunctionCall) (Value, error) {
		return nil, nil
	})
	require.NoError(t, err)
	proto := mustGet(t, r, fn, "prototype").(ObjectRef)
	assert.Equal(t, fn, mustGet(t, r, proto, "constructor"))

	keys, err := r.ForInKeys(proto)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestConstruct(t *testing.T) {
	r := New()
	rabbit, err := r.NewClosure(r.Global(), "Rabbit", []string{"name"}, func(r *Runtime, call FunctionCall) (Value, error) {
		name, err := r.Lookup(call.Env, "name")
		if err != nil {
			return nil, err
		}
		return nil, r.SetStr(call.This.(ObjectRef), "name", name)
	})
	require.NoError(t, err)
	proto := mustGet(t, r, rabbit, "prototype").(ObjectRef)
	require.NoError(t, r.SetStr(proto, "jumps", valueTrue))

	obj, err := r.Construct(rabbit, stringValue("White"))
	require.NoError(t, err)
	assert.Equal(t, "White", mustGet(t, r, obj, "name").String())
	assert.Equal(t, valueTrue, mustGet(t, r, obj, "jumps"))

	ok, err := r.InstanceOf(obj, rabbit)
	require.NoError(t, err)
	assert.True(t, ok)

	other, err := r.NewClosure(r.Global(), "Other", nil, func(*Runtime, FunctionCall) (Value, error) {
		return nil, nil
	})
	require.NoError(t, err)
	ok, err = r.InstanceOf(obj, other)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.InstanceOf(intToValue(1), rabbit)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConstructObjectResult(t *testing.T) {
	r := New()
	var made ObjectRef
	fn, err := r.NewClosure(r.Global(), "F", nil, func(r *Runtime, _ FunctionCall) (Value, error) {
		made = r.NewObject()
		return made, nil
	})
	require.NoError(t, err)
	obj, err := r.Construct(fn)
	require.NoError(t, err)
	assert.Equal(t, made, obj)
}

func TestInstanceOfPrototypeCycle(t *testing.T) {
	r := New()
	fn, err := r.NewClosure(r.Global(), "F", nil, func(*Runtime, FunctionCall) (Value, error) {
		return nil, nil
	})
	require.NoError(t, err)
	a := r.NewObject()
	b := r.AllocateObject(a)
	require.NoError(t, r.SetPrototypeOf(a, b))

	ok, err := r.InstanceOf(a, fn)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInstanceOfHasInstance(t *testing.T) {
	r := New()
	even := r.NewObject()
	var receiver Value
	check := r.NewNativeFunction("[Symbol.hasInstance]", 1, func(r *Runtime, call FunctionCall) (Value, error) {
		receiver = call.This
		n, err := r.ToNumber(call.Argument(0))
		if err != nil {
			return nil, err
		}
		return ToValue(float64(int64(n)) == n && int64(n)%2 == 0), nil
	})
	require.NoError(t, r.Set(even, SymbolKey(SymHasInstance), check))

	ok, err := r.InstanceOf(intToValue(4), even)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, even, receiver)

	ok, err = r.InstanceOf(intToValue(3), even)
	require.NoError(t, err)
	assert.False(t, ok)

	// An inherited handler counts too.
	ok, err = r.InstanceOf(intToValue(2), r.AllocateObject(even))
	require.NoError(t, err)
	assert.True(t, ok)

	bad := r.NewObject()
	require.NoError(t, r.Set(bad, SymbolKey(SymHasInstance), intToValue(1)))
	var typeErr *TypeError
	_, err = r.InstanceOf(r.NewObject(), bad)
	assert.True(t, errors.As(err, &typeErr))
}

func TestCallNotCallable(t *testing.T) {
	r := New()
	var typeErr *TypeError

	_, err := r.Call(intToValue(1), _undefined)
	assert.True(t, errors.As(err, &typeErr))

	_, err = r.Call(r.NewObject(), _undefined)
	assert.True(t, errors.As(err, &typeErr))

	_, err = r.Construct(stringValue("x"))
	assert.True(t, errors.As(err, &typeErr))

	_, err = r.InstanceOf(r.NewObject(), r.NewObject())
	assert.True(t, errors.As(err, &typeErr))
}

func TestCallPropagatesError(t *testing.T) {
	r := New()
	fn, err := r.NewClosure(r.Global(), "f", nil, func(r *Runtime, call FunctionCall) (Value, error) {
		return r.Lookup(call.Env, "missing")
	})
	require.NoError(t, err)
	_, err = r.Call(fn, _undefined)
	assert.ErrorIs(t, err, ErrUnboundVariable)
	assert.Empty(t, r.ActiveEnvironments())
}

func TestNativeFunctionThis(t *testing.T) {
	r := New()
	fn := r.NewNativeFunction("self", 0, func(_ *Runtime, call FunctionCall) (Value, error) {
		return call.This, nil
	})
	obj := r.NewObject()
	v, err := r.Call(fn, obj)
	require.NoError(t, err)
	assert.Equal(t, obj, v)

	v, err = r.Call(fn, nil)
	require.NoError(t, err)
	assert.True(t, IsUndefined(v))

	_, err = r.CapturedEnvironment(fn)
	var typeErr *TypeError
	assert.True(t, errors.As(err, &typeErr))
}
