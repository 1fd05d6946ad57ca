package jscore

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToPropertyKey(t *testing.T) {
	r := New()
	for _, tc := range []struct {
		in   Value
		want string
	}{
		{intToValue(0), "0"},
		{intToValue(42), "42"},
		{floatToValue(1.5), "1.5"},
		{floatToValue(negativeZero), "0"},
		{floatToValue(1e21), "1e+21"},
		{floatToValue(1e-7), "1e-7"},
		{_NaN, "NaN"},
		{valueTrue, "true"},
		{_null, "null"},
		{_undefined, "undefined"},
		{stringValue("name"), "name"},
	} {
		k, err := r.ToPropertyKey(tc.in)
		require.NoError(t, err)
		assert.False(t, k.IsSymbol())
		assert.Equal(t, tc.want, k.Name(), tc.want)
	}

	sym := NewSymbol("k")
	k, err := r.ToPropertyKey(sym)
	require.NoError(t, err)
	assert.True(t, k.IsSymbol())
	assert.Same(t, sym, k.Symbol())

	k, err = r.ToPropertyKey(r.NewObject())
	require.NoError(t, err)
	assert.Equal(t, "[object Object]", k.Name())
}

func TestNumberAndStringKeyAlias(t *testing.T) {
	r := New()
	obj := r.NewObject()
	k0, err := r.ToPropertyKey(intToValue(0))
	require.NoError(t, err)
	require.NoError(t, r.Set(obj, k0, stringValue("zero")))
	assert.Equal(t, "zero", mustGet(t, r, obj, "0").String())
	assert.True(t, k0.IsIntegerLike())
}

func TestToPrimitiveOrder(t *testing.T) {
	r := New()
	obj := r.NewObject()
	require.NoError(t, r.SetStr(obj, "toString", r.NewNativeFunction("toString", 0, func(*Runtime, FunctionCall) (Value, error) {
		return stringValue("str"), nil
	})))
	require.NoError(t, r.SetStr(obj, "valueOf", r.NewNativeFunction("valueOf", 0, func(*Runtime, FunctionCall) (Value, error) {
		return intToValue(7), nil
	})))

	v, err := r.ToPrimitive(obj, HintString)
	require.NoError(t, err)
	assert.Equal(t, "str", v.String())

	v, err = r.ToPrimitive(obj, HintNumber)
	require.NoError(t, err)
	assert.True(t, v.SameAs(intToValue(7)))

	v, err = r.ToPrimitive(obj, HintDefault)
	require.NoError(t, err)
	assert.True(t, v.SameAs(intToValue(7)))

	n, err := r.ToNumber(obj)
	require.NoError(t, err)
	assert.Equal(t, 7.0, n)
}

func TestToPrimitiveSymbolMethod(t *testing.T) {
	r := New()
	obj := r.NewObject()
	var hints []string
	conv := r.NewNativeFunction("[Symbol.toPrimitive]", 1, func(_ *Runtime, call FunctionCall) (Value, error) {
		hints = append(hints, call.Argument(0).String())
		return stringValue("prim"), nil
	})
	require.NoError(t, r.Set(obj, SymbolKey(SymToPrimitive), conv))

	s, err := r.ToString(obj)
	require.NoError(t, err)
	assert.Equal(t, "prim", s)
	_, err = r.ToPrimitive(obj, HintDefault)
	require.NoError(t, err)
	assert.Equal(t, []string{"string", "default"}, hints)
}

func TestToPrimitiveFailures(t *testing.T) {
	r := New()
	var typeErr *TypeError

	bare := r.AllocateObject(NoObject)
	_, err := r.ToPrimitive(bare, HintDefault)
	assert.True(t, errors.As(err, &typeErr))

	bad := r.NewObject()
	require.NoError(t, r.Set(bad, SymbolKey(SymToPrimitive), intToValue(1)))
	_, err = r.ToPrimitive(bad, HintDefault)
	assert.True(t, errors.As(err, &typeErr))

	objResult := r.NewObject()
	require.NoError(t, r.Set(objResult, SymbolKey(SymToPrimitive), r.NewNativeFunction("", 0, func(r *Runtime, _ FunctionCall) (Value, error) {
		return r.NewObject(), nil
	})))
	_, err = r.ToPrimitive(objResult, HintDefault)
	assert.True(t, errors.As(err, &typeErr))

	_, err = r.ToString(NewSymbol("x"))
	assert.True(t, errors.As(err, &typeErr))

	n, err := r.ToNumber(NewSymbol("x"))
	assert.Error(t, err)
	assert.True(t, math.IsNaN(n))
}

func TestToNumberPrimitives(t *testing.T) {
	r := New()
	for _, tc := range []struct {
		in   Value
		want float64
	}{
		{stringValue(" 42 "), 42},
		{stringValue(""), 0},
		{stringValue("0x1F"), 31},
		{stringValue("1e3"), 1000},
		{stringValue("-Infinity"), math.Inf(-1)},
		{valueTrue, 1},
		{_null, 0},
	} {
		n, err := r.ToNumber(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, n, tc.in.String())
	}
	for _, s := range []string{"abc", "inf", "1_000", "0x"} {
		n, err := r.ToNumber(stringValue(s))
		require.NoError(t, err)
		assert.True(t, math.IsNaN(n), s)
	}
	n, err := r.ToNumber(_undefined)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(n))
}
