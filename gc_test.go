package jscore

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, r *Runtime) CollectStats {
	t.Helper()
	stats, err := r.Collect()
	require.NoError(t, err)
	return stats
}

func TestCollectUnreachableCycle(t *testing.T) {
	r := New()
	baseline := collect(t, r)
	assert.Zero(t, baseline.Reclaimed())

	a := r.NewObject()
	b := r.NewObject()
	require.NoError(t, r.SetStr(a, "peer", b))
	require.NoError(t, r.SetStr(b, "peer", a))

	stats := collect(t, r)
	assert.Equal(t, 2, stats.ReclaimedObjects)
	assert.Equal(t, baseline.LiveObjects, stats.LiveObjects)
	assert.False(t, r.IsLive(a))
	assert.False(t, r.IsLive(b))

	_, err := r.GetStr(a, "peer")
	assert.True(t, errors.Is(err, ErrInvalidReference))
}

func TestCollectRootedCycleSurvives(t *testing.T) {
	r := New()
	a := r.NewObject()
	b := r.NewObject()
	require.NoError(t, r.SetStr(a, "peer", b))
	require.NoError(t, r.SetStr(b, "peer", a))
	require.NoError(t, r.Declare(r.Global(), "keep", a))

	stats := collect(t, r)
	assert.Zero(t, stats.ReclaimedObjects)
	assert.True(t, r.IsLive(a))
	assert.True(t, r.IsLive(b))

	require.NoError(t, r.Assign(r.Global(), "keep", _null))
	stats = collect(t, r)
	assert.Equal(t, 2, stats.ReclaimedObjects)
}

func TestCollectPrototypeEdge(t *testing.T) {
	r := New()
	proto := r.NewObject()
	child := r.AllocateObject(proto)
	require.NoError(t, r.Declare(r.Global(), "child", child))
	collect(t, r)
	assert.True(t, r.IsLive(proto))
}

func TestCollectAccessorEdges(t *testing.T) {
	r := New()
	obj := r.NewObject()
	getter := r.NewNativeFunction("get", 0, func(*Runtime, FunctionCall) (Value, error) {
		return nil, nil
	})
	held := r.NewObject()
	require.NoError(t, r.DefineAccessorProperty(obj, StringKey("x"), getter, NoObject, FLAG_TRUE, FLAG_FALSE))
	require.NoError(t, r.DefineDataProperty(obj, StringKey("y"), held, FLAG_FALSE, FLAG_FALSE, FLAG_FALSE))
	require.NoError(t, r.Declare(r.Global(), "obj", obj))

	collect(t, r)
	assert.True(t, r.IsLive(getter))
	assert.True(t, r.IsLive(held))
}

func TestCollectSymbolKeyedValue(t *testing.T) {
	r := New()
	obj := r.NewObject()
	held := r.NewObject()
	require.NoError(t, r.Set(obj, SymbolKey(NewSymbol("k")), held))
	require.NoError(t, r.Declare(r.Global(), "obj", obj))
	collect(t, r)
	assert.True(t, r.IsLive(held))
}

func TestCollectClosureEnvironment(t *testing.T) {
	r := New()
	makeCounter, err := r.NewClosure(r.Global(), "makeCounter", nil, counterBody)
	require.NoError(t, err)
	require.NoError(t, r.Declare(r.Global(), "makeCounter", makeCounter))

	counter, err := r.Call(makeCounter, _undefined)
	require.NoError(t, err)
	require.NoError(t, r.Declare(r.Global(), "counter", counter))
	assert.Equal(t, int64(1), callInt(t, r, counter))

	env, err := r.CapturedEnvironment(counter.(ObjectRef))
	require.NoError(t, err)
	collect(t, r)
	assert.True(t, r.IsLiveEnv(env))
	assert.Equal(t, int64(2), callInt(t, r, counter))

	require.NoError(t, r.Assign(r.Global(), "counter", _undefined))
	stats := collect(t, r)
	assert.False(t, r.IsLiveEnv(env))
	assert.False(t, r.IsLive(counter.(ObjectRef)))
	assert.GreaterOrEqual(t, stats.ReclaimedEnvironments, 1)
}

func TestCollectDuringCall(t *testing.T) {
	r := New()
	var inner error
	fn := r.NewNativeFunction("gc", 0, func(r *Runtime, _ FunctionCall) (Value, error) {
		_, inner = r.Collect()
		return nil, nil
	})
	_, err := r.Call(fn, _undefined)
	require.NoError(t, err)
	assert.ErrorIs(t, inner, ErrCollectDuringCall)

	_, err = r.Collect()
	assert.NoError(t, err)
}

func TestCollectStackRoots(t *testing.T) {
	r := New()
	var live []bool
	fn, err := r.NewClosure(r.Global(), "f", nil, func(r *Runtime, call FunctionCall) (Value, error) {
		obj := r.NewObject()
		if err := r.Declare(call.Env, "local", obj); err != nil {
			return nil, err
		}
		assert.Equal(t, []EnvRef{call.Env}, r.ActiveEnvironments())
		return obj, nil
	})
	require.NoError(t, err)
	v, err := r.Call(fn, _undefined)
	require.NoError(t, err)
	assert.Empty(t, r.ActiveEnvironments())

	live = append(live, r.IsLive(v.(ObjectRef)))
	collect(t, r)
	live = append(live, r.IsLive(v.(ObjectRef)))
	assert.Equal(t, []bool{true, false}, live)
}

func TestCollectRootEnumerator(t *testing.T) {
	var hostScopes []EnvRef
	r := New(WithRootEnumerator(func() []EnvRef {
		return hostScopes
	}))
	scope, err := r.AllocateEnvironment(r.Global())
	require.NoError(t, err)
	obj := r.NewObject()
	require.NoError(t, r.Declare(scope, "obj", obj))
	hostScopes = append(hostScopes, scope)

	collect(t, r)
	assert.True(t, r.IsLiveEnv(scope))
	assert.True(t, r.IsLive(obj))

	hostScopes = nil
	collect(t, r)
	assert.False(t, r.IsLiveEnv(scope))
	assert.False(t, r.IsLive(obj))
}

func TestCollectIntrinsicsSurvive(t *testing.T) {
	r := New()
	collect(t, r)
	assert.True(t, r.IsLive(r.ObjectPrototype()))
	assert.True(t, r.IsLive(r.FunctionPrototype()))
	assert.True(t, r.IsLiveEnv(r.Global()))

	obj := r.NewObject()
	require.NoError(t, r.Declare(r.Global(), "obj", obj))
	collect(t, r)
	s, err := r.ToString(obj)
	require.NoError(t, err)
	assert.Equal(t, "[object Object]", s)
}

func TestCollectStaleHandleInRoots(t *testing.T) {
	r := New()
	obj := r.NewObject()
	collect(t, r)
	require.False(t, r.IsLive(obj))

	// A host that keeps a dead handle around does not break later cycles.
	require.NoError(t, r.Declare(r.Global(), "stale", obj))
	stats := collect(t, r)
	assert.Zero(t, stats.Reclaimed())
}

func TestHandlesAreNotReused(t *testing.T) {
	r := New()
	a := r.NewObject()
	collect(t, r)
	b := r.NewObject()
	assert.NotEqual(t, a, b)
	assert.False(t, r.IsLive(a))
}

func TestMaybeCollect(t *testing.T) {
	r := New(WithCollectThreshold(4))
	_, err := r.Collect()
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		r.NewObject()
	}
	_, ran, err := r.MaybeCollect()
	require.NoError(t, err)
	assert.False(t, ran)

	r.NewObject()
	stats, ran, err := r.MaybeCollect()
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 4, stats.ReclaimedObjects)
	assert.Equal(t, 0, r.HeapStats().Allocated)
	assert.Equal(t, 2, r.HeapStats().Cycles)
}

func TestMaybeCollectDisabled(t *testing.T) {
	r := New()
	for i := 0; i < 100; i++ {
		r.NewObject()
	}
	_, ran, err := r.MaybeCollect()
	require.NoError(t, err)
	assert.False(t, ran)
}

func TestCollectLogsCycle(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := New(WithLogger(logger))
	r.NewObject()
	collect(t, r)

	out := buf.String()
	assert.True(t, strings.Contains(out, "collection cycle"), out)
	assert.True(t, strings.Contains(out, "reclaimed_objects=1"), out)
}

func BenchmarkCollect(b *testing.B) {
	r := New()
	root := r.NewObject()
	_ = r.Declare(r.Global(), "root", root)
	prev := root
	for i := 0; i < 1000; i++ {
		o := r.NewObject()
		_ = r.SetStr(prev, "next", o)
		prev = o
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := 0; j < 100; j++ {
			r.NewObject()
		}
		_, _ = r.Collect()
	}
}
