package jscore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultOptions(t *testing.T) {
	r := New()
	assert.False(t, r.Lenient())
	assert.Equal(t, 0, r.opts.collectThreshold)
	assert.Nil(t, r.opts.rootEnumerator)
	assert.NotNil(t, r.log)
}

func TestOptionsApplyInOrder(t *testing.T) {
	r := New(WithLenientAssignment(true), WithCollectThreshold(10), WithLenientAssignment(false))
	assert.False(t, r.Lenient())
	assert.Equal(t, 10, r.opts.collectThreshold)
}

func TestNewRuntimeIntrinsics(t *testing.T) {
	r := New()
	proto, err := r.GetPrototypeOf(r.ObjectPrototype())
	assert.NoError(t, err)
	assert.Equal(t, _null, proto)

	proto, err = r.GetPrototypeOf(r.FunctionPrototype())
	assert.NoError(t, err)
	assert.Equal(t, r.ObjectPrototype(), proto)
	assert.Equal(t, "function", r.TypeOf(r.FunctionPrototype()))

	outer, err := r.Outer(r.Global())
	assert.NoError(t, err)
	assert.Equal(t, NoEnv, outer)

	hs := r.HeapStats()
	assert.Equal(t, 1, hs.Environments)
	assert.Equal(t, 5, hs.Objects)
	assert.Zero(t, hs.Cycles)
}
