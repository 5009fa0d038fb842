package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStrides(t *testing.T) {
	assert.Equal(t, []int{12, 4, 1}, ComputeStrides([]int{2, 3, 4}))
	assert.Equal(t, []int{1}, ComputeStrides([]int{5}))
	assert.Empty(t, ComputeStrides(nil))
}

func TestNewRaw_Scalar(t *testing.T) {
	r, err := NewRaw(nil, Float64T)
	require.NoError(t, err)
	assert.Equal(t, 1, r.NumElements())
	assert.Equal(t, 8, r.ByteSize())
}

func TestNewRaw_InvalidSize(t *testing.T) {
	_, err := NewRaw([]int{2, -1}, Float32T)
	assert.Error(t, err)
}

func TestNewRaw_ZeroSize(t *testing.T) {
	r, err := NewRaw([]int{0, 3}, Float32T)
	require.NoError(t, err)
	assert.Equal(t, 0, r.NumElements())
	assert.Equal(t, 0, r.ByteSize())
	assert.Empty(t, r.Float32s())
}

func TestRawTypedAccess(t *testing.T) {
	r := MustRaw([]int{3}, Int64T)
	vals := r.Int64s()
	vals[0], vals[1], vals[2] = 7, 8, 9
	assert.Equal(t, []int64{7, 8, 9}, r.Int64s())

	assert.Panics(t, func() { r.Float64s() })
}

func TestRawCloneSharesBuffer(t *testing.T) {
	r := MustRaw([]int{2}, Float64T)
	r.Float64s()[0] = 1.5

	clone := r.Clone()
	assert.False(t, r.IsUnique())
	assert.Equal(t, 1.5, clone.Float64s()[0])

	// Writes are visible through both references until copy-on-write.
	clone.Float64s()[1] = 2.5
	assert.Equal(t, 2.5, r.Float64s()[1])

	clone.Release()
	assert.True(t, r.IsUnique())
}

func TestRawForceNonUnique(t *testing.T) {
	r := MustRaw([]int{2}, Float32T)
	assert.True(t, r.IsUnique())

	release := r.ForceNonUnique()
	assert.False(t, r.IsUnique())
	release()
	assert.True(t, r.IsUnique())
}

func TestRawString(t *testing.T) {
	r := MustRaw([]int{2, 3}, Float32T)
	assert.Equal(t, "float32[2 3]", r.String())
}
