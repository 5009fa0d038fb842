package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewShape_RejectsDuplicates(t *testing.T) {
	_, err := NewShape(Spatial("x", 4), Spatial("x", 8))
	var dimErr *DimensionError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, "x", dimErr.Name)
}

func TestNewShape_RejectsBadSize(t *testing.T) {
	_, err := NewShape(Spatial("x", 0))
	assert.Error(t, err)

	_, err = NewShape(Spatial("x", SizeUnknown))
	assert.NoError(t, err)
}

func TestShapeBasics(t *testing.T) {
	s := MustShape(Batch("b", 2), Spatial("x", 8), Channel("c", 3))

	assert.Equal(t, 3, s.Rank())
	assert.Equal(t, 48, s.Volume())
	assert.Equal(t, []int{2, 8, 3}, s.Sizes())
	assert.Equal(t, []string{"b", "x", "c"}, s.Names())
	assert.Equal(t, 1, s.Index("x"))
	assert.Equal(t, -1, s.Index("y"))
	assert.True(t, s.Has("c"))
}

func TestShapeVolume_Symbolic(t *testing.T) {
	s := MustShape(Batch("b", SizeUnknown), Spatial("x", 8))
	assert.Equal(t, SizeUnknown, s.Volume())
	assert.Equal(t, 1, Scalar().Volume())
}

func TestShapeAxes_MissingNameFails(t *testing.T) {
	s := MustShape(Batch("b", 2), Spatial("x", 8))

	axes, err := s.Axes("x", "b")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, axes)

	_, err = s.Axes("y")
	var dimErr *DimensionError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, "y", dimErr.Name)
}

func TestShapeOfType(t *testing.T) {
	s := MustShape(Batch("b", 2), Spatial("x", 8), Spatial("y", 8), Channel("c", 3))

	spatial := s.OfType(SpatialDim)
	assert.Equal(t, []string{"x", "y"}, spatial.Names())
	assert.Equal(t, []int{1, 2}, s.AxesOfType(SpatialDim))
}

func TestShapeWithout(t *testing.T) {
	s := MustShape(Batch("b", 2), Spatial("x", 8), Channel("c", 3))
	out := s.Without("x")
	assert.Equal(t, []string{"b", "c"}, out.Names())
	// Original untouched.
	assert.Equal(t, 3, s.Rank())
}

func TestShapeWithSizes(t *testing.T) {
	s := MustShape(Batch("b", SizeUnknown), Spatial("x", 8))
	bound, err := s.WithSizes([]int{4, 8})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 8}, bound.Sizes())

	_, err = s.WithSizes([]int{4})
	assert.Error(t, err)
}

func TestAlign_DisjointNames(t *testing.T) {
	a := MustShape(Batch("b", 2))
	b := MustShape(Spatial("x", 3))

	result, planA, planB, err := Align(a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "x"}, result.Names())
	assert.Equal(t, []int{2, 3}, result.Sizes())
	assert.Equal(t, []int{0, -1}, planA)
	assert.Equal(t, []int{-1, 0}, planB)
}

func TestAlign_MatchedAndBroadcast(t *testing.T) {
	a := MustShape(Batch("b", 2), Spatial("x", 1))
	b := MustShape(Spatial("x", 5), Channel("c", 3))

	result, planA, planB, err := Align(a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "x", "c"}, result.Names())
	assert.Equal(t, []int{2, 5, 3}, result.Sizes())
	assert.Equal(t, []int{0, 1, -1}, planA)
	assert.Equal(t, []int{-1, 0, 1}, planB)
}

func TestAlign_SizeConflict(t *testing.T) {
	a := MustShape(Spatial("x", 4))
	b := MustShape(Spatial("x", 5))

	_, _, _, err := Align(a, b)
	var dimErr *DimensionError
	require.ErrorAs(t, err, &dimErr)
	assert.Equal(t, "x", dimErr.Name)
}

func TestAlign_TypeConflict(t *testing.T) {
	a := MustShape(Spatial("x", 4))
	b := MustShape(Batch("x", 4))

	_, _, _, err := Align(a, b)
	assert.Error(t, err)
}

func TestAlign_SymbolicSizeBinds(t *testing.T) {
	a := MustShape(Spatial("x", SizeUnknown))
	b := MustShape(Spatial("x", 7))

	result, _, _, err := Align(a, b)
	require.NoError(t, err)
	assert.Equal(t, []int{7}, result.Sizes())
}

func TestShapeString(t *testing.T) {
	assert.Equal(t, "()", Scalar().String())
	s := MustShape(Batch("b", 2), Spatial("x", SizeUnknown))
	assert.Equal(t, "(b=2:batch, x=?:spatial)", s.String())
}
