package cpu_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simflux-ml/simflux/internal/backend"
	"github.com/simflux-ml/simflux/internal/backend/cpu"
	"github.com/simflux-ml/simflux/internal/core"
)

func TestStack(t *testing.T) {
	b := cpu.New()
	a := b.FromFloat64s([]float64{1, 2}, []int{2})
	c := b.FromFloat64s([]float64{3, 4}, []int{2})

	out := b.Stack([]any{a, c}, 0)
	assert.Equal(t, []int{2, 2}, b.SizesOf(out))
	assert.Equal(t, []float64{1, 2, 3, 4}, b.Float64s(out))

	out = b.Stack([]any{a, c}, 1)
	assert.Equal(t, []int{2, 2}, b.SizesOf(out))
	assert.Equal(t, []float64{1, 3, 2, 4}, b.Float64s(out))
}

func TestConcat(t *testing.T) {
	b := cpu.New()
	a := b.FromFloat64s([]float64{1, 2, 3, 4}, []int{2, 2})
	c := b.FromFloat64s([]float64{5, 6}, []int{1, 2})

	out := b.Concat([]any{a, c}, 0)
	assert.Equal(t, []int{3, 2}, b.SizesOf(out))
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, b.Float64s(out))
}

func TestUnstack_RoundTrip(t *testing.T) {
	b := cpu.New()
	x := b.FromFloat64s([]float64{1, 2, 3, 4, 5, 6}, []int{3, 2})

	slices := b.Unstack(x, 0)
	require.Len(t, slices, 3)
	assert.Equal(t, []int{2}, b.SizesOf(slices[0]))
	assert.Equal(t, []float64{3, 4}, b.Float64s(slices[1]))

	restacked := b.Stack(slices, 0)
	assert.Equal(t, b.Float64s(x), b.Float64s(restacked))
}

func TestUnstack_InnerAxis(t *testing.T) {
	b := cpu.New()
	x := b.FromFloat64s([]float64{1, 2, 3, 4, 5, 6}, []int{3, 2})

	slices := b.Unstack(x, 1)
	require.Len(t, slices, 2)
	assert.Equal(t, []float64{1, 3, 5}, b.Float64s(slices[0]))
	assert.Equal(t, []float64{2, 4, 6}, b.Float64s(slices[1]))
}

func TestPad_Constant(t *testing.T) {
	b := cpu.New()
	x := b.FromFloat64s([]float64{1, 2}, []int{2})

	out := b.Pad(x, [][2]int{{1, 2}}, backend.PadConstant, 9)
	assert.Equal(t, []float64{9, 1, 2, 9, 9}, b.Float64s(out))
}

func TestPad_Boundary(t *testing.T) {
	b := cpu.New()
	x := b.FromFloat64s([]float64{1, 2, 3}, []int{3})

	out := b.Pad(x, [][2]int{{2, 1}}, backend.PadBoundary, 0)
	assert.Equal(t, []float64{1, 1, 1, 2, 3, 3}, b.Float64s(out))
}

func TestPad_Periodic(t *testing.T) {
	b := cpu.New()
	x := b.FromFloat64s([]float64{1, 2, 3}, []int{3})

	out := b.Pad(x, [][2]int{{2, 2}}, backend.PadPeriodic, 0)
	assert.Equal(t, []float64{2, 3, 1, 2, 3, 1, 2}, b.Float64s(out))
}

func TestPad_Symmetric(t *testing.T) {
	b := cpu.New()
	x := b.FromFloat64s([]float64{1, 2, 3}, []int{3})

	// Mirror includes the edge element.
	out := b.Pad(x, [][2]int{{2, 2}}, backend.PadSymmetric, 0)
	assert.Equal(t, []float64{2, 1, 1, 2, 3, 3, 2}, b.Float64s(out))
}

func TestPad_Reflect(t *testing.T) {
	b := cpu.New()
	x := b.FromFloat64s([]float64{1, 2, 3}, []int{3})

	// Mirror excludes the edge element.
	out := b.Pad(x, [][2]int{{2, 2}}, backend.PadReflect, 0)
	assert.Equal(t, []float64{3, 2, 1, 2, 3, 2, 1}, b.Float64s(out))
}

func TestPad_TwoAxes(t *testing.T) {
	b := cpu.New()
	x := b.FromFloat64s([]float64{1, 2, 3, 4}, []int{2, 2})

	out := b.Pad(x, [][2]int{{0, 0}, {1, 0}}, backend.PadConstant, 0)
	assert.Equal(t, []int{2, 3}, b.SizesOf(out))
	assert.Equal(t, []float64{0, 1, 2, 0, 3, 4}, b.Float64s(out))
}

func TestReshape(t *testing.T) {
	b := cpu.New()
	x := b.FromFloat64s([]float64{1, 2, 3, 4, 5, 6}, []int{2, 3})

	out := b.Reshape(x, []int{3, 2})
	assert.Equal(t, []int{3, 2}, b.SizesOf(out))
	assert.Equal(t, b.Float64s(x), b.Float64s(out))

	assert.Panics(t, func() { b.Reshape(x, []int{4, 2}) })
}

func TestTranspose(t *testing.T) {
	b := cpu.New()
	x := b.FromFloat64s([]float64{1, 2, 3, 4, 5, 6}, []int{2, 3})

	out := b.Transpose(x, []int{1, 0})
	assert.Equal(t, []int{3, 2}, b.SizesOf(out))
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, b.Float64s(out))
}

func TestTranspose_ThreeAxes(t *testing.T) {
	b := cpu.New()
	x := b.FromFloat64s([]float64{0, 1, 2, 3, 4, 5, 6, 7}, []int{2, 2, 2})

	out := b.Transpose(x, []int{2, 0, 1})
	assert.Equal(t, []int{2, 2, 2}, b.SizesOf(out))
	assert.Equal(t, []float64{0, 2, 4, 6, 1, 3, 5, 7}, b.Float64s(out))
}

func TestExpandDims(t *testing.T) {
	b := cpu.New()
	x := b.FromFloat64s([]float64{1, 2, 3}, []int{3})

	assert.Equal(t, []int{1, 3}, b.SizesOf(b.ExpandDims(x, 0)))
	assert.Equal(t, []int{3, 1}, b.SizesOf(b.ExpandDims(x, 1)))
}

func TestTile(t *testing.T) {
	b := cpu.New()
	x := b.FromFloat64s([]float64{1, 2}, []int{2})

	out := b.Tile(x, []int{3})
	assert.Equal(t, []float64{1, 2, 1, 2, 1, 2}, b.Float64s(out))
}

func TestFlip(t *testing.T) {
	b := cpu.New()
	x := b.FromFloat64s([]float64{1, 2, 3, 4}, []int{2, 2})

	out := b.Flip(x, []int{1})
	assert.Equal(t, []float64{2, 1, 4, 3}, b.Float64s(out))

	out = b.Flip(x, []int{0, 1})
	assert.Equal(t, []float64{4, 3, 2, 1}, b.Float64s(out))
}

func TestGather(t *testing.T) {
	b := cpu.New()
	x := b.FromFloat64s([]float64{10, 20, 30, 40}, []int{4})
	idx := b.Cast(b.FromFloat64s([]float64{3, 0, -1}, []int{3}), core.Int64T)

	out := b.Gather(x, idx, 0)
	assert.Equal(t, []float64{40, 10, 40}, b.Float64s(out))
}

func TestGather_OutOfRangePanics(t *testing.T) {
	b := cpu.New()
	x := b.FromFloat64s([]float64{1, 2}, []int{2})
	idx := b.Cast(b.FromFloat64s([]float64{5}, []int{1}), core.Int64T)

	assert.Panics(t, func() { b.Gather(x, idx, 0) })
}

func TestGatherND(t *testing.T) {
	b := cpu.New()
	x := b.FromFloat64s([]float64{1, 2, 3, 4}, []int{2, 2})
	idx := b.Cast(b.FromFloat64s([]float64{0, 1, 1, 0}, []int{2, 2}), core.Int64T)

	out := b.GatherND(x, idx)
	assert.Equal(t, []float64{2, 3}, b.Float64s(out))
}

func TestScatter_Add(t *testing.T) {
	b := cpu.New()
	idx := b.Cast(b.FromFloat64s([]float64{0, 2, 0}, []int{3}), core.Int64T)
	values := b.FromFloat64s([]float64{1, 10, 100}, []int{3})

	out := b.Scatter(idx, values, []int{4}, backend.ScatterAdd)
	assert.Equal(t, []float64{101, 0, 10, 0}, b.Float64s(out))
}

func TestScatter_Replace(t *testing.T) {
	b := cpu.New()
	idx := b.Cast(b.FromFloat64s([]float64{0, 0}, []int{2}), core.Int64T)
	values := b.FromFloat64s([]float64{1, 2}, []int{2})

	out := b.Scatter(idx, values, []int{3}, backend.ScatterReplace)
	assert.Equal(t, []float64{2, 0, 0}, b.Float64s(out))
}

func TestScatter_Rows(t *testing.T) {
	b := cpu.New()
	idx := b.Cast(b.FromFloat64s([]float64{1}, []int{1}), core.Int64T)
	values := b.FromFloat64s([]float64{7, 8}, []int{1, 2})

	out := b.Scatter(idx, values, []int{3, 2}, backend.ScatterAdd)
	assert.Equal(t, []float64{0, 0, 7, 8, 0, 0}, b.Float64s(out))
}

func TestBooleanMask(t *testing.T) {
	b := cpu.New()
	x := b.FromFloat64s([]float64{1, 2, 3, 4}, []int{4})
	mask, err := b.AsNative([]bool{true, false, false, true})
	require.NoError(t, err)

	out := b.BooleanMask(x, mask)
	assert.Equal(t, []float64{1, 4}, b.Float64s(out))
}

func TestBooleanMask_AllFalse(t *testing.T) {
	b := cpu.New()
	x := b.FromFloat64s([]float64{1, 2, 3}, []int{3})
	mask, err := b.AsNative([]bool{false, false, false})
	require.NoError(t, err)

	out := b.BooleanMask(x, mask)
	assert.Equal(t, []int{0}, b.SizesOf(out))
	assert.Empty(t, b.Float64s(out))
}

func TestWhere(t *testing.T) {
	b := cpu.New()
	cond, err := b.AsNative([]bool{true, false, true})
	require.NoError(t, err)
	x := b.FromFloat64s([]float64{1, 2, 3}, []int{3})
	y := b.FromFloat64s([]float64{10, 20, 30}, []int{3})

	out := b.Where(cond, x, y)
	assert.Equal(t, []float64{1, 20, 3}, b.Float64s(out))
}

func TestWhere_BroadcastCondition(t *testing.T) {
	b := cpu.New()
	cond, err := b.AsNative([]bool{true, false})
	require.NoError(t, err)
	x := b.FromFloat64s([]float64{1, 2, 3, 4}, []int{2, 2})
	y := b.Full([]int{2, 2}, 0, core.FloatType())

	out := b.Where(cond, x, y)
	assert.Equal(t, []float64{1, 0, 3, 0}, b.Float64s(out))
}

func TestNonzero(t *testing.T) {
	b := cpu.New()
	x := b.FromFloat64s([]float64{0, 5, 0, 7}, []int{2, 2})

	out := b.Nonzero(x)
	assert.Equal(t, core.Int64T, b.DTypeOf(out))
	assert.Equal(t, []int{2, 2}, b.SizesOf(out))
	assert.Equal(t, []float64{0, 1, 1, 1}, b.Float64s(out))
}

func TestNonzero_AllZero(t *testing.T) {
	b := cpu.New()
	x := b.FromFloat64s([]float64{0, 0, 0, 0}, []int{2, 2})

	out := b.Nonzero(x)
	assert.Equal(t, core.Int64T, b.DTypeOf(out))
	assert.Equal(t, []int{0, 2}, b.SizesOf(out))
}

func TestCopyIsDeep(t *testing.T) {
	b := cpu.New()
	x := b.FromFloat64s([]float64{1, 2}, []int{2})

	cp := b.Copy(x).(*core.Raw)
	cp.Float32s()[0] = 9
	assert.Equal(t, []float64{1, 2}, b.Float64s(x))
}
