package cpu

import (
	"fmt"

	"github.com/simflux-ml/simflux/internal/backend"
	"github.com/simflux-ml/simflux/internal/core"
)

// copyElement moves one element between same-dtype arrays by raw bytes.
func copyElement(dst, src *core.Raw, dstIdx, srcIdx int) {
	size := dst.DType().SizeBytes()
	copy(dst.Data()[dstIdx*size:(dstIdx+1)*size], src.Data()[srcIdx*size:(srcIdx+1)*size])
}

// Stack joins arrays of identical sizes along a new axis.
func (c *CPUBackend) Stack(xs []any, axis int) any {
	if len(xs) == 0 {
		panic(&core.DimensionError{Cause: "cannot stack zero arrays"})
	}
	cast := backend.AutoCast(c, xs...)
	first := cast[0].(*core.Raw)
	if axis < 0 {
		axis += len(first.Sizes()) + 1
	}
	outSizes := make([]int, 0, len(first.Sizes())+1)
	outSizes = append(outSizes, first.Sizes()[:axis]...)
	outSizes = append(outSizes, len(xs))
	outSizes = append(outSizes, first.Sizes()[axis:]...)
	out := core.MustRaw(outSizes, first.DType())

	// Outer count covers axes before the stack axis, inner the rest.
	outer, inner := 1, 1
	for i, s := range first.Sizes() {
		if i < axis {
			outer *= s
		} else {
			inner *= s
		}
	}
	for k, x := range cast {
		r := x.(*core.Raw)
		if !equalInts(r.Sizes(), first.Sizes()) {
			panic(&core.DimensionError{Cause: fmt.Sprintf("stack operands differ: %v vs %v", first.Sizes(), r.Sizes())})
		}
		for o := 0; o < outer; o++ {
			for i := 0; i < inner; i++ {
				copyElement(out, r, (o*len(xs)+k)*inner+i, o*inner+i)
			}
		}
	}
	return out
}

// Concat joins arrays along an existing axis. All sizes except the concat
// axis must agree.
func (c *CPUBackend) Concat(xs []any, axis int) any {
	if len(xs) == 0 {
		panic(&core.DimensionError{Cause: "cannot concat zero arrays"})
	}
	cast := backend.AutoCast(c, xs...)
	first := cast[0].(*core.Raw)
	if axis < 0 {
		axis += len(first.Sizes())
	}
	total := 0
	for _, x := range cast {
		total += x.(*core.Raw).Sizes()[axis]
	}
	outSizes := append([]int(nil), first.Sizes()...)
	outSizes[axis] = total
	out := core.MustRaw(outSizes, first.DType())

	outer, inner := 1, 1
	for i, s := range outSizes {
		if i < axis {
			outer *= s
		} else if i > axis {
			inner *= s
		}
	}
	offset := 0
	for _, x := range cast {
		r := x.(*core.Raw)
		n := r.Sizes()[axis]
		for o := 0; o < outer; o++ {
			for j := 0; j < n*inner; j++ {
				copyElement(out, r, (o*total+offset)*inner+j, o*n*inner+j)
			}
		}
		offset += n
	}
	return out
}

// Unstack splits an array along an axis into rank-reduced slices.
func (c *CPUBackend) Unstack(x any, axis int) []any {
	r := c.raw(x)
	sizes := r.Sizes()
	if axis < 0 {
		axis += len(sizes)
	}
	sliceSizes := make([]int, 0, len(sizes)-1)
	sliceSizes = append(sliceSizes, sizes[:axis]...)
	sliceSizes = append(sliceSizes, sizes[axis+1:]...)

	outer, inner := 1, 1
	for i, s := range sizes {
		if i < axis {
			outer *= s
		} else if i > axis {
			inner *= s
		}
	}
	n := sizes[axis]
	out := make([]any, n)
	for k := 0; k < n; k++ {
		slice := core.MustRaw(sliceSizes, r.DType())
		for o := 0; o < outer; o++ {
			for i := 0; i < inner; i++ {
				copyElement(slice, r, o*inner+i, (o*n+k)*inner+i)
			}
		}
		out[k] = slice
	}
	return out
}

// Pad widens every axis by the given (before, after) amounts. Out-of-range
// reads resolve per mode; constant padding writes value.
func (c *CPUBackend) Pad(x any, widths [][2]int, mode backend.PadMode, value float64) any {
	r := c.raw(x)
	sizes := r.Sizes()
	if len(widths) != len(sizes) {
		panic(&core.DimensionError{Cause: fmt.Sprintf("pad widths for %d axes, array has %d", len(widths), len(sizes))})
	}
	outSizes := make([]int, len(sizes))
	for i, s := range sizes {
		outSizes[i] = widths[i][0] + s + widths[i][1]
	}
	out := core.MustRaw(outSizes, r.DType())
	if mode == backend.PadConstant && value != 0 {
		filled := c.Full(outSizes, value, r.DType()).(*core.Raw)
		copy(out.Data(), filled.Data())
	}

	inStrides := core.ComputeStrides(sizes)
	n := out.NumElements()
	idx := make([]int, len(outSizes))
	for o := 0; o < n; o++ {
		srcIdx, inside := 0, true
		for axis := range idx {
			p := resolvePad(idx[axis]-widths[axis][0], sizes[axis], mode)
			if p < 0 {
				inside = false
				break
			}
			srcIdx += p * inStrides[axis]
		}
		if inside {
			copyElement(out, r, o, srcIdx)
		}
		for axis := len(idx) - 1; axis >= 0; axis-- {
			idx[axis]++
			if idx[axis] < outSizes[axis] {
				break
			}
			idx[axis] = 0
		}
	}
	return out
}

// resolvePad maps an out-of-range position into the source axis, or -1 for
// constant padding.
func resolvePad(p, size int, mode backend.PadMode) int {
	if p >= 0 && p < size {
		return p
	}
	switch mode {
	case backend.PadBoundary:
		if p < 0 {
			return 0
		}
		return size - 1
	case backend.PadPeriodic:
		p %= size
		if p < 0 {
			p += size
		}
		return p
	case backend.PadSymmetric:
		// ... -2 -1 | 0 1 ... n-1 | n n+1 ... reflects including the edge.
		period := 2 * size
		p %= period
		if p < 0 {
			p += period
		}
		if p >= size {
			p = period - 1 - p
		}
		return p
	case backend.PadReflect:
		// Reflects about the edge element, excluding it.
		if size == 1 {
			return 0
		}
		period := 2 * (size - 1)
		p %= period
		if p < 0 {
			p += period
		}
		if p >= size {
			p = period - p
		}
		return p
	}
	return -1
}

// Reshape reinterprets the flat data under new sizes of equal volume.
func (c *CPUBackend) Reshape(x any, sizes []int) any {
	r := c.raw(x)
	out := core.MustRaw(sizes, r.DType())
	if out.NumElements() != r.NumElements() {
		panic(&core.DimensionError{Cause: fmt.Sprintf("cannot reshape %v into %v", r.Sizes(), sizes)})
	}
	copy(out.Data(), r.Data())
	return out
}

// Transpose permutes the axes. perm must name every axis exactly once.
func (c *CPUBackend) Transpose(x any, perm []int) any {
	r := c.raw(x)
	sizes := r.Sizes()
	if len(perm) != len(sizes) {
		panic(&core.DimensionError{Cause: fmt.Sprintf("permutation %v does not match rank %d", perm, len(sizes))})
	}
	outSizes := make([]int, len(sizes))
	for i, p := range perm {
		outSizes[i] = sizes[p]
	}
	out := core.MustRaw(outSizes, r.DType())
	inStrides := core.ComputeStrides(sizes)
	// Strides of the output walk expressed in source coordinates.
	walkStrides := make([]int, len(perm))
	for i, p := range perm {
		walkStrides[i] = inStrides[p]
	}
	idx := make([]int, len(outSizes))
	srcIdx := 0
	n := out.NumElements()
	for o := 0; o < n; o++ {
		copyElement(out, r, o, srcIdx)
		for axis := len(outSizes) - 1; axis >= 0; axis-- {
			idx[axis]++
			srcIdx += walkStrides[axis]
			if idx[axis] < outSizes[axis] {
				break
			}
			idx[axis] = 0
			srcIdx -= walkStrides[axis] * outSizes[axis]
		}
	}
	return out
}

// ExpandDims inserts a size-1 axis.
func (c *CPUBackend) ExpandDims(x any, axis int) any {
	r := c.raw(x)
	sizes := r.Sizes()
	if axis < 0 {
		axis += len(sizes) + 1
	}
	outSizes := make([]int, 0, len(sizes)+1)
	outSizes = append(outSizes, sizes[:axis]...)
	outSizes = append(outSizes, 1)
	outSizes = append(outSizes, sizes[axis:]...)
	return c.Reshape(r, outSizes)
}

// Tile repeats the array the given number of times per axis.
func (c *CPUBackend) Tile(x any, repeats []int) any {
	r := c.raw(x)
	sizes := r.Sizes()
	if len(repeats) != len(sizes) {
		panic(&core.DimensionError{Cause: fmt.Sprintf("tile repeats %v do not match rank %d", repeats, len(sizes))})
	}
	outSizes := make([]int, len(sizes))
	for i, s := range sizes {
		outSizes[i] = s * repeats[i]
	}
	out := core.MustRaw(outSizes, r.DType())
	inStrides := core.ComputeStrides(sizes)
	idx := make([]int, len(outSizes))
	n := out.NumElements()
	for o := 0; o < n; o++ {
		srcIdx := 0
		for axis := range idx {
			srcIdx += (idx[axis] % sizes[axis]) * inStrides[axis]
		}
		copyElement(out, r, o, srcIdx)
		for axis := len(idx) - 1; axis >= 0; axis-- {
			idx[axis]++
			if idx[axis] < outSizes[axis] {
				break
			}
			idx[axis] = 0
		}
	}
	return out
}

// Flip reverses the array along the given axes.
func (c *CPUBackend) Flip(x any, axes []int) any {
	r := c.raw(x)
	sizes := r.Sizes()
	flipped := make([]bool, len(sizes))
	for _, a := range normalizeAxes(axes, len(sizes)) {
		flipped[a] = true
	}
	out := core.MustRaw(sizes, r.DType())
	inStrides := core.ComputeStrides(sizes)
	idx := make([]int, len(sizes))
	n := out.NumElements()
	for o := 0; o < n; o++ {
		srcIdx := 0
		for axis := range idx {
			p := idx[axis]
			if flipped[axis] {
				p = sizes[axis] - 1 - p
			}
			srcIdx += p * inStrides[axis]
		}
		copyElement(out, r, o, srcIdx)
		for axis := len(idx) - 1; axis >= 0; axis-- {
			idx[axis]++
			if idx[axis] < sizes[axis] {
				break
			}
			idx[axis] = 0
		}
	}
	return out
}

// Gather selects slices along an axis by integer indices.
func (c *CPUBackend) Gather(x any, indices any, axis int) any {
	r := c.raw(x)
	idxRaw := c.raw(indices)
	sizes := r.Sizes()
	if axis < 0 {
		axis += len(sizes)
	}
	at := intAt(idxRaw)
	nIdx := idxRaw.NumElements()

	outSizes := make([]int, 0, len(sizes)-1+len(idxRaw.Sizes()))
	outSizes = append(outSizes, sizes[:axis]...)
	outSizes = append(outSizes, idxRaw.Sizes()...)
	outSizes = append(outSizes, sizes[axis+1:]...)
	out := core.MustRaw(outSizes, r.DType())

	outer, inner := 1, 1
	for i, s := range sizes {
		if i < axis {
			outer *= s
		} else if i > axis {
			inner *= s
		}
	}
	n := sizes[axis]
	for o := 0; o < outer; o++ {
		for k := 0; k < nIdx; k++ {
			src := int(at(k))
			if src < 0 {
				src += n
			}
			if src < 0 || src >= n {
				panic(&core.DimensionError{Cause: fmt.Sprintf("gather index %d out of range for size %d", src, n)})
			}
			for i := 0; i < inner; i++ {
				copyElement(out, r, (o*nIdx+k)*inner+i, (o*n+src)*inner+i)
			}
		}
	}
	return out
}

// GatherND selects elements by full coordinate tuples. indices has sizes
// (..., rank); the output drops the last indices axis.
func (c *CPUBackend) GatherND(x any, indices any) any {
	r := c.raw(x)
	idxRaw := c.raw(indices)
	idxSizes := idxRaw.Sizes()
	rank := idxSizes[len(idxSizes)-1]
	if rank != len(r.Sizes()) {
		panic(&core.DimensionError{Cause: fmt.Sprintf("coordinate tuples of length %d for rank-%d array", rank, len(r.Sizes()))})
	}
	outSizes := idxSizes[:len(idxSizes)-1]
	out := core.MustRaw(outSizes, r.DType())
	inStrides := core.ComputeStrides(r.Sizes())
	at := intAt(idxRaw)
	n := out.NumElements()
	for o := 0; o < n; o++ {
		srcIdx := 0
		for axis := 0; axis < rank; axis++ {
			p := int(at(o*rank + axis))
			if p < 0 {
				p += r.Sizes()[axis]
			}
			srcIdx += p * inStrides[axis]
		}
		copyElement(out, r, o, srcIdx)
	}
	return out
}

// Scatter builds a zero array of the given sizes and writes values at the
// indexed positions along axis 0. ScatterAdd accumulates colliding indices,
// ScatterReplace keeps the last write.
func (c *CPUBackend) Scatter(indices, values any, sizes []int, mode backend.ScatterMode) any {
	upd := c.raw(values)
	out := core.MustRaw(sizes, upd.DType())
	idxRaw := c.raw(indices)
	at := intAt(idxRaw)
	nIdx := idxRaw.NumElements()

	inner := 1
	for _, s := range out.Sizes()[1:] {
		inner *= s
	}
	n := out.Sizes()[0]
	for k := 0; k < nIdx; k++ {
		dst := int(at(k))
		if dst < 0 {
			dst += n
		}
		if dst < 0 || dst >= n {
			panic(&core.DimensionError{Cause: fmt.Sprintf("scatter index %d out of range for size %d", dst, n)})
		}
		for i := 0; i < inner; i++ {
			if mode == backend.ScatterAdd {
				c.scatterAdd(out, upd, dst*inner+i, k*inner+i)
			} else {
				copyElement(out, upd, dst*inner+i, k*inner+i)
			}
		}
	}
	return out
}

func (c *CPUBackend) scatterAdd(out, upd *core.Raw, dstIdx, srcIdx int) {
	switch out.DType().Kind {
	case core.Complex:
		v := complexAt(out)(dstIdx) + complexAt(upd)(srcIdx)
		setComplex(out)(dstIdx, v)
	case core.Int:
		v := intAt(out)(dstIdx) + intAt(upd)(srcIdx)
		setInt(out)(dstIdx, v)
	case core.Bool:
		out.Bools()[dstIdx] = out.Bools()[dstIdx] || upd.Bools()[srcIdx]
	default:
		v := floatAt(out)(dstIdx) + floatAt(upd)(srcIdx)
		setFloat(out)(dstIdx, v)
	}
}

// BooleanMask selects the elements of a flattened x where mask is true,
// producing a vector.
func (c *CPUBackend) BooleanMask(x any, mask any) any {
	r := c.raw(x)
	m := c.Cast(c.raw(mask), core.BoolT).(*core.Raw)
	if m.NumElements() != r.NumElements() {
		panic(&core.DimensionError{Cause: fmt.Sprintf("mask with %d elements for array with %d", m.NumElements(), r.NumElements())})
	}
	bits := m.Bools()
	count := 0
	for _, v := range bits {
		if v {
			count++
		}
	}
	out := core.MustRaw([]int{count}, r.DType())
	j := 0
	for i, v := range bits {
		if v {
			copyElement(out, r, j, i)
			j++
		}
	}
	return out
}

// Where picks elements from a or b by a broadcast condition.
func (c *CPUBackend) Where(condition, a, b any) any {
	cond := c.Cast(c.raw(condition), core.BoolT).(*core.Raw)
	cast := backend.AutoCast(c, c.raw(a), c.raw(b))
	ra, rb := cast[0].(*core.Raw), cast[1].(*core.Raw)
	outSizes := broadcastSizes(broadcastSizes(cond.Sizes(), ra.Sizes()), rb.Sizes())
	out := core.MustRaw(outSizes, ra.DType())
	bits := cond.Bools()
	condStrides := broadcastStrides(cond.Sizes(), outSizes)
	strideA := broadcastStrides(ra.Sizes(), outSizes)
	strideB := broadcastStrides(rb.Sizes(), outSizes)
	idx := make([]int, len(outSizes))
	ci, ai, bi := 0, 0, 0
	n := out.NumElements()
	for o := 0; o < n; o++ {
		if bits[ci] {
			copyElement(out, ra, o, ai)
		} else {
			copyElement(out, rb, o, bi)
		}
		for axis := len(outSizes) - 1; axis >= 0; axis-- {
			idx[axis]++
			ci += condStrides[axis]
			ai += strideA[axis]
			bi += strideB[axis]
			if idx[axis] < outSizes[axis] {
				break
			}
			idx[axis] = 0
			ci -= condStrides[axis] * outSizes[axis]
			ai -= strideA[axis] * outSizes[axis]
			bi -= strideB[axis] * outSizes[axis]
		}
	}
	return out
}

// Nonzero returns the coordinates of all nonzero elements as an
// (count, rank) int array, in row-major order.
func (c *CPUBackend) Nonzero(x any) any {
	r := c.Cast(c.raw(x), core.BoolT).(*core.Raw)
	bits := r.Bools()
	sizes := r.Sizes()
	count := 0
	for _, v := range bits {
		if v {
			count++
		}
	}
	out := core.MustRaw([]int{count, len(sizes)}, core.Int64T)
	dst := out.Int64s()
	idx := make([]int, len(sizes))
	row := 0
	for _, v := range bits {
		if v {
			for axis, p := range idx {
				dst[row*len(sizes)+axis] = int64(p)
			}
			row++
		}
		for axis := len(sizes) - 1; axis >= 0; axis-- {
			idx[axis]++
			if idx[axis] < sizes[axis] {
				break
			}
			idx[axis] = 0
		}
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
