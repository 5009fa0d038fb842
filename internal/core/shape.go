package core

import (
	"fmt"
	"strings"
)

// DimType governs how a dimension aligns and broadcasts against dimensions
// of other shapes.
type DimType uint8

// Dimension types.
const (
	BatchDim DimType = iota
	SpatialDim
	ChannelDim
	InstanceDim
)

// String returns a human-readable name for the dimension type.
func (t DimType) String() string {
	switch t {
	case BatchDim:
		return "batch"
	case SpatialDim:
		return "spatial"
	case ChannelDim:
		return "channel"
	case InstanceDim:
		return "instance"
	default:
		return "unknown"
	}
}

// SizeUnknown marks a symbolic dimension size that is only fixed when a
// concrete native array is bound (e.g. during graph tracing).
const SizeUnknown = -1

// Dimension is a single named, typed axis of a Shape.
type Dimension struct {
	Name string
	Size int
	Type DimType
}

// Batch constructs a batch dimension.
func Batch(name string, size int) Dimension {
	return Dimension{Name: name, Size: size, Type: BatchDim}
}

// Spatial constructs a spatial dimension.
func Spatial(name string, size int) Dimension {
	return Dimension{Name: name, Size: size, Type: SpatialDim}
}

// Channel constructs a channel dimension.
func Channel(name string, size int) Dimension {
	return Dimension{Name: name, Size: size, Type: ChannelDim}
}

// Instance constructs an instance dimension.
func Instance(name string, size int) Dimension {
	return Dimension{Name: name, Size: size, Type: InstanceDim}
}

// Shape is an ordered sequence of named, typed dimensions. Order is
// significant for native storage layout; dimension names and types determine
// semantic alignment during operations. A zero-dimension Shape is a scalar.
type Shape []Dimension

// NewShape builds a Shape, validating that names are unique and sizes are
// positive or SizeUnknown.
func NewShape(dims ...Dimension) (Shape, error) {
	seen := make(map[string]struct{}, len(dims))
	for _, d := range dims {
		if d.Name == "" {
			return nil, &DimensionError{Name: d.Name, Cause: "empty dimension name"}
		}
		if _, dup := seen[d.Name]; dup {
			return nil, &DimensionError{Name: d.Name, Cause: "duplicate dimension name"}
		}
		if d.Size <= 0 && d.Size != SizeUnknown {
			return nil, &DimensionError{Name: d.Name, Cause: fmt.Sprintf("invalid size %d", d.Size)}
		}
		seen[d.Name] = struct{}{}
	}
	s := make(Shape, len(dims))
	copy(s, dims)
	return s, nil
}

// MustShape is NewShape panicking on error, for statically known shapes.
func MustShape(dims ...Dimension) Shape {
	s, err := NewShape(dims...)
	if err != nil {
		panic(err)
	}
	return s
}

// Scalar returns the zero-dimension shape.
func Scalar() Shape {
	return Shape{}
}

// Rank returns the number of dimensions.
func (s Shape) Rank() int {
	return len(s)
}

// Volume returns the total number of elements, or SizeUnknown if any
// dimension size is symbolic. The scalar shape has volume 1.
func (s Shape) Volume() int {
	n := 1
	for _, d := range s {
		if d.Size == SizeUnknown {
			return SizeUnknown
		}
		n *= d.Size
	}
	return n
}

// Sizes returns the dimension sizes in storage order.
func (s Shape) Sizes() []int {
	sizes := make([]int, len(s))
	for i, d := range s {
		sizes[i] = d.Size
	}
	return sizes
}

// Names returns the dimension names in storage order.
func (s Shape) Names() []string {
	names := make([]string, len(s))
	for i, d := range s {
		names[i] = d.Name
	}
	return names
}

// Index returns the axis of the named dimension, or -1 if absent.
func (s Shape) Index(name string) int {
	for i, d := range s {
		if d.Name == name {
			return i
		}
	}
	return -1
}

// Has reports whether the shape contains the named dimension.
func (s Shape) Has(name string) bool {
	return s.Index(name) >= 0
}

// Get returns the named dimension or a DimensionError if absent.
func (s Shape) Get(name string) (Dimension, error) {
	if i := s.Index(name); i >= 0 {
		return s[i], nil
	}
	return Dimension{}, &DimensionError{Name: name, Shape: s}
}

// Axes resolves dimension names to axis indices. Every name must exist;
// a missing name fails with a DimensionError, never a silent no-op.
func (s Shape) Axes(names ...string) ([]int, error) {
	axes := make([]int, 0, len(names))
	for _, name := range names {
		i := s.Index(name)
		if i < 0 {
			return nil, &DimensionError{Name: name, Shape: s}
		}
		axes = append(axes, i)
	}
	return axes, nil
}

// AxesOfType returns the axis indices of all dimensions of the given type.
func (s Shape) AxesOfType(t DimType) []int {
	var axes []int
	for i, d := range s {
		if d.Type == t {
			axes = append(axes, i)
		}
	}
	return axes
}

// OfType returns the sub-shape holding only dimensions of the given type.
func (s Shape) OfType(t DimType) Shape {
	var out Shape
	for _, d := range s {
		if d.Type == t {
			out = append(out, d)
		}
	}
	return out
}

// Without returns the shape with the named dimensions removed.
func (s Shape) Without(names ...string) Shape {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	var out Shape
	for _, d := range s {
		if _, ok := drop[d.Name]; !ok {
			out = append(out, d)
		}
	}
	return out
}

// WithSizes returns a copy of the shape with dimension sizes replaced
// positionally, binding symbolic sizes to concrete ones.
func (s Shape) WithSizes(sizes []int) (Shape, error) {
	if len(sizes) != len(s) {
		return nil, &DimensionError{Shape: s, Cause: fmt.Sprintf("expected %d sizes, got %d", len(s), len(sizes))}
	}
	out := s.Clone()
	for i := range out {
		out[i].Size = sizes[i]
	}
	return out, nil
}

// Equal reports whether two shapes have identical names, types, sizes and order.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

// String formats the shape as "(b=2:batch, x=64:spatial)".
func (s Shape) String() string {
	if len(s) == 0 {
		return "()"
	}
	parts := make([]string, len(s))
	for i, d := range s {
		if d.Size == SizeUnknown {
			parts[i] = fmt.Sprintf("%s=?:%s", d.Name, d.Type)
		} else {
			parts[i] = fmt.Sprintf("%s=%d:%s", d.Name, d.Size, d.Type)
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Align matches two shapes for an elementwise operation. Dimensions are
// matched by exact name first; dimensions present on only one side are
// treated as size-1 placeholders on the other, then size-1 expansion applies.
//
// The result lists a's dimensions in order followed by b's unmatched ones.
// planA and planB map each result axis to the corresponding operand axis, or
// -1 where the operand lacks the dimension and a size-1 axis must be
// inserted. The plans let engines transpose and expand native arrays without
// materializing broadcast copies.
func Align(a, b Shape) (result Shape, planA, planB []int, err error) {
	result = a.Clone()
	planA = make([]int, 0, len(a)+len(b))
	for i := range a {
		planA = append(planA, i)
	}
	planB = make([]int, len(a), len(a)+len(b))
	for i := range planB {
		planB[i] = -1
	}
	for j, bd := range b {
		i := a.Index(bd.Name)
		if i < 0 {
			result = append(result, bd)
			planA = append(planA, -1)
			planB = append(planB, j)
			continue
		}
		ad := a[i]
		if ad.Type != bd.Type {
			return nil, nil, nil, &DimensionError{Name: bd.Name, Shape: a,
				Cause: fmt.Sprintf("type mismatch: %s vs %s", ad.Type, bd.Type)}
		}
		planB[i] = j
		switch {
		case ad.Size == bd.Size:
		case ad.Size == 1 || ad.Size == SizeUnknown:
			result[i].Size = bd.Size
		case bd.Size == 1 || bd.Size == SizeUnknown:
		default:
			return nil, nil, nil, &DimensionError{Name: bd.Name, Shape: a,
				Cause: fmt.Sprintf("cannot broadcast sizes %d and %d", ad.Size, bd.Size)}
		}
	}
	return result, planA, planB, nil
}
