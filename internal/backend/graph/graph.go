// Package graph implements a tracing execution engine. Calling backend
// operations on its *Node natives records a step tape instead of being the
// final computation; Compile captures a Go function as such a tape once per
// distinct input signature and replays it on the eager CPU engine for every
// subsequent call with matching sizes and dtypes.
package graph

import (
	"fmt"
	"strings"
	"sync"

	"github.com/simflux-ml/simflux/internal/backend"
	"github.com/simflux-ml/simflux/internal/backend/cpu"
	"github.com/simflux-ml/simflux/internal/core"
)

// Node is the engine's native value: a position in the step tape. During
// tracing it also carries the concrete delegate value so shape and dtype
// queries stay answerable, but the value is not part of the recorded
// program.
type Node struct {
	id    int
	value any
	trace *trace
}

// step replays one recorded operation against the current environment.
type step struct {
	output int
	inputs []int
	run    func(delegate backend.Backend, inputs []any) any
}

// trace is one recorded program: placeholders for the inputs, a step tape,
// and the ids of the outputs.
type trace struct {
	nextID  int
	inputs  []int
	steps   []step
	outputs []int
}

// GraphBackend records operations on *Node values. Operations it cannot
// express as replayable steps are inherited from backend.Unsupported and
// fail at call time.
type GraphBackend struct {
	backend.Unsupported
	delegate backend.Backend

	mu      sync.Mutex
	current *trace
}

// New creates a graph engine replaying on the shared CPU engine.
func New() *GraphBackend {
	return &GraphBackend{
		Unsupported: backend.Unsupported{BackendName: "graph"},
		delegate:    cpu.Default(),
	}
}

var (
	defaultOnce  sync.Once
	defaultGraph *GraphBackend
)

// Default returns the shared graph engine, registering it on first use.
func Default() *GraphBackend {
	defaultOnce.Do(func() {
		defaultGraph = New()
		backend.Register(defaultGraph)
	})
	return defaultGraph
}

var _ backend.Backend = (*GraphBackend)(nil)

// Name returns the engine name.
func (g *GraphBackend) Name() string { return "graph" }

// IsNative accepts only this engine's graph nodes.
func (g *GraphBackend) IsNative(x any, onlyNative bool) bool {
	_, ok := x.(*Node)
	return ok
}

// AsNative lifts a value into the current trace as a constant node. Outside
// a trace there is nothing to record into.
func (g *GraphBackend) AsNative(x any) (any, error) {
	if n, ok := x.(*Node); ok {
		return n, nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		return nil, fmt.Errorf("graph: no active trace to lift %T into", x)
	}
	value, err := g.delegate.AsNative(x)
	if err != nil {
		return nil, err
	}
	return g.constantLocked(value), nil
}

// Available reports false: node values only exist when a compiled trace
// runs.
func (g *GraphBackend) Available(x any) bool { return false }

// DTypeOf answers from the concrete trace-time value.
func (g *GraphBackend) DTypeOf(x any) core.DType {
	return g.delegate.DTypeOf(g.node(x).value)
}

// SizesOf answers from the concrete trace-time value.
func (g *GraphBackend) SizesOf(x any) []int {
	return g.delegate.SizesOf(g.node(x).value)
}

func (g *GraphBackend) node(x any) *Node {
	if n, ok := x.(*Node); ok {
		return n
	}
	native, err := g.AsNative(x)
	if err != nil {
		panic(err)
	}
	return native.(*Node)
}

// constantLocked embeds an already-native delegate value into the trace.
// The value replays as itself, so trace-time constants are baked in.
func (g *GraphBackend) constantLocked(value any) *Node {
	t := g.current
	n := &Node{id: t.nextID, value: value, trace: t}
	t.nextID++
	t.steps = append(t.steps, step{
		output: n.id,
		run: func(delegate backend.Backend, _ []any) any {
			return value
		},
	})
	return n
}

// record executes run once for the trace-time value and appends it as a
// replayable step.
func (g *GraphBackend) record(inputs []any, run func(delegate backend.Backend, inputs []any) any) *Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		panic(fmt.Errorf("graph: operation recorded outside a trace"))
	}
	t := g.current
	nodes := make([]*Node, len(inputs))
	values := make([]any, len(inputs))
	ids := make([]int, len(inputs))
	for i, x := range inputs {
		if n, ok := x.(*Node); ok {
			nodes[i] = n
		} else {
			value, err := g.delegate.AsNative(x)
			if err != nil {
				panic(err)
			}
			nodes[i] = g.constantLocked(value)
		}
		values[i] = nodes[i].value
		ids[i] = nodes[i].id
	}
	out := &Node{id: t.nextID, value: run(g.delegate, values), trace: t}
	t.nextID++
	t.steps = append(t.steps, step{output: out.id, inputs: ids, run: run})
	return out
}

// Compiled is a traced function with one recorded program per input
// signature.
type Compiled struct {
	g  *GraphBackend
	fn func(b backend.Backend, inputs []any) []any

	mu     sync.Mutex
	traces map[string]*trace
}

// Compile wraps fn for signature-cached execution. fn receives this engine
// and *Node inputs on the first call per signature; plain Go code in fn runs
// only during that trace.
func (g *GraphBackend) Compile(fn func(b backend.Backend, inputs []any) []any) *Compiled {
	return &Compiled{g: g, fn: fn, traces: make(map[string]*trace)}
}

// Call runs the function on eager inputs, tracing on a signature miss and
// replaying the recorded steps otherwise.
func (c *Compiled) Call(inputs ...any) []any {
	delegate := c.g.delegate
	values := make([]any, len(inputs))
	for i, x := range inputs {
		native, err := delegate.AsNative(x)
		if err != nil {
			panic(err)
		}
		values[i] = native
	}
	sig := signature(delegate, values)

	c.mu.Lock()
	t, ok := c.traces[sig]
	c.mu.Unlock()
	if !ok {
		t = c.g.traceOnce(c.fn, values)
		c.mu.Lock()
		c.traces[sig] = t
		c.mu.Unlock()
	}
	return t.replay(delegate, values)
}

// TraceCount returns the number of distinct signatures traced so far.
func (c *Compiled) TraceCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.traces)
}

func (g *GraphBackend) traceOnce(fn func(b backend.Backend, inputs []any) []any, values []any) *trace {
	t := &trace{}
	g.mu.Lock()
	if g.current != nil {
		g.mu.Unlock()
		panic(fmt.Errorf("graph: nested traces are not supported"))
	}
	g.current = t
	args := make([]any, len(values))
	for i, v := range values {
		n := &Node{id: t.nextID, value: v, trace: t}
		t.nextID++
		t.inputs = append(t.inputs, n.id)
		args[i] = n
	}
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.current = nil
		g.mu.Unlock()
	}()

	results := fn(g, args)
	for _, r := range results {
		t.outputs = append(t.outputs, g.node(r).id)
	}
	return t
}

func (t *trace) replay(delegate backend.Backend, values []any) []any {
	env := make([]any, t.nextID)
	for i, id := range t.inputs {
		env[id] = values[i]
	}
	for _, s := range t.steps {
		args := make([]any, len(s.inputs))
		for i, id := range s.inputs {
			args[i] = env[id]
		}
		env[s.output] = s.run(delegate, args)
	}
	out := make([]any, len(t.outputs))
	for i, id := range t.outputs {
		out[i] = env[id]
	}
	return out
}

// signature keys the trace cache by input sizes and dtypes, the properties
// a recorded program depends on.
func signature(b backend.Backend, values []any) string {
	var sb strings.Builder
	for i, v := range values {
		if i > 0 {
			sb.WriteByte(';')
		}
		fmt.Fprintf(&sb, "%s%v", b.DTypeOf(v), b.SizesOf(v))
	}
	return sb.String()
}
