package backend

import (
	"fmt"
	"strings"
	"sync"
)

// The set of live backends plus the scoped current-backend stack are the
// only mutable process-wide state in this layer. Entry/exit must be
// serialized by callers running parallel work; the mutex below protects the
// data structures, not the caller's scoping discipline.
var (
	mu         sync.Mutex
	registered []Backend
	stack      []Backend
)

// Register adds an engine to the process-wide set. The first registered
// engine becomes the default. Registering the same engine twice is a no-op.
func Register(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	for _, r := range registered {
		if r == b {
			return
		}
	}
	registered = append(registered, b)
}

// Backends returns a snapshot of all registered engines.
func Backends() []Backend {
	mu.Lock()
	defer mu.Unlock()
	return append([]Backend(nil), registered...)
}

// Get returns the registered engine with the given name, case-insensitive.
func Get(name string) (Backend, error) {
	mu.Lock()
	defer mu.Unlock()
	for _, b := range registered {
		if strings.EqualFold(b.Name(), name) {
			return b, nil
		}
	}
	return nil, fmt.Errorf("no backend registered with name %q", name)
}

// Default returns the first registered engine.
func Default() Backend {
	mu.Lock()
	defer mu.Unlock()
	if len(registered) == 0 {
		panic("backend: no backend registered")
	}
	return registered[0]
}

// Current returns the innermost entered engine, or the default when no
// scope is active.
func Current() Backend {
	mu.Lock()
	defer mu.Unlock()
	if n := len(stack); n > 0 {
		return stack[n-1]
	}
	if len(registered) == 0 {
		panic("backend: no backend registered")
	}
	return registered[0]
}

// Use enters a backend scope: b becomes the current engine until the
// returned release func runs. Release pops exactly one entry, so deferring
// it keeps the stack depth consistent even when the scope body panics.
// Scopes nest; the innermost wins.
func Use(b Backend) (release func()) {
	mu.Lock()
	stack = append(stack, b)
	mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			mu.Lock()
			stack = stack[:len(stack)-1]
			mu.Unlock()
		})
	}
}

// StackDepth returns the current scope nesting depth.
func StackDepth() int {
	mu.Lock()
	defer mu.Unlock()
	return len(stack)
}

// For resolves the engine owning a native value: the registered engine whose
// true native type matches x wins, so values from coexisting engines
// dispatch correctly regardless of the current scope. Values no engine
// claims natively (Go numbers, slices) fall back to the current engine.
func For(x any) Backend {
	mu.Lock()
	snapshot := append([]Backend(nil), registered...)
	mu.Unlock()
	for _, b := range snapshot {
		if b.IsNative(x, true) {
			return b
		}
	}
	return Current()
}
