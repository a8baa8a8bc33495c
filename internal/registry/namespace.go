// Package registry implements layered symbol namespaces for archive loading.
//
// Each archive is loaded through its own isolated Context so that symbols
// from different archives never collide. A Context resolves names against
// its local layer first, then falls back to a shared base Namespace.
package registry

import (
	"regexp"
	"sort"
	"sync"

	"github.com/samber/oops"
)

// symbolPattern validates qualified symbol names: dot-separated segments,
// each starting with a letter, underscore, or dollar sign.
var symbolPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*(\.[A-Za-z_$][A-Za-z0-9_$]*)*$`)

// Namespace is a shared set of initialized symbols. It is safe for
// concurrent use.
type Namespace struct {
	mu      sync.RWMutex
	symbols map[string]struct{}
}

// NewNamespace creates an empty namespace.
func NewNamespace() *Namespace {
	return &Namespace{symbols: make(map[string]struct{})}
}

// Define records a symbol in the namespace.
func (n *Namespace) Define(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.symbols[name] = struct{}{}
}

// Contains reports whether the namespace holds name.
func (n *Namespace) Contains(name string) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	_, ok := n.symbols[name]
	return ok
}

// Len returns the number of defined symbols.
func (n *Namespace) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.symbols)
}

var (
	baseOnce sync.Once
	base     *Namespace
)

// Base returns the process-wide base namespace. It is the shared fallback
// layer for every loading context, the analog of a platform loader.
func Base() *Namespace {
	baseOnce.Do(func() {
		base = NewNamespace()
	})
	return base
}

// Context is an isolated namespace layered over a base. A Context belongs
// to a single load attempt and is not safe for concurrent use.
type Context struct {
	base  *Namespace
	local map[string]struct{}
}

// NewContext creates an isolated context with fallback as its base layer.
// A nil fallback means the context resolves against its local layer only.
func NewContext(fallback *Namespace) *Context {
	return &Context{
		base:  fallback,
		local: make(map[string]struct{}),
	}
}

// Initialize validates name and records it in the context's local layer.
// A name already visible from the context (locally or through the base)
// is initialized at most once. Invalid qualified names return an error
// with code SYMBOL_INVALID_NAME.
func (c *Context) Initialize(name string) error {
	if !symbolPattern.MatchString(name) {
		return oops.Code("SYMBOL_INVALID_NAME").
			With("symbol", name).
			Errorf("invalid qualified name %q", name)
	}
	if c.Resolve(name) {
		return nil
	}
	c.local[name] = struct{}{}
	return nil
}

// Resolve reports whether name is visible from this context: local layer
// first, then the base namespace.
func (c *Context) Resolve(name string) bool {
	if _, ok := c.local[name]; ok {
		return true
	}
	return c.base != nil && c.base.Contains(name)
}

// Symbols returns the names initialized into the local layer, sorted for
// deterministic output.
func (c *Context) Symbols() []string {
	names := make([]string, 0, len(c.local))
	for name := range c.local {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
