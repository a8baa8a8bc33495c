package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevedore/stevedore/pkg/errutil"
)

func TestContext_Initialize(t *testing.T) {
	ctx := NewContext(nil)

	require.NoError(t, ctx.Initialize("Foo"))
	require.NoError(t, ctx.Initialize("pkg.Bar"))
	require.NoError(t, ctx.Initialize("a.b.c.D$Inner"))

	assert.True(t, ctx.Resolve("Foo"))
	assert.True(t, ctx.Resolve("pkg.Bar"))
	assert.Equal(t, []string{"Foo", "a.b.c.D$Inner", "pkg.Bar"}, ctx.Symbols())
}

func TestContext_Initialize_InvalidNames(t *testing.T) {
	ctx := NewContext(nil)

	for _, name := range []string{
		"",
		".",
		"pkg.",
		".Foo",
		"pkg..Bar",
		"1Foo",
		"pkg.2Bar",
		"pkg/Bar",
		"pkg Bar",
	} {
		err := ctx.Initialize(name)
		require.Error(t, err, "name %q should be rejected", name)
		errutil.AssertErrorCode(t, err, "SYMBOL_INVALID_NAME")
		errutil.AssertErrorContext(t, err, "symbol", name)
	}

	assert.Empty(t, ctx.Symbols())
}

func TestContext_Initialize_Idempotent(t *testing.T) {
	ctx := NewContext(nil)

	require.NoError(t, ctx.Initialize("Foo"))
	require.NoError(t, ctx.Initialize("Foo"))

	assert.Equal(t, []string{"Foo"}, ctx.Symbols())
}

func TestContext_BaseFallback(t *testing.T) {
	fallback := NewNamespace()
	fallback.Define("shared.Sym")

	ctx := NewContext(fallback)

	assert.True(t, ctx.Resolve("shared.Sym"))

	// A name already visible through the base is not re-initialized locally.
	require.NoError(t, ctx.Initialize("shared.Sym"))
	assert.Empty(t, ctx.Symbols())
}

func TestContext_Isolation(t *testing.T) {
	fallback := NewNamespace()
	a := NewContext(fallback)
	b := NewContext(fallback)

	require.NoError(t, a.Initialize("only.A"))

	assert.True(t, a.Resolve("only.A"))
	assert.False(t, b.Resolve("only.A"))
	// Local initialization never leaks into the shared base.
	assert.False(t, fallback.Contains("only.A"))
}

func TestBase_Singleton(t *testing.T) {
	assert.Same(t, Base(), Base())
}

func TestNamespace_ConcurrentDefine(t *testing.T) {
	ns := NewNamespace()

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				ns.Define(fmt.Sprintf("pkg%d.Sym%d", i, j))
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, ns.Len())
}
