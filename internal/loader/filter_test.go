package loader_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stevedore/stevedore/internal/loader"
)

func TestFilter_EmptyMatchesEverything(t *testing.T) {
	f, err := loader.NewFilter(nil, nil)
	require.NoError(t, err)

	assert.True(t, f.Match("Foo"))
	assert.True(t, f.Match("pkg.sub.Bar"))
}

func TestFilter_NilMatchesEverything(t *testing.T) {
	var f *loader.Filter
	assert.True(t, f.Match("anything.at.all"))
}

func TestFilter_Include(t *testing.T) {
	f, err := loader.NewFilter([]string{"pkg.*"}, nil)
	require.NoError(t, err)

	// '*' matches a single segment and does not cross '.'
	assert.True(t, f.Match("pkg.Bar"))
	assert.False(t, f.Match("pkg.sub.Baz"))
	assert.False(t, f.Match("other.Thing"))
}

func TestFilter_IncludeDeep(t *testing.T) {
	f, err := loader.NewFilter([]string{"pkg.**"}, nil)
	require.NoError(t, err)

	assert.True(t, f.Match("pkg.Bar"))
	assert.True(t, f.Match("pkg.sub.Baz"))
	assert.False(t, f.Match("other.Thing"))
}

func TestFilter_ExcludeWins(t *testing.T) {
	f, err := loader.NewFilter([]string{"pkg.**"}, []string{"pkg.internal.**"})
	require.NoError(t, err)

	assert.True(t, f.Match("pkg.Bar"))
	assert.False(t, f.Match("pkg.internal.Secret"))
}

func TestFilter_InvalidPatterns(t *testing.T) {
	_, err := loader.NewFilter([]string{""}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "include")

	_, err = loader.NewFilter(nil, []string{"[unclosed"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exclude")
}
