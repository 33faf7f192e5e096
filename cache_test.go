package noob

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".noob_cache")

	c, err := LoadCache(path)
	require.NoError(t, err)
	assert.Equal(t, "", c.Get("missing"))

	c.Set("obj:foo.o:src", "deadbeef")
	c.SetAll(map[string]string{"obj:bar.o:src": "cafef00d"})
	require.NoError(t, c.Save())

	reloaded, err := LoadCache(path)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", reloaded.Get("obj:foo.o:src"))
	assert.Equal(t, "cafef00d", reloaded.Get("obj:bar.o:src"))
}

func TestCacheLoadMissingFileIsEmpty(t *testing.T) {
	c, err := LoadCache(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Equal(t, "", c.Get("anything"))
}

func TestCacheTruncatedLineIsIgnoredNotFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".noob_cache")
	require.NoError(t, os.WriteFile(path, []byte("good:1\nmalformed-line-with-no-colon\nother:2\n"), 0o644))

	c, err := LoadCache(path)
	require.NoError(t, err)
	assert.Equal(t, "1", c.Get("good"))
	assert.Equal(t, "2", c.Get("other"))
}

func TestTokenSerializeParseRoundTrip(t *testing.T) {
	tokens := map[string]bool{"-O2": true, "-Wall": true, "-DFOO": true}
	s := SerializeTokens(tokens)
	got := ParseTokens(s)
	assert.Equal(t, tokens, got)
}

func TestParseTokensMalformedYieldsEmptySet(t *testing.T) {
	assert.Empty(t, ParseTokens("not-a-token-list"))
	assert.Empty(t, ParseTokens(""))
	assert.Empty(t, ParseTokens("[]"))
}

