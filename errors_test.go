package noob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorConstructorsCarryKindAndTarget(t *testing.T) {
	cases := []struct {
		err  error
		kind ErrorKind
	}{
		{newConfigError("t", "r"), KindConfiguration},
		{newMissingFileError("t", "r"), KindMissingFile},
		{newToolchainInitError("t", "r"), KindToolchainInit},
		{newCompileFailure("t", "r"), KindCompileFailed},
		{newLinkFailure("t", "r"), KindLinkFailed},
		{newFilesystemError("t", "r"), KindFilesystem},
	}
	for _, c := range cases {
		be, ok := c.err.(BuildError)
		require.True(t, ok)
		assert.Equal(t, c.kind, be.Kind())
		assert.Equal(t, "t", be.Target())
	}
}

func TestFormatAggregatedLineShape(t *testing.T) {
	got := FormatAggregated(KindCompileFailed, "app", "gcc exited 1")
	assert.Equal(t, `[ERROR] CompileFailure : "app" build failed : gcc exited 1`, got)
}
