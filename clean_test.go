package noob

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanNodeRemovesObjectsAndTmpDir(t *testing.T) {
	dir := t.TempDir()
	gcc := GCCToolchain()
	n, err := NewExecutable(Params{
		"exe_name": "app",
		"sources":  []string{"main.cc"},
		"tmp_dir":  dir,
	})
	require.NoError(t, err)

	objPath := ObjectPath(n, n.Sources[0], gcc)
	require.NoError(t, os.WriteFile(objPath, []byte("obj"), 0o644))

	require.NoError(t, CleanNode(n, gcc))
	assert.NoFileExists(t, objPath)
	assert.NoDirExists(t, dir)
}

func TestCleanNodeLeavesNonEmptyTmpDir(t *testing.T) {
	dir := t.TempDir()
	gcc := GCCToolchain()
	n, err := NewExecutable(Params{
		"exe_name": "app",
		"sources":  []string{"main.cc"},
		"tmp_dir":  dir,
	})
	require.NoError(t, err)

	// an unrelated file must survive — CleanNode only removes what it
	// created, never the whole directory wholesale.
	other := filepath.Join(dir, "unrelated.txt")
	require.NoError(t, os.WriteFile(other, []byte("keep me"), 0o644))

	require.NoError(t, CleanNode(n, gcc))
	assert.FileExists(t, other)
}

func TestCleanAllNodeRemovesTargetsAndDependencyTemporaries(t *testing.T) {
	dir := t.TempDir()
	gcc := GCCToolchain()
	lib, err := NewStaticLibrary(Params{
		"lib_name": "util",
		"sources":  []string{"util.cc"},
		"dest_dir": dir,
		"tmp_dir":  dir,
	})
	require.NoError(t, err)
	exe, err := NewExecutable(Params{
		"exe_name": "app",
		"sources":  []string{"main.cc"},
		"dest_dir": dir,
		"tmp_dir":  dir,
	})
	require.NoError(t, err)
	exe.Depends(lib)

	exeTarget := exe.TargetsFor(gcc)[0]
	libTarget := lib.TargetsFor(gcc)[0]
	require.NoError(t, os.WriteFile(exeTarget, []byte("bin"), 0o755))
	require.NoError(t, os.WriteFile(libTarget, []byte("archive"), 0o644))

	require.NoError(t, CleanAllNode(exe, gcc))
	assert.NoFileExists(t, exeTarget)
	assert.NoFileExists(t, libTarget)
}

func TestTrimSuffixOnlyTrimsExactSuffix(t *testing.T) {
	assert.Equal(t, "foo", trimSuffix("foo.dll", ".dll"))
	assert.Equal(t, "foo.dll", trimSuffix("foo.dll", ".so"))
}
