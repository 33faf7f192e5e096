package noob

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeToolchain returns a Toolchain whose "compiler" and "linker" are a
// short shell script that only stamps $(OUT) into existence and leaves
// everything else alone, so the pipeline can be driven end-to-end
// without a real C++ toolchain installed, and without the compiler
// itself bumping a source file's mtime and defeating the staleness
// check under test.
func fakeToolchain(t *testing.T) *Toolchain {
	t.Helper()
	script := filepath.Join(t.TempDir(), "stamp.sh")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\ntouch \"$1\"\n"), 0o755))
	cmd := script + " $(OUT) $(IN) $(FLAGS)"
	return &Toolchain{
		CObjCmd:              cmd,
		CxxObjCmd:             cmd,
		ExeLinkCmd:            cmd,
		DynamicLinkCmd:        cmd,
		StaticLinkCmd:         cmd,
		IncludesPrefix:        "-I",
		SystemIncludesPrefix:  "-isystem",
		ConfigName:            "fake",
		ObjSuffix:             ".o",
		ExeSuffix:             "",
		StaticSuffix:          ".a",
		DynamicSuffix:         ".so",
	}
}

func TestBuildCompilesAndLinksFromScratch(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.cc")
	require.NoError(t, os.WriteFile(src, []byte("int main(){return 0;}\n"), 0o644))

	n, err := NewExecutable(Params{
		"exe_name": "app",
		"sources":  []string{src},
		"dest_dir": dir,
		"tmp_dir":  dir,
	})
	require.NoError(t, err)

	sess, err := NewSession(fakeToolchain(t), filepath.Join(dir, ".noob_cache"), nil)
	require.NoError(t, err)

	require.NoError(t, sess.Build(context.Background(), n))
	assert.Equal(t, Built, n.Status)
	assert.FileExists(t, filepath.Join(dir, "app"))
}

func TestBuildSecondRunIsUpToDate(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.cc")
	require.NoError(t, os.WriteFile(src, []byte("int main(){return 0;}\n"), 0o644))

	newNode := func() *Node {
		n, err := NewExecutable(Params{
			"exe_name": "app",
			"sources":  []string{src},
			"dest_dir": dir,
			"tmp_dir":  dir,
		})
		require.NoError(t, err)
		return n
	}

	cachePath := filepath.Join(dir, ".noob_cache")
	sess, err := NewSession(fakeToolchain(t), cachePath, nil)
	require.NoError(t, err)
	require.NoError(t, sess.Build(context.Background(), newNode()))

	target := filepath.Join(dir, "app")
	firstMtime, ok := modTime(target)
	require.True(t, ok)

	sess2, err := NewSession(fakeToolchain(t), cachePath, nil)
	require.NoError(t, err)
	n2 := newNode()
	require.NoError(t, sess2.Build(context.Background(), n2))
	assert.Equal(t, UpToDate, n2.Status)

	secondMtime, ok := modTime(target)
	require.True(t, ok)
	assert.Equal(t, firstMtime, secondMtime, "an unchanged source must not trigger a relink")
}

func TestBuildStopsAtFirstNodeFailure(t *testing.T) {
	dir := t.TempDir()
	n, err := NewExecutable(Params{
		"exe_name": "app",
		"sources":  []string{filepath.Join(dir, "missing.cc")},
		"dest_dir": dir,
		"tmp_dir":  dir,
	})
	require.NoError(t, err)

	sess, err := NewSession(fakeToolchain(t), filepath.Join(dir, ".noob_cache"), nil)
	require.NoError(t, err)

	err = sess.Build(context.Background(), n)
	require.Error(t, err)
	be, ok := err.(BuildError)
	require.True(t, ok)
	assert.Equal(t, KindMissingFile, be.Kind())
}

func TestParseEnvDumpKeepsOnlyAssignmentLines(t *testing.T) {
	out := "PATH=/usr/bin\nsome banner text\nHOME=/root\n"
	env := parseEnvDump(out)
	assert.Equal(t, []string{"PATH=/usr/bin", "HOME=/root"}, env)
}

func TestQuoteArgvEscapesSingleQuotes(t *testing.T) {
	got := quoteArgv([]string{"it's", "plain"})
	assert.Equal(t, []string{`'it'\''s'`, "'plain'"}, got)
}

func TestLinkTemplateForDispatchesByKind(t *testing.T) {
	tc := GCCToolchain()
	assert.Equal(t, tc.StaticLinkCmd, linkTemplateFor(StaticLibrary, tc))
	assert.Equal(t, tc.DynamicLinkCmd, linkTemplateFor(DynamicLibrary, tc))
	assert.Equal(t, tc.DynamicLinkCmd, linkTemplateFor(WrapperLibrary, tc))
	assert.Equal(t, tc.ExeLinkCmd, linkTemplateFor(Executable, tc))
}
