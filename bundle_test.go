package noob

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundleArgvOrder(t *testing.T) {
	n := &Node{
		AppName:       "myapp",
		PackagerPath:  "/usr/bin/pyinstaller",
		ScriptOrInput: "main.py",
		DestDir:       "/out",
		TmpDir:        "/tmp/work",
		BundleFlags:   []string{"--onefile"},
	}
	argv := bundleArgv(n)
	assert.Equal(t, []string{
		"/usr/bin/pyinstaller", "main.py", "--name=myapp",
		"--distpath=/out", "--workpath=/tmp/work", "--onefile",
	}, argv)
}

func TestEvaluateBundleRequiresScriptOrInput(t *testing.T) {
	sess := &Session{Toolchain: GCCToolchain()}
	n, err := NewBundle(Params{"app_name": "app", "packager_path": "/bin/true"})
	require.NoError(t, err)
	err = sess.evaluateBundle(context.Background(), n)
	require.Error(t, err)
}

func TestEvaluateBundleRejectsMissingInput(t *testing.T) {
	sess := &Session{Toolchain: GCCToolchain()}
	dir := t.TempDir()
	n, err := NewBundle(Params{
		"app_name":        "app",
		"script_or_input": filepath.Join(dir, "missing.py"),
		"packager_path":   "/bin/true",
	})
	require.NoError(t, err)
	err = sess.evaluateBundle(context.Background(), n)
	require.Error(t, err)
}

func TestEvaluateBundleAlwaysReruns(t *testing.T) {
	trueBin, err := exec.LookPath("true")
	if err != nil {
		t.Skip("true(1) not available")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "main.py")
	require.NoError(t, os.WriteFile(script, []byte("print('hi')\n"), 0o644))

	n, err := NewBundle(Params{
		"app_name":        "myapp",
		"script_or_input": script,
		"packager_path":   trueBin,
		"dest_dir":        filepath.Join(dir, "dist"),
		"tmp_dir":         filepath.Join(dir, "build"),
	})
	require.NoError(t, err)
	sess := &Session{Toolchain: GCCToolchain()}

	require.NoError(t, sess.evaluateBundle(context.Background(), n))
	assert.Equal(t, Built, n.Status)
	require.NoError(t, sess.evaluateBundle(context.Background(), n))
	assert.Equal(t, Built, n.Status, "a Bundle node has no staleness check and must rerun every time")
}
