package noob

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewExecutableRequiresExeName(t *testing.T) {
	_, err := NewExecutable(Params{"sources": []string{"a.cc"}})
	require.Error(t, err)
}

func TestNewExecutableUnknownParamRejected(t *testing.T) {
	_, err := NewExecutable(Params{"exe_name": "a", "bogus_field": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus_field")
}

func TestNewExecutableAppliesDefaults(t *testing.T) {
	n, err := NewExecutable(Params{"exe_name": "tool"})
	require.NoError(t, err)
	assert.Equal(t, Executable, n.Kind)
	assert.Equal(t, "tool", n.ExeName)
	assert.Equal(t, 8, n.NumThread)
	assert.True(t, n.StopOnError)
	assert.Equal(t, DiffMtime, n.DiffMethod)
	assert.Equal(t, NotProcessed, n.Status)
}

func TestNewStaticLibraryRequiresLibOrExactName(t *testing.T) {
	_, err := NewStaticLibrary(Params{})
	require.Error(t, err)

	n, err := NewStaticLibrary(Params{"exact_lib_name": "libcustom.a"})
	require.NoError(t, err)
	assert.Equal(t, "libcustom.a", n.ExactLibName)
}

func TestTargetsForUnixLibNaming(t *testing.T) {
	n, err := NewStaticLibrary(Params{"lib_name": "foo", "dest_dir": "/out"})
	require.NoError(t, err)
	gcc := GCCToolchain()
	assert.Equal(t, []string{"/out/libfoo.a"}, n.TargetsFor(gcc))
}

func TestTargetsForMSVCLibNamingDropsLibPrefix(t *testing.T) {
	n, err := NewStaticLibrary(Params{"lib_name": "foo", "dest_dir": "/out"})
	require.NoError(t, err)
	msvc := MSVCToolchain("", "x64")
	assert.Equal(t, []string{"/out/foo.lib"}, n.TargetsFor(msvc))
}

func TestTargetsForExactLibNameOverridesPrefixing(t *testing.T) {
	n, err := NewStaticLibrary(Params{"exact_lib_name": "weird.a", "dest_dir": "/out"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/out/weird.a"}, n.TargetsFor(GCCToolchain()))
}

func TestObjectPathIsPureFunctionOfBasenameAndTmpDir(t *testing.T) {
	n := &Node{TmpDir: "/tmp/build"}
	gcc := GCCToolchain()
	assert.Equal(t, "/tmp/build/foo.o", ObjectPath(n, "/some/dir/foo.cc", gcc))
	assert.Equal(t, "/tmp/build/foo.o", ObjectPath(n, "foo.cpp", gcc))
}

func TestNewWrapperLibraryCarriesIDLFields(t *testing.T) {
	n, err := NewWrapperLibrary(Params{
		"lib_name":        "wrap",
		"idl_sources":     []string{"iface.i"},
		"generator_cmd":   "swig $(FLAGS) -o $(OUT) $(IN)",
		"generator_flags": []string{"-c++"},
	})
	require.NoError(t, err)
	assert.Equal(t, WrapperLibrary, n.Kind)
	assert.Len(t, n.IDLSources, 1)
	assert.Equal(t, []string{"-c++"}, n.GeneratorFlags)
}

func TestNewBundleRequiresAppName(t *testing.T) {
	_, err := NewBundle(Params{"script_or_input": "main.py", "packager_path": "/usr/bin/pyinstaller"})
	require.Error(t, err)
}

func TestAddExternLibFoldsSourcesIntoNode(t *testing.T) {
	n, err := NewExecutable(Params{"exe_name": "app", "sources": []string{"main.cc"}})
	require.NoError(t, err)
	n.AddExternLib(ExternLib{LibName: "vendor", Sources: []string{"vendor.cc"}})
	require.Len(t, n.Sources, 2)
	assert.True(t, strings.HasSuffix(n.Sources[0], "main.cc"))
	assert.Equal(t, "vendor.cc", n.Sources[1])
	assert.Len(t, n.ExternLibs, 1)
}
