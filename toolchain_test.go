package noob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnownToolchainsValidate(t *testing.T) {
	for _, tc := range []*Toolchain{GCCToolchain(), ClangDarwinToolchain(), MSVCToolchain("C:/vcvarsall.bat", "x64")} {
		assert.NoError(t, tc.Validate())
	}
}

func TestValidateRejectsMissingPlaceholder(t *testing.T) {
	tc := GCCToolchain()
	tc.CObjCmd = "gcc -c $(IN) -o $(OUT)" // missing $(FLAGS)
	err := tc.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "$(FLAGS)")
}

func TestIsMSVCDetectsConfigNamePrefix(t *testing.T) {
	assert.True(t, MSVCToolchain("", "x86").IsMSVC())
	assert.False(t, GCCToolchain().IsMSVC())
	assert.False(t, ClangDarwinToolchain().IsMSVC())
}

func TestObjTemplateForSelectsCxxByExtension(t *testing.T) {
	tc := GCCToolchain()
	assert.Equal(t, tc.CxxObjCmd, tc.ObjTemplateFor("foo.cc"))
	assert.Equal(t, tc.CxxObjCmd, tc.ObjTemplateFor("foo.cpp"))
	assert.Equal(t, tc.CObjCmd, tc.ObjTemplateFor("foo.c"))
}
