package noob

import (
	"fmt"
	"strings"
)

// placeholders a command template must contain, per spec.md §4.1.
const (
	placeholderIn    = "$(IN)"
	placeholderOut   = "$(OUT)"
	placeholderFlags = "$(FLAGS)"
)

// MSVCConfigPrefix identifies an MSVC toolchain (by ConfigName prefix) for
// the Windows DLL-to-import-library link input rewrite (spec.md §4.5).
const MSVCConfigPrefix = "msvc"

// Toolchain is the Toolchain Descriptor (C1): template command strings,
// platform suffixes, and an optional environment-capture script, grounded
// on original_source/compiler.py's KNOWN_COMPILERS records (one dict per
// compiler there, one struct value here).
type Toolchain struct {
	CObjCmd        string
	CxxObjCmd      string
	ExeLinkCmd     string
	DynamicLinkCmd string
	StaticLinkCmd  string
	GeneratorCmd   string // default $(IN)/$(OUT)/$(FLAGS) template for WrapperLibrary

	IncludesPrefix       string
	SystemIncludesPrefix string

	ConfigName string

	ObjSuffix     string
	ExeSuffix     string
	StaticSuffix  string
	DynamicSuffix string

	// InitScript, if set, is launched via a shell and chained with an
	// environment-dump command; its KEY=VALUE output becomes the
	// environment forwarded to every subprocess of the build.
	InitScript []string
}

// Validate checks every template contains all three placeholders, per
// spec.md §4.1's "Misformed command" requirement.
func (t *Toolchain) Validate() error {
	templates := map[string]string{
		"c_obj_cmd":         t.CObjCmd,
		"cxx_obj_cmd":       t.CxxObjCmd,
		"exe_link_cmd":      t.ExeLinkCmd,
		"dynamic_link_cmd":  t.DynamicLinkCmd,
		"static_link_cmd":   t.StaticLinkCmd,
	}
	for name, tmpl := range templates {
		if err := validateTemplate(name, tmpl); err != nil {
			return err
		}
	}
	return nil
}

func validateTemplate(name, tmpl string) error {
	for _, ph := range []string{placeholderIn, placeholderOut, placeholderFlags} {
		if !strings.Contains(tmpl, ph) {
			return newConfigError(name, fmt.Sprintf("misformed command: %q is missing placeholder %s", tmpl, ph))
		}
	}
	return nil
}

// IsMSVC reports whether this toolchain needs the DLL->import-library
// link input rewrite (spec.md §4.5).
func (t *Toolchain) IsMSVC() bool {
	return strings.HasPrefix(strings.ToLower(t.ConfigName), MSVCConfigPrefix)
}

// ObjTemplateFor selects the C or C++ object template based on the
// source extension, per spec.md §4.1: ".cc"/".cpp" select C++, anything
// else selects C.
func (t *Toolchain) ObjTemplateFor(source string) string {
	if isCxxSource(source) {
		return t.CxxObjCmd
	}
	return t.CObjCmd
}

func isCxxSource(source string) bool {
	return strings.HasSuffix(source, ".cc") || strings.HasSuffix(source, ".cpp")
}

// GCCToolchain returns a Descriptor for a plain gcc/g++/ar Linux
// toolchain, grounded on original_source/compiler.py's
// KNOWN_COMPILERS["linux"]["g++_64"] entry.
func GCCToolchain() *Toolchain {
	return &Toolchain{
		CObjCmd:              "gcc -c $(IN) -o $(OUT) $(FLAGS)",
		CxxObjCmd:            "g++ -c -fPIC $(IN) -o $(OUT) $(FLAGS)",
		ExeLinkCmd:           "g++ -lstdc++ $(IN) -o $(OUT) $(FLAGS)",
		DynamicLinkCmd:       "g++ -shared $(IN) -o $(OUT) $(FLAGS)",
		StaticLinkCmd:        "ar qcs $(OUT) $(IN) $(FLAGS)",
		IncludesPrefix:       "-I",
		SystemIncludesPrefix: "-isystem",
		ConfigName:           "gcc",
		ObjSuffix:            ".o",
		ExeSuffix:            "",
		StaticSuffix:         ".a",
		DynamicSuffix:        ".so",
	}
}

// ClangDarwinToolchain mirrors compiler.py's KNOWN_COMPILERS["macOS"]["g++_64"].
func ClangDarwinToolchain() *Toolchain {
	return &Toolchain{
		CObjCmd:              "gcc -c $(IN) -o $(OUT) $(FLAGS)",
		CxxObjCmd:            "g++ -c $(IN) -o $(OUT) $(FLAGS)",
		ExeLinkCmd:           "g++ $(IN) -o $(OUT) $(FLAGS)",
		DynamicLinkCmd:       "g++ $(IN) -o $(OUT) $(FLAGS) -headerpad_max_install_names -dynamiclib",
		StaticLinkCmd:        "ar qcs $(OUT) $(IN) $(FLAGS)",
		IncludesPrefix:       "-I",
		SystemIncludesPrefix: "-isystem",
		ConfigName:           "g++ MacOS",
		ObjSuffix:            ".o",
		ExeSuffix:            "",
		StaticSuffix:         ".a",
		DynamicSuffix:        ".dylib",
	}
}

// MSVCToolchain mirrors compiler.py's per-year MSVC entries, parameterised
// on the vcvarsall.bat path and architecture instead of hardcoding a
// Visual Studio year.
func MSVCToolchain(vcvarsallPath, arch string) *Toolchain {
	return &Toolchain{
		CObjCmd:              `cl.exe /c $(IN) -Fo$(OUT) $(FLAGS) /TC`,
		CxxObjCmd:            `cl.exe /c $(IN) -Fo$(OUT) $(FLAGS) /TP`,
		ExeLinkCmd:           `link.exe /NOLOGO $(IN) /OUT:$(OUT) $(FLAGS)`,
		DynamicLinkCmd:       `link.exe /NOLOGO /DLL $(IN) /OUT:$(OUT) $(FLAGS)`,
		StaticLinkCmd:        `lib.exe /NOLOGO /OUT:$(OUT) $(IN) $(FLAGS)`,
		IncludesPrefix:       "-I",
		SystemIncludesPrefix: "-I",
		ConfigName:           "msvc",
		ObjSuffix:            ".obj",
		ExeSuffix:            ".exe",
		StaticSuffix:         ".lib",
		DynamicSuffix:        ".dll",
		InitScript:           []string{vcvarsallPath, arch},
	}
}
