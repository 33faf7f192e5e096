package noob

import (
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ManifestToolchain is the `[toolchain]` table of a BuildManifest,
// mapping 1:1 onto Toolchain Descriptor fields (§6/§12).
type ManifestToolchain struct {
	Preset               string   `toml:"preset"` // "gcc", "clang-darwin", "msvc", or "" for auto-detect
	CObjCmd              string   `toml:"c_obj_cmd"`
	CxxObjCmd            string   `toml:"cxx_obj_cmd"`
	ExeLinkCmd           string   `toml:"exe_link_cmd"`
	DynamicLinkCmd       string   `toml:"dynamic_link_cmd"`
	StaticLinkCmd        string   `toml:"static_link_cmd"`
	GeneratorCmd         string   `toml:"generator_cmd"`
	IncludesPrefix       string   `toml:"includes_prefix"`
	SystemIncludesPrefix string   `toml:"system_includes_prefix"`
	ConfigName           string   `toml:"config_name"`
	ObjSuffix            string   `toml:"obj_suffix"`
	ExeSuffix            string   `toml:"exe_suffix"`
	StaticSuffix         string   `toml:"static_suffix"`
	DynamicSuffix        string   `toml:"dynamic_suffix"`
	InitScript           []string `toml:"init_script"`
	MSVCArch             string   `toml:"msvc_arch"`
}

// ManifestNode is one `[[node]]` table: every field a Build Node can
// carry, flattened into a single TOML record since a manifest doesn't
// know ahead of time which Kind a table will declare.
type ManifestNode struct {
	Kind    string   `toml:"kind"`
	Name    string   `toml:"name"`
	Depends []string `toml:"depends"`

	Sources        []string `toml:"sources"`
	Includes       []string `toml:"includes"`
	SystemIncludes []string `toml:"system_includes"`
	CCFlags        []string `toml:"cc_flags"`
	LDFlags        []string `toml:"ld_flags"`
	DestDir        string   `toml:"dest_dir"`
	TmpDir         string   `toml:"tmp_dir"`
	NumThread      int      `toml:"num_thread"`
	StopOnError    *bool    `toml:"stop_on_error"`
	DiffMethod     string   `toml:"diff_method"`
	DisplayMode    string   `toml:"display_mode"`

	ExeName      string `toml:"exe_name"`
	LibName      string `toml:"lib_name"`
	ExactLibName string `toml:"exact_lib_name"`

	IDLSources     []string `toml:"idl_sources"`
	GeneratorCmd   string   `toml:"generator_cmd"`
	GeneratorFlags []string `toml:"generator_flags"`

	AppName       string   `toml:"app_name"`
	ScriptOrInput string   `toml:"script_or_input"`
	PackagerPath  string   `toml:"packager_path"`
	BundleFlags   []string `toml:"flags"`
	BundleEnv     []string `toml:"environment"`
}

// BuildManifest is the root of a `noob.toml` document (§12).
type BuildManifest struct {
	Toolchain ManifestToolchain `toml:"toolchain"`
	Node      []ManifestNode    `toml:"node"`
}

// LoadManifest reads and decodes a TOML manifest file.
func LoadManifest(path string) (*BuildManifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, newFilesystemError(path, err.Error())
	}
	var m BuildManifest
	if err := toml.Unmarshal(raw, &m); err != nil {
		return nil, newConfigError(path, "malformed manifest: "+err.Error())
	}
	return &m, nil
}

// ResolveToolchain builds a Toolchain Descriptor from the manifest's
// `[toolchain]` table: a named preset fills in the template commands,
// then any explicitly set field overrides it, and a blank preset falls
// back to Bootstrap's platform auto-detection.
func (m *BuildManifest) ResolveToolchain() (*Toolchain, error) {
	var t *Toolchain
	switch m.Toolchain.Preset {
	case "gcc":
		t = GCCToolchain()
	case "clang-darwin":
		t = ClangDarwinToolchain()
	case "msvc":
		t = MSVCToolchain("", m.Toolchain.MSVCArch)
	case "":
		detected, err := DetectToolchain()
		if err != nil {
			return nil, err
		}
		t = detected
	default:
		return nil, newConfigError("toolchain", "unknown preset \""+m.Toolchain.Preset+"\"")
	}

	mt := m.Toolchain
	overrideString(&t.CObjCmd, mt.CObjCmd)
	overrideString(&t.CxxObjCmd, mt.CxxObjCmd)
	overrideString(&t.ExeLinkCmd, mt.ExeLinkCmd)
	overrideString(&t.DynamicLinkCmd, mt.DynamicLinkCmd)
	overrideString(&t.StaticLinkCmd, mt.StaticLinkCmd)
	overrideString(&t.GeneratorCmd, mt.GeneratorCmd)
	overrideString(&t.IncludesPrefix, mt.IncludesPrefix)
	overrideString(&t.SystemIncludesPrefix, mt.SystemIncludesPrefix)
	overrideString(&t.ConfigName, mt.ConfigName)
	overrideString(&t.ObjSuffix, mt.ObjSuffix)
	overrideString(&t.ExeSuffix, mt.ExeSuffix)
	overrideString(&t.StaticSuffix, mt.StaticSuffix)
	overrideString(&t.DynamicSuffix, mt.DynamicSuffix)
	if len(mt.InitScript) > 0 {
		t.InitScript = mt.InitScript
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func overrideString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// BuildGraph translates every `[[node]]` table into a constructed Node,
// wires the `depends` edges via Depends, and returns the node named
// target ready for Session.Build. Every manifest field maps 1:1 onto a
// Params key so construction goes through the same validation path as
// the programmatic API (§6's "convenience wrapper, not a replacement").
func BuildGraph(m *BuildManifest, target, callingPath string) (*Node, error) {
	nodes := make(map[string]*Node, len(m.Node))
	specs := make(map[string]ManifestNode, len(m.Node))

	for _, spec := range m.Node {
		if spec.Name == "" {
			return nil, newConfigError("manifest", "a [[node]] table is missing \"name\"")
		}
		n, err := newNodeFromManifest(spec, callingPath)
		if err != nil {
			return nil, err
		}
		nodes[spec.Name] = n
		specs[spec.Name] = spec
	}

	for name, spec := range specs {
		for _, dep := range spec.Depends {
			depNode, ok := nodes[dep]
			if !ok {
				return nil, newConfigError(name, "unknown dependency \""+dep+"\"")
			}
			nodes[name].Depends(depNode)
		}
	}

	root, ok := nodes[target]
	if !ok {
		return nil, newConfigError(target, "no such node in manifest")
	}
	return root, nil
}

func newNodeFromManifest(spec ManifestNode, callingPath string) (*Node, error) {
	params := Params{"calling_path": callingPath}
	if spec.Sources != nil {
		params["sources"] = spec.Sources
	}
	if spec.Includes != nil {
		params["includes"] = spec.Includes
	}
	if spec.SystemIncludes != nil {
		params["system_includes"] = spec.SystemIncludes
	}
	if spec.CCFlags != nil {
		params["cc_flags"] = spec.CCFlags
	}
	if spec.LDFlags != nil {
		params["ld_flags"] = spec.LDFlags
	}
	if spec.DestDir != "" {
		params["dest_dir"] = spec.DestDir
	}
	if spec.TmpDir != "" {
		params["tmp_dir"] = spec.TmpDir
	}
	if spec.NumThread != 0 {
		params["num_thread"] = spec.NumThread
	}
	if spec.StopOnError != nil {
		params["stop_on_error"] = *spec.StopOnError
	}
	if spec.DiffMethod != "" {
		params["diff_method"] = spec.DiffMethod
	}
	if spec.DisplayMode != "" {
		params["display_mode"] = spec.DisplayMode
	}

	switch spec.Kind {
	case string(Executable):
		params["exe_name"] = spec.ExeName
		return NewExecutable(params)
	case string(StaticLibrary):
		addLibParams(params, spec)
		return NewStaticLibrary(params)
	case string(DynamicLibrary):
		addLibParams(params, spec)
		return NewDynamicLibrary(params)
	case string(WrapperLibrary):
		addLibParams(params, spec)
		if spec.IDLSources != nil {
			params["idl_sources"] = spec.IDLSources
		}
		params["generator_cmd"] = spec.GeneratorCmd
		if spec.GeneratorFlags != nil {
			params["generator_flags"] = spec.GeneratorFlags
		}
		return NewWrapperLibrary(params)
	case string(BundleKind):
		params["app_name"] = spec.AppName
		params["script_or_input"] = spec.ScriptOrInput
		params["packager_path"] = spec.PackagerPath
		if spec.BundleFlags != nil {
			params["flags"] = spec.BundleFlags
		}
		if spec.BundleEnv != nil {
			params["environment"] = spec.BundleEnv
		}
		return NewBundle(params)
	default:
		return nil, newConfigError(spec.Name, "unknown node kind \""+spec.Kind+"\"")
	}
}

func addLibParams(params Params, spec ManifestNode) {
	if spec.LibName != "" {
		params["lib_name"] = spec.LibName
	}
	if spec.ExactLibName != "" {
		params["exact_lib_name"] = spec.ExactLibName
	}
}
