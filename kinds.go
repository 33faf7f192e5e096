package noob

import (
	"path/filepath"
	"sort"
	"strings"
)

// Params is the named-parameter set used to construct a Node, mirroring
// original_source/cppnode.py's **params kwargs constructor style: any key
// not in the kind's allowed set is a configuration error that lists the
// allowed keys, rather than a silently-ignored typo.
type Params map[string]interface{}

var commonParams = []string{
	"sources", "includes", "system_includes", "cc_flags", "ld_flags",
	"dest_dir", "tmp_dir", "num_thread", "stop_on_error", "diff_method",
	"display_mode", "calling_path",
}

func allowedParams(extra ...string) map[string]bool {
	allowed := make(map[string]bool, len(commonParams)+len(extra))
	for _, k := range commonParams {
		allowed[k] = true
	}
	for _, k := range extra {
		allowed[k] = true
	}
	return allowed
}

func checkParams(kind NodeKind, params Params, allowed map[string]bool) error {
	for k := range params {
		if !allowed[k] {
			keys := make([]string, 0, len(allowed))
			for a := range allowed {
				keys = append(keys, a)
			}
			sort.Strings(keys)
			return newConfigError(string(kind), "unknown parameter \""+k+"\", allowed: ["+strings.Join(keys, ", ")+"]")
		}
	}
	return nil
}

func applyCommon(n *Node, params Params) {
	callingPath := stringParam(params, "calling_path", ".")
	n.Sources = makeAbsolute(callingPath, stringSliceParam(params, "sources"))
	n.Includes = makeAbsolute(callingPath, stringSliceParam(params, "includes"))
	n.SystemIncludes = makeAbsolute(callingPath, stringSliceParam(params, "system_includes"))
	n.CCFlags = stringSliceParam(params, "cc_flags")
	n.LDFlags = stringSliceParam(params, "ld_flags")
	if v, ok := params["dest_dir"]; ok {
		n.DestDir = makeAbsolute(callingPath, []string{v.(string)})[0]
	} else {
		n.DestDir = callingPath
	}
	if v, ok := params["tmp_dir"]; ok {
		n.TmpDir = makeAbsolute(callingPath, []string{v.(string)})[0]
	} else {
		n.TmpDir = callingPath
	}
	n.NumThread = intParam(params, "num_thread", 8)
	n.StopOnError = boolParam(params, "stop_on_error", true)
	n.DiffMethod = DiffMethod(stringParam(params, "diff_method", string(DiffMtime)))
	n.DisplayMode = DisplayMode(stringParam(params, "display_mode", string(DisplayNormal)))
	n.Status = NotProcessed
}

func stringParam(params Params, key, def string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

func intParam(params Params, key string, def int) int {
	if v, ok := params[key]; ok {
		if i, ok := v.(int); ok {
			return i
		}
	}
	return def
}

func boolParam(params Params, key string, def bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

func stringSliceParam(params Params, key string) []string {
	v, ok := params[key]
	if !ok {
		return nil
	}
	switch s := v.(type) {
	case []string:
		return append([]string(nil), s...)
	}
	return nil
}

// NewExecutable constructs an Executable node. Allowed params: the
// common set plus "exe_name" (mandatory).
func NewExecutable(params Params) (*Node, error) {
	allowed := allowedParams("exe_name")
	if err := checkParams(Executable, params, allowed); err != nil {
		return nil, err
	}
	n := &Node{Kind: Executable}
	applyCommon(n, params)
	n.ExeName = stringParam(params, "exe_name", "")
	if n.ExeName == "" {
		return nil, newConfigError(string(Executable), "\"exe_name\" is required")
	}
	return n, nil
}

// NewStaticLibrary constructs a StaticLibrary node. Allowed params: the
// common set plus "lib_name" (mandatory) and "exact_lib_name".
func NewStaticLibrary(params Params) (*Node, error) {
	return newLibrary(StaticLibrary, params)
}

// NewDynamicLibrary constructs a DynamicLibrary node.
func NewDynamicLibrary(params Params) (*Node, error) {
	return newLibrary(DynamicLibrary, params)
}

func newLibrary(kind NodeKind, params Params) (*Node, error) {
	allowed := allowedParams("lib_name", "exact_lib_name")
	if err := checkParams(kind, params, allowed); err != nil {
		return nil, err
	}
	n := &Node{Kind: kind}
	applyCommon(n, params)
	n.LibName = stringParam(params, "lib_name", "")
	n.ExactLibName = stringParam(params, "exact_lib_name", "")
	if n.LibName == "" && n.ExactLibName == "" {
		return nil, newConfigError(string(kind), "\"lib_name\" is required")
	}
	return n, nil
}

// NewWrapperLibrary constructs a WrapperLibrary node (§4.10): a
// library whose sources are produced by running GeneratorCmd over
// IDLSources before ordinary compilation.
func NewWrapperLibrary(params Params) (*Node, error) {
	allowed := allowedParams("lib_name", "exact_lib_name", "idl_sources", "generator_cmd", "generator_flags")
	if err := checkParams(WrapperLibrary, params, allowed); err != nil {
		return nil, err
	}
	n := &Node{Kind: WrapperLibrary}
	applyCommon(n, params)
	n.LibName = stringParam(params, "lib_name", "")
	n.ExactLibName = stringParam(params, "exact_lib_name", "")
	callingPath := stringParam(params, "calling_path", ".")
	n.IDLSources = makeAbsolute(callingPath, stringSliceParam(params, "idl_sources"))
	n.GeneratorCmd = stringParam(params, "generator_cmd", "")
	n.GeneratorFlags = stringSliceParam(params, "generator_flags")
	if n.LibName == "" && n.ExactLibName == "" {
		return nil, newConfigError(string(WrapperLibrary), "\"lib_name\" is required")
	}
	return n, nil
}

// NewBundle constructs a Bundle node (§4.11): a one-shot leaf that shells
// out to an external packager exactly once.
func NewBundle(params Params) (*Node, error) {
	allowed := map[string]bool{
		"app_name": true, "script_or_input": true, "packager_path": true,
		"flags": true, "dest_dir": true, "tmp_dir": true, "environment": true,
		"calling_path": true,
	}
	if err := checkParams(BundleKind, params, allowed); err != nil {
		return nil, err
	}
	callingPath := stringParam(params, "calling_path", ".")
	n := &Node{Kind: BundleKind, Status: NotProcessed}
	n.AppName = stringParam(params, "app_name", "")
	n.ScriptOrInput = stringParam(params, "script_or_input", "")
	if n.ScriptOrInput != "" {
		n.ScriptOrInput = makeAbsolute(callingPath, []string{n.ScriptOrInput})[0]
	}
	n.PackagerPath = stringParam(params, "packager_path", "")
	n.BundleFlags = stringSliceParam(params, "flags")
	n.BundleEnv = stringSliceParam(params, "environment")
	if v, ok := params["dest_dir"]; ok {
		n.DestDir = makeAbsolute(callingPath, []string{v.(string)})[0]
	} else {
		n.DestDir = callingPath
	}
	if v, ok := params["tmp_dir"]; ok {
		n.TmpDir = makeAbsolute(callingPath, []string{v.(string)})[0]
	} else {
		n.TmpDir = callingPath
	}
	if n.AppName == "" {
		return nil, newConfigError(string(BundleKind), "\"app_name\" is required")
	}
	return n, nil
}

// AddExternLib appends an external-library dependency to n, folding its
// Sources into n.Sources directly (original_source/cppnode.py's
// addExternLib does the same so a dependency's extra sources are
// compiled by the host node's own object sweep).
func (n *Node) AddExternLib(lib ExternLib) {
	n.ExternLibs = append(n.ExternLibs, lib)
	n.Sources = append(n.Sources, lib.Sources...)
}

// TargetsFor resolves n's output path(s) against a concrete Toolchain,
// implementing spec.md §4.8's naming rules (the Unix/Windows
// lib-prefixing difference for StaticLibrary, ExactLibName override).
func (n *Node) TargetsFor(t *Toolchain) []string {
	switch n.Kind {
	case Executable:
		return []string{filepath.Join(n.DestDir, n.ExeName+t.ExeSuffix)}
	case StaticLibrary:
		return []string{filepath.Join(n.DestDir, libFileName(n, t.StaticSuffix, t.IsMSVC()))}
	case DynamicLibrary, WrapperLibrary:
		return []string{filepath.Join(n.DestDir, libFileName(n, t.DynamicSuffix, t.IsMSVC()))}
	case BundleKind:
		return []string{filepath.Join(n.DestDir, n.AppName)}
	}
	return nil
}

func libFileName(n *Node, suffix string, windows bool) string {
	if n.ExactLibName != "" {
		return n.ExactLibName
	}
	if windows {
		return n.LibName + suffix
	}
	return "lib" + n.LibName + suffix
}

// ObjectPath returns the object file path for source under n, a pure
// function of basename(source), n.TmpDir, and the toolchain's ObjSuffix
// (spec.md §3's invariant, §8's testable property).
func ObjectPath(n *Node, source string, t *Toolchain) string {
	base := filepath.Base(source)
	if idx := strings.IndexByte(base, '.'); idx >= 0 {
		base = base[:idx]
	}
	return filepath.Join(n.TmpDir, base+t.ObjSuffix)
}
