// Package noob is an incremental, parallel build engine for native C and
// C++ projects: a DAG of build nodes (executables, static/dynamic
// libraries, wrapper libraries) whose translation units and final links
// are only rebuilt when their sources, transitively-included headers,
// flags, include directories, or dependency outputs have changed.
package noob

import "fmt"

// NodeKind is the kind of output a Node produces.
type NodeKind string

const (
	Executable     NodeKind = "Executable"
	StaticLibrary  NodeKind = "StaticLibrary"
	DynamicLibrary NodeKind = "DynamicLibrary"
	WrapperLibrary NodeKind = "WrapperLibrary"
	BundleKind     NodeKind = "Bundle"
)

// Status is the last known build status of a Node.
type Status string

const (
	NotProcessed Status = "NotProcessed"
	Built        Status = "Built"
	UpToDate     Status = "UpToDate"
	Errored      Status = "Error"
)

// DiffMethod selects how a Node decides a file has changed.
type DiffMethod string

const (
	DiffMtime DiffMethod = "mtime"
	DiffMD5   DiffMethod = "md5"
)

// ExternLib is a dependency described by raw paths and flags rather than
// another Node (original_source/cppnode.py's addExternLib).
type ExternLib struct {
	LibName        string
	Includes       []string
	SystemIncludes []string
	CCFlags        []string
	LDFlags        []string
	Sources        []string
	Libs           []string
}

// Node is a build node: an executable, a static or dynamic library, or a
// wrapper library. All kinds share this single struct (mirroring
// original_source/cppnode.py's _CppNode base class, which every concrete
// node subclasses without adding storage of its own beyond name/kind)
// because the Flag Composer and Staleness Oracle need uniform access to
// every field regardless of kind; only naming, the link command, and
// cleanup dispatch on Kind (§4.8).
type Node struct {
	Kind NodeKind

	Sources        []string
	Includes       []string
	SystemIncludes []string
	CCFlags        []string
	LDFlags        []string
	DestDir        string
	TmpDir         string
	ExternLibs     []ExternLib

	Parents  []*Node
	Children []*Node

	Status Status

	// Kind-specific naming.
	ExeName      string
	LibName      string
	ExactLibName string

	// WrapperLibrary-specific.
	IDLSources     []string
	GeneratorCmd   string
	GeneratorFlags []string

	// Bundle-specific.
	AppName       string
	ScriptOrInput string
	PackagerPath  string
	BundleFlags   []string
	BundleEnv     []string

	NumThread   int
	StopOnError bool
	DiffMethod  DiffMethod
	DisplayMode DisplayMode

	// name is the resolved name() used for display and cache keying; it
	// is empty until ResolveName sets it from a concrete Toolchain.
	name string
}

// Name returns the node's display name (mirrors cppnode.py's name(),
// which returns str(self.targets()[0])). Until ResolveName has been
// called with a concrete Toolchain, it falls back to the node's
// configured exe/lib name so error messages before a build starts still
// read sensibly.
func (n *Node) Name() string {
	if n.name != "" {
		return n.name
	}
	if n.ExeName != "" {
		return n.ExeName
	}
	if n.ExactLibName != "" {
		return n.ExactLibName
	}
	if n.LibName != "" {
		return n.LibName
	}
	if n.AppName != "" {
		return n.AppName
	}
	return fmt.Sprintf("<%s>", n.Kind)
}

// ResolveName fixes n's display name from its first target under t,
// matching original_source/cppnode.py's name().
func (n *Node) ResolveName(t *Toolchain) {
	targets := n.TargetsFor(t)
	if len(targets) > 0 {
		n.name = targets[0]
	}
}
