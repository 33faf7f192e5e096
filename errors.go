package noob

import "fmt"

// ErrorKind classifies a build failure the way a caller needs to branch
// on it, rather than parsing the aggregated message.
type ErrorKind string

const (
	KindConfiguration ErrorKind = "Configuration"
	KindMissingFile   ErrorKind = "MissingFile"
	KindToolchainInit ErrorKind = "ToolchainInit"
	KindCompileFailed ErrorKind = "CompileFailure"
	KindLinkFailed    ErrorKind = "LinkFailure"
	KindFilesystem    ErrorKind = "FilesystemError"
)

// BuildError is satisfied by every error kind this package raises.
type BuildError interface {
	error
	Kind() ErrorKind
	Target() string
}

type buildError struct {
	kind   ErrorKind
	target string
	reason string
}

func (e *buildError) Error() string {
	return FormatAggregated(e.kind, e.target, e.reason)
}

func (e *buildError) Kind() ErrorKind   { return e.kind }
func (e *buildError) Target() string    { return e.target }
func (e *buildError) Reason() string    { return e.reason }

// FormatAggregated renders the single-line user-visible report mandated
// for every build failure.
func FormatAggregated(kind ErrorKind, target, reason string) string {
	return fmt.Sprintf("[ERROR] %s : %q build failed : %s", kind, target, reason)
}

func newConfigError(target, reason string) error {
	return &buildError{kind: KindConfiguration, target: target, reason: reason}
}

func newMissingFileError(target, reason string) error {
	return &buildError{kind: KindMissingFile, target: target, reason: reason}
}

func newToolchainInitError(target, reason string) error {
	return &buildError{kind: KindToolchainInit, target: target, reason: reason}
}

func newCompileFailure(target, reason string) error {
	return &buildError{kind: KindCompileFailed, target: target, reason: reason}
}

func newLinkFailure(target, reason string) error {
	return &buildError{kind: KindLinkFailed, target: target, reason: reason}
}

func newFilesystemError(target, reason string) error {
	return &buildError{kind: KindFilesystem, target: target, reason: reason}
}
