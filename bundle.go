package noob

import (
	"context"
	"path/filepath"
)

// evaluateBundle runs a Bundle node's external packager exactly once per
// invocation (§4.11, grounded on original_source/pyinstallernode.py's
// evaluate()): unlike every other node kind, a Bundle has no staleness
// check of its own, since a packager like PyInstaller already re-scans
// its whole input tree on each run. Every call wipes the previous
// output and tmp directory first so a killed run never leaves a
// half-packaged app behind.
func (s *Session) evaluateBundle(ctx context.Context, n *Node) error {
	if n.ScriptOrInput == "" {
		return newConfigError(n.Name(), "\"script_or_input\" is required")
	}
	if !exists(n.ScriptOrInput) {
		return newMissingFileError(n.Name(), "missing input: "+n.ScriptOrInput)
	}
	if n.PackagerPath == "" {
		return newConfigError(n.Name(), "\"packager_path\" is required")
	}

	if err := ensureDir(n.DestDir); err != nil {
		return newFilesystemError(n.Name(), err.Error())
	}

	target := filepath.Join(n.DestDir, n.AppName)
	if err := rmTree(target); err != nil {
		return newFilesystemError(n.Name(), err.Error())
	}
	tmpApp := filepath.Join(n.TmpDir, n.AppName)
	if err := rmTree(tmpApp); err != nil {
		return newFilesystemError(n.Name(), err.Error())
	}

	argv := bundleArgv(n)
	env := n.BundleEnv
	if env == nil {
		env = s.Env
	}

	if s.Display != nil {
		s.Display.Packaging(n.Name(), target, argv)
	}
	if err := runSubprocess(ctx, argv, env); err != nil {
		return newLinkFailure(n.Name(), err.Error())
	}

	n.Status = Built
	return nil
}

// bundleArgv builds the packager invocation, mirroring
// pyinstallernode.py's getPyinstallerCmd: the script/input path first,
// then name/distpath/workpath options, then the node's own flags.
func bundleArgv(n *Node) []string {
	argv := []string{
		n.PackagerPath,
		n.ScriptOrInput,
		"--name=" + n.AppName,
		"--distpath=" + n.DestDir,
		"--workpath=" + n.TmpDir,
	}
	return append(argv, n.BundleFlags...)
}
