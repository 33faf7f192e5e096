package noob

import "path/filepath"

// CleanNode removes n's temporary build products (objects, and for a
// WrapperLibrary its generated wrapper sources) and, if it ends up
// empty, n.TmpDir itself — the programmatic API's clean() (§6),
// grounded on original_source/swignode.py's clean().
func CleanNode(n *Node, t *Toolchain) error {
	if n.Kind == BundleKind {
		return cleanBundleTemp(n)
	}
	for _, src := range n.Sources {
		if err := rmFile(ObjectPath(n, src, t)); err != nil {
			return newFilesystemError(n.Name(), err.Error())
		}
	}
	for _, idl := range n.IDLSources {
		wrapPath := wrapperOutputPath(n, idl)
		if err := rmFile(wrapPath); err != nil {
			return newFilesystemError(n.Name(), err.Error())
		}
		if err := rmFile(ObjectPath(n, wrapPath, t)); err != nil {
			return newFilesystemError(n.Name(), err.Error())
		}
	}
	if err := rmEmptyDir(n.TmpDir); err != nil {
		return newFilesystemError(n.Name(), err.Error())
	}
	return nil
}

// CleanAllNode removes n's temporary products and built target(s), and
// does the same for every transitive dependency — the programmatic
// API's cleanAll() (§6), grounded on swignode.py's realclean(), which
// recurses over the whole dependency closure rather than just the node
// it was called on.
func CleanAllNode(n *Node, t *Toolchain) error {
	for _, d := range append(n.Linearise(), n) {
		if err := CleanNode(d, t); err != nil {
			return err
		}
		if err := removeTargets(d, t); err != nil {
			return err
		}
	}
	return nil
}

func removeTargets(n *Node, t *Toolchain) error {
	if n.Kind == BundleKind {
		return cleanBundleTarget(n)
	}
	for _, target := range n.TargetsFor(t) {
		if err := rmFile(target); err != nil {
			return newFilesystemError(n.Name(), err.Error())
		}
	}
	if n.Kind == DynamicLibrary && t.IsMSVC() {
		base := n.TargetsFor(t)[0]
		rmFile(trimSuffix(base, t.DynamicSuffix) + ".lib")
		rmFile(trimSuffix(base, t.DynamicSuffix) + ".exp")
	}
	return rmEmptyDir(n.DestDir)
}

func cleanBundleTemp(n *Node) error {
	return rmTree(filepath.Join(n.TmpDir, n.AppName))
}

func cleanBundleTarget(n *Node) error {
	return rmTree(filepath.Join(n.DestDir, n.AppName))
}

func trimSuffix(s, suffix string) string {
	if len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix {
		return s[:len(s)-len(suffix)]
	}
	return s
}
