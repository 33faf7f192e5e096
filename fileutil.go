package noob

import (
	"os"
	"path/filepath"
)

func exists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}

// modTime returns the file's mtime, or the zero value if it is absent.
func modTime(filename string) (int64, bool) {
	st, err := os.Stat(filename)
	if err != nil {
		return 0, false
	}
	return st.ModTime().UnixNano(), true
}

// makeAbsolute mirrors original_source/filetools.py's makeAbsolutePath:
// paths already absolute are left untouched, everything else is resolved
// against callingPath.
func makeAbsolute(callingPath string, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if filepath.IsAbs(p) {
			out[i] = p
			continue
		}
		abs, err := filepath.Abs(filepath.Join(callingPath, p))
		if err != nil {
			abs = filepath.Join(callingPath, p)
		}
		out[i] = abs
	}
	return out
}

func ensureDir(dir string) error {
	if dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// rmFile removes a file if present; a missing file is not an error.
func rmFile(path string) error {
	if path == "" {
		return nil
	}
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// rmTree removes path and everything under it, mirroring
// original_source/pyinstallernode.py's clean(), which shutil.rmtree's a
// bundle's previous app directory and tmp workdir wholesale rather than
// requiring them to be empty first.
func rmTree(path string) error {
	if path == "" {
		return nil
	}
	return os.RemoveAll(path)
}

// rmEmptyDir removes dir only if it exists and is empty, mirroring
// original_source/filetools.py's rmDir (which refuses to touch a
// directory that still has other build output in it).
func rmEmptyDir(dir string) error {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if len(entries) != 0 {
		return nil
	}
	return os.Remove(dir)
}
