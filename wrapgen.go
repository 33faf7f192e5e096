package noob

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// wrapperHashIncludeRE and wrapperPercentIncludeRE match an interface
// file's #include "..." and %include directives respectively, grounded
// on original_source/swignode.py's _analyseSwigFile: #include targets
// are always followed, while %include targets ending in ".i" are
// skipped (those are the generator's own standard library files, not
// project headers worth fingerprinting).
var (
	wrapperHashIncludeRE    = regexp.MustCompile(`^\s*#\s*include\s+"(.+)"`)
	wrapperPercentIncludeRE = regexp.MustCompile(`^\s*%include\s+"?([^"\s]+)"?`)
)

// runWrapgen regenerates the wrapper source for every IDLSource of a
// WrapperLibrary node whose interface file, transitively-included
// headers, or generator command have changed since the last run, and
// returns the generated sources to compile alongside n.Sources
// (§4.10, grounded on swignode.py's evaluate()).
func (s *Session) runWrapgen(ctx context.Context, n *Node) ([]string, error) {
	var generated []string
	deps := n.Linearise()

	generatorCmd := n.GeneratorCmd
	if generatorCmd == "" && s.Toolchain != nil {
		generatorCmd = s.Toolchain.GeneratorCmd
	}

	for _, idl := range n.IDLSources {
		if !exists(idl) {
			return nil, newMissingFileError(n.Name(), "missing interface file "+idl)
		}

		wrapPath := wrapperOutputPath(n, idl)
		argv, err := MaterializeCommand(generatorCmd, []string{idl}, wrapPath, wrapperFlags(s.Toolchain, n, deps))
		if err != nil {
			return nil, newConfigError(n.Name(), err.Error())
		}

		fp, err := wrapgenFingerprint(n, idl, argv, deps)
		if err != nil {
			return nil, newMissingFileError(n.Name(), err.Error())
		}
		cacheKey := wrapPath + n.Name() + "_wrap"

		stale := s.Cache.Get(cacheKey) != fp || !exists(wrapPath)
		if stale {
			if s.Display != nil {
				s.Display.Compiling(n.Name(), idl, argv)
			}
			if err := runSubprocess(ctx, argv, s.Env); err != nil {
				rmFile(wrapPath)
				return nil, newCompileFailure(idl, err.Error())
			}
			if !exists(wrapPath) {
				return nil, newCompileFailure(idl, "generator reported success but "+wrapPath+" is missing")
			}
			s.Cache.Set(cacheKey, fp)
		}

		generated = append(generated, wrapPath)
	}

	return generated, nil
}

func wrapperOutputPath(n *Node, idl string) string {
	base := filepath.Base(idl)
	if idx := strings.IndexByte(base, '.'); idx >= 0 {
		base = base[:idx]
	}
	return filepath.Join(n.TmpDir, base+"_wrap.cpp")
}

func wrapperFlags(t *Toolchain, n *Node, deps []*Node) []string {
	flags := append([]string{}, n.GeneratorFlags...)
	flags = append(flags, EffectiveIncludes(t, n, deps)...)
	return dedupStrings(flags)
}

// wrapgenFingerprint hashes the interface file's own bytes, the
// materialised generator command, and the bytes of every header it
// directly or indirectly #includes/%includes, mirroring swignode.py's
// getIncMD5 recursive interface-file walk. searchDirs checks n's own
// Includes before any dependency's, matching searchInclude()'s order.
func wrapgenFingerprint(n *Node, idl string, argv []string, deps []*Node) (string, error) {
	h := md5.New()
	raw, err := os.ReadFile(idl)
	if err != nil {
		return "", err
	}
	h.Write([]byte(latin1ToUTF8(raw)))
	h.Write([]byte(strings.Join(argv, " ")))

	searchDirs := [][]string{n.Includes}
	for _, d := range deps {
		searchDirs = append(searchDirs, d.Includes)
	}
	visited := map[string]bool{}
	var walk func(path string)
	walk = func(path string) {
		if visited[path] {
			return
		}
		visited[path] = true
		names, err := parseQuotedWrapperIncludes(path)
		if err != nil {
			return
		}
		for _, name := range names {
			resolved, ok := resolveInclude(name, searchDirs)
			if !ok {
				continue
			}
			if b, err := os.ReadFile(resolved); err == nil {
				h.Write([]byte(latin1ToUTF8(b)))
			}
			walk(resolved)
		}
	}
	walk(idl)

	return hex.EncodeToString(h.Sum(nil)), nil
}

func parseQuotedWrapperIncludes(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, line := range strings.Split(latin1ToUTF8(raw), "\n") {
		if m := wrapperHashIncludeRE.FindStringSubmatch(line); m != nil {
			names = append(names, m[1])
			continue
		}
		if m := wrapperPercentIncludeRE.FindStringSubmatch(line); m != nil {
			name := strings.Trim(m[1], `"`)
			if !strings.HasSuffix(name, ".i") {
				names = append(names, name)
			}
		}
	}
	return names, nil
}
