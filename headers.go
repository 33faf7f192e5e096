package noob

import (
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/golang/glog"
)

var includeRE = regexp.MustCompile(`^\s*#\s*include\s+"(.+)"`)

// HeaderAnalyzer finds the transitive set of locally-resolvable quoted
// includes reachable from a source file, memoizing across a whole build
// invocation the way original_source/cppnode.py's module-level
// mtimeCache/modifiedCache dictionaries do, but with real per-path locks
// instead of relying on the GIL.
type HeaderAnalyzer struct {
	diff DiffMethod

	fpMu    sync.Mutex
	fpLocks map[string]*sync.Mutex
	fp      map[string]headerFingerprint // header path -> fingerprint info

	closureMu    sync.Mutex
	closureLocks map[string]*sync.Mutex
	closure      map[string]bool // source path -> "changed?" (direct or transitive)
}

type headerFingerprint struct {
	value   string
	changed bool
}

// NewHeaderAnalyzer creates an analyzer for one build invocation. diff
// selects mtime or md5 fingerprinting, matching the owning node's
// DiffMethod (spec.md §4.3 ties the analyzer's fingerprinting to the same
// method the object oracle uses).
func NewHeaderAnalyzer(diff DiffMethod) *HeaderAnalyzer {
	return &HeaderAnalyzer{
		diff:         diff,
		fpLocks:      make(map[string]*sync.Mutex),
		fp:           make(map[string]headerFingerprint),
		closureLocks: make(map[string]*sync.Mutex),
		closure:      make(map[string]bool),
	}
}

func (a *HeaderAnalyzer) lockFor(mu *sync.Mutex, locks map[string]*sync.Mutex, key string) *sync.Mutex {
	mu.Lock()
	l, ok := locks[key]
	if !ok {
		l = &sync.Mutex{}
		locks[key] = l
	}
	mu.Unlock()
	return l
}

func fingerprintOf(diff DiffMethod, path string) (string, error) {
	if diff == DiffMD5 {
		return md5OfFile(path)
	}
	ns, ok := modTime(path)
	if !ok {
		return "", os.ErrNotExist
	}
	return itoa64(ns), nil
}

// Changed reports whether header's current fingerprint differs from the
// value cached at key in c, staging the new fingerprint into pending so
// the oracle can commit it later. Mirrors cppnode.py's hasChanged.
func (a *HeaderAnalyzer) Changed(c *Cache, header, cacheKey string, pending map[string]string) bool {
	lock := a.lockFor(&a.fpMu, a.fpLocks, header)
	lock.Lock()
	defer lock.Unlock()

	if fp, ok := a.fp[header]; ok {
		return fp.changed
	}

	value, err := fingerprintOf(a.diff, header)
	if err != nil {
		// Treat an unreadable header as changed: it either vanished
		// (forcing a rebuild that will surface a MissingFile error
		// for the source itself) or is about to appear.
		a.fp[header] = headerFingerprint{changed: true}
		return true
	}
	changed := c.Get(cacheKey) != value
	if changed {
		pending[cacheKey] = value
	}
	a.fp[header] = headerFingerprint{value: value, changed: changed}
	return changed
}

// Closure reports whether any header directly or transitively
// #include "..."-d from source has a changed fingerprint, resolving each
// include against the node's own Includes first and then, in dependency
// order, each ancestor's Includes (spec.md §4.3's resolution rule).
// Resolved headers are memoized so a header shared by many sources is
// only ever read and fingerprinted once per invocation.
func (a *HeaderAnalyzer) Closure(c *Cache, source string, searchDirs [][]string, pending map[string]string) bool {
	lock := a.lockFor(&a.closureMu, a.closureLocks, source)
	lock.Lock()
	defer lock.Unlock()

	if v, ok := a.closure[source]; ok {
		return v
	}
	// Mark in-progress to break cycles defensively (the spec does not
	// require cycle detection for headers, only for the node graph, but
	// a self-referential header must not infinite-loop the analyzer).
	a.closure[source] = false

	changed := false
	visited := map[string]bool{source: true}
	queue := []string{source}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		includes, err := parseQuotedIncludes(cur)
		if err != nil {
			continue
		}
		for _, inc := range includes {
			resolved, ok := resolveInclude(inc, searchDirs)
			if !ok {
				continue // external/untracked, silently ignored
			}
			if visited[resolved] {
				continue
			}
			visited[resolved] = true
			if a.Changed(c, resolved, resolved+"_hdr", pending) {
				changed = true
			}
			queue = append(queue, resolved)
		}
	}
	a.closure[source] = changed
	return changed
}

// resolveInclude implements spec.md §4.3's resolution rule: try the
// node's own include directories, then each ancestor's, in order;
// anything not found is external/untracked.
func resolveInclude(name string, searchDirs [][]string) (string, bool) {
	for _, dirs := range searchDirs {
		for _, dir := range dirs {
			candidate := filepath.Join(dir, name)
			if exists(candidate) {
				return candidate, true
			}
		}
	}
	return "", false
}

// parseQuotedIncludes reads a source (or header) file with a permissive
// single-byte encoding, tolerating non-UTF-8 bytes in legacy headers, and
// returns every #include "..." target on its own line.
func parseQuotedIncludes(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []string
	start := 0
	for i := 0; i <= len(data); i++ {
		if i == len(data) || data[i] == '\n' {
			line := latin1ToUTF8(data[start:i])
			if m := includeRE.FindStringSubmatch(line); m != nil {
				out = append(out, m[1])
			}
			start = i + 1
		}
	}
	if glog.V(3) {
		glog.Infof("headers: %s includes %v", path, out)
	}
	return out, nil
}

// latin1ToUTF8 reinterprets each input byte as a Latin-1 code point,
// which for the purposes of matching the ASCII-only include regex is
// equivalent to tolerating arbitrary non-UTF-8 bytes instead of failing
// to decode the line at all.
func latin1ToUTF8(b []byte) string {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}
