package noob

import (
	"bufio"
	"os"
	"strings"
	"sync"

	"github.com/golang/glog"
	"github.com/google/renameio"
)

// CacheFileName is the well-known fingerprint cache path, relative to the
// build root, mirroring original_source/filetools.py's ".noob_cache".
const CacheFileName = ".noob_cache"

// Cache is the persistent fingerprint store (C2): a flat key->value map
// serialised as "key:value\n" lines, loaded once per Session.Build and
// saved after each node's object batch and again after its link succeed.
// Corrupt lines are
// tolerated by treating the key as missing rather than failing the
// build, per spec.md §4.2.
type Cache struct {
	path string
	mu   sync.Mutex
	data map[string]string
}

// LoadCache loads the cache at path, returning an empty Cache if the file
// does not exist.
func LoadCache(path string) (*Cache, error) {
	c := &Cache{path: path, data: make(map[string]string)}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.IndexByte(line, ':')
		if idx < 0 {
			glog.Warningf("cache: ignoring malformed line %q in %s", line, path)
			continue
		}
		c.data[line[:idx]] = line[idx+1:]
	}
	if err := scanner.Err(); err != nil {
		// A corrupt cache must not crash the build: treat what we
		// managed to parse as the whole cache and move on.
		glog.Warningf("cache: truncated read of %s: %v", path, err)
	}
	return c, nil
}

// Get returns the cached value for key, or "" if absent.
func (c *Cache) Get(key string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key]
}

// Set stores value for key in memory; it is not visible on disk until
// Save is called.
func (c *Cache) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
}

// SetAll merges a batch of pending writes, used by the pipeline to commit
// everything an object/link step staged once the subprocess succeeds.
func (c *Cache) SetAll(pending map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range pending {
		c.data[k] = v
	}
}

// Save atomically overwrites the cache file on disk with the current
// in-memory contents (google/renameio gives us write-to-temp-then-rename
// without hand-rolling it, matching spec.md §4.2's "atomically overwrite
// the file").
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var buf strings.Builder
	for k, v := range c.data {
		buf.WriteString(k)
		buf.WriteByte(':')
		buf.WriteString(v)
		buf.WriteByte('\n')
	}
	return renameio.WriteFile(c.path, []byte(buf.String()), 0o644)
}

// SerializeTokens renders a token set in the cache's "[t1,t2,...]" form.
func SerializeTokens(tokens map[string]bool) string {
	var sb strings.Builder
	sb.WriteByte('[')
	first := true
	for _, t := range sortedKeys(tokens) {
		if !first {
			sb.WriteByte(',')
		}
		first = false
		sb.WriteString(t)
	}
	sb.WriteByte(']')
	return sb.String()
}

// ParseTokens parses a "[t1,t2,...]" cache value back into a set. An
// empty or malformed value yields an empty set rather than an error,
// which naturally forces a rebuild (spec.md §4.2's "missing key simply
// forces rebuild").
func ParseTokens(s string) map[string]bool {
	out := make(map[string]bool)
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return out
	}
	inner := s[1 : len(s)-1]
	if inner == "" {
		return out
	}
	for _, tok := range strings.Split(inner, ",") {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			out[tok] = true
		}
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	// Ordering within a serialised token set is not observable by any
	// staleness decision (comparisons are set equality, spec.md §4.5's
	// "ordering ... MUST NOT be relied upon"); sort only so cache files
	// diff cleanly between runs.
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}
