package noob

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
	"strconv"
)

func md5OfFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func itoa64(v int64) string {
	return strconv.FormatInt(v, 10)
}

// tokenSet turns an ordered argv slice into a set for the Staleness
// Oracle's equality checks (spec.md §4.6 compares *sets* of tokens, not
// ordered sequences).
func tokenSet(tokens []string) map[string]bool {
	s := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		s[t] = true
	}
	return s
}

func setsEqual(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// dedupStrings returns items with duplicates removed, preserving first
// occurrence order (spec.md §4.5: "union, with deduplication"; ordering
// after dedup is unspecified, but a stable order makes command lines
// reproducible across runs, which matters for §8's cache round-trip
// property even though the spec does not require it of argv itself).
func dedupStrings(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if !seen[it] {
			seen[it] = true
			out = append(out, it)
		}
	}
	return out
}
