package noob

import "strings"

// ObjectDecision is the per-object staleness verdict (C6), grounded on
// original_source/cppnode.py's processObj: it stages every cache write
// the check would require into Pending, but never commits it — the
// pipeline only merges Pending into the real Cache after the compile
// subprocess has succeeded and the object file exists (spec.md §4.6's
// "Cache write ordering").
type ObjectDecision struct {
	Rebuild bool
	Reason  string
	Pending map[string]string

	// CommandDiff is set only when reason (3), "command flags changed",
	// fired: a rendered before/after diff of the non-include command
	// tokens, for glog.V(2) tracing (DiffCommandLine).
	CommandDiff string
}

// DecideObject implements spec.md §4.6's per-object rule: rebuild O if
// any of (1) O is missing, (2) the source fingerprint changed, (3) the
// non-include command tokens changed, (4) the include-directory tokens
// changed, or (5) any header in the closure changed.
func DecideObject(c *Cache, headers *HeaderAnalyzer, n *Node, source, objPath string, argv []string, searchDirs [][]string) ObjectDecision {
	pending := make(map[string]string)
	var reasons []string
	var cmdDiff string

	if !exists(objPath) {
		reasons = append(reasons, "object missing")
	}

	srcKey := source
	srcValue, err := fingerprintOf(n.DiffMethod, source)
	if err != nil {
		return ObjectDecision{Rebuild: true, Reason: "source unreadable: " + err.Error(), Pending: pending}
	}
	if c.Get(srcKey) != srcValue {
		pending[srcKey] = srcValue
		reasons = append(reasons, "source changed")
	}

	cmdTokens, incTokens := splitCommandTokens(argv)
	cmdKey := objPath + "_cmd"
	oldCmd := ParseTokens(c.Get(cmdKey))
	if !setsEqual(tokenSet(cmdTokens), oldCmd) {
		pending[cmdKey] = SerializeTokens(tokenSet(cmdTokens))
		reasons = append(reasons, "command flags changed")
		cmdDiff = DiffCommandLine(sortedKeys(oldCmd), cmdTokens)
	}

	incsKey := source + "_incs_paths"
	if !setsEqual(tokenSet(incTokens), ParseTokens(c.Get(incsKey))) {
		pending[incsKey] = SerializeTokens(tokenSet(incTokens))
		reasons = append(reasons, "include paths changed")
	}

	if headers.Closure(c, source, searchDirs, pending) {
		reasons = append(reasons, "header changed")
	}

	if len(reasons) == 0 {
		return ObjectDecision{Rebuild: false}
	}
	return ObjectDecision{Rebuild: true, Reason: strings.Join(reasons, "; "), Pending: pending, CommandDiff: cmdDiff}
}

// splitCommandTokens partitions argv into (non-include tokens, include
// tokens), per spec.md §4.6's "command tokens excluding include-directory
// tokens" vs. "the set of include-directory tokens".
func splitCommandTokens(argv []string) (cmd, incs []string) {
	for _, tok := range argv {
		if strings.HasPrefix(tok, "-I") || strings.HasPrefix(tok, "-iquote") || strings.HasPrefix(tok, "-isystem") {
			incs = append(incs, tok)
		} else {
			cmd = append(cmd, tok)
		}
	}
	return cmd, incs
}

// LinkDecision is the per-link staleness verdict.
type LinkDecision struct {
	Rebuild bool
	Reason  string
	Pending map[string]string
}

// DecideLink implements spec.md §4.6's per-link rule.
func DecideLink(c *Cache, n *Node, target string, anyObjectRebuilt bool, linkArgv []string, deps []*Node, toolchain *Toolchain) LinkDecision {
	pending := make(map[string]string)
	name := n.Name()

	if anyObjectRebuilt {
		pending[name+"_link_cmd"] = SerializeTokens(tokenSet(linkArgv))
		return LinkDecision{Rebuild: true, Reason: "an object was rebuilt", Pending: pending}
	}
	if !exists(target) {
		pending[name+"_link_cmd"] = SerializeTokens(tokenSet(linkArgv))
		return LinkDecision{Rebuild: true, Reason: "target missing", Pending: pending}
	}

	cmdKey := name + "_link_cmd"
	if !setsEqual(tokenSet(linkArgv), ParseTokens(c.Get(cmdKey))) {
		pending[cmdKey] = SerializeTokens(tokenSet(linkArgv))
		return LinkDecision{Rebuild: true, Reason: "link command changed", Pending: pending}
	}

	if n.Kind == Executable || n.Kind == DynamicLibrary {
		for _, d := range deps {
			if !isLinkInput(d.Kind) {
				continue
			}
			for _, depTarget := range d.TargetsFor(toolchain) {
				key := name + depTarget
				value, _ := fingerprintOf(DiffMtime, depTarget)
				if c.Get(key) != value {
					pending[key] = value
					return LinkDecision{Rebuild: true, Reason: "dependency library changed: " + depTarget, Pending: pending}
				}
			}
		}
	}

	return LinkDecision{Rebuild: false}
}
