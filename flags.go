package noob

import (
	"strings"
)

// inheritsFlags reports whether a dependency of kind k exports its include
// directories to its dependents (spec.md §4.5: only library kinds do,
// WrapperLibrary included; cc_flags are inherited from StaticLibrary and
// DynamicLibrary only, see EffectiveCCFlags).
func inheritsFlags(k NodeKind) bool {
	return k == StaticLibrary || k == DynamicLibrary || k == WrapperLibrary
}

// isLinkInput reports whether a dependency of kind k contributes its
// target as a link input to dependents.
func isLinkInput(k NodeKind) bool {
	return k == StaticLibrary || k == DynamicLibrary
}

// EffectiveIncludes computes the deduplicated -I/-isystem argv for n,
// walking n's own Includes/SystemIncludes/ExternLibs and then, in
// dependency order, every library-kind dependency's same fields
// (grounded on original_source/cppnode.py's getAutomaticIncludes).
func EffectiveIncludes(t *Toolchain, n *Node, deps []*Node) []string {
	var out []string
	add := func(dirs []string, prefix string) {
		for _, d := range dirs {
			out = append(out, prefix+d)
		}
	}
	add(n.Includes, t.IncludesPrefix)
	add(n.SystemIncludes, t.SystemIncludesPrefix)
	for _, el := range n.ExternLibs {
		add(el.Includes, t.IncludesPrefix)
		add(el.SystemIncludes, t.SystemIncludesPrefix)
	}
	for _, d := range deps {
		if !inheritsFlags(d.Kind) {
			continue
		}
		add(d.Includes, t.IncludesPrefix)
		add(d.SystemIncludes, t.SystemIncludesPrefix)
		for _, el := range d.ExternLibs {
			add(el.Includes, t.IncludesPrefix)
			add(el.SystemIncludes, t.SystemIncludesPrefix)
		}
	}
	return dedupStrings(out)
}

// EffectiveCCFlags computes the deduplicated compiler flags for n,
// grounded on cppnode.py's getAutomaticCcFlags.
func EffectiveCCFlags(n *Node, deps []*Node) []string {
	var out []string
	out = append(out, n.CCFlags...)
	for _, el := range n.ExternLibs {
		out = append(out, el.CCFlags...)
	}
	for _, d := range deps {
		if d.Kind != StaticLibrary && d.Kind != DynamicLibrary {
			continue
		}
		out = append(out, d.CCFlags...)
		for _, el := range d.ExternLibs {
			out = append(out, el.CCFlags...)
		}
	}
	return dedupStrings(out)
}

// linkParticipates reports whether n.Kind ever needs ld_flags/link
// inputs at all (spec.md §4.5).
func linkParticipates(k NodeKind, windows bool) bool {
	switch k {
	case Executable, DynamicLibrary, WrapperLibrary:
		return true
	case StaticLibrary:
		return !windows
	}
	return false
}

// EffectiveLDFlagsAndInputs computes the deduplicated link-time flags and
// the ordered-then-deduplicated list of link inputs for n, grounded on
// cppnode.py's getAutomaticLdFlags/getAutomaticLibs, including the
// Windows DLL->import-library rewrite of spec.md §4.5.
func EffectiveLDFlagsAndInputs(t *Toolchain, n *Node, deps []*Node) (flags, inputs []string) {
	if !linkParticipates(n.Kind, t.IsMSVC()) {
		return nil, nil
	}
	flags = append(flags, n.LDFlags...)
	for _, el := range n.ExternLibs {
		flags = append(flags, el.LDFlags...)
		inputs = append(inputs, el.Libs...)
	}
	for _, d := range deps {
		if !isLinkInput(d.Kind) {
			continue
		}
		inputs = append(inputs, d.TargetsFor(t)...)
		if d.Kind == StaticLibrary || d.Kind == DynamicLibrary {
			flags = append(flags, d.LDFlags...)
		}
		for _, el := range d.ExternLibs {
			flags = append(flags, el.LDFlags...)
			inputs = append(inputs, el.Libs...)
		}
	}
	if t.IsMSVC() {
		for i, in := range inputs {
			if strings.HasSuffix(in, ".dll") {
				inputs[i] = strings.TrimSuffix(in, ".dll") + ".lib"
			}
		}
	}
	return dedupStrings(flags), dedupStrings(inputs)
}

// MaterializeCommand splits a toolchain template by shell tokenisation
// and substitutes $(IN)/$(OUT)/$(FLAGS), per spec.md §4.5's "Command
// materialisation". in may be a single path (object templates) or
// several (link templates, spliced in place).
func MaterializeCommand(template string, in []string, out string, flags []string) ([]string, error) {
	tokens, err := shellSplit(template)
	if err != nil {
		return nil, err
	}
	var argv []string
	for _, tok := range tokens {
		switch {
		case strings.Contains(tok, placeholderIn):
			if len(in) == 0 {
				continue
			}
			if tok == placeholderIn {
				argv = append(argv, in...)
			} else {
				for _, one := range in {
					argv = append(argv, strings.ReplaceAll(tok, placeholderIn, one))
				}
			}
		case strings.Contains(tok, placeholderOut):
			argv = append(argv, strings.ReplaceAll(tok, placeholderOut, out))
		case tok == placeholderFlags:
			argv = append(argv, flags...)
		default:
			argv = append(argv, tok)
		}
	}
	return argv, nil
}

// shellSplit tokenises a command template on whitespace, honouring
// single and double quotes the way a POSIX shell would, since toolchain
// templates (e.g. MSVC's `/D"_WIN32_WINNT=0x0601"`) may carry quoted
// tokens with embedded spaces.
func shellSplit(s string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	inTok := false
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				cur.WriteByte(c)
			}
		case c == '\'' || c == '"':
			quote = c
			inTok = true
		case c == ' ' || c == '\t' || c == '\n':
			if inTok {
				tokens = append(tokens, cur.String())
				cur.Reset()
				inTok = false
			}
		default:
			cur.WriteByte(c)
			inTok = true
		}
	}
	if inTok {
		tokens = append(tokens, cur.String())
	}
	return tokens, nil
}
