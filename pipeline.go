package noob

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Session wires a Toolchain, Fingerprint Cache, Header Closure Analyzer
// and Display together for one build invocation. It is the Go analogue
// of original_source/cppnode.py's module-level mtimeCache/modifiedCache
// plus the ambient DETECTED_COMPILER/DETECTED_PLATFORM globals, except
// confined to a value that is threaded explicitly through the pipeline
// instead of living in package-level state (spec.md §9's design note).
type Session struct {
	Toolchain *Toolchain
	Cache     *Cache
	Headers   *HeaderAnalyzer
	Display   *Display

	// Env is the captured environment (KEY=VALUE pairs) forwarded to
	// every subprocess once CaptureEnv has run; nil means inherit the
	// process environment unchanged.
	Env []string

	cachePath string
}

// NewSession constructs a Session bound to one Toolchain and one cache
// file. The cache is not loaded until Build is first called, matching
// spec.md §4.7's "Load the Fingerprint Cache once" per node evaluation
// (here: once per invocation, shared by every node it evaluates, which
// is the natural generalisation when a single `build()` call walks a
// whole linearised dependency list rather than one isolated node).
func NewSession(t *Toolchain, cachePath string, display *Display) (*Session, error) {
	if t == nil {
		return nil, newConfigError("", "toolchain must not be nil")
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &Session{Toolchain: t, cachePath: cachePath, Display: display}, nil
}

// CaptureEnv runs the toolchain's InitScript, if any, via a shell chained
// with a platform environment-dump command, and records the resulting
// KEY=VALUE lines as s.Env.
func (s *Session) CaptureEnv() error {
	if len(s.Toolchain.InitScript) == 0 {
		return nil
	}
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		script := append([]string{"/c", "call"}, s.Toolchain.InitScript...)
		script = append(script, "&&", "set")
		cmd = exec.Command("cmd.exe", script...)
	} else {
		joined := strings.Join(quoteArgv(s.Toolchain.InitScript), " ")
		cmd = exec.Command("/bin/sh", "-c", ". "+joined+" && env")
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return newToolchainInitError("init_script", fmt.Sprintf("%v: %s", err, string(out)))
	}
	s.Env = parseEnvDump(string(out))
	return nil
}

func quoteArgv(argv []string) []string {
	out := make([]string, len(argv))
	for i, a := range argv {
		out[i] = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
	}
	return out
}

func parseEnvDump(out string) []string {
	var env []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.Contains(line, "=") {
			env = append(env, line)
		}
	}
	return env
}

// Build evaluates root and its full transitive dependency set in
// linearised order (spec.md §4.4), stopping at the first node failure.
func (s *Session) Build(ctx context.Context, root *Node) error {
	cache, err := LoadCache(s.cachePath)
	if err != nil {
		return newFilesystemError(s.cachePath, err.Error())
	}
	s.Cache = cache
	s.Headers = NewHeaderAnalyzer(root.DiffMethod)

	nodes := append(root.Linearise(), root)
	for _, n := range nodes {
		n.ResolveName(s.Toolchain)
	}
	for _, n := range nodes {
		if err := s.evaluate(ctx, n); err != nil {
			n.Status = Errored
			if s.Display != nil {
				if be, ok := err.(BuildError); ok {
					s.Display.Failed(be)
				}
			}
			return err
		}
	}
	return nil
}

// evaluate is the per-node entry point of the Build Pipeline (C7),
// implementing spec.md §4.7 steps 1-9.
func (s *Session) evaluate(ctx context.Context, n *Node) error {
	if n.Kind == BundleKind {
		return s.evaluateBundle(ctx, n)
	}

	if err := validateSources(n); err != nil {
		return err
	}
	if err := ensureDir(n.TmpDir); err != nil {
		return newFilesystemError(n.Name(), err.Error())
	}
	if err := ensureDir(n.DestDir); err != nil {
		return newFilesystemError(n.Name(), err.Error())
	}

	deps := n.Linearise()

	if n.Kind == WrapperLibrary {
		generated, err := s.runWrapgen(ctx, n)
		if err != nil {
			return err
		}
		n.Sources = append(n.Sources, generated...)
	}

	searchDirs := [][]string{n.Includes}
	for _, d := range deps {
		searchDirs = append(searchDirs, d.Includes)
	}

	includeFlags := EffectiveIncludes(s.Toolchain, n, deps)
	ccFlags := EffectiveCCFlags(n, deps)
	objFlags := append(append([]string{}, includeFlags...), ccFlags...)

	type objResult struct {
		source  string
		objPath string
		rebuilt bool
		pending map[string]string
		err     error
	}

	results := make([]objResult, len(n.Sources))
	sem := semaphore.NewWeighted(int64(maxInt(n.NumThread, 1)))
	var g errgroup.Group

	// cancelled is the shared flag of spec.md §5: set by the first failing
	// worker only when stop_on_error is true, polled by every worker before
	// it spawns a subprocess. It deliberately does NOT cancel a Context, so
	// an already-running compile is never killed — it runs to completion
	// and its result is simply discarded once collected below.
	var mu sync.Mutex
	cancelled := false
	shouldStop := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return cancelled
	}

	for i, source := range n.Sources {
		i, source := i, source
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return nil
			}
			defer sem.Release(1)

			if shouldStop() {
				return nil
			}

			objPath := ObjectPath(n, source, s.Toolchain)
			argv, err := MaterializeCommand(s.Toolchain.ObjTemplateFor(source), []string{source}, objPath, objFlags)
			if err != nil {
				results[i] = objResult{source: source, objPath: objPath, err: err}
				if n.StopOnError {
					mu.Lock()
					cancelled = true
					mu.Unlock()
				}
				return nil
			}

			decision := DecideObject(s.Cache, s.Headers, n, source, objPath, argv, searchDirs)
			if !decision.Rebuild {
				results[i] = objResult{source: source, objPath: objPath}
				return nil
			}
			glog.V(1).Infof("%s: rebuild: %s", source, decision.Reason)

			// Cancellation is polled again here, immediately before
			// committing to a subprocess.
			if shouldStop() {
				return nil
			}

			if err := rmFile(objPath); err != nil {
				e := newFilesystemError(n.Name(), err.Error())
				results[i] = objResult{source: source, objPath: objPath, err: e}
				return nil
			}
			if decision.CommandDiff != "" {
				glog.V(2).Infof("%s: command line changed:\n%s", source, decision.CommandDiff)
			}
			if s.Display != nil {
				s.Display.Compiling(n.Name(), source, argv)
			}
			if err := runSubprocess(ctx, argv, s.Env); err != nil {
				e := newCompileFailure(source, err.Error())
				results[i] = objResult{source: source, objPath: objPath, err: e}
				if n.StopOnError {
					mu.Lock()
					cancelled = true
					mu.Unlock()
				}
				return nil
			}
			if !exists(objPath) {
				e := newCompileFailure(source, "compiler reported success but output is missing")
				results[i] = objResult{source: source, objPath: objPath, err: e}
				return nil
			}
			results[i] = objResult{source: source, objPath: objPath, rebuilt: true, pending: decision.Pending}
			return nil
		})
	}

	g.Wait()

	var failures []string
	var objPaths []string
	anyRebuilt := false
	for _, r := range results {
		if r.err != nil {
			failures = append(failures, r.err.Error())
			continue
		}
		if r.objPath == "" {
			// a worker that never ran because cancellation was already set
			continue
		}
		objPaths = append(objPaths, r.objPath)
		if r.rebuilt {
			anyRebuilt = true
			s.Cache.SetAll(r.pending)
		}
	}
	if len(failures) > 0 {
		return newCompileFailure(n.Name(), strings.Join(failures, "; "))
	}

	if err := s.Cache.Save(); err != nil {
		return newFilesystemError(n.Name(), err.Error())
	}

	return s.link(ctx, n, deps, objPaths, anyRebuilt)
}

func (s *Session) link(ctx context.Context, n *Node, deps []*Node, objPaths []string, anyRebuilt bool) error {
	targets := n.TargetsFor(s.Toolchain)
	if len(targets) == 0 {
		n.Status = UpToDate
		return nil
	}
	target := targets[0]

	ldFlags, linkInputs := EffectiveLDFlagsAndInputs(s.Toolchain, n, deps)
	if !linkParticipates(n.Kind, s.Toolchain.IsMSVC()) {
		n.Status = UpToDate
		return nil
	}

	in := append(append([]string{}, objPaths...), linkInputs...)
	template := linkTemplateFor(n.Kind, s.Toolchain)
	argv, err := MaterializeCommand(template, in, target, ldFlags)
	if err != nil {
		return err
	}

	decision := DecideLink(s.Cache, n, target, anyRebuilt, argv, deps, s.Toolchain)
	if !decision.Rebuild {
		n.Status = UpToDate
		if s.Display != nil {
			s.Display.UpToDate(n.Name())
		}
		return nil
	}
	glog.V(1).Infof("%s: relink: %s", n.Name(), decision.Reason)

	if err := rmFile(target); err != nil {
		return newFilesystemError(n.Name(), err.Error())
	}
	if s.Display != nil {
		s.Display.Linking(n.Name(), target, argv)
	}
	if err := runSubprocess(ctx, argv, s.Env); err != nil {
		return newLinkFailure(n.Name(), err.Error())
	}
	if !exists(target) {
		return newLinkFailure(n.Name(), "linker reported success but target is missing")
	}

	s.Cache.SetAll(decision.Pending)
	if n.Kind == Executable || n.Kind == DynamicLibrary {
		for _, d := range deps {
			if !isLinkInput(d.Kind) {
				continue
			}
			for _, depTarget := range d.TargetsFor(s.Toolchain) {
				if v, err := fingerprintOf(DiffMtime, depTarget); err == nil {
					s.Cache.Set(n.Name()+depTarget, v)
				}
			}
		}
	}
	if err := s.Cache.Save(); err != nil {
		return newFilesystemError(n.Name(), err.Error())
	}

	n.Status = Built
	return nil
}

func linkTemplateFor(k NodeKind, t *Toolchain) string {
	switch k {
	case StaticLibrary:
		return t.StaticLinkCmd
	case DynamicLibrary, WrapperLibrary:
		return t.DynamicLinkCmd
	default:
		return t.ExeLinkCmd
	}
}

func validateSources(n *Node) error {
	for _, src := range n.Sources {
		if !exists(src) {
			return newMissingFileError(n.Name(), "source not found: "+src)
		}
	}
	for _, el := range n.ExternLibs {
		for _, p := range append(append(append([]string{}, el.Libs...), el.Includes...), el.SystemIncludes...) {
			if !exists(p) {
				return newMissingFileError(n.Name(), "external library path not found: "+p)
			}
		}
	}
	return nil
}

func runSubprocess(ctx context.Context, argv []string, env []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("empty command")
	}
	glog.V(1).Infof("exec: %v", argv)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if env != nil {
		cmd.Env = env
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	if err != nil {
		return fmt.Errorf("%v\n%s", err, out.String())
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
