package noob

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DisplayMode controls how much detail the Display prints per command.
type DisplayMode string

const (
	DisplayNormal  DisplayMode = "normal"
	DisplayConcise DisplayMode = "concise"
)

// Display renders build progress the way its Mode asks for.
// It is deliberately dumb: it has no knowledge of the oracle or pipeline,
// only of what string to print for a given event.
type Display struct {
	Mode DisplayMode
	Out  io.Writer

	ok   func(a ...interface{}) string
	fail func(a ...interface{}) string
	dim  func(a ...interface{}) string
}

// NewDisplay builds a Display writing to w, colorizing only when w looks
// like a terminal (mirrors how a real build tool avoids escape codes once
// its output is redirected to a log file).
func NewDisplay(mode DisplayMode, w io.Writer) *Display {
	d := &Display{Mode: mode, Out: w}
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	c := color.New(color.FgGreen, color.Bold)
	e := color.New(color.FgRed, color.Bold)
	n := color.New(color.FgHiBlack)
	c.DisableColor()
	e.DisableColor()
	n.DisableColor()
	if useColor {
		c.EnableColor()
		e.EnableColor()
		n.EnableColor()
	}
	d.ok = c.SprintFunc()
	d.fail = e.SprintFunc()
	d.dim = n.SprintFunc()
	return d
}

// Compiling reports that a source is about to be compiled.
func (d *Display) Compiling(nodeName, source string, argv []string) {
	if d == nil {
		return
	}
	switch d.Mode {
	case DisplayConcise:
		fmt.Fprintf(d.Out, "%s %s\n", d.ok("CC"), source)
	default:
		fmt.Fprintf(d.Out, "%s [%s] %s\n", d.ok("CC"), nodeName, source)
		fmt.Fprintf(d.Out, "  %s\n", d.dim(joinArgv(argv)))
	}
}

// Linking reports that a node's final target is about to be linked.
func (d *Display) Linking(nodeName, target string, argv []string) {
	if d == nil {
		return
	}
	switch d.Mode {
	case DisplayConcise:
		fmt.Fprintf(d.Out, "%s %s\n", d.ok("LINK"), target)
	default:
		fmt.Fprintf(d.Out, "%s [%s] %s\n", d.ok("LINK"), nodeName, target)
		fmt.Fprintf(d.Out, "  %s\n", d.dim(joinArgv(argv)))
	}
}

// Packaging reports that a Bundle node's packager is about to run.
func (d *Display) Packaging(nodeName, target string, argv []string) {
	if d == nil {
		return
	}
	switch d.Mode {
	case DisplayConcise:
		fmt.Fprintf(d.Out, "%s %s\n", d.ok("PACKAGE"), target)
	default:
		fmt.Fprintf(d.Out, "%s [%s] %s\n", d.ok("PACKAGE"), nodeName, target)
		fmt.Fprintf(d.Out, "  %s\n", d.dim(joinArgv(argv)))
	}
}

// UpToDate reports that a node needed no work.
func (d *Display) UpToDate(nodeName string) {
	if d == nil {
		return
	}
	fmt.Fprintf(d.Out, "%s %s\n", d.dim("UP-TO-DATE"), nodeName)
}

// Failed reports a build error line, using the §7 aggregated format.
func (d *Display) Failed(err BuildError) {
	if d == nil {
		return
	}
	fmt.Fprintln(d.Out, d.fail(err.Error()))
}

// DiffCommandLine renders a human-readable diff between two materialized
// command lines, used to show glog.V(2) tracers *which* token of a
// command changed when the Staleness Oracle (C6) reports "command flags
// changed" rather than just that it did.
func DiffCommandLine(before, after []string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(strings.Join(before, " "), strings.Join(after, " "), false)
	return dmp.DiffPrettyText(diffs)
}

func joinArgv(argv []string) string {
	s := ""
	for i, a := range argv {
		if i > 0 {
			s += " "
		}
		s += a
	}
	return s
}
