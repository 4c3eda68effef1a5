package desim

import (
	"fmt"
	"io"
)

// ProgressReporter is the external collaborator the Simulator drives at
// well-defined points: once before the loop starts, once per dispatched
// batch, and once when the loop terminates. The core never does more than
// call these three methods.
type ProgressReporter interface {
	Start(maxTime float64)
	Update(time float64)
	End()
}

// noopProgress implements ProgressReporter with no side effects; used when
// Config.Progress is false.
type noopProgress struct{}

func (noopProgress) Start(float64) {}
func (noopProgress) Update(float64) {}
func (noopProgress) End()           {}

// terminalProgress is a minimal textual progress reporter written directly
// to an io.Writer (typically os.Stderr). No progress-bar library appears in
// the retrieved example pack's dependency set (see DESIGN.md), so this is a
// direct, dependency-free implementation rather than an adopted one.
type terminalProgress struct {
	out     io.Writer
	maxTime float64
}

func newTerminalProgress(out io.Writer) *terminalProgress {
	return &terminalProgress{out: out}
}

func (p *terminalProgress) Start(maxTime float64) {
	p.maxTime = maxTime
	fmt.Fprintf(p.out, "simulating to %.3f\n", maxTime)
}

func (p *terminalProgress) Update(time float64) {
	pct := 100.0
	if p.maxTime > 0 {
		pct = 100.0 * time / p.maxTime
	}
	fmt.Fprintf(p.out, "\r%6.2f%% (t=%.3f)", pct, time)
}

func (p *terminalProgress) End() {
	fmt.Fprintf(p.out, "\ndone\n")
}
