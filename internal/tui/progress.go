package tui

import (
	"fmt"
	"io"
	"time"
)

// ProgressDisplay prints one plain line per finished task. Used when the
// terminal is not interactive.
type ProgressDisplay struct {
	out io.Writer
}

func NewProgressDisplay(out io.Writer) *ProgressDisplay {
	return &ProgressDisplay{out: out}
}

func (p *ProgressDisplay) Start(name string) {
	fmt.Fprintf(p.out, "%s %s ...\n", SymbolBullet, name)
}

func (p *ProgressDisplay) Success(name, result string, elapsed time.Duration) {
	fmt.Fprintf(p.out, "%s %s %s (%s)\n", SymbolCheck, name, result, elapsed.Round(time.Millisecond))
}

func (p *ProgressDisplay) Error(name string, err error, elapsed time.Duration) {
	fmt.Fprintf(p.out, "%s %s %v (%s)\n", SymbolCross, name, err, elapsed.Round(time.Millisecond))
}
