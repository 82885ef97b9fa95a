// Package observ measures how long the phases of a run take.
package observ

import (
	"fmt"
	"strings"
	"time"
)

// Phase is one measured step.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer records phases in the order they were started. It is not safe for
// concurrent use.
type Timer struct {
	now    func() time.Time
	phases []Phase
}

// NewTimer returns an empty Timer.
func NewTimer() *Timer {
	return &Timer{now: time.Now, phases: make([]Phase, 0, 4)}
}

// Begin starts a phase and returns the function that ends it. The note is
// attached to the phase when it ends.
func (t *Timer) Begin(name string) (end func(note string)) {
	t.phases = append(t.phases, Phase{Name: name, Start: t.now()})
	idx := len(t.phases) - 1
	return func(note string) {
		p := &t.phases[idx]
		p.Dur = t.now().Sub(p.Start)
		p.Note = note
	}
}

// PhaseReport is the serialisable form of a Phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report aggregates all phases.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

func (t *Timer) Report() Report {
	r := Report{Phases: make([]PhaseReport, 0, len(t.phases))}
	var total time.Duration
	for _, p := range t.phases {
		total += p.Dur
		r.Phases = append(r.Phases, PhaseReport{Name: p.Name, DurationMS: millis(p.Dur), Note: p.Note})
	}
	r.TotalMS = millis(total)
	return r
}

// Summary renders the report as an aligned text block.
func (t *Timer) Summary() string {
	r := t.Report()
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range r.Phases {
		fmt.Fprintf(&b, "  %-12s %8.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			b.WriteString("  (" + p.Note + ")")
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "  %-12s %8.2f ms\n", "total", r.TotalMS)
	return b.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
