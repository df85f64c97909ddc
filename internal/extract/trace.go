// Package extract implements the abstract-region detection and
// metadata-reconstruction engine: boundary detection, abstract
// normalization, title/author/year resolution, and record assembly.
package extract

import (
	"fmt"
	"io"
)

// Verbosity controls how much of the diagnostic trace is rendered.
type Verbosity int

const (
	// Quiet renders nothing.
	Quiet Verbosity = iota
	// Verbose renders the one-line-per-document author summary.
	Verbose
	// VeryVerbose additionally renders boundary and title decisions.
	VeryVerbose
)

// Event is one human-readable diagnostic line.
type Event struct {
	Level   Verbosity
	Kind    string // AUTHOR, ABSTRACT, TITLE
	Message string
}

// Trace 诊断侧信道：各组件把决策写进来，由调用方决定是否渲染
// A nil *Trace is valid and discards everything.
type Trace struct {
	events []Event
}

// NewTrace returns an empty trace.
func NewTrace() *Trace {
	return &Trace{}
}

// add records an event at the given minimum verbosity.
func (t *Trace) add(level Verbosity, kind, format string, args ...interface{}) {
	if t == nil {
		return
	}
	t.events = append(t.events, Event{
		Level:   level,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	})
}

// Verbosef records an event rendered at -v and above.
func (t *Trace) Verbosef(kind, format string, args ...interface{}) {
	t.add(Verbose, kind, format, args...)
}

// Debugf records an event rendered only at -vv.
func (t *Trace) Debugf(kind, format string, args ...interface{}) {
	t.add(VeryVerbose, kind, format, args...)
}

// Events returns the recorded events in order.
func (t *Trace) Events() []Event {
	if t == nil {
		return nil
	}
	return t.events
}

// Render writes every event at or below the given verbosity to w,
// one line per event, in recording order.
func (t *Trace) Render(w io.Writer, level Verbosity) {
	if t == nil {
		return
	}
	for _, ev := range t.events {
		if ev.Level > level {
			continue
		}
		fmt.Fprintf(w, "[%s] %s\n", ev.Kind, ev.Message)
	}
}
