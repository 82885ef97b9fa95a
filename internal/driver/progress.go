package driver

import "time"

// Stage identifies a step of file resolution.
type Stage uint8

const (
	StageLoad Stage = iota
	StageResolve
)

func (s Stage) String() string {
	switch s {
	case StageLoad:
		return "loading"
	case StageResolve:
		return "resolving"
	}
	return ""
}

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the file is being processed.
	StatusWorking Status = "working"
	// StatusDone indicates the file resolved without errors.
	StatusDone Status = "done"
	// StatusError indicates the file failed to load or has error diagnostics.
	StatusError Status = "error"
)

// Event reports progress for a file (or for the whole run when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Cached  bool
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Events for one file arrive in
// order; events for different files may interleave.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(ev Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- ev
}

func emit(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}
