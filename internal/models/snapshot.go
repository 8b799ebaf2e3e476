package models

// Status describes the pipeline's connection state as seen by consumers.
type Status int

const (
	StatusIdle Status = iota
	StatusPolling
	StatusFetching
	StatusSynced
	StatusNoLyrics
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPolling:
		return "polling"
	case StatusFetching:
		return "fetching"
	case StatusSynced:
		return "synced"
	case StatusNoLyrics:
		return "no lyrics"
	case StatusError:
		return "error"
	default:
		return ""
	}
}

// Snapshot is the immutable pipeline state published to consumers.
//
// Every field is a copy taken at publication time: consumers may retain a
// snapshot indefinitely without observing later mutation. LineIndex is -1
// when no line is active for the current position.
type Snapshot struct {
	Track      *Track
	Lines      []Line
	LineIndex  int
	PositionMS int
	Playing    bool
	Language   string // target translation language
	Status     Status
	LastError  string
}

// CurrentLine returns the active line, if any.
func (s Snapshot) CurrentLine() (Line, bool) {
	if s.LineIndex < 0 || s.LineIndex >= len(s.Lines) {
		return Line{}, false
	}
	return s.Lines[s.LineIndex], true
}
