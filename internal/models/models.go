// package models defines the data model for the lyrics translation pipeline
package models

import (
	"fmt"
	"sort"
)

// Track is an immutable description of a playing track. Identity is ID.
type Track struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album,omitempty"`
	DurationMS int    `json:"duration_ms"`
}

// TranslationStatus tracks the lifecycle of a single line's translation.
type TranslationStatus int

const (
	TranslationPending TranslationStatus = iota
	TranslationDone
	TranslationFailed
)

func (s TranslationStatus) String() string {
	switch s {
	case TranslationPending:
		return "pending"
	case TranslationDone:
		return "done"
	case TranslationFailed:
		return "failed"
	default:
		return ""
	}
}

// MarshalJSON renders the status as its string name.
func (s TranslationStatus) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", s.String())), nil
}

// Line is one time-aligned lyric line. Translated and Status are attached
// by the pipeline controller as translation results arrive.
type Line struct {
	StartMS    int               `json:"start_ms"`
	Text       string            `json:"text"`
	Translated string            `json:"translated,omitempty"`
	Status     TranslationStatus `json:"status"`
}

// Document holds the ordered lyric lines for one track.
//
// Lines are strictly increasing by StartMS (checked at construction). A
// document is owned by the pipeline controller for the lifetime of one
// track and replaced wholesale on track change; only Translated/Status are
// mutated in place.
type Document struct {
	TrackID  string
	Language string // source language as reported by the lyrics service
	Lines    []Line
}

// NewDocument builds a Document, validating the ordering invariant.
func NewDocument(trackID, language string, lines []Line) (*Document, error) {
	for i := 1; i < len(lines); i++ {
		if lines[i].StartMS <= lines[i-1].StartMS {
			return nil, fmt.Errorf("lyric lines out of order: line %d starts at %dms, line %d at %dms",
				i-1, lines[i-1].StartMS, i, lines[i].StartMS)
		}
	}
	return &Document{TrackID: trackID, Language: language, Lines: lines}, nil
}

// IndexAt resolves the active line for a playback position: the greatest
// index i with Lines[i].StartMS <= positionMS. A line stays active until
// the next line starts; the last line stays active to end of track.
// Returns false when positionMS is before the first line or the document
// is empty.
func (d *Document) IndexAt(positionMS int) (int, bool) {
	if len(d.Lines) == 0 {
		return 0, false
	}
	// First line starting after positionMS; the active line is the one before it.
	i := sort.Search(len(d.Lines), func(i int) bool {
		return d.Lines[i].StartMS > positionMS
	})
	if i == 0 {
		return 0, false
	}
	return i - 1, true
}
