// package services defines interfaces for the pipeline's external collaborators
//
// Spotify (playback + lyrics), translation providers
package services

import (
	"context"

	"lyricflow/internal/models"
)

// PlaybackState is the result of one playback poll.
type PlaybackState struct {
	Track      models.Track
	PositionMS int
	Playing    bool
}

// Player reports what is playing and where. Implementations are stateless
// accessors: no retry policy lives here.
type Player interface {
	// NowPlaying polls the current playback state.
	// Returns shared.ErrNotPlaying when no track is active and
	// shared.ErrAuthFailed when the session credential is rejected.
	NowPlaying(ctx context.Context) (*PlaybackState, error)
}

// LyricsSource fetches the time-aligned lyrics document for a track.
type LyricsSource interface {
	// Lyrics returns the synced document for a track, or
	// shared.ErrNoLyrics when the track has no line-synced lyrics.
	Lyrics(ctx context.Context, track models.Track) (*models.Document, error)
}

// Translator translates a piece of text into a target language.
// Throttling and retries are owned by the orchestrator, not implementations.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)

	// Name returns the provider name (e.g. "googletrans", "openai")
	Name() string
}
