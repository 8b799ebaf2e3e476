package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Session errors
	ErrAuthFailed = fmt.Errorf("authentication failed")
	ErrNotPlaying = fmt.Errorf("nothing is playing")

	// Lyrics availability
	ErrNoLyrics = fmt.Errorf("no synced lyrics available")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Cache errors
	ErrCacheCorrupt = fmt.Errorf("cache file corrupt")
)
