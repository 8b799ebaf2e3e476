// Spotify web player implementation of [Player] and [LyricsSource]
//
// Authenticates with the sp_dc browser session cookie, exchanged for a
// short-lived web player access token. Lyrics come from the web player's
// color-lyrics endpoint, the same API the desktop client uses.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"lyricflow/internal/models"
	"lyricflow/internal/shared"
)

const (
	spotifyTokenURL  = "https://open.spotify.com/get_access_token?reason=transport&productType=web_player"
	spotifyPlayerURL = "https://api.spotify.com/v1/me/player/currently-playing"
	spotifyLyricsURL = "https://spclient.wg.spotify.com/color-lyrics/v2/track"

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// cookieTokenSource exchanges the sp_dc cookie for a web player access
// token. Implements [oauth2.TokenSource]; wrapped in a ReuseTokenSource so
// the exchange only happens when the token expires.
type cookieTokenSource struct {
	cookie   string
	client   *http.Client
	tokenURL string
}

func (s *cookieTokenSource) Token() (*oauth2.Token, error) {
	req, err := http.NewRequest(http.MethodGet, s.tokenURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("App-Platform", "WebPlayer")
	req.AddCookie(&http.Cookie{Name: "sp_dc", Value: s.cookie})

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("%w: session cookie rejected (status %d)", shared.ErrAuthFailed, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: token endpoint status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	var payload struct {
		AccessToken  string `json:"accessToken"`
		ExpirationMS int64  `json:"accessTokenExpirationTimestampMs"`
		IsAnonymous  bool   `json:"isAnonymous"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	// An anonymous token means the cookie was ignored: lyrics and playback
	// endpoints will reject it, so fail the exchange up front.
	if payload.IsAnonymous || payload.AccessToken == "" {
		return nil, fmt.Errorf("%w: session cookie expired or invalid", shared.ErrAuthFailed)
	}

	return &oauth2.Token{
		AccessToken: payload.AccessToken,
		Expiry:      time.UnixMilli(payload.ExpirationMS),
	}, nil
}

// SpotifyClient implements [Player] and [LyricsSource] against the Spotify
// web player API.
type SpotifyClient struct {
	httpClient *http.Client
	playerURL  string
	lyricsURL  string
}

// NewSpotifyClient creates a client authenticated by the sp_dc session cookie.
func NewSpotifyClient(spDC string) (*SpotifyClient, error) {
	return newSpotifyClient(spDC, http.DefaultClient)
}

func newSpotifyClient(spDC string, base *http.Client) (*SpotifyClient, error) {
	if spDC == "" {
		return nil, fmt.Errorf("%w: sp_dc cookie not set", shared.ErrMissingCredentials)
	}

	src := &cookieTokenSource{cookie: spDC, client: base, tokenURL: spotifyTokenURL}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)

	return &SpotifyClient{
		httpClient: oauth2.NewClient(ctx, oauth2.ReuseTokenSource(nil, src)),
		playerURL:  spotifyPlayerURL,
		lyricsURL:  spotifyLyricsURL,
	}, nil
}

// currentlyPlayingResponse mirrors the /me/player/currently-playing payload.
type currentlyPlayingResponse struct {
	ProgressMS int  `json:"progress_ms"`
	IsPlaying  bool `json:"is_playing"`
	Item       *struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		DurationMS int    `json:"duration_ms"`
		Artists    []struct {
			Name string `json:"name"`
		} `json:"artists"`
		Album struct {
			Name string `json:"name"`
		} `json:"album"`
	} `json:"item"`
	CurrentlyPlayingType string `json:"currently_playing_type"`
}

// NowPlaying polls the web API for the current track and position.
func (s *SpotifyClient) NowPlaying(ctx context.Context) (*PlaybackState, error) {
	resp, err := s.doRequest(ctx, s.playerURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, shared.ErrNotPlaying
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var playing currentlyPlayingResponse
	if err := json.NewDecoder(resp.Body).Decode(&playing); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if playing.Item == nil || (playing.CurrentlyPlayingType != "" && playing.CurrentlyPlayingType != "track") {
		return nil, shared.ErrNotPlaying
	}

	track := models.Track{
		ID:         playing.Item.ID,
		Title:      playing.Item.Name,
		Album:      playing.Item.Album.Name,
		DurationMS: playing.Item.DurationMS,
	}
	if len(playing.Item.Artists) > 0 {
		track.Artist = playing.Item.Artists[0].Name
	}

	return &PlaybackState{
		Track:      track,
		PositionMS: playing.ProgressMS,
		Playing:    playing.IsPlaying,
	}, nil
}

// lyricsResponse mirrors the color-lyrics payload. Note startTimeMs is a
// string in the wire format.
type lyricsResponse struct {
	Lyrics struct {
		SyncType string `json:"syncType"`
		Language string `json:"language"`
		Lines    []struct {
			StartTimeMS string `json:"startTimeMs"`
			Words       string `json:"words"`
		} `json:"lines"`
	} `json:"lyrics"`
}

// Lyrics fetches the line-synced lyrics document for a track.
func (s *SpotifyClient) Lyrics(ctx context.Context, track models.Track) (*models.Document, error) {
	endpoint := fmt.Sprintf("%s/%s?format=json&vocalRemoval=false&market=from_token", s.lyricsURL, track.ID)

	resp, err := s.doRequest(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: track %s", shared.ErrNoLyrics, track.ID)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var payload lyricsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode lyrics response: %w", err)
	}

	// Unsynced lyrics carry no usable timestamps.
	if payload.Lyrics.SyncType != "LINE_SYNCED" {
		return nil, fmt.Errorf("%w: track %s has %s lyrics", shared.ErrNoLyrics, track.ID, payload.Lyrics.SyncType)
	}

	lines := make([]models.Line, 0, len(payload.Lyrics.Lines))
	lastStart := -1
	for _, l := range payload.Lyrics.Lines {
		start, err := strconv.Atoi(l.StartTimeMS)
		if err != nil {
			continue
		}
		// The API occasionally repeats a timestamp; keep the first
		// occurrence so the document's ordering invariant holds.
		if start <= lastStart {
			continue
		}
		lastStart = start
		lines = append(lines, models.Line{StartMS: start, Text: l.Words})
	}

	return models.NewDocument(track.ID, payload.Lyrics.Language, lines)
}

// doRequest performs an authenticated GET against the web player API.
func (s *SpotifyClient) doRequest(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("App-Platform", "WebPlayer")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", shared.ErrAuthFailed, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}
	return nil
}
