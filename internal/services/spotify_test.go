package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"lyricflow/internal/models"
	"lyricflow/internal/shared"
	libtest "lyricflow/internal/testing"
)

const tokenBody = `{"accessToken":"test-token","accessTokenExpirationTimestampMs":95617584000000,"isAnonymous":false}`

func mockSpotifyClient(t *testing.T, routes map[string]*http.Response) *SpotifyClient {
	t.Helper()
	routes[spotifyTokenURL] = libtest.JSONResponse(http.StatusOK, tokenBody)
	base := &http.Client{Transport: &libtest.RouteRoundTripper{Routes: routes}}
	client, err := newSpotifyClient("test-cookie", base)
	if err != nil {
		t.Fatalf("newSpotifyClient failed: %v", err)
	}
	return client
}

func TestSpotifyClient_NowPlaying(t *testing.T) {
	t.Run("returns current track and position", func(t *testing.T) {
		body := `{
			"progress_ms": 12345,
			"is_playing": true,
			"currently_playing_type": "track",
			"item": {
				"id": "track1",
				"name": "Song Title",
				"duration_ms": 200000,
				"artists": [{"name": "Artist"}],
				"album": {"name": "Album"}
			}
		}`
		client := mockSpotifyClient(t, map[string]*http.Response{
			spotifyPlayerURL: libtest.JSONResponse(http.StatusOK, body),
		})

		state, err := client.NowPlaying(context.Background())
		if err != nil {
			t.Fatalf("NowPlaying failed: %v", err)
		}
		if state.Track.ID != "track1" || state.Track.Title != "Song Title" {
			t.Errorf("Unexpected track: %+v", state.Track)
		}
		if state.Track.Artist != "Artist" {
			t.Errorf("Expected artist 'Artist', got %q", state.Track.Artist)
		}
		if state.PositionMS != 12345 || !state.Playing {
			t.Errorf("Unexpected playback state: %+v", state)
		}
	})

	t.Run("maps 204 to not playing", func(t *testing.T) {
		client := mockSpotifyClient(t, map[string]*http.Response{
			spotifyPlayerURL: libtest.JSONResponse(http.StatusNoContent, ""),
		})

		_, err := client.NowPlaying(context.Background())
		if !errors.Is(err, shared.ErrNotPlaying) {
			t.Errorf("Expected ErrNotPlaying, got %v", err)
		}
	})

	t.Run("maps null item to not playing", func(t *testing.T) {
		client := mockSpotifyClient(t, map[string]*http.Response{
			spotifyPlayerURL: libtest.JSONResponse(http.StatusOK, `{"progress_ms":0,"is_playing":false,"item":null}`),
		})

		_, err := client.NowPlaying(context.Background())
		if !errors.Is(err, shared.ErrNotPlaying) {
			t.Errorf("Expected ErrNotPlaying, got %v", err)
		}
	})

	t.Run("maps podcast episodes to not playing", func(t *testing.T) {
		body := `{"progress_ms":0,"is_playing":true,"currently_playing_type":"episode","item":{"id":"ep1","name":"Episode"}}`
		client := mockSpotifyClient(t, map[string]*http.Response{
			spotifyPlayerURL: libtest.JSONResponse(http.StatusOK, body),
		})

		_, err := client.NowPlaying(context.Background())
		if !errors.Is(err, shared.ErrNotPlaying) {
			t.Errorf("Expected ErrNotPlaying, got %v", err)
		}
	})

	t.Run("maps 401 to auth failure", func(t *testing.T) {
		client := mockSpotifyClient(t, map[string]*http.Response{
			spotifyPlayerURL: libtest.JSONResponse(http.StatusUnauthorized, `{"error":{"status":401}}`),
		})

		_, err := client.NowPlaying(context.Background())
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("Expected ErrAuthFailed, got %v", err)
		}
	})
}

func TestSpotifyClient_Lyrics(t *testing.T) {
	track := models.Track{ID: "track1", Title: "Song"}

	t.Run("parses line synced lyrics", func(t *testing.T) {
		body := `{"lyrics":{"syncType":"LINE_SYNCED","language":"de","lines":[
			{"startTimeMs":"0","words":"Hallo"},
			{"startTimeMs":"5000","words":"Welt"}
		]}}`
		client := mockSpotifyClient(t, map[string]*http.Response{
			spotifyLyricsURL: libtest.JSONResponse(http.StatusOK, body),
		})

		doc, err := client.Lyrics(context.Background(), track)
		if err != nil {
			t.Fatalf("Lyrics failed: %v", err)
		}
		if len(doc.Lines) != 2 {
			t.Fatalf("Expected 2 lines, got %d", len(doc.Lines))
		}
		if doc.Lines[0].Text != "Hallo" || doc.Lines[0].StartMS != 0 {
			t.Errorf("Unexpected first line: %+v", doc.Lines[0])
		}
		if doc.Lines[1].StartMS != 5000 {
			t.Errorf("Expected start 5000, got %d", doc.Lines[1].StartMS)
		}
		if doc.Language != "de" {
			t.Errorf("Expected language de, got %s", doc.Language)
		}
	})

	t.Run("drops repeated timestamps", func(t *testing.T) {
		body := `{"lyrics":{"syncType":"LINE_SYNCED","language":"en","lines":[
			{"startTimeMs":"100","words":"one"},
			{"startTimeMs":"100","words":"dupe"},
			{"startTimeMs":"200","words":"two"}
		]}}`
		client := mockSpotifyClient(t, map[string]*http.Response{
			spotifyLyricsURL: libtest.JSONResponse(http.StatusOK, body),
		})

		doc, err := client.Lyrics(context.Background(), track)
		if err != nil {
			t.Fatalf("Lyrics failed: %v", err)
		}
		if len(doc.Lines) != 2 {
			t.Fatalf("Expected 2 lines after dedupe, got %d", len(doc.Lines))
		}
		if doc.Lines[0].Text != "one" || doc.Lines[1].Text != "two" {
			t.Errorf("Unexpected lines: %+v", doc.Lines)
		}
	})

	t.Run("maps 404 to no lyrics", func(t *testing.T) {
		client := mockSpotifyClient(t, map[string]*http.Response{
			spotifyLyricsURL: libtest.JSONResponse(http.StatusNotFound, ""),
		})

		_, err := client.Lyrics(context.Background(), track)
		if !errors.Is(err, shared.ErrNoLyrics) {
			t.Errorf("Expected ErrNoLyrics, got %v", err)
		}
	})

	t.Run("rejects unsynced lyrics", func(t *testing.T) {
		body := `{"lyrics":{"syncType":"UNSYNCED","language":"en","lines":[{"startTimeMs":"0","words":"text"}]}}`
		client := mockSpotifyClient(t, map[string]*http.Response{
			spotifyLyricsURL: libtest.JSONResponse(http.StatusOK, body),
		})

		_, err := client.Lyrics(context.Background(), track)
		if !errors.Is(err, shared.ErrNoLyrics) {
			t.Errorf("Expected ErrNoLyrics, got %v", err)
		}
	})
}

func TestCookieTokenSource(t *testing.T) {
	t.Run("rejects anonymous tokens", func(t *testing.T) {
		body := `{"accessToken":"anon","accessTokenExpirationTimestampMs":0,"isAnonymous":true}`
		src := &cookieTokenSource{
			cookie:   "expired-cookie",
			client:   &http.Client{Transport: libtest.NewMockRoundTripper(libtest.JSONResponse(http.StatusOK, body), nil)},
			tokenURL: spotifyTokenURL,
		}

		_, err := src.Token()
		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("Expected ErrAuthFailed, got %v", err)
		}
	})

	t.Run("requires a cookie", func(t *testing.T) {
		_, err := NewSpotifyClient("")
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("Expected ErrMissingCredentials, got %v", err)
		}
	})
}
