package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"lyricflow/internal/services"
	"lyricflow/internal/shared"
)

// AuthLogin extracts the sp_dc cookie from the provided input, verifies it
// against the playback endpoint, and stores it in the config file.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if cmd.Bool("open") {
		if err := shared.OpenLoginPage(); err != nil {
			r.logger.Warnf("failed to open browser: %v", err)
		}
		r.writePlain("Log in at %s, then copy the sp_dc cookie from your browser's developer tools.\n", shared.LoginURL)
	}

	cookie, err := r.cookieInput(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("verifying session cookie")
	client, err := services.NewSpotifyClient(cookie)
	if err != nil {
		return err
	}

	// Nothing playing still proves the cookie works.
	if _, err := client.NowPlaying(ctx); err != nil && !errors.Is(err, shared.ErrNotPlaying) {
		return fmt.Errorf("cookie verification failed: %w", err)
	}

	config := r.config
	if loaded, err := shared.LoadConfig(configPath); err == nil {
		config = loaded
	}
	config.Credentials.Spotify.Cookie = cookie

	if err := shared.WriteConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	r.config = config
	r.player = client
	r.lyrics = client
	r.logger.Infof("session saved to %v", configPath)

	return r.writePlain("✓ Authentication successful\n")
}

// cookieInput resolves and extracts the cookie from its source: flag, file,
// or stdin prompt.
func (r *Runner) cookieInput(cmd *cli.Command) (string, error) {
	if input := cmd.String("cookie"); input != "" {
		return shared.ExtractCookie(input)
	}
	if path := cmd.String("from-file"); path != "" {
		return shared.ExtractCookieFile(path)
	}

	r.writePlain("Paste the sp_dc cookie (value, header, or curl command): ")
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !scanner.Scan() {
		return "", fmt.Errorf("%w: no cookie provided", shared.ErrMissingCredentials)
	}
	return shared.ExtractCookie(scanner.Text())
}

// AuthStatus checks whether the stored session cookie still works.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.requirePlayer(); err != nil {
		return err
	}

	state, err := r.player.NowPlaying(ctx)
	switch {
	case err == nil:
		r.writePlain("✓ Session valid\n")
		return r.writePlain("Now playing: %s — %s\n", state.Track.Title, state.Track.Artist)
	case errors.Is(err, shared.ErrNotPlaying):
		return r.writePlain("✓ Session valid (nothing playing)\n")
	case errors.Is(err, shared.ErrAuthFailed):
		return fmt.Errorf("%w: session expired, run 'lyricflow auth login'", shared.ErrAuthFailed)
	default:
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
}
