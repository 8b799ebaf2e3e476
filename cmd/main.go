package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"lyricflow/internal/services"
	"lyricflow/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var player services.Player
	var lyrics services.LyricsSource
	if config.Credentials.Spotify.Cookie != "" {
		if client, err := services.NewSpotifyClient(config.Credentials.Spotify.Cookie); err == nil {
			player = client
			lyrics = client
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		Player:     player,
		Lyrics:     lyrics,
		Translator: buildTranslator(config, logger),
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "lyricflow",
		Usage:    "Live translated lyrics for whatever Spotify is playing",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
