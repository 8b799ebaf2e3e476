// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// runCommand starts the live lyrics pipeline with the TUI or headless output
func runCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Show live translated lyrics for the current track",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "lang",
				Aliases: []string{"l"},
				Usage:   "Target translation language (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "headless",
				Usage: "Log lyric lines to stdout instead of the TUI",
			},
		},
		Action: r.Run,
	}
}

// authCommand manages the Spotify session cookie
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Store the sp_dc session cookie",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.StringFlag{
						Name:  "cookie",
						Usage: "Cookie value, header, or curl command containing sp_dc",
					},
					&cli.StringFlag{
						Name:    "from-file",
						Aliases: []string{"f"},
						Usage:   "Read the cookie from a file instead of a flag",
					},
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open open.spotify.com in a browser to copy the cookie from",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Check whether the stored session works",
				Action: r.AuthStatus,
			},
		},
	}
}

// translateCommand exports a one-shot translation of the current track
func translateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "translate",
		Usage: "Translate the current track's lyrics and export them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "lang",
				Aliases: []string{"l"},
				Usage:   "Target translation language (overrides config)",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: json, csv, markdown, txt",
				Value: "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (default: stdout)",
			},
		},
		Action: r.Translate,
	}
}

// cacheCommand inspects and maintains the translation cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Translation cache operations",
		Commands: []*cli.Command{
			{
				Name:  "stats",
				Usage: "Show cache size and location",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheStats,
			},
			{
				Name:   "clear",
				Usage:  "Delete all cached translations",
				Action: r.CacheClear,
			},
		},
	}
}
