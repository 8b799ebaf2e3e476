package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"lyricflow/internal/services"
	"lyricflow/internal/shared"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	player     services.Player
	lyrics     services.LyricsSource
	translator services.Translator
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	Player     services.Player
	Lyrics     services.LyricsSource
	Translator services.Translator
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		player:     opts.Player,
		lyrics:     opts.Lyrics,
		translator: opts.Translator,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

// SetLogger swaps the runner's logger, used to redirect logs to a file while
// the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// buildTranslator selects the configured provider, wrapped in a circuit
// breaker so a dead provider fails fast.
func buildTranslator(config *shared.Config, logger *log.Logger) services.Translator {
	switch config.Translator.Provider {
	case "openai":
		t, err := services.NewOpenAITranslator(config.Translator.OpenAIAPIKey, config.Translator.OpenAIModel)
		if err != nil {
			logger.Warnf("openai provider unavailable, falling back to googletrans: %v", err)
			return services.NewBreakerTranslator(services.NewGoogleTranslator())
		}
		return services.NewBreakerTranslator(t)
	default:
		return services.NewBreakerTranslator(services.NewGoogleTranslator())
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		runCommand, authCommand, translateCommand, cacheCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requirePlayer guards commands that need an authenticated Spotify session.
func (r *Runner) requirePlayer() error {
	if r.player == nil || r.lyrics == nil {
		return fmt.Errorf("%w: run 'lyricflow auth login' first", shared.ErrMissingCredentials)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
