package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"lyricflow/internal/cache"
	"lyricflow/internal/models"
	"lyricflow/internal/pipeline"
	"lyricflow/internal/shared"
	"lyricflow/internal/ui"
)

// Run starts the live pipeline and either the TUI or headless line logging.
func (r *Runner) Run(ctx context.Context, cmd *cli.Command) error {
	if err := r.requirePlayer(); err != nil {
		return err
	}

	lang := cmd.String("lang")
	if lang == "" {
		lang = r.config.Translator.TargetLanguage
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, store := r.openCache()
	if store != nil {
		defer store.Close()
	}

	ctrl := r.buildController(c, lang)

	errCh := make(chan error, 1)
	go func() { errCh <- ctrl.Run(ctx) }()

	if cmd.Bool("headless") {
		return r.runHeadless(ctrl, errCh)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/lyricflow-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctrl, r.config.Translator.Languages)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		ctrl.Shutdown()
		return fmt.Errorf("error running TUI: %w", err)
	}

	ctrl.Shutdown()
	return nil
}

// runHeadless logs each line transition until the pipeline stops.
func (r *Runner) runHeadless(ctrl *pipeline.Controller, errCh <-chan error) error {
	sub := ctrl.Subscribe()

	lastTrack := ""
	lastIndex := -1
	lastStatus := models.StatusIdle

	for {
		select {
		case err := <-errCh:
			if err == nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		case snap := <-sub:
			if snap.Track != nil && snap.Track.ID != lastTrack {
				lastTrack = snap.Track.ID
				lastIndex = -1
				r.writePlainln("♫ %s — %s", snap.Track.Title, snap.Track.Artist)
			}
			if snap.Status != lastStatus {
				lastStatus = snap.Status
				switch snap.Status {
				case models.StatusError:
					r.logger.Errorf("pipeline error: %s", snap.LastError)
				case models.StatusNoLyrics:
					r.writePlain("(no synced lyrics)\n")
				}
			}
			if snap.LineIndex >= 0 && snap.LineIndex != lastIndex {
				lastIndex = snap.LineIndex
				line := snap.Lines[snap.LineIndex]
				r.writePlain("[%s] %s\n", shared.FormatTimestamp(line.StartMS), line.Text)
				if line.Status == models.TranslationDone && line.Translated != line.Text {
					r.writePlain("        %s\n", line.Translated)
				}
			}
		}
	}
}

// buildController assembles the orchestrator and controller from config.
func (r *Runner) buildController(c *cache.Cache, lang string) *pipeline.Controller {
	orch := pipeline.NewOrchestrator(r.translator, c, pipeline.OrchestratorOpts{
		Workers:     r.config.Translator.Workers,
		RateLimit:   r.config.Translator.RateLimit,
		MaxAttempts: r.config.Translator.MaxAttempts,
	}, r.logger)

	return pipeline.NewController(r.player, r.lyrics, orch, c, pipeline.ControllerOpts{
		PollInterval:     time.Duration(r.config.Pipeline.PollIntervalMS) * time.Millisecond,
		FailureThreshold: r.config.Pipeline.FailureThreshold,
		TargetLanguage:   lang,
	}, r.logger)
}

// openCache opens the persistent translation cache. A corrupt store is
// discarded and recreated; if the file stays unusable the cache runs
// memory-only.
func (r *Runner) openCache() (*cache.Cache, *cache.Store) {
	path := r.config.Cache.Path

	store, err := cache.NewStore(path)
	if err != nil {
		r.logger.Warnf("translation cache unreadable, recreating: %v", err)
		if rmErr := os.Remove(path); rmErr == nil || os.IsNotExist(rmErr) {
			store, err = cache.NewStore(path)
		}
	}
	if err != nil {
		r.logger.Warnf("translation cache unavailable, running memory-only: %v", err)
		store = nil
	}

	return cache.New(r.config.Cache.MaxEntries, store, r.config.Cache.SaveEvery, r.logger), store
}
