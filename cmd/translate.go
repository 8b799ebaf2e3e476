package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"lyricflow/internal/formatter"
	"lyricflow/internal/models"
	"lyricflow/internal/pipeline"
)

// Translate fetches the current track's lyrics, translates every line, and
// exports the result in the requested format.
func (r *Runner) Translate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requirePlayer(); err != nil {
		return err
	}

	lang := cmd.String("lang")
	if lang == "" {
		lang = r.config.Translator.TargetLanguage
	}

	state, err := r.player.NowPlaying(ctx)
	if err != nil {
		return fmt.Errorf("failed to read playback: %w", err)
	}
	r.logger.Infof("translating %s — %s to %s", state.Track.Title, state.Track.Artist, lang)

	doc, err := r.lyrics.Lyrics(ctx, state.Track)
	if err != nil {
		return fmt.Errorf("failed to fetch lyrics: %w", err)
	}

	c, store := r.openCache()
	if store != nil {
		defer store.Close()
	}

	orch := pipeline.NewOrchestrator(r.translator, c, pipeline.OrchestratorOpts{
		Workers:     r.config.Translator.Workers,
		RateLimit:   r.config.Translator.RateLimit,
		MaxAttempts: r.config.Translator.MaxAttempts,
	}, r.logger)

	jobs := orch.Prime(doc, lang)
	if len(jobs) > 0 {
		results := make(chan pipeline.LineResult, len(jobs))
		orch.Translate(ctx, "oneshot", lang, jobs, results)
		close(results)

		failed := 0
		for res := range results {
			line := &doc.Lines[res.Index]
			if res.Err != nil {
				line.Status = models.TranslationFailed
				failed++
				continue
			}
			line.Translated = res.Text
			line.Status = models.TranslationDone
		}
		if failed > 0 {
			r.logger.Warnf("%d of %d lines failed to translate", failed, len(doc.Lines))
		}
	}

	if err := c.Flush(); err != nil {
		r.logger.Warnf("cache flush failed: %v", err)
	}

	format := cmd.String("format")
	output := cmd.String("output")
	if output == "" {
		data, err := formatter.Export(state.Track, doc, lang, format)
		if err != nil {
			return err
		}
		return r.writePlain("%s", string(data))
	}

	path, err := formatter.WriteExport(state.Track, doc, lang, format, output)
	if err != nil {
		return err
	}
	return r.writePlainln("✓ Wrote %s", path)
}
