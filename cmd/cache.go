package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// CacheStats reports the size and location of the translation cache.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	c, store := r.openCache()
	if store != nil {
		defer store.Close()
	}

	stats := struct {
		Path       string `json:"path"`
		Entries    int    `json:"entries"`
		MaxEntries int    `json:"max_entries"`
		Persistent bool   `json:"persistent"`
	}{
		Path:       r.config.Cache.Path,
		Entries:    c.Len(),
		MaxEntries: r.config.Cache.MaxEntries,
		Persistent: store != nil,
	}

	if cmd.Bool("json") {
		return r.writeJSON(stats, true)
	}

	r.writePlain("Cache: %s\n", stats.Path)
	r.writePlain("Entries: %d / %d\n", stats.Entries, stats.MaxEntries)
	if !stats.Persistent {
		r.writePlain("Persistence: unavailable (memory-only)\n")
	}
	return nil
}

// CacheClear deletes all cached translations.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	c, store := r.openCache()
	if store != nil {
		defer store.Close()
	}

	if err := c.Clear(); err != nil {
		return err
	}

	r.logger.Info("translation cache cleared")
	return r.writePlain("✓ Cache cleared\n")
}
