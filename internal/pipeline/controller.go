package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"lyricflow/internal/cache"
	"lyricflow/internal/models"
	"lyricflow/internal/services"
	"lyricflow/internal/shared"
)

// ControllerOpts configures the polling loop.
type ControllerOpts struct {
	PollInterval     time.Duration // Playback poll cadence (default: 500ms)
	FailureThreshold int           // Consecutive poll failures before Error (default: 3)
	TargetLanguage   string        // Initial translation target (default: en)
}

// Controller runs the playback poll loop and owns all mutable pipeline
// state. The lyric document is only touched from the Run goroutine; workers
// and callers communicate through channels, and consumers read immutable
// snapshots.
type Controller struct {
	player           services.Player
	lyrics           services.LyricsSource
	orch             *Orchestrator
	cache            *cache.Cache
	logger           *log.Logger
	pollInterval     time.Duration
	failureThreshold int

	snapshot atomic.Pointer[models.Snapshot]

	results  chan LineResult
	langCh   chan string
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	subMu sync.Mutex
	subs  []chan models.Snapshot

	// Loop-owned state. Never read or written outside the Run goroutine.
	track      *models.Track
	doc        *models.Document
	gen        string
	lang       string
	status     models.Status
	lastErr    string
	positionMS int
	playing    bool
	failures   int
	retryAfter time.Time
	lastGood   models.Status
	authFailed bool
	cancelOrch context.CancelFunc
}

// NewController wires the pipeline together.
func NewController(
	player services.Player,
	lyrics services.LyricsSource,
	orch *Orchestrator,
	c *cache.Cache,
	opts ControllerOpts,
	logger *log.Logger,
) *Controller {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	if opts.FailureThreshold <= 0 {
		opts.FailureThreshold = 3
	}
	if opts.TargetLanguage == "" {
		opts.TargetLanguage = "en"
	}

	ctrl := &Controller{
		player:           player,
		lyrics:           lyrics,
		orch:             orch,
		cache:            c,
		logger:           logger,
		pollInterval:     opts.PollInterval,
		failureThreshold: opts.FailureThreshold,
		results:          make(chan LineResult, 64),
		langCh:           make(chan string, 1),
		quit:             make(chan struct{}),
		done:             make(chan struct{}),
		lang:             opts.TargetLanguage,
		status:           models.StatusIdle,
	}
	ctrl.snapshot.Store(&models.Snapshot{LineIndex: -1, Language: ctrl.lang, Status: models.StatusIdle})
	return ctrl
}

// Run polls playback until ctx is cancelled or Shutdown is called. The cache
// is flushed on the way out.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)
	defer func() {
		if c.cancelOrch != nil {
			c.cancelOrch()
		}
		if err := c.cache.Flush(); err != nil {
			c.logger.Warn("Cache flush on shutdown failed", "error", err)
		}
	}()

	c.status = models.StatusPolling
	c.publish()

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.quit:
			return nil
		case res := <-c.results:
			c.apply(res)
		case lang := <-c.langCh:
			c.retarget(ctx, lang)
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

// Snapshot returns the most recently published pipeline state.
func (c *Controller) Snapshot() models.Snapshot {
	return *c.snapshot.Load()
}

// Subscribe returns a channel that carries the latest snapshot. The channel
// holds a single value; a slow reader sees the newest state, never a
// backlog.
func (c *Controller) Subscribe() <-chan models.Snapshot {
	ch := make(chan models.Snapshot, 1)
	c.subMu.Lock()
	c.subs = append(c.subs, ch)
	c.subMu.Unlock()
	ch <- c.Snapshot()
	return ch
}

// SetTargetLanguage switches the translation target. Completed lines are
// re-translated for the new language; in-flight work for the old language is
// cancelled. Non-blocking: a rapid series of calls keeps only the latest.
func (c *Controller) SetTargetLanguage(lang string) {
	for {
		select {
		case c.langCh <- lang:
			return
		default:
			select {
			case <-c.langCh:
			default:
			}
		}
	}
}

// Shutdown stops the loop and waits for it to exit. Safe to call more than
// once.
func (c *Controller) Shutdown() {
	c.stopOnce.Do(func() { close(c.quit) })
	<-c.done
}

// tick polls playback and reconciles pipeline state.
func (c *Controller) tick(ctx context.Context) {
	if c.authFailed || time.Now().Before(c.retryAfter) {
		return
	}

	state, err := c.player.NowPlaying(ctx)
	if err != nil {
		c.handlePollError(err)
		return
	}

	c.failures = 0
	c.retryAfter = time.Time{}
	c.lastErr = ""
	if c.status == models.StatusError {
		c.status = c.lastGood
		if c.status == models.StatusError || c.status == models.StatusIdle {
			c.status = models.StatusPolling
		}
	}

	if c.track == nil || c.track.ID != state.Track.ID {
		c.loadTrack(ctx, state.Track)
	}

	c.positionMS = state.PositionMS
	c.playing = state.Playing
	c.publish()
}

func (c *Controller) handlePollError(err error) {
	switch {
	case errors.Is(err, shared.ErrAuthFailed):
		c.logger.Error("Playback polling stopped: authentication failed", "error", err)
		c.authFailed = true
		c.status = models.StatusError
		c.lastErr = err.Error()
		c.publish()
	case errors.Is(err, shared.ErrNotPlaying):
		c.failures = 0
		c.playing = false
		if c.track == nil {
			c.status = models.StatusPolling
		}
		c.publish()
	default:
		c.failures++
		c.retryAfter = time.Now().Add(pollBackoff(c.pollInterval, c.failures))
		c.logger.Warn("Playback poll failed", "attempt", c.failures, "error", err)
		if c.failures >= c.failureThreshold {
			if c.status != models.StatusError {
				c.lastGood = c.status
			}
			c.status = models.StatusError
			c.lastErr = err.Error()
			c.publish()
		}
	}
}

// pollBackoff spaces consecutive failed polls: doubled per failure, capped
// at eight intervals.
func pollBackoff(interval time.Duration, failures int) time.Duration {
	shift := failures - 1
	if shift > 3 {
		shift = 3
	}
	return interval << shift
}

// loadTrack fetches lyrics for a newly detected track and kicks off
// translation of the cache misses.
func (c *Controller) loadTrack(ctx context.Context, track models.Track) {
	if c.cancelOrch != nil {
		c.cancelOrch()
		c.cancelOrch = nil
	}

	c.track = &track
	c.doc = nil
	c.gen = ""
	c.status = models.StatusFetching
	c.publish()

	doc, err := c.lyrics.Lyrics(ctx, track)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrNoLyrics):
			c.logger.Info("No synced lyrics", "track", track.Title)
			c.status = models.StatusNoLyrics
		case errors.Is(err, shared.ErrAuthFailed):
			c.authFailed = true
			c.status = models.StatusError
			c.lastErr = err.Error()
		default:
			c.logger.Warn("Lyrics fetch failed", "track", track.Title, "error", err)
			// Clearing the track makes the next tick retry the fetch.
			c.track = nil
			c.status = models.StatusFetching
			c.lastErr = err.Error()
		}
		return
	}

	c.doc = doc
	c.gen = shared.GenerateID()
	c.status = models.StatusSynced
	c.startTranslation(ctx)
}

// startTranslation primes the current document against the cache and runs
// the remaining lines through the orchestrator under a cancelable context
// scoped to c.gen.
func (c *Controller) startTranslation(ctx context.Context) {
	jobs := c.orch.Prime(c.doc, c.lang)
	if len(jobs) == 0 {
		return
	}

	orchCtx, cancel := context.WithCancel(ctx)
	c.cancelOrch = cancel
	gen := c.gen
	lang := c.lang
	go func() {
		defer cancel()
		c.orch.Translate(orchCtx, gen, lang, jobs, c.results)
	}()
}

// apply merges a worker result into the document. Results from a stale
// generation are dropped.
func (c *Controller) apply(res LineResult) {
	if c.doc == nil || res.Gen != c.gen || res.Index < 0 || res.Index >= len(c.doc.Lines) {
		return
	}

	line := &c.doc.Lines[res.Index]
	if res.Err != nil {
		line.Status = models.TranslationFailed
	} else {
		line.Translated = res.Text
		line.Status = models.TranslationDone
	}
	c.publish()
}

// retarget switches the translation language, resetting line state so every
// line is re-resolved against the cache for the new target.
func (c *Controller) retarget(ctx context.Context, lang string) {
	if lang == c.lang {
		return
	}
	c.logger.Info("Switching target language", "from", c.lang, "to", lang)
	c.lang = lang

	if c.doc == nil {
		c.publish()
		return
	}

	if c.cancelOrch != nil {
		c.cancelOrch()
		c.cancelOrch = nil
	}

	for i := range c.doc.Lines {
		c.doc.Lines[i].Translated = ""
		c.doc.Lines[i].Status = models.TranslationPending
	}
	c.gen = shared.GenerateID()
	c.startTranslation(ctx)
	c.publish()
}

// publish stores an immutable snapshot and pushes it to subscribers,
// replacing any unread value so subscribers always see the newest state.
func (c *Controller) publish() {
	snap := models.Snapshot{
		Track:      c.track,
		LineIndex:  -1,
		PositionMS: c.positionMS,
		Playing:    c.playing,
		Language:   c.lang,
		Status:     c.status,
		LastError:  c.lastErr,
	}
	if c.doc != nil {
		snap.Lines = make([]models.Line, len(c.doc.Lines))
		copy(snap.Lines, c.doc.Lines)
		if idx, ok := c.doc.IndexAt(c.positionMS); ok {
			snap.LineIndex = idx
		}
	}
	if c.track != nil {
		trackCopy := *c.track
		snap.Track = &trackCopy
	}

	c.snapshot.Store(&snap)

	c.subMu.Lock()
	defer c.subMu.Unlock()
	for _, sub := range c.subs {
		select {
		case sub <- snap:
		default:
			select {
			case <-sub:
			default:
			}
			select {
			case sub <- snap:
			default:
			}
		}
	}
}
