// package pipeline drives playback polling, lyrics fetching, and concurrent
// line translation, publishing immutable snapshots for display layers.
//
// The orchestrator owns a worker pool that translates cache misses; the
// controller owns the lyric document and is the only goroutine that mutates
// it. Workers report results over channels tagged with a generation ID so
// stale work from a previous track or language is discarded.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"lyricflow/internal/cache"
	"lyricflow/internal/models"
	"lyricflow/internal/services"
)

// Job is one lyric line awaiting translation.
type Job struct {
	Index int
	Text  string
}

// LineResult reports the outcome of translating one line. Gen identifies the
// document generation the work belongs to.
type LineResult struct {
	Gen   string
	Index int
	Text  string
	Err   error
}

// OrchestratorOpts configures the translation worker pool.
type OrchestratorOpts struct {
	Workers     int     // Concurrent workers (default: 4)
	RateLimit   float64 // Requests per second (default: 5)
	MaxAttempts int     // Attempts per line including the first (default: 3)
}

// Orchestrator partitions lyric lines into cache hits and misses and runs
// the misses through a bounded worker pool.
type Orchestrator struct {
	translator  services.Translator
	cache       *cache.Cache
	limiter     *rate.Limiter
	workers     int
	maxAttempts int
	logger      *log.Logger
}

// NewOrchestrator creates an orchestrator using translator for misses and
// cache for hits and completed work.
func NewOrchestrator(translator services.Translator, c *cache.Cache, opts OrchestratorOpts, logger *log.Logger) *Orchestrator {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.Workers > 10 {
		opts.Workers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}

	return &Orchestrator{
		translator:  translator,
		cache:       c,
		limiter:     rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		workers:     opts.Workers,
		maxAttempts: opts.MaxAttempts,
		logger:      logger,
	}
}

// Prime resolves cache hits in place and returns the jobs that still need a
// translator call. Lines already marked done are skipped, so re-running on a
// partially translated document never repeats finished work. Blank lines and
// instrumental markers complete immediately.
func (o *Orchestrator) Prime(doc *models.Document, targetLang string) []Job {
	var jobs []Job
	for i := range doc.Lines {
		line := &doc.Lines[i]
		if line.Status == models.TranslationDone {
			continue
		}

		trimmed := strings.TrimSpace(line.Text)
		if trimmed == "" || trimmed == "♪" {
			line.Translated = line.Text
			line.Status = models.TranslationDone
			continue
		}

		if translated, ok := o.cache.Get(cache.NewKey(line.Text, targetLang)); ok {
			line.Translated = translated
			line.Status = models.TranslationDone
			continue
		}

		line.Status = models.TranslationPending
		jobs = append(jobs, Job{Index: i, Text: line.Text})
	}
	return jobs
}

// Translate runs jobs through the worker pool, sending one LineResult per
// job to results. Returns once every worker has drained or ctx is cancelled.
// Results for cancelled work are dropped rather than reported.
func (o *Orchestrator) Translate(ctx context.Context, gen, targetLang string, jobs []Job, results chan<- LineResult) {
	queue := make(chan Job, len(jobs))
	for _, job := range jobs {
		queue <- job
	}
	close(queue)

	var wg sync.WaitGroup
	for i := 0; i < o.workers; i++ {
		wg.Add(1)
		go o.worker(ctx, &wg, gen, targetLang, queue, results)
	}
	wg.Wait()
}

func (o *Orchestrator) worker(
	ctx context.Context,
	wg *sync.WaitGroup,
	gen, targetLang string,
	queue <-chan Job,
	results chan<- LineResult,
) {
	defer wg.Done()

	for job := range queue {
		select {
		case <-ctx.Done():
			return
		default:
		}

		translated, err := o.translateWithRetry(ctx, job.Text, targetLang)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			o.logger.Debug("Line translation failed", "index", job.Index, "error", err)
			o.sendResult(ctx, results, LineResult{Gen: gen, Index: job.Index, Err: err})
			continue
		}

		o.cache.Put(cache.NewKey(job.Text, targetLang), translated)
		o.sendResult(ctx, results, LineResult{Gen: gen, Index: job.Index, Text: translated})
	}
}

// translateWithRetry attempts a translation up to maxAttempts times with
// exponential backoff between attempts.
func (o *Orchestrator) translateWithRetry(ctx context.Context, text, targetLang string) (string, error) {
	var lastErr error
	for attempt := 0; attempt < o.maxAttempts; attempt++ {
		if attempt > 0 {
			backoff := 200 * time.Millisecond << (attempt - 1)
			if err := sleepWithCtx(ctx, backoff); err != nil {
				return "", err
			}
		}

		if err := o.limiter.Wait(ctx); err != nil {
			return "", err
		}

		translated, err := o.translator.Translate(ctx, text, targetLang)
		if err == nil {
			return translated, nil
		}
		lastErr = err
	}
	return "", lastErr
}

func (o *Orchestrator) sendResult(ctx context.Context, results chan<- LineResult, res LineResult) {
	select {
	case results <- res:
	case <-ctx.Done():
	}
}

func sleepWithCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
