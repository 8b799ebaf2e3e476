package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"lyricflow/internal/cache"
	"lyricflow/internal/models"
)

func testLogger() *log.Logger {
	logger := log.New(os.Stderr)
	logger.SetLevel(log.ErrorLevel)
	return logger
}

// mockTranslator maps inputs to canned outputs and counts calls. Texts in
// fail always error.
type mockTranslator struct {
	mu      sync.Mutex
	outputs map[string]string
	fail    map[string]bool
	calls   map[string]int
}

func newMockTranslator(outputs map[string]string) *mockTranslator {
	return &mockTranslator{
		outputs: outputs,
		fail:    make(map[string]bool),
		calls:   make(map[string]int),
	}
}

func (m *mockTranslator) Name() string { return "mock" }

func (m *mockTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[text]++
	if m.fail[text] {
		return "", errors.New("provider rejected request")
	}
	if out, ok := m.outputs[text]; ok {
		return out, nil
	}
	return fmt.Sprintf("%s-%s", text, targetLang), nil
}

func (m *mockTranslator) callCount(text string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[text]
}

func mustDocument(t *testing.T, lines []models.Line) *models.Document {
	t.Helper()
	doc, err := models.NewDocument("track1", "de", lines)
	if err != nil {
		t.Fatalf("NewDocument failed: %v", err)
	}
	return doc
}

func fastOpts() OrchestratorOpts {
	return OrchestratorOpts{Workers: 2, RateLimit: 1000, MaxAttempts: 3}
}

func collectResults(t *testing.T, o *Orchestrator, gen, lang string, jobs []Job) []LineResult {
	t.Helper()
	results := make(chan LineResult, len(jobs))
	o.Translate(context.Background(), gen, lang, jobs, results)
	close(results)

	var out []LineResult
	for res := range results {
		out = append(out, res)
	}
	return out
}

func TestOrchestrator_TranslatesMissesAndFillsCache(t *testing.T) {
	translator := newMockTranslator(map[string]string{"Hallo": "Hello", "Welt": "World"})
	c := cache.New(10, nil, 0, testLogger())
	o := NewOrchestrator(translator, c, fastOpts(), testLogger())

	doc := mustDocument(t, []models.Line{
		{StartMS: 0, Text: "Hallo"},
		{StartMS: 5000, Text: "Welt"},
	})

	jobs := o.Prime(doc, "en")
	if len(jobs) != 2 {
		t.Fatalf("Expected 2 jobs, got %d", len(jobs))
	}
	for _, line := range doc.Lines {
		if line.Status != models.TranslationPending {
			t.Errorf("Expected pending status, got %v", line.Status)
		}
	}

	results := collectResults(t, o, "gen1", "en", jobs)
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	want := map[int]string{0: "Hello", 1: "World"}
	for _, res := range results {
		if res.Err != nil {
			t.Errorf("Unexpected error for line %d: %v", res.Index, res.Err)
		}
		if res.Text != want[res.Index] {
			t.Errorf("Line %d: expected %q, got %q", res.Index, want[res.Index], res.Text)
		}
		if res.Gen != "gen1" {
			t.Errorf("Expected generation gen1, got %q", res.Gen)
		}
	}

	if c.Len() != 2 {
		t.Errorf("Expected 2 cached translations, got %d", c.Len())
	}
}

func TestOrchestrator_PrimeUsesCache(t *testing.T) {
	translator := newMockTranslator(nil)
	c := cache.New(10, nil, 0, testLogger())
	c.Put(cache.NewKey("Hallo", "en"), "Hello")
	c.Put(cache.NewKey("Welt", "en"), "World")
	o := NewOrchestrator(translator, c, fastOpts(), testLogger())

	doc := mustDocument(t, []models.Line{
		{StartMS: 0, Text: "Hallo"},
		{StartMS: 5000, Text: "Welt"},
	})

	jobs := o.Prime(doc, "en")
	if len(jobs) != 0 {
		t.Fatalf("Expected no jobs on a warm cache, got %d", len(jobs))
	}
	if doc.Lines[0].Translated != "Hello" || doc.Lines[1].Translated != "World" {
		t.Errorf("Expected cache hits applied: %+v", doc.Lines)
	}
	if translator.callCount("Hallo") != 0 {
		t.Error("Expected no translator calls for cached lines")
	}
}

func TestOrchestrator_PrimeSkipsDoneAndBlankLines(t *testing.T) {
	translator := newMockTranslator(nil)
	c := cache.New(10, nil, 0, testLogger())
	o := NewOrchestrator(translator, c, fastOpts(), testLogger())

	doc := mustDocument(t, []models.Line{
		{StartMS: 0, Text: "Hallo", Translated: "Hello", Status: models.TranslationDone},
		{StartMS: 1000, Text: "♪"},
		{StartMS: 2000, Text: ""},
		{StartMS: 3000, Text: "Welt"},
	})

	jobs := o.Prime(doc, "en")
	if len(jobs) != 1 || jobs[0].Index != 3 {
		t.Fatalf("Expected only line 3 queued, got %+v", jobs)
	}
	if doc.Lines[1].Status != models.TranslationDone || doc.Lines[1].Translated != "♪" {
		t.Errorf("Expected instrumental marker completed as-is: %+v", doc.Lines[1])
	}
	if doc.Lines[0].Translated != "Hello" {
		t.Errorf("Expected done line untouched: %+v", doc.Lines[0])
	}
}

func TestOrchestrator_RetriesThenFails(t *testing.T) {
	translator := newMockTranslator(map[string]string{"Welt": "World"})
	translator.fail["Hallo"] = true
	c := cache.New(10, nil, 0, testLogger())
	o := NewOrchestrator(translator, c, fastOpts(), testLogger())

	doc := mustDocument(t, []models.Line{
		{StartMS: 0, Text: "Hallo"},
		{StartMS: 5000, Text: "Welt"},
	})

	results := collectResults(t, o, "gen1", "en", o.Prime(doc, "en"))
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	for _, res := range results {
		switch res.Index {
		case 0:
			if res.Err == nil {
				t.Error("Expected a failure result for the failing line")
			}
		case 1:
			if res.Err != nil || res.Text != "World" {
				t.Errorf("Expected sibling line to succeed, got %+v", res)
			}
		}
	}

	if got := translator.callCount("Hallo"); got != 3 {
		t.Errorf("Expected 3 attempts for the failing line, got %d", got)
	}
	if c.Len() != 1 {
		t.Errorf("Expected only the successful line cached, got %d", c.Len())
	}
}

func TestOrchestrator_CancelledWorkIsDropped(t *testing.T) {
	translator := newMockTranslator(nil)
	c := cache.New(10, nil, 0, testLogger())
	o := NewOrchestrator(translator, c, fastOpts(), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := make(chan LineResult, 4)
	o.Translate(ctx, "gen1", "en", []Job{{Index: 0, Text: "Hallo"}}, results)
	close(results)

	for res := range results {
		t.Errorf("Expected no results after cancellation, got %+v", res)
	}
}
