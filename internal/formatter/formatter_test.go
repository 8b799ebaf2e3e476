package formatter

import (
	"path/filepath"
	"strings"
	"testing"

	"lyricflow/internal/models"
	th "lyricflow/internal/testing"
)

func testDocument(t *testing.T) (models.Track, *models.Document) {
	t.Helper()
	track := models.Track{
		ID:         "track1",
		Title:      "Song One",
		Artist:     "Artist One",
		Album:      "Album One",
		DurationMS: 180000,
	}
	doc, err := models.NewDocument("track1", "de", []models.Line{
		{StartMS: 0, Text: "Hallo", Translated: "Hello", Status: models.TranslationDone},
		{StartMS: 65000, Text: "Welt", Translated: "World", Status: models.TranslationDone},
	})
	if err != nil {
		t.Fatalf("NewDocument failed: %v", err)
	}
	return track, doc
}

func TestExporters(t *testing.T) {
	track, doc := testDocument(t)

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(track, doc)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "StartMS,Text,Translated,Status") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "0,Hallo,Hello,done") {
			t.Errorf("CSV missing first line, got: %s", output)
		}
		if !strings.Contains(output, "65000,Welt,World,done") {
			t.Errorf("CSV missing second line, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(track, doc, "en")
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "# Song One — Artist One") {
			t.Errorf("Markdown missing title, got: %s", output)
		}
		if !strings.Contains(output, "de → en") {
			t.Errorf("Markdown missing language pair")
		}
		if !strings.Contains(output, "| 1:05 | Welt | World |") {
			t.Errorf("Markdown missing timestamped row, got: %s", output)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(track, doc)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "[0:00] Hallo") {
			t.Errorf("Text missing first line, got: %s", output)
		}
		if !strings.Contains(output, "Hello") {
			t.Errorf("Text missing translation")
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(track, doc)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, `"status": "done"`) {
			t.Errorf("JSON missing readable status, got: %s", output)
		}
		if !strings.Contains(output, `"start_ms": 65000`) {
			t.Errorf("JSON missing timestamps")
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		if _, err := Export(track, doc, "en", "yaml"); err == nil {
			t.Error("Expected an error for an unsupported format")
		}
	})
}

func TestWriteExport(t *testing.T) {
	track, doc := testDocument(t)

	t.Run("writes to explicit path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.md")
		got, err := WriteExport(track, doc, "en", "markdown", path)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if got != path {
			t.Errorf("Expected path %s, got %s", path, got)
		}
		th.AssertFileExists(t, path)
	})

	t.Run("derives path from track", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "track1_lyrics.json")

		got, err := WriteExport(track, doc, "en", "json", path)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		content := th.MustReadFile(t, got)
		if !strings.Contains(content, "Song One") {
			t.Errorf("Export missing track title: %s", content)
		}
	})
}
