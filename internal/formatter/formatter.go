// package formatter provides functions to export translated lyric documents
// to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"lyricflow/internal/models"
	"lyricflow/internal/shared"
)

// ExportToCSV converts a lyric document to CSV with columns: StartMS, Text, Translated, Status
func ExportToCSV(track models.Track, doc *models.Document) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"StartMS", "Text", "Translated", "Status"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, line := range doc.Lines {
		record := []string{
			strconv.Itoa(line.StartMS),
			line.Text,
			line.Translated,
			line.Status.String(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a lyric document to a Markdown table keyed by timestamp
func ExportToMarkdown(track models.Track, doc *models.Document, targetLang string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s — %s\n\n", track.Title, track.Artist))
	if track.Album != "" {
		buf.WriteString(fmt.Sprintf("**Album**: %s\n", track.Album))
	}
	if doc.Language != "" {
		buf.WriteString(fmt.Sprintf("**Language**: %s → %s\n", doc.Language, targetLang))
	}
	buf.WriteString(fmt.Sprintf("**Lines**: %d\n\n", len(doc.Lines)))

	buf.WriteString("| Time | Original | Translation |\n")
	buf.WriteString("| --- | --- | --- |\n")
	for _, line := range doc.Lines {
		buf.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
			shared.FormatTimestamp(line.StartMS), line.Text, line.Translated))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a lyric document to plain interleaved text
func ExportToText(track models.Track, doc *models.Document) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s — %s\n", track.Title, track.Artist))
	buf.WriteString(fmt.Sprintf("Lines: %d\n\n", len(doc.Lines)))

	for _, line := range doc.Lines {
		buf.WriteString(fmt.Sprintf("[%s] %s\n", shared.FormatTimestamp(line.StartMS), line.Text))
		if line.Translated != "" && line.Translated != line.Text {
			buf.WriteString(fmt.Sprintf("       %s\n", line.Translated))
		}
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a lyric document to indented JSON
func ExportToJSON(track models.Track, doc *models.Document) ([]byte, error) {
	payload := struct {
		Track    models.Track  `json:"track"`
		Language string        `json:"language"`
		Lines    []models.Line `json:"lines"`
	}{Track: track, Language: doc.Language, Lines: doc.Lines}
	return shared.MarshalJSON(payload, true)
}

// Export renders the document in the requested format: json, csv, markdown, or txt.
func Export(track models.Track, doc *models.Document, targetLang, format string) ([]byte, error) {
	switch format {
	case "csv":
		return ExportToCSV(track, doc)
	case "markdown", "md":
		return ExportToMarkdown(track, doc, targetLang)
	case "txt", "text":
		return ExportToText(track, doc)
	case "json", "":
		return ExportToJSON(track, doc)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// WriteExport renders the document and writes it to path. An empty path
// derives one from the track ID and format.
func WriteExport(track models.Track, doc *models.Document, targetLang, format, path string) (string, error) {
	data, err := Export(track, doc, targetLang, format)
	if err != nil {
		return "", err
	}

	if path == "" {
		ext := format
		switch format {
		case "markdown":
			ext = "md"
		case "text":
			ext = "txt"
		case "":
			ext = "json"
		}
		path = fmt.Sprintf("%s_lyrics.%s", track.ID, ext)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}
