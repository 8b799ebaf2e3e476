package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"lyricflow/internal/shared"
)

const googleTranslateURL = "https://translate.googleapis.com/translate_a/single"

// GoogleTranslator implements [Translator] against the free web translate
// endpoint. No credentials required; the source language is auto-detected.
type GoogleTranslator struct {
	httpClient *http.Client
	endpoint   string
}

// NewGoogleTranslator creates a translator backed by translate.googleapis.com.
func NewGoogleTranslator() *GoogleTranslator {
	return &GoogleTranslator{
		httpClient: http.DefaultClient,
		endpoint:   googleTranslateURL,
	}
}

func (g *GoogleTranslator) Name() string { return "googletrans" }

// Translate sends a single line for translation into targetLang.
func (g *GoogleTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", "auto")
	params.Set("tl", targetLang)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("%w: rate limited by translate endpoint", shared.ErrServiceUnavailable)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: translate status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	// The gtx response is a nested array:
	// [[[translated, original, ...], ...], ...]. Long inputs come back
	// split over several segments which concatenate in order.
	var payload []any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode translate response: %w", err)
	}

	translated, err := joinSegments(payload)
	if err != nil {
		return "", err
	}
	return translated, nil
}

func joinSegments(payload []any) (string, error) {
	if len(payload) == 0 {
		return "", fmt.Errorf("%w: empty translate response", shared.ErrAPIRequest)
	}
	segments, ok := payload[0].([]any)
	if !ok {
		return "", fmt.Errorf("%w: unexpected translate response shape", shared.ErrAPIRequest)
	}

	var b strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]any)
		if !ok || len(parts) == 0 {
			continue
		}
		if text, ok := parts[0].(string); ok {
			b.WriteString(text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: no translation in response", shared.ErrAPIRequest)
	}
	return b.String(), nil
}
