// Utilities for extracting the sp_dc session cookie from pasted input.
package shared

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var spdcPattern = regexp.MustCompile(`sp_dc=([^;"'\s]+)`)

// ExtractCookieFile reads a file (typically a saved cURL command or a raw
// cookie header) and extracts the sp_dc value.
func ExtractCookieFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read cookie file: %w", err)
	}

	return ExtractCookie(string(content))
}

// ExtractCookie extracts the sp_dc session cookie from pasted input.
//
// Accepts a bare cookie value, a "name=value; ..." cookie header, or a full
// cURL command copied from browser developer tools.
func ExtractCookie(input string) (string, error) {
	input = strings.ReplaceAll(input, "\\\n", " ")
	input = strings.TrimSpace(input)

	if input == "" {
		return "", fmt.Errorf("%w: empty cookie input", ErrMissingCredentials)
	}

	if m := spdcPattern.FindStringSubmatch(input); len(m) > 1 {
		return m[1], nil
	}

	// A bare value: no separators that would indicate a header or command.
	if !strings.ContainsAny(input, " ;=") {
		return input, nil
	}

	return "", fmt.Errorf("%w: no sp_dc cookie found in input", ErrMissingCredentials)
}
