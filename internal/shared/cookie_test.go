package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExtractCookie(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "bare value",
			input: "AQBYKxP3wLt-abc123",
			want:  "AQBYKxP3wLt-abc123",
		},
		{
			name:  "cookie header",
			input: "sp_t=foo; sp_dc=AQBYKxP3wLt-abc123; sp_key=bar",
			want:  "AQBYKxP3wLt-abc123",
		},
		{
			name:  "curl command",
			input: `curl 'https://open.spotify.com/' -H 'accept: text/html' -b 'sp_dc=AQBYKxP3wLt-abc123; sp_t=foo'`,
			want:  "AQBYKxP3wLt-abc123",
		},
		{
			name: "multiline curl command",
			input: `curl 'https://open.spotify.com/' \
  -H 'cookie: sp_dc=AQBYKxP3wLt-abc123'`,
			want: "AQBYKxP3wLt-abc123",
		},
		{
			name:    "empty input",
			input:   "   ",
			wantErr: true,
		},
		{
			name:    "no sp_dc present",
			input:   "sp_t=foo; sp_key=bar",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractCookie(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractCookie() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExtractCookie() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractCookieFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spotify.sh")
	content := `curl 'https://open.spotify.com/' -b 'sp_dc=filevalue123'`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write cookie file: %v", err)
	}

	got, err := ExtractCookieFile(path)
	if err != nil {
		t.Fatalf("ExtractCookieFile() error = %v", err)
	}
	if got != "filevalue123" {
		t.Errorf("ExtractCookieFile() = %q, want filevalue123", got)
	}
}

func TestExtractCookieFile_Missing(t *testing.T) {
	if _, err := ExtractCookieFile(filepath.Join(t.TempDir(), "nope.sh")); err == nil {
		t.Error("ExtractCookieFile() expected error for missing file")
	}
}
