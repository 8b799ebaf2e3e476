package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

// LoginURL is where the sp_dc cookie is minted. The sign-in flow sends the
// user here to grab the cookie from the browser's developer tools.
const LoginURL = "https://open.spotify.com"

var getRuntime = func() string { return runtime.GOOS }

// OpenLoginPage opens the Spotify web player sign-in page in the default
// system browser. Supports macOS, Linux, and Windows.
func OpenLoginPage() error {
	var cmd *exec.Cmd
	rt := getRuntime()
	switch rt {
	case "darwin":
		cmd = exec.Command("open", LoginURL)
	case "linux":
		cmd = exec.Command("xdg-open", LoginURL)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", LoginURL)
	default:
		return fmt.Errorf("unsupported platform: %s", rt)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}
