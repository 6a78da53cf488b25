package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var currentOS = runtime.GOOS

// openCommands maps an operating system to the command that opens a URL in
// the default browser.
var openCommands = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open"},
	"windows": {"cmd", "/c", "start"},
}

// OpenBrowser opens the default system browser at the given URL.
func OpenBrowser(url string) error {
	args, ok := openCommands[currentOS]
	if !ok {
		return fmt.Errorf("unsupported platform: %s", currentOS)
	}

	cmd := exec.Command(args[0], append(args[1:], url)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}
