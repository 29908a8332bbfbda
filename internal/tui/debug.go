package tui

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Opt-in diagnostics: BACKOFFICE_TUI_DEBUG_LOG=path appends one line per
// noteworthy event. Off by default; the TUI stays quiet.

func debugLogPath() string {
	return strings.TrimSpace(os.Getenv("BACKOFFICE_TUI_DEBUG_LOG"))
}

func (m appModel) debugLogf(format string, args ...any) {
	path := debugLogPath()
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	resKey := ""
	if m.view != viewMenu {
		resKey = m.res.Key
	}
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(f, "%s view=%d res=%s modal=%d %s\n",
		ts, int(m.view), resKey, int(m.modal), fmt.Sprintf(format, args...))
}
