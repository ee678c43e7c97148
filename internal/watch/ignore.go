package watch

import (
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

const relevantOps = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

// shouldIgnoreEvent returns true for events that should not trigger a run.
func shouldIgnoreEvent(ev fsnotify.Event) bool {
	if ev.Op&relevantOps == 0 {
		return true
	}
	base := filepath.Base(ev.Name)

	// Hidden files, editor temp/swap files and OS metadata
	if strings.HasPrefix(base, ".") ||
		strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasSuffix(base, ".tmp") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") ||
		base == "4913" || // vim write probe
		base == "Thumbs.db" {
		return true
	}
	return false
}
