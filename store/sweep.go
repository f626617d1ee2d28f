package store

import (
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Sweep deletes direct file entries under dir whose last-modified time is
// older than maxAge, returning the number removed. Best-effort: entries
// that cannot be stat'ed or deleted are skipped. Subdirectories are left
// alone. Sweep only ever touches the durable directory; it takes no locks
// on any in-memory session state and never runs in the request path.
func Sweep(dir string, maxAge time.Duration) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			logrus.WithError(err).Debugf("sweep: cannot read %s", dir)
		}
		return 0
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) || info.ModTime().Equal(cutoff) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.Remove(path); err != nil {
			logrus.WithError(err).Debugf("sweep: cannot remove %s", path)
			continue
		}
		removed++
	}
	return removed
}
