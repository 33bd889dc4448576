package jobs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// runExportCleanup deletes export files older than the configured maximum
// age. Only CSV files in the export directory are touched.
func (s *Scheduler) runExportCleanup(ctx context.Context) error {
	cutoff := time.Now().Add(-s.Cfg.ExportMaxAge)

	entries, err := os.ReadDir(s.ExportDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	removed := 0
	for _, e := range entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.ExportDir, e.Name())
		if err := os.Remove(path); err != nil {
			s.Log.WithError(err).WithField("file", e.Name()).Warn("cleanup: remove export")
			continue
		}
		removed++
	}
	if removed > 0 {
		s.Log.WithField("removed", removed).Info("export cleanup finished")
	}
	return nil
}
