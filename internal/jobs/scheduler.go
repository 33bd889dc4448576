// Package jobs runs the periodic background work: inactivity reminders,
// monthly activity reports and cleanup of expired export files. Each job
// ticks on its own interval and failures only skip a run, never stop the
// scheduler.
package jobs

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/vehicle-parking-system/internal/config"
	"github.com/iliyamo/vehicle-parking-system/internal/queue"
	"github.com/iliyamo/vehicle-parking-system/internal/repository"
)

const runTimeout = 5 * time.Minute

// Scheduler owns the periodic jobs and their dependencies.
type Scheduler struct {
	Cfg          config.JobsConfig
	ExportDir    string
	Users        *repository.UserRepo
	Lots         *repository.LotRepo
	Reservations *repository.ReservationRepo
	// SendMail queues one outbound mail. Wired to the email queue publisher
	// at startup; nil turns the mail-producing jobs into no-ops.
	SendMail func(ctx context.Context, ev queue.EmailEvent) error
	Log      *logrus.Logger
}

// Start launches one goroutine per job and returns. The goroutines stop
// when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	if !s.Cfg.Enabled {
		s.Log.Info("background jobs disabled")
		return
	}
	go s.loop(ctx, "reminder", s.Cfg.ReminderInterval, s.runReminders)
	go s.loop(ctx, "monthly-report", s.Cfg.ReportInterval, s.runMonthlyReports)
	go s.loop(ctx, "export-cleanup", s.Cfg.CleanupInterval, s.runExportCleanup)
}

func (s *Scheduler) loop(ctx context.Context, name string, every time.Duration, run func(ctx context.Context) error) {
	log := s.Log.WithField("job", name)
	log.WithField("interval", every.String()).Info("job scheduled")

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("job stopped")
			return
		case <-ticker.C:
		}

		runCtx, cancel := context.WithTimeout(ctx, runTimeout)
		if err := run(runCtx); err != nil {
			log.WithError(err).Error("job run failed")
		}
		cancel()
	}
}

func (s *Scheduler) mail(ctx context.Context, ev queue.EmailEvent) error {
	if s.SendMail == nil {
		return nil
	}
	ev.QueuedAt = time.Now().UTC().Format(time.RFC3339)
	return s.SendMail(ctx, ev)
}
