package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/vehicle-parking-system/internal/model"
	"github.com/iliyamo/vehicle-parking-system/internal/queue"
)

// Reminder thresholds: a user is nudged when they have not booked for
// inactivityWindow, or whenever new lots opened within newLotWindow.
const (
	inactivityWindow = 3 * 24 * time.Hour
	newLotWindow     = 24 * time.Hour
)

// runReminders mails every active user who qualifies. A failure for one
// user is logged and the loop moves on.
func (s *Scheduler) runReminders(ctx context.Context) error {
	now := time.Now().UTC()

	newLots, err := s.Lots.CreatedSince(ctx, now.Add(-newLotWindow))
	if err != nil {
		return fmt.Errorf("load new lots: %w", err)
	}
	users, err := s.Users.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}

	sent := 0
	for i := range users {
		u := &users[i]
		last, err := s.Reservations.LastCreatedAt(ctx, u.ID)
		if err != nil {
			s.Log.WithError(err).WithField("user_id", u.ID).Warn("reminder: last booking lookup")
			continue
		}
		inactive := last == nil || now.Sub(*last) > inactivityWindow
		if !inactive && len(newLots) == 0 {
			continue
		}

		mail := queue.EmailEvent{
			To:      u.Email,
			Subject: "We saved you a spot",
			Body:    reminderBody(u.Username, inactive, newLots),
			Kind:    "reminder",
		}
		if err := s.mail(ctx, mail); err != nil {
			s.Log.WithError(err).WithField("user_id", u.ID).Warn("reminder: queue mail")
			continue
		}
		sent++
	}
	s.Log.WithField("sent", sent).Info("reminder run finished")
	return nil
}

// reminderBody composes the plain-text reminder. The new-lot list is
// included only when there is one.
func reminderBody(username string, inactive bool, newLots []model.ParkingLot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", username)
	if inactive {
		b.WriteString("it has been a while since your last parking reservation.\n")
	}
	if len(newLots) > 0 {
		b.WriteString("New parking lots just opened:\n")
		for i := range newLots {
			fmt.Fprintf(&b, "  - %s, %s (%.2f/hour)\n",
				newLots[i].PrimeLocationName, newLots[i].Address, newLots[i].Price)
		}
	}
	b.WriteString("\nBook your next spot from your dashboard.\n")
	return b.String()
}
