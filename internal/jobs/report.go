package jobs

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/iliyamo/vehicle-parking-system/internal/queue"
	"github.com/iliyamo/vehicle-parking-system/internal/repository"
)

// runMonthlyReports mails each active user an HTML summary of the previous
// calendar month. Users with no activity are skipped, and one user's
// failure never stops the run.
func (s *Scheduler) runMonthlyReports(ctx context.Context) error {
	start, end := previousMonth(time.Now().UTC())

	users, err := s.Users.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}

	sent := 0
	for i := range users {
		u := &users[i]
		details, err := s.Reservations.ListByUserBetween(ctx, u.ID, start, end)
		if err != nil {
			s.Log.WithError(err).WithField("user_id", u.ID).Warn("report: load history")
			continue
		}
		if len(details) == 0 {
			continue
		}

		mail := queue.EmailEvent{
			To:      u.Email,
			Subject: fmt.Sprintf("Your parking report for %s", start.Format("January 2006")),
			Body:    reportBody(u.Username, start, details),
			HTML:    true,
			Kind:    "monthly-report",
		}
		if err := s.mail(ctx, mail); err != nil {
			s.Log.WithError(err).WithField("user_id", u.ID).Warn("report: queue mail")
			continue
		}
		sent++
	}
	s.Log.WithField("sent", sent).Info("monthly report run finished")
	return nil
}

// previousMonth returns the [start, end) bounds of the calendar month
// before the given instant, in UTC.
func previousMonth(now time.Time) (time.Time, time.Time) {
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return end.AddDate(0, -1, 0), end
}

// monthStats aggregates one user's month.
type monthStats struct {
	Bookings  int
	TotalCost float64
	TopLot    string
}

func summarize(details []repository.ReservationDetail) monthStats {
	stats := monthStats{Bookings: len(details)}
	counts := map[string]int{}
	for i := range details {
		stats.TotalCost += details[i].ParkingCost
		counts[details[i].LotName]++
	}
	best := 0
	for name, n := range counts {
		if n > best || (n == best && name < stats.TopLot) {
			best, stats.TopLot = n, name
		}
	}
	return stats
}

// reportBody renders the HTML report: a headline summary plus one table row
// per reservation.
func reportBody(username string, month time.Time, details []repository.ReservationDetail) string {
	stats := summarize(details)

	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Parking report for %s</h2>\n", month.Format("January 2006"))
	fmt.Fprintf(&b, "<p>Hello %s, here is your month at a glance.</p>\n", html.EscapeString(username))
	b.WriteString("<ul>\n")
	fmt.Fprintf(&b, "  <li>Total bookings: %d</li>\n", stats.Bookings)
	fmt.Fprintf(&b, "  <li>Total spent: %.2f</li>\n", stats.TotalCost)
	fmt.Fprintf(&b, "  <li>Most used lot: %s</li>\n", html.EscapeString(stats.TopLot))
	b.WriteString("</ul>\n")

	b.WriteString("<table border=\"1\" cellpadding=\"4\">\n")
	b.WriteString("  <tr><th>Spot</th><th>Parked</th><th>Left</th><th>Cost</th><th>Status</th></tr>\n")
	for i := range details {
		d := &details[i]
		left := ""
		if d.LeavingTimestamp != nil {
			left = d.LeavingTimestamp.UTC().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(&b, "  <tr><td>%s</td><td>%s</td><td>%s</td><td>%.2f</td><td>%s</td></tr>\n",
			html.EscapeString(d.SpotIdentifier()),
			d.ParkingTimestamp.UTC().Format("2006-01-02 15:04"),
			left, d.ParkingCost, d.Status)
	}
	b.WriteString("</table>\n")
	return b.String()
}
