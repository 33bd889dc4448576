// Package queue defines the message payloads exchanged over the broker and
// the background consumers that process them.
package queue

// ExportRequestedEvent is published when a user asks for a CSV export of
// their parking history. The export worker consumes it, generates the file
// and flips the job row through running to completed or failed.
type ExportRequestedEvent struct {
	JobID       string `json:"job_id"`
	UserID      uint64 `json:"user_id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	RequestedAt string `json:"requested_at"`
}

// EmailEvent is a queued outbound mail. Reminder, report and export
// notifications all go through the same queue; Kind tells them apart in the
// delivery log.
type EmailEvent struct {
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	HTML     bool   `json:"html"`
	Kind     string `json:"kind"`
	QueuedAt string `json:"queued_at"`
}
