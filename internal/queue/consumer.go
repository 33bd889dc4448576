package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/vehicle-parking-system/internal/repository"
)

const (
	exportQueueName = "export.requested"
	emailQueueName  = "notify.email"

	jobTimeout = 30 * time.Second
)

// ExportConsumer generates CSV exports requested through the API. It runs a
// reconnect loop against the broker, so a restarted RabbitMQ only delays
// jobs instead of losing the worker.
type ExportConsumer struct {
	BrokerURL    string
	ExportDir    string
	Exports      *repository.ExportRepo
	Reservations *repository.ReservationRepo
	// Notify sends the completion mail. Wired to the email queue publisher
	// at startup; nil disables notifications.
	Notify func(ctx context.Context, ev EmailEvent) error
	Log    *logrus.Logger
}

// Start blocks, consuming export jobs until the process exits.
func (c *ExportConsumer) Start() {
	runConsumer(c.BrokerURL, exportQueueName, c.Log.WithField("consumer", "export"), c.handle)
}

func (c *ExportConsumer) handle(body []byte) error {
	var ev ExportRequestedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := c.Exports.MarkRunning(ctx, ev.JobID); err != nil {
		return fmt.Errorf("mark running: %w", err)
	}

	filename, err := c.generate(ctx, ev)
	if err != nil {
		if dbErr := c.Exports.MarkFailed(ctx, ev.JobID, err.Error()); dbErr != nil {
			c.Log.WithError(dbErr).WithField("job_id", ev.JobID).Error("export: mark failed")
		}
		return fmt.Errorf("generate export: %w", err)
	}

	if err := c.Exports.MarkCompleted(ctx, ev.JobID, filename); err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	c.Log.WithFields(logrus.Fields{"job_id": ev.JobID, "file": filename}).Info("export completed")

	if c.Notify != nil && ev.Email != "" {
		mail := EmailEvent{
			To:       ev.Email,
			Subject:  "Your parking history export is ready",
			Body:     fmt.Sprintf("Hello %s,\n\nyour parking history export is ready for download: %s\n", ev.Username, filename),
			Kind:     "export",
			QueuedAt: time.Now().UTC().Format(time.RFC3339),
		}
		if err := c.Notify(ctx, mail); err != nil {
			c.Log.WithError(err).WithField("job_id", ev.JobID).Warn("export: queue notification mail")
		}
	}
	return nil
}

func (c *ExportConsumer) generate(ctx context.Context, ev ExportRequestedEvent) (string, error) {
	details, err := c.Reservations.ListByUser(ctx, ev.UserID)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}
	now := time.Now().UTC()
	filename := ExportFilename(ev.Username, now)
	if err := WriteHistoryCSV(c.ExportDir, filename, details, now); err != nil {
		return "", err
	}
	return filename, nil
}

// EmailConsumer drains the mail queue. Delivery is simulated by appending
// to logs/email.log, one line per message, which keeps local and test runs
// free of SMTP infrastructure.
type EmailConsumer struct {
	BrokerURL string
	Log       *logrus.Logger
}

// Start blocks, consuming mail events until the process exits.
func (c *EmailConsumer) Start() {
	runConsumer(c.BrokerURL, emailQueueName, c.Log.WithField("consumer", "email"), handleEmail)
}

func handleEmail(body []byte) error {
	var ev EmailEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(filepath.Join("logs", "email.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] kind=%s to=%s subject=%q bytes=%d\n",
		ev.QueuedAt, ev.Kind, ev.To, ev.Subject, len(ev.Body))
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// runConsumer dials the broker, declares the durable queue and consumes it,
// reconnecting with exponential backoff. Messages that fail processing are
// rejected without requeue to avoid tight redelivery loops.
func runConsumer(url, queue string, log *logrus.Entry, handle func([]byte) error) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.WithError(err).Warnf("dial broker failed; retrying in %s", backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn, queue, log, handle); err != nil {
			log.WithError(err).Warn("consume loop ended; reconnecting")
			time.Sleep(2 * time.Second)
		}
		_ = conn.Close()
	}
}

func consumeLoop(conn *amqp.Connection, queue string, log *logrus.Entry, handle func([]byte) error) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.WithError(err).Warn("set QoS failed")
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handle(d.Body); err != nil {
			log.WithError(err).Error("handle message failed")
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}
