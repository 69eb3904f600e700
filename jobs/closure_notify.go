package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/financehub/financehub/internal/closures"
	jobmetrics "github.com/financehub/financehub/internal/jobs"
	"github.com/financehub/financehub/internal/platform/httpx"
	"github.com/financehub/financehub/internal/reconciliation"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ClosureLoader reads stored closures.
type ClosureLoader interface {
	GetClosure(ctx context.Context, id string) (reconciliation.DailyClosure, error)
}

// MessageFormat supplies the money formatting of notification bodies.
type MessageFormat interface {
	MessageOptions() reconciliation.MessageOptions
}

// ClosureNotifyJob emails the message and PDF of a new closure.
type ClosureNotifyJob struct {
	Closures   ClosureLoader
	Mailer     Mailer
	Format     MessageFormat
	Recipients []string
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics
}

// NewClosureNotifyJob wires the notification handler.
func NewClosureNotifyJob(loader ClosureLoader, mailer Mailer, format MessageFormat, recipients []string, logger *slog.Logger, metrics *jobmetrics.Metrics) *ClosureNotifyJob {
	return &ClosureNotifyJob{
		Closures:   loader,
		Mailer:     mailer,
		Format:     format,
		Recipients: cleanRecipients(recipients),
		Logger:     logger,
		Metrics:    metrics,
	}
}

// Handle processes TaskClosureNotify tasks.
func (j *ClosureNotifyJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Closures == nil || j.Mailer == nil {
		return errors.New("closure notify: handler not configured")
	}
	var payload ClosureNotifyPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil || payload.ClosureID == "" {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskClosureNotify)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("closure_id", payload.ClosureID))
	if len(j.Recipients) == 0 {
		j.metrics().AddNotifications("skipped", 1)
		logger.Debug("no notification recipients configured")
		return nil
	}

	closure, err := j.Closures.GetClosure(ctx, payload.ClosureID)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			j.metrics().AddNotifications("skipped", 1)
			logger.Warn("closure vanished before notification")
			return fmt.Errorf("closure notify: %v: %w", err, asynq.SkipRetry)
		}
		resultErr = err
		return resultErr
	}

	msg, err := j.compose(closure)
	if err != nil {
		resultErr = err
		return resultErr
	}
	if err := j.Mailer.Send(ctx, msg); err != nil {
		j.metrics().AddNotifications("failed", 1)
		logger.Error("send closure notification", slog.Any("error", err))
		resultErr = err
		return resultErr
	}
	j.metrics().AddNotifications("sent", 1)
	logger.Info("closure notification sent", slog.Int("recipients", len(msg.To)))
	return resultErr
}

func (j *ClosureNotifyJob) compose(c reconciliation.DailyClosure) (Message, error) {
	var opts reconciliation.MessageOptions
	if j.Format != nil {
		opts = j.Format.MessageOptions()
	}
	subject := fmt.Sprintf("Cierre %s %s", c.StoreName, c.Date)
	if c.ShiftName != "" {
		subject += " (" + c.ShiftName + ")"
	}
	if !c.IsBalanced {
		subject = "[Descuadre] " + subject
	}
	var pdf bytes.Buffer
	if err := closures.WritePDF(&pdf, c, opts); err != nil {
		return Message{}, fmt.Errorf("closure notify: render pdf: %w", err)
	}
	return Message{
		To:      j.Recipients,
		Subject: subject,
		Body:    reconciliation.RenderMessage(c, opts),
		Attachments: []Attachment{{
			Name:        "cierre-" + c.Date + ".pdf",
			ContentType: "application/pdf",
			Data:        pdf.Bytes(),
		}},
	}, nil
}

func (j *ClosureNotifyJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *ClosureNotifyJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func cleanRecipients(in []string) []string {
	out := make([]string, 0, len(in))
	for _, r := range in {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
