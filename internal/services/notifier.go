package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/safetywatch-backend/internal/domain"
	"github.com/yungbote/safetywatch-backend/internal/observability"
	"github.com/yungbote/safetywatch-backend/internal/platform/ctxutil"
	"github.com/yungbote/safetywatch-backend/internal/platform/logger"
	"github.com/yungbote/safetywatch-backend/internal/platform/mailer"
)

const (
	NotificationCreated = "created"
	NotificationClosed  = "closed"
	NotificationOverdue = "overdue"

	defaultNotifyTimeout = 30 * time.Second
)

// Notifier sends observation emails in the background. None of its methods block on
// delivery or report failures to the caller.
type Notifier interface {
	ObservationCreated(ctx context.Context, obs *domain.Observation)
	ObservationClosed(ctx context.Context, id int64)
	OverdueDigest(ctx context.Context, records []*domain.Observation)
	// Wait blocks until every send started so far has finished.
	Wait()
}

type NotifierConfig struct {
	From    string
	To      []string
	Timeout time.Duration
}

type notifier struct {
	log     *logger.Logger
	mail    mailer.Mailer
	metrics *observability.Metrics
	from    string
	to      []string
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewNotifier(log *logger.Logger, mail mailer.Mailer, metrics *observability.Metrics, cfg NotifierConfig) Notifier {
	serviceLog := log.With("service", "Notifier", "provider", mail.Provider())
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultNotifyTimeout
	}
	to := make([]string, 0, len(cfg.To))
	for _, addr := range cfg.To {
		if addr = strings.TrimSpace(addr); addr != "" {
			to = append(to, addr)
		}
	}
	return &notifier{
		log:     serviceLog,
		mail:    mail,
		metrics: metrics,
		from:    strings.TrimSpace(cfg.From),
		to:      to,
		timeout: timeout,
	}
}

func (n *notifier) ObservationCreated(ctx context.Context, obs *domain.Observation) {
	if obs == nil {
		return
	}
	n.dispatch(ctx, NotificationCreated, createdSubject, createdText(obs))
}

func (n *notifier) ObservationClosed(ctx context.Context, id int64) {
	n.dispatch(ctx, NotificationClosed, closedSubject, closedText(id))
}

func (n *notifier) OverdueDigest(ctx context.Context, records []*domain.Observation) {
	if len(records) == 0 {
		return
	}
	n.dispatch(ctx, NotificationOverdue, overdueSubject, overdueText(records))
}

func (n *notifier) Wait() {
	n.wg.Wait()
}

func (n *notifier) dispatch(ctx context.Context, kind, subject, text string) {
	if len(n.to) == 0 {
		n.log.Debug("notification skipped (no recipients)", append(ctxutil.LogFields(ctx), "kind", kind)...)
		n.metrics.IncNotification(kind, "skipped")
		return
	}
	msg := mailer.Message{
		From:    n.from,
		To:      append([]string(nil), n.to...),
		Subject: subject,
		Text:    text,
	}
	sendCtx := ctxutil.Detach(ctx)
	fields := ctxutil.LogFields(ctx)

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				n.log.Error("notification panicked", append(fields, "kind", kind, "panic", r)...)
				n.metrics.IncNotification(kind, "failed")
			}
		}()

		cctx, cancel := context.WithTimeout(sendCtx, n.timeout)
		defer cancel()

		start := time.Now()
		if err := n.mail.Send(cctx, msg); err != nil {
			n.log.Warn("notification failed", append(fields, "kind", kind, "error", err)...)
			n.metrics.IncNotification(kind, "failed")
			return
		}
		n.log.Info("notification sent", append(fields, "kind", kind, "duration_ms", time.Since(start).Milliseconds())...)
		n.metrics.IncNotification(kind, "sent")
	}()
}

const (
	createdSubject = "New Safety Observation"
	closedSubject  = "Observation Closed"
	overdueSubject = "Overdue Safety Observations"
)

func createdText(obs *domain.Observation) string {
	return "Employee: " + obs.Name +
		"\nDept: " + obs.Department +
		"\nObservation: " + obs.Description +
		"\nStatus: " + obs.Status
}

func closedText(id int64) string {
	return fmt.Sprintf("Observation %d was closed.", id)
}

func overdueText(records []*domain.Observation) string {
	var b strings.Builder
	for _, o := range records {
		if o == nil {
			continue
		}
		b.WriteString("Name: " + o.Name)
		b.WriteString("\nDept: " + o.Department)
		b.WriteString("\nObservation: " + o.Description)
		b.WriteString("\nDate: " + o.Date + "\n\n")
	}
	return b.String()
}
