package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yungbote/safetywatch-backend/internal/platform/ctxutil"
	"github.com/yungbote/safetywatch-backend/internal/platform/logger"
)

// DefaultOverdueSpec is Monday 08:00 in the server's local time.
const DefaultOverdueSpec = "0 8 * * 1"

type Scanner interface {
	Scan(ctx context.Context) (int, error)
}

// Scheduler triggers the overdue scan on a cron schedule. A failed scan is logged and
// the schedule keeps running.
type Scheduler struct {
	log     *logger.Logger
	spec    string
	scanner Scanner
	cron    *cron.Cron

	mu  sync.Mutex
	ctx context.Context
}

func New(baseLog *logger.Logger, spec string, scanner Scanner) (*Scheduler, error) {
	if scanner == nil {
		return nil, fmt.Errorf("scheduler: scanner required")
	}
	spec = strings.TrimSpace(spec)
	if spec == "" {
		spec = DefaultOverdueSpec
	}
	log := baseLog.With("component", "OverdueScheduler", "schedule", spec)
	c := cron.New(
		cron.WithLocation(time.Local),
		cron.WithLogger(cronLogger{log: log}),
		cron.WithChain(cron.Recover(cronLogger{log: log}), cron.SkipIfStillRunning(cronLogger{log: log})),
	)
	s := &Scheduler{
		log:     log,
		spec:    spec,
		scanner: scanner,
		cron:    c,
		ctx:     context.Background(),
	}
	if _, err := c.AddFunc(spec, func() { s.RunOnce(s.baseContext()) }); err != nil {
		return nil, fmt.Errorf("scheduler: invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Spec() string { return s.spec }

// Next reports when the scan fires next; zero before Run.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Run starts the schedule and blocks until ctx is done, then waits for a running scan.
func (s *Scheduler) Run(ctx context.Context) error {
	ctx = ctxutil.Default(ctx)
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.cron.Start()
	s.log.Info("overdue scheduler started", "next", s.Next())
	<-ctx.Done()

	stopped := s.cron.Stop()
	<-stopped.Done()
	s.log.Info("overdue scheduler stopped")
	return nil
}

// RunOnce performs a single scan immediately.
func (s *Scheduler) RunOnce(ctx context.Context) {
	start := time.Now()
	n, err := s.scanner.Scan(ctx)
	if err != nil {
		s.log.Warn("overdue scan failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}
	s.log.Info("overdue scan done", "overdue", n, "duration_ms", time.Since(start).Milliseconds())
}

func (s *Scheduler) baseContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
