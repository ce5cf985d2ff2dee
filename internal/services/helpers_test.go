package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock/testclock"

	"github.com/yungbote/safetywatch-backend/internal/data/repos"
	"github.com/yungbote/safetywatch-backend/internal/data/repos/testutil"
	"github.com/yungbote/safetywatch-backend/internal/domain"
	"github.com/yungbote/safetywatch-backend/internal/platform/mailer"
)

var errStoreDown = errors.New("disk I/O error")

func fixedClock() *testclock.Clock {
	return testclock.NewClock(time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC))
}

type recordingMailer struct {
	mu   sync.Mutex
	msgs []mailer.Message
	err  error
}

func (m *recordingMailer) Provider() string { return "recording" }

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, msg)
	return m.err
}

func (m *recordingMailer) sent() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.msgs...)
}

type failingRepo struct{ err error }

func (r failingRepo) Backend() string { return "failing" }
func (r failingRepo) ListAll(context.Context) ([]*domain.Observation, error) {
	return nil, r.err
}
func (r failingRepo) ListOpen(context.Context) ([]*domain.Observation, error) {
	return nil, r.err
}
func (r failingRepo) Insert(context.Context, *domain.Observation) error { return r.err }
func (r failingRepo) Update(context.Context, int64, string, string) error {
	return r.err
}

type harness struct {
	repo     repos.ObservationRepo
	mail     *recordingMailer
	notifier Notifier
	svc      ObservationService
	clock    *testclock.Clock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := testutil.Logger(t)
	h := &harness{
		repo:  repos.NewSQLiteObservationRepo(testutil.DB(t), log),
		mail:  &recordingMailer{},
		clock: fixedClock(),
	}
	h.notifier = NewNotifier(log, h.mail, nil, NotifierConfig{From: "safety@example.com", To: []string{"lead@example.com"}})
	h.svc = NewObservationService(log, h.repo, h.notifier, h.clock)
	return h
}

// seed inserts obs directly, bypassing the service so the date is kept.
func (h *harness) seed(t *testing.T, obs *domain.Observation) {
	t.Helper()
	if err := h.repo.Insert(context.Background(), obs); err != nil {
		t.Fatalf("seed: %v", err)
	}
}
