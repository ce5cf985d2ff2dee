package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/yungbote/safetywatch-backend/internal/data/repos/testutil"
	"github.com/yungbote/safetywatch-backend/internal/platform/apierr"
)

func TestAddObservationAssignsIDAndToday(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	in := ObservationInput{
		Name:        "Dana",
		Department:  "Warehouse",
		Description: "Blocked fire exit",
		Fix:         "",
		Status:      "Open",
	}
	if err := h.svc.AddObservation(ctx, in); err != nil {
		t.Fatalf("AddObservation: %v", err)
	}
	h.notifier.Wait()

	all, err := h.svc.GetAllObservations(ctx)
	if err != nil {
		t.Fatalf("GetAllObservations: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("len: want=1 got=%d", len(all))
	}
	got := all[0]
	if got.ID == 0 {
		t.Fatalf("id not assigned")
	}
	if got.Date != "2025-03-14" {
		t.Fatalf("date: want=2025-03-14 got=%q", got.Date)
	}
	if got.Name != in.Name || got.Department != in.Department || got.Description != in.Description || got.Status != in.Status || got.Fix != in.Fix {
		t.Fatalf("fields changed: got=%+v", got)
	}

	sent := h.mail.sent()
	if len(sent) != 1 || sent[0].Subject != "New Safety Observation" {
		t.Fatalf("created email: got=%+v", sent)
	}
	wantText := "Employee: Dana\nDept: Warehouse\nObservation: Blocked fire exit\nStatus: Open"
	if sent[0].Text != wantText {
		t.Fatalf("created text: want=%q got=%q", wantText, sent[0].Text)
	}
}

func TestUpdateObservationTouchesOnlyTarget(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seed(t, testutil.NewObservation("a", "2025-03-01"))
	h.seed(t, testutil.NewObservation("b", "2025-03-02"))

	before, _ := h.svc.GetAllObservations(ctx)
	target := before[0]
	other := *before[1]

	if err := h.svc.UpdateObservation(ctx, target.ID, "In Progress", "Rerouted hose"); err != nil {
		t.Fatalf("UpdateObservation: %v", err)
	}
	h.notifier.Wait()

	after, _ := h.svc.GetAllObservations(ctx)
	for _, o := range after {
		switch o.ID {
		case target.ID:
			if o.Status != "In Progress" || o.Fix != "Rerouted hose" {
				t.Fatalf("target not updated: %+v", o)
			}
			if o.Name != target.Name || o.Date != target.Date {
				t.Fatalf("write-once fields changed: %+v", o)
			}
		case other.ID:
			if *o != other {
				t.Fatalf("other record changed: want=%+v got=%+v", other, *o)
			}
		}
	}
	if n := len(h.mail.sent()); n != 0 {
		t.Fatalf("non-closing update sent %d emails", n)
	}
}

func TestUpdateObservationClosedSendsEmail(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seed(t, testutil.NewObservation("a", "2025-03-01"))
	all, _ := h.svc.GetAllObservations(ctx)

	if err := h.svc.UpdateObservation(ctx, all[0].ID, "Closed", "Replaced guard"); err != nil {
		t.Fatalf("UpdateObservation: %v", err)
	}
	h.notifier.Wait()

	sent := h.mail.sent()
	if len(sent) != 1 || sent[0].Subject != "Observation Closed" {
		t.Fatalf("closed email: got=%+v", sent)
	}
	if want := "Observation 1 was closed."; sent[0].Text != want {
		t.Fatalf("closed text: want=%q got=%q", want, sent[0].Text)
	}

	open, err := h.svc.GetOpenObservations(ctx)
	if err != nil {
		t.Fatalf("GetOpenObservations: %v", err)
	}
	if len(open) != 0 {
		t.Fatalf("closed record still open: %+v", open)
	}
}

func TestUpdateUnknownIDIsNotAnError(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seed(t, testutil.NewObservation("a", "2025-03-01"))
	before, _ := h.svc.GetAllObservations(ctx)

	if err := h.svc.UpdateObservation(ctx, 999, "Done", "n/a"); err != nil {
		t.Fatalf("UpdateObservation unknown id: %v", err)
	}
	after, _ := h.svc.GetAllObservations(ctx)
	if len(after) != 1 || *after[0] != *before[0] {
		t.Fatalf("records changed: before=%+v after=%+v", before[0], after)
	}
}

func TestOpenIsSubsetOfAll(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for i, status := range []string{"Open", "Closed", "In Progress", "closed", "Closed"} {
		o := testutil.NewObservation(string(rune('a'+i)), "2025-03-01")
		o.Status = status
		h.seed(t, o)
	}

	all, _ := h.svc.GetAllObservations(ctx)
	open, _ := h.svc.GetOpenObservations(ctx)
	if len(open) > len(all) {
		t.Fatalf("|open|=%d > |all|=%d", len(open), len(all))
	}
	want := map[int64]bool{}
	for _, o := range all {
		if o.Status != "Closed" {
			want[o.ID] = true
		}
	}
	if len(open) != len(want) {
		t.Fatalf("open count: want=%d got=%d", len(want), len(open))
	}
	for _, o := range open {
		if !want[o.ID] {
			t.Fatalf("unexpected open record: %+v", o)
		}
	}
}

func TestStoreErrorsSurfaceAsServerErrors(t *testing.T) {
	mail := &recordingMailer{}
	log := testutil.Logger(t)
	n := NewNotifier(log, mail, nil, NotifierConfig{To: []string{"lead@example.com"}})
	svc := NewObservationService(log, failingRepo{err: errStoreDown}, n, fixedClock())
	ctx := context.Background()

	checks := map[string]error{
		"add":    svc.AddObservation(ctx, ObservationInput{Name: "x", Status: "Open"}),
		"update": svc.UpdateObservation(ctx, 1, "Closed", ""),
	}
	_, err := svc.GetAllObservations(ctx)
	checks["all"] = err
	_, err = svc.GetOpenObservations(ctx)
	checks["open"] = err

	for name, err := range checks {
		if !errors.Is(err, errStoreDown) {
			t.Fatalf("%s: want wrapped store error, got=%v", name, err)
		}
		status, code := apierr.StatusOf(err, "internal")
		if status != http.StatusInternalServerError || code != CodeStoreUnavailable {
			t.Fatalf("%s: want=500/%s got=%d/%s", name, CodeStoreUnavailable, status, code)
		}
	}
	n.Wait()
	if len(mail.sent()) != 0 {
		t.Fatalf("failed operations must not notify")
	}
}
