package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oggyb/wa-dispatch/internal/cache"
	domain "github.com/oggyb/wa-dispatch/internal/domain/dispatch"
	"github.com/oggyb/wa-dispatch/internal/session"
	"github.com/oggyb/wa-dispatch/internal/whatsapp"
)

func newTestService(gate SessionGate, repo domain.Repository, c cache.Cache, failOnTextError bool) DispatchService {
	return NewDispatchService(gate, NewDispatcher("Image from website", time.Second), repo, c, nil, failOnTextError)
}

func TestSend_TextOnlyIsRecorded(t *testing.T) {
	h := newFakeHandle()
	repo := &fakeRepo{}
	c := newMemCache()
	svc := newTestService(&fakeGate{handle: h}, repo, c, false)

	rep, err := svc.Send(context.Background(), mustRequest(t, "15551234567", "hello"))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if len(repo.saved) != 1 {
		t.Fatalf("saved %d outcomes, want 1", len(repo.saved))
	}
	got := repo.saved[0]
	if got.Text.Status != domain.StatusSent || got.Image.Status != domain.StatusNotSent {
		t.Errorf("outcome = %+v", got)
	}
	if rep.Outcome != got {
		t.Errorf("report outcome should be the saved outcome")
	}

	wantLogs := 3 // starting, started, message sent
	if len(rep.Logs) != wantLogs {
		t.Errorf("logs = %v, want %d entries", rep.Logs, wantLogs)
	}

	if id, _ := c.Get(context.Background(), cache.LastDispatch.Key("15551234567")); id != got.ID.String() {
		t.Errorf("last dispatch cache = %q, want %q", id, got.ID.String())
	}
}

func TestSend_ReadySessionSkipsStartLogs(t *testing.T) {
	svc := newTestService(&fakeGate{handle: newFakeHandle(), ready: true}, &fakeRepo{}, nil, false)

	rep, err := svc.Send(context.Background(), mustRequest(t, "15551234567", "hello"))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(rep.Logs) != 1 {
		t.Errorf("logs = %v, want only the send log", rep.Logs)
	}
}

func TestSend_SessionFailure(t *testing.T) {
	initErr := &session.InitializationError{Session: "s1", Err: errBoom}
	repo := &fakeRepo{}
	svc := newTestService(&fakeGate{err: initErr}, repo, nil, false)

	rep, err := svc.Send(context.Background(), mustRequest(t, "15551234567", "hello"))

	var got *session.InitializationError
	if !errors.As(err, &got) {
		t.Fatalf("expected InitializationError, got %T: %v", err, err)
	}
	if len(repo.saved) != 0 {
		t.Errorf("nothing should be recorded when the session fails")
	}
	if rep == nil || len(rep.Logs) == 0 {
		t.Fatalf("report should carry logs on failure")
	}
}

func TestSend_DispatchErrorIsNotRecorded(t *testing.T) {
	h := newFakeHandle()
	h.textErr = errBoom
	repo := &fakeRepo{}
	svc := newTestService(&fakeGate{handle: h, ready: true}, repo, nil, false)

	_, err := svc.Send(context.Background(), mustRequest(t, "15551234567", "hello"))

	var dErr *DispatchError
	if !errors.As(err, &dErr) {
		t.Fatalf("expected DispatchError, got %T: %v", err, err)
	}
	if len(repo.saved) != 0 {
		t.Errorf("a thrown send must not be recorded")
	}
}

func TestSend_PersistenceErrorAfterDelivery(t *testing.T) {
	h := newFakeHandle()
	repo := &fakeRepo{err: errBoom}
	svc := newTestService(&fakeGate{handle: h, ready: true}, repo, nil, false)

	rep, err := svc.Send(context.Background(), mustRequest(t, "15551234567", "hello"))

	var pErr *PersistenceError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PersistenceError, got %T: %v", err, err)
	}
	if len(h.Calls()) != 1 {
		t.Errorf("the message should have been sent before the record failed")
	}
	if rep.Outcome == nil || !rep.Outcome.Delivered() {
		t.Errorf("report should carry the delivered outcome")
	}
}

func TestSend_TextRejected(t *testing.T) {
	t.Run("lenient", func(t *testing.T) {
		h := newFakeHandle()
		h.textResult = whatsapp.Err("not on whatsapp", nil)
		repo := &fakeRepo{}
		svc := newTestService(&fakeGate{handle: h, ready: true}, repo, nil, false)

		rep, err := svc.Send(context.Background(), mustRequest(t, "15551234567", "hello"))
		if err != nil {
			t.Fatalf("Send: %v", err)
		}
		if rep.Outcome.Text.Status != domain.StatusFailed {
			t.Errorf("text status = %q, want failed", rep.Outcome.Text.Status)
		}
		if len(repo.saved) != 1 {
			t.Errorf("outcome should be recorded")
		}
	})

	t.Run("strict", func(t *testing.T) {
		h := newFakeHandle()
		h.textResult = whatsapp.Err("not on whatsapp", nil)
		repo := &fakeRepo{}
		svc := newTestService(&fakeGate{handle: h, ready: true}, repo, nil, true)

		_, err := svc.Send(context.Background(), mustRequest(t, "15551234567", "hello"))
		if !errors.Is(err, ErrTextNotDelivered) {
			t.Fatalf("expected ErrTextNotDelivered, got %v", err)
		}
		if len(repo.saved) != 1 {
			t.Errorf("outcome should still be recorded in strict mode")
		}
	})
}

func TestSend_RecordedAfterCallerGoesAway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := newFakeHandle()
	h.afterText = cancel
	repo := &fakeRepo{}
	svc := newTestService(&fakeGate{handle: h, ready: true}, repo, nil, false)

	req := mustRequest(t, "15551234567", "hello").WithImage("/public/uploads/x.png", "/tmp/x.png")
	rep, err := svc.Send(ctx, req)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if ctx.Err() == nil {
		t.Fatal("caller context should have been cancelled during the send")
	}

	if len(h.Calls()) != 2 {
		t.Errorf("calls = %d, want text and image", len(h.Calls()))
	}
	if len(repo.saved) != 1 {
		t.Fatalf("records = %d, want 1", len(repo.saved))
	}
	if rep.Outcome.Image.Status != domain.StatusSent {
		t.Errorf("image status = %q", rep.Outcome.Image.Status)
	}
}
