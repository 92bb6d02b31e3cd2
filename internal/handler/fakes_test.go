package handler

import (
	"context"
	"errors"
	"io"
	"sync"

	domain "github.com/oggyb/wa-dispatch/internal/domain/dispatch"
	"github.com/oggyb/wa-dispatch/internal/upload"
	"github.com/oggyb/wa-dispatch/internal/whatsapp"
)

type fakeHandle struct {
	mu         sync.Mutex
	texts      []string
	images     []string
	textResult whatsapp.Result
	textErr    error
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{textResult: whatsapp.Ok([]byte(`{"id":"text-1"}`))}
}

func (h *fakeHandle) SendText(ctx context.Context, address, text string) (whatsapp.Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.texts = append(h.texts, address)
	return h.textResult, h.textErr
}

func (h *fakeHandle) SendImage(ctx context.Context, address, filePath, caption string) (whatsapp.Result, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.images = append(h.images, filePath)
	return whatsapp.Ok([]byte(`{"id":"image-1"}`)), nil
}

func (h *fakeHandle) Status(ctx context.Context) (string, error) {
	return whatsapp.StatusConnected, nil
}

type fakeGate struct {
	handle whatsapp.Handle
	ready  bool
	err    error
}

func (g *fakeGate) SessionID() string { return "sessionName" }
func (g *fakeGate) Ready() bool       { return g.ready }

func (g *fakeGate) Ensure(ctx context.Context) (whatsapp.Handle, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.ready = true
	return g.handle, nil
}

type fakeRepo struct {
	mu    sync.Mutex
	saved []*domain.Outcome
	err   error
}

func (r *fakeRepo) Save(ctx context.Context, o *domain.Outcome) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, o)
	return nil
}

func (r *fakeRepo) List(ctx context.Context, page, limit int) ([]*domain.Outcome, int64, error) {
	if r.err != nil {
		return nil, 0, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saved, int64(len(r.saved)), nil
}

// failingUploader rejects every upload.
type failingUploader struct{}

func (failingUploader) Save(originalName string, r io.Reader) (upload.Stored, error) {
	return upload.Stored{}, &upload.Error{Name: originalName, Err: errors.New("disk full")}
}

type fakeMonitor struct {
	running bool
	err     error
}

func (m *fakeMonitor) Start() error {
	if m.err != nil {
		return m.err
	}
	m.running = true
	return nil
}

func (m *fakeMonitor) Stop() error {
	if m.err != nil {
		return m.err
	}
	m.running = false
	return nil
}

func (m *fakeMonitor) IsRunning() bool { return m.running }

type fakeLookup struct {
	status, code string
	err          error
}

func (l fakeLookup) Lookup(ctx context.Context, sessionID string) (string, string, error) {
	return l.status, l.code, l.err
}
