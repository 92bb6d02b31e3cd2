package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oggyb/wa-dispatch/internal/cache"
	domain "github.com/oggyb/wa-dispatch/internal/domain/dispatch"
	"github.com/oggyb/wa-dispatch/internal/whatsapp"
)

// call records one invocation on fakeHandle.
type call struct {
	op      string
	address string
	arg     string
	caption string
}

// fakeHandle records calls in order and returns canned results.
type fakeHandle struct {
	mu    sync.Mutex
	calls []call

	textResult  whatsapp.Result
	textErr     error
	imageResult whatsapp.Result
	imageErr    error

	// afterText runs once the text send returned.
	afterText func()
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{
		textResult:  whatsapp.Ok([]byte(`{"id":"text-1"}`)),
		imageResult: whatsapp.Ok([]byte(`{"id":"image-1"}`)),
	}
}

func (h *fakeHandle) SendText(ctx context.Context, address, text string) (whatsapp.Result, error) {
	h.mu.Lock()
	h.calls = append(h.calls, call{op: "text", address: address, arg: text})
	h.mu.Unlock()
	if h.afterText != nil {
		defer h.afterText()
	}
	return h.textResult, h.textErr
}

func (h *fakeHandle) SendImage(ctx context.Context, address, filePath, caption string) (whatsapp.Result, error) {
	h.mu.Lock()
	h.calls = append(h.calls, call{op: "image", address: address, arg: filePath, caption: caption})
	h.mu.Unlock()
	return h.imageResult, h.imageErr
}

func (h *fakeHandle) Status(ctx context.Context) (string, error) {
	return whatsapp.StatusConnected, nil
}

func (h *fakeHandle) Calls() []call {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]call(nil), h.calls...)
}

// fakeGate hands out a fixed handle, or err.
type fakeGate struct {
	handle whatsapp.Handle
	ready  bool
	err    error
}

func (g *fakeGate) Ready() bool { return g.ready }

func (g *fakeGate) Ensure(ctx context.Context) (whatsapp.Handle, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.ready = true
	return g.handle, nil
}

// fakeRepo keeps saved outcomes in memory.
type fakeRepo struct {
	mu    sync.Mutex
	saved []*domain.Outcome
	err   error
}

func (r *fakeRepo) Save(ctx context.Context, o *domain.Outcome) error {
	if r.err != nil {
		return r.err
	}
	// Like a database driver, refuse to write on a finished context.
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, o)
	return nil
}

func (r *fakeRepo) List(ctx context.Context, page, limit int) ([]*domain.Outcome, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saved, int64(len(r.saved)), nil
}

// memCache is a map-backed cache.Cache.
type memCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemCache() *memCache { return &memCache{data: map[string]string{}} }

func (m *memCache) Ping(ctx context.Context) error { return nil }

func (m *memCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", cache.ErrNotFound
	}
	return v, nil
}

func (m *memCache) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

var errBoom = errors.New("boom")
