// Package session owns the single WhatsApp session of the process.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oggyb/wa-dispatch/internal/metrics"
	"github.com/oggyb/wa-dispatch/internal/whatsapp"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultStartTimeout bounds a session start when none is configured.
const DefaultStartTimeout = 2 * time.Minute

// InitializationError is returned when the session could not be started.
type InitializationError struct {
	Session string
	Err     error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("whatsapp session %q failed to start: %v", e.Session, e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

// Options configure a Gate.
type Options struct {
	SessionID    string
	Start        whatsapp.StartOptions
	StartTimeout time.Duration

	// AutoStart makes Probe start the session when none exists yet.
	AutoStart bool
}

// Gate lazily creates the session handle exactly once.
//
// Concurrent callers that arrive while a start is in flight wait for that
// same start instead of launching their own.
type Gate struct {
	client whatsapp.Client
	events *whatsapp.Bus
	opts   Options
	logger *zap.Logger

	group singleflight.Group

	mu     sync.RWMutex
	handle whatsapp.Handle
}

// NewGate creates a Gate. events may be nil.
func NewGate(client whatsapp.Client, events *whatsapp.Bus, opts Options, logger *zap.Logger) *Gate {
	if opts.StartTimeout <= 0 {
		opts.StartTimeout = DefaultStartTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		client: client,
		events: events,
		opts:   opts,
		logger: logger.Named("session"),
	}
}

// SessionID returns the id of the managed session.
func (g *Gate) SessionID() string { return g.opts.SessionID }

// Ready reports whether a handle exists.
func (g *Gate) Ready() bool {
	return g.current() != nil
}

func (g *Gate) current() whatsapp.Handle {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.handle
}

// Ensure returns the session handle, starting the session on first use.
//
// The start runs detached from ctx, bounded by the start timeout, so one
// caller giving up does not fail the others waiting on it. A failed start
// is not remembered; the next call tries again.
func (g *Gate) Ensure(ctx context.Context) (whatsapp.Handle, error) {
	if h := g.current(); h != nil {
		return h, nil
	}

	ch := g.group.DoChan(g.opts.SessionID, func() (interface{}, error) {
		// A start that finished between current() and DoChan already stored the handle.
		if h := g.current(); h != nil {
			return h, nil
		}
		return g.start(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, &InitializationError{Session: g.opts.SessionID, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(whatsapp.Handle), nil
	}
}

func (g *Gate) start(parent context.Context) (whatsapp.Handle, error) {
	ctx, cancel := context.WithTimeout(parent, g.opts.StartTimeout)
	defer cancel()

	begin := time.Now()
	g.logger.Info("starting whatsapp session",
		zap.String("session", g.opts.SessionID),
		zap.Duration("timeout", g.opts.StartTimeout),
	)

	h, err := g.client.Start(ctx, g.opts.SessionID, g.events, g.opts.Start)
	if err == nil && h == nil {
		err = fmt.Errorf("client returned no handle")
	}
	if err != nil {
		metrics.SessionStarts.WithLabelValues("failed").Inc()
		g.logger.Error("whatsapp session failed to start",
			zap.String("session", g.opts.SessionID),
			zap.Duration("duration", time.Since(begin)),
			zap.Error(err),
		)
		return nil, &InitializationError{Session: g.opts.SessionID, Err: err}
	}

	g.mu.Lock()
	g.handle = h
	g.mu.Unlock()

	metrics.SessionStarts.WithLabelValues("started").Inc()
	g.logger.Info("whatsapp session started",
		zap.String("session", g.opts.SessionID),
		zap.Duration("duration", time.Since(begin)),
	)
	return h, nil
}

// Probe refreshes the session state. Without a handle it starts the session
// when AutoStart is set; with one it asks for the current status and
// publishes it.
func (g *Gate) Probe(ctx context.Context) error {
	h := g.current()
	if h == nil {
		if !g.opts.AutoStart {
			return nil
		}
		_, err := g.Ensure(ctx)
		return err
	}

	status, err := h.Status(ctx)
	if err != nil {
		return fmt.Errorf("probe session %s: %w", g.opts.SessionID, err)
	}

	g.events.Publish(whatsapp.Event{
		Kind:    whatsapp.EventStatus,
		Session: g.opts.SessionID,
		Status:  status,
	})
	return nil
}
