package session

import (
	"context"
	"errors"
	"time"

	"github.com/oggyb/wa-dispatch/internal/cache"
	"github.com/oggyb/wa-dispatch/internal/metrics"
	"github.com/oggyb/wa-dispatch/internal/whatsapp"
	"go.uber.org/zap"
)

// loginCodeTTL matches how long the web client keeps a login code valid
// before rotating it, with some slack.
const loginCodeTTL = time.Minute

// Recorder consumes session events: it logs them and keeps the latest
// status and login code in the cache so the HTTP surface can show them.
type Recorder struct {
	cache  cache.Cache
	logger *zap.Logger
}

// NewRecorder creates a Recorder. c may be nil, in which case events are only logged.
func NewRecorder(c cache.Cache, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{cache: c, logger: logger.Named("session-events")}
}

// Run records events until the channel is closed or ctx is done.
func (r *Recorder) Run(ctx context.Context, events <-chan whatsapp.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			r.Record(ctx, e)
		}
	}
}

// Record handles a single event.
func (r *Recorder) Record(ctx context.Context, e whatsapp.Event) {
	metrics.SessionEvents.WithLabelValues(string(e.Kind)).Inc()

	switch e.Kind {
	case whatsapp.EventLoginCode:
		r.logger.Info("login code issued, scan it with the phone",
			zap.String("session", e.Session),
			zap.Int("attempt", e.Attempt),
			zap.String("urlcode", e.URLCode),
		)
		r.set(ctx, cache.SessionLoginCode.Key(e.Session), e.Code, loginCodeTTL)

	case whatsapp.EventStatus:
		r.logger.Info("session status",
			zap.String("session", e.Session),
			zap.String("status", e.Status),
		)
		r.set(ctx, cache.SessionStatus.Key(e.Session), e.Status, 0)

		if e.Status == whatsapp.StatusConnected && r.cache != nil {
			if err := r.cache.Del(ctx, cache.SessionLoginCode.Key(e.Session)); err != nil {
				r.logger.Warn("failed to clear login code", zap.String("session", e.Session), zap.Error(err))
			}
		}
	}
}

func (r *Recorder) set(ctx context.Context, key, value string, ttl time.Duration) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, key, value, ttl); err != nil {
		r.logger.Warn("failed to cache session event", zap.String("key", key), zap.Error(err))
	}
}

// Lookup returns the last recorded status and the current login code of a
// session. Missing values are returned empty.
func (r *Recorder) Lookup(ctx context.Context, sessionID string) (status, loginCode string, err error) {
	if r.cache == nil {
		return "", "", nil
	}

	status, err = r.cache.Get(ctx, cache.SessionStatus.Key(sessionID))
	if err != nil && !errors.Is(err, cache.ErrNotFound) {
		return "", "", err
	}

	loginCode, err = r.cache.Get(ctx, cache.SessionLoginCode.Key(sessionID))
	if err != nil && !errors.Is(err, cache.ErrNotFound) {
		return "", "", err
	}

	return status, loginCode, nil
}
