package service

import (
	"context"
	"fmt"
	"time"

	"github.com/oggyb/wa-dispatch/internal/cache"
	domain "github.com/oggyb/wa-dispatch/internal/domain/dispatch"
	"github.com/oggyb/wa-dispatch/internal/metrics"
	"github.com/oggyb/wa-dispatch/internal/whatsapp"
	"go.uber.org/zap"
)

// saveTimeout bounds the record write.
const saveTimeout = 10 * time.Second

// SessionGate hands out the live WhatsApp session.
type SessionGate interface {
	Ready() bool
	Ensure(ctx context.Context) (whatsapp.Handle, error)
}

type DispatchService interface {
	// Send runs session → dispatch → record for one request. The returned
	// report is never nil and carries the step logs even on failure.
	Send(ctx context.Context, req domain.Request) (*Report, error)

	// List returns a page of recorded outcomes, newest first.
	List(ctx context.Context, page, limit int) ([]*domain.Outcome, int64, error)
}

// Report is what one Send produced.
type Report struct {
	Outcome *domain.Outcome
	Logs    []string
}

type dispatchService struct {
	gate       SessionGate
	dispatcher *Dispatcher
	repo       domain.Repository
	cache      cache.Cache
	logger     *zap.Logger

	failOnTextError bool
}

// NewDispatchService wires the dispatch pipeline. cache may be nil.
//
// failOnTextError decides whether a text the gateway rejected fails the
// whole request. The outcome is recorded either way.
func NewDispatchService(
	gate SessionGate,
	dispatcher *Dispatcher,
	repo domain.Repository,
	cache cache.Cache,
	logger *zap.Logger,
	failOnTextError bool,
) DispatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &dispatchService{
		gate:            gate,
		dispatcher:      dispatcher,
		repo:            repo,
		cache:           cache,
		logger:          logger.Named("dispatch"),
		failOnTextError: failOnTextError,
	}
}

func (s *dispatchService) List(ctx context.Context, page, limit int) ([]*domain.Outcome, int64, error) {
	return s.repo.List(ctx, page, limit)
}

func (s *dispatchService) Send(ctx context.Context, req domain.Request) (*Report, error) {
	rep := &Report{}

	starting := !s.gate.Ready()
	if starting {
		rep.Logs = append(rep.Logs, "Starting WhatsApp session...")
	}

	h, err := s.gate.Ensure(ctx)
	if err != nil {
		return rep, s.fail(rep, "session", req, err)
	}
	if starting {
		rep.Logs = append(rep.Logs, "WhatsApp session started.")
	}

	// Once sending starts the request may go away; the sends and the record
	// still complete. Each send is bounded by the dispatcher's timeout.
	work := context.WithoutCancel(ctx)

	out, logs, err := s.dispatcher.Dispatch(work, h, req)
	rep.Logs = append(rep.Logs, logs...)
	if err != nil {
		return rep, s.fail(rep, "dispatch", req, err)
	}
	rep.Outcome = out

	saveCtx, cancel := context.WithTimeout(work, saveTimeout)
	defer cancel()

	if err := s.repo.Save(saveCtx, out); err != nil {
		return rep, s.fail(rep, "persist", req, &PersistenceError{Outcome: out, Err: err})
	}

	metrics.Dispatches.WithLabelValues(string(out.Text.Status), string(out.Image.Status)).Inc()
	s.logger.Info("dispatch recorded",
		zap.String("id", out.ID.String()),
		zap.String("destination", out.Destination),
		zap.String("text_status", string(out.Text.Status)),
		zap.String("image_status", string(out.Image.Status)),
	)

	s.rememberLast(saveCtx, out)

	if s.failOnTextError && !out.Delivered() {
		return rep, s.fail(rep, "delivery", req, ErrTextNotDelivered)
	}

	return rep, nil
}

func (s *dispatchService) fail(rep *Report, stage string, req domain.Request, err error) error {
	metrics.DispatchFailures.WithLabelValues(stage).Inc()
	s.logger.Error("send failed",
		zap.String("stage", stage),
		zap.String("destination", req.Destination),
		zap.Error(err),
	)
	rep.Logs = append(rep.Logs, fmt.Sprintf("Error sending message: %v", err))
	return err
}

// rememberLast caches the latest record ID per destination. Best effort.
func (s *dispatchService) rememberLast(ctx context.Context, out *domain.Outcome) {
	if s.cache == nil {
		return
	}
	key := cache.LastDispatch.Key(out.Destination)
	if err := s.cache.Set(ctx, key, out.ID.String(), 24*time.Hour); err != nil {
		s.logger.Warn("failed to cache last dispatch", zap.String("key", key), zap.Error(err))
	}
}
