// Package monitor periodically probes the WhatsApp session in the background.
package monitor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Prober is the dependency that actually does the work.
// The monitor calls Probe on a fixed interval.
type Prober interface {
	Probe(ctx context.Context) error
}

// Service exposes a small control surface for the monitor.
// Start/Stop are synchronous controls, and IsRunning reports
// whether the monitor is currently accepting ticks.
type Service interface {
	Start() error
	Stop() error
	IsRunning() bool
}

// DefaultInterval is used when no custom interval is provided.
const DefaultInterval = 30 * time.Second

// DefaultProbeTimeout is how long a single probe may run before its
// context is cancelled. It must cover a full session start.
const DefaultProbeTimeout = 3 * time.Minute

// controlTimeout is how long we wait for the control loop to
// accept a command. This protects callers from hanging forever
// if the loop is not running.
const controlTimeout = 2 * time.Second

type controlOp int

const (
	opStart controlOp = iota
	opStop
	opStatus
)

// controlMsg is sent over the ctrl channel to drive the monitor's state.
type controlMsg struct {
	op   controlOp
	resp chan bool
}

// monitorService owns the internal state and runs the control loop.
// All mutable state lives in the loop goroutine, so we don't need locks.
type monitorService struct {
	prober       Prober
	interval     time.Duration
	probeTimeout time.Duration
	ctrl         chan controlMsg
	logger       *zap.Logger
}

// New creates a monitor with the given interval and probe timeout.
// If any of them is <= 0, defaults are used instead.
func New(prober Prober, interval, probeTimeout time.Duration, logger *zap.Logger) Service {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if probeTimeout <= 0 {
		probeTimeout = DefaultProbeTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &monitorService{
		prober:       prober,
		interval:     interval,
		probeTimeout: probeTimeout,
		ctrl:         make(chan controlMsg),
		logger:       logger.Named("monitor"),
	}

	// The control loop lives for the lifetime of the process.
	go s.loop()

	return s
}

// Start tells the monitor to begin probing. The first probe runs right away.
func (s *monitorService) Start() error {
	return s.send(opStart, controlTimeout)
}

// Stop tells the monitor to stop accepting new ticks. If a probe is running,
// Stop waits until it finishes (or times out).
func (s *monitorService) Stop() error {
	return s.send(opStop, s.probeTimeout+controlTimeout)
}

// IsRunning reports whether the monitor is currently in "running" mode.
func (s *monitorService) IsRunning() bool {
	resp := make(chan bool, 1)
	select {
	case s.ctrl <- controlMsg{op: opStatus, resp: resp}:
	case <-time.After(controlTimeout):
		return false
	}
	return <-resp
}

func (s *monitorService) send(op controlOp, ackTimeout time.Duration) error {
	resp := make(chan bool, 1)

	select {
	case s.ctrl <- controlMsg{op: op, resp: resp}:
	case <-time.After(controlTimeout):
		return fmt.Errorf("monitor: control loop not responding")
	}

	select {
	case <-resp:
		return nil
	case <-time.After(ackTimeout):
		return fmt.Errorf("monitor: acknowledgement timeout")
	}
}

// loop reacts to control messages, ticks and probe completions.
func (s *monitorService) loop() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	running := false
	inProbe := false
	probeDone := make(chan error, 1)

	// pendingStops are completed once the running probe finishes.
	var pendingStops []chan bool

	trigger := func() {
		if !running || inProbe {
			return
		}
		inProbe = true
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.probeTimeout)
			defer cancel()
			probeDone <- s.prober.Probe(ctx)
		}()
	}

	for {
		select {
		case msg := <-s.ctrl:
			switch msg.op {
			case opStart:
				if !running {
					s.logger.Info("started",
						zap.Duration("interval", s.interval),
						zap.Duration("probe_timeout", s.probeTimeout),
					)
					running = true
					trigger()
				}
				msg.resp <- true

			case opStop:
				if running {
					s.logger.Info("stop requested")
				}
				running = false

				if inProbe {
					pendingStops = append(pendingStops, msg.resp)
				} else {
					msg.resp <- true
				}

			case opStatus:
				msg.resp <- running
			}

		case <-ticker.C:
			trigger()

		case err := <-probeDone:
			inProbe = false
			if err != nil {
				s.logger.Warn("probe failed", zap.Error(err))
			}

			for _, resp := range pendingStops {
				resp <- true
			}
			if len(pendingStops) > 0 {
				s.logger.Info("stopped")
			}
			pendingStops = nil
		}
	}
}

// StopContext stops s but returns ctx.Err() if ctx ends first. The stop
// itself keeps going in the background.
func StopContext(ctx context.Context, s Service) error {
	stopped := make(chan error, 1)
	go func() { stopped <- s.Stop() }()

	select {
	case err := <-stopped:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
