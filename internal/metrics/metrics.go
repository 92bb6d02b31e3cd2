// Package metrics declares the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Dispatches counts completed dispatches by text and image status.
	Dispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wa_dispatches_total",
			Help: "Total number of completed dispatches",
		},
		[]string{"text_status", "image_status"},
	)

	// DispatchFailures counts requests that failed, by pipeline stage.
	DispatchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wa_dispatch_failures_total",
			Help: "Total number of failed send requests by stage",
		},
		[]string{"stage"},
	)

	// SendDuration observes each call to the gateway's send actions.
	SendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wa_send_duration_seconds",
			Help:    "Duration of gateway send calls",
			Buckets: []float64{.1, .25, .5, 1, 2, 5, 10, 30},
		},
		[]string{"step"},
	)

	// SessionStarts counts session start attempts by result.
	SessionStarts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wa_session_starts_total",
			Help: "Total number of session start attempts",
		},
		[]string{"result"},
	)

	// SessionEvents counts events published by the session.
	SessionEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wa_session_events_total",
			Help: "Total number of session events",
		},
		[]string{"kind"},
	)
)
