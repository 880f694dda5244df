// Package metrics holds the Prometheus collectors of the capture and delivery path.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Skip reasons
const (
	SkipOngoing    = "ongoing"
	SkipNotAllowed = "not_allowed"
	SkipEmpty      = "empty"
)

// Route outcomes
const (
	RouteLive     = "live"
	RouteBuffered = "buffered"
)

// Fallback send outcomes
const (
	FallbackOK      = "ok"
	FallbackError   = "error"
	FallbackSkipped = "skipped"
)

var (
	NotificationsReceived = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "msgmirror_notifications_received_total",
		Help: "Total number of raw notifications handed to the capture listener.",
	})
	NotificationsSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "msgmirror_notifications_skipped_total",
		Help: "Raw notifications dropped before routing, labeled by reason.",
	}, []string{"reason"})
	EventsRouted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "msgmirror_events_routed_total",
		Help: "Events routed, labeled by path (live or buffered).",
	}, []string{"path"})
	FallbackSends = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "msgmirror_fallback_sends_total",
		Help: "HTTP fallback send attempts, labeled by outcome.",
	}, []string{"outcome"})
	SmsForwarded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "msgmirror_sms_forwarded_total",
		Help: "Inbound SMS rows forwarded to a live consumer.",
	})
	PendingEvents = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "msgmirror_pending_events",
		Help: "Events waiting in the pending buffer for a live consumer.",
	})
)

func init() {
	prometheus.MustRegister(
		NotificationsReceived,
		NotificationsSkipped,
		EventsRouted,
		FallbackSends,
		SmsForwarded,
		PendingEvents,
	)
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
