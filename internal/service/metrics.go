package service

import "github.com/prometheus/client_golang/prometheus"

var authEvents = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "auth_events_total", Help: "Authentication events by outcome"},
	[]string{"event", "outcome"},
)

func init() { prometheus.MustRegister(authEvents) }

func authEvent(event, outcome string) { authEvents.WithLabelValues(event, outcome).Inc() }
