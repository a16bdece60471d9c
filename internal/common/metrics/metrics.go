// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sas_requests_registered_total",
			Help: "Total number of correlation tokens handed out",
		},
	)

	RequestsSettled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sas_requests_settled_total",
			Help: "Total number of pending requests settled, by outcome",
		},
		[]string{"outcome"}, // resolved, expired, discarded
	)

	RequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sas_requests_in_flight",
			Help: "Number of requests awaiting a reply",
		},
	)

	UnknownReplies = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sas_replies_unknown_token_total",
			Help: "Replies dropped because their token was not pending",
		},
	)

	MalformedMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sas_messages_malformed_total",
			Help: "Inbound messages dropped because they could not be parsed",
		},
	)

	ChannelMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sas_channel_messages_total",
			Help: "Messages moved over the channel, by direction",
		},
		[]string{"direction"}, // in, out
	)
)

// Outcome labels for RequestsSettled.
const (
	OutcomeResolved  = "resolved"
	OutcomeExpired   = "expired"
	OutcomeDiscarded = "discarded"
)
