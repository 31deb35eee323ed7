package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PushMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_messages_sent_total",
			Help: "Total number of push deliveries by result",
		},
		[]string{"result"},
	)

	PushSubscriptionsRemoved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_subscriptions_removed_total",
			Help: "Total number of subscriptions removed by reason",
		},
		[]string{"reason"},
	)

	PushSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "push_subscriptions",
			Help: "Number of stored push subscriptions seen by the last send or prune",
		},
	)

	PushDeliveryDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "push_delivery_duration_seconds",
			Help: "Duration of a single push delivery to the push service",
		},
	)
)
