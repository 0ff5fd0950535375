package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	EventsConsumed     prometheus.Counter
	EventsDropped      prometheus.Counter
	EventDuration      prometheus.Histogram
	GamesRequested     prometheus.Counter
	BroadcastsSent     prometheus.Counter
	BroadcastsFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}
