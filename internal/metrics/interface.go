package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncEventsConsumed()
	IncEventsDropped()
	ObserveEventDuration(duration float64)
	IncGamesRequested()
	IncBroadcastsSent()
	IncBroadcastsFailed()
	SetStartupTime(duration float64)
}
