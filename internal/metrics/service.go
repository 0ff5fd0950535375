package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		EventsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arena_game_events_consumed_total",
			Help: "The total number of game lifecycle events consumed from the queue.",
		}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arena_game_events_dropped_total",
			Help: "The total number of queue messages dropped (malformed or unknown match).",
		}),
		EventDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "arena_game_event_processing_duration_seconds",
			Help:    "The duration of individual game event processing.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		GamesRequested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arena_games_requested_total",
			Help: "The total number of create_game requests published to the queue.",
		}),
		BroadcastsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arena_broadcasts_sent_total",
			Help: "The total number of group broadcasts successfully sent.",
		}),
		BroadcastsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arena_broadcasts_failed_total",
			Help: "The total number of group broadcasts that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "arena_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.EventsConsumed,
		s.EventsDropped,
		s.EventDuration,
		s.GamesRequested,
		s.BroadcastsSent,
		s.BroadcastsFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncEventsConsumed() {
	s.EventsConsumed.Inc()
}

func (s *Service) IncEventsDropped() {
	s.EventsDropped.Inc()
}

func (s *Service) ObserveEventDuration(duration float64) {
	s.EventDuration.Observe(duration)
}

func (s *Service) IncGamesRequested() {
	s.GamesRequested.Inc()
}

func (s *Service) IncBroadcastsSent() {
	s.BroadcastsSent.Inc()
}

func (s *Service) IncBroadcastsFailed() {
	s.BroadcastsFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
