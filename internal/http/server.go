package http

import (
	"net/http"

	"github.com/openbracket/arena/internal/config"
	"github.com/openbracket/arena/internal/engine"
	"github.com/openbracket/arena/internal/lobby"
	"github.com/openbracket/arena/internal/metrics"
	"github.com/openbracket/arena/internal/notify"
	"github.com/openbracket/arena/internal/tournament"
)

func NewServer(lobbySvc *lobby.Service, eng *engine.Engine, matches tournament.MatchStore, hub *notify.Hub, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config) *Server {
	server := &Server{
		Lobby:          lobbySvc,
		Engine:         eng,
		Matches:        matches,
		Hub:            hub,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Router:         http.NewServeMux(),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), paramsMiddleware))

	s.Router.Handle("POST /rooms", Chain(s.CreateRoomHandler(), paramsMiddleware))
	s.Router.Handle("GET /rooms/{code}", Chain(s.GetRoomHandler(), paramsMiddleware))
	s.Router.Handle("GET /rooms/{code}/status", Chain(s.RoomStatusHandler(), paramsMiddleware))
	s.Router.Handle("DELETE /rooms/{code}", Chain(s.DeleteRoomHandler(), paramsMiddleware))
	s.Router.Handle("POST /rooms/{code}/join", Chain(s.JoinRoomHandler(), paramsMiddleware))
	s.Router.Handle("POST /rooms/{code}/leave", Chain(s.LeaveRoomHandler(), paramsMiddleware))
	s.Router.Handle("POST /rooms/{code}/start", Chain(s.StartRoomHandler(), paramsMiddleware))
	s.Router.Handle("GET /rooms/{code}/matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("POST /rooms/{code}/score", Chain(s.UpdateScoreHandler(), paramsMiddleware))

	s.Router.Handle("GET /ws/{group}", s.SubscribeHandler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
