package engine

import (
	"github.com/openbracket/arena/internal/metrics"
	"github.com/openbracket/arena/internal/queue"
)

// Engine handles the business logic of starting rooms and advancing
// brackets as game lifecycle events arrive.
type Engine struct {
	rooms    RoomStore
	matches  MatchStore
	notifier Notifier
	producer queue.Producer
	metrics  metrics.Metrics
}
