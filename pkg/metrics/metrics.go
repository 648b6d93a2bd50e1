package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Games started, by outcome of the start attempt: ok/failed
	GamesStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radladder_games_started_total",
			Help: "Total number of game start attempts",
		},
		[]string{"status"},
	)

	// Games finished, by result: completed/abandoned/aborted
	GamesFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radladder_games_finished_total",
			Help: "Total number of finished games",
		},
		[]string{"result"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "radladder_active_sessions",
			Help: "Current number of live game sessions",
		},
	)

	// Graded answers, by rung and result: correct/incorrect/timeout
	AnswersGraded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radladder_answers_total",
			Help: "Total number of graded answers",
		},
		[]string{"rung", "result"},
	)

	AnswerSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "radladder_answer_seconds",
			Help:    "Time taken to answer a question",
			Buckets: prometheus.LinearBuckets(0, 5, 7),
		},
	)

	LifelinesUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radladder_lifelines_used_total",
			Help: "Total number of lifelines used",
		},
		[]string{"lifeline"},
	)

	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "radladder_websocket_connections",
			Help: "Current number of open WebSocket connections",
		},
	)
)
