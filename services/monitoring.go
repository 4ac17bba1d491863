package services

import (
	"github.com/alphabatem/common/context"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MonitoringService struct {
	context.DefaultService

	HttpRequests        *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	SessionsStarted     prometheus.Counter
	SessionsCompleted   prometheus.Counter
	AchievementsAwarded prometheus.Counter

	RankingRecomputes        *prometheus.CounterVec
	RankingRecomputeDuration *prometheus.HistogramVec
}

const MONITORING_SVC = "monitoring_svc"

func (svc MonitoringService) Id() string {
	return MONITORING_SVC
}

func (svc *MonitoringService) Configure(ctx *context.Context) error {
	svc.HttpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quiz_api_http_requests_total",
		Help: "HTTP requests by method, path and status",
	}, []string{"method", "path", "status"})

	svc.HttpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quiz_api_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	svc.SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quiz_api_sessions_started_total",
		Help: "Quiz sessions started",
	})

	svc.SessionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quiz_api_sessions_completed_total",
		Help: "Quiz sessions completed",
	})

	svc.AchievementsAwarded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quiz_api_achievements_awarded_total",
		Help: "Achievements awarded",
	})

	svc.RankingRecomputes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quiz_api_ranking_recomputes_total",
		Help: "Ranking snapshot recomputations by scope",
	}, []string{"scope"})

	svc.RankingRecomputeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quiz_api_ranking_recompute_duration_seconds",
		Help:    "Ranking recomputation duration by scope",
		Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"scope"})

	return svc.DefaultService.Configure(ctx)
}

func (svc *MonitoringService) Start() error {
	return nil
}
