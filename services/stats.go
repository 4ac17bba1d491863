package services

import (
	"bytes"
	ctx "context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/quizforge/quiz_api/model"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
)

// StatsService forwards completed-session summaries to the external stats
// collector. Events go through a redis stream outbox consumed by a background
// worker with retries, so a stats outage never blocks or fails a completion.
// When redis is down the event is delivered directly on a best-effort
// goroutine instead.
type StatsService struct {
	context.DefaultService

	redis *RedisService

	baseURL string
	client  *http.Client
	stop    chan struct{}
}

const STATS_SVC = "stats_svc"

const statsStream = "quiz:completed"

type quizCompletedEvent struct {
	SessionID    string    `json:"session_id"`
	UserID       string    `json:"user_id"`
	QuizID       string    `json:"quiz_id"`
	Category     string    `json:"category"`
	Score        int       `json:"score"`
	MaxScore     int       `json:"max_score"`
	Accuracy     float64   `json:"accuracy"`
	PerfectScore bool      `json:"perfect_score"`
	SpeedBonus   bool      `json:"speed_bonus"`
	TimeSpent    int       `json:"time_spent"`
	FirstAttempt bool      `json:"first_attempt"`
	CompletedAt  time.Time `json:"completed_at"`
}

func (svc StatsService) Id() string {
	return STATS_SVC
}

func (svc *StatsService) Configure(c *context.Context) error {
	svc.baseURL = os.Getenv("STATS_SERVICE_URL")
	svc.client = &http.Client{Timeout: 10 * time.Second}
	svc.stop = make(chan struct{})
	return svc.DefaultService.Configure(c)
}

func (svc *StatsService) Start() error {
	svc.redis = svc.Service(REDIS_SVC).(*RedisService)

	if svc.baseURL == "" {
		log.Warn("STATS_SERVICE_URL not set, completion stats disabled")
		return nil
	}

	go svc.runConsumer()
	return nil
}

func (svc *StatsService) Shutdown() {
	close(svc.stop)
}

// EnqueueQuizCompleted records the event in the outbox. The caller's
// Authorization header travels with the event so the collector sees the
// original identity.
func (svc *StatsService) EnqueueQuizCompleted(session *model.QuizSession, quiz *model.Quiz, authHeader string) error {
	if svc.baseURL == "" {
		return nil
	}

	event := quizCompletedEvent{
		SessionID:    session.ID,
		UserID:       session.UserID,
		QuizID:       session.QuizID,
		Category:     quiz.Category,
		Score:        session.Score,
		MaxScore:     session.MaxScore,
		Accuracy:     session.Accuracy,
		PerfectScore: session.PerfectScore,
		SpeedBonus:   session.SpeedBonus,
		TimeSpent:    session.TimeSpent,
		FirstAttempt: session.FirstAttempt,
	}
	if session.CompletedAt != nil {
		event.CompletedAt = *session.CompletedAt
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if svc.redis != nil && svc.redis.Available() {
		return svc.redis.PublishStream(ctx.Background(), statsStream, map[string]interface{}{
			"payload": string(payload),
			"auth":    authHeader,
		})
	}

	// No outbox available; deliver directly without blocking the caller.
	go func() {
		if err := svc.deliver(payload, authHeader); err != nil {
			log.WithError(err).Warn("Direct stats delivery failed")
		}
	}()
	return nil
}

func (svc *StatsService) runConsumer() {
	lastID := "0"
	for {
		select {
		case <-svc.stop:
			return
		default:
		}

		messages, err := svc.redis.ReadStream(ctx.Background(), statsStream, lastID, 5*time.Second)
		if err != nil {
			time.Sleep(5 * time.Second)
			continue
		}

		for _, msg := range messages {
			lastID = msg.ID
			payload, _ := msg.Values["payload"].(string)
			auth, _ := msg.Values["auth"].(string)
			if payload == "" {
				svc.redis.DeleteStreamEntries(ctx.Background(), statsStream, msg.ID)
				continue
			}

			if err := svc.deliverWithRetry([]byte(payload), auth); err != nil {
				log.WithError(err).WithField("entry", msg.ID).
					Error("Dropping stats event after retries")
			}
			svc.redis.DeleteStreamEntries(ctx.Background(), statsStream, msg.ID)
		}
	}
}

func (svc *StatsService) deliverWithRetry(payload []byte, authHeader string) error {
	backoff := time.Second
	var err error
	for attempt := 0; attempt < 5; attempt++ {
		if err = svc.deliver(payload, authHeader); err == nil {
			return nil
		}
		select {
		case <-svc.stop:
			return err
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}

func (svc *StatsService) deliver(payload []byte, authHeader string) error {
	req, err := http.NewRequest(http.MethodPost, svc.baseURL+"/stats/quiz-completed", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	resp, err := svc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return &statsDeliveryError{status: resp.StatusCode}
	}
	return nil
}

type statsDeliveryError struct {
	status int
}

func (e *statsDeliveryError) Error() string {
	return fmt.Sprintf("stats service returned %d", e.status)
}
