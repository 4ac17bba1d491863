package services

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/quizforge/quiz_api/model"
	"github.com/quizforge/quiz_api/shared"
)

func newTestPostgres(t *testing.T) *PostgresService {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := OpenSqlite(dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	return &PostgresService{db: db}
}

func createTestUser(t *testing.T, ps *PostgresService, username string) *model.User {
	t.Helper()

	user, err := ps.CreateUser(&model.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		Role:         shared.RoleUser,
		IsActive:     true,
		Level:        1,
	})
	if err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	return user
}

type testQuestion struct {
	qType   string
	correct []string
	points  int
}

func createTestQuiz(t *testing.T, ps *PostgresService, category string, questions ...testQuestion) *model.Quiz {
	t.Helper()

	quiz := &model.Quiz{
		Title:        "Test Quiz",
		Category:     category,
		CreatorID:    "creator",
		PassingScore: 50,
		IsActive:     true,
		IsPublic:     true,
	}

	for i, q := range questions {
		correct, err := json.Marshal(q.correct)
		if err != nil {
			t.Fatalf("failed to marshal correct answers: %v", err)
		}
		options := correct
		if q.qType == shared.QuestionTypeSingle || q.qType == shared.QuestionTypeMultiple {
			all := append([]string{}, q.correct...)
			all = append(all, "wrong-option")
			options, _ = json.Marshal(all)
		}
		quiz.Questions = append(quiz.Questions, model.Question{
			Type:           q.qType,
			Text:           fmt.Sprintf("Question %d", i+1),
			Options:        options,
			CorrectAnswers: correct,
			Points:         q.points,
			Position:       i,
		})
	}

	created, err := ps.CreateQuiz(quiz)
	if err != nil {
		t.Fatalf("failed to create quiz: %v", err)
	}
	return created
}

// insertCompletedSession writes a terminal session directly, bypassing the
// state machine, for history-driven tests.
func insertCompletedSession(t *testing.T, ps *PostgresService, userID, quizID string, score, maxScore int, accuracy float64, completedAt time.Time) *model.QuizSession {
	t.Helper()

	session := &model.QuizSession{
		UserID:      userID,
		QuizID:      quizID,
		Status:      shared.SessionCompleted,
		StartedAt:   completedAt.Add(-5 * time.Minute),
		CompletedAt: &completedAt,
		Score:       score,
		MaxScore:    maxScore,
		Accuracy:    accuracy,
	}
	created, err := ps.CreateSession(session)
	if err != nil {
		t.Fatalf("failed to insert completed session: %v", err)
	}
	return created
}

func newTestSessionService(ps *PostgresService) *SessionService {
	return &SessionService{
		postgres:     ps,
		achievements: &AchievementService{postgres: ps},
	}
}
