package services

import (
	"testing"

	"github.com/quizforge/quiz_api/model"
	"github.com/quizforge/quiz_api/shared"
)

func TestGetQuizPrivateAccess(t *testing.T) {
	ps := newTestPostgres(t)
	svc := &QuizService{postgres: ps}
	owner := createTestUser(t, ps, "author")
	stranger := createTestUser(t, ps, "visitor")
	quiz := createTestQuiz(t, ps, "general", singleQuestionQuiz(1)...)

	err := ps.Db().Model(&model.Quiz{}).Where("id = ?", quiz.ID).
		Updates(map[string]interface{}{"is_public": false, "creator_id": owner.ID}).Error
	if err != nil {
		t.Fatalf("failed to make quiz private: %v", err)
	}

	if _, err := svc.GetQuiz(owner.ID, quiz.ID); err != nil {
		t.Fatalf("GetQuiz(creator) error: %v", err)
	}

	_, err = svc.GetQuiz(stranger.ID, quiz.ID)
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.StatusCode != 403 {
		t.Fatalf("GetQuiz(stranger) error = %v, want 403 AppError", err)
	}

	_, err = svc.GetQuiz("", quiz.ID)
	appErr, ok = shared.GetAppError(err)
	if !ok || appErr.StatusCode != 403 {
		t.Fatalf("GetQuiz(anonymous) error = %v, want 403 AppError", err)
	}
}
