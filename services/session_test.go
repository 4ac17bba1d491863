package services

import (
	"testing"
	"time"

	"github.com/quizforge/quiz_api/dto"
	"github.com/quizforge/quiz_api/model"
	"github.com/quizforge/quiz_api/shared"
)

func singleQuestionQuiz(points ...int) []testQuestion {
	questions := make([]testQuestion, 0, len(points))
	for i := range points {
		questions = append(questions, testQuestion{
			qType:   shared.QuestionTypeSingle,
			correct: []string{"right"},
			points:  points[i],
		})
	}
	return questions
}

func TestStartSessionIdempotent(t *testing.T) {
	ps := newTestPostgres(t)
	svc := newTestSessionService(ps)
	user := createTestUser(t, ps, "starter")
	quiz := createTestQuiz(t, ps, "general", singleQuestionQuiz(1, 1, 1)...)

	first, created, err := svc.StartSession(user.ID, quiz.ID)
	if err != nil {
		t.Fatalf("StartSession() error: %v", err)
	}
	if !created {
		t.Fatal("first start should create a session")
	}
	if first.MaxScore != 3 {
		t.Fatalf("MaxScore = %d, want 3", first.MaxScore)
	}
	if !first.FirstAttempt {
		t.Fatal("FirstAttempt = false, want true")
	}
	if first.Status != shared.SessionInProgress {
		t.Fatalf("Status = %s, want %s", first.Status, shared.SessionInProgress)
	}

	second, created, err := svc.StartSession(user.ID, quiz.ID)
	if err != nil {
		t.Fatalf("second StartSession() error: %v", err)
	}
	if created {
		t.Fatal("second start should not create a session")
	}
	if second.ID != first.ID {
		t.Fatalf("second start returned session %s, want existing %s", second.ID, first.ID)
	}
}

func TestStartSessionNotFirstAttemptAfterCompletion(t *testing.T) {
	ps := newTestPostgres(t)
	svc := newTestSessionService(ps)
	user := createTestUser(t, ps, "repeat")
	quiz := createTestQuiz(t, ps, "general", singleQuestionQuiz(1)...)

	insertCompletedSession(t, ps, user.ID, quiz.ID, 1, 1, 100, time.Now())

	resp, _, err := svc.StartSession(user.ID, quiz.ID)
	if err != nil {
		t.Fatalf("StartSession() error: %v", err)
	}
	if resp.FirstAttempt {
		t.Fatal("FirstAttempt = true after a prior completion, want false")
	}
}

func TestStartSessionUnknownQuiz(t *testing.T) {
	ps := newTestPostgres(t)
	svc := newTestSessionService(ps)
	user := createTestUser(t, ps, "lost")

	_, _, err := svc.StartSession(user.ID, "no-such-quiz")
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.StatusCode != 404 {
		t.Fatalf("StartSession(unknown quiz) error = %v, want 404 AppError", err)
	}
}

func TestStartSessionPrivateQuiz(t *testing.T) {
	ps := newTestPostgres(t)
	svc := newTestSessionService(ps)
	owner := createTestUser(t, ps, "quizowner")
	stranger := createTestUser(t, ps, "stranger")
	quiz := createTestQuiz(t, ps, "general", singleQuestionQuiz(1)...)

	err := ps.Db().Model(&model.Quiz{}).Where("id = ?", quiz.ID).
		Updates(map[string]interface{}{"is_public": false, "creator_id": owner.ID}).Error
	if err != nil {
		t.Fatalf("failed to make quiz private: %v", err)
	}

	_, _, err = svc.StartSession(stranger.ID, quiz.ID)
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.StatusCode != 403 {
		t.Fatalf("StartSession(private quiz, stranger) error = %v, want 403 AppError", err)
	}

	_, created, err := svc.StartSession(owner.ID, quiz.ID)
	if err != nil {
		t.Fatalf("StartSession(private quiz, creator) error: %v", err)
	}
	if !created {
		t.Fatal("creator start on own private quiz should create a session")
	}
}

func TestSessionCountersOnQuiz(t *testing.T) {
	ps := newTestPostgres(t)
	svc := newTestSessionService(ps)
	user := createTestUser(t, ps, "counter")
	quiz := createTestQuiz(t, ps, "general", singleQuestionQuiz(1)...)

	session, _, err := svc.StartSession(user.ID, quiz.ID)
	if err != nil {
		t.Fatalf("StartSession() error: %v", err)
	}

	// Starting counts a view and stamps last-played; no play yet.
	reloaded, err := ps.GetQuiz(quiz.ID)
	if err != nil {
		t.Fatalf("GetQuiz() error: %v", err)
	}
	if reloaded.ViewCount != 1 || reloaded.PlayCount != 0 {
		t.Fatalf("after start: views = %d plays = %d, want 1 and 0", reloaded.ViewCount, reloaded.PlayCount)
	}
	if reloaded.LastPlayedAt == nil {
		t.Fatal("LastPlayedAt not stamped at start")
	}

	// An abandoned attempt never counts as a play.
	if _, err := svc.AbandonSession(user.ID, session.ID); err != nil {
		t.Fatalf("AbandonSession() error: %v", err)
	}
	reloaded, err = ps.GetQuiz(quiz.ID)
	if err != nil {
		t.Fatalf("GetQuiz() error: %v", err)
	}
	if reloaded.PlayCount != 0 {
		t.Fatalf("after abandon: plays = %d, want 0", reloaded.PlayCount)
	}

	session, _, err = svc.StartSession(user.ID, quiz.ID)
	if err != nil {
		t.Fatalf("second StartSession() error: %v", err)
	}
	if _, err := svc.CompleteSession(user.ID, session.ID, ""); err != nil {
		t.Fatalf("CompleteSession() error: %v", err)
	}

	reloaded, err = ps.GetQuiz(quiz.ID)
	if err != nil {
		t.Fatalf("GetQuiz() error: %v", err)
	}
	if reloaded.ViewCount != 2 || reloaded.PlayCount != 1 {
		t.Fatalf("after complete: views = %d plays = %d, want 2 and 1", reloaded.ViewCount, reloaded.PlayCount)
	}
}

func TestSubmitAnswerRecomputesScore(t *testing.T) {
	ps := newTestPostgres(t)
	svc := newTestSessionService(ps)
	user := createTestUser(t, ps, "scorer")
	quiz := createTestQuiz(t, ps, "general", singleQuestionQuiz(2, 1, 3)...)

	session, _, err := svc.StartSession(user.ID, quiz.ID)
	if err != nil {
		t.Fatalf("StartSession() error: %v", err)
	}

	submissions := []struct {
		questionIdx int
		answer      string
	}{
		{0, "right"}, // 2 points
		{1, "wrong-option"},
		{2, "right"}, // 3 points
	}

	var last *dto.AnswerResultResponse
	for _, sub := range submissions {
		last, err = svc.SubmitAnswer(user.ID, session.ID, dto.SubmitAnswerRequest{
			QuestionID:      quiz.Questions[sub.questionIdx].ID,
			SelectedAnswers: []string{sub.answer},
			TimeSpent:       10,
		})
		if err != nil {
			t.Fatalf("SubmitAnswer(q%d) error: %v", sub.questionIdx, err)
		}
	}

	if last.Score != 5 {
		t.Fatalf("Score = %d, want 5", last.Score)
	}
	if last.Accuracy != 66.67 {
		t.Fatalf("Accuracy = %v, want 66.67", last.Accuracy)
	}
	if last.CurrentQuestionIndex != 3 {
		t.Fatalf("CurrentQuestionIndex = %d, want 3", last.CurrentQuestionIndex)
	}
}

func TestSubmitAnswerDuplicateDoesNotMutate(t *testing.T) {
	ps := newTestPostgres(t)
	svc := newTestSessionService(ps)
	user := createTestUser(t, ps, "dupe")
	quiz := createTestQuiz(t, ps, "general", singleQuestionQuiz(1, 1)...)

	session, _, err := svc.StartSession(user.ID, quiz.ID)
	if err != nil {
		t.Fatalf("StartSession() error: %v", err)
	}

	req := dto.SubmitAnswerRequest{
		QuestionID:      quiz.Questions[0].ID,
		SelectedAnswers: []string{"right"},
		TimeSpent:       5,
	}
	if _, err := svc.SubmitAnswer(user.ID, session.ID, req); err != nil {
		t.Fatalf("first SubmitAnswer() error: %v", err)
	}

	_, err = svc.SubmitAnswer(user.ID, session.ID, req)
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.StatusCode != 400 {
		t.Fatalf("duplicate SubmitAnswer() error = %v, want 400 AppError", err)
	}

	after, err := svc.GetSession(user.ID, session.ID)
	if err != nil {
		t.Fatalf("GetSession() error: %v", err)
	}
	if after.Score != 1 {
		t.Fatalf("Score after duplicate = %d, want 1", after.Score)
	}
	if after.CurrentQuestionIndex != 1 {
		t.Fatalf("CurrentQuestionIndex after duplicate = %d, want 1", after.CurrentQuestionIndex)
	}
	if len(after.Answers) != 1 {
		t.Fatalf("answer count after duplicate = %d, want 1", len(after.Answers))
	}
}

func TestSubmitAnswerForeignQuestion(t *testing.T) {
	ps := newTestPostgres(t)
	svc := newTestSessionService(ps)
	user := createTestUser(t, ps, "foreign")
	quiz := createTestQuiz(t, ps, "general", singleQuestionQuiz(1)...)
	other := createTestQuiz(t, ps, "general", singleQuestionQuiz(1)...)

	session, _, err := svc.StartSession(user.ID, quiz.ID)
	if err != nil {
		t.Fatalf("StartSession() error: %v", err)
	}

	_, err = svc.SubmitAnswer(user.ID, session.ID, dto.SubmitAnswerRequest{
		QuestionID:      other.Questions[0].ID,
		SelectedAnswers: []string{"right"},
	})
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.StatusCode != 400 {
		t.Fatalf("SubmitAnswer(foreign question) error = %v, want 400 AppError", err)
	}
}

func TestPauseResumeTransitions(t *testing.T) {
	ps := newTestPostgres(t)
	svc := newTestSessionService(ps)
	user := createTestUser(t, ps, "pauser")
	quiz := createTestQuiz(t, ps, "general", singleQuestionQuiz(1)...)

	session, _, err := svc.StartSession(user.ID, quiz.ID)
	if err != nil {
		t.Fatalf("StartSession() error: %v", err)
	}

	paused, err := svc.PauseSession(user.ID, session.ID)
	if err != nil {
		t.Fatalf("PauseSession() error: %v", err)
	}
	if paused.Status != shared.SessionPaused || paused.PausedAt == nil {
		t.Fatalf("paused session = %+v, want paused status with PausedAt set", paused)
	}

	// Answering and pausing again are both invalid while paused.
	if _, err := svc.SubmitAnswer(user.ID, session.ID, dto.SubmitAnswerRequest{
		QuestionID:      quiz.Questions[0].ID,
		SelectedAnswers: []string{"right"},
	}); err == nil {
		t.Fatal("SubmitAnswer() on paused session succeeded, want error")
	}
	if _, err := svc.PauseSession(user.ID, session.ID); err == nil {
		t.Fatal("PauseSession() on paused session succeeded, want error")
	}

	resumed, err := svc.ResumeSession(user.ID, session.ID)
	if err != nil {
		t.Fatalf("ResumeSession() error: %v", err)
	}
	if resumed.Status != shared.SessionInProgress || resumed.PausedAt != nil {
		t.Fatalf("resumed session = %+v, want in_progress with PausedAt cleared", resumed)
	}

	if _, err := svc.ResumeSession(user.ID, session.ID); err == nil {
		t.Fatal("ResumeSession() on running session succeeded, want error")
	}
}

func TestCompletionIsTerminal(t *testing.T) {
	ps := newTestPostgres(t)
	svc := newTestSessionService(ps)
	user := createTestUser(t, ps, "finisher")
	quiz := createTestQuiz(t, ps, "general", singleQuestionQuiz(1)...)

	session, _, err := svc.StartSession(user.ID, quiz.ID)
	if err != nil {
		t.Fatalf("StartSession() error: %v", err)
	}

	first, err := svc.CompleteSession(user.ID, session.ID, "")
	if err != nil {
		t.Fatalf("CompleteSession() error: %v", err)
	}
	if first.Session.Status != shared.SessionCompleted || first.Session.CompletedAt == nil {
		t.Fatalf("completed session = %+v, want completed status with CompletedAt set", first.Session)
	}

	_, err = svc.CompleteSession(user.ID, session.ID, "")
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.StatusCode != 400 {
		t.Fatalf("second CompleteSession() error = %v, want 400 AppError", err)
	}

	if _, err := svc.PauseSession(user.ID, session.ID); err == nil {
		t.Fatal("PauseSession() after completion succeeded, want error")
	}
	if _, err := svc.AbandonSession(user.ID, session.ID); err == nil {
		t.Fatal("AbandonSession() after completion succeeded, want error")
	}
}

func TestAbandonSession(t *testing.T) {
	ps := newTestPostgres(t)
	svc := newTestSessionService(ps)
	user := createTestUser(t, ps, "quitter")
	quiz := createTestQuiz(t, ps, "general", singleQuestionQuiz(1)...)

	session, _, err := svc.StartSession(user.ID, quiz.ID)
	if err != nil {
		t.Fatalf("StartSession() error: %v", err)
	}

	abandoned, err := svc.AbandonSession(user.ID, session.ID)
	if err != nil {
		t.Fatalf("AbandonSession() error: %v", err)
	}
	if abandoned.Status != shared.SessionAbandoned {
		t.Fatalf("Status = %s, want %s", abandoned.Status, shared.SessionAbandoned)
	}

	// A terminal session frees the (user, quiz) slot for a fresh start.
	fresh, created, err := svc.StartSession(user.ID, quiz.ID)
	if err != nil {
		t.Fatalf("StartSession() after abandon error: %v", err)
	}
	if !created || fresh.ID == session.ID {
		t.Fatal("start after abandon should create a new session")
	}
}

func TestSessionScopedToOwner(t *testing.T) {
	ps := newTestPostgres(t)
	svc := newTestSessionService(ps)
	owner := createTestUser(t, ps, "owner")
	intruder := createTestUser(t, ps, "intruder")
	quiz := createTestQuiz(t, ps, "general", singleQuestionQuiz(1)...)

	session, _, err := svc.StartSession(owner.ID, quiz.ID)
	if err != nil {
		t.Fatalf("StartSession() error: %v", err)
	}

	_, err = svc.GetSession(intruder.ID, session.ID)
	appErr, ok := shared.GetAppError(err)
	if !ok || appErr.StatusCode != 404 {
		t.Fatalf("GetSession(foreign user) error = %v, want 404 AppError", err)
	}
}

func TestEndToEndCompletionAwardsFirstQuiz(t *testing.T) {
	ps := newTestPostgres(t)
	svc := newTestSessionService(ps)
	user := createTestUser(t, ps, "endtoend")
	quiz := createTestQuiz(t, ps, "history", singleQuestionQuiz(1, 1, 1)...)

	session, _, err := svc.StartSession(user.ID, quiz.ID)
	if err != nil {
		t.Fatalf("StartSession() error: %v", err)
	}
	if session.MaxScore != 3 || !session.FirstAttempt {
		t.Fatalf("session = %+v, want maxScore 3 and firstAttempt", session)
	}

	answers := []string{"right", "right", "wrong-option"}
	for i, answer := range answers {
		if _, err := svc.SubmitAnswer(user.ID, session.ID, dto.SubmitAnswerRequest{
			QuestionID:      quiz.Questions[i].ID,
			SelectedAnswers: []string{answer},
			TimeSpent:       10,
		}); err != nil {
			t.Fatalf("SubmitAnswer(q%d) error: %v", i, err)
		}
	}

	result, err := svc.CompleteSession(user.ID, session.ID, "")
	if err != nil {
		t.Fatalf("CompleteSession() error: %v", err)
	}

	if result.Session.Score != 2 {
		t.Fatalf("Score = %d, want 2", result.Session.Score)
	}
	if result.Session.Accuracy != 66.67 {
		t.Fatalf("Accuracy = %v, want 66.67", result.Session.Accuracy)
	}
	if result.Session.PerfectScore {
		t.Fatal("PerfectScore = true, want false")
	}

	awarded := make(map[string]bool)
	for _, a := range result.Progress.NewAchievements {
		awarded[a.Code] = true
	}
	if !awarded["first_quiz"] {
		t.Fatalf("first_quiz not in new achievements: %+v", result.Progress.NewAchievements)
	}
	// An instant completion also clears the speed threshold.
	if !awarded["speed_demon"] {
		t.Fatalf("speed_demon not in new achievements: %+v", result.Progress.NewAchievements)
	}

	// Session score plus both awards land on the user exactly once.
	refreshed, err := ps.GetUserByID(user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error: %v", err)
	}
	if refreshed.Experience != 2+50+150 {
		t.Fatalf("Experience = %d, want 202", refreshed.Experience)
	}
}

func TestPerfectScoreFlag(t *testing.T) {
	ps := newTestPostgres(t)
	svc := newTestSessionService(ps)
	user := createTestUser(t, ps, "perfect")
	quiz := createTestQuiz(t, ps, "general", singleQuestionQuiz(1, 1)...)

	session, _, err := svc.StartSession(user.ID, quiz.ID)
	if err != nil {
		t.Fatalf("StartSession() error: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := svc.SubmitAnswer(user.ID, session.ID, dto.SubmitAnswerRequest{
			QuestionID:      quiz.Questions[i].ID,
			SelectedAnswers: []string{"right"},
		}); err != nil {
			t.Fatalf("SubmitAnswer(q%d) error: %v", i, err)
		}
	}

	result, err := svc.CompleteSession(user.ID, session.ID, "")
	if err != nil {
		t.Fatalf("CompleteSession() error: %v", err)
	}
	if !result.Session.PerfectScore {
		t.Fatal("PerfectScore = false, want true")
	}
	if result.Session.Accuracy != 100 {
		t.Fatalf("Accuracy = %v, want 100", result.Session.Accuracy)
	}
	if !result.Passed {
		t.Fatal("Passed = false, want true for a perfect run")
	}
}
