package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quizforge/quiz_api/dto"
	"github.com/quizforge/quiz_api/model"
	"github.com/quizforge/quiz_api/scoring"
	"github.com/quizforge/quiz_api/shared"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SessionService drives the quiz attempt lifecycle:
//
//	in_progress -> paused -> in_progress
//	in_progress | paused -> completed | abandoned
//
// Completed and abandoned are terminal. Score and accuracy are always
// recomputed from the recorded answers, never incremented in place, so a
// retried or replayed submission can never drift them.
type SessionService struct {
	context.DefaultService

	postgres     *PostgresService
	achievements *AchievementService
	stats        *StatsService
	monitoring   *MonitoringService
}

const SESSION_SVC = "session_svc"

func (svc SessionService) Id() string {
	return SESSION_SVC
}

func (svc *SessionService) Start() error {
	svc.postgres = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.achievements = svc.Service(ACHIEVEMENT_SVC).(*AchievementService)
	svc.stats = svc.Service(STATS_SVC).(*StatsService)
	svc.monitoring = svc.Service(MONITORING_SVC).(*MonitoringService)
	return nil
}

// ==================== LIFECYCLE ====================

// StartSession is idempotent per (user, quiz): when a non-terminal session
// already exists it is returned as-is instead of creating a second one.
func (svc *SessionService) StartSession(userID, quizID string) (*dto.SessionResponse, bool, error) {
	existing, err := svc.postgres.FindActiveSession(userID, quizID)
	if err != nil {
		return nil, false, shared.NewInternalError(err, "Failed to check active sessions")
	}
	if existing != nil {
		resp := svc.toSessionResponse(existing)
		return &resp, false, nil
	}

	quiz, err := svc.postgres.GetQuiz(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, shared.NewNotFoundError(err, "Quiz not found")
		}
		return nil, false, shared.NewInternalError(err, "Failed to load quiz")
	}
	if !quiz.IsActive {
		return nil, false, shared.NewForbiddenError(nil, "Quiz is not active")
	}
	if !quiz.IsPublic && quiz.CreatorID != userID {
		return nil, false, shared.NewForbiddenError(nil, "Quiz is private")
	}
	if len(quiz.Questions) == 0 {
		return nil, false, shared.NewBadRequestError(nil, "Quiz has no questions")
	}

	maxScore := 0
	for _, q := range quiz.Questions {
		points := q.Points
		if points <= 0 {
			points = 1
		}
		maxScore += points
	}

	completed, err := svc.postgres.CountCompletedSessions(userID, quizID)
	if err != nil {
		return nil, false, shared.NewInternalError(err, "Failed to count prior attempts")
	}

	session := &model.QuizSession{
		UserID:    userID,
		QuizID:    quizID,
		Status:    shared.SessionInProgress,
		StartedAt: time.Now(),
		MaxScore:  maxScore,
		// Frozen at creation. Completing another attempt mid-session does
		// not retroactively change this one.
		FirstAttempt: completed == 0,
	}

	created, err := svc.postgres.CreateSession(session)
	if err != nil {
		// A concurrent start won the insert race; hand back the winner.
		if strings.HasPrefix(err.Error(), "ACTIVE_SESSION_EXISTS") {
			winner, findErr := svc.postgres.FindActiveSession(userID, quizID)
			if findErr == nil && winner != nil {
				resp := svc.toSessionResponse(winner)
				return &resp, false, nil
			}
		}
		return nil, false, shared.NewInternalError(err, "Failed to start session")
	}

	// Starting an attempt counts as a view and stamps last-played; the play
	// count is only bumped on completion.
	if err := svc.postgres.IncrementQuizViews(quizID); err != nil {
		log.WithError(err).WithField("quiz_id", quizID).Warn("Failed to bump view count")
	}
	if svc.monitoring != nil {
		svc.monitoring.SessionsStarted.Inc()
	}

	log.WithFields(log.Fields{
		"session_id":    created.ID,
		"quiz_id":       quizID,
		"first_attempt": created.FirstAttempt,
	}).Info("Session started")

	resp := svc.toSessionResponse(created)
	return &resp, true, nil
}

func (svc *SessionService) GetSession(userID, sessionID string) (*dto.SessionResponse, error) {
	session, err := svc.loadSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	resp := svc.toSessionResponse(session)
	return &resp, nil
}

func (svc *SessionService) PauseSession(userID, sessionID string) (*dto.SessionResponse, error) {
	session, err := svc.loadSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != shared.SessionInProgress {
		return nil, shared.NewBadRequestError(nil, fmt.Sprintf("Cannot pause a %s session", session.Status))
	}

	now := time.Now()
	session.Status = shared.SessionPaused
	session.PausedAt = &now
	if err := svc.postgres.SaveSession(session); err != nil {
		return nil, shared.NewInternalError(err, "Failed to pause session")
	}

	resp := svc.toSessionResponse(session)
	return &resp, nil
}

func (svc *SessionService) ResumeSession(userID, sessionID string) (*dto.SessionResponse, error) {
	session, err := svc.loadSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != shared.SessionPaused {
		return nil, shared.NewBadRequestError(nil, fmt.Sprintf("Cannot resume a %s session", session.Status))
	}

	session.Status = shared.SessionInProgress
	session.PausedAt = nil
	if err := svc.postgres.SaveSession(session); err != nil {
		return nil, shared.NewInternalError(err, "Failed to resume session")
	}

	resp := svc.toSessionResponse(session)
	return &resp, nil
}

func (svc *SessionService) AbandonSession(userID, sessionID string) (*dto.SessionResponse, error) {
	session, err := svc.loadSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == shared.SessionCompleted || session.Status == shared.SessionAbandoned {
		return nil, shared.NewBadRequestError(nil, fmt.Sprintf("Cannot abandon a %s session", session.Status))
	}

	session.Status = shared.SessionAbandoned
	if err := svc.postgres.SaveSession(session); err != nil {
		return nil, shared.NewInternalError(err, "Failed to abandon session")
	}

	resp := svc.toSessionResponse(session)
	return &resp, nil
}

// ==================== ANSWER SUBMISSION ====================

func (svc *SessionService) SubmitAnswer(userID, sessionID string, req dto.SubmitAnswerRequest) (*dto.AnswerResultResponse, error) {
	session, err := svc.loadSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != shared.SessionInProgress {
		return nil, shared.NewBadRequestError(nil, fmt.Sprintf("Cannot answer in a %s session", session.Status))
	}

	quiz, err := svc.postgres.GetQuiz(session.QuizID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load quiz")
	}

	var question *model.Question
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == req.QuestionID {
			question = &quiz.Questions[i]
			break
		}
	}
	if question == nil {
		return nil, shared.NewBadRequestError(nil, "Question does not belong to this quiz")
	}

	isCorrect, points := scoring.Grade(scoring.GradedQuestion{
		Type:           question.Type,
		CorrectAnswers: DecodeStringList(question.CorrectAnswers),
		Points:         question.Points,
	}, req.SelectedAnswers)

	selectedJSON, err := json.Marshal(req.SelectedAnswers)
	if err != nil {
		return nil, shared.NewBadRequestError(err, "Invalid selected answers")
	}

	answer := &model.SessionAnswer{
		SessionID:       session.ID,
		QuestionID:      question.ID,
		SelectedAnswers: string(selectedJSON),
		IsCorrect:       isCorrect,
		PointsAwarded:   points,
		TimeSpent:       req.TimeSpent,
		Position:        len(session.Answers),
	}

	if err := svc.postgres.AppendSessionAnswer(answer); err != nil {
		// The unique index rejected a repeat; the session is untouched.
		if strings.HasPrefix(err.Error(), "DUPLICATE_ANSWER") {
			return nil, shared.NewBadRequestError(err, "Question already answered in this session")
		}
		return nil, shared.NewInternalError(err, "Failed to record answer")
	}

	session.Answers = append(session.Answers, *answer)
	svc.recomputeScore(session)
	session.CurrentQuestionIndex = len(session.Answers)

	if err := svc.postgres.SaveSession(session); err != nil {
		return nil, shared.NewInternalError(err, "Failed to update session")
	}

	return &dto.AnswerResultResponse{
		Correct:              isCorrect,
		PointsAwarded:        points,
		Score:                session.Score,
		Accuracy:             session.Accuracy,
		CurrentQuestionIndex: session.CurrentQuestionIndex,
		QuestionsAnswered:    len(session.Answers),
		QuestionsTotal:       len(quiz.Questions),
	}, nil
}

// recomputeScore derives score and accuracy from the full answer list.
func (svc *SessionService) recomputeScore(session *model.QuizSession) {
	score := 0
	correct := 0
	for _, a := range session.Answers {
		score += a.PointsAwarded
		if a.IsCorrect {
			correct++
		}
	}
	session.Score = score
	session.Accuracy = scoring.Accuracy(correct, len(session.Answers))
	session.PerfectScore = len(session.Answers) > 0 && session.Accuracy == 100
}

// ==================== COMPLETION ====================

func (svc *SessionService) CompleteSession(userID, sessionID, authHeader string) (*dto.CompleteSessionResponse, error) {
	session, err := svc.loadSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != shared.SessionInProgress && session.Status != shared.SessionPaused {
		return nil, shared.NewBadRequestError(nil, fmt.Sprintf("Cannot complete a %s session", session.Status))
	}

	quiz, err := svc.postgres.GetQuiz(session.QuizID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load quiz")
	}

	svc.recomputeScore(session)

	now := time.Now()
	timeSpent := int(now.Sub(session.StartedAt).Seconds())
	if timeSpent < 0 {
		timeSpent = 0
	}

	session.Status = shared.SessionCompleted
	session.CompletedAt = &now
	session.PausedAt = nil
	session.TimeSpent = timeSpent
	session.SpeedBonus = scoring.SpeedBonus(timeSpent, len(session.Answers))

	if err := svc.postgres.SaveSession(session); err != nil {
		return nil, shared.NewInternalError(err, "Failed to complete session")
	}

	if svc.monitoring != nil {
		svc.monitoring.SessionsCompleted.Inc()
	}

	passed := false
	if session.MaxScore > 0 {
		passed = float64(session.Score)/float64(session.MaxScore)*100 >= float64(quiz.PassingScore)
	}

	// Everything below is best-effort. The session is already terminal and a
	// reward-side failure must not roll it back.
	progress := svc.applyCompletionSideEffects(session, quiz, authHeader)

	log.WithFields(log.Fields{
		"session_id": session.ID,
		"score":      session.Score,
		"accuracy":   session.Accuracy,
		"passed":     passed,
	}).Info("Session completed")

	return &dto.CompleteSessionResponse{
		Session:  svc.toSessionResponse(session),
		Passed:   passed,
		Progress: progress,
	}, nil
}

func (svc *SessionService) applyCompletionSideEffects(session *model.QuizSession, quiz *model.Quiz, authHeader string) dto.ProgressResponse {
	progress := dto.ProgressResponse{
		NewAchievements: []dto.AchievementResponse{},
	}

	if err := svc.postgres.IncrementQuizPlays(quiz.ID); err != nil {
		log.WithError(err).WithField("quiz_id", quiz.ID).Warn("Failed to bump play count")
	}

	if svc.achievements != nil {
		result, err := svc.achievements.OnSessionCompleted(session, quiz)
		if err != nil {
			log.WithError(err).WithField("session_id", session.ID).
				Warn("Achievement evaluation failed after completion")
		} else {
			progress = result
		}
	}

	if svc.stats != nil {
		if err := svc.stats.EnqueueQuizCompleted(session, quiz, authHeader); err != nil {
			log.WithError(err).WithField("session_id", session.ID).
				Warn("Failed to enqueue completion stats")
		}
	}

	return progress
}

// ==================== HELPERS ====================

func (svc *SessionService) loadSession(userID, sessionID string) (*model.QuizSession, error) {
	session, err := svc.postgres.GetSessionForUser(sessionID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Session not found")
		}
		return nil, shared.NewInternalError(err, "Failed to load session")
	}
	return session, nil
}

func (svc *SessionService) toSessionResponse(session *model.QuizSession) dto.SessionResponse {
	resp := dto.SessionResponse{
		ID:                   session.ID,
		UserID:               session.UserID,
		QuizID:               session.QuizID,
		Status:               session.Status,
		StartedAt:            session.StartedAt,
		PausedAt:             session.PausedAt,
		CompletedAt:          session.CompletedAt,
		CurrentQuestionIndex: session.CurrentQuestionIndex,
		Score:                session.Score,
		MaxScore:             session.MaxScore,
		Accuracy:             session.Accuracy,
		PerfectScore:         session.PerfectScore,
		SpeedBonus:           session.SpeedBonus,
		TimeSpent:            session.TimeSpent,
		FirstAttempt:         session.FirstAttempt,
	}

	for _, a := range session.Answers {
		var selected []string
		if err := json.Unmarshal([]byte(a.SelectedAnswers), &selected); err != nil {
			selected = nil
		}
		resp.Answers = append(resp.Answers, dto.SessionAnswerResponse{
			QuestionID:      a.QuestionID,
			SelectedAnswers: selected,
			IsCorrect:       a.IsCorrect,
			PointsAwarded:   a.PointsAwarded,
			TimeSpent:       a.TimeSpent,
			AnsweredAt:      a.AnsweredAt,
		})
	}
	return resp
}
