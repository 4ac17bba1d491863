package handlers

import (
	"mime/multipart"

	"github.com/quizforge/quiz_api/dto"
)

type AuthServiceInterface interface {
	Register(req dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(req dto.LoginRequest) (*dto.LoginResponse, error)
}

type JWTServiceInterface interface {
	ExtractTokenFromHeader(authHeader string) (string, error)
	VerifyToken(token string) (string, error)
}

type QuizServiceInterface interface {
	CreateQuiz(creatorID string, req dto.CreateQuizRequest) (*dto.QuizResponse, error)
	GetQuiz(viewerID, quizID string) (*dto.QuizResponse, error)
	ListQuizzes(category string, limit int) (*dto.QuizListResponse, error)
}

type SessionServiceInterface interface {
	StartSession(userID, quizID string) (*dto.SessionResponse, bool, error)
	GetSession(userID, sessionID string) (*dto.SessionResponse, error)
	SubmitAnswer(userID, sessionID string, req dto.SubmitAnswerRequest) (*dto.AnswerResultResponse, error)
	PauseSession(userID, sessionID string) (*dto.SessionResponse, error)
	ResumeSession(userID, sessionID string) (*dto.SessionResponse, error)
	CompleteSession(userID, sessionID, authHeader string) (*dto.CompleteSessionResponse, error)
	AbandonSession(userID, sessionID string) (*dto.SessionResponse, error)
}

type AchievementServiceInterface interface {
	ListUserAchievements(userID string) (*dto.AchievementListResponse, error)
	EvaluateUser(userID string) ([]dto.AchievementResponse, error)
}

type RankingServiceInterface interface {
	GetGlobal(page, limit int, userID string) (*dto.RankingResponse, error)
	GetWeekly(page, limit int, userID string) (*dto.RankingResponse, error)
	GetCategory(category string, page, limit int, userID string) (*dto.RankingResponse, error)
	RecomputeAll() error
}

type MediaServiceInterface interface {
	UploadBadge(code string, file *multipart.FileHeader) (string, error)
	UploadQuizCover(quizID string, file *multipart.FileHeader) (string, error)
}
