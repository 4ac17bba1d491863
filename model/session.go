// model/session.go
package model

import "time"

// QuizSession is one user's timed attempt at one quiz. The partial unique
// index keeps at most one non-terminal session per (user, quiz): two
// concurrent starts cannot both insert.
type QuizSession struct {
	ID     string `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"not null;index:idx_active_session,unique,where:status = 'in_progress' OR status = 'paused'"`
	QuizID string `json:"quiz_id" gorm:"not null;index:idx_active_session,unique,where:status = 'in_progress' OR status = 'paused'"`
	Status string `json:"status" gorm:"not null;default:in_progress"`

	StartedAt   time.Time  `json:"started_at" gorm:"not null"`
	PausedAt    *time.Time `json:"paused_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CurrentQuestionIndex int     `json:"current_question_index" gorm:"default:0"`
	Score                int     `json:"score" gorm:"default:0"`
	MaxScore             int     `json:"max_score" gorm:"not null"`
	Accuracy             float64 `json:"accuracy" gorm:"default:0"`
	PerfectScore         bool    `json:"perfect_score" gorm:"default:false"`
	SpeedBonus           bool    `json:"speed_bonus" gorm:"default:false"`
	TimeSpent            int     `json:"time_spent" gorm:"default:0"` // seconds, set at completion
	FirstAttempt         bool    `json:"first_attempt" gorm:"default:false"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Answers []SessionAnswer `json:"answers" gorm:"foreignKey:SessionID"`
}

// SessionAnswer is one recorded answer within a session. The composite unique
// index makes the one-answer-per-question invariant a store guarantee, not
// just an application check.
type SessionAnswer struct {
	ID              string    `json:"id" gorm:"primaryKey"`
	SessionID       string    `json:"session_id" gorm:"not null;uniqueIndex:idx_session_question"`
	QuestionID      string    `json:"question_id" gorm:"not null;uniqueIndex:idx_session_question"`
	SelectedAnswers string    `json:"selected_answers" gorm:"type:text;not null"` // JSON string array
	IsCorrect       bool      `json:"is_correct"`
	PointsAwarded   int       `json:"points_awarded"`
	TimeSpent       int       `json:"time_spent"` // seconds spent on this question
	Position        int       `json:"position" gorm:"not null"`
	AnsweredAt      time.Time `json:"answered_at"`
}
