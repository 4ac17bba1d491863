package dto

import "time"

type SubmitAnswerRequest struct {
	QuestionID      string   `json:"question_id" validate:"required"`
	SelectedAnswers []string `json:"selected_answers" validate:"required,min=1,dive,required"`
	TimeSpent       int      `json:"time_spent" validate:"gte=0"`
}

func (r SubmitAnswerRequest) Validate() error {
	return validate.Struct(r)
}

type SessionAnswerResponse struct {
	QuestionID      string    `json:"question_id"`
	SelectedAnswers []string  `json:"selected_answers"`
	IsCorrect       bool      `json:"is_correct"`
	PointsAwarded   int       `json:"points_awarded"`
	TimeSpent       int       `json:"time_spent"`
	AnsweredAt      time.Time `json:"answered_at"`
}

type SessionResponse struct {
	ID                   string                  `json:"id"`
	UserID               string                  `json:"user_id"`
	QuizID               string                  `json:"quiz_id"`
	Status               string                  `json:"status"`
	StartedAt            time.Time               `json:"started_at"`
	PausedAt             *time.Time              `json:"paused_at,omitempty"`
	CompletedAt          *time.Time              `json:"completed_at,omitempty"`
	CurrentQuestionIndex int                     `json:"current_question_index"`
	Score                int                     `json:"score"`
	MaxScore             int                     `json:"max_score"`
	Accuracy             float64                 `json:"accuracy"`
	PerfectScore         bool                    `json:"perfect_score"`
	SpeedBonus           bool                    `json:"speed_bonus"`
	TimeSpent            int                     `json:"time_spent"`
	FirstAttempt         bool                    `json:"first_attempt"`
	Answers              []SessionAnswerResponse `json:"answers,omitempty"`
}

type AnswerResultResponse struct {
	Correct              bool    `json:"correct"`
	PointsAwarded        int     `json:"points_awarded"`
	Score                int     `json:"score"`
	Accuracy             float64 `json:"accuracy"`
	CurrentQuestionIndex int     `json:"current_question_index"`
	QuestionsAnswered    int     `json:"questions_answered"`
	QuestionsTotal       int     `json:"questions_total"`
}

// ProgressResponse reports the downstream reward outcome of a completion.
// When achievement evaluation or stat recording is unavailable the session
// result still stands and this payload degrades to its zero values.
type ProgressResponse struct {
	ExperienceGained int                   `json:"experience_gained"`
	LevelUp          bool                  `json:"level_up"`
	NewLevel         int                   `json:"new_level,omitempty"`
	NewAchievements  []AchievementResponse `json:"new_achievements"`
}

type CompleteSessionResponse struct {
	Session  SessionResponse  `json:"session"`
	Passed   bool             `json:"passed"`
	Progress ProgressResponse `json:"progress"`
}
