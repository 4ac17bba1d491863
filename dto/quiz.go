package dto

import "time"

type CreateQuestionRequest struct {
	Type           string   `json:"type" validate:"required,oneof=single multiple boolean text"`
	Text           string   `json:"text" validate:"required"`
	Options        []string `json:"options" validate:"omitempty,dive,required"`
	CorrectAnswers []string `json:"correct_answers" validate:"required,min=1,dive,required"`
	Points         int      `json:"points" validate:"gte=0"`
}

type CreateQuizRequest struct {
	Title        string                  `json:"title" validate:"required,max=200"`
	Description  string                  `json:"description"`
	Category     string                  `json:"category" validate:"required"`
	TimeLimit    int                     `json:"time_limit" validate:"gte=0"`
	PassingScore int                     `json:"passing_score" validate:"gte=0,max=100"`
	IsPublic     *bool                   `json:"is_public"`
	Questions    []CreateQuestionRequest `json:"questions" validate:"required,min=1,dive"`
}

func (r CreateQuizRequest) Validate() error {
	return validate.Struct(r)
}

type QuestionResponse struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Text     string   `json:"text"`
	Options  []string `json:"options,omitempty"`
	Points   int      `json:"points"`
	Position int      `json:"position"`
	// Correct answers are never included in quiz reads.
}

type QuizResponse struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description"`
	Category     string             `json:"category"`
	CreatorID    string             `json:"creator_id"`
	TimeLimit    int                `json:"time_limit"`
	PassingScore int                `json:"passing_score"`
	IsActive     bool               `json:"is_active"`
	IsPublic     bool               `json:"is_public"`
	PlayCount    int                `json:"play_count"`
	ViewCount    int                `json:"view_count"`
	LastPlayedAt *time.Time         `json:"last_played_at,omitempty"`
	CoverURL     string             `json:"cover_url,omitempty"`
	Questions    []QuestionResponse `json:"questions,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

type QuizListResponse struct {
	Quizzes []QuizResponse `json:"quizzes"`
	Total   int            `json:"total"`
}
