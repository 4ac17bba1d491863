// model/quiz.go
package model

import (
	"encoding/json"
	"time"
)

// Quiz is the read-side collaborator for the session engine. The engine only
// mutates its play/view counters and last-played timestamp.
type Quiz struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	Title        string     `json:"title" gorm:"not null"`
	Description  string     `json:"description" gorm:"type:text"`
	Category     string     `json:"category" gorm:"index"`
	CreatorID    string     `json:"creator_id" gorm:"index"`
	TimeLimit    int        `json:"time_limit"`    // seconds, 0 = unlimited
	PassingScore int        `json:"passing_score"` // percentage
	IsActive     bool       `json:"is_active" gorm:"default:true"`
	IsPublic     bool       `json:"is_public" gorm:"default:true"`
	PlayCount    int        `json:"play_count" gorm:"default:0"`
	ViewCount    int        `json:"view_count" gorm:"default:0"`
	LastPlayedAt *time.Time `json:"last_played_at"`
	CoverURL     string     `json:"cover_url"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Questions []Question `json:"questions" gorm:"foreignKey:QuizID"`
}

// Question holds one quiz question. Options and CorrectAnswers are stored as
// JSON string arrays. Boolean questions have their option set forced to
// true/false at creation time.
type Question struct {
	ID             string          `json:"id" gorm:"primaryKey"`
	QuizID         string          `json:"quiz_id" gorm:"index;not null"`
	Type           string          `json:"type" gorm:"not null"` // single, multiple, boolean, text
	Text           string          `json:"text" gorm:"type:text;not null"`
	Options        json.RawMessage `json:"options,omitempty" gorm:"type:text"`
	CorrectAnswers json.RawMessage `json:"-" gorm:"type:text;not null"`
	Points         int             `json:"points" gorm:"default:1"`
	Position       int             `json:"position" gorm:"not null"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
