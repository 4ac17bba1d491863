// model/ranking.go
package model

import "time"

// Ranking rows are written under a generation id and become visible only when
// the RankingEpoch pointer for their scope flips. Readers therefore never see
// an empty or half-replaced leaderboard.

type GlobalRanking struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	Generation    int64     `json:"-" gorm:"index;not null"`
	UserID        string    `json:"user_id" gorm:"not null"`
	Username      string    `json:"username"`
	TotalScore    int       `json:"total_score"`
	AverageScore  float64   `json:"average_score"`
	QuizzesPlayed int       `json:"quizzes_played"`
	Level         int       `json:"level"`
	Rank          int       `json:"rank"`
	CreatedAt     time.Time `json:"created_at"`
}

type WeeklyRanking struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	Generation    int64     `json:"-" gorm:"index;not null"`
	WeekStart     time.Time `json:"week_start" gorm:"index;not null"`
	UserID        string    `json:"user_id" gorm:"not null"`
	Username      string    `json:"username"`
	TotalScore    int       `json:"total_score"`
	AverageScore  float64   `json:"average_score"`
	QuizzesPlayed int       `json:"quizzes_played"`
	Level         int       `json:"level"`
	Rank          int       `json:"rank"`
	CreatedAt     time.Time `json:"created_at"`
}

type CategoryRanking struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	Generation    int64     `json:"-" gorm:"index;not null"`
	Category      string    `json:"category" gorm:"index;not null"`
	UserID        string    `json:"user_id" gorm:"not null"`
	Username      string    `json:"username"`
	TotalScore    int       `json:"total_score"`
	AverageScore  float64   `json:"average_score"`
	QuizzesPlayed int       `json:"quizzes_played"`
	Level         int       `json:"level"`
	Rank          int       `json:"rank"`
	CreatedAt     time.Time `json:"created_at"`
}

// RankingEpoch points at the current generation for one scope key.
// Scope is global/weekly/category; ScopeKey is "" for global, the week start
// date for weekly, the category name for category.
type RankingEpoch struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	Scope      string    `json:"scope" gorm:"not null;uniqueIndex:idx_ranking_scope"`
	ScopeKey   string    `json:"scope_key" gorm:"uniqueIndex:idx_ranking_scope"`
	Generation int64     `json:"generation" gorm:"not null"`
	UpdatedAt  time.Time `json:"updated_at"`
}
