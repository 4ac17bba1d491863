package dto

import "time"

type RankingEntryResponse struct {
	Rank          int     `json:"rank"`
	UserID        string  `json:"user_id"`
	Username      string  `json:"username"`
	TotalScore    int     `json:"total_score"`
	AverageScore  float64 `json:"average_score"`
	QuizzesPlayed int     `json:"quizzes_played"`
	Level         int     `json:"level"`
}

type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type RankingResponse struct {
	Scope      string                 `json:"scope"`
	WeekStart  *time.Time             `json:"week_start,omitempty"`
	Category   string                 `json:"category,omitempty"`
	Ranking    []RankingEntryResponse `json:"ranking"`
	Pagination PaginationResponse     `json:"pagination"`
	UserRank   *RankingEntryResponse  `json:"user_rank,omitempty"`
}
