package dto

import "time"

type AchievementResponse struct {
	Code          string     `json:"code"`
	Name          string     `json:"name"`
	Type          string     `json:"type"`
	Description   string     `json:"description"`
	Rarity        string     `json:"rarity"`
	PointsAwarded int        `json:"points_awarded"`
	BadgeURL      string     `json:"badge_url,omitempty"`
	UnlockedAt    *time.Time `json:"unlocked_at,omitempty"`
}

type AchievementListResponse struct {
	Achievements []AchievementResponse `json:"achievements"`
	Total        int                   `json:"total"`
}
