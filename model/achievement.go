// model/achievement.go
package model

import "time"

// Achievement is an awarded record. The unique index on (user_id, name) backs
// the at-most-one-award-per-user invariant the evaluator relies on.
type Achievement struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	UserID        string    `json:"user_id" gorm:"not null;uniqueIndex:idx_user_achievement"`
	Code          string    `json:"code" gorm:"not null"`
	Name          string    `json:"name" gorm:"not null;uniqueIndex:idx_user_achievement"`
	Type          string    `json:"type"`
	Description   string    `json:"description"`
	Rarity        string    `json:"rarity"`
	PointsAwarded int       `json:"points_awarded"`
	BadgeURL      string    `json:"badge_url"`
	UnlockedAt    time.Time `json:"unlocked_at"`
	CreatedAt     time.Time `json:"created_at"`
}
