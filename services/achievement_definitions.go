package services

import "github.com/quizforge/quiz_api/shared"

// UserAggregate is the rollup of a user's completed-session history that
// achievement predicates evaluate against.
type UserAggregate struct {
	QuizzesCompleted   int
	PerfectSessions    int
	TotalScore         int
	DistinctCategories int
	StreakDays         int

	CategorySessions map[string]int
	CategoryAccuracy map[string]float64 // average accuracy per category
}

// SessionContext carries the just-completed session for predicates that look
// at the triggering session rather than the whole history. Nil when
// re-evaluating history without a fresh completion.
type SessionContext struct {
	Accuracy       float64
	TimeSpent      int
	TotalQuestions int
	FirstAttempt   bool
	Category       string
}

// AchievementDefinition pairs a static definition with a pure predicate.
// The registry is immutable after process start; predicates hold no state.
type AchievementDefinition struct {
	Code          string
	Name          string
	Type          string
	Description   string
	Rarity        string
	PointsAwarded int
	Condition     func(agg UserAggregate, session *SessionContext) bool
}

// Milestone predicates use >= rather than exact equality so a user whose
// qualifying session was processed during an outage still receives the award
// on the next evaluation.
var achievementRegistry = []AchievementDefinition{
	{
		Code:          "first_quiz",
		Name:          "First Steps",
		Type:          "milestone",
		Description:   "Complete your first quiz",
		Rarity:        shared.RarityCommon,
		PointsAwarded: 50,
		Condition: func(agg UserAggregate, _ *SessionContext) bool {
			return agg.QuizzesCompleted >= 1
		},
	},
	{
		Code:          "quiz_enthusiast",
		Name:          "Quiz Enthusiast",
		Type:          "milestone",
		Description:   "Complete 10 quizzes",
		Rarity:        shared.RarityRare,
		PointsAwarded: 150,
		Condition: func(agg UserAggregate, _ *SessionContext) bool {
			return agg.QuizzesCompleted >= 10
		},
	},
	{
		Code:          "quiz_veteran",
		Name:          "Quiz Veteran",
		Type:          "milestone",
		Description:   "Complete 50 quizzes",
		Rarity:        shared.RarityEpic,
		PointsAwarded: 400,
		Condition: func(agg UserAggregate, _ *SessionContext) bool {
			return agg.QuizzesCompleted >= 50
		},
	},
	{
		Code:          "quiz_master",
		Name:          "Quiz Master",
		Type:          "milestone",
		Description:   "Complete 100 quizzes",
		Rarity:        shared.RarityLegendary,
		PointsAwarded: 1000,
		Condition: func(agg UserAggregate, _ *SessionContext) bool {
			return agg.QuizzesCompleted >= 100
		},
	},
	{
		Code:          "perfectionist",
		Name:          "Perfectionist",
		Type:          "performance",
		Description:   "Finish a quiz with 100% accuracy",
		Rarity:        shared.RarityRare,
		PointsAwarded: 100,
		Condition: func(_ UserAggregate, session *SessionContext) bool {
			return session != nil && session.Accuracy == 100
		},
	},
	{
		Code:          "accuracy_master",
		Name:          "Accuracy Master",
		Type:          "performance",
		Description:   "Finish 10 quizzes with 100% accuracy",
		Rarity:        shared.RarityEpic,
		PointsAwarded: 500,
		Condition: func(agg UserAggregate, _ *SessionContext) bool {
			return agg.PerfectSessions >= 10
		},
	},
	{
		Code:          "speed_demon",
		Name:          "Speed Demon",
		Type:          "performance",
		Description:   "Finish a quiz in under half the time budget",
		Rarity:        shared.RarityRare,
		PointsAwarded: 150,
		Condition: func(_ UserAggregate, session *SessionContext) bool {
			if session == nil || session.TotalQuestions == 0 {
				return false
			}
			budget := session.TotalQuestions * shared.QuestionTimeBudgetSeconds
			return float64(session.TimeSpent) < 0.5*float64(budget)
		},
	},
	{
		Code:          "streak_starter",
		Name:          "Warming Up",
		Type:          "streak",
		Description:   "Complete a quiz on 3 consecutive days",
		Rarity:        shared.RarityCommon,
		PointsAwarded: 100,
		Condition: func(agg UserAggregate, _ *SessionContext) bool {
			return agg.StreakDays >= 3
		},
	},
	{
		Code:          "week_streak",
		Name:          "Dedicated",
		Type:          "streak",
		Description:   "Complete a quiz on 7 consecutive days",
		Rarity:        shared.RarityEpic,
		PointsAwarded: 300,
		Condition: func(agg UserAggregate, _ *SessionContext) bool {
			return agg.StreakDays >= 7
		},
	},
	{
		Code:          "month_streak",
		Name:          "Unstoppable",
		Type:          "streak",
		Description:   "Complete a quiz on 30 consecutive days",
		Rarity:        shared.RarityLegendary,
		PointsAwarded: 1000,
		Condition: func(agg UserAggregate, _ *SessionContext) bool {
			return agg.StreakDays >= 30
		},
	},
	{
		Code:          "point_collector",
		Name:          "Point Collector",
		Type:          "score",
		Description:   "Earn 500 total points",
		Rarity:        shared.RarityCommon,
		PointsAwarded: 100,
		Condition: func(agg UserAggregate, _ *SessionContext) bool {
			return agg.TotalScore >= 500
		},
	},
	{
		Code:          "point_hoarder",
		Name:          "Point Hoarder",
		Type:          "score",
		Description:   "Earn 2000 total points",
		Rarity:        shared.RarityRare,
		PointsAwarded: 300,
		Condition: func(agg UserAggregate, _ *SessionContext) bool {
			return agg.TotalScore >= 2000
		},
	},
	{
		Code:          "point_legend",
		Name:          "Point Legend",
		Type:          "score",
		Description:   "Earn 5000 total points",
		Rarity:        shared.RarityLegendary,
		PointsAwarded: 750,
		Condition: func(agg UserAggregate, _ *SessionContext) bool {
			return agg.TotalScore >= 5000
		},
	},
	{
		Code:          "explorer",
		Name:          "Explorer",
		Type:          "breadth",
		Description:   "Complete quizzes in 5 different categories",
		Rarity:        shared.RarityRare,
		PointsAwarded: 200,
		Condition: func(agg UserAggregate, _ *SessionContext) bool {
			return agg.DistinctCategories >= 5
		},
	},
	{
		Code:          "category_expert",
		Name:          "Category Expert",
		Type:          "mastery",
		Description:   "Complete 10 quizzes in one category with 80% average accuracy",
		Rarity:        shared.RarityEpic,
		PointsAwarded: 400,
		Condition: func(agg UserAggregate, _ *SessionContext) bool {
			for category, count := range agg.CategorySessions {
				if count >= 10 && agg.CategoryAccuracy[category] >= 80 {
					return true
				}
			}
			return false
		},
	},
}

// Registry returns the immutable achievement definition table.
func Registry() []AchievementDefinition {
	return achievementRegistry
}
