package shared

const (
	UserID   = "user_id"
	UserRole = "user_role"

	RoleUser  = "user"
	RoleAdmin = "admin"

	QuestionTypeSingle   = "single"
	QuestionTypeMultiple = "multiple"
	QuestionTypeBoolean  = "boolean"
	QuestionTypeText     = "text"

	SessionInProgress = "in_progress"
	SessionPaused     = "paused"
	SessionCompleted  = "completed"
	SessionAbandoned  = "abandoned"

	RarityCommon    = "common"
	RarityRare      = "rare"
	RarityEpic      = "epic"
	RarityLegendary = "legendary"

	RankingScopeGlobal   = "global"
	RankingScopeWeekly   = "weekly"
	RankingScopeCategory = "category"

	// Fixed per-question time budget used by the speed bonus and speed achievements.
	QuestionTimeBudgetSeconds = 30
)
