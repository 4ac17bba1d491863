package services

import (
	"strings"
	"time"

	"github.com/quizforge/quiz_api/dto"
	"github.com/quizforge/quiz_api/model"
	"github.com/quizforge/quiz_api/shared"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
)

// AchievementService evaluates the definition registry against a user's
// completed-session history and awards each definition at most once per user.
// The (user_id, name) unique index makes replays and races award-idempotent.
type AchievementService struct {
	context.DefaultService

	postgres   *PostgresService
	minio      *MinioService
	monitoring *MonitoringService
}

const ACHIEVEMENT_SVC = "achievement_svc"

func (svc AchievementService) Id() string {
	return ACHIEVEMENT_SVC
}

func (svc *AchievementService) Start() error {
	svc.postgres = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.minio = svc.Service(MINIO_SVC).(*MinioService)
	svc.monitoring = svc.Service(MONITORING_SVC).(*MonitoringService)
	return nil
}

// ==================== PROGRESSION ====================

// LevelForExperience maps cumulative experience to a level. Each level costs
// 1.5x the previous one, starting at 100.
func LevelForExperience(xp int) int {
	level := 1
	required := 100
	for xp >= required {
		xp -= required
		level++
		required = required * 3 / 2
	}
	return level
}

// ==================== EVALUATION ====================

// OnSessionCompleted credits the session score as experience, evaluates all
// definitions against the refreshed history and awards the new ones. Called
// after the session is already terminal; any error here degrades the progress
// payload but never the completion.
func (svc *AchievementService) OnSessionCompleted(session *model.QuizSession, quiz *model.Quiz) (dto.ProgressResponse, error) {
	progress := dto.ProgressResponse{NewAchievements: []dto.AchievementResponse{}}

	user, err := svc.postgres.GetUserByID(session.UserID)
	if err != nil {
		return progress, err
	}
	levelBefore := user.Level

	// Session score becomes experience before evaluation so score-threshold
	// predicates see the up-to-date aggregate.
	if session.Score > 0 {
		user.Experience += session.Score
		user.Level = LevelForExperience(user.Experience)
		if err := svc.postgres.UpdateUser(user); err != nil {
			return progress, err
		}
	}
	progress.ExperienceGained = session.Score

	sessionCtx := &SessionContext{
		Accuracy:       session.Accuracy,
		TimeSpent:      session.TimeSpent,
		TotalQuestions: sessionQuestionCount(quiz),
		FirstAttempt:   session.FirstAttempt,
		Category:       quiz.Category,
	}

	awarded, err := svc.evaluate(user, sessionCtx)
	if err != nil {
		return progress, err
	}

	for _, a := range awarded {
		progress.ExperienceGained += a.PointsAwarded
		progress.NewAchievements = append(progress.NewAchievements, toAchievementResponse(a))
	}

	// Re-read for the final level; awards credit experience transactionally.
	if user, err = svc.postgres.GetUserByID(session.UserID); err == nil {
		progress.NewLevel = user.Level
		progress.LevelUp = user.Level > levelBefore
	}

	return progress, nil
}

// EvaluateUser replays the registry against a user's full history with no
// session context. Used by the admin recompute endpoint; awarding is
// idempotent so running it repeatedly is safe.
func (svc *AchievementService) EvaluateUser(userID string) ([]dto.AchievementResponse, error) {
	user, err := svc.postgres.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	awarded, err := svc.evaluate(user, nil)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.AchievementResponse, 0, len(awarded))
	for _, a := range awarded {
		responses = append(responses, toAchievementResponse(a))
	}
	return responses, nil
}

func (svc *AchievementService) evaluate(user *model.User, sessionCtx *SessionContext) ([]*model.Achievement, error) {
	aggregate, err := svc.buildAggregate(user.ID)
	if err != nil {
		return nil, err
	}

	existing, err := svc.postgres.GetUserAchievements(user.ID)
	if err != nil {
		return nil, err
	}
	held := make(map[string]struct{}, len(existing))
	for _, a := range existing {
		held[a.Name] = struct{}{}
	}

	var awarded []*model.Achievement
	experience := user.Experience

	for _, def := range Registry() {
		if _, ok := held[def.Name]; ok {
			continue
		}
		if !def.Condition(aggregate, sessionCtx) {
			continue
		}

		experience += def.PointsAwarded
		achievement := &model.Achievement{
			UserID:        user.ID,
			Code:          def.Code,
			Name:          def.Name,
			Type:          def.Type,
			Description:   def.Description,
			Rarity:        def.Rarity,
			PointsAwarded: def.PointsAwarded,
			BadgeURL:      svc.badgeURL(def.Code),
		}

		err := svc.postgres.AwardAchievement(achievement, LevelForExperience(experience))
		if err != nil {
			// A concurrent evaluation already granted it; skip, don't fail
			// the remaining definitions.
			if strings.HasPrefix(err.Error(), "ACHIEVEMENT_EXISTS") {
				experience -= def.PointsAwarded
				continue
			}
			return awarded, err
		}

		if svc.monitoring != nil {
			svc.monitoring.AchievementsAwarded.Inc()
		}
		log.WithFields(log.Fields{
			"user_id": user.ID,
			"code":    def.Code,
			"rarity":  def.Rarity,
		}).Info("Achievement unlocked")

		awarded = append(awarded, achievement)
	}

	return awarded, nil
}

// buildAggregate rolls a user's completed sessions into the shape predicates
// consume.
func (svc *AchievementService) buildAggregate(userID string) (UserAggregate, error) {
	records, err := svc.postgres.GetCompletedSessions(userID)
	if err != nil {
		return UserAggregate{}, err
	}

	agg := UserAggregate{
		CategorySessions: make(map[string]int),
		CategoryAccuracy: make(map[string]float64),
	}
	accuracySums := make(map[string]float64)
	activeDays := make(map[string]struct{})

	for _, r := range records {
		agg.QuizzesCompleted++
		agg.TotalScore += r.Score
		if r.Accuracy == 100 {
			agg.PerfectSessions++
		}
		if r.Category != "" {
			agg.CategorySessions[r.Category]++
			accuracySums[r.Category] += r.Accuracy
		}
		activeDays[r.CompletedAt.Local().Format("2006-01-02")] = struct{}{}
	}

	for category, sum := range accuracySums {
		agg.CategoryAccuracy[category] = sum / float64(agg.CategorySessions[category])
	}
	agg.DistinctCategories = len(agg.CategorySessions)
	agg.StreakDays = consecutiveDays(activeDays, time.Now())

	return agg, nil
}

// consecutiveDays counts back from the anchor day while each calendar day has
// at least one completed session.
func consecutiveDays(activeDays map[string]struct{}, anchor time.Time) int {
	streak := 0
	day := anchor.Local()
	for {
		if _, ok := activeDays[day.Format("2006-01-02")]; !ok {
			break
		}
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// ==================== READS ====================

func (svc *AchievementService) ListUserAchievements(userID string) (*dto.AchievementListResponse, error) {
	achievements, err := svc.postgres.GetUserAchievements(userID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load achievements")
	}

	resp := dto.AchievementListResponse{
		Achievements: make([]dto.AchievementResponse, 0, len(achievements)),
		Total:        len(achievements),
	}
	for i := range achievements {
		resp.Achievements = append(resp.Achievements, toAchievementResponse(&achievements[i]))
	}
	return &resp, nil
}

func toAchievementResponse(a *model.Achievement) dto.AchievementResponse {
	unlockedAt := a.UnlockedAt
	return dto.AchievementResponse{
		Code:          a.Code,
		Name:          a.Name,
		Type:          a.Type,
		Description:   a.Description,
		Rarity:        a.Rarity,
		PointsAwarded: a.PointsAwarded,
		BadgeURL:      a.BadgeURL,
		UnlockedAt:    &unlockedAt,
	}
}

func (svc *AchievementService) badgeURL(code string) string {
	if svc.minio == nil {
		return ""
	}
	return svc.minio.BadgeURL(code)
}

func sessionQuestionCount(quiz *model.Quiz) int {
	return len(quiz.Questions)
}
