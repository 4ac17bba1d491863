package services

import (
	"testing"
	"time"
)

func newTestAchievementService(ps *PostgresService) *AchievementService {
	return &AchievementService{postgres: ps}
}

func TestLevelForExperience(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{475, 4},
	}
	for _, tt := range tests {
		if got := LevelForExperience(tt.xp); got != tt.want {
			t.Fatalf("LevelForExperience(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestEvaluateAwardsOnceAndCreditsXPOnce(t *testing.T) {
	ps := newTestPostgres(t)
	svc := newTestAchievementService(ps)
	user := createTestUser(t, ps, "once")
	quiz := createTestQuiz(t, ps, "history", singleQuestionQuiz(1)...)

	insertCompletedSession(t, ps, user.ID, quiz.ID, 1, 1, 100, time.Now())

	first, err := svc.EvaluateUser(user.ID)
	if err != nil {
		t.Fatalf("EvaluateUser() error: %v", err)
	}
	if len(first) != 1 || first[0].Code != "first_quiz" {
		t.Fatalf("first evaluation awarded %+v, want only first_quiz", first)
	}

	second, err := svc.EvaluateUser(user.ID)
	if err != nil {
		t.Fatalf("second EvaluateUser() error: %v", err)
	}
	if len(second) != 0 {
		t.Fatalf("second evaluation awarded %+v, want nothing", second)
	}

	refreshed, err := ps.GetUserByID(user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error: %v", err)
	}
	if refreshed.Experience != 50 {
		t.Fatalf("Experience = %d, want 50 (single first_quiz award)", refreshed.Experience)
	}

	achievements, err := ps.GetUserAchievements(user.ID)
	if err != nil {
		t.Fatalf("GetUserAchievements() error: %v", err)
	}
	if len(achievements) != 1 {
		t.Fatalf("achievement count = %d, want 1", len(achievements))
	}
}

func TestMilestonePassedThresholdStillAwards(t *testing.T) {
	ps := newTestPostgres(t)
	svc := newTestAchievementService(ps)
	user := createTestUser(t, ps, "latecomer")
	quiz := createTestQuiz(t, ps, "history", singleQuestionQuiz(1)...)

	// 12 completions recorded before any evaluation ran; the count-10
	// milestone must still fire even though the count is past 10.
	base := time.Now().Add(-30 * 24 * time.Hour)
	for i := 0; i < 12; i++ {
		insertCompletedSession(t, ps, user.ID, quiz.ID, 1, 1, 50, base.Add(time.Duration(i)*time.Hour))
	}

	awarded, err := svc.EvaluateUser(user.ID)
	if err != nil {
		t.Fatalf("EvaluateUser() error: %v", err)
	}

	codes := make(map[string]bool)
	for _, a := range awarded {
		codes[a.Code] = true
	}
	if !codes["first_quiz"] || !codes["quiz_enthusiast"] {
		t.Fatalf("awarded = %+v, want first_quiz and quiz_enthusiast", awarded)
	}
	if codes["quiz_veteran"] {
		t.Fatal("quiz_veteran awarded at 12 completions, want not awarded")
	}
}

func TestScoreThresholdAchievements(t *testing.T) {
	ps := newTestPostgres(t)
	svc := newTestAchievementService(ps)
	user := createTestUser(t, ps, "hoarder")
	quiz := createTestQuiz(t, ps, "math", singleQuestionQuiz(1)...)

	base := time.Now().Add(-10 * 24 * time.Hour)
	for i := 0; i < 4; i++ {
		insertCompletedSession(t, ps, user.ID, quiz.ID, 600, 600, 90, base.Add(time.Duration(i)*time.Hour))
	}

	awarded, err := svc.EvaluateUser(user.ID)
	if err != nil {
		t.Fatalf("EvaluateUser() error: %v", err)
	}

	codes := make(map[string]bool)
	for _, a := range awarded {
		codes[a.Code] = true
	}
	// 2400 total points clears the 500 and 2000 thresholds, not 5000.
	if !codes["point_collector"] || !codes["point_hoarder"] {
		t.Fatalf("awarded = %+v, want point_collector and point_hoarder", awarded)
	}
	if codes["point_legend"] {
		t.Fatal("point_legend awarded at 2400 points, want not awarded")
	}
}

func TestCategoryExpert(t *testing.T) {
	ps := newTestPostgres(t)
	svc := newTestAchievementService(ps)
	user := createTestUser(t, ps, "specialist")
	quiz := createTestQuiz(t, ps, "science", singleQuestionQuiz(1)...)

	base := time.Now().Add(-20 * 24 * time.Hour)
	for i := 0; i < 10; i++ {
		insertCompletedSession(t, ps, user.ID, quiz.ID, 1, 1, 85, base.Add(time.Duration(i)*time.Hour))
	}

	awarded, err := svc.EvaluateUser(user.ID)
	if err != nil {
		t.Fatalf("EvaluateUser() error: %v", err)
	}

	codes := make(map[string]bool)
	for _, a := range awarded {
		codes[a.Code] = true
	}
	if !codes["category_expert"] {
		t.Fatalf("awarded = %+v, want category_expert for 10 sessions at 85%% accuracy", awarded)
	}
}

func TestCategoryExpertRequiresAccuracy(t *testing.T) {
	ps := newTestPostgres(t)
	svc := newTestAchievementService(ps)
	user := createTestUser(t, ps, "grinder")
	quiz := createTestQuiz(t, ps, "science", singleQuestionQuiz(1)...)

	base := time.Now().Add(-20 * 24 * time.Hour)
	for i := 0; i < 10; i++ {
		insertCompletedSession(t, ps, user.ID, quiz.ID, 1, 1, 60, base.Add(time.Duration(i)*time.Hour))
	}

	awarded, err := svc.EvaluateUser(user.ID)
	if err != nil {
		t.Fatalf("EvaluateUser() error: %v", err)
	}
	for _, a := range awarded {
		if a.Code == "category_expert" {
			t.Fatal("category_expert awarded at 60% average accuracy, want not awarded")
		}
	}
}

func TestConsecutiveDays(t *testing.T) {
	now := time.Now()
	days := map[string]struct{}{
		now.Format("2006-01-02"):                      {},
		now.AddDate(0, 0, -1).Format("2006-01-02"):    {},
		now.AddDate(0, 0, -2).Format("2006-01-02"):    {},
		now.AddDate(0, 0, -4).Format("2006-01-02"):    {},
		now.AddDate(0, 0, -1000).Format("2006-01-02"): {},
	}

	if got := consecutiveDays(days, now); got != 3 {
		t.Fatalf("consecutiveDays = %d, want 3 (gap at day -3)", got)
	}
	if got := consecutiveDays(map[string]struct{}{}, now); got != 0 {
		t.Fatalf("consecutiveDays(empty) = %d, want 0", got)
	}
}

func TestStreakThresholds(t *testing.T) {
	defs := make(map[string]AchievementDefinition)
	for _, d := range Registry() {
		if d.Type == "streak" {
			defs[d.Code] = d
		}
	}

	tests := []struct {
		code string
		days int
	}{
		{"streak_starter", 3},
		{"week_streak", 7},
		{"month_streak", 30},
	}
	for _, tt := range tests {
		def, ok := defs[tt.code]
		if !ok {
			t.Fatalf("streak achievement %s missing from registry", tt.code)
		}
		if def.Condition(UserAggregate{StreakDays: tt.days - 1}, nil) {
			t.Fatalf("%s fired at %d days, want %d", tt.code, tt.days-1, tt.days)
		}
		if !def.Condition(UserAggregate{StreakDays: tt.days}, nil) {
			t.Fatalf("%s did not fire at %d days", tt.code, tt.days)
		}
	}
}

func TestWeekStreakAchievement(t *testing.T) {
	ps := newTestPostgres(t)
	svc := newTestAchievementService(ps)
	user := createTestUser(t, ps, "dedicated")
	quiz := createTestQuiz(t, ps, "history", singleQuestionQuiz(1)...)

	now := time.Now()
	for i := 0; i < 7; i++ {
		insertCompletedSession(t, ps, user.ID, quiz.ID, 1, 1, 100, now.AddDate(0, 0, -i))
	}

	awarded, err := svc.EvaluateUser(user.ID)
	if err != nil {
		t.Fatalf("EvaluateUser() error: %v", err)
	}

	codes := make(map[string]bool)
	for _, a := range awarded {
		codes[a.Code] = true
	}
	if !codes["week_streak"] {
		t.Fatalf("awarded = %+v, want week_streak after 7 consecutive days", awarded)
	}
}
