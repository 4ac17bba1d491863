package services

import (
	"testing"
	"time"

	"github.com/quizforge/quiz_api/model"
)

func newTestRankingService(ps *PostgresService) *RankingService {
	return &RankingService{postgres: ps}
}

func TestWeekStart(t *testing.T) {
	// 2026-08-26 is a Wednesday; its week starts Monday 2026-08-24.
	wed := time.Date(2026, 8, 26, 15, 30, 0, 0, time.Local)
	want := time.Date(2026, 8, 24, 0, 0, 0, 0, time.Local)
	if got := WeekStart(wed); !got.Equal(want) {
		t.Fatalf("WeekStart(wednesday) = %v, want %v", got, want)
	}

	// Sunday still belongs to the week that began the previous Monday.
	sun := time.Date(2026, 8, 30, 23, 59, 0, 0, time.Local)
	if got := WeekStart(sun); !got.Equal(want) {
		t.Fatalf("WeekStart(sunday) = %v, want %v", got, want)
	}

	mon := time.Date(2026, 8, 24, 0, 0, 1, 0, time.Local)
	if got := WeekStart(mon); !got.Equal(want) {
		t.Fatalf("WeekStart(monday) = %v, want %v", got, want)
	}
}

func TestRecomputeGlobalOrdering(t *testing.T) {
	ps := newTestPostgres(t)
	svc := newTestRankingService(ps)
	quiz := createTestQuiz(t, ps, "general", singleQuestionQuiz(1)...)

	gold := createTestUser(t, ps, "gold")
	silver := createTestUser(t, ps, "silver")
	bronze := createTestUser(t, ps, "bronze")

	now := time.Now()
	insertCompletedSession(t, ps, gold.ID, quiz.ID, 2000, 2000, 100, now)
	insertCompletedSession(t, ps, silver.ID, quiz.ID, 1000, 2000, 80, now)
	insertCompletedSession(t, ps, bronze.ID, quiz.ID, 500, 2000, 60, now)

	if err := svc.RecomputeGlobal(); err != nil {
		t.Fatalf("RecomputeGlobal() error: %v", err)
	}

	entries, total, err := ps.GetGlobalRanking(1, 10)
	if err != nil {
		t.Fatalf("GetGlobalRanking() error: %v", err)
	}
	if total != 3 || len(entries) != 3 {
		t.Fatalf("total = %d, entries = %d, want 3 each", total, len(entries))
	}

	wantOrder := []struct {
		username string
		score    int
	}{
		{"gold", 2000},
		{"silver", 1000},
		{"bronze", 500},
	}
	for i, want := range wantOrder {
		if entries[i].Rank != i+1 {
			t.Fatalf("entry %d rank = %d, want %d", i, entries[i].Rank, i+1)
		}
		if entries[i].Username != want.username || entries[i].TotalScore != want.score {
			t.Fatalf("entry %d = %s/%d, want %s/%d",
				i, entries[i].Username, entries[i].TotalScore, want.username, want.score)
		}
	}
}

func TestRecomputeGlobalIdempotent(t *testing.T) {
	ps := newTestPostgres(t)
	svc := newTestRankingService(ps)
	quiz := createTestQuiz(t, ps, "general", singleQuestionQuiz(1)...)

	user := createTestUser(t, ps, "steady")
	insertCompletedSession(t, ps, user.ID, quiz.ID, 300, 300, 100, time.Now())

	if err := svc.RecomputeGlobal(); err != nil {
		t.Fatalf("first RecomputeGlobal() error: %v", err)
	}
	firstEntries, _, err := ps.GetGlobalRanking(1, 10)
	if err != nil {
		t.Fatalf("GetGlobalRanking() error: %v", err)
	}

	if err := svc.RecomputeGlobal(); err != nil {
		t.Fatalf("second RecomputeGlobal() error: %v", err)
	}
	secondEntries, _, err := ps.GetGlobalRanking(1, 10)
	if err != nil {
		t.Fatalf("GetGlobalRanking() error: %v", err)
	}

	if len(firstEntries) != len(secondEntries) {
		t.Fatalf("entry counts differ: %d vs %d", len(firstEntries), len(secondEntries))
	}
	for i := range firstEntries {
		a, b := firstEntries[i], secondEntries[i]
		if a.Rank != b.Rank || a.UserID != b.UserID || a.TotalScore != b.TotalScore ||
			a.AverageScore != b.AverageScore || a.QuizzesPlayed != b.QuizzesPlayed {
			t.Fatalf("snapshot differs at %d: %+v vs %+v", i, a, b)
		}
	}

	// Only the newest generation's rows survive the swap.
	var count int64
	if err := ps.Db().Model(&model.GlobalRanking{}).Count(&count).Error; err != nil {
		t.Fatalf("count error: %v", err)
	}
	if count != 1 {
		t.Fatalf("global ranking rows = %d, want 1 (old generations dropped)", count)
	}
}

func TestRankingTieBreaks(t *testing.T) {
	ps := newTestPostgres(t)
	svc := newTestRankingService(ps)
	quiz := createTestQuiz(t, ps, "general", singleQuestionQuiz(1)...)

	// Same total score; efficient has it in one session so a higher average.
	efficient := createTestUser(t, ps, "efficient")
	grinder := createTestUser(t, ps, "grinder2")

	now := time.Now()
	insertCompletedSession(t, ps, efficient.ID, quiz.ID, 1000, 1000, 100, now)
	insertCompletedSession(t, ps, grinder.ID, quiz.ID, 500, 1000, 80, now)
	insertCompletedSession(t, ps, grinder.ID, quiz.ID, 500, 1000, 80, now.Add(time.Minute))

	if err := svc.RecomputeGlobal(); err != nil {
		t.Fatalf("RecomputeGlobal() error: %v", err)
	}

	entries, _, err := ps.GetGlobalRanking(1, 10)
	if err != nil {
		t.Fatalf("GetGlobalRanking() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Username != "efficient" {
		t.Fatalf("rank 1 = %s, want efficient (higher average on equal total)", entries[0].Username)
	}
	if entries[1].Username != "grinder2" || entries[1].Rank != 2 {
		t.Fatalf("rank 2 = %s/%d, want grinder2/2", entries[1].Username, entries[1].Rank)
	}
}

func TestWeeklyRankingWindow(t *testing.T) {
	ps := newTestPostgres(t)
	svc := newTestRankingService(ps)
	quiz := createTestQuiz(t, ps, "general", singleQuestionQuiz(1)...)

	thisWeek := createTestUser(t, ps, "thisweek")
	lastWeek := createTestUser(t, ps, "lastweek")

	weekStart := WeekStart(time.Now())
	insertCompletedSession(t, ps, thisWeek.ID, quiz.ID, 100, 100, 100, weekStart.Add(2*time.Hour))
	insertCompletedSession(t, ps, lastWeek.ID, quiz.ID, 900, 900, 100, weekStart.Add(-2*time.Hour))

	if err := svc.RecomputeWeekly(time.Now()); err != nil {
		t.Fatalf("RecomputeWeekly() error: %v", err)
	}

	entries, total, err := ps.GetWeeklyRanking(weekStart, 1, 10)
	if err != nil {
		t.Fatalf("GetWeeklyRanking() error: %v", err)
	}
	if total != 1 || len(entries) != 1 {
		t.Fatalf("weekly entries = %d/%d, want exactly the in-window user", len(entries), total)
	}
	if entries[0].UserID != thisWeek.ID {
		t.Fatalf("weekly entry = %s, want %s", entries[0].UserID, thisWeek.ID)
	}
}

func TestCategoryRankingScoped(t *testing.T) {
	ps := newTestPostgres(t)
	svc := newTestRankingService(ps)
	mathQuiz := createTestQuiz(t, ps, "math", singleQuestionQuiz(1)...)
	historyQuiz := createTestQuiz(t, ps, "history", singleQuestionQuiz(1)...)

	mathUser := createTestUser(t, ps, "mathuser")
	historyUser := createTestUser(t, ps, "historyuser")

	now := time.Now()
	insertCompletedSession(t, ps, mathUser.ID, mathQuiz.ID, 100, 100, 100, now)
	insertCompletedSession(t, ps, historyUser.ID, historyQuiz.ID, 200, 200, 100, now)

	if err := svc.RecomputeCategory("math"); err != nil {
		t.Fatalf("RecomputeCategory() error: %v", err)
	}

	entries, total, err := ps.GetCategoryRanking("math", 1, 10)
	if err != nil {
		t.Fatalf("GetCategoryRanking() error: %v", err)
	}
	if total != 1 || len(entries) != 1 || entries[0].UserID != mathUser.ID {
		t.Fatalf("math ranking = %+v (total %d), want only mathuser", entries, total)
	}
}

func TestGetGlobalIncludesUserRank(t *testing.T) {
	ps := newTestPostgres(t)
	svc := newTestRankingService(ps)
	quiz := createTestQuiz(t, ps, "general", singleQuestionQuiz(1)...)

	top := createTestUser(t, ps, "top")
	mid := createTestUser(t, ps, "mid")

	now := time.Now()
	insertCompletedSession(t, ps, top.ID, quiz.ID, 900, 900, 100, now)
	insertCompletedSession(t, ps, mid.ID, quiz.ID, 400, 900, 70, now)

	if err := svc.RecomputeGlobal(); err != nil {
		t.Fatalf("RecomputeGlobal() error: %v", err)
	}

	resp, err := svc.GetGlobal(1, 1, mid.ID)
	if err != nil {
		t.Fatalf("GetGlobal() error: %v", err)
	}
	if len(resp.Ranking) != 1 || resp.Ranking[0].UserID != top.ID {
		t.Fatalf("page 1 = %+v, want only the top user", resp.Ranking)
	}
	if resp.Pagination.Total != 2 || resp.Pagination.TotalPages != 2 {
		t.Fatalf("pagination = %+v, want total 2 over 2 pages", resp.Pagination)
	}
	if resp.UserRank == nil || resp.UserRank.UserID != mid.ID || resp.UserRank.Rank != 2 {
		t.Fatalf("userRank = %+v, want mid at rank 2", resp.UserRank)
	}
}

func TestRankingVisibleDuringRecompute(t *testing.T) {
	ps := newTestPostgres(t)
	svc := newTestRankingService(ps)
	quiz := createTestQuiz(t, ps, "general", singleQuestionQuiz(1)...)

	user := createTestUser(t, ps, "visible")
	insertCompletedSession(t, ps, user.ID, quiz.ID, 100, 100, 100, time.Now())

	if err := svc.RecomputeGlobal(); err != nil {
		t.Fatalf("RecomputeGlobal() error: %v", err)
	}

	// Rows written under a generation the epoch does not point at yet must
	// stay invisible to readers.
	stale := []model.GlobalRanking{{
		UserID:   "ghost",
		Username: "ghost",
		Rank:     1,
	}}
	future := time.Now().UnixNano() + int64(time.Hour)
	for i := range stale {
		stale[i].ID = "ghost-row"
		stale[i].Generation = future
	}
	if err := ps.Db().Create(&stale).Error; err != nil {
		t.Fatalf("failed to insert staged rows: %v", err)
	}

	entries, total, err := ps.GetGlobalRanking(1, 10)
	if err != nil {
		t.Fatalf("GetGlobalRanking() error: %v", err)
	}
	if total != 1 || len(entries) != 1 || entries[0].UserID != user.ID {
		t.Fatalf("reader saw staged generation: %+v (total %d)", entries, total)
	}
}
