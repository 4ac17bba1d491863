package services

import (
	ctx "context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/quizforge/quiz_api/dto"
	"github.com/quizforge/quiz_api/model"
	"github.com/quizforge/quiz_api/shared"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
)

// RankingService recomputes leaderboard snapshots from completed sessions and
// serves paginated reads. A recompute writes rows under a fresh generation id
// and flips the scope's epoch pointer, so concurrent readers see the old
// snapshot or the new one, never a mix and never an empty table.
type RankingService struct {
	context.DefaultService

	postgres   *PostgresService
	redis      *RedisService
	monitoring *MonitoringService

	interval time.Duration
	stop     chan struct{}
}

const RANKING_SVC = "ranking_svc"

const rankingCachePrefix = "ranking:"

func (svc RankingService) Id() string {
	return RANKING_SVC
}

func (svc *RankingService) Configure(c *context.Context) error {
	svc.interval = 15 * time.Minute
	if minsStr := os.Getenv("RANKING_INTERVAL_MINUTES"); minsStr != "" {
		mins, err := strconv.Atoi(minsStr)
		if err == nil && mins > 0 {
			svc.interval = time.Duration(mins) * time.Minute
		}
	}
	svc.stop = make(chan struct{})
	return svc.DefaultService.Configure(c)
}

func (svc *RankingService) Start() error {
	svc.postgres = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.redis = svc.Service(REDIS_SVC).(*RedisService)
	svc.monitoring = svc.Service(MONITORING_SVC).(*MonitoringService)

	go svc.runScheduler()
	return nil
}

func (svc *RankingService) Shutdown() {
	close(svc.stop)
}

func (svc *RankingService) runScheduler() {
	ticker := time.NewTicker(svc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-svc.stop:
			return
		case <-ticker.C:
			if err := svc.RecomputeAll(); err != nil {
				log.WithError(err).Error("Scheduled ranking recompute failed")
			}
		}
	}
}

// ==================== RECOMPUTATION ====================

func (svc *RankingService) RecomputeAll() error {
	if err := svc.RecomputeGlobal(); err != nil {
		return err
	}
	if err := svc.RecomputeWeekly(time.Now()); err != nil {
		return err
	}

	categories, err := svc.postgres.DistinctCategories()
	if err != nil {
		return err
	}
	for _, category := range categories {
		if err := svc.RecomputeCategory(category); err != nil {
			return err
		}
	}
	return nil
}

func (svc *RankingService) RecomputeGlobal() error {
	started := time.Now()

	aggregates, err := svc.postgres.AggregateScores(nil, nil, "")
	if err != nil {
		return err
	}
	rankAggregates(aggregates)

	generation := time.Now().UnixNano()
	entries := make([]model.GlobalRanking, 0, len(aggregates))
	for i, agg := range aggregates {
		entries = append(entries, model.GlobalRanking{
			UserID:        agg.UserID,
			Username:      agg.Username,
			TotalScore:    agg.TotalScore,
			AverageScore:  roundScore(agg.AverageScore),
			QuizzesPlayed: agg.QuizzesPlayed,
			Level:         agg.Level,
			Rank:          i + 1,
		})
	}

	if err := svc.postgres.ReplaceGlobalRanking(entries, generation); err != nil {
		return err
	}

	svc.invalidateCache(shared.RankingScopeGlobal)
	svc.observeRecompute(shared.RankingScopeGlobal, started)
	log.WithField("entries", len(entries)).Info("Global ranking recomputed")
	return nil
}

func (svc *RankingService) RecomputeWeekly(at time.Time) error {
	started := time.Now()
	weekStart := WeekStart(at)
	weekEnd := weekStart.AddDate(0, 0, 7)

	aggregates, err := svc.postgres.AggregateScores(&weekStart, &weekEnd, "")
	if err != nil {
		return err
	}
	rankAggregates(aggregates)

	generation := time.Now().UnixNano()
	entries := make([]model.WeeklyRanking, 0, len(aggregates))
	for i, agg := range aggregates {
		entries = append(entries, model.WeeklyRanking{
			UserID:        agg.UserID,
			Username:      agg.Username,
			TotalScore:    agg.TotalScore,
			AverageScore:  roundScore(agg.AverageScore),
			QuizzesPlayed: agg.QuizzesPlayed,
			Level:         agg.Level,
			Rank:          i + 1,
		})
	}

	if err := svc.postgres.ReplaceWeeklyRanking(entries, weekStart, generation); err != nil {
		return err
	}

	svc.invalidateCache(shared.RankingScopeWeekly)
	svc.observeRecompute(shared.RankingScopeWeekly, started)
	log.WithFields(log.Fields{
		"week_start": weekStart.Format("2006-01-02"),
		"entries":    len(entries),
	}).Info("Weekly ranking recomputed")
	return nil
}

func (svc *RankingService) RecomputeCategory(category string) error {
	started := time.Now()

	aggregates, err := svc.postgres.AggregateScores(nil, nil, category)
	if err != nil {
		return err
	}
	rankAggregates(aggregates)

	generation := time.Now().UnixNano()
	entries := make([]model.CategoryRanking, 0, len(aggregates))
	for i, agg := range aggregates {
		entries = append(entries, model.CategoryRanking{
			UserID:        agg.UserID,
			Username:      agg.Username,
			TotalScore:    agg.TotalScore,
			AverageScore:  roundScore(agg.AverageScore),
			QuizzesPlayed: agg.QuizzesPlayed,
			Level:         agg.Level,
			Rank:          i + 1,
		})
	}

	if err := svc.postgres.ReplaceCategoryRanking(entries, category, generation); err != nil {
		return err
	}

	svc.invalidateCache(shared.RankingScopeCategory)
	svc.observeRecompute(shared.RankingScopeCategory, started)
	log.WithFields(log.Fields{
		"category": category,
		"entries":  len(entries),
	}).Info("Category ranking recomputed")
	return nil
}

// rankAggregates orders by total score, then average score, then quizzes
// played, then level, all descending, with user id as the final deterministic
// tie-break so identical input always produces an identical snapshot.
func rankAggregates(aggregates []ScoreAggregate) {
	sort.Slice(aggregates, func(i, j int) bool {
		a, b := aggregates[i], aggregates[j]
		if a.TotalScore != b.TotalScore {
			return a.TotalScore > b.TotalScore
		}
		if a.AverageScore != b.AverageScore {
			return a.AverageScore > b.AverageScore
		}
		if a.QuizzesPlayed != b.QuizzesPlayed {
			return a.QuizzesPlayed > b.QuizzesPlayed
		}
		if a.Level != b.Level {
			return a.Level > b.Level
		}
		return a.UserID < b.UserID
	})
}

func roundScore(v float64) float64 {
	return math.Round(v*100) / 100
}

// WeekStart returns Monday 00:00 local time of the week containing t.
func WeekStart(t time.Time) time.Time {
	t = t.Local()
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	day := t.AddDate(0, 0, -(weekday - 1))
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}

// ==================== READS ====================

func (svc *RankingService) GetGlobal(page, limit int, userID string) (*dto.RankingResponse, error) {
	page, limit = normalizePage(page, limit)

	cacheKey := fmt.Sprintf("%sglobal:%d:%d", rankingCachePrefix, page, limit)
	resp := &dto.RankingResponse{}
	if userID == "" && svc.cachedResponse(cacheKey, resp) {
		return resp, nil
	}

	entries, total, err := svc.postgres.GetGlobalRanking(page, limit)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load global ranking")
	}

	resp = &dto.RankingResponse{
		Scope:      shared.RankingScopeGlobal,
		Ranking:    make([]dto.RankingEntryResponse, 0, len(entries)),
		Pagination: paginate(page, limit, total),
	}
	for _, e := range entries {
		resp.Ranking = append(resp.Ranking, globalEntry(e))
	}

	if userID != "" {
		mine, err := svc.postgres.GetUserGlobalRank(userID)
		if err == nil && mine != nil {
			entry := globalEntry(*mine)
			resp.UserRank = &entry
		}
	} else {
		svc.cacheResponse(cacheKey, resp)
	}
	return resp, nil
}

func (svc *RankingService) GetWeekly(page, limit int, userID string) (*dto.RankingResponse, error) {
	page, limit = normalizePage(page, limit)
	weekStart := WeekStart(time.Now())

	cacheKey := fmt.Sprintf("%sweekly:%s:%d:%d", rankingCachePrefix, weekStart.Format("2006-01-02"), page, limit)
	resp := &dto.RankingResponse{}
	if userID == "" && svc.cachedResponse(cacheKey, resp) {
		return resp, nil
	}

	entries, total, err := svc.postgres.GetWeeklyRanking(weekStart, page, limit)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load weekly ranking")
	}

	resp = &dto.RankingResponse{
		Scope:      shared.RankingScopeWeekly,
		WeekStart:  &weekStart,
		Ranking:    make([]dto.RankingEntryResponse, 0, len(entries)),
		Pagination: paginate(page, limit, total),
	}
	for _, e := range entries {
		resp.Ranking = append(resp.Ranking, dto.RankingEntryResponse{
			Rank:          e.Rank,
			UserID:        e.UserID,
			Username:      e.Username,
			TotalScore:    e.TotalScore,
			AverageScore:  e.AverageScore,
			QuizzesPlayed: e.QuizzesPlayed,
			Level:         e.Level,
		})
	}

	if userID != "" {
		mine, err := svc.postgres.GetUserWeeklyRank(weekStart, userID)
		if err == nil && mine != nil {
			resp.UserRank = &dto.RankingEntryResponse{
				Rank:          mine.Rank,
				UserID:        mine.UserID,
				Username:      mine.Username,
				TotalScore:    mine.TotalScore,
				AverageScore:  mine.AverageScore,
				QuizzesPlayed: mine.QuizzesPlayed,
				Level:         mine.Level,
			}
		}
	} else {
		svc.cacheResponse(cacheKey, resp)
	}
	return resp, nil
}

func (svc *RankingService) GetCategory(category string, page, limit int, userID string) (*dto.RankingResponse, error) {
	if category == "" {
		return nil, shared.NewBadRequestError(nil, "Category is required")
	}
	page, limit = normalizePage(page, limit)

	cacheKey := fmt.Sprintf("%scategory:%s:%d:%d", rankingCachePrefix, category, page, limit)
	resp := &dto.RankingResponse{}
	if userID == "" && svc.cachedResponse(cacheKey, resp) {
		return resp, nil
	}

	entries, total, err := svc.postgres.GetCategoryRanking(category, page, limit)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load category ranking")
	}

	resp = &dto.RankingResponse{
		Scope:      shared.RankingScopeCategory,
		Category:   category,
		Ranking:    make([]dto.RankingEntryResponse, 0, len(entries)),
		Pagination: paginate(page, limit, total),
	}
	for _, e := range entries {
		resp.Ranking = append(resp.Ranking, dto.RankingEntryResponse{
			Rank:          e.Rank,
			UserID:        e.UserID,
			Username:      e.Username,
			TotalScore:    e.TotalScore,
			AverageScore:  e.AverageScore,
			QuizzesPlayed: e.QuizzesPlayed,
			Level:         e.Level,
		})
	}

	if userID != "" {
		mine, err := svc.postgres.GetUserCategoryRank(category, userID)
		if err == nil && mine != nil {
			resp.UserRank = &dto.RankingEntryResponse{
				Rank:          mine.Rank,
				UserID:        mine.UserID,
				Username:      mine.Username,
				TotalScore:    mine.TotalScore,
				AverageScore:  mine.AverageScore,
				QuizzesPlayed: mine.QuizzesPlayed,
				Level:         mine.Level,
			}
		}
	} else {
		svc.cacheResponse(cacheKey, resp)
	}
	return resp, nil
}

func globalEntry(e model.GlobalRanking) dto.RankingEntryResponse {
	return dto.RankingEntryResponse{
		Rank:          e.Rank,
		UserID:        e.UserID,
		Username:      e.Username,
		TotalScore:    e.TotalScore,
		AverageScore:  e.AverageScore,
		QuizzesPlayed: e.QuizzesPlayed,
		Level:         e.Level,
	}
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 25
	}
	return page, limit
}

func paginate(page, limit int, total int64) dto.PaginationResponse {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return dto.PaginationResponse{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

func (svc *RankingService) cachedResponse(key string, dest *dto.RankingResponse) bool {
	if svc.redis == nil {
		return false
	}
	return svc.redis.GetCachedJSON(ctx.Background(), key, dest)
}

func (svc *RankingService) cacheResponse(key string, resp *dto.RankingResponse) {
	if svc.redis == nil {
		return
	}
	svc.redis.CacheJSON(ctx.Background(), key, resp, time.Minute)
}

func (svc *RankingService) invalidateCache(scope string) {
	if svc.redis == nil {
		return
	}
	svc.redis.InvalidatePrefix(ctx.Background(), rankingCachePrefix+scope)
}

func (svc *RankingService) observeRecompute(scope string, started time.Time) {
	if svc.monitoring == nil {
		return
	}
	svc.monitoring.RankingRecomputes.WithLabelValues(scope).Inc()
	svc.monitoring.RankingRecomputeDuration.WithLabelValues(scope).Observe(time.Since(started).Seconds())
}
