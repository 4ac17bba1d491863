package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quizforge/quiz_api/model"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type PostgresService struct {
	context.DefaultService
	db *gorm.DB

	database string
}

const POSTGRES_SVC = "postgres_svc"

func (ds PostgresService) Id() string {
	return POSTGRES_SVC
}

func (ds PostgresService) Db() *gorm.DB {
	return ds.db
}

func (ds *PostgresService) Configure(ctx *context.Context) error {
	ds.database = os.Getenv("DATABASE_URL")
	if ds.database == "" {
		host := os.Getenv("DB_HOST")
		if host == "" {
			host = "localhost"
		}
		port := os.Getenv("DB_PORT")
		if port == "" {
			port = "5432"
		}
		user := os.Getenv("DB_USER")
		if user == "" {
			user = "postgres"
		}
		password := os.Getenv("DB_PASSWORD")
		if password == "" {
			password = "postgres"
		}
		dbname := os.Getenv("DB_NAME")
		if dbname == "" {
			dbname = "quiz_api"
		}
		sslmode := os.Getenv("DB_SSLMODE")
		if sslmode == "" {
			sslmode = "disable"
		}
		timezone := os.Getenv("DB_TIMEZONE")
		if timezone == "" {
			timezone = "UTC"
		}

		ds.database = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
			host, user, password, dbname, port, sslmode, timezone)
	}

	return ds.DefaultService.Configure(ctx)
}

func (ds *PostgresService) Start() (err error) {
	maxRetries := 10
	retryDelay := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Printf("Attempting to connect to database (attempt %d/%d)...", attempt, maxRetries)

		ds.db, err = gorm.Open(postgres.Open(ds.database), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})

		if err == nil {
			sqlDB, dbErr := ds.db.DB()
			if dbErr == nil {
				pingErr := sqlDB.Ping()
				if pingErr == nil {
					log.Println("Successfully connected to database")
					break
				}
				err = pingErr
			} else {
				err = dbErr
			}
		}

		if attempt == maxRetries {
			log.Printf("Failed to connect to database after %d attempts: %v", maxRetries, err)
			return err
		}

		log.Printf("Database connection failed: %v. Retrying in %v...", err, retryDelay)
		time.Sleep(retryDelay)

		retryDelay *= 2
		if retryDelay > 10*time.Second {
			retryDelay = 10 * time.Second
		}
	}

	err = ds.db.AutoMigrate(Models()...)
	if err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}

	log.Println("Database connected and migrated successfully")
	return nil
}

// Models lists every persisted type, shared with the sqlite dev service and
// the seeder.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Quiz{},
		&model.Question{},
		&model.QuizSession{},
		&model.SessionAnswer{},
		&model.Achievement{},
		&model.GlobalRanking{},
		&model.WeeklyRanking{},
		&model.CategoryRanking{},
		&model.RankingEpoch{},
	}
}

func (ds *PostgresService) Shutdown() {
	sqlDB, err := ds.db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

func (ds *PostgresService) HandleError(err error) error {
	if err == nil {
		return nil
	}

	var statusCode int
	var errorType string

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		statusCode = http.StatusNotFound
		errorType = "NOT_FOUND"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		statusCode = http.StatusConflict
		errorType = "CONFLICT"
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		statusCode = http.StatusBadRequest
		errorType = "FOREIGN_KEY_VIOLATION"
	case errors.Is(err, gorm.ErrInvalidTransaction):
		statusCode = http.StatusInternalServerError
		errorType = "TRANSACTION_ERROR"
	default:
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") ||
			strings.Contains(err.Error(), "UNIQUE constraint failed") {
			statusCode = http.StatusConflict
			errorType = "UNIQUE_CONSTRAINT"
		} else if strings.Contains(err.Error(), "connection refused") {
			statusCode = http.StatusServiceUnavailable
			errorType = "DATABASE_CONNECTION_ERROR"
		} else {
			statusCode = http.StatusInternalServerError
			errorType = "INTERNAL_ERROR"
		}
	}

	logEntry := log.WithFields(log.Fields{
		"status_code": statusCode,
		"error_type":  errorType,
		"error":       err.Error(),
	})

	if statusCode >= 500 {
		logEntry.Error("Database error occurred")
	} else {
		logEntry.Warn("Database operation failed")
	}

	return fmt.Errorf("%s: %w", errorType, err)
}

// IsDuplicateErr reports whether err was caused by a uniqueness violation,
// regardless of the underlying driver's wording.
func IsDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// ==================== USER METHODS ====================

func (ds *PostgresService) CreateUser(user *model.User) (*model.User, error) {
	if user.ID == "" {
		id, _ := uuid.NewV7()
		user.ID = id.String()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	if err := ds.db.Create(user).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return user, nil
}

func (ds *PostgresService) GetUserByID(userID string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("id = ? AND deleted_at IS NULL", userID).First(&user).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &user, nil
}

func (ds *PostgresService) GetUserByEmailOrUsername(emailOrUsername string) (*model.User, error) {
	var user model.User
	if err := ds.db.Where("(LOWER(email) = LOWER(?) OR LOWER(username) = LOWER(?)) AND deleted_at IS NULL",
		emailOrUsername, emailOrUsername).First(&user).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &user, nil
}

func (ds *PostgresService) UpdateUser(user *model.User) error {
	user.UpdatedAt = time.Now()
	if err := ds.db.Save(user).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}

// ==================== QUIZ METHODS ====================

func (ds *PostgresService) CreateQuiz(quiz *model.Quiz) (*model.Quiz, error) {
	if quiz.ID == "" {
		id, _ := uuid.NewV7()
		quiz.ID = id.String()
	}
	quiz.CreatedAt = time.Now()
	quiz.UpdatedAt = time.Now()

	for i := range quiz.Questions {
		if quiz.Questions[i].ID == "" {
			id, _ := uuid.NewV7()
			quiz.Questions[i].ID = id.String()
		}
		quiz.Questions[i].QuizID = quiz.ID
		quiz.Questions[i].Position = i
		quiz.Questions[i].CreatedAt = time.Now()
		quiz.Questions[i].UpdatedAt = time.Now()
	}

	if err := ds.db.Create(quiz).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return quiz, nil
}

func (ds *PostgresService) GetQuiz(quizID string) (*model.Quiz, error) {
	var quiz model.Quiz
	if err := ds.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("id = ?", quizID).First(&quiz).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &quiz, nil
}

func (ds *PostgresService) ListQuizzes(category string, limit int) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	query := ds.db.Where("is_active = ? AND is_public = ?", true, true)
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Order("created_at DESC").Find(&quizzes).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return quizzes, nil
}

func (ds *PostgresService) IncrementQuizViews(quizID string) error {
	if err := ds.db.Model(&model.Quiz{}).Where("id = ?", quizID).
		Updates(map[string]interface{}{
			"view_count":     gorm.Expr("view_count + 1"),
			"last_played_at": time.Now(),
		}).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *PostgresService) IncrementQuizPlays(quizID string) error {
	if err := ds.db.Model(&model.Quiz{}).Where("id = ?", quizID).
		Update("play_count", gorm.Expr("play_count + 1")).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *PostgresService) UpdateQuizCover(quizID, coverURL string) error {
	if err := ds.db.Model(&model.Quiz{}).Where("id = ?", quizID).
		Update("cover_url", coverURL).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}

// ==================== SESSION METHODS ====================

func (ds *PostgresService) CreateSession(session *model.QuizSession) (*model.QuizSession, error) {
	if session.ID == "" {
		id, _ := uuid.NewV7()
		session.ID = id.String()
	}
	session.CreatedAt = time.Now()
	session.UpdatedAt = time.Now()

	// The partial unique index over (user_id, quiz_id) for non-terminal
	// statuses rejects a concurrent duplicate start here.
	if err := ds.db.Create(session).Error; err != nil {
		if IsDuplicateErr(err) {
			return nil, fmt.Errorf("ACTIVE_SESSION_EXISTS: %w", err)
		}
		return nil, ds.HandleError(err)
	}
	return session, nil
}

func (ds *PostgresService) FindActiveSession(userID, quizID string) (*model.QuizSession, error) {
	var session model.QuizSession
	err := ds.db.Preload("Answers", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("user_id = ? AND quiz_id = ? AND status IN ?", userID, quizID,
		[]string{"in_progress", "paused"}).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return &session, nil
}

// GetSessionForUser loads a session scoped to its owner. A foreign user id
// yields not-found, never the session.
func (ds *PostgresService) GetSessionForUser(sessionID, userID string) (*model.QuizSession, error) {
	var session model.QuizSession
	if err := ds.db.Preload("Answers", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).Where("id = ? AND user_id = ?", sessionID, userID).First(&session).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return &session, nil
}

func (ds *PostgresService) SaveSession(session *model.QuizSession) error {
	session.UpdatedAt = time.Now()
	if err := ds.db.Omit("Answers").Save(session).Error; err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *PostgresService) AppendSessionAnswer(answer *model.SessionAnswer) error {
	if answer.ID == "" {
		id, _ := uuid.NewV7()
		answer.ID = id.String()
	}
	answer.AnsweredAt = time.Now()

	if err := ds.db.Create(answer).Error; err != nil {
		if IsDuplicateErr(err) {
			return fmt.Errorf("DUPLICATE_ANSWER: %w", err)
		}
		return ds.HandleError(err)
	}
	return nil
}

func (ds *PostgresService) GetSessionAnswers(sessionID string) ([]model.SessionAnswer, error) {
	var answers []model.SessionAnswer
	if err := ds.db.Where("session_id = ?", sessionID).
		Order("position ASC").Find(&answers).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return answers, nil
}

func (ds *PostgresService) CountCompletedSessions(userID, quizID string) (int64, error) {
	var count int64
	if err := ds.db.Model(&model.QuizSession{}).
		Where("user_id = ? AND quiz_id = ? AND status = ?", userID, quizID, "completed").
		Count(&count).Error; err != nil {
		return 0, ds.HandleError(err)
	}
	return count, nil
}

// CompletedSessionRecord is one completed session joined with its quiz
// category, the shape achievement predicates consume.
type CompletedSessionRecord struct {
	SessionID      string
	QuizID         string
	Category       string
	Score          int
	MaxScore       int
	Accuracy       float64
	TimeSpent      int
	TotalQuestions int
	CompletedAt    time.Time
}

func (ds *PostgresService) GetCompletedSessions(userID string) ([]CompletedSessionRecord, error) {
	var records []CompletedSessionRecord
	err := ds.db.Table("quiz_sessions").
		Select(`quiz_sessions.id AS session_id,
			quiz_sessions.quiz_id,
			quizzes.category,
			quiz_sessions.score,
			quiz_sessions.max_score,
			quiz_sessions.accuracy,
			quiz_sessions.time_spent,
			quiz_sessions.current_question_index AS total_questions,
			quiz_sessions.completed_at`).
		Joins("JOIN quizzes ON quizzes.id = quiz_sessions.quiz_id").
		Where("quiz_sessions.user_id = ? AND quiz_sessions.status = ?", userID, "completed").
		Order("quiz_sessions.completed_at ASC").
		Scan(&records).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return records, nil
}

// ==================== ACHIEVEMENT METHODS ====================

func (ds *PostgresService) GetUserAchievements(userID string) ([]model.Achievement, error) {
	var achievements []model.Achievement
	if err := ds.db.Where("user_id = ?", userID).
		Order("unlocked_at DESC").Find(&achievements).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return achievements, nil
}

// AwardAchievement records the award and credits experience in one
// transaction so a crash can never leave one without the other.
func (ds *PostgresService) AwardAchievement(achievement *model.Achievement, newLevel int) error {
	if achievement.ID == "" {
		id, _ := uuid.NewV7()
		achievement.ID = id.String()
	}
	achievement.UnlockedAt = time.Now()
	achievement.CreatedAt = time.Now()

	err := ds.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(achievement).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).Where("id = ?", achievement.UserID).
			Updates(map[string]interface{}{
				"experience": gorm.Expr("experience + ?", achievement.PointsAwarded),
				"level":      newLevel,
				"updated_at": time.Now(),
			}).Error
	})
	if err != nil {
		if IsDuplicateErr(err) {
			return fmt.Errorf("ACHIEVEMENT_EXISTS: %w", err)
		}
		return ds.HandleError(err)
	}
	return nil
}

// ==================== RANKING METHODS ====================

// ScoreAggregate is one user's rollup over completed sessions, the input to
// ranking snapshot computation.
type ScoreAggregate struct {
	UserID        string
	Username      string
	Level         int
	TotalScore    int
	AverageScore  float64
	QuizzesPlayed int
}

func (ds *PostgresService) AggregateScores(from, to *time.Time, category string) ([]ScoreAggregate, error) {
	query := ds.db.Table("quiz_sessions").
		Select(`quiz_sessions.user_id,
			users.username,
			users.level,
			SUM(quiz_sessions.score) AS total_score,
			AVG(quiz_sessions.score) AS average_score,
			COUNT(*) AS quizzes_played`).
		Joins("JOIN users ON users.id = quiz_sessions.user_id").
		Where("quiz_sessions.status = ?", "completed").
		Where("users.is_active = ? AND users.deleted_at IS NULL", true)

	if from != nil {
		query = query.Where("quiz_sessions.completed_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("quiz_sessions.completed_at < ?", *to)
	}
	if category != "" {
		query = query.Joins("JOIN quizzes ON quizzes.id = quiz_sessions.quiz_id").
			Where("quizzes.category = ?", category)
	}

	var aggregates []ScoreAggregate
	if err := query.Group("quiz_sessions.user_id, users.username, users.level").
		Scan(&aggregates).Error; err != nil {
		return nil, ds.HandleError(err)
	}
	return aggregates, nil
}

// ReplaceGlobalRanking writes a snapshot under a fresh generation, flips the
// epoch pointer and drops prior generations. Readers pinned to the epoch see
// either the whole old snapshot or the whole new one.
func (ds *PostgresService) ReplaceGlobalRanking(entries []model.GlobalRanking, generation int64) error {
	err := ds.db.Transaction(func(tx *gorm.DB) error {
		for i := range entries {
			id, _ := uuid.NewV7()
			entries[i].ID = id.String()
			entries[i].Generation = generation
			entries[i].CreatedAt = time.Now()
		}
		if len(entries) > 0 {
			if err := tx.CreateInBatches(entries, 200).Error; err != nil {
				return err
			}
		}
		if err := ds.upsertEpoch(tx, "global", "", generation); err != nil {
			return err
		}
		return tx.Where("generation < ?", generation).Delete(&model.GlobalRanking{}).Error
	})
	if err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *PostgresService) ReplaceWeeklyRanking(entries []model.WeeklyRanking, weekStart time.Time, generation int64) error {
	scopeKey := weekStart.Format("2006-01-02")
	err := ds.db.Transaction(func(tx *gorm.DB) error {
		for i := range entries {
			id, _ := uuid.NewV7()
			entries[i].ID = id.String()
			entries[i].Generation = generation
			entries[i].WeekStart = weekStart
			entries[i].CreatedAt = time.Now()
		}
		if len(entries) > 0 {
			if err := tx.CreateInBatches(entries, 200).Error; err != nil {
				return err
			}
		}
		if err := ds.upsertEpoch(tx, "weekly", scopeKey, generation); err != nil {
			return err
		}
		return tx.Where("week_start = ? AND generation < ?", weekStart, generation).
			Delete(&model.WeeklyRanking{}).Error
	})
	if err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *PostgresService) ReplaceCategoryRanking(entries []model.CategoryRanking, category string, generation int64) error {
	err := ds.db.Transaction(func(tx *gorm.DB) error {
		for i := range entries {
			id, _ := uuid.NewV7()
			entries[i].ID = id.String()
			entries[i].Generation = generation
			entries[i].Category = category
			entries[i].CreatedAt = time.Now()
		}
		if len(entries) > 0 {
			if err := tx.CreateInBatches(entries, 200).Error; err != nil {
				return err
			}
		}
		if err := ds.upsertEpoch(tx, "category", category, generation); err != nil {
			return err
		}
		return tx.Where("category = ? AND generation < ?", category, generation).
			Delete(&model.CategoryRanking{}).Error
	})
	if err != nil {
		return ds.HandleError(err)
	}
	return nil
}

func (ds *PostgresService) upsertEpoch(tx *gorm.DB, scope, scopeKey string, generation int64) error {
	var epoch model.RankingEpoch
	err := tx.Where("scope = ? AND scope_key = ?", scope, scopeKey).First(&epoch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		id, _ := uuid.NewV7()
		epoch = model.RankingEpoch{
			ID:         id.String(),
			Scope:      scope,
			ScopeKey:   scopeKey,
			Generation: generation,
			UpdatedAt:  time.Now(),
		}
		return tx.Create(&epoch).Error
	}
	if err != nil {
		return err
	}
	epoch.Generation = generation
	epoch.UpdatedAt = time.Now()
	return tx.Save(&epoch).Error
}

func (ds *PostgresService) CurrentGeneration(scope, scopeKey string) (int64, error) {
	var epoch model.RankingEpoch
	err := ds.db.Where("scope = ? AND scope_key = ?", scope, scopeKey).First(&epoch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, ds.HandleError(err)
	}
	return epoch.Generation, nil
}

func (ds *PostgresService) GetGlobalRanking(page, limit int) ([]model.GlobalRanking, int64, error) {
	generation, err := ds.CurrentGeneration("global", "")
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := ds.db.Model(&model.GlobalRanking{}).
		Where("generation = ?", generation).Count(&total).Error; err != nil {
		return nil, 0, ds.HandleError(err)
	}

	var entries []model.GlobalRanking
	if err := ds.db.Where("generation = ?", generation).
		Order("rank ASC").Offset((page - 1) * limit).Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, 0, ds.HandleError(err)
	}
	return entries, total, nil
}

func (ds *PostgresService) GetUserGlobalRank(userID string) (*model.GlobalRanking, error) {
	generation, err := ds.CurrentGeneration("global", "")
	if err != nil {
		return nil, err
	}
	var entry model.GlobalRanking
	err = ds.db.Where("generation = ? AND user_id = ?", generation, userID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return &entry, nil
}

func (ds *PostgresService) GetWeeklyRanking(weekStart time.Time, page, limit int) ([]model.WeeklyRanking, int64, error) {
	generation, err := ds.CurrentGeneration("weekly", weekStart.Format("2006-01-02"))
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := ds.db.Model(&model.WeeklyRanking{}).
		Where("generation = ? AND week_start = ?", generation, weekStart).
		Count(&total).Error; err != nil {
		return nil, 0, ds.HandleError(err)
	}

	var entries []model.WeeklyRanking
	if err := ds.db.Where("generation = ? AND week_start = ?", generation, weekStart).
		Order("rank ASC").Offset((page - 1) * limit).Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, 0, ds.HandleError(err)
	}
	return entries, total, nil
}

func (ds *PostgresService) GetUserWeeklyRank(weekStart time.Time, userID string) (*model.WeeklyRanking, error) {
	generation, err := ds.CurrentGeneration("weekly", weekStart.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	var entry model.WeeklyRanking
	err = ds.db.Where("generation = ? AND week_start = ? AND user_id = ?",
		generation, weekStart, userID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return &entry, nil
}

func (ds *PostgresService) GetCategoryRanking(category string, page, limit int) ([]model.CategoryRanking, int64, error) {
	generation, err := ds.CurrentGeneration("category", category)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := ds.db.Model(&model.CategoryRanking{}).
		Where("generation = ? AND category = ?", generation, category).
		Count(&total).Error; err != nil {
		return nil, 0, ds.HandleError(err)
	}

	var entries []model.CategoryRanking
	if err := ds.db.Where("generation = ? AND category = ?", generation, category).
		Order("rank ASC").Offset((page - 1) * limit).Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, 0, ds.HandleError(err)
	}
	return entries, total, nil
}

func (ds *PostgresService) GetUserCategoryRank(category, userID string) (*model.CategoryRanking, error) {
	generation, err := ds.CurrentGeneration("category", category)
	if err != nil {
		return nil, err
	}
	var entry model.CategoryRanking
	err = ds.db.Where("generation = ? AND category = ? AND user_id = ?",
		generation, category, userID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return &entry, nil
}

// DistinctCategories lists categories that have at least one completed
// session, the set the scheduler recomputes.
func (ds *PostgresService) DistinctCategories() ([]string, error) {
	var categories []string
	err := ds.db.Table("quizzes").
		Distinct("quizzes.category").
		Joins("JOIN quiz_sessions ON quiz_sessions.quiz_id = quizzes.id").
		Where("quiz_sessions.status = ? AND quizzes.category <> ''", "completed").
		Pluck("quizzes.category", &categories).Error
	if err != nil {
		return nil, ds.HandleError(err)
	}
	return categories, nil
}

// DecodeStringList unmarshals a JSON string array column. Empty or malformed
// values decode to nil instead of failing the read.
func DecodeStringList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		log.WithError(err).Warn("Failed to decode string list column")
		return nil
	}
	return out
}
