package seeders

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/quizforge/quiz_api/model"
	"github.com/quizforge/quiz_api/shared"
)

type MainSeeder struct {
	db *gorm.DB
}

func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{db: db}
}

func (s *MainSeeder) SeedAll() error {
	if err := s.SeedUsers(); err != nil {
		return err
	}
	return s.SeedQuizzes()
}

func (s *MainSeeder) SeedUsers() error {
	users := []struct {
		username string
		email    string
		role     string
	}{
		{"admin", "admin@example.com", shared.RoleAdmin},
		{"alice", "alice@example.com", shared.RoleUser},
		{"bob", "bob@example.com", shared.RoleUser},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("Password1"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	for _, u := range users {
		var count int64
		s.db.Model(&model.User{}).Where("username = ?", u.username).Count(&count)
		if count > 0 {
			continue
		}

		id, _ := uuid.NewV7()
		user := model.User{
			ID:           id.String(),
			Username:     u.username,
			Email:        u.email,
			PasswordHash: string(hash),
			Role:         u.role,
			IsActive:     true,
			Level:        1,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return err
		}
		log.Printf("Seeded user %s", u.username)
	}
	return nil
}

type seedQuestion struct {
	qType   string
	text    string
	options []string
	correct []string
	points  int
}

func (s *MainSeeder) SeedQuizzes() error {
	var admin model.User
	if err := s.db.Where("username = ?", "admin").First(&admin).Error; err != nil {
		return err
	}

	quizzes := []struct {
		title     string
		category  string
		passing   int
		questions []seedQuestion
	}{
		{
			title:    "World Capitals",
			category: "geography",
			passing:  60,
			questions: []seedQuestion{
				{shared.QuestionTypeSingle, "What is the capital of France?", []string{"Paris", "Lyon", "Marseille"}, []string{"Paris"}, 1},
				{shared.QuestionTypeText, "What is the capital of Japan?", nil, []string{"Tokyo"}, 2},
				{shared.QuestionTypeBoolean, "Canberra is the capital of Australia.", []string{"true", "false"}, []string{"true"}, 1},
			},
		},
		{
			title:    "Basic Arithmetic",
			category: "math",
			passing:  70,
			questions: []seedQuestion{
				{shared.QuestionTypeSingle, "What is 7 x 8?", []string{"54", "56", "64"}, []string{"56"}, 1},
				{shared.QuestionTypeMultiple, "Which numbers are prime?", []string{"2", "4", "7", "9"}, []string{"2", "7"}, 2},
				{shared.QuestionTypeBoolean, "Zero is an even number.", []string{"true", "false"}, []string{"true"}, 1},
			},
		},
	}

	for _, q := range quizzes {
		var count int64
		s.db.Model(&model.Quiz{}).Where("title = ?", q.title).Count(&count)
		if count > 0 {
			continue
		}

		quizID, _ := uuid.NewV7()
		quiz := model.Quiz{
			ID:           quizID.String(),
			Title:        q.title,
			Category:     q.category,
			CreatorID:    admin.ID,
			PassingScore: q.passing,
			IsActive:     true,
			IsPublic:     true,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}

		for i, sq := range q.questions {
			questionID, _ := uuid.NewV7()
			options, _ := json.Marshal(sq.options)
			correct, _ := json.Marshal(sq.correct)
			if sq.options == nil {
				options = nil
			}
			quiz.Questions = append(quiz.Questions, model.Question{
				ID:             questionID.String(),
				QuizID:         quiz.ID,
				Type:           sq.qType,
				Text:           sq.text,
				Options:        options,
				CorrectAnswers: correct,
				Points:         sq.points,
				Position:       i,
				CreatedAt:      time.Now(),
				UpdatedAt:      time.Now(),
			})
		}

		if err := s.db.Create(&quiz).Error; err != nil {
			return err
		}
		log.Printf("Seeded quiz %q with %d questions", q.title, len(quiz.Questions))
	}
	return nil
}
