package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/quizforge/quiz_api/dto"
	"github.com/quizforge/quiz_api/model"
	"github.com/quizforge/quiz_api/shared"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type QuizService struct {
	context.DefaultService

	postgres *PostgresService
}

const QUIZ_SVC = "quiz_svc"

func (svc QuizService) Id() string {
	return QUIZ_SVC
}

func (svc *QuizService) Start() error {
	svc.postgres = svc.Service(POSTGRES_SVC).(*PostgresService)
	return nil
}

// ==================== QUIZ CREATION ====================

func (svc *QuizService) CreateQuiz(creatorID string, req dto.CreateQuizRequest) (*dto.QuizResponse, error) {
	questions := make([]model.Question, 0, len(req.Questions))
	for i, q := range req.Questions {
		question, err := buildQuestion(q)
		if err != nil {
			return nil, shared.NewBadRequestError(err, fmt.Sprintf("Invalid question at position %d", i))
		}
		questions = append(questions, *question)
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	quiz := &model.Quiz{
		Title:        req.Title,
		Description:  req.Description,
		Category:     req.Category,
		CreatorID:    creatorID,
		TimeLimit:    req.TimeLimit,
		PassingScore: req.PassingScore,
		IsActive:     true,
		IsPublic:     isPublic,
		Questions:    questions,
	}

	created, err := svc.postgres.CreateQuiz(quiz)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to create quiz")
	}

	log.WithFields(log.Fields{
		"quiz_id":   created.ID,
		"questions": len(created.Questions),
	}).Info("Quiz created")

	resp := svc.toQuizResponse(created, true)
	return &resp, nil
}

// buildQuestion validates one inbound question against its type's rules and
// produces the storable row.
func buildQuestion(req dto.CreateQuestionRequest) (*model.Question, error) {
	options := req.Options
	correct := req.CorrectAnswers

	switch req.Type {
	case shared.QuestionTypeBoolean:
		// Boolean options are not client-defined.
		options = []string{"true", "false"}
		if len(correct) != 1 {
			return nil, errors.New("boolean question requires exactly one correct answer")
		}
		if correct[0] != "true" && correct[0] != "false" {
			return nil, errors.New("boolean correct answer must be true or false")
		}
	case shared.QuestionTypeSingle:
		if len(options) < 2 {
			return nil, errors.New("single choice question requires at least two options")
		}
		if len(correct) != 1 {
			return nil, errors.New("single choice question requires exactly one correct answer")
		}
		if !containsAll(options, correct) {
			return nil, errors.New("correct answer must be one of the options")
		}
	case shared.QuestionTypeMultiple:
		if len(options) < 2 {
			return nil, errors.New("multiple choice question requires at least two options")
		}
		if len(correct) == 0 {
			return nil, errors.New("multiple choice question requires at least one correct answer")
		}
		if !containsAll(options, correct) {
			return nil, errors.New("every correct answer must be one of the options")
		}
	case shared.QuestionTypeText:
		// Free-text questions carry no option list.
		options = nil
		if len(correct) == 0 {
			return nil, errors.New("text question requires at least one accepted answer")
		}
	default:
		return nil, fmt.Errorf("unknown question type: %s", req.Type)
	}

	points := req.Points
	if points <= 0 {
		points = 1
	}

	optionsJSON, err := marshalStringList(options)
	if err != nil {
		return nil, err
	}
	correctJSON, err := marshalStringList(correct)
	if err != nil {
		return nil, err
	}

	return &model.Question{
		Type:           req.Type,
		Text:           req.Text,
		Options:        optionsJSON,
		CorrectAnswers: correctJSON,
		Points:         points,
	}, nil
}

func containsAll(haystack, needles []string) bool {
	set := make(map[string]struct{}, len(haystack))
	for _, h := range haystack {
		set[h] = struct{}{}
	}
	for _, n := range needles {
		if _, ok := set[n]; !ok {
			return false
		}
	}
	return true
}

func marshalStringList(values []string) (json.RawMessage, error) {
	if values == nil {
		return nil, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// ==================== QUIZ READS ====================

// GetQuiz serves one quiz to a viewer. Private quizzes are only visible to
// their creator; viewerID is empty for anonymous reads.
func (svc *QuizService) GetQuiz(viewerID, quizID string) (*dto.QuizResponse, error) {
	quiz, err := svc.postgres.GetQuiz(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError(err, "Quiz not found")
		}
		return nil, shared.NewInternalError(err, "Failed to load quiz")
	}

	if !quiz.IsPublic && quiz.CreatorID != viewerID {
		return nil, shared.NewForbiddenError(nil, "Quiz is private")
	}

	resp := svc.toQuizResponse(quiz, true)
	return &resp, nil
}

func (svc *QuizService) ListQuizzes(category string, limit int) (*dto.QuizListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	quizzes, err := svc.postgres.ListQuizzes(category, limit)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to list quizzes")
	}

	resp := dto.QuizListResponse{
		Quizzes: make([]dto.QuizResponse, 0, len(quizzes)),
		Total:   len(quizzes),
	}
	for i := range quizzes {
		resp.Quizzes = append(resp.Quizzes, svc.toQuizResponse(&quizzes[i], false))
	}
	return &resp, nil
}

// toQuizResponse maps a quiz for API reads. Correct answers never leave the
// service layer.
func (svc *QuizService) toQuizResponse(quiz *model.Quiz, withQuestions bool) dto.QuizResponse {
	resp := dto.QuizResponse{
		ID:           quiz.ID,
		Title:        quiz.Title,
		Description:  quiz.Description,
		Category:     quiz.Category,
		CreatorID:    quiz.CreatorID,
		TimeLimit:    quiz.TimeLimit,
		PassingScore: quiz.PassingScore,
		IsActive:     quiz.IsActive,
		IsPublic:     quiz.IsPublic,
		PlayCount:    quiz.PlayCount,
		ViewCount:    quiz.ViewCount,
		LastPlayedAt: quiz.LastPlayedAt,
		CoverURL:     quiz.CoverURL,
		CreatedAt:    quiz.CreatedAt,
	}

	if withQuestions {
		resp.Questions = make([]dto.QuestionResponse, 0, len(quiz.Questions))
		for _, q := range quiz.Questions {
			resp.Questions = append(resp.Questions, dto.QuestionResponse{
				ID:       q.ID,
				Type:     q.Type,
				Text:     q.Text,
				Options:  DecodeStringList(q.Options),
				Points:   q.Points,
				Position: q.Position,
			})
		}
	}
	return resp
}
