package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/quizforge/quiz_api/dto"
	"github.com/quizforge/quiz_api/shared"
)

type QuizHandler struct {
	quizSvc QuizServiceInterface
	jwtSvc  JWTServiceInterface
}

func NewQuizHandler(quizSvc QuizServiceInterface, jwtSvc JWTServiceInterface) *QuizHandler {
	return &QuizHandler{
		quizSvc: quizSvc,
		jwtSvc:  jwtSvc,
	}
}

// @Summary Create Quiz
// @Description Create a quiz with its questions
// @Tags quiz
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateQuizRequest true "Quiz definition"
// @Success 201 {object} shared.Response{data=dto.QuizResponse}
// @Failure 400 {object} shared.Response
// @Router /api/v1/quizzes [post]
func (h *QuizHandler) CreateQuiz(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.CreateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.ResponseJSON(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
	}
	if err := req.Validate(); err != nil {
		return shared.ResponseJSON(c, fiber.StatusBadRequest, "Validation failed", dto.CreateValidationErrorResponse(err))
	}

	resp, err := h.quizSvc.CreateQuiz(userID, req)
	if err != nil {
		return err
	}
	return shared.ResponseCreated(c, resp)
}

// @Summary Get Quiz
// @Description Get a quiz with its questions. Correct answers are never included. Private quizzes are only served to their creator.
// @Tags quiz
// @Produce json
// @Param id path string true "Quiz ID"
// @Success 200 {object} shared.Response{data=dto.QuizResponse}
// @Failure 403 {object} shared.Response
// @Failure 404 {object} shared.Response
// @Router /api/v1/quizzes/{id} [get]
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	resp, err := h.quizSvc.GetQuiz(h.optionalUserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, resp)
}

// Quiz reads are public; a valid bearer token only unlocks the caller's own
// private quizzes.
func (h *QuizHandler) optionalUserID(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	token, err := h.jwtSvc.ExtractTokenFromHeader(authHeader)
	if err != nil {
		return ""
	}
	userID, err := h.jwtSvc.VerifyToken(token)
	if err != nil {
		return ""
	}
	return userID
}

// @Summary List Quizzes
// @Description List public active quizzes, optionally filtered by category
// @Tags quiz
// @Produce json
// @Param category query string false "Category filter"
// @Param limit query int false "Limit results (default 50)"
// @Success 200 {object} shared.Response{data=dto.QuizListResponse}
// @Router /api/v1/quizzes [get]
func (h *QuizHandler) ListQuizzes(c *fiber.Ctx) error {
	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	resp, err := h.quizSvc.ListQuizzes(c.Query("category"), limit)
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, resp)
}
