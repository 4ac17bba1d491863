package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/quizforge/quiz_api/dto"
	"github.com/quizforge/quiz_api/shared"
)

type SessionHandler struct {
	sessionSvc SessionServiceInterface
}

func NewSessionHandler(sessionSvc SessionServiceInterface) *SessionHandler {
	return &SessionHandler{sessionSvc: sessionSvc}
}

// @Summary Start Session
// @Description Start a quiz attempt. Returns the existing session when one is already active for this quiz.
// @Tags session
// @Produce json
// @Security BearerAuth
// @Param quizId path string true "Quiz ID"
// @Success 200 {object} shared.Response{data=dto.SessionResponse} "Existing active session"
// @Success 201 {object} shared.Response{data=dto.SessionResponse} "New session"
// @Failure 403 {object} shared.Response
// @Failure 404 {object} shared.Response
// @Router /api/v1/quizzes/{quizId}/sessions [post]
func (h *SessionHandler) StartSession(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, created, err := h.sessionSvc.StartSession(userID, c.Params("quizId"))
	if err != nil {
		return err
	}
	if created {
		return shared.ResponseCreated(c, resp)
	}
	return shared.ResponseOK(c, resp)
}

// @Summary Get Session
// @Description Get the full session view, owner-scoped
// @Tags session
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.SessionResponse}
// @Failure 404 {object} shared.Response
// @Router /api/v1/sessions/{id} [get]
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.sessionSvc.GetSession(userID, c.Params("id"))
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, resp)
}

// @Summary Submit Answer
// @Description Record an answer for one question. A question can only be answered once per session.
// @Tags session
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param request body dto.SubmitAnswerRequest true "Answer"
// @Success 200 {object} shared.Response{data=dto.AnswerResultResponse}
// @Failure 400 {object} shared.Response
// @Router /api/v1/sessions/{id}/answers [post]
func (h *SessionHandler) SubmitAnswer(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.SubmitAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.ResponseJSON(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
	}
	if err := req.Validate(); err != nil {
		return shared.ResponseJSON(c, fiber.StatusBadRequest, "Validation failed", dto.CreateValidationErrorResponse(err))
	}

	resp, err := h.sessionSvc.SubmitAnswer(userID, c.Params("id"), req)
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, resp)
}

// @Summary Pause Session
// @Tags session
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.SessionResponse}
// @Failure 400 {object} shared.Response
// @Router /api/v1/sessions/{id}/pause [post]
func (h *SessionHandler) PauseSession(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.sessionSvc.PauseSession(userID, c.Params("id"))
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, resp)
}

// @Summary Resume Session
// @Tags session
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.SessionResponse}
// @Failure 400 {object} shared.Response
// @Router /api/v1/sessions/{id}/resume [post]
func (h *SessionHandler) ResumeSession(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.sessionSvc.ResumeSession(userID, c.Params("id"))
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, resp)
}

// @Summary Complete Session
// @Description Finalize the session. Triggers achievement evaluation and stat delivery; those are best-effort and never fail the completion.
// @Tags session
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.CompleteSessionResponse}
// @Failure 400 {object} shared.Response
// @Router /api/v1/sessions/{id}/complete [post]
func (h *SessionHandler) CompleteSession(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.sessionSvc.CompleteSession(userID, c.Params("id"), c.Get("Authorization"))
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, resp)
}

// @Summary Abandon Session
// @Tags session
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} shared.Response{data=dto.SessionResponse}
// @Failure 400 {object} shared.Response
// @Router /api/v1/sessions/{id}/abandon [post]
func (h *SessionHandler) AbandonSession(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.sessionSvc.AbandonSession(userID, c.Params("id"))
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, resp)
}
