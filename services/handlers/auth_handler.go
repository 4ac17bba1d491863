package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/quizforge/quiz_api/dto"
	"github.com/quizforge/quiz_api/shared"
)

type AuthHandler struct {
	authSvc AuthServiceInterface
}

func NewAuthHandler(authSvc AuthServiceInterface) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// @Summary Register
// @Description Create a new user account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration details"
// @Success 201 {object} shared.Response{data=dto.RegisterResponse}
// @Failure 400 {object} shared.Response
// @Failure 409 {object} shared.Response
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.ResponseJSON(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
	}
	if err := req.Validate(); err != nil {
		return shared.ResponseJSON(c, fiber.StatusBadRequest, "Validation failed", dto.CreateValidationErrorResponse(err))
	}

	resp, err := h.authSvc.Register(req)
	if err != nil {
		return err
	}
	return shared.ResponseCreated(c, resp)
}

// @Summary Login
// @Description Authenticate with email or username and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Credentials"
// @Success 200 {object} shared.Response{data=dto.LoginResponse}
// @Failure 401 {object} shared.Response
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return shared.ResponseJSON(c, fiber.StatusBadRequest, "Invalid request body", err.Error())
	}
	if err := req.Validate(); err != nil {
		return shared.ResponseJSON(c, fiber.StatusBadRequest, "Validation failed", dto.CreateValidationErrorResponse(err))
	}

	resp, err := h.authSvc.Login(req)
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, resp)
}
