package middleware

import (
	"net/http"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"

	"github.com/quizforge/quiz_api/services"
	"github.com/quizforge/quiz_api/shared"
)

type AuthMiddleware struct {
	context.DefaultService

	jwtSvc *services.JWTService
}

const AUTH_MIDDLEWARE_SVC = "auth"

func (svc AuthMiddleware) Id() string {
	return AUTH_MIDDLEWARE_SVC
}

func (svc *AuthMiddleware) Configure(ctx *context.Context) error {
	svc.jwtSvc = ctx.Service(services.JWT_SVC).(*services.JWTService)
	return svc.DefaultService.Configure(ctx)
}

func (svc *AuthMiddleware) Start() error {
	return nil
}

func (svc *AuthMiddleware) RequiredAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		token, err := svc.jwtSvc.ExtractTokenFromHeader(authHeader)
		if err != nil {
			return shared.ResponseJSON(c, http.StatusUnauthorized, "Unauthorized", err.Error())
		}

		claims, err := svc.jwtSvc.ValidateToken(token)
		if err != nil {
			return shared.ResponseJSON(c, http.StatusUnauthorized, "Unauthorized", "Invalid JWT token")
		}

		if claims.UserID == "" {
			return shared.ResponseJSON(c, http.StatusUnauthorized, "Unauthorized", "Invalid user ID in token")
		}

		c.Locals(shared.UserID, claims.UserID)
		c.Locals(shared.UserRole, claims.Role)
		return c.Next()
	}
}

// RequiredAdmin must run after RequiredAuth.
func (svc *AuthMiddleware) RequiredAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(shared.UserRole).(string)
		if role != shared.RoleAdmin {
			return shared.ResponseJSON(c, http.StatusForbidden, "Forbidden", "Admin role required")
		}
		return c.Next()
	}
}
