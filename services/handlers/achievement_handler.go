package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/quizforge/quiz_api/shared"
)

type AchievementHandler struct {
	achievementSvc AchievementServiceInterface
}

func NewAchievementHandler(achievementSvc AchievementServiceInterface) *AchievementHandler {
	return &AchievementHandler{achievementSvc: achievementSvc}
}

// @Summary My Achievements
// @Description List the authenticated user's unlocked achievements
// @Tags achievement
// @Produce json
// @Security BearerAuth
// @Success 200 {object} shared.Response{data=dto.AchievementListResponse}
// @Router /api/v1/achievements [get]
func (h *AchievementHandler) GetMyAchievements(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	resp, err := h.achievementSvc.ListUserAchievements(userID)
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, resp)
}
