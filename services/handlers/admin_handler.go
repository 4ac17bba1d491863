package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/quizforge/quiz_api/shared"
)

type AdminHandler struct {
	rankingSvc     RankingServiceInterface
	achievementSvc AchievementServiceInterface
	mediaSvc       MediaServiceInterface
}

func NewAdminHandler(rankingSvc RankingServiceInterface, achievementSvc AchievementServiceInterface, mediaSvc MediaServiceInterface) *AdminHandler {
	return &AdminHandler{
		rankingSvc:     rankingSvc,
		achievementSvc: achievementSvc,
		mediaSvc:       mediaSvc,
	}
}

// @Summary Recompute Rankings
// @Description Trigger a full leaderboard recomputation outside the scheduled interval
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} shared.Response
// @Failure 403 {object} shared.Response
// @Router /api/v1/admin/rankings/recompute [post]
func (h *AdminHandler) RecomputeRankings(c *fiber.Ctx) error {
	if err := h.rankingSvc.RecomputeAll(); err != nil {
		return shared.NewInternalError(err, "Ranking recomputation failed")
	}
	return shared.ResponseOK(c, nil)
}

// @Summary Re-evaluate Achievements
// @Description Replay the achievement registry against a user's history. Awarding is idempotent.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {object} shared.Response{data=[]dto.AchievementResponse}
// @Failure 403 {object} shared.Response
// @Router /api/v1/admin/users/{userId}/achievements/evaluate [post]
func (h *AdminHandler) EvaluateAchievements(c *fiber.Ctx) error {
	awarded, err := h.achievementSvc.EvaluateUser(c.Params("userId"))
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, awarded)
}

// @Summary Upload Achievement Badge
// @Description Upload the badge image served for an achievement code
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param code path string true "Achievement code"
// @Param file formData file true "Badge image"
// @Success 200 {object} shared.Response
// @Failure 403 {object} shared.Response
// @Router /api/v1/admin/achievements/{code}/badge [post]
func (h *AdminHandler) UploadBadge(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return shared.ResponseJSON(c, fiber.StatusBadRequest, "Missing badge file", err.Error())
	}

	url, err := h.mediaSvc.UploadBadge(c.Params("code"), file)
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, fiber.Map{"badge_url": url})
}

// @Summary Upload Quiz Cover
// @Description Upload the cover image for a quiz
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Param file formData file true "Cover image"
// @Success 200 {object} shared.Response
// @Failure 403 {object} shared.Response
// @Router /api/v1/admin/quizzes/{id}/cover [post]
func (h *AdminHandler) UploadQuizCover(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return shared.ResponseJSON(c, fiber.StatusBadRequest, "Missing cover file", err.Error())
	}

	url, err := h.mediaSvc.UploadQuizCover(c.Params("id"), file)
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, fiber.Map{"cover_url": url})
}
