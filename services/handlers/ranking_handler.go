package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/quizforge/quiz_api/shared"
)

type RankingHandler struct {
	rankingSvc RankingServiceInterface
	jwtSvc     JWTServiceInterface
}

func NewRankingHandler(rankingSvc RankingServiceInterface, jwtSvc JWTServiceInterface) *RankingHandler {
	return &RankingHandler{
		rankingSvc: rankingSvc,
		jwtSvc:     jwtSvc,
	}
}

// @Summary Global Ranking
// @Description Paginated global leaderboard. Includes the caller's own rank when authenticated.
// @Tags ranking
// @Produce json
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 25)"
// @Success 200 {object} shared.Response{data=dto.RankingResponse}
// @Router /api/v1/rankings/global [get]
func (h *RankingHandler) GetGlobalRanking(c *fiber.Ctx) error {
	page, limit := h.pagination(c)

	resp, err := h.rankingSvc.GetGlobal(page, limit, h.optionalUserID(c))
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, resp)
}

// @Summary Weekly Ranking
// @Description Paginated leaderboard for the current week (Monday 00:00 local)
// @Tags ranking
// @Produce json
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 25)"
// @Success 200 {object} shared.Response{data=dto.RankingResponse}
// @Router /api/v1/rankings/weekly [get]
func (h *RankingHandler) GetWeeklyRanking(c *fiber.Ctx) error {
	page, limit := h.pagination(c)

	resp, err := h.rankingSvc.GetWeekly(page, limit, h.optionalUserID(c))
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, resp)
}

// @Summary Category Ranking
// @Description Paginated leaderboard for one quiz category
// @Tags ranking
// @Produce json
// @Param category path string true "Category"
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 25)"
// @Success 200 {object} shared.Response{data=dto.RankingResponse}
// @Router /api/v1/rankings/category/{category} [get]
func (h *RankingHandler) GetCategoryRanking(c *fiber.Ctx) error {
	page, limit := h.pagination(c)

	resp, err := h.rankingSvc.GetCategory(c.Params("category"), page, limit, h.optionalUserID(c))
	if err != nil {
		return err
	}
	return shared.ResponseOK(c, resp)
}

func (h *RankingHandler) pagination(c *fiber.Ctx) (int, int) {
	page := 1
	if p := c.Query("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}
	limit := 25
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	return page, limit
}

// Ranking reads are public; a valid bearer token only adds the userRank slot.
func (h *RankingHandler) optionalUserID(c *fiber.Ctx) string {
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
