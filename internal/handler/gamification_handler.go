package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/lms-api/internal/domain/entity"
	"github.com/yourusername/lms-api/internal/service"
)

const defaultLeaderboardLimit = 10

// GamificationHandler обрабатывает рейтинги и статистику опыта
type GamificationHandler struct {
	gamificationService *service.GamificationService
}

// NewGamificationHandler создает обработчик
func NewGamificationHandler(gamificationService *service.GamificationService) *GamificationHandler {
	return &GamificationHandler{gamificationService: gamificationService}
}

// GlobalLeaderboard возвращает общий рейтинг
// GET /api/leaderboard?period=all|week&limit=10
func (h *GamificationHandler) GlobalLeaderboard(c *gin.Context) {
	h.leaderboard(c, entity.GlobalLeaderboard)
}

// CourseLeaderboard возвращает рейтинг курса
// GET /api/courses/:id/leaderboard
func (h *GamificationHandler) CourseLeaderboard(c *gin.Context) {
	h.leaderboard(c, c.MustGet("courseID").(uint))
}

func (h *GamificationHandler) leaderboard(c *gin.Context, courseID uint) {
	period := c.DefaultQuery("period", service.PeriodAllTime)
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLeaderboardLimit)))
	if err != nil || limit < 1 {
		limit = defaultLeaderboardLimit
	}

	entries, err := h.gamificationService.Leaderboard(c.Request.Context(), courseID, period, limit)
	if err != nil {
		handleError(c, "GamificationHandler", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"course_id": courseID,
		"period":    period,
		"entries":   entries,
	})
}

// MyStats возвращает опыт, уровень, значки и последние начисления пользователя
// GET /api/users/me/stats
func (h *GamificationHandler) MyStats(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	stats, err := h.gamificationService.UserStats(c.Request.Context(), p.UserID)
	if err != nil {
		handleError(c, "GamificationHandler", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
