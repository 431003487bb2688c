package controller

import (
	"iwala99_backend/internal/service"
	"iwala99_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type StatsController struct {
	StatsService *service.StatsService
}

func NewStatsController(statsService *service.StatsService) *StatsController {
	return &StatsController{StatsService: statsService}
}

// Community godoc
// @Summary Community counters
// @Description Member, challenge, solve and online totals for the landing page
// @Tags stats
// @Produce  json
// @Success 200 {object} util.Response{data=service.CommunityStats} "Success"
// @Router /api/stats [get]
func (c *StatsController) Community(ctx *gin.Context) {
	stats, err := c.StatsService.Community()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, stats)
}
