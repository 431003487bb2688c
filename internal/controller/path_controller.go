package controller

import (
	"iwala99_backend/internal/service"
	"iwala99_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PathController struct {
	PathService *service.PathService
}

func NewPathController(pathService *service.PathService) *PathController {
	return &PathController{PathService: pathService}
}

// Status godoc
// @Summary Path completion status
// @Description Per-category progress with secret codes for completed paths
// @Tags paths
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.PathOverview} "Success"
// @Router /api/paths/status [get]
func (c *PathController) Status(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	overview, err := c.PathService.Overview(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, overview)
}

// RecruitmentAccess godoc
// @Summary Recruitment gate
// @Description Whether the recruitment funnel is open for the user
// @Tags paths
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object} "Success"
// @Router /api/recruitment/access [get]
func (c *PathController) RecruitmentAccess(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	allowed, err := c.PathService.RecruitmentAccess(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"access": allowed})
}

// Omega godoc
// @Summary Omega briefing
// @Description Recruitment details, only revealed once every path is complete
// @Tags paths
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.OmegaBriefing} "Success"
// @Failure 403 {object} util.Response "Paths not complete"
// @Router /api/recruitment/omega [get]
func (c *PathController) Omega(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	briefing, err := c.PathService.Omega(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	if !briefing.Eligible {
		util.Error(ctx, 403, "complete every path first")
		return
	}

	util.Success(ctx, briefing)
}
