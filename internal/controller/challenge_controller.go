package controller

import (
	"errors"

	"iwala99_backend/internal/service"
	"iwala99_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ChallengeController struct {
	ChallengeService *service.ChallengeService
}

func NewChallengeController(challengeService *service.ChallengeService) *ChallengeController {
	return &ChallengeController{ChallengeService: challengeService}
}

// List godoc
// @Summary Puzzle maze grid
// @Description Active challenges with solve state for the viewer, boss gate applied
// @Tags challenges
// @Produce  json
// @Success 200 {object} util.Response{data=[]service.ChallengeView} "Success"
// @Router /api/challenges [get]
func (c *ChallengeController) List(ctx *gin.Context) {
	var userID uint
	if claims := util.GetUserFromContext(ctx); claims != nil {
		userID = claims.UserID
	}

	challenges, err := c.ChallengeService.ListForUser(userID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, challenges)
}

// swagger:model SubmitFlagRequest
type SubmitFlagRequest struct {
	Flag string `json:"flag" binding:"required"`
}

// Submit godoc
// @Summary Submit a flag
// @Description Verifies the flag for a challenge and records the solve
// @Tags challenges
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Challenge ID"
// @Param   body body SubmitFlagRequest true "The flag"
// @Success 200 {object} util.Response{data=service.SubmissionResult} "Verdict"
// @Failure 404 {object} util.Response "Challenge not found"
// @Failure 410 {object} util.Response "Challenge closed"
// @Router /api/challenges/{id}/submit [post]
func (c *ChallengeController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitFlagRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.ChallengeService.SubmitFlag(claims.UserID, ctx.Param("id"), req.Flag)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrChallengeNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrChallengeInactive):
			util.Error(ctx, 410, "challenge is not open for submissions")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}

// Leaderboard godoc
// @Summary Top scorers
// @Description Top 20 users by points over active challenges
// @Tags challenges
// @Produce  json
// @Success 200 {object} util.Response{data=[]repository.LeaderboardRow} "Success"
// @Router /api/challenges/leaderboard [get]
func (c *ChallengeController) Leaderboard(ctx *gin.Context) {
	rows, err := c.ChallengeService.Leaderboard()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, rows)
}

// AdminList godoc
// @Summary All challenges (admin)
// @Tags admin
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Challenge} "Success"
// @Router /api/admin/challenges [get]
func (c *ChallengeController) AdminList(ctx *gin.Context) {
	challenges, err := c.ChallengeService.AdminList()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, challenges)
}

// AdminCreate godoc
// @Summary Create a challenge (admin)
// @Tags admin
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.AdminChallengeInput true "Challenge definition with raw flag"
// @Success 201 {object} util.Response{data=model.Challenge} "Created"
// @Failure 400 {object} util.Response "Invalid input"
// @Router /api/admin/challenges [post]
func (c *ChallengeController) AdminCreate(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var input service.AdminChallengeInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	challenge, err := c.ChallengeService.AdminCreate(&input, claims.UserID)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Created(ctx, challenge)
}

// AdminUpdate godoc
// @Summary Update a challenge (admin)
// @Tags admin
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Challenge ID"
// @Param   body body service.AdminChallengeInput true "New definition"
// @Success 200 {object} util.Response{data=model.Challenge} "Success"
// @Failure 404 {object} util.Response "Challenge not found"
// @Router /api/admin/challenges/{id} [put]
func (c *ChallengeController) AdminUpdate(ctx *gin.Context) {
	var input service.AdminChallengeInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	challenge, err := c.ChallengeService.AdminUpdate(ctx.Param("id"), &input)
	if err != nil {
		if errors.Is(err, util.ErrChallengeNotFound) {
			util.NotFound(ctx)
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}

	util.Success(ctx, challenge)
}

// AdminDelete godoc
// @Summary Delete a challenge (admin)
// @Tags admin
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Challenge ID"
// @Success 200 {object} util.Response "Success"
// @Failure 404 {object} util.Response "Challenge not found"
// @Router /api/admin/challenges/{id} [delete]
func (c *ChallengeController) AdminDelete(ctx *gin.Context) {
	if err := c.ChallengeService.AdminDelete(ctx.Param("id")); err != nil {
		if errors.Is(err, util.ErrChallengeNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, nil)
}
