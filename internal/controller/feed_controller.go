package controller

import (
	"errors"
	"strconv"

	"iwala99_backend/internal/service"
	"iwala99_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type FeedController struct {
	FeedService *service.FeedService
	AuthService *service.AuthService
}

func NewFeedController(feedService *service.FeedService, authService *service.AuthService) *FeedController {
	return &FeedController{
		FeedService: feedService,
		AuthService: authService,
	}
}

// ListPosts godoc
// @Summary Community feed
// @Description Posts newest first, optionally filtered by category
// @Tags feed
// @Produce  json
// @Param   category query string false "Category filter"
// @Param   page query int false "Page number"
// @Param   pageSize query int false "Page size"
// @Success 200 {object} util.Response{data=service.PostPage} "Success"
// @Router /api/feed/posts [get]
func (c *FeedController) ListPosts(ctx *gin.Context) {
	var viewerID uint
	if claims := util.GetUserFromContext(ctx); claims != nil {
		viewerID = claims.UserID
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.DefaultQuery("pageSize", "20"))

	result, err := c.FeedService.ListPosts(viewerID, ctx.Query("category"), page, pageSize)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}

// swagger:model CreatePostRequest
type CreatePostRequest struct {
	Content  string `json:"content" binding:"required,max=2000"`
	Category string `json:"category"`
}

// CreatePost godoc
// @Summary Publish a post
// @Tags feed
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body CreatePostRequest true "Post content"
// @Success 201 {object} util.Response{data=model.Post} "Created"
// @Failure 400 {object} util.Response "Invalid input"
// @Router /api/feed/posts [post]
func (c *FeedController) CreatePost(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CreatePostRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	post, err := c.FeedService.CreatePost(claims.UserID, req.Content, req.Category)
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Created(ctx, post)
}

// DeletePost godoc
// @Summary Delete a post
// @Description Author or admin removes a post with its comments and likes
// @Tags feed
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Post ID"
// @Success 200 {object} util.Response "Success"
// @Failure 403 {object} util.Response "Not the author"
// @Failure 404 {object} util.Response "Post not found"
// @Router /api/feed/posts/{id} [delete]
func (c *FeedController) DeletePost(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	err := c.FeedService.DeletePost(ctx.Param("id"), claims.UserID, claims.Role)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrPostNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, nil)
}

// ListComments godoc
// @Summary Comments on a post
// @Tags feed
// @Produce  json
// @Param   id path string true "Post ID"
// @Success 200 {object} util.Response{data=[]model.Comment} "Success"
// @Failure 404 {object} util.Response "Post not found"
// @Router /api/feed/posts/{id}/comments [get]
func (c *FeedController) ListComments(ctx *gin.Context) {
	comments, err := c.FeedService.ListComments(ctx.Param("id"))
	if err != nil {
		if errors.Is(err, util.ErrPostNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, comments)
}

// swagger:model CreateCommentRequest
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

// CreateComment godoc
// @Summary Comment on a post
// @Tags feed
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Post ID"
// @Param   body body CreateCommentRequest true "Comment content"
// @Success 201 {object} util.Response{data=model.Comment} "Created"
// @Failure 404 {object} util.Response "Post not found"
// @Router /api/feed/posts/{id}/comments [post]
func (c *FeedController) CreateComment(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CreateCommentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user := c.AuthService.GetCurrentUser(ctx)
	username := ""
	if user != nil {
		username = user.Username
	}

	comment, err := c.FeedService.CreateComment(ctx.Param("id"), claims.UserID, username, req.Content)
	if err != nil {
		if errors.Is(err, util.ErrPostNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, comment)
}

// DeleteComment godoc
// @Summary Delete a comment
// @Tags feed
// @Produce  json
// @Security ApiKeyAuth
// @Param   commentId path string true "Comment ID"
// @Success 200 {object} util.Response "Success"
// @Failure 403 {object} util.Response "Not the author"
// @Failure 404 {object} util.Response "Comment not found"
// @Router /api/feed/comments/{commentId} [delete]
func (c *FeedController) DeleteComment(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	err := c.FeedService.DeleteComment(ctx.Param("commentId"), claims.UserID, claims.Role)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrCommentNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, nil)
}

// ToggleLike godoc
// @Summary Like or unlike a post
// @Tags feed
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Post ID"
// @Success 200 {object} util.Response{data=object} "New like state"
// @Failure 404 {object} util.Response "Post not found"
// @Router /api/feed/posts/{id}/like [post]
func (c *FeedController) ToggleLike(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	user := c.AuthService.GetCurrentUser(ctx)
	username := ""
	if user != nil {
		username = user.Username
	}

	liked, err := c.FeedService.ToggleLike(ctx.Param("id"), claims.UserID, username)
	if err != nil {
		if errors.Is(err, util.ErrPostNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"liked": liked})
}
