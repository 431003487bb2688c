package controller

import (
	"errors"

	"iwala99_backend/internal/model"
	"iwala99_backend/internal/service"
	"iwala99_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
	UserService *service.UserService
}

func NewAuthController(authService *service.AuthService, userService *service.UserService) *AuthController {
	return &AuthController{
		AuthService: authService,
		UserService: userService,
	}
}

// swagger:model RegisterRequest
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register godoc
// @Summary Register a new member
// @Description Creates an account with the given username, email and password
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   body body RegisterRequest true "Registration info"
// @Success 201 {object} util.Response{data=object} "Created"
// @Failure 400 {object} util.Response "Invalid input"
// @Failure 409 {object} util.Response "Email or username taken"
// @Router /api/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if !util.ValidUsername(req.Username) {
		util.BadRequest(ctx, "username must be 3-20 characters: letters, digits, underscore")
		return
	}
	if !util.ValidEmail(req.Email) {
		util.BadRequest(ctx, "invalid email address")
		return
	}
	if !util.ValidPassword(req.Password) {
		util.BadRequest(ctx, "password must be 8-72 characters with at least one letter and one digit")
		return
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     model.RoleUser,
	}

	if err := c.AuthService.Register(user); err != nil {
		switch {
		case errors.Is(err, util.ErrEmailRegistered):
			util.Error(ctx, 409, "email is already registered")
		case errors.Is(err, util.ErrUsernameTaken):
			util.Error(ctx, 409, "username is already taken")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, gin.H{"id": user.PublicID})
}

// swagger:model LoginRequest
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary Log in
// @Description Verifies credentials and returns a JWT
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "Credentials"
// @Success 200 {object} util.Response{data=object} "Success"
// @Failure 400 {object} util.Response "Invalid input"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, user, err := c.AuthService.Login(req.Email, req.Password)
	if err != nil {
		util.Unauthorized(ctx)
		return
	}

	util.Success(ctx, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.PublicID,
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
			"avatar":   user.Avatar,
		},
	})
}

// GetProfile godoc
// @Summary Current user's profile
// @Description Profile of the authenticated user with CTF totals
// @Tags auth
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.Profile} "Success"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/profile [get]
func (c *AuthController) GetProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	profile, err := c.UserService.Profile(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, profile)
}

// UpdateProfile godoc
// @Summary Update profile
// @Description Updates the username and/or bio of the authenticated user
// @Tags auth
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.ProfileUpdate true "Fields to update"
// @Success 200 {object} util.Response{data=model.User} "Success"
// @Failure 400 {object} util.Response "Invalid input"
// @Failure 409 {object} util.Response "Username taken"
// @Router /api/profile [put]
func (c *AuthController) UpdateProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var update service.ProfileUpdate
	if err := ctx.ShouldBindJSON(&update); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.UpdateProfile(claims.UserID, &update)
	if err != nil {
		if errors.Is(err, util.ErrUsernameTaken) {
			util.Error(ctx, 409, "username is already taken")
		} else {
			util.BadRequest(ctx, err.Error())
		}
		return
	}

	util.Success(ctx, user)
}

// UploadAvatar godoc
// @Summary Upload avatar
// @Description Replaces the authenticated user's avatar image
// @Tags auth
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   avatar formData file true "Image file"
// @Success 200 {object} util.Response{data=object} "Success"
// @Failure 400 {object} util.Response "Invalid file"
// @Router /api/profile/avatar [post]
func (c *AuthController) UploadAvatar(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	file, err := ctx.FormFile("avatar")
	if err != nil {
		util.BadRequest(ctx, "avatar file is required")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	url, err := c.UserService.UploadAvatar(ctx.Request.Context(), claims.UserID,
		file.Filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	util.Success(ctx, gin.H{"avatar": url})
}
