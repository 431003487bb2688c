package controller

import (
	"errors"

	"iwala99_backend/internal/service"
	"iwala99_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type MessageController struct {
	MessageService *service.MessageService
	UserService    *service.UserService
	Hub            *service.RealtimeHub
}

func NewMessageController(messageService *service.MessageService, userService *service.UserService, hub *service.RealtimeHub) *MessageController {
	return &MessageController{
		MessageService: messageService,
		UserService:    userService,
		Hub:            hub,
	}
}

// ListConversations godoc
// @Summary Inbox
// @Description Conversations newest first with last message and unread count
// @Tags messages
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.ConversationView} "Success"
// @Router /api/messages/conversations [get]
func (c *MessageController) ListConversations(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	conversations, err := c.MessageService.ListConversations(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, conversations)
}

// swagger:model StartConversationRequest
type StartConversationRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// StartConversation godoc
// @Summary Open a direct thread
// @Description Returns the existing 1:1 conversation with the user or creates one
// @Tags messages
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body StartConversationRequest true "Peer's public ID"
// @Success 200 {object} util.Response{data=model.Conversation} "Success"
// @Failure 400 {object} util.Response "Cannot message yourself"
// @Failure 404 {object} util.Response "User not found"
// @Router /api/messages/conversations [post]
func (c *MessageController) StartConversation(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req StartConversationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	conversation, err := c.MessageService.StartConversation(claims.UserID, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrUserNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrSelfConversation):
			util.BadRequest(ctx, "cannot start a conversation with yourself")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, conversation)
}

// Messages godoc
// @Summary Thread history
// @Description Messages oldest first; opening the thread marks it read
// @Tags messages
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Conversation ID"
// @Success 200 {object} util.Response{data=[]model.Message} "Success"
// @Failure 403 {object} util.Response "Not a participant"
// @Router /api/messages/conversations/{id}/messages [get]
func (c *MessageController) Messages(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	messages, err := c.MessageService.Messages(ctx.Param("id"), claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrConversationAccess) {
			util.Forbidden(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, messages)
}

// swagger:model SendMessageRequest
type SendMessageRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}

// SendMessage godoc
// @Summary Send a message
// @Description Persists the message and pushes it to the peer in realtime
// @Tags messages
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Conversation ID"
// @Param   body body SendMessageRequest true "Message content"
// @Success 201 {object} util.Response{data=model.Message} "Created"
// @Failure 403 {object} util.Response "Not a participant"
// @Router /api/messages/conversations/{id}/messages [post]
func (c *MessageController) SendMessage(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SendMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	message, err := c.MessageService.SendMessage(ctx.Param("id"), claims.UserID, req.Content)
	if err != nil {
		if errors.Is(err, util.ErrConversationAccess) {
			util.Forbidden(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, message)
}

// MarkRead godoc
// @Summary Mark a thread read
// @Tags messages
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path string true "Conversation ID"
// @Success 200 {object} util.Response "Success"
// @Failure 403 {object} util.Response "Not a participant"
// @Router /api/messages/conversations/{id}/read [post]
func (c *MessageController) MarkRead(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if err := c.MessageService.MarkRead(ctx.Param("id"), claims.UserID); err != nil {
		if errors.Is(err, util.ErrConversationAccess) {
			util.Forbidden(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, nil)
}

// UnreadCount godoc
// @Summary Total unread messages
// @Tags messages
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object} "Success"
// @Router /api/messages/unread-count [get]
func (c *MessageController) UnreadCount(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	count, err := c.MessageService.UnreadCount(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"count": count})
}

// SearchUsers godoc
// @Summary Find members
// @Description Username prefix search for starting a conversation
// @Tags messages
// @Produce  json
// @Security ApiKeyAuth
// @Param   q query string true "Username prefix, at least 2 characters"
// @Success 200 {object} util.Response{data=[]service.PublicUser} "Success"
// @Router /api/users/search [get]
func (c *MessageController) SearchUsers(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	results, err := c.UserService.Search(ctx.Query("q"), claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, results)
}

// ServeWs godoc
// @Summary Realtime socket
// @Description Upgrades to WebSocket; pass the JWT as a token query parameter
// @Tags messages
// @Security ApiKeyAuth
// @Router /api/ws [get]
func (c *MessageController) ServeWs(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	service.ServeWs(c.Hub, ctx.Writer, ctx.Request, claims.UserID)
}
