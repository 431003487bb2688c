package controller

import (
	"errors"

	"iwala99_backend/internal/service"
	"iwala99_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ChatController struct {
	ChatService *service.CyberChatService
}

func NewChatController(chatService *service.CyberChatService) *ChatController {
	return &ChatController{ChatService: chatService}
}

// swagger:model ChatCompletionsRequest
type ChatCompletionsRequest struct {
	Provider string                  `json:"provider"`
	Messages []service.AIChatMessage `json:"messages" binding:"required,min=1"`
}

// Completions godoc
// @Summary CyberGuard chat
// @Description Proxies the conversation to the configured AI provider and streams the reply as SSE
// @Tags chat
// @Accept  json
// @Produce  text/event-stream
// @Security ApiKeyAuth
// @Param   body body ChatCompletionsRequest true "Conversation history"
// @Success 200 {string} string "SSE stream"
// @Failure 400 {object} util.Response "Invalid input"
// @Failure 429 {object} util.Response "Rate limited"
// @Router /api/chat/completions [post]
func (c *ChatController) Completions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ChatCompletionsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	stream, errChan, err := c.ChatService.ChatStream(ctx.Request.Context(), claims.UserID, req.Provider, req.Messages)
	if err != nil {
		if errors.Is(err, util.ErrRateLimited) {
			util.TooManyRequests(ctx, "chat limit reached, try again in a minute")
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	ctx.Header("Content-Type", "text/event-stream")
	ctx.Header("Cache-Control", "no-cache")
	ctx.Header("Connection", "keep-alive")
	ctx.Header("Transfer-Encoding", "chunked")

	for content := range stream {
		ctx.SSEvent("message", content)
		ctx.Writer.Flush()
	}

	if err := <-errChan; err != nil {
		ctx.SSEvent("error", err.Error())
		ctx.Writer.Flush()
	}

	ctx.SSEvent("end", "done")
	ctx.Writer.Flush()
}
