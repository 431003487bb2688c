package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrChallengeNotFound  = errors.New("challenge not found")
	ErrChallengeInactive  = errors.New("challenge not active")
	ErrPostNotFound       = errors.New("post not found")
	ErrCommentNotFound    = errors.New("comment not found")
	ErrConversationAccess = errors.New("not a participant of this conversation")
	ErrSelfConversation   = errors.New("cannot start a conversation with yourself")
	ErrRateLimited        = errors.New("rate limit exceeded")
)
