package usecase

import (
	"context"

	"coursecraft/internal/domain/service"
)

// ChatReply is the assistant's answer and the conversation so far.
type ChatReply struct {
	ConversationID string             `json:"conversationId"`
	Reply          string             `json:"reply"`
	History        []service.ChatTurn `json:"history"`
}

// AssistantUsecase answers questions about the platform. Failures become
// friendly replies rather than errors.
type AssistantUsecase interface {
	// Send continues a conversation, or starts one when conversationID is empty.
	Send(ctx context.Context, conversationID, message string) (*ChatReply, error)
}
