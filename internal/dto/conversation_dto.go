package dto

import "beaglemind-be/pkg/conversation"

type CreateConversationRequest struct {
	Title        string `json:"title,omitempty" validate:"max=200"`
	FirstMessage string `json:"first_message,omitempty"`
}

type CreateConversationResponse struct {
	Id string `json:"id"`
}

type ConversationRef struct {
	ConversationId string `json:"conversation_id" validate:"required"`
}

type AppendMessagesRequest struct {
	ConversationId string                 `json:"conversation_id" validate:"required"`
	Messages       []conversation.Message `json:"messages" validate:"required,min=1,dive"`
	LastPreview    string                 `json:"last_preview,omitempty"`
}

type UpdateTitleRequest struct {
	ConversationId string `json:"conversation_id" validate:"required"`
	Title          string `json:"title" validate:"required,max=200"`
}

type ConversationListResponse struct {
	Items []conversation.Summary `json:"items"`
}

type ConversationMessagesResponse struct {
	Items []conversation.Message `json:"items"`
}

type DeleteConversationResponse struct {
	Status string         `json:"status"`
	Result map[string]any `json:"result,omitempty"`
}
