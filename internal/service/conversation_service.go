package service

import (
	"context"

	"beaglemind-be/internal/dto"
	"beaglemind-be/pkg/conversation"
)

// ConversationAPI is implemented by conversation.Client.
type ConversationAPI interface {
	Create(ctx context.Context, id conversation.Identity, title, firstMessage string) (string, error)
	List(ctx context.Context, id conversation.Identity) []conversation.Summary
	Append(ctx context.Context, conversationID string, messages []conversation.Message, lastPreview string) error
	Messages(ctx context.Context, conversationID string) ([]conversation.Message, error)
	UpdateTitle(ctx context.Context, conversationID, title string) error
	Delete(ctx context.Context, conversationID string) (map[string]any, error)
}

type IConversationService interface {
	Create(ctx context.Context, id conversation.Identity, req *dto.CreateConversationRequest) (*dto.CreateConversationResponse, error)
	List(ctx context.Context, id conversation.Identity) *dto.ConversationListResponse
	Append(ctx context.Context, req *dto.AppendMessagesRequest) error
	Messages(ctx context.Context, req *dto.ConversationRef) (*dto.ConversationMessagesResponse, error)
	UpdateTitle(ctx context.Context, req *dto.UpdateTitleRequest) error
	Delete(ctx context.Context, req *dto.ConversationRef) (*dto.DeleteConversationResponse, error)
}

type conversationService struct {
	api ConversationAPI
}

func NewConversationService(api ConversationAPI) IConversationService {
	return &conversationService{api: api}
}

func (s *conversationService) Create(ctx context.Context, id conversation.Identity, req *dto.CreateConversationRequest) (*dto.CreateConversationResponse, error) {
	convID, err := s.api.Create(ctx, id, req.Title, req.FirstMessage)
	if err != nil {
		return nil, err
	}
	return &dto.CreateConversationResponse{Id: convID}, nil
}

func (s *conversationService) List(ctx context.Context, id conversation.Identity) *dto.ConversationListResponse {
	return &dto.ConversationListResponse{Items: s.api.List(ctx, id)}
}

func (s *conversationService) Append(ctx context.Context, req *dto.AppendMessagesRequest) error {
	return s.api.Append(ctx, req.ConversationId, req.Messages, req.LastPreview)
}

func (s *conversationService) Messages(ctx context.Context, req *dto.ConversationRef) (*dto.ConversationMessagesResponse, error) {
	items, err := s.api.Messages(ctx, req.ConversationId)
	if err != nil {
		return nil, err
	}
	return &dto.ConversationMessagesResponse{Items: items}, nil
}

func (s *conversationService) UpdateTitle(ctx context.Context, req *dto.UpdateTitleRequest) error {
	return s.api.UpdateTitle(ctx, req.ConversationId, req.Title)
}

func (s *conversationService) Delete(ctx context.Context, req *dto.ConversationRef) (*dto.DeleteConversationResponse, error) {
	result, err := s.api.Delete(ctx, req.ConversationId)
	if err != nil {
		return nil, err
	}
	return &dto.DeleteConversationResponse{Status: "deleted", Result: result}, nil
}
