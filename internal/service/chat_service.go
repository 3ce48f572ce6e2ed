package service

import (
	"context"
	"errors"

	"healthmate/recovery-app/internal/domain"
	"healthmate/recovery-app/internal/generation"
	"healthmate/recovery-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cap on history returned to the client per request.
const chatHistoryLimit = 100

// ChatService is a thin wrapper around the text-generation collaborator:
// forward the user's message, persist both turns, return the reply.
type ChatService interface {
	SendMessage(ctx context.Context, userID primitive.ObjectID, content string) (*domain.ChatMessage, error)
	GetHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.ChatMessage, error)
}

type chatService struct {
	chatRepo  repository.ChatRepository
	generator generation.Generator
}

// NewChatService creates a new instance of chatService.
func NewChatService(chatRepo repository.ChatRepository, generator generation.Generator) ChatService {
	return &chatService{
		chatRepo:  chatRepo,
		generator: generator,
	}
}

func (s *chatService) SendMessage(ctx context.Context, userID primitive.ObjectID, content string) (*domain.ChatMessage, error) {
	if content == "" {
		return nil, errors.New("message content cannot be empty")
	}

	userMsg := &domain.ChatMessage{
		UserID:  userID,
		Role:    domain.ChatRoleUser,
		Content: content,
	}
	if _, err := s.chatRepo.Create(ctx, userMsg); err != nil {
		return nil, err
	}

	replyText, err := s.generator.Generate(ctx, content)
	if err != nil {
		return nil, err
	}

	reply := &domain.ChatMessage{
		UserID:  userID,
		Role:    domain.ChatRoleAssistant,
		Content: replyText,
	}
	id, err := s.chatRepo.Create(ctx, reply)
	if err != nil {
		return nil, err
	}
	reply.ID = id
	return reply, nil
}

func (s *chatService) GetHistory(ctx context.Context, userID primitive.ObjectID) ([]domain.ChatMessage, error) {
	return s.chatRepo.GetByUserID(ctx, userID, chatHistoryLimit)
}
