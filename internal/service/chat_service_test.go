package service_test

import (
	"context"
	"errors"
	"testing"

	"healthmate/recovery-app/internal/domain"
	"healthmate/recovery-app/internal/repository/memory"
	"healthmate/recovery-app/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSendMessage_PersistsBothTurns(t *testing.T) {
	db := memory.New()
	gen := &stubGenerator{text: "Try gentle stretching twice a day."}
	svc := service.NewChatService(db.Chat(), gen)
	userID := primitive.NewObjectID()
	ctx := context.Background()

	reply, err := svc.SendMessage(ctx, userID, "My neck hurts, what can I do?")
	require.NoError(t, err)
	assert.Equal(t, domain.ChatRoleAssistant, reply.Role)
	assert.Equal(t, "Try gentle stretching twice a day.", reply.Content)
	assert.Equal(t, "My neck hurts, what can I do?", gen.prompt)

	history, err := svc.GetHistory(ctx, userID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.ChatRoleUser, history[0].Role)
	assert.Equal(t, domain.ChatRoleAssistant, history[1].Role)
}

func TestSendMessage_EmptyContent(t *testing.T) {
	db := memory.New()
	svc := service.NewChatService(db.Chat(), &stubGenerator{})

	_, err := svc.SendMessage(context.Background(), primitive.NewObjectID(), "")
	assert.Error(t, err)
}

func TestSendMessage_GeneratorFailure(t *testing.T) {
	db := memory.New()
	wantErr := errors.New("quota exceeded")
	svc := service.NewChatService(db.Chat(), &stubGenerator{err: wantErr})
	userID := primitive.NewObjectID()

	_, err := svc.SendMessage(context.Background(), userID, "hello")
	assert.ErrorIs(t, err, wantErr)

	// The user's turn was already written before the call failed.
	history, err := svc.GetHistory(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.ChatRoleUser, history[0].Role)
}
