package mongo

import (
	"context"
	"errors"
	"time"

	"healthmate/recovery-app/internal/domain"
	"healthmate/recovery-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const chatCollectionName = "chat_messages"

// mongoChatRepository implements repository.ChatRepository
type mongoChatRepository struct {
	collection *mongo.Collection
}

// NewMongoChatRepository creates a new chat message repository backed by MongoDB.
func NewMongoChatRepository(db *mongo.Database) repository.ChatRepository {
	return &mongoChatRepository{
		collection: db.Collection(chatCollectionName),
	}
}

// Create appends one chat message.
func (r *mongoChatRepository) Create(ctx context.Context, message *domain.ChatMessage) (primitive.ObjectID, error) {
	if message.UserID == primitive.NilObjectID || message.Content == "" {
		return primitive.NilObjectID, errors.New("chat message user ID and content are required")
	}

	message.ID = primitive.NewObjectID()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, message)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByUserID returns the user's most recent messages, oldest first, capped
// at limit (0 means no cap).
func (r *mongoChatRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.ChatMessage, error) {
	var messages []domain.ChatMessage
	filter := bson.M{"userId": userID}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

// EnsureChatIndexes creates necessary indexes for the chat collection.
func EnsureChatIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
