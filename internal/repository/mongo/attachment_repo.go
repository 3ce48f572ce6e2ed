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

const attachmentCollectionName = "attachments"

// mongoAttachmentRepository implements repository.AttachmentRepository
type mongoAttachmentRepository struct {
	collection *mongo.Collection
}

// NewMongoAttachmentRepository creates a new Attachment repository backed by MongoDB.
func NewMongoAttachmentRepository(db *mongo.Database) repository.AttachmentRepository {
	return &mongoAttachmentRepository{
		collection: db.Collection(attachmentCollectionName),
	}
}

// Create inserts attachment metadata. The file itself lives in S3.
func (r *mongoAttachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) (primitive.ObjectID, error) {
	if attachment.S3ObjectKey == "" || attachment.SymptomID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("attachment object key and symptom ID are required")
	}

	attachment.ID = primitive.NewObjectID()
	if attachment.UploadedAt.IsZero() {
		attachment.UploadedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, attachment)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetBySymptomID retrieves all attachments for a symptom, newest first.
func (r *mongoAttachmentRepository) GetBySymptomID(ctx context.Context, symptomID primitive.ObjectID) ([]domain.Attachment, error) {
	var attachments []domain.Attachment
	filter := bson.M{"symptomId": symptomID}

	findOptions := options.Find().SetSort(bson.D{{Key: "uploadedAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &attachments); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return attachments, nil
}

// EnsureAttachmentIndexes creates necessary indexes for the attachments collection.
func EnsureAttachmentIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "symptomId", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
