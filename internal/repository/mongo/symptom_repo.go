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

const symptomCollectionName = "symptoms"

// mongoSymptomRepository implements repository.SymptomRepository
type mongoSymptomRepository struct {
	collection *mongo.Collection
}

// NewMongoSymptomRepository creates a new Symptom repository backed by MongoDB.
func NewMongoSymptomRepository(db *mongo.Database) repository.SymptomRepository {
	return &mongoSymptomRepository{
		collection: db.Collection(symptomCollectionName),
	}
}

// Create inserts a new symptom into the database.
func (r *mongoSymptomRepository) Create(ctx context.Context, symptom *domain.Symptom) (primitive.ObjectID, error) {
	if symptom.BodyPart == "" || symptom.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("symptom body part and user ID are required")
	}

	symptom.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	symptom.CreatedAt = now
	symptom.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, symptom)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByID retrieves a symptom by its ID.
func (r *mongoSymptomRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Symptom, error) {
	var symptom domain.Symptom
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&symptom)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &symptom, nil
}

// GetByUserID retrieves all symptoms belonging to a user. The sort is by
// creation date purely for display; callers must not rely on the order.
func (r *mongoSymptomRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Symptom, error) {
	var symptoms []domain.Symptom
	filter := bson.M{"userId": userID}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &symptoms); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return symptoms, nil
}

// Update modifies an existing symptom's body part and notes.
func (r *mongoSymptomRepository) Update(ctx context.Context, symptom *domain.Symptom) error {
	if symptom.ID == primitive.NilObjectID {
		return errors.New("symptom ID is required for update")
	}
	if symptom.BodyPart == "" {
		return errors.New("symptom body part cannot be empty")
	}

	filter := bson.M{"_id": symptom.ID}
	update := bson.M{
		"$set": bson.M{
			"bodyPart":  symptom.BodyPart,
			"notes":     symptom.Notes,
			"updatedAt": time.Now().UTC(),
			// UserID is deliberately not part of the update
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// AppendSeverity pushes one severity entry onto a symptom's history.
func (r *mongoSymptomRepository) AppendSeverity(ctx context.Context, id primitive.ObjectID, entry domain.SeverityEntry) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$push": bson.M{"severities": entry},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a symptom, ensuring it belongs to the specified user.
func (r *mongoSymptomRepository) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	// The filter ensures a user can only delete their own symptom.
	filter := bson.M{
		"_id":    id,
		"userId": userID,
	}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// EnsureSymptomIndexes creates necessary indexes for the symptoms collection.
func EnsureSymptomIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// Index for finding a user's symptoms
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
