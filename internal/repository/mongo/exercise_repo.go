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

const exerciseCollectionName = "exercises"

// mongoExerciseRepository implements repository.ExerciseRepository
type mongoExerciseRepository struct {
	collection *mongo.Collection
}

// NewMongoExerciseRepository creates a new Exercise repository backed by MongoDB.
func NewMongoExerciseRepository(db *mongo.Database) repository.ExerciseRepository {
	return &mongoExerciseRepository{
		collection: db.Collection(exerciseCollectionName),
	}
}

// Create inserts a new exercise into the database. Exercises are written
// once by the registry and never mutated afterwards, so there is no Update.
func (r *mongoExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.ExerciseType == "" || exercise.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("exercise type and user ID are required")
	}

	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, exercise)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByID retrieves an exercise by its ID.
func (r *mongoExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	var exercise domain.Exercise
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

// GetByUserID retrieves all exercises ever created for a user.
func (r *mongoExerciseRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Exercise, error) {
	var exercises []domain.Exercise
	filter := bson.M{"userId": userID}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &exercises); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	return exercises, nil
}

// FindByDedupKey looks up the one exercise matching the registry's natural
// key. Returns ErrNotFound on a miss. If concurrent creation ever produced
// duplicates for the triple, this returns whichever the store finds first.
func (r *mongoExerciseRepository) FindByDedupKey(ctx context.Context, userID primitive.ObjectID, exerciseType, bodyPart string) (*domain.Exercise, error) {
	var exercise domain.Exercise
	filter := bson.M{
		"userId":       userID,
		"exerciseType": exerciseType,
		"bodyPart":     bodyPart,
	}

	err := r.collection.FindOne(ctx, filter).Decode(&exercise)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &exercise, nil
}

// EnsureExerciseIndexes creates necessary indexes for the exercises collection.
// The dedup-key index is intentionally NOT unique: dedup is best-effort
// lookup-before-create, and a unique index would turn a concurrent-create
// race into a write error the rest of the system does not expect.
func EnsureExerciseIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys: bson.D{
				{Key: "userId", Value: 1},
				{Key: "exerciseType", Value: 1},
				{Key: "bodyPart", Value: 1},
			},
			Options: options.Index().SetName("exercise_dedup_key"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
