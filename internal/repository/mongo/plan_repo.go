package mongo

import (
	"context"
	"errors"

	"healthmate/recovery-app/internal/domain"
	"healthmate/recovery-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const planCollectionName = "recovery_plans"

// mongoRecoveryPlanRepository implements repository.RecoveryPlanRepository
type mongoRecoveryPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoRecoveryPlanRepository creates a new RecoveryPlan repository backed by MongoDB.
func NewMongoRecoveryPlanRepository(db *mongo.Database) repository.RecoveryPlanRepository {
	return &mongoRecoveryPlanRepository{
		collection: db.Collection(planCollectionName),
	}
}

// GetByUserID fetches the user's singleton plan.
func (r *mongoRecoveryPlanRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.RecoveryPlan, error) {
	var plan domain.RecoveryPlan
	filter := bson.M{"userId": userID}

	err := r.collection.FindOne(ctx, filter).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// Upsert persists the plan with full-document replace semantics: if the user
// already has a plan, title, description, weeks and createdAt are all
// replaced wholesale; otherwise a new document is inserted.
//
// The find-then-write spans two storage operations with no lock or version
// check between them. Two writers that both read before either writes will
// each clobber the other's change, and two concurrent first-time saves can
// insert two documents. Single-document upsert semantics are all this layer
// promises.
func (r *mongoRecoveryPlanRepository) Upsert(ctx context.Context, plan *domain.RecoveryPlan) (*domain.RecoveryPlan, error) {
	if plan.UserID == primitive.NilObjectID {
		return nil, errors.New("plan user ID is required")
	}

	existing, err := r.GetByUserID(ctx, plan.UserID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		plan.ID = existing.ID
		filter := bson.M{"_id": existing.ID}
		if _, err := r.collection.ReplaceOne(ctx, filter, plan); err != nil {
			return nil, err
		}
		return plan, nil
	}

	plan.ID = primitive.NewObjectID()
	if _, err := r.collection.InsertOne(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// Delete removes the user's plan if one exists.
func (r *mongoRecoveryPlanRepository) Delete(ctx context.Context, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureRecoveryPlanIndexes creates necessary indexes for the plans
// collection. The userId index is intentionally NOT unique: the singleton
// invariant is held up by find-else-insert in Upsert, matching the original
// behavior where a race between two first saves can produce two documents.
func EnsureRecoveryPlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
