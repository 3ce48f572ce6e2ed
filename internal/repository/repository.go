package repository

import (
	"context"

	"healthmate/recovery-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// SymptomRepository defines the interface for interacting with symptom data.
// GetByUserID returns symptoms in whatever order the store yields them; the
// symptom matcher's fallback-to-any behavior relies on nothing stronger.
type SymptomRepository interface {
	Create(ctx context.Context, symptom *domain.Symptom) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Symptom, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Symptom, error)
	Update(ctx context.Context, symptom *domain.Symptom) error
	AppendSeverity(ctx context.Context, id primitive.ObjectID, entry domain.SeverityEntry) error
	Delete(ctx context.Context, id, userID primitive.ObjectID) error
}

// ExerciseRepository defines the interface for interacting with exercise data.
// FindByDedupKey is the lookup half of the registry's lookup-before-create;
// it returns ErrNotFound on a miss.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Exercise, error)
	FindByDedupKey(ctx context.Context, userID primitive.ObjectID, exerciseType, bodyPart string) (*domain.Exercise, error)
}

// RecoveryPlanRepository defines the interface for interacting with the
// singleton-per-user recovery plan document.
//
// Upsert replaces the whole document (title, description, weeks, createdAt)
// when one exists for the user, else inserts. There is no version token and
// no partial update: callers that read-modify-write concurrently will lose
// updates, last writer wins in full.
type RecoveryPlanRepository interface {
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.RecoveryPlan, error)
	Upsert(ctx context.Context, plan *domain.RecoveryPlan) (*domain.RecoveryPlan, error)
	Delete(ctx context.Context, userID primitive.ObjectID) error
}

// AttachmentRepository defines the interface for symptom photo metadata.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) (primitive.ObjectID, error)
	GetBySymptomID(ctx context.Context, symptomID primitive.ObjectID) ([]domain.Attachment, error)
}

// ChatRepository defines the interface for chat message history.
type ChatRepository interface {
	Create(ctx context.Context, message *domain.ChatMessage) (primitive.ObjectID, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.ChatMessage, error)
}
