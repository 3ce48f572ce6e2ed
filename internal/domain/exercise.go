package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise is a durable exercise record created once by the registry and
// only read afterwards. The (UserID, ExerciseType, BodyPart) triple is the
// dedup key: at most one row per triple per user, enforced by
// lookup-before-create rather than a unique index, so duplicates are
// possible under concurrent creation.
type Exercise struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	ExerciseType string             `bson:"exerciseType" json:"exerciseType"` // e.g., "Neck Stretches"
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Duration     string             `bson:"duration,omitempty" json:"duration,omitempty"` // free text, e.g., "10 minutes"
	Difficulty   int                `bson:"difficulty" json:"difficulty"`                 // 1 (easiest) .. 5 (hardest)
	Precautions  string             `bson:"precautions,omitempty" json:"precautions,omitempty"`
	BodyPart     string             `bson:"bodyPart" json:"bodyPart"`
	SymptomID    primitive.ObjectID `bson:"symptomId" json:"symptomId"` // exactly one linked symptom
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
