package service

import (
	"context"
	"errors"

	"healthmate/recovery-app/internal/domain"
	"healthmate/recovery-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Defaults applied when a descriptor arrives without these fields.
const (
	defaultDifficulty  = 3
	defaultPrecautions = "Stop immediately if you feel sharp pain and consult your healthcare provider."
)

// ExerciseInput is an unpersisted exercise as submitted for saving, either
// straight from the parser or echoed back by the client.
type ExerciseInput struct {
	ExerciseType string
	Description  string
	Duration     string
	Difficulty   int
	Precautions  string
	BodyPart     string
}

// ExerciseRegistry deduplicates exercises on the (user, exerciseType,
// bodyPart) natural key and links new ones to a symptom.
type ExerciseRegistry interface {
	ResolveOrCreate(ctx context.Context, userID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error)
}

type exerciseRegistry struct {
	exerciseRepo repository.ExerciseRepository
	matcher      SymptomMatcher
}

// NewExerciseRegistry creates a new ExerciseRegistry.
func NewExerciseRegistry(exerciseRepo repository.ExerciseRepository, matcher SymptomMatcher) ExerciseRegistry {
	return &exerciseRegistry{
		exerciseRepo: exerciseRepo,
		matcher:      matcher,
	}
}

// ResolveOrCreate looks up the exercise by its dedup key and reuses it
// as-is on a hit: description, duration, difficulty and precautions on the
// incoming input are discarded even when they differ from the stored row.
// Regeneration drift therefore never updates exercise content; only a
// net-new (type, bodyPart) pair creates a row. On a miss, a symptom is
// resolved via the matcher and a new exercise is created with defaults
// filled in.
//
// The lookup-then-create pair is best-effort only: two concurrent saves of
// the same new exercise can both miss and both create.
func (r *exerciseRegistry) ResolveOrCreate(ctx context.Context, userID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error) {
	existing, err := r.exerciseRepo.FindByDedupKey(ctx, userID, in.ExerciseType, in.BodyPart)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	symptomID, err := r.matcher.Resolve(ctx, userID, in.BodyPart)
	if err != nil {
		return nil, err
	}

	exercise := &domain.Exercise{
		UserID:       userID,
		ExerciseType: in.ExerciseType,
		Description:  in.Description,
		Duration:     in.Duration,
		Difficulty:   in.Difficulty,
		Precautions:  in.Precautions,
		BodyPart:     in.BodyPart,
		SymptomID:    symptomID,
	}
	if exercise.Difficulty <= 0 {
		exercise.Difficulty = defaultDifficulty
	}
	if exercise.Precautions == "" {
		exercise.Precautions = defaultPrecautions
	}

	id, err := r.exerciseRepo.Create(ctx, exercise)
	if err != nil {
		return nil, err
	}
	exercise.ID = id
	return exercise, nil
}
