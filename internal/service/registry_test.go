package service_test

import (
	"context"
	"testing"

	"healthmate/recovery-app/internal/repository/memory"
	"healthmate/recovery-app/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newRegistry(db *memory.DB) service.ExerciseRegistry {
	matcher := service.NewSymptomMatcher(db.Symptoms())
	return service.NewExerciseRegistry(db.Exercises(), matcher)
}

func TestResolveOrCreate_CreatesAndLinksSymptom(t *testing.T) {
	db := memory.New()
	userID := primitive.NewObjectID()
	kneeID := seedSymptom(t, db, userID, "Knee")

	registry := newRegistry(db)

	exercise, err := registry.ResolveOrCreate(context.Background(), userID, service.ExerciseInput{
		ExerciseType: "Wall Squats",
		Description:  "Shallow squats with back support.",
		Duration:     "10 minutes",
		Difficulty:   2,
		Precautions:  "Keep knees behind toes.",
		BodyPart:     "Knee",
	})
	require.NoError(t, err)

	assert.False(t, exercise.ID.IsZero())
	assert.Equal(t, kneeID, exercise.SymptomID)
	assert.Equal(t, 2, exercise.Difficulty)
	assert.Equal(t, 1, db.ExerciseCount(userID))
}

func TestResolveOrCreate_AppliesDefaults(t *testing.T) {
	db := memory.New()
	userID := primitive.NewObjectID()
	seedSymptom(t, db, userID, "Knee")

	registry := newRegistry(db)

	exercise, err := registry.ResolveOrCreate(context.Background(), userID, service.ExerciseInput{
		ExerciseType: "Leg Raises",
		BodyPart:     "Knee",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, exercise.Difficulty)
	assert.Equal(t, "Stop immediately if you feel sharp pain and consult your healthcare provider.", exercise.Precautions)
}

func TestResolveOrCreate_DedupReturnsExistingRow(t *testing.T) {
	db := memory.New()
	userID := primitive.NewObjectID()
	seedSymptom(t, db, userID, "Knee")

	registry := newRegistry(db)
	ctx := context.Background()

	first, err := registry.ResolveOrCreate(ctx, userID, service.ExerciseInput{
		ExerciseType: "Wall Squats", BodyPart: "Knee",
	})
	require.NoError(t, err)

	second, err := registry.ResolveOrCreate(ctx, userID, service.ExerciseInput{
		ExerciseType: "Wall Squats", BodyPart: "Knee",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, db.ExerciseCount(userID))
}

func TestResolveOrCreate_DedupDiscardsDrift(t *testing.T) {
	db := memory.New()
	userID := primitive.NewObjectID()
	seedSymptom(t, db, userID, "Knee")

	registry := newRegistry(db)
	ctx := context.Background()

	_, err := registry.ResolveOrCreate(ctx, userID, service.ExerciseInput{
		ExerciseType: "Wall Squats", BodyPart: "Knee", Description: "A", Difficulty: 2,
	})
	require.NoError(t, err)

	// Regenerated content for the same (type, bodyPart) differs; the stored
	// row wins and is not updated.
	second, err := registry.ResolveOrCreate(ctx, userID, service.ExerciseInput{
		ExerciseType: "Wall Squats", BodyPart: "Knee", Description: "B", Difficulty: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, "A", second.Description)
	assert.Equal(t, 2, second.Difficulty)
	assert.Equal(t, 1, db.ExerciseCount(userID))
}

func TestResolveOrCreate_DedupKeyIsPerUser(t *testing.T) {
	db := memory.New()
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	seedSymptom(t, db, alice, "Knee")
	seedSymptom(t, db, bob, "Knee")

	registry := newRegistry(db)
	ctx := context.Background()

	a, err := registry.ResolveOrCreate(ctx, alice, service.ExerciseInput{ExerciseType: "Wall Squats", BodyPart: "Knee"})
	require.NoError(t, err)
	b, err := registry.ResolveOrCreate(ctx, bob, service.ExerciseInput{ExerciseType: "Wall Squats", BodyPart: "Knee"})
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestResolveOrCreate_NoSymptomsCreatesNothing(t *testing.T) {
	db := memory.New()
	userID := primitive.NewObjectID()

	registry := newRegistry(db)

	_, err := registry.ResolveOrCreate(context.Background(), userID, service.ExerciseInput{
		ExerciseType: "Wall Squats", BodyPart: "Knee",
	})
	assert.ErrorIs(t, err, service.ErrNoSymptomsFound)
	assert.Equal(t, 0, db.ExerciseCount(userID))
}
