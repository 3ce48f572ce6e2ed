package service_test

import (
	"context"
	"testing"

	"healthmate/recovery-app/internal/domain"
	"healthmate/recovery-app/internal/repository/memory"
	"healthmate/recovery-app/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func seedExercise(t *testing.T, db *memory.DB, userID primitive.ObjectID, exerciseType string) primitive.ObjectID {
	t.Helper()
	id, err := db.Exercises().Create(context.Background(), &domain.Exercise{
		UserID:       userID,
		ExerciseType: exerciseType,
		Description:  "desc of " + exerciseType,
		Duration:     "10 minutes",
		Difficulty:   2,
		Precautions:  "None.",
		BodyPart:     "Knee",
	})
	require.NoError(t, err)
	return id
}

func weekWith(refs ...domain.ExerciseRef) []domain.RecoveryWeek {
	return []domain.RecoveryWeek{{WeekNumber: 1, Focus: "Gentle Mobility", Exercises: refs}}
}

func TestPlanUpsert_Validation(t *testing.T) {
	db := memory.New()
	svc := service.NewPlanService(db.Plans(), db.Exercises())
	userID := primitive.NewObjectID()
	ctx := context.Background()

	_, err := svc.Upsert(ctx, userID, "", "", weekWith())
	assert.ErrorIs(t, err, service.ErrValidationFailed)

	_, err = svc.Upsert(ctx, userID, "Plan", "", nil)
	assert.ErrorIs(t, err, service.ErrValidationFailed)
}

func TestPlanUpsert_SingletonReplace(t *testing.T) {
	db := memory.New()
	svc := service.NewPlanService(db.Plans(), db.Exercises())
	userID := primitive.NewObjectID()
	ctx := context.Background()

	first, err := svc.Upsert(ctx, userID, "First Plan", "", weekWith())
	require.NoError(t, err)

	second, err := svc.Upsert(ctx, userID, "Second Plan", "replacement", weekWith())
	require.NoError(t, err)

	// One document per user; the replacement keeps the original identity.
	assert.Equal(t, 1, db.PlanCount(userID))
	assert.Equal(t, first.ID, second.ID)

	stored, err := db.Plans().GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Second Plan", stored.Title)
	assert.Equal(t, "replacement", stored.Description)
	// CreatedAt is restamped on every save along with the rest of the document.
	assert.False(t, stored.CreatedAt.Before(first.CreatedAt))
}

func TestPlanGet_NotFound(t *testing.T) {
	db := memory.New()
	svc := service.NewPlanService(db.Plans(), db.Exercises())

	_, err := svc.Get(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, service.ErrPlanNotFound)
}

func TestPlanGet_HydratesExerciseRefs(t *testing.T) {
	db := memory.New()
	svc := service.NewPlanService(db.Plans(), db.Exercises())
	userID := primitive.NewObjectID()
	ctx := context.Background()

	squatsID := seedExercise(t, db, userID, "Wall Squats")
	raisesID := seedExercise(t, db, userID, "Leg Raises")

	_, err := svc.Upsert(ctx, userID, "Plan", "", weekWith(
		domain.ExerciseRef{ExerciseID: squatsID, IsCompleted: true},
		domain.ExerciseRef{ExerciseID: raisesID},
	))
	require.NoError(t, err)

	view, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	require.Len(t, view.Weeks, 1)
	require.Len(t, view.Weeks[0].Exercises, 2)

	first := view.Weeks[0].Exercises[0]
	assert.Equal(t, squatsID, first.ExerciseID)
	assert.Equal(t, "Wall Squats", first.ExerciseType)
	assert.Equal(t, "desc of Wall Squats", first.Description)
	assert.True(t, first.IsCompleted)

	assert.False(t, view.Weeks[0].Exercises[1].IsCompleted)
}

func TestPlanGet_SkipsDanglingRefs(t *testing.T) {
	db := memory.New()
	svc := service.NewPlanService(db.Plans(), db.Exercises())
	userID := primitive.NewObjectID()
	ctx := context.Background()

	squatsID := seedExercise(t, db, userID, "Wall Squats")

	_, err := svc.Upsert(ctx, userID, "Plan", "", weekWith(
		domain.ExerciseRef{ExerciseID: squatsID},
		domain.ExerciseRef{ExerciseID: primitive.NewObjectID()}, // row never existed
	))
	require.NoError(t, err)

	view, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	require.Len(t, view.Weeks[0].Exercises, 1)
	assert.Equal(t, squatsID, view.Weeks[0].Exercises[0].ExerciseID)
}

// TestPlanUpsert_LastWriterWins pins the legacy replace semantics: two
// writers that load the same snapshot and save divergent copies do not
// merge — the whole document of the later writer survives, and the earlier
// writer's change is silently lost.
func TestPlanUpsert_LastWriterWins(t *testing.T) {
	db := memory.New()
	svc := service.NewPlanService(db.Plans(), db.Exercises())
	userID := primitive.NewObjectID()
	ctx := context.Background()

	squatsID := seedExercise(t, db, userID, "Wall Squats")
	raisesID := seedExercise(t, db, userID, "Leg Raises")

	_, err := svc.Upsert(ctx, userID, "Plan", "", weekWith(
		domain.ExerciseRef{ExerciseID: squatsID},
		domain.ExerciseRef{ExerciseID: raisesID},
	))
	require.NoError(t, err)

	snapshotA, err := db.Plans().GetByUserID(ctx, userID)
	require.NoError(t, err)
	snapshotB, err := db.Plans().GetByUserID(ctx, userID)
	require.NoError(t, err)

	snapshotA.Weeks[0].Exercises[0].IsCompleted = true // writer A completes squats
	snapshotB.Weeks[0].Exercises[1].IsCompleted = true // writer B completes raises

	_, err = svc.Upsert(ctx, userID, snapshotA.Title, snapshotA.Description, snapshotA.Weeks)
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, userID, snapshotB.Title, snapshotB.Description, snapshotB.Weeks)
	require.NoError(t, err)

	final, err := db.Plans().GetByUserID(ctx, userID)
	require.NoError(t, err)
	assert.False(t, final.Weeks[0].Exercises[0].IsCompleted, "writer A's flag is overwritten")
	assert.True(t, final.Weeks[0].Exercises[1].IsCompleted)
}
