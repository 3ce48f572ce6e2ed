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

func seedSymptom(t *testing.T, db *memory.DB, userID primitive.ObjectID, bodyPart string) primitive.ObjectID {
	t.Helper()
	id, err := db.Symptoms().Create(context.Background(), &domain.Symptom{
		UserID:   userID,
		BodyPart: bodyPart,
	})
	require.NoError(t, err)
	return id
}

func TestResolve_CaseInsensitiveMatch(t *testing.T) {
	db := memory.New()
	userID := primitive.NewObjectID()
	seedSymptom(t, db, userID, "Lower Back")
	neckID := seedSymptom(t, db, userID, "Neck")

	matcher := service.NewSymptomMatcher(db.Symptoms())

	got, err := matcher.Resolve(context.Background(), userID, "neck")
	require.NoError(t, err)
	assert.Equal(t, neckID, got)
}

func TestResolve_SubstringMatch(t *testing.T) {
	db := memory.New()
	userID := primitive.NewObjectID()
	shoulderID := seedSymptom(t, db, userID, "Neck and Shoulders")

	matcher := service.NewSymptomMatcher(db.Symptoms())

	got, err := matcher.Resolve(context.Background(), userID, "Shoulder")
	require.NoError(t, err)
	assert.Equal(t, shoulderID, got)
}

func TestResolve_FallsBackToFirstSymptom(t *testing.T) {
	db := memory.New()
	userID := primitive.NewObjectID()
	kneeID := seedSymptom(t, db, userID, "Knee")
	seedSymptom(t, db, userID, "Wrist")

	matcher := service.NewSymptomMatcher(db.Symptoms())

	// No symptom matches "Elbow"; the exercise still links to one.
	got, err := matcher.Resolve(context.Background(), userID, "Elbow")
	require.NoError(t, err)
	assert.Equal(t, kneeID, got)
}

func TestResolve_NoSymptoms(t *testing.T) {
	db := memory.New()
	matcher := service.NewSymptomMatcher(db.Symptoms())

	_, err := matcher.Resolve(context.Background(), primitive.NewObjectID(), "Knee")
	assert.ErrorIs(t, err, service.ErrNoSymptomsFound)
}

func TestResolve_MetacharacterLabelFails(t *testing.T) {
	db := memory.New()
	userID := primitive.NewObjectID()
	seedSymptom(t, db, userID, "Knee")

	matcher := service.NewSymptomMatcher(db.Symptoms())

	// The label is compiled unescaped; an unbalanced paren breaks it.
	_, err := matcher.Resolve(context.Background(), userID, "Knee (")
	assert.ErrorIs(t, err, service.ErrInvalidBodyPartPattern)
}

func TestResolve_MetacharacterLabelMatchesBroadly(t *testing.T) {
	db := memory.New()
	userID := primitive.NewObjectID()
	seedSymptom(t, db, userID, "Wrist")
	armsID := seedSymptom(t, db, userID, "Arms")

	matcher := service.NewSymptomMatcher(db.Symptoms())

	// "Arm." compiles fine but the dot matches any character, so it hits
	// "Arms" rather than falling back.
	got, err := matcher.Resolve(context.Background(), userID, "Arm.")
	require.NoError(t, err)
	assert.Equal(t, armsID, got)
}
