package service_test

import (
	"context"
	"testing"
	"time"

	"healthmate/recovery-app/internal/repository/memory"
	"healthmate/recovery-app/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeStorage hands back deterministic URLs without touching S3.
type fakeStorage struct{}

func (fakeStorage) GeneratePresignedUploadURL(ctx context.Context, objectKey, contentType string, expires time.Duration) (string, error) {
	return "https://storage.test/put/" + objectKey, nil
}

func (fakeStorage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	return "https://storage.test/get/" + objectKey, nil
}

func (fakeStorage) DeleteObject(ctx context.Context, objectKey string) error { return nil }

func newSymptomService(db *memory.DB) service.SymptomService {
	return service.NewSymptomService(db.Symptoms(), db.Attachments(), fakeStorage{})
}

func TestSymptomCRUD(t *testing.T) {
	db := memory.New()
	svc := newSymptomService(db)
	userID := primitive.NewObjectID()
	ctx := context.Background()

	created, err := svc.CreateSymptom(ctx, userID, "Lower Back", "hurts in the morning")
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())

	updated, err := svc.UpdateSymptom(ctx, userID, created.ID, "Lower Back", "improving")
	require.NoError(t, err)
	assert.Equal(t, "improving", updated.Notes)

	all, err := svc.GetSymptoms(ctx, userID)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, svc.DeleteSymptom(ctx, userID, created.ID))
	assert.ErrorIs(t, svc.DeleteSymptom(ctx, userID, created.ID), service.ErrSymptomNotFound)
}

func TestCreateSymptom_RequiresBodyPart(t *testing.T) {
	db := memory.New()
	svc := newSymptomService(db)

	_, err := svc.CreateSymptom(context.Background(), primitive.NewObjectID(), "", "notes")
	assert.Error(t, err)
}

func TestUpdateSymptom_OwnershipEnforced(t *testing.T) {
	db := memory.New()
	svc := newSymptomService(db)
	ctx := context.Background()

	owner := primitive.NewObjectID()
	intruder := primitive.NewObjectID()

	created, err := svc.CreateSymptom(ctx, owner, "Knee", "")
	require.NoError(t, err)

	_, err = svc.UpdateSymptom(ctx, intruder, created.ID, "Knee", "hijacked")
	assert.ErrorIs(t, err, service.ErrSymptomAccessDenied)
}

func TestAddSeverity(t *testing.T) {
	db := memory.New()
	svc := newSymptomService(db)
	userID := primitive.NewObjectID()
	ctx := context.Background()

	created, err := svc.CreateSymptom(ctx, userID, "Knee", "")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.AddSeverity(ctx, userID, created.ID, 11, ""), service.ErrInvalidSeverity)
	assert.ErrorIs(t, svc.AddSeverity(ctx, userID, created.ID, -1, ""), service.ErrInvalidSeverity)

	require.NoError(t, svc.AddSeverity(ctx, userID, created.ID, 7, "after a run"))
	require.NoError(t, svc.AddSeverity(ctx, userID, created.ID, 4, ""))

	all, err := svc.GetSymptoms(ctx, userID)
	require.NoError(t, err)
	require.Len(t, all[0].Severities, 2)
	latest, ok := all[0].LatestSeverity()
	require.True(t, ok)
	assert.Equal(t, 4, latest.Value)
}

func TestAttachmentRoundTrip(t *testing.T) {
	db := memory.New()
	svc := newSymptomService(db)
	userID := primitive.NewObjectID()
	ctx := context.Background()

	created, err := svc.CreateSymptom(ctx, userID, "Knee", "")
	require.NoError(t, err)

	result, err := svc.RequestAttachmentUpload(ctx, userID, created.ID, "swelling.jpg", "image/jpeg", 2048)
	require.NoError(t, err)
	assert.Contains(t, result.UploadURL, "https://storage.test/put/symptoms/"+userID.Hex())
	assert.Equal(t, "swelling.jpg", result.Attachment.FileName)

	downloads, err := svc.GetAttachments(ctx, userID, created.ID)
	require.NoError(t, err)
	require.Len(t, downloads, 1)
	assert.Contains(t, downloads[0].DownloadURL, "https://storage.test/get/")
	assert.Equal(t, int64(2048), downloads[0].Attachment.Size)
}

func TestAttachments_OwnershipEnforced(t *testing.T) {
	db := memory.New()
	svc := newSymptomService(db)
	ctx := context.Background()

	owner := primitive.NewObjectID()
	created, err := svc.CreateSymptom(ctx, owner, "Knee", "")
	require.NoError(t, err)

	_, err = svc.GetAttachments(ctx, primitive.NewObjectID(), created.ID)
	assert.ErrorIs(t, err, service.ErrSymptomAccessDenied)
}
