package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"healthmate/recovery-app/internal/domain"
	"healthmate/recovery-app/internal/repository"
	"healthmate/recovery-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrSymptomNotFound     = errors.New("symptom not found")
	ErrSymptomAccessDenied = errors.New("access denied to this symptom")
	ErrInvalidSeverity     = errors.New("severity must be between 0 and 10")
)

// AttachmentUploadResult is handed back to the client after requesting an
// upload slot: the metadata row plus a presigned PUT URL to send the bytes to.
type AttachmentUploadResult struct {
	Attachment *domain.Attachment
	UploadURL  string
}

// AttachmentDownload pairs attachment metadata with a presigned GET URL.
type AttachmentDownload struct {
	Attachment  domain.Attachment
	DownloadURL string
}

// SymptomService handles symptom CRUD, the severity log and photo attachments.
type SymptomService interface {
	CreateSymptom(ctx context.Context, userID primitive.ObjectID, bodyPart, notes string) (*domain.Symptom, error)
	GetSymptoms(ctx context.Context, userID primitive.ObjectID) ([]domain.Symptom, error)
	UpdateSymptom(ctx context.Context, userID, symptomID primitive.ObjectID, bodyPart, notes string) (*domain.Symptom, error)
	DeleteSymptom(ctx context.Context, userID, symptomID primitive.ObjectID) error
	AddSeverity(ctx context.Context, userID, symptomID primitive.ObjectID, value int, notes string) error

	RequestAttachmentUpload(ctx context.Context, userID, symptomID primitive.ObjectID, fileName, contentType string, size int64) (*AttachmentUploadResult, error)
	GetAttachments(ctx context.Context, userID, symptomID primitive.ObjectID) ([]AttachmentDownload, error)
}

type symptomService struct {
	symptomRepo    repository.SymptomRepository
	attachmentRepo repository.AttachmentRepository
	fileStorage    storage.FileStorage
}

// NewSymptomService creates a new instance of symptomService.
func NewSymptomService(
	symptomRepo repository.SymptomRepository,
	attachmentRepo repository.AttachmentRepository,
	fileStorage storage.FileStorage,
) SymptomService {
	return &symptomService{
		symptomRepo:    symptomRepo,
		attachmentRepo: attachmentRepo,
		fileStorage:    fileStorage,
	}
}

func (s *symptomService) CreateSymptom(ctx context.Context, userID primitive.ObjectID, bodyPart, notes string) (*domain.Symptom, error) {
	if bodyPart == "" {
		return nil, errors.New("body part is required")
	}

	symptom := &domain.Symptom{
		UserID:   userID,
		BodyPart: bodyPart,
		Notes:    notes,
	}
	id, err := s.symptomRepo.Create(ctx, symptom)
	if err != nil {
		return nil, err
	}
	symptom.ID = id
	return symptom, nil
}

func (s *symptomService) GetSymptoms(ctx context.Context, userID primitive.ObjectID) ([]domain.Symptom, error) {
	return s.symptomRepo.GetByUserID(ctx, userID)
}

func (s *symptomService) UpdateSymptom(ctx context.Context, userID, symptomID primitive.ObjectID, bodyPart, notes string) (*domain.Symptom, error) {
	existing, err := s.getOwnedSymptom(ctx, userID, symptomID)
	if err != nil {
		return nil, err
	}

	existing.BodyPart = bodyPart
	existing.Notes = notes
	if err := s.symptomRepo.Update(ctx, existing); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSymptomNotFound
		}
		return nil, err
	}
	return existing, nil
}

func (s *symptomService) DeleteSymptom(ctx context.Context, userID, symptomID primitive.ObjectID) error {
	err := s.symptomRepo.Delete(ctx, symptomID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSymptomNotFound
	}
	return err
}

func (s *symptomService) AddSeverity(ctx context.Context, userID, symptomID primitive.ObjectID, value int, notes string) error {
	if value < 0 || value > 10 {
		return ErrInvalidSeverity
	}
	if _, err := s.getOwnedSymptom(ctx, userID, symptomID); err != nil {
		return err
	}

	entry := domain.SeverityEntry{
		Value: value,
		Date:  time.Now().UTC(),
		Notes: notes,
	}
	err := s.symptomRepo.AppendSeverity(ctx, symptomID, entry)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrSymptomNotFound
	}
	return err
}

// RequestAttachmentUpload creates the metadata row and a presigned PUT URL;
// the client uploads the photo bytes directly to object storage.
func (s *symptomService) RequestAttachmentUpload(ctx context.Context, userID, symptomID primitive.ObjectID, fileName, contentType string, size int64) (*AttachmentUploadResult, error) {
	if fileName == "" || contentType == "" {
		return nil, errors.New("file name and content type are required")
	}
	if _, err := s.getOwnedSymptom(ctx, userID, symptomID); err != nil {
		return nil, err
	}

	objectKey := fmt.Sprintf("symptoms/%s/%s/%s-%s", userID.Hex(), symptomID.Hex(), uuid.NewString(), fileName)

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}

	attachment := &domain.Attachment{
		SymptomID:   symptomID,
		UserID:      userID,
		S3ObjectKey: objectKey,
		FileName:    fileName,
		ContentType: contentType,
		Size:        size,
	}
	id, err := s.attachmentRepo.Create(ctx, attachment)
	if err != nil {
		return nil, err
	}
	attachment.ID = id

	return &AttachmentUploadResult{
		Attachment: attachment,
		UploadURL:  uploadURL,
	}, nil
}

func (s *symptomService) GetAttachments(ctx context.Context, userID, symptomID primitive.ObjectID) ([]AttachmentDownload, error) {
	if _, err := s.getOwnedSymptom(ctx, userID, symptomID); err != nil {
		return nil, err
	}

	attachments, err := s.attachmentRepo.GetBySymptomID(ctx, symptomID)
	if err != nil {
		return nil, err
	}

	downloads := make([]AttachmentDownload, 0, len(attachments))
	for _, att := range attachments {
		url, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, att.S3ObjectKey, storage.DefaultPresignedURLExpiry)
		if err != nil {
			return nil, err
		}
		downloads = append(downloads, AttachmentDownload{Attachment: att, DownloadURL: url})
	}
	return downloads, nil
}

// getOwnedSymptom fetches a symptom and verifies ownership.
func (s *symptomService) getOwnedSymptom(ctx context.Context, userID, symptomID primitive.ObjectID) (*domain.Symptom, error) {
	symptom, err := s.symptomRepo.GetByID(ctx, symptomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSymptomNotFound
		}
		return nil, err
	}
	if symptom.UserID != userID {
		return nil, ErrSymptomAccessDenied
	}
	return symptom, nil
}
