package api

import (
	"errors"
	"net/http"
	"time"

	"healthmate/recovery-app/internal/domain"
	"healthmate/recovery-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SymptomHandler holds the symptom service dependency.
type SymptomHandler struct {
	symptomService service.SymptomService
}

// NewSymptomHandler creates a new SymptomHandler.
func NewSymptomHandler(symptomService service.SymptomService) *SymptomHandler {
	return &SymptomHandler{symptomService: symptomService}
}

// --- DTOs ---

type CreateSymptomRequest struct {
	BodyPart string `json:"bodyPart" binding:"required"`
	Notes    string `json:"notes"`
}

type UpdateSymptomRequest struct {
	BodyPart string `json:"bodyPart" binding:"required"`
	Notes    string `json:"notes"`
}

type AddSeverityRequest struct {
	Value int    `json:"value" binding:"min=0,max=10"`
	Notes string `json:"notes"`
}

type SeverityResponse struct {
	Value int       `json:"value"`
	Date  time.Time `json:"date"`
	Notes string    `json:"notes,omitempty"`
}

type SymptomResponse struct {
	ID         string             `json:"id"`
	BodyPart   string             `json:"bodyPart"`
	Notes      string             `json:"notes,omitempty"`
	Severities []SeverityResponse `json:"severities"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

type RequestAttachmentUploadRequest struct {
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
	Size        int64  `json:"size"`
}

type AttachmentResponse struct {
	ID          string    `json:"id"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploadedAt"`
	URL         string    `json:"url,omitempty"` // presigned, short-lived
}

func mapSymptomToResponse(s *domain.Symptom) SymptomResponse {
	severities := make([]SeverityResponse, 0, len(s.Severities))
	for _, entry := range s.Severities {
		severities = append(severities, SeverityResponse{
			Value: entry.Value,
			Date:  entry.Date,
			Notes: entry.Notes,
		})
	}
	return SymptomResponse{
		ID:         s.ID.Hex(),
		BodyPart:   s.BodyPart,
		Notes:      s.Notes,
		Severities: severities,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

// --- Handler Methods ---

// CreateSymptom records a new symptom for the authenticated user.
func (h *SymptomHandler) CreateSymptom(c *gin.Context) {
	var req CreateSymptomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	symptom, err := h.symptomService.CreateSymptom(c.Request.Context(), userID, req.BodyPart, req.Notes)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to create symptom.")
		return
	}

	c.JSON(http.StatusCreated, mapSymptomToResponse(symptom))
}

// GetSymptoms lists the authenticated user's symptoms.
func (h *SymptomHandler) GetSymptoms(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	symptoms, err := h.symptomService.GetSymptoms(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve symptoms.")
		return
	}

	responses := make([]SymptomResponse, 0, len(symptoms))
	for i := range symptoms {
		responses = append(responses, mapSymptomToResponse(&symptoms[i]))
	}
	c.JSON(http.StatusOK, responses)
}

// UpdateSymptom updates a symptom's body part and notes.
func (h *SymptomHandler) UpdateSymptom(c *gin.Context) {
	var req UpdateSymptomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	symptomID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	symptom, err := h.symptomService.UpdateSymptom(c.Request.Context(), userID, symptomID, req.BodyPart, req.Notes)
	if err != nil {
		h.mapSymptomError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapSymptomToResponse(symptom))
}

// DeleteSymptom removes a symptom.
func (h *SymptomHandler) DeleteSymptom(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	symptomID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.symptomService.DeleteSymptom(c.Request.Context(), userID, symptomID); err != nil {
		h.mapSymptomError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Symptom deleted."})
}

// AddSeverity appends a severity entry to a symptom's history.
func (h *SymptomHandler) AddSeverity(c *gin.Context) {
	var req AddSeverityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	symptomID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	if err := h.symptomService.AddSeverity(c.Request.Context(), userID, symptomID, req.Value, req.Notes); err != nil {
		if errors.Is(err, service.ErrInvalidSeverity) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.mapSymptomError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Severity recorded."})
}

// RequestAttachmentUpload reserves an attachment slot and returns a
// presigned upload URL for the photo bytes.
func (h *SymptomHandler) RequestAttachmentUpload(c *gin.Context) {
	var req RequestAttachmentUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	symptomID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	result, err := h.symptomService.RequestAttachmentUpload(c.Request.Context(), userID, symptomID, req.FileName, req.ContentType, req.Size)
	if err != nil {
		h.mapSymptomError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"attachment": AttachmentResponse{
			ID:          result.Attachment.ID.Hex(),
			FileName:    result.Attachment.FileName,
			ContentType: result.Attachment.ContentType,
			Size:        result.Attachment.Size,
			UploadedAt:  result.Attachment.UploadedAt,
		},
		"uploadUrl": result.UploadURL,
	})
}

// GetAttachments lists a symptom's attachments with presigned download URLs.
func (h *SymptomHandler) GetAttachments(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	symptomID, ok := pathObjectID(c, "id")
	if !ok {
		return
	}

	downloads, err := h.symptomService.GetAttachments(c.Request.Context(), userID, symptomID)
	if err != nil {
		h.mapSymptomError(c, err)
		return
	}

	responses := make([]AttachmentResponse, 0, len(downloads))
	for _, d := range downloads {
		responses = append(responses, AttachmentResponse{
			ID:          d.Attachment.ID.Hex(),
			FileName:    d.Attachment.FileName,
			ContentType: d.Attachment.ContentType,
			Size:        d.Attachment.Size,
			UploadedAt:  d.Attachment.UploadedAt,
			URL:         d.DownloadURL,
		})
	}
	c.JSON(http.StatusOK, responses)
}

// mapSymptomError translates symptom service errors to HTTP statuses.
func (h *SymptomHandler) mapSymptomError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSymptomNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSymptomAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Something went wrong.")
	}
}

// pathObjectID parses an ObjectID path parameter.
func pathObjectID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid "+name+" format.")
		return primitive.NilObjectID, false
	}
	return id, true
}
