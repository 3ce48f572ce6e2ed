package api

import (
	"errors"
	"net/http"
	"time"

	"healthmate/recovery-app/internal/planparser"
	"healthmate/recovery-app/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanHandler holds the recovery service dependency.
type PlanHandler struct {
	recoveryService service.RecoveryService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(recoveryService service.RecoveryService) *PlanHandler {
	return &PlanHandler{recoveryService: recoveryService}
}

// --- DTOs ---

type SymptomInputRequest struct {
	BodyPart string `json:"bodyPart" binding:"required"`
	Severity int    `json:"severity" binding:"min=0,max=10"`
}

// GeneratePlanRequest drives POST /recovery-plan. With Persist unset the
// generated plan is returned without touching storage; with Persist set an
// existing plan additionally requires ConfirmOverwrite, mirroring the
// client-side overwrite prompt.
type GeneratePlanRequest struct {
	Symptoms         []SymptomInputRequest `json:"symptoms" binding:"required"`
	Persist          bool                  `json:"persist"`
	ConfirmOverwrite bool                  `json:"confirmOverwrite"`
}

type PlanExerciseRequest struct {
	ExerciseType string `json:"exerciseType" binding:"required"`
	BodyPart     string `json:"bodyPart" binding:"required"`
	Description  string `json:"description"`
	Duration     string `json:"duration"`
	Difficulty   int    `json:"difficulty"`
	Precautions  string `json:"precautions"`
	IsCompleted  bool   `json:"isCompleted"`
}

type PlanWeekRequest struct {
	WeekNumber int                   `json:"weekNumber" binding:"required"`
	Focus      string                `json:"focus"`
	Exercises  []PlanExerciseRequest `json:"exercises"`
}

type PlanRequest struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	Weeks       []PlanWeekRequest `json:"weeks" binding:"required"`
}

type SavePlanRequest struct {
	Plan PlanRequest `json:"plan" binding:"required"`
}

type MarkCompleteRequest struct {
	ExerciseID string `json:"exerciseId" binding:"required"`
	WeekNumber int    `json:"weekNumber" binding:"required"`
}

type PlanExerciseResponse struct {
	ExerciseID   string `json:"exerciseId,omitempty"`
	ExerciseType string `json:"exerciseType"`
	Description  string `json:"description"`
	Duration     string `json:"duration"`
	Difficulty   int    `json:"difficulty"`
	Precautions  string `json:"precautions"`
	BodyPart     string `json:"bodyPart"`
	IsCompleted  bool   `json:"isCompleted"`
}

type PlanWeekResponse struct {
	WeekNumber int                    `json:"weekNumber"`
	Focus      string                 `json:"focus"`
	Exercises  []PlanExerciseResponse `json:"exercises"`
}

type PlanResponse struct {
	ID          string             `json:"id,omitempty"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	CreatedAt   *time.Time         `json:"createdAt,omitempty"`
	Weeks       []PlanWeekResponse `json:"weeks"`
}

func mapGeneratedPlanToResponse(p *service.GeneratedPlan) PlanResponse {
	resp := PlanResponse{
		Title:       p.Title,
		Description: p.Description,
		Weeks:       make([]PlanWeekResponse, 0, len(p.Weeks)),
	}
	for _, week := range p.Weeks {
		wr := PlanWeekResponse{WeekNumber: week.WeekNumber, Focus: week.Focus, Exercises: []PlanExerciseResponse{}}
		for _, ex := range week.Exercises {
			wr.Exercises = append(wr.Exercises, PlanExerciseResponse{
				ExerciseType: ex.ExerciseType,
				Description:  ex.Description,
				Duration:     ex.Duration,
				Difficulty:   ex.Difficulty,
				Precautions:  ex.Precautions,
				BodyPart:     ex.BodyPart,
				IsCompleted:  ex.IsCompleted,
			})
		}
		resp.Weeks = append(resp.Weeks, wr)
	}
	return resp
}

func mapPlanViewToResponse(p *service.PlanView) PlanResponse {
	createdAt := p.CreatedAt
	resp := PlanResponse{
		ID:          p.ID.Hex(),
		Title:       p.Title,
		Description: p.Description,
		CreatedAt:   &createdAt,
		Weeks:       make([]PlanWeekResponse, 0, len(p.Weeks)),
	}
	for _, week := range p.Weeks {
		wr := PlanWeekResponse{WeekNumber: week.WeekNumber, Focus: week.Focus, Exercises: []PlanExerciseResponse{}}
		for _, ex := range week.Exercises {
			wr.Exercises = append(wr.Exercises, PlanExerciseResponse{
				ExerciseID:   ex.ExerciseID.Hex(),
				ExerciseType: ex.ExerciseType,
				Description:  ex.Description,
				Duration:     ex.Duration,
				Difficulty:   ex.Difficulty,
				Precautions:  ex.Precautions,
				BodyPart:     ex.BodyPart,
				IsCompleted:  ex.IsCompleted,
			})
		}
		resp.Weeks = append(resp.Weeks, wr)
	}
	return resp
}

// --- Handler Methods ---

// GeneratePlan generates a 4-week recovery plan from the submitted symptoms,
// optionally persisting it in the same call.
func (h *PlanHandler) GeneratePlan(c *gin.Context) {
	var req GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	symptoms := make([]service.SymptomInput, 0, len(req.Symptoms))
	for _, s := range req.Symptoms {
		symptoms = append(symptoms, service.SymptomInput{BodyPart: s.BodyPart, Severity: s.Severity})
	}

	if !req.Persist {
		generated, err := h.recoveryService.Generate(c.Request.Context(), symptoms)
		if err != nil {
			h.mapPlanError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"plan": mapGeneratedPlanToResponse(generated)})
		return
	}

	if _, err := h.recoveryService.GenerateAndPersist(c.Request.Context(), userID, symptoms, req.ConfirmOverwrite); err != nil {
		h.mapPlanError(c, err)
		return
	}

	view, err := h.recoveryService.Load(c.Request.Context(), userID)
	if err != nil {
		h.mapPlanError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"plan": mapPlanViewToResponse(view)})
}

// SavePlan persists a plan submitted by the client, resolving every
// exercise through the registry.
func (h *PlanHandler) SavePlan(c *gin.Context) {
	var req SavePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	input := service.PlanInput{
		Title:       req.Plan.Title,
		Description: req.Plan.Description,
	}
	for _, week := range req.Plan.Weeks {
		wi := service.WeekInput{WeekNumber: week.WeekNumber, Focus: week.Focus}
		for _, ex := range week.Exercises {
			wi.Exercises = append(wi.Exercises, service.ExerciseEntryInput{
				ExerciseInput: service.ExerciseInput{
					ExerciseType: ex.ExerciseType,
					Description:  ex.Description,
					Duration:     ex.Duration,
					Difficulty:   ex.Difficulty,
					Precautions:  ex.Precautions,
					BodyPart:     ex.BodyPart,
				},
				IsCompleted: ex.IsCompleted,
			})
		}
		input.Weeks = append(input.Weeks, wi)
	}

	if _, err := h.recoveryService.Save(c.Request.Context(), userID, input); err != nil {
		h.mapPlanError(c, err)
		return
	}

	view, err := h.recoveryService.Load(c.Request.Context(), userID)
	if err != nil {
		h.mapPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Recovery plan saved.",
		"plan":    mapPlanViewToResponse(view),
	})
}

// GetPlan returns the user's persisted plan with exercise references
// dereferenced; 404 when absent.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	view, err := h.recoveryService.Load(c.Request.Context(), userID)
	if err != nil {
		h.mapPlanError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan": mapPlanViewToResponse(view)})
}

// MarkComplete flips one exercise's completion flag.
func (h *PlanHandler) MarkComplete(c *gin.Context) {
	var req MarkCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(req.ExerciseID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exerciseId format.")
		return
	}

	if _, err := h.recoveryService.MarkComplete(c.Request.Context(), userID, exerciseID, req.WeekNumber); err != nil {
		h.mapPlanError(c, err)
		return
	}

	view, err := h.recoveryService.Load(c.Request.Context(), userID)
	if err != nil {
		h.mapPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Exercise marked complete.",
		"plan":    mapPlanViewToResponse(view),
	})
}

// mapPlanError translates recovery/plan service errors to HTTP statuses.
// Messages go to the client verbatim; it displays them as-is.
func (h *PlanHandler) mapPlanError(c *gin.Context, err error) {
	var parseErr *planparser.ParseError
	switch {
	case errors.As(err, &parseErr):
		abortWithError(c, http.StatusBadGateway, err.Error())
	case errors.Is(err, service.ErrPlanNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPlanExists):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNoSymptomsFound),
		errors.Is(err, service.ErrSymptomsRequired),
		errors.Is(err, service.ErrValidationFailed),
		errors.Is(err, service.ErrInvalidBodyPartPattern),
		errors.Is(err, service.ErrExerciseNotInPlan):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Something went wrong.")
	}
}
