package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"healthmate/recovery-app/internal/domain"
	"healthmate/recovery-app/internal/repository/memory"
	"healthmate/recovery-app/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type cannedGenerator struct{ text string }

func (g *cannedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.text, nil
}

// eightExercises is a well-formed generation result with eight blocks.
func eightExercises() string {
	var b strings.Builder
	for i := 1; i <= 8; i++ {
		if i > 1 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Exercise: Movement %d\nDescription: Description %d.\nDuration: 10 minutes\nDifficulty: 2\nPrecautions: None.", i, i)
	}
	return b.String()
}

// newPlanTestRouter wires the plan routes over in-memory repositories with the
// auth middleware replaced by a stub that injects the given user.
func newPlanTestRouter(t *testing.T, db *memory.DB, generatedText string, userID primitive.ObjectID) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	matcher := service.NewSymptomMatcher(db.Symptoms())
	registry := service.NewExerciseRegistry(db.Exercises(), matcher)
	planService := service.NewPlanService(db.Plans(), db.Exercises())
	recoveryService := service.NewRecoveryService(&cannedGenerator{text: generatedText}, registry, planService, db.Plans())
	handler := NewPlanHandler(recoveryService)

	router := gin.New()
	authed := router.Group("", func(c *gin.Context) {
		c.Set(ContextUserIDKey, userID.Hex())
	})
	authed.POST("/recovery-plan", handler.GeneratePlan)
	authed.POST("/save-recovery-plan", handler.SavePlan)
	authed.GET("/recovery-plan", handler.GetPlan)
	authed.POST("/recovery-plan/complete", handler.MarkComplete)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetPlan_NotFound(t *testing.T) {
	db := memory.New()
	router := newPlanTestRouter(t, db, eightExercises(), primitive.NewObjectID())

	rec := doJSON(t, router, http.MethodGet, "/recovery-plan", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGeneratePlan_ValidationError(t *testing.T) {
	db := memory.New()
	router := newPlanTestRouter(t, db, eightExercises(), primitive.NewObjectID())

	rec := doJSON(t, router, http.MethodPost, "/recovery-plan", gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGeneratePlan_PreviewDoesNotPersist(t *testing.T) {
	db := memory.New()
	userID := primitive.NewObjectID()
	router := newPlanTestRouter(t, db, eightExercises(), userID)

	rec := doJSON(t, router, http.MethodPost, "/recovery-plan", gin.H{
		"symptoms": []gin.H{{"bodyPart": "Neck", "severity": 6}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Plan PlanResponse `json:"plan"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Plan.Weeks, 4)
	assert.Empty(t, body.Plan.ID)

	assert.Equal(t, 0, db.PlanCount(userID))
	assert.Equal(t, 0, db.ExerciseCount(userID))
}

func TestGeneratePlan_PersistAndFetch(t *testing.T) {
	db := memory.New()
	userID := primitive.NewObjectID()
	_, err := db.Symptoms().Create(context.Background(), &domain.Symptom{UserID: userID, BodyPart: "Neck"})
	require.NoError(t, err)

	router := newPlanTestRouter(t, db, eightExercises(), userID)

	rec := doJSON(t, router, http.MethodPost, "/recovery-plan", gin.H{
		"symptoms": []gin.H{{"bodyPart": "Neck", "severity": 6}},
		"persist":  true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, db.PlanCount(userID))

	rec = doJSON(t, router, http.MethodGet, "/recovery-plan", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Plan PlanResponse `json:"plan"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Plan.ID)
	require.Len(t, body.Plan.Weeks, 4)
	assert.Len(t, body.Plan.Weeks[0].Exercises, 2)
	assert.NotEmpty(t, body.Plan.Weeks[0].Exercises[0].ExerciseID)
}

func TestGeneratePlan_UnconfirmedOverwriteConflicts(t *testing.T) {
	db := memory.New()
	userID := primitive.NewObjectID()
	_, err := db.Symptoms().Create(context.Background(), &domain.Symptom{UserID: userID, BodyPart: "Neck"})
	require.NoError(t, err)

	router := newPlanTestRouter(t, db, eightExercises(), userID)
	payload := gin.H{
		"symptoms": []gin.H{{"bodyPart": "Neck", "severity": 6}},
		"persist":  true,
	}

	rec := doJSON(t, router, http.MethodPost, "/recovery-plan", payload)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/recovery-plan", payload)
	assert.Equal(t, http.StatusConflict, rec.Code)

	payload["confirmOverwrite"] = true
	rec = doJSON(t, router, http.MethodPost, "/recovery-plan", payload)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, db.PlanCount(userID))
}

func TestGeneratePlan_MalformedGenerationIsBadGateway(t *testing.T) {
	db := memory.New()
	router := newPlanTestRouter(t, db, "not an exercise list", primitive.NewObjectID())

	rec := doJSON(t, router, http.MethodPost, "/recovery-plan", gin.H{
		"symptoms": []gin.H{{"bodyPart": "Neck", "severity": 6}},
	})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestSavePlan_WithoutSymptomsIsBadRequest(t *testing.T) {
	db := memory.New()
	userID := primitive.NewObjectID()
	router := newPlanTestRouter(t, db, eightExercises(), userID)

	rec := doJSON(t, router, http.MethodPost, "/save-recovery-plan", gin.H{
		"plan": gin.H{
			"title": "Plan",
			"weeks": []gin.H{{
				"weekNumber": 1,
				"focus":      "Gentle Mobility",
				"exercises": []gin.H{{
					"exerciseType": "Neck Rolls",
					"bodyPart":     "Neck",
				}},
			}},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, db.PlanCount(userID))
}

func TestMarkComplete_RoundTrip(t *testing.T) {
	db := memory.New()
	userID := primitive.NewObjectID()
	_, err := db.Symptoms().Create(context.Background(), &domain.Symptom{UserID: userID, BodyPart: "Neck"})
	require.NoError(t, err)

	router := newPlanTestRouter(t, db, eightExercises(), userID)

	rec := doJSON(t, router, http.MethodPost, "/recovery-plan", gin.H{
		"symptoms": []gin.H{{"bodyPart": "Neck", "severity": 6}},
		"persist":  true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		Plan PlanResponse `json:"plan"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	target := created.Plan.Weeks[0].Exercises[0]

	rec = doJSON(t, router, http.MethodPost, "/recovery-plan/complete", gin.H{
		"exerciseId": target.ExerciseID,
		"weekNumber": 1,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var updated struct {
		Plan PlanResponse `json:"plan"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.True(t, updated.Plan.Weeks[0].Exercises[0].IsCompleted)
	assert.False(t, updated.Plan.Weeks[0].Exercises[1].IsCompleted)
}
