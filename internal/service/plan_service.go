package service

import (
	"context"
	"errors"
	"time"

	"healthmate/recovery-app/internal/domain"
	"healthmate/recovery-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound     = errors.New("recovery plan not found")
	ErrValidationFailed = errors.New("plan validation failed: title and at least one week are required")
)

// ExerciseView is a plan exercise with its reference dereferenced: the
// exercise's current stored fields joined with the plan's completion flag.
type ExerciseView struct {
	ExerciseID   primitive.ObjectID `json:"exerciseId"`
	ExerciseType string             `json:"exerciseType"`
	Description  string             `json:"description"`
	Duration     string             `json:"duration"`
	Difficulty   int                `json:"difficulty"`
	Precautions  string             `json:"precautions"`
	BodyPart     string             `json:"bodyPart"`
	IsCompleted  bool               `json:"isCompleted"`
}

// WeekView is one denormalized plan week.
type WeekView struct {
	WeekNumber int            `json:"weekNumber"`
	Focus      string         `json:"focus"`
	Exercises  []ExerciseView `json:"exercises"`
}

// PlanView is the denormalized read model of a recovery plan.
type PlanView struct {
	ID          primitive.ObjectID `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	CreatedAt   time.Time          `json:"createdAt"`
	Weeks       []WeekView         `json:"weeks"`
}

// PlanService persists the singleton-per-user recovery plan and serves the
// denormalized read path.
type PlanService interface {
	// Upsert replaces the user's plan wholesale (title, description, weeks
	// and createdAt) or inserts one if absent, and returns the persisted
	// document. There is no version check: concurrent read-modify-write
	// callers lose updates, last writer wins in full.
	Upsert(ctx context.Context, userID primitive.ObjectID, title, description string, weeks []domain.RecoveryWeek) (*domain.RecoveryPlan, error)

	// Get fetches the plan and dereferences every exercise reference into
	// the denormalized view, preserving stored completion flags.
	Get(ctx context.Context, userID primitive.ObjectID) (*PlanView, error)
}

type planService struct {
	planRepo     repository.RecoveryPlanRepository
	exerciseRepo repository.ExerciseRepository
}

// NewPlanService creates a new PlanService.
func NewPlanService(planRepo repository.RecoveryPlanRepository, exerciseRepo repository.ExerciseRepository) PlanService {
	return &planService{
		planRepo:     planRepo,
		exerciseRepo: exerciseRepo,
	}
}

func (s *planService) Upsert(ctx context.Context, userID primitive.ObjectID, title, description string, weeks []domain.RecoveryWeek) (*domain.RecoveryPlan, error) {
	if title == "" || len(weeks) == 0 {
		return nil, ErrValidationFailed
	}
	if userID == primitive.NilObjectID {
		return nil, errors.New("user ID is required")
	}

	plan := &domain.RecoveryPlan{
		UserID:      userID,
		Title:       title,
		Description: description,
		Weeks:       weeks,
		CreatedAt:   time.Now().UTC(), // replaced on every save, like the rest of the document
	}

	return s.planRepo.Upsert(ctx, plan)
}

func (s *planService) Get(ctx context.Context, userID primitive.ObjectID) (*PlanView, error) {
	plan, err := s.planRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	view := &PlanView{
		ID:          plan.ID,
		Title:       plan.Title,
		Description: plan.Description,
		CreatedAt:   plan.CreatedAt,
		Weeks:       make([]WeekView, 0, len(plan.Weeks)),
	}

	for _, week := range plan.Weeks {
		wv := WeekView{
			WeekNumber: week.WeekNumber,
			Focus:      week.Focus,
			Exercises:  make([]ExerciseView, 0, len(week.Exercises)),
		}
		for _, ref := range week.Exercises {
			exercise, err := s.exerciseRepo.GetByID(ctx, ref.ExerciseID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					// Dangling reference: the exercise row is gone. Skip it,
					// matching populate-to-null behavior on the read path.
					continue
				}
				return nil, err
			}
			wv.Exercises = append(wv.Exercises, ExerciseView{
				ExerciseID:   exercise.ID,
				ExerciseType: exercise.ExerciseType,
				Description:  exercise.Description,
				Duration:     exercise.Duration,
				Difficulty:   exercise.Difficulty,
				Precautions:  exercise.Precautions,
				BodyPart:     exercise.BodyPart,
				IsCompleted:  ref.IsCompleted,
			})
		}
		view.Weeks = append(view.Weeks, wv)
	}

	return view, nil
}
