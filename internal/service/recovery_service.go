package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"healthmate/recovery-app/internal/domain"
	"healthmate/recovery-app/internal/generation"
	"healthmate/recovery-app/internal/planparser"
	"healthmate/recovery-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPlanExists        = errors.New("a recovery plan already exists: confirm overwrite to replace it")
	ErrExerciseNotInPlan = errors.New("exercise not found in the given week of the plan")
	ErrSymptomsRequired  = errors.New("at least one symptom is required to generate a plan")
)

// Number of weeks every generated plan is partitioned into, and the fixed
// focus label for each.
var weekFocusLabels = [4]string{
	"Gentle Mobility",
	"Building Strength",
	"Progressive Loading",
	"Full Integration",
}

// SymptomInput is one symptom as submitted in a generation request.
type SymptomInput struct {
	BodyPart string
	Severity int
}

// GeneratedExercise is one unpersisted exercise of a freshly generated plan.
type GeneratedExercise struct {
	ExerciseType string `json:"exerciseType"`
	Description  string `json:"description"`
	Duration     string `json:"duration"`
	Difficulty   int    `json:"difficulty"`
	Precautions  string `json:"precautions"`
	BodyPart     string `json:"bodyPart"`
	IsCompleted  bool   `json:"isCompleted"`
}

// GeneratedWeek is one unpersisted week of a freshly generated plan.
type GeneratedWeek struct {
	WeekNumber int                 `json:"weekNumber"`
	Focus      string              `json:"focus"`
	Exercises  []GeneratedExercise `json:"exercises"`
}

// GeneratedPlan is the unpersisted result of plan generation. Nothing is
// written until the plan is saved.
type GeneratedPlan struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Weeks       []GeneratedWeek `json:"weeks"`
}

// WeekInput is one week of a plan as submitted for saving.
type WeekInput struct {
	WeekNumber int
	Focus      string
	Exercises  []ExerciseEntryInput
}

// ExerciseEntryInput is ExerciseInput plus the plan-level completion flag.
type ExerciseEntryInput struct {
	ExerciseInput
	IsCompleted bool
}

// PlanInput is a full plan as submitted for saving.
type PlanInput struct {
	Title       string
	Description string
	Weeks       []WeekInput
}

// RecoveryService orchestrates plan generation, persistence and
// reconciliation of client-driven partial updates.
type RecoveryService interface {
	// Generate calls the text-generation collaborator, parses the result and
	// partitions it into four weeks. Nothing is persisted.
	Generate(ctx context.Context, symptoms []SymptomInput) (*GeneratedPlan, error)

	// Save resolves every submitted exercise through the registry and
	// upserts the plan document.
	Save(ctx context.Context, userID primitive.ObjectID, input PlanInput) (*domain.RecoveryPlan, error)

	// GenerateAndPersist composes Generate and Save. When the user already
	// has a plan, the caller must pass confirmOverwrite=true — the server
	// refuses with ErrPlanExists otherwise. Completion state of the previous
	// plan is not carried forward.
	GenerateAndPersist(ctx context.Context, userID primitive.ObjectID, symptoms []SymptomInput, confirmOverwrite bool) (*domain.RecoveryPlan, error)

	// MarkComplete flips one exercise's completion flag and re-persists the
	// entire mutated document. Two concurrent calls that both load the same
	// snapshot will keep only the last writer's flag.
	MarkComplete(ctx context.Context, userID, exerciseID primitive.ObjectID, weekNumber int) (*domain.RecoveryPlan, error)

	// Load returns the persisted plan with exercise references dereferenced,
	// completion flags exactly as stored.
	Load(ctx context.Context, userID primitive.ObjectID) (*PlanView, error)
}

type recoveryService struct {
	generator   generation.Generator
	registry    ExerciseRegistry
	planService PlanService
	planRepo    repository.RecoveryPlanRepository
}

// NewRecoveryService creates a new RecoveryService.
func NewRecoveryService(
	generator generation.Generator,
	registry ExerciseRegistry,
	planService PlanService,
	planRepo repository.RecoveryPlanRepository,
) RecoveryService {
	return &recoveryService{
		generator:   generator,
		registry:    registry,
		planService: planService,
		planRepo:    planRepo,
	}
}

func (s *recoveryService) Generate(ctx context.Context, symptoms []SymptomInput) (*GeneratedPlan, error) {
	if len(symptoms) == 0 {
		return nil, ErrSymptomsRequired
	}

	text, err := s.generator.Generate(ctx, buildPrompt(symptoms))
	if err != nil {
		return nil, err
	}

	descriptors, err := planparser.Parse(text)
	if err != nil {
		return nil, err
	}

	// The parsed block carries no body part; descriptors are assigned one
	// round-robin from the requested symptoms, in order.
	bodyParts := make([]string, len(symptoms))
	for i, sym := range symptoms {
		bodyParts[i] = sym.BodyPart
	}

	plan := &GeneratedPlan{
		Title:       "Personalized Recovery Plan",
		Description: fmt.Sprintf("A 4-week recovery plan targeting: %s.", strings.Join(bodyParts, ", ")),
	}

	for week, slice := range partition(len(descriptors)) {
		gw := GeneratedWeek{
			WeekNumber: week + 1,
			Focus:      weekFocusLabels[week],
			Exercises:  make([]GeneratedExercise, 0, slice.end-slice.start),
		}
		for i := slice.start; i < slice.end; i++ {
			d := descriptors[i]
			gw.Exercises = append(gw.Exercises, GeneratedExercise{
				ExerciseType: d.ExerciseType,
				Description:  d.Description,
				Duration:     d.Duration,
				Difficulty:   d.Difficulty,
				Precautions:  d.Precautions,
				BodyPart:     bodyParts[i%len(bodyParts)],
				IsCompleted:  false,
			})
		}
		plan.Weeks = append(plan.Weeks, gw)
	}

	return plan, nil
}

func (s *recoveryService) Save(ctx context.Context, userID primitive.ObjectID, input PlanInput) (*domain.RecoveryPlan, error) {
	if input.Title == "" || len(input.Weeks) == 0 {
		return nil, ErrValidationFailed
	}

	// Resolve every exercise before touching the plan document. A failure
	// partway through aborts the save, but exercises already created stay
	// behind as orphaned rows: entity creation is not transactional with
	// the plan write.
	weeks := make([]domain.RecoveryWeek, 0, len(input.Weeks))
	for _, week := range input.Weeks {
		w := domain.RecoveryWeek{
			WeekNumber: week.WeekNumber,
			Focus:      week.Focus,
			Exercises:  make([]domain.ExerciseRef, 0, len(week.Exercises)),
		}
		for _, entry := range week.Exercises {
			exercise, err := s.registry.ResolveOrCreate(ctx, userID, entry.ExerciseInput)
			if err != nil {
				return nil, err
			}
			w.Exercises = append(w.Exercises, domain.ExerciseRef{
				ExerciseID:  exercise.ID,
				IsCompleted: entry.IsCompleted,
			})
		}
		weeks = append(weeks, w)
	}

	return s.planService.Upsert(ctx, userID, input.Title, input.Description, weeks)
}

func (s *recoveryService) GenerateAndPersist(ctx context.Context, userID primitive.ObjectID, symptoms []SymptomInput, confirmOverwrite bool) (*domain.RecoveryPlan, error) {
	_, err := s.planRepo.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		if !confirmOverwrite {
			return nil, ErrPlanExists
		}
	case errors.Is(err, repository.ErrNotFound):
		// no existing plan, proceed
	default:
		return nil, err
	}

	generated, err := s.Generate(ctx, symptoms)
	if err != nil {
		return nil, err
	}

	input := PlanInput{
		Title:       generated.Title,
		Description: generated.Description,
	}
	for _, week := range generated.Weeks {
		wi := WeekInput{WeekNumber: week.WeekNumber, Focus: week.Focus}
		for _, ex := range week.Exercises {
			wi.Exercises = append(wi.Exercises, ExerciseEntryInput{
				ExerciseInput: ExerciseInput{
					ExerciseType: ex.ExerciseType,
					Description:  ex.Description,
					Duration:     ex.Duration,
					Difficulty:   ex.Difficulty,
					Precautions:  ex.Precautions,
					BodyPart:     ex.BodyPart,
				},
				IsCompleted: false,
			})
		}
		input.Weeks = append(input.Weeks, wi)
	}

	return s.Save(ctx, userID, input)
}

func (s *recoveryService) MarkComplete(ctx context.Context, userID, exerciseID primitive.ObjectID, weekNumber int) (*domain.RecoveryPlan, error) {
	plan, err := s.planRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	week := plan.Week(weekNumber)
	if week == nil {
		return nil, ErrExerciseNotInPlan
	}

	found := false
	for i := range week.Exercises {
		if week.Exercises[i].ExerciseID == exerciseID {
			week.Exercises[i].IsCompleted = true
			found = true
			break
		}
	}
	if !found {
		return nil, ErrExerciseNotInPlan
	}

	// One boolean changed, but the write is the entire document.
	return s.planService.Upsert(ctx, userID, plan.Title, plan.Description, plan.Weeks)
}

func (s *recoveryService) Load(ctx context.Context, userID primitive.ObjectID) (*PlanView, error) {
	return s.planService.Get(ctx, userID)
}

// buildPrompt derives the generation prompt from the requested symptoms.
// The format instructions must stay in lockstep with planparser's labels.
func buildPrompt(symptoms []SymptomInput) string {
	var b strings.Builder
	b.WriteString("Create a recovery exercise program for a person with the following symptoms:\n")
	for _, s := range symptoms {
		fmt.Fprintf(&b, "- %s (severity %d out of 10)\n", s.BodyPart, s.Severity)
	}
	b.WriteString("\nSuggest 8 exercises. Format each exercise exactly as follows, ")
	b.WriteString("with one blank line between exercises and no other text:\n\n")
	b.WriteString("Exercise: <name>\n")
	b.WriteString("Description: <one sentence>\n")
	b.WriteString("Duration: <e.g. 10 minutes>\n")
	b.WriteString("Difficulty: <number from 1 to 5>\n")
	b.WriteString("Precautions: <one sentence>\n")
	return b.String()
}

type span struct{ start, end int }

// partition slices n items into four contiguous spans: floor(n/4) each for
// weeks 1-3 and the remainder, n-3*floor(n/4), for week 4.
func partition(n int) [4]span {
	quarter := n / 4
	var out [4]span
	start := 0
	for week := 0; week < 3; week++ {
		out[week] = span{start: start, end: start + quarter}
		start += quarter
	}
	out[3] = span{start: start, end: n}
	return out
}
