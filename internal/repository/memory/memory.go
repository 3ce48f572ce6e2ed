// Package memory implements the repository interfaces in memory, for tests.
package memory

import (
	"context"
	"sync"
	"time"

	"healthmate/recovery-app/internal/domain"
	"healthmate/recovery-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DB implements every repository interface against in-process maps. Values
// are copied on the way in and out so callers cannot alias stored documents,
// matching the behavior of a real driver round-trip.
type DB struct {
	mu          sync.Mutex
	users       []domain.User
	symptoms    []domain.Symptom
	exercises   []domain.Exercise
	plans       []domain.RecoveryPlan
	attachments []domain.Attachment
	messages    []domain.ChatMessage
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{}
}

// DB itself serves as the user repository; the other interfaces are exposed
// through per-collection views below because method names collide.
var _ repository.UserRepository = (*DB)(nil)

// --- UserRepository ---

func (db *DB) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	db.users = append(db.users, *user)
	return user.ID, nil
}

func (db *DB) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.users {
		if db.users[i].Email == email {
			u := db.users[i]
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (db *DB) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.users {
		if db.users[i].ID == id {
			u := db.users[i]
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

// --- SymptomRepository ---

// SymptomRepo exposes the symptom slice of the in-memory DB. A separate type
// is needed because method names collide with the user repository.
type SymptomRepo struct{ db *DB }

// Symptoms returns the symptom repository view of the DB.
func (db *DB) Symptoms() *SymptomRepo { return &SymptomRepo{db: db} }

var _ repository.SymptomRepository = (*SymptomRepo)(nil)

func (r *SymptomRepo) Create(ctx context.Context, symptom *domain.Symptom) (primitive.ObjectID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	symptom.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	symptom.CreatedAt = now
	symptom.UpdatedAt = now
	r.db.symptoms = append(r.db.symptoms, cloneSymptom(*symptom))
	return symptom.ID, nil
}

func (r *SymptomRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Symptom, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.symptoms {
		if r.db.symptoms[i].ID == id {
			s := cloneSymptom(r.db.symptoms[i])
			return &s, nil
		}
	}
	return nil, repository.ErrNotFound
}

// GetByUserID returns the user's symptoms in insertion order.
func (r *SymptomRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Symptom, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var out []domain.Symptom
	for i := range r.db.symptoms {
		if r.db.symptoms[i].UserID == userID {
			out = append(out, cloneSymptom(r.db.symptoms[i]))
		}
	}
	return out, nil
}

func (r *SymptomRepo) Update(ctx context.Context, symptom *domain.Symptom) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.symptoms {
		if r.db.symptoms[i].ID == symptom.ID {
			r.db.symptoms[i].BodyPart = symptom.BodyPart
			r.db.symptoms[i].Notes = symptom.Notes
			r.db.symptoms[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *SymptomRepo) AppendSeverity(ctx context.Context, id primitive.ObjectID, entry domain.SeverityEntry) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.symptoms {
		if r.db.symptoms[i].ID == id {
			r.db.symptoms[i].Severities = append(r.db.symptoms[i].Severities, entry)
			r.db.symptoms[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *SymptomRepo) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.symptoms {
		if r.db.symptoms[i].ID == id && r.db.symptoms[i].UserID == userID {
			r.db.symptoms = append(r.db.symptoms[:i], r.db.symptoms[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// --- ExerciseRepository ---

type ExerciseRepo struct{ db *DB }

// Exercises returns the exercise repository view of the DB.
func (db *DB) Exercises() *ExerciseRepo { return &ExerciseRepo{db: db} }

var _ repository.ExerciseRepository = (*ExerciseRepo)(nil)

func (r *ExerciseRepo) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	r.db.exercises = append(r.db.exercises, *exercise)
	return exercise.ID, nil
}

func (r *ExerciseRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.exercises {
		if r.db.exercises[i].ID == id {
			e := r.db.exercises[i]
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *ExerciseRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Exercise, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var out []domain.Exercise
	for i := range r.db.exercises {
		if r.db.exercises[i].UserID == userID {
			out = append(out, r.db.exercises[i])
		}
	}
	return out, nil
}

func (r *ExerciseRepo) FindByDedupKey(ctx context.Context, userID primitive.ObjectID, exerciseType, bodyPart string) (*domain.Exercise, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.exercises {
		e := &r.db.exercises[i]
		if e.UserID == userID && e.ExerciseType == exerciseType && e.BodyPart == bodyPart {
			out := *e
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

// --- RecoveryPlanRepository ---

type PlanRepo struct{ db *DB }

// Plans returns the recovery plan repository view of the DB.
func (db *DB) Plans() *PlanRepo { return &PlanRepo{db: db} }

var _ repository.RecoveryPlanRepository = (*PlanRepo)(nil)

func (r *PlanRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.RecoveryPlan, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.plans {
		if r.db.plans[i].UserID == userID {
			p := clonePlan(r.db.plans[i])
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

// Upsert mirrors the Mongo implementation: find the user's plan, replace the
// whole document if present, insert otherwise. No versioning, so a later
// writer's document fully overwrites an earlier one.
func (r *PlanRepo) Upsert(ctx context.Context, plan *domain.RecoveryPlan) (*domain.RecoveryPlan, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.plans {
		if r.db.plans[i].UserID == plan.UserID {
			plan.ID = r.db.plans[i].ID
			r.db.plans[i] = clonePlan(*plan)
			return plan, nil
		}
	}

	plan.ID = primitive.NewObjectID()
	r.db.plans = append(r.db.plans, clonePlan(*plan))
	return plan, nil
}

func (r *PlanRepo) Delete(ctx context.Context, userID primitive.ObjectID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for i := range r.db.plans {
		if r.db.plans[i].UserID == userID {
			r.db.plans = append(r.db.plans[:i], r.db.plans[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

// PlanCount reports how many plan documents exist for a user. Test helper
// for the singleton-plan property.
func (db *DB) PlanCount(userID primitive.ObjectID) int {
	db.mu.Lock()
	defer db.mu.Unlock()

	n := 0
	for i := range db.plans {
		if db.plans[i].UserID == userID {
			n++
		}
	}
	return n
}

// ExerciseCount reports how many exercise rows exist for a user.
func (db *DB) ExerciseCount(userID primitive.ObjectID) int {
	db.mu.Lock()
	defer db.mu.Unlock()

	n := 0
	for i := range db.exercises {
		if db.exercises[i].UserID == userID {
			n++
		}
	}
	return n
}

// --- AttachmentRepository ---

type AttachmentRepo struct{ db *DB }

// Attachments returns the attachment repository view of the DB.
func (db *DB) Attachments() *AttachmentRepo { return &AttachmentRepo{db: db} }

var _ repository.AttachmentRepository = (*AttachmentRepo)(nil)

func (r *AttachmentRepo) Create(ctx context.Context, attachment *domain.Attachment) (primitive.ObjectID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	attachment.ID = primitive.NewObjectID()
	if attachment.UploadedAt.IsZero() {
		attachment.UploadedAt = time.Now().UTC()
	}
	r.db.attachments = append(r.db.attachments, *attachment)
	return attachment.ID, nil
}

func (r *AttachmentRepo) GetBySymptomID(ctx context.Context, symptomID primitive.ObjectID) ([]domain.Attachment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var out []domain.Attachment
	for i := range r.db.attachments {
		if r.db.attachments[i].SymptomID == symptomID {
			out = append(out, r.db.attachments[i])
		}
	}
	return out, nil
}

// --- ChatRepository ---

type ChatRepo struct{ db *DB }

// Chat returns the chat repository view of the DB.
func (db *DB) Chat() *ChatRepo { return &ChatRepo{db: db} }

var _ repository.ChatRepository = (*ChatRepo)(nil)

func (r *ChatRepo) Create(ctx context.Context, message *domain.ChatMessage) (primitive.ObjectID, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	message.ID = primitive.NewObjectID()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}
	r.db.messages = append(r.db.messages, *message)
	return message.ID, nil
}

func (r *ChatRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.ChatMessage, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var out []domain.ChatMessage
	for i := range r.db.messages {
		if r.db.messages[i].UserID == userID {
			out = append(out, r.db.messages[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- clone helpers ---

func cloneSymptom(s domain.Symptom) domain.Symptom {
	out := s
	out.Severities = append([]domain.SeverityEntry(nil), s.Severities...)
	return out
}

func clonePlan(p domain.RecoveryPlan) domain.RecoveryPlan {
	out := p
	out.Weeks = make([]domain.RecoveryWeek, len(p.Weeks))
	for i, w := range p.Weeks {
		cw := w
		cw.Exercises = append([]domain.ExerciseRef(nil), w.Exercises...)
		out.Weeks[i] = cw
	}
	return out
}
