package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseRef links a plan week to a durable Exercise. IsCompleted lives
// here, on the (plan, week, exercise) tuple, not on the Exercise itself:
// the same Exercise can appear in several weeks with independent state.
type ExerciseRef struct {
	ExerciseID  primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	IsCompleted bool               `bson:"isCompleted" json:"isCompleted"`
}

// RecoveryWeek is one week of a plan: a focus label plus an ordered list
// of exercise references.
type RecoveryWeek struct {
	WeekNumber int           `bson:"weekNumber" json:"weekNumber"` // 1-based
	Focus      string        `bson:"focus" json:"focus"`           // e.g., "Gentle Mobility"
	Exercises  []ExerciseRef `bson:"exercises" json:"exercises"`
}

// RecoveryPlan is the singleton-per-user plan aggregate. "Singleton" is a
// convention held up by find-else-insert in the plan repository, not by a
// unique index; saves replace the whole document including CreatedAt.
type RecoveryPlan struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Weeks       []RecoveryWeek     `bson:"weeks" json:"weeks"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

// Week returns the week with the given number, or nil.
func (p *RecoveryPlan) Week(weekNumber int) *RecoveryWeek {
	for i := range p.Weeks {
		if p.Weeks[i].WeekNumber == weekNumber {
			return &p.Weeks[i]
		}
	}
	return nil
}
