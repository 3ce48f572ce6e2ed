package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SeverityEntry is one point in a symptom's severity history.
type SeverityEntry struct {
	Value int       `bson:"value" json:"value"` // 0 (none) .. 10 (worst)
	Date  time.Time `bson:"date" json:"date"`
	Notes string    `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Symptom represents a body-part complaint tracked by a user.
// SymptomMatcher reads these rows when linking generated exercises,
// so BodyPart is the field recovery-plan generation keys off.
type Symptom struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	BodyPart   string             `bson:"bodyPart" json:"bodyPart"` // e.g., "Neck", "Lower Back"
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Severities []SeverityEntry    `bson:"severities,omitempty" json:"severities,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// LatestSeverity returns the most recently appended severity entry.
func (s *Symptom) LatestSeverity() (SeverityEntry, bool) {
	if len(s.Severities) == 0 {
		return SeverityEntry{}, false
	}
	return s.Severities[len(s.Severities)-1], true
}
