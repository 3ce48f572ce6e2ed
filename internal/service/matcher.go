package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"healthmate/recovery-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrNoSymptomsFound = errors.New("no symptoms found: log at least one symptom before saving a recovery plan")
	// ErrInvalidBodyPartPattern wraps a regexp compilation failure from a
	// body-part label containing pattern metacharacters.
	ErrInvalidBodyPartPattern = errors.New("invalid body part pattern")
)

// SymptomMatcher resolves a free-text body-part label to one of the user's
// existing symptoms.
type SymptomMatcher interface {
	Resolve(ctx context.Context, userID primitive.ObjectID, bodyPartLabel string) (primitive.ObjectID, error)
}

type symptomMatcher struct {
	symptomRepo repository.SymptomRepository
}

// NewSymptomMatcher creates a new SymptomMatcher.
func NewSymptomMatcher(symptomRepo repository.SymptomRepository) SymptomMatcher {
	return &symptomMatcher{symptomRepo: symptomRepo}
}

// Resolve finds a symptom whose stored body part matches the label by
// case-insensitive substring match, falling back to any one of the user's
// symptoms when nothing matches. The label is compiled into the pattern
// unescaped, so a label containing metacharacters can fail with
// ErrInvalidBodyPartPattern or match more broadly than intended. Both the
// fuzzy match and the fallback-to-any behavior are intentional: a generated
// exercise always links to some symptom as long as the user has one, even
// when the body parts are unrelated.
func (m *symptomMatcher) Resolve(ctx context.Context, userID primitive.ObjectID, bodyPartLabel string) (primitive.ObjectID, error) {
	symptoms, err := m.symptomRepo.GetByUserID(ctx, userID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if len(symptoms) == 0 {
		return primitive.NilObjectID, ErrNoSymptomsFound
	}

	pattern, err := regexp.Compile("(?i)" + bodyPartLabel)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %v", ErrInvalidBodyPartPattern, err)
	}

	for i := range symptoms {
		if pattern.MatchString(symptoms[i].BodyPart) {
			return symptoms[i].ID, nil
		}
	}

	// No match: link to whichever symptom the store returned first.
	return symptoms[0].ID, nil
}
