package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attachment stores metadata about a photo a user attached to a symptom
// (e.g., a picture of the affected area). The actual file resides in S3.
type Attachment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SymptomID   primitive.ObjectID `bson:"symptomId" json:"symptomId"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	S3ObjectKey string             `bson:"s3ObjectKey" json:"-"` // internal use only
	FileName    string             `bson:"fileName" json:"fileName"`
	ContentType string             `bson:"contentType" json:"contentType"` // e.g., "image/jpeg"
	Size        int64              `bson:"size" json:"size"`
	UploadedAt  time.Time          `bson:"uploadedAt" json:"uploadedAt"`
}
