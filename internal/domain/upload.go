package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Upload stores metadata about an image or video pushed to object storage
// by the admin portal. The actual file resides in S3. Folder groups objects
// by use, e.g. "activities" or "tutorials/exercises"; ObjectKey is unique in
// the bucket while FileName is the name the client sent.
type Upload struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Folder      string             `bson:"folder" json:"folder"`
	ObjectKey   string             `bson:"objectKey" json:"objectKey"`
	FileName    string             `bson:"fileName" json:"fileName"`
	ContentType string             `bson:"contentType" json:"contentType"`
	Size        int64              `bson:"size" json:"size"`
	URL         string             `bson:"url" json:"url"` // Durable download URL
	UploaderID  primitive.ObjectID `bson:"uploaderId" json:"uploaderId"`
	UploadedAt  time.Time          `bson:"uploadedAt" json:"uploadedAt"`
}

// RevokedToken marks a signed-out JWT id until it would have expired anyway.
type RevokedToken struct {
	JTI       string    `bson:"_id"`
	UserID    string    `bson:"userId"`
	ExpiresAt time.Time `bson:"expiresAt"`
}
