package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CheckInDateLayout is the calendar-day key of a check-in.
const CheckInDateLayout = "2006-01-02"

// CheckIn records one gym visit. At most one exists per (UserID, Date).
type CheckIn struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	Date         string             `bson:"date" json:"date"` // CheckInDateLayout, gym time zone
	Code         string             `bson:"code" json:"-"`
	CreditsAfter int                `bson:"creditsAfter" json:"creditsAfter"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
