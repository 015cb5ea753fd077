package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session is a scheduled, bookable time slot of an Activity.
type Session struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	ActivityID     primitive.ObjectID   `bson:"activityId" json:"activityId"`
	ActivityName   string               `bson:"activityName" json:"activityName"` // Denormalized for display
	Title          string               `bson:"title,omitempty" json:"title,omitempty"`
	Description    string               `bson:"description,omitempty" json:"description,omitempty"`
	StartTime      time.Time            `bson:"startTime" json:"startTime"`
	EndTime        time.Time            `bson:"endTime" json:"endTime"`
	Capacity       int                  `bson:"capacity" json:"capacity"`
	BookedCount    int                  `bson:"bookedCount" json:"bookedCount"`
	ParticipantIDs []primitive.ObjectID `bson:"participantIds" json:"participantIds"`
	Location       string               `bson:"location,omitempty" json:"location,omitempty"`
	InstructorName string               `bson:"instructorName,omitempty" json:"instructorName,omitempty"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// HasParticipant reports whether userID already booked this session.
func (s *Session) HasParticipant(userID primitive.ObjectID) bool {
	for _, id := range s.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (s *Session) IsFull() bool {
	return s.BookedCount >= s.Capacity
}

// SpotsLeft never goes negative, even for legacy over-booked documents.
func (s *Session) SpotsLeft() int {
	if s.BookedCount >= s.Capacity {
		return 0
	}
	return s.Capacity - s.BookedCount
}
