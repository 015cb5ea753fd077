package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityType categorises a workout.
type ActivityType string

const (
	ActivityCardio      ActivityType = "cardio"
	ActivityMusculation ActivityType = "musculation"
	ActivityYoga        ActivityType = "yoga"
	ActivityPilates     ActivityType = "pilates"
	ActivityCrossfit    ActivityType = "crossfit"
	ActivityBoxing      ActivityType = "boxing"
	ActivityDance       ActivityType = "dance"
	ActivityAquatic     ActivityType = "aquatic"
	ActivityOther       ActivityType = "other"
)

// ActivityTypes lists every accepted activity type.
var ActivityTypes = []ActivityType{
	ActivityCardio, ActivityMusculation, ActivityYoga, ActivityPilates,
	ActivityCrossfit, ActivityBoxing, ActivityDance, ActivityAquatic, ActivityOther,
}

// Activity is a bookable workout category. Sessions reference it by ID and
// pay its CreditValue on join.
type Activity struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Type        ActivityType       `bson:"type" json:"type"`
	CreditValue int                `bson:"creditValue" json:"creditValue"`
	ImageURL    string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
