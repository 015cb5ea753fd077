package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Section selects which kind of sub-documents a Tutorial carries.
type Section string

const (
	SectionMusculation Section = "musculation" // carries Exercises
	SectionDiete       Section = "diete"       // carries DietPlans
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Tutorial is long-form content with embedded exercises or diet plans.
// Version is bumped on every write and used for optimistic concurrency.
type Tutorial struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Content     string             `bson:"content,omitempty" json:"content,omitempty"` // Rich text (HTML)
	Section     Section            `bson:"section" json:"section"`
	ImageURL    string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	VideoURL    string             `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	AuthorID    primitive.ObjectID `bson:"authorId" json:"authorId"`
	Exercises   []Exercise         `bson:"exercises" json:"exercises"`
	DietPlans   []DietPlan         `bson:"dietPlans" json:"dietPlans"`
	Version     int64              `bson:"version" json:"version"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Exercise is a sub-document of a musculation Tutorial.
type Exercise struct {
	ID          primitive.ObjectID `bson:"id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	MuscleGroup string             `bson:"muscleGroup,omitempty" json:"muscleGroup,omitempty"` // e.g., "Chest", "Legs"
	Sets        int                `bson:"sets,omitempty" json:"sets,omitempty"`
	Reps        string             `bson:"reps,omitempty" json:"reps,omitempty"` // e.g., "8-12", "AMRAP"
	RestSeconds int                `bson:"restSeconds,omitempty" json:"restSeconds,omitempty"`
	Difficulty  Difficulty         `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	ImageURL    string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	VideoURL    string             `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	Sequence    int                `bson:"sequence" json:"sequence"`
}

// DietPlan is a sub-document of a diete Tutorial.
type DietPlan struct {
	ID            primitive.ObjectID `bson:"id" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Goal          string             `bson:"goal,omitempty" json:"goal,omitempty"` // e.g., "weight loss"
	DailyCalories int                `bson:"dailyCalories,omitempty" json:"dailyCalories,omitempty"`
	Meals         []Meal             `bson:"meals" json:"meals"`
}

type Meal struct {
	Name  string `bson:"name" json:"name"`
	Time  string `bson:"time,omitempty" json:"time,omitempty"` // HH:MM
	Foods []Food `bson:"foods" json:"foods"`
}

type Food struct {
	Name     string  `bson:"name" json:"name"`
	Quantity float64 `bson:"quantity,omitempty" json:"quantity,omitempty"` // grams
	Calories int     `bson:"calories,omitempty" json:"calories,omitempty"`
	Protein  float64 `bson:"protein,omitempty" json:"protein,omitempty"`
	Carbs    float64 `bson:"carbs,omitempty" json:"carbs,omitempty"`
	Fat      float64 `bson:"fat,omitempty" json:"fat,omitempty"`
}

// ExerciseIndex returns the slice position of the exercise or -1.
func (t *Tutorial) ExerciseIndex(id primitive.ObjectID) int {
	for i := range t.Exercises {
		if t.Exercises[i].ID == id {
			return i
		}
	}
	return -1
}

// DietPlanIndex returns the slice position of the diet plan or -1.
func (t *Tutorial) DietPlanIndex(id primitive.ObjectID) int {
	for i := range t.DietPlans {
		if t.DietPlans[i].ID == id {
			return i
		}
	}
	return -1
}

// HasSectionContent reports whether the tutorial holds sub-documents for its current section.
func (t *Tutorial) HasSectionContent() bool {
	switch t.Section {
	case SectionMusculation:
		return len(t.Exercises) > 0
	case SectionDiete:
		return len(t.DietPlans) > 0
	}
	return false
}
