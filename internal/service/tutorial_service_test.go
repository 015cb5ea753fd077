package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/validation"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func createTutorial(t *testing.T, svc TutorialService, section domain.Section) *domain.Tutorial {
	t.Helper()
	tutorial, err := svc.CreateTutorial(context.Background(), Actor{ID: primitive.NewObjectID(), Role: domain.RoleTrainer}, TutorialInput{
		Title:   "Getting started",
		Section: section,
	})
	require.NoError(t, err)
	return tutorial
}

func TestTutorial_ExerciseLifecycle(t *testing.T) {
	f := newFixture()
	svc := NewTutorialService(f.tutorials)
	ctx := context.Background()
	tutorial := createTutorial(t, svc, domain.SectionMusculation)
	require.Equal(t, int64(1), tutorial.Version)

	tutorial, err := svc.AddExercise(ctx, tutorial.ID, ExerciseInput{Version: 1, Name: "Squat", Sets: 5, Reps: "5"})
	require.NoError(t, err)
	tutorial, err = svc.AddExercise(ctx, tutorial.ID, ExerciseInput{Version: 2, Name: "Warm-up", Sequence: 0})
	require.NoError(t, err)
	require.Len(t, tutorial.Exercises, 2)
	assert.Equal(t, 1, tutorial.Exercises[0].Sequence)
	assert.Equal(t, 2, tutorial.Exercises[1].Sequence)
	assert.Equal(t, int64(3), tutorial.Version)

	squat := tutorial.Exercises[0]
	tutorial, err = svc.UpdateExercise(ctx, tutorial.ID, squat.ID, ExerciseInput{Version: 3, Name: "Back squat", Sequence: 9})
	require.NoError(t, err)
	assert.Equal(t, "Warm-up", tutorial.Exercises[0].Name)
	assert.Equal(t, "Back squat", tutorial.Exercises[1].Name)
	assert.Equal(t, squat.ID, tutorial.Exercises[1].ID)

	tutorial, err = svc.RemoveExercise(ctx, tutorial.ID, squat.ID, 4)
	require.NoError(t, err)
	require.Len(t, tutorial.Exercises, 1)
	assert.Equal(t, "Warm-up", tutorial.Exercises[0].Name)

	_, err = svc.RemoveExercise(ctx, tutorial.ID, squat.ID, 5)
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}

func TestTutorial_StaleVersion(t *testing.T) {
	f := newFixture()
	svc := NewTutorialService(f.tutorials)
	ctx := context.Background()
	tutorial := createTutorial(t, svc, domain.SectionMusculation)

	_, err := svc.AddExercise(ctx, tutorial.ID, ExerciseInput{Version: 1, Name: "Deadlift"})
	require.NoError(t, err)

	// A second editor still holds version 1.
	_, err = svc.AddExercise(ctx, tutorial.ID, ExerciseInput{Version: 1, Name: "Row"})
	assert.ErrorIs(t, err, ErrTutorialConflict)

	_, err = svc.UpdateTutorial(ctx, tutorial.ID, TutorialUpdateInput{
		TutorialInput: TutorialInput{Title: "Renamed", Section: domain.SectionMusculation},
		Version:       1,
	})
	assert.ErrorIs(t, err, ErrTutorialConflict)

	current, err := svc.GetTutorial(ctx, tutorial.ID)
	require.NoError(t, err)
	require.Len(t, current.Exercises, 1)
	assert.Equal(t, "Getting started", current.Title)
}

func TestTutorial_WrongSection(t *testing.T) {
	f := newFixture()
	svc := NewTutorialService(f.tutorials)
	ctx := context.Background()
	diet := createTutorial(t, svc, domain.SectionDiete)
	muscle := createTutorial(t, svc, domain.SectionMusculation)

	_, err := svc.AddExercise(ctx, diet.ID, ExerciseInput{Version: 1, Name: "Squat"})
	assert.ErrorIs(t, err, ErrWrongSection)

	_, err = svc.AddDietPlan(ctx, muscle.ID, DietPlanInput{Version: 1, Name: "Cut"})
	assert.ErrorIs(t, err, ErrWrongSection)
}

func TestTutorial_DietPlans(t *testing.T) {
	f := newFixture()
	svc := NewTutorialService(f.tutorials)
	ctx := context.Background()
	tutorial := createTutorial(t, svc, domain.SectionDiete)

	tutorial, err := svc.AddDietPlan(ctx, tutorial.ID, DietPlanInput{
		Version:       1,
		Name:          "Lean bulk",
		DailyCalories: 2800,
		Meals: []MealInput{{
			Name:  "Breakfast",
			Time:  "07:30",
			Foods: []FoodInput{{Name: "Oats", Quantity: 80, Calories: 300}},
		}},
	})
	require.NoError(t, err)
	require.Len(t, tutorial.DietPlans, 1)
	plan := tutorial.DietPlans[0]
	require.Len(t, plan.Meals, 1)
	assert.Equal(t, "Oats", plan.Meals[0].Foods[0].Name)

	tutorial, err = svc.UpdateDietPlan(ctx, tutorial.ID, plan.ID, DietPlanInput{Version: 2, Name: "Maintenance"})
	require.NoError(t, err)
	assert.Equal(t, "Maintenance", tutorial.DietPlans[0].Name)
	assert.Equal(t, plan.ID, tutorial.DietPlans[0].ID)

	_, err = svc.UpdateDietPlan(ctx, tutorial.ID, primitive.NewObjectID(), DietPlanInput{Version: 3, Name: "Ghost"})
	assert.ErrorIs(t, err, ErrDietPlanNotFound)

	tutorial, err = svc.RemoveDietPlan(ctx, tutorial.ID, plan.ID, 3)
	require.NoError(t, err)
	assert.Empty(t, tutorial.DietPlans)
}

func TestTutorial_DietPlanMealTimeValidated(t *testing.T) {
	f := newFixture()
	svc := NewTutorialService(f.tutorials)
	tutorial := createTutorial(t, svc, domain.SectionDiete)

	_, err := svc.AddDietPlan(context.Background(), tutorial.ID, DietPlanInput{
		Version: 1,
		Name:    "Plan",
		Meals:   []MealInput{{Name: "Lunch", Time: "noon"}},
	})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "meals[0].time")
}

func TestTutorial_SectionChangeNeedsEmptyContent(t *testing.T) {
	f := newFixture()
	svc := NewTutorialService(f.tutorials)
	ctx := context.Background()
	tutorial := createTutorial(t, svc, domain.SectionMusculation)

	// Empty tutorials may switch section.
	tutorial, err := svc.UpdateTutorial(ctx, tutorial.ID, TutorialUpdateInput{
		TutorialInput: TutorialInput{Title: "Nutrition 101", Section: domain.SectionDiete},
		Version:       1,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SectionDiete, tutorial.Section)

	tutorial, err = svc.AddDietPlan(ctx, tutorial.ID, DietPlanInput{Version: 2, Name: "Cut"})
	require.NoError(t, err)

	_, err = svc.UpdateTutorial(ctx, tutorial.ID, TutorialUpdateInput{
		TutorialInput: TutorialInput{Title: "Nutrition 101", Section: domain.SectionMusculation},
		Version:       3,
	})
	assert.ErrorIs(t, err, ErrSectionHasContent)
}

func TestTutorial_UpdateValidation(t *testing.T) {
	f := newFixture()
	svc := NewTutorialService(f.tutorials)
	tutorial := createTutorial(t, svc, domain.SectionMusculation)

	_, err := svc.UpdateTutorial(context.Background(), tutorial.ID, TutorialUpdateInput{
		TutorialInput: TutorialInput{Title: "", Section: "cardio"},
		Version:       1,
	})
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "section")

	_, err = svc.UpdateTutorial(context.Background(), tutorial.ID, TutorialUpdateInput{
		TutorialInput: TutorialInput{Title: "Ok", Section: domain.SectionMusculation},
	})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "version")
}
