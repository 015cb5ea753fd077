package service

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"alcyxob/gym-app/internal/validation"
	"context"
	"errors"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrTutorialNotFound  = errors.New("tutorial not found")
	ErrExerciseNotFound  = errors.New("exercise not found")
	ErrDietPlanNotFound  = errors.New("diet plan not found")
	ErrTutorialConflict  = errors.New("tutorial was modified by someone else; reload and retry")
	ErrWrongSection      = errors.New("operation not allowed for this tutorial section")
	ErrSectionHasContent = errors.New("remove the section's exercises or diet plans before changing section")
)

type TutorialInput struct {
	Title       string         `json:"title" validate:"required,max=200"`
	Description string         `json:"description" validate:"max=2000"`
	Content     string         `json:"content" validate:"max=100000"`
	Section     domain.Section `json:"section" validate:"required,section"`
	ImageURL    string         `json:"imageUrl" validate:"omitempty,url"`
	VideoURL    string         `json:"videoUrl" validate:"omitempty,url"`
}

// TutorialUpdateInput carries the version the editor loaded.
type TutorialUpdateInput struct {
	TutorialInput
	Version int64 `json:"version"`
}

type ExerciseInput struct {
	Version     int64             `json:"version" validate:"gte=1"`
	Name        string            `json:"name" validate:"required,max=100"`
	Description string            `json:"description" validate:"max=2000"`
	MuscleGroup string            `json:"muscleGroup" validate:"max=50"`
	Sets        int               `json:"sets" validate:"gte=0,lte=100"`
	Reps        string            `json:"reps" validate:"max=20"`
	RestSeconds int               `json:"restSeconds" validate:"gte=0,lte=3600"`
	Difficulty  domain.Difficulty `json:"difficulty" validate:"difficulty"`
	ImageURL    string            `json:"imageUrl" validate:"omitempty,url"`
	VideoURL    string            `json:"videoUrl" validate:"omitempty,url"`
	// Sequence orders exercises; zero appends at the end.
	Sequence int `json:"sequence" validate:"gte=0"`
}

type FoodInput struct {
	Name     string  `json:"name" validate:"required,max=100"`
	Quantity float64 `json:"quantity" validate:"gte=0"`
	Calories int     `json:"calories" validate:"gte=0"`
	Protein  float64 `json:"protein" validate:"gte=0"`
	Carbs    float64 `json:"carbs" validate:"gte=0"`
	Fat      float64 `json:"fat" validate:"gte=0"`
}

type MealInput struct {
	Name  string      `json:"name" validate:"required,max=100"`
	Time  string      `json:"time" validate:"omitempty,datetime=15:04"`
	Foods []FoodInput `json:"foods" validate:"dive"`
}

type DietPlanInput struct {
	Version       int64       `json:"version" validate:"gte=1"`
	Name          string      `json:"name" validate:"required,max=100"`
	Description   string      `json:"description" validate:"max=2000"`
	Goal          string      `json:"goal" validate:"max=100"`
	DailyCalories int         `json:"dailyCalories" validate:"gte=0,lte=20000"`
	Meals         []MealInput `json:"meals" validate:"dive"`
}

type TutorialService interface {
	CreateTutorial(ctx context.Context, actor Actor, input TutorialInput) (*domain.Tutorial, error)
	GetTutorial(ctx context.Context, id primitive.ObjectID) (*domain.Tutorial, error)
	ListTutorials(ctx context.Context, section domain.Section, page repository.PageRequest) (*repository.Page[domain.Tutorial], error)
	UpdateTutorial(ctx context.Context, id primitive.ObjectID, input TutorialUpdateInput) (*domain.Tutorial, error)
	DeleteTutorial(ctx context.Context, id primitive.ObjectID) error

	AddExercise(ctx context.Context, tutorialID primitive.ObjectID, input ExerciseInput) (*domain.Tutorial, error)
	UpdateExercise(ctx context.Context, tutorialID, exerciseID primitive.ObjectID, input ExerciseInput) (*domain.Tutorial, error)
	RemoveExercise(ctx context.Context, tutorialID, exerciseID primitive.ObjectID, version int64) (*domain.Tutorial, error)

	AddDietPlan(ctx context.Context, tutorialID primitive.ObjectID, input DietPlanInput) (*domain.Tutorial, error)
	UpdateDietPlan(ctx context.Context, tutorialID, planID primitive.ObjectID, input DietPlanInput) (*domain.Tutorial, error)
	RemoveDietPlan(ctx context.Context, tutorialID, planID primitive.ObjectID, version int64) (*domain.Tutorial, error)
}

// tutorialService edits embedded arrays by read-modify-write guarded by the
// tutorial version, so a concurrent edit surfaces as ErrTutorialConflict.
type tutorialService struct {
	tutorialRepo repository.TutorialRepository
}

func NewTutorialService(tutorialRepo repository.TutorialRepository) TutorialService {
	return &tutorialService{tutorialRepo: tutorialRepo}
}

func (s *tutorialService) CreateTutorial(ctx context.Context, actor Actor, input TutorialInput) (*domain.Tutorial, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	tutorial := &domain.Tutorial{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Content:     input.Content,
		Section:     input.Section,
		ImageURL:    input.ImageURL,
		VideoURL:    input.VideoURL,
		AuthorID:    actor.ID,
	}
	id, err := s.tutorialRepo.Create(ctx, tutorial)
	if err != nil {
		return nil, err
	}
	return s.GetTutorial(ctx, id)
}

func (s *tutorialService) GetTutorial(ctx context.Context, id primitive.ObjectID) (*domain.Tutorial, error) {
	tutorial, err := s.tutorialRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrTutorialNotFound)
	}
	return tutorial, nil
}

func (s *tutorialService) ListTutorials(ctx context.Context, section domain.Section, page repository.PageRequest) (*repository.Page[domain.Tutorial], error) {
	if err := validation.Var("section", string(section), "section"); err != nil {
		return nil, err
	}
	result, err := s.tutorialRepo.List(ctx, repository.TutorialFilter{Section: section}, page)
	if err != nil {
		return nil, listError(err)
	}
	return result, nil
}

func (s *tutorialService) UpdateTutorial(ctx context.Context, id primitive.ObjectID, input TutorialUpdateInput) (*domain.Tutorial, error) {
	// Validated in two steps so embedded field errors keep their JSON names.
	if err := validation.Struct(input.TutorialInput); err != nil {
		return nil, err
	}
	if err := validation.Var("version", input.Version, "gte=1"); err != nil {
		return nil, err
	}
	current, err := s.loadVersion(ctx, id, input.Version)
	if err != nil {
		return nil, err
	}
	// Switching section would orphan the embedded content of the old one.
	if current.Section != input.Section && current.HasSectionContent() {
		return nil, ErrSectionHasContent
	}

	current.Title = strings.TrimSpace(input.Title)
	current.Description = input.Description
	current.Content = input.Content
	current.Section = input.Section
	current.ImageURL = input.ImageURL
	current.VideoURL = input.VideoURL
	if err := s.tutorialRepo.Update(ctx, current, input.Version); err != nil {
		return nil, writeError(err)
	}
	return s.GetTutorial(ctx, id)
}

func (s *tutorialService) DeleteTutorial(ctx context.Context, id primitive.ObjectID) error {
	if err := s.tutorialRepo.Delete(ctx, id); err != nil {
		return notFound(err, ErrTutorialNotFound)
	}
	return nil
}

// --- Exercises ---

func (s *tutorialService) AddExercise(ctx context.Context, tutorialID primitive.ObjectID, input ExerciseInput) (*domain.Tutorial, error) {
	tutorial, err := s.prepareExerciseEdit(ctx, tutorialID, input)
	if err != nil {
		return nil, err
	}
	exercise := exerciseFromInput(primitive.NewObjectID(), input)
	if exercise.Sequence == 0 {
		exercise.Sequence = nextSequence(tutorial.Exercises)
	}
	return s.saveExercises(ctx, tutorial, input.Version, append(tutorial.Exercises, exercise))
}

func (s *tutorialService) UpdateExercise(ctx context.Context, tutorialID, exerciseID primitive.ObjectID, input ExerciseInput) (*domain.Tutorial, error) {
	tutorial, err := s.prepareExerciseEdit(ctx, tutorialID, input)
	if err != nil {
		return nil, err
	}
	i := tutorial.ExerciseIndex(exerciseID)
	if i < 0 {
		return nil, ErrExerciseNotFound
	}
	exercise := exerciseFromInput(exerciseID, input)
	if exercise.Sequence == 0 {
		exercise.Sequence = tutorial.Exercises[i].Sequence
	}
	tutorial.Exercises[i] = exercise
	return s.saveExercises(ctx, tutorial, input.Version, tutorial.Exercises)
}

func (s *tutorialService) RemoveExercise(ctx context.Context, tutorialID, exerciseID primitive.ObjectID, version int64) (*domain.Tutorial, error) {
	tutorial, err := s.loadVersion(ctx, tutorialID, version)
	if err != nil {
		return nil, err
	}
	i := tutorial.ExerciseIndex(exerciseID)
	if i < 0 {
		return nil, ErrExerciseNotFound
	}
	remaining := append(tutorial.Exercises[:i:i], tutorial.Exercises[i+1:]...)
	return s.saveExercises(ctx, tutorial, version, remaining)
}

func (s *tutorialService) prepareExerciseEdit(ctx context.Context, tutorialID primitive.ObjectID, input ExerciseInput) (*domain.Tutorial, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	tutorial, err := s.loadVersion(ctx, tutorialID, input.Version)
	if err != nil {
		return nil, err
	}
	if tutorial.Section != domain.SectionMusculation {
		return nil, ErrWrongSection
	}
	return tutorial, nil
}

func (s *tutorialService) saveExercises(ctx context.Context, tutorial *domain.Tutorial, version int64, exercises []domain.Exercise) (*domain.Tutorial, error) {
	sort.SliceStable(exercises, func(a, b int) bool { return exercises[a].Sequence < exercises[b].Sequence })
	if err := s.tutorialRepo.ReplaceExercises(ctx, tutorial.ID, version, exercises); err != nil {
		return nil, writeError(err)
	}
	return s.GetTutorial(ctx, tutorial.ID)
}

func exerciseFromInput(id primitive.ObjectID, input ExerciseInput) domain.Exercise {
	return domain.Exercise{
		ID:          id,
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		MuscleGroup: input.MuscleGroup,
		Sets:        input.Sets,
		Reps:        input.Reps,
		RestSeconds: input.RestSeconds,
		Difficulty:  input.Difficulty,
		ImageURL:    input.ImageURL,
		VideoURL:    input.VideoURL,
		Sequence:    input.Sequence,
	}
}

func nextSequence(exercises []domain.Exercise) int {
	highest := 0
	for _, e := range exercises {
		if e.Sequence > highest {
			highest = e.Sequence
		}
	}
	return highest + 1
}

// --- Diet plans ---

func (s *tutorialService) AddDietPlan(ctx context.Context, tutorialID primitive.ObjectID, input DietPlanInput) (*domain.Tutorial, error) {
	tutorial, err := s.prepareDietPlanEdit(ctx, tutorialID, input)
	if err != nil {
		return nil, err
	}
	plans := append(tutorial.DietPlans, dietPlanFromInput(primitive.NewObjectID(), input))
	return s.saveDietPlans(ctx, tutorial, input.Version, plans)
}

func (s *tutorialService) UpdateDietPlan(ctx context.Context, tutorialID, planID primitive.ObjectID, input DietPlanInput) (*domain.Tutorial, error) {
	tutorial, err := s.prepareDietPlanEdit(ctx, tutorialID, input)
	if err != nil {
		return nil, err
	}
	i := tutorial.DietPlanIndex(planID)
	if i < 0 {
		return nil, ErrDietPlanNotFound
	}
	tutorial.DietPlans[i] = dietPlanFromInput(planID, input)
	return s.saveDietPlans(ctx, tutorial, input.Version, tutorial.DietPlans)
}

func (s *tutorialService) RemoveDietPlan(ctx context.Context, tutorialID, planID primitive.ObjectID, version int64) (*domain.Tutorial, error) {
	tutorial, err := s.loadVersion(ctx, tutorialID, version)
	if err != nil {
		return nil, err
	}
	i := tutorial.DietPlanIndex(planID)
	if i < 0 {
		return nil, ErrDietPlanNotFound
	}
	remaining := append(tutorial.DietPlans[:i:i], tutorial.DietPlans[i+1:]...)
	return s.saveDietPlans(ctx, tutorial, version, remaining)
}

func (s *tutorialService) prepareDietPlanEdit(ctx context.Context, tutorialID primitive.ObjectID, input DietPlanInput) (*domain.Tutorial, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	tutorial, err := s.loadVersion(ctx, tutorialID, input.Version)
	if err != nil {
		return nil, err
	}
	if tutorial.Section != domain.SectionDiete {
		return nil, ErrWrongSection
	}
	return tutorial, nil
}

func (s *tutorialService) saveDietPlans(ctx context.Context, tutorial *domain.Tutorial, version int64, plans []domain.DietPlan) (*domain.Tutorial, error) {
	if err := s.tutorialRepo.ReplaceDietPlans(ctx, tutorial.ID, version, plans); err != nil {
		return nil, writeError(err)
	}
	return s.GetTutorial(ctx, tutorial.ID)
}

func dietPlanFromInput(id primitive.ObjectID, input DietPlanInput) domain.DietPlan {
	meals := make([]domain.Meal, 0, len(input.Meals))
	for _, m := range input.Meals {
		foods := make([]domain.Food, 0, len(m.Foods))
		for _, f := range m.Foods {
			foods = append(foods, domain.Food{
				Name:     strings.TrimSpace(f.Name),
				Quantity: f.Quantity,
				Calories: f.Calories,
				Protein:  f.Protein,
				Carbs:    f.Carbs,
				Fat:      f.Fat,
			})
		}
		meals = append(meals, domain.Meal{Name: strings.TrimSpace(m.Name), Time: m.Time, Foods: foods})
	}
	return domain.DietPlan{
		ID:            id,
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		Goal:          input.Goal,
		DailyCalories: input.DailyCalories,
		Meals:         meals,
	}
}

// --- Helpers ---

// loadVersion fails fast when the caller edits a stale copy. The repository
// re-checks the version on write.
func (s *tutorialService) loadVersion(ctx context.Context, id primitive.ObjectID, version int64) (*domain.Tutorial, error) {
	tutorial, err := s.GetTutorial(ctx, id)
	if err != nil {
		return nil, err
	}
	if tutorial.Version != version {
		return nil, ErrTutorialConflict
	}
	return tutorial, nil
}

func writeError(err error) error {
	if errors.Is(err, repository.ErrConflict) {
		return ErrTutorialConflict
	}
	return notFound(err, ErrTutorialNotFound)
}
