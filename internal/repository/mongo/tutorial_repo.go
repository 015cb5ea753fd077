package mongo

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const tutorialCollectionName = "tutorials"

// mongoTutorialRepository implements repository.TutorialRepository.
// Embedded arrays are replaced whole; the version field keeps two editors
// from silently overwriting each other.
type mongoTutorialRepository struct {
	collection *mongo.Collection
}

// NewMongoTutorialRepository creates a new Tutorial repository.
func NewMongoTutorialRepository(db *mongo.Database) repository.TutorialRepository {
	return &mongoTutorialRepository{
		collection: db.Collection(tutorialCollectionName),
	}
}

// Create inserts a new tutorial at version 1.
func (r *mongoTutorialRepository) Create(ctx context.Context, tutorial *domain.Tutorial) (primitive.ObjectID, error) {
	if tutorial.Title == "" || tutorial.Section == "" {
		return primitive.NilObjectID, errors.New("tutorial requires title and section")
	}

	tutorial.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	tutorial.CreatedAt = now
	tutorial.UpdatedAt = now
	tutorial.Version = 1
	if tutorial.Exercises == nil {
		tutorial.Exercises = []domain.Exercise{}
	}
	if tutorial.DietPlans == nil {
		tutorial.DietPlans = []domain.DietPlan{}
	}

	result, err := r.collection.InsertOne(ctx, tutorial)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted tutorial ID")
	}
	return insertedID, nil
}

// GetByID retrieves a tutorial with its embedded sub-documents.
func (r *mongoTutorialRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Tutorial, error) {
	var tutorial domain.Tutorial
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tutorial)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &tutorial, nil
}

// List returns tutorials newest first.
func (r *mongoTutorialRepository) List(ctx context.Context, filter repository.TutorialFilter, page repository.PageRequest) (*repository.Page[domain.Tutorial], error) {
	query := bson.M{}
	if filter.Section != "" {
		query["section"] = filter.Section
	}
	return findPage(ctx, r.collection, query, newestFirst, page, func(t *domain.Tutorial) (time.Time, primitive.ObjectID) {
		return t.CreatedAt, t.ID
	})
}

// Update writes the top-level fields.
func (r *mongoTutorialRepository) Update(ctx context.Context, tutorial *domain.Tutorial, expectedVersion int64) error {
	if tutorial.ID == primitive.NilObjectID {
		return errors.New("tutorial ID is required for update")
	}
	return r.versionedSet(ctx, tutorial.ID, expectedVersion, bson.M{
		"title":       tutorial.Title,
		"description": tutorial.Description,
		"content":     tutorial.Content,
		"section":     tutorial.Section,
		"imageUrl":    tutorial.ImageURL,
		"videoUrl":    tutorial.VideoURL,
	})
}

// ReplaceExercises swaps the whole exercises array.
func (r *mongoTutorialRepository) ReplaceExercises(ctx context.Context, id primitive.ObjectID, expectedVersion int64, exercises []domain.Exercise) error {
	if exercises == nil {
		exercises = []domain.Exercise{}
	}
	return r.versionedSet(ctx, id, expectedVersion, bson.M{"exercises": exercises})
}

// ReplaceDietPlans swaps the whole dietPlans array.
func (r *mongoTutorialRepository) ReplaceDietPlans(ctx context.Context, id primitive.ObjectID, expectedVersion int64, plans []domain.DietPlan) error {
	if plans == nil {
		plans = []domain.DietPlan{}
	}
	return r.versionedSet(ctx, id, expectedVersion, bson.M{"dietPlans": plans})
}

// Delete removes a tutorial and everything embedded in it.
func (r *mongoTutorialRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoTutorialRepository) versionedSet(ctx context.Context, id primitive.ObjectID, expectedVersion int64, fields bson.M) error {
	fields["updatedAt"] = time.Now().UTC()
	filter := bson.M{"_id": id, "version": expectedVersion}
	update := bson.M{
		"$set": fields,
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrNotFound
		}
		return repository.ErrConflict
	}
	return nil
}

// EnsureTutorialIndexes creates necessary indexes. Call during startup.
func EnsureTutorialIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "section", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
		},
		{
			Keys:    bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}},
			Options: options.Index().SetName("tutorial_text_search"),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
