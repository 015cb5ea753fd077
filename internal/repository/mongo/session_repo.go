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
)

const sessionCollectionName = "sessions"

// mongoSessionRepository implements repository.SessionRepository
type mongoSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoSessionRepository creates a new Session repository backed by MongoDB.
func NewMongoSessionRepository(db *mongo.Database) repository.SessionRepository {
	return &mongoSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

// Create inserts a new session.
func (r *mongoSessionRepository) Create(ctx context.Context, session *domain.Session) (primitive.ObjectID, error) {
	if session.ActivityID == primitive.NilObjectID || session.Capacity < 1 {
		return primitive.NilObjectID, errors.New("session requires activityId and a positive capacity")
	}

	session.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	// $push needs an array, never null.
	session.ParticipantIDs = []primitive.ObjectID{}
	session.BookedCount = 0

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted session ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single session by its ID.
func (r *mongoSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Session, error) {
	var session domain.Session
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// List returns sessions ordered by start time, earliest first.
func (r *mongoSessionRepository) List(ctx context.Context, filter repository.SessionFilter, page repository.PageRequest) (*repository.Page[domain.Session], error) {
	query := bson.M{}
	if filter.ActivityID != nil {
		query["activityId"] = *filter.ActivityID
	}
	startRange := bson.M{}
	if filter.From != nil {
		startRange["$gte"] = filter.From.UTC()
	}
	if filter.To != nil {
		startRange["$lt"] = filter.To.UTC()
	}
	if len(startRange) > 0 {
		query["startTime"] = startRange
	}
	return findPage(ctx, r.collection, query, upcomingFirst, page, func(s *domain.Session) (time.Time, primitive.ObjectID) {
		return s.StartTime, s.ID
	})
}

// Update writes the schedule and metadata. Participants are never touched here.
func (r *mongoSessionRepository) Update(ctx context.Context, session *domain.Session) error {
	if session.ID == primitive.NilObjectID {
		return errors.New("session ID is required for update")
	}

	filter := bson.M{
		"_id":         session.ID,
		"bookedCount": bson.M{"$lte": session.Capacity},
	}
	update := bson.M{
		"$set": bson.M{
			"activityId":     session.ActivityID,
			"activityName":   session.ActivityName,
			"title":          session.Title,
			"description":    session.Description,
			"startTime":      session.StartTime.UTC(),
			"endTime":        session.EndTime.UTC(),
			"capacity":       session.Capacity,
			"location":       session.Location,
			"instructorName": session.InstructorName,
			"updatedAt":      time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return r.missOrConflict(ctx, session.ID)
	}
	return nil
}

// Delete removes a session.
func (r *mongoSessionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AddParticipant appends userID while the member is absent and a spot is left.
// The guard runs server-side, so two concurrent joins cannot both take the last spot.
func (r *mongoSessionRepository) AddParticipant(ctx context.Context, sessionID, userID primitive.ObjectID) error {
	filter := bson.M{
		"_id":            sessionID,
		"participantIds": bson.M{"$ne": userID},
		"$expr":          bson.M{"$lt": bson.A{"$bookedCount", "$capacity"}},
	}
	update := bson.M{
		"$push": bson.M{"participantIds": userID},
		"$inc":  bson.M{"bookedCount": 1},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return r.missOrConflict(ctx, sessionID)
	}
	return nil
}

// CountByActivity counts sessions scheduled for an activity.
func (r *mongoSessionRepository) CountByActivity(ctx context.Context, activityID primitive.ObjectID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"activityId": activityID})
}

// RenameActivity refreshes the denormalized activity name on every session of the activity.
func (r *mongoSessionRepository) RenameActivity(ctx context.Context, activityID primitive.ObjectID, name string) error {
	filter := bson.M{"activityId": activityID, "activityName": bson.M{"$ne": name}}
	update := bson.M{"$set": bson.M{"activityName": name, "updatedAt": time.Now().UTC()}}
	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}

func (r *mongoSessionRepository) missOrConflict(ctx context.Context, id primitive.ObjectID) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return repository.ErrConflict
}

// EnsureSessionIndexes creates necessary indexes. Call during startup.
func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// Main listing pattern: upcoming sessions in start order.
			Keys: bson.D{{Key: "startTime", Value: 1}, {Key: "_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "activityId", Value: 1}, {Key: "startTime", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "participantIds", Value: 1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
