package mongo

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository" // Import the repository interfaces package
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const userCollectionName = "users"

// mongoUserRepository implements the repository.UserRepository interface using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
// It expects a connected *mongo.Database instance.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a new user into the database.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user email, password hash, and role are required")
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.MemberSince.IsZero() {
		user.MemberSince = now
	}
	if user.AccessStatus == "" {
		user.AccessStatus = domain.AccessGreen
	}

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}

	return insertedID, nil
}

// GetByEmail retrieves a user by their email address.
func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by their MongoDB ObjectID.
func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var user domain.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByIDs loads several users at once, ordered by name.
func (r *mongoUserRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	users := []domain.User{}
	if len(ids) == 0 {
		return users, nil
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// List returns users newest first, narrowed by the filter.
func (r *mongoUserRepository) List(ctx context.Context, filter repository.UserFilter, page repository.PageRequest) (*repository.Page[domain.User], error) {
	query := bson.M{}
	if filter.Role != "" {
		query["role"] = filter.Role
	}
	if filter.AccessStatus != "" {
		query["accessStatus"] = filter.AccessStatus
	}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"email": pattern},
		}
	}
	return findPage(ctx, r.collection, query, newestFirst, page, func(u *domain.User) (time.Time, primitive.ObjectID) {
		return u.CreatedAt, u.ID
	})
}

// Update writes the fields an administrator may edit.
func (r *mongoUserRepository) Update(ctx context.Context, user *domain.User) error {
	if user.ID == primitive.NilObjectID {
		return errors.New("user ID is required for update")
	}
	update := bson.M{
		"$set": bson.M{
			"name":         user.Name,
			"role":         user.Role,
			"credits":      user.Credits,
			"height":       user.Height,
			"weight":       user.Weight,
			"birthday":     user.Birthday,
			"sex":          user.Sex,
			"observations": user.Observations,
			"updatedAt":    time.Now().UTC(),
		},
	}
	return r.updateOne(ctx, bson.M{"_id": user.ID}, update)
}

// UpdateProfile writes the onboarding fields a member may edit on their own account.
func (r *mongoUserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	if user.ID == primitive.NilObjectID {
		return errors.New("user ID is required for update")
	}
	update := bson.M{
		"$set": bson.M{
			"name":      user.Name,
			"height":    user.Height,
			"weight":    user.Weight,
			"birthday":  user.Birthday,
			"sex":       user.Sex,
			"updatedAt": time.Now().UTC(),
		},
	}
	return r.updateOne(ctx, bson.M{"_id": user.ID}, update)
}

// Delete removes a user document.
func (r *mongoUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetAccessStatus flips the access gate. updatedAt is left as is.
func (r *mongoUserRepository) SetAccessStatus(ctx context.Context, id primitive.ObjectID, status domain.AccessStatus) error {
	return r.updateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"accessStatus": status}})
}

// SwapAccessStatus is a compare-and-set on accessStatus. Documents written
// before the field existed count as green.
func (r *mongoUserRepository) SwapAccessStatus(ctx context.Context, id primitive.ObjectID, from, to domain.AccessStatus) error {
	var current any = from
	if from == domain.AccessGreen {
		current = bson.M{"$in": bson.A{domain.AccessGreen, "", nil}}
	}
	filter := bson.M{"_id": id, "accessStatus": current}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"accessStatus": to}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return repository.ErrConflict
	}
	return nil
}

// DeductCredits debits amount only while the balance covers it.
func (r *mongoUserRepository) DeductCredits(ctx context.Context, id primitive.ObjectID, amount int) error {
	if amount < 0 {
		return errors.New("deduction amount cannot be negative")
	}
	filter := bson.M{"_id": id, "credits": bson.M{"$gte": amount}}
	update := bson.M{
		"$inc": bson.M{"credits": -amount},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Either the user vanished or the balance is too low; tell them apart.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return repository.ErrConflict
	}
	return nil
}

// AddCredits credits a positive amount.
func (r *mongoUserRepository) AddCredits(ctx context.Context, id primitive.ObjectID, amount int) error {
	if amount < 0 {
		return errors.New("credit amount cannot be negative")
	}
	update := bson.M{
		"$inc": bson.M{"credits": amount},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.updateOne(ctx, bson.M{"_id": id}, update)
}

// TouchLastActive records the time of the latest sign-in.
func (r *mongoUserRepository) TouchLastActive(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return r.updateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"lastActive": at.UTC()}})
}

func (r *mongoUserRepository) updateOne(ctx context.Context, filter, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	// ModifiedCount may be 0 when the values were already set, which is fine.
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureUserIndexes creates necessary indexes for the users collection.
func EnsureUserIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "role", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "accessStatus", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
