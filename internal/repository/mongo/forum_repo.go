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

const (
	forumPostCollectionName    = "forumPosts"
	forumCommentCollectionName = "forumComments"
	forumLikeCollectionName    = "forumLikes"
)

// --- Posts ---

type mongoForumPostRepository struct {
	collection *mongo.Collection
}

// NewMongoForumPostRepository creates a new ForumPost repository backed by MongoDB.
func NewMongoForumPostRepository(db *mongo.Database) repository.ForumPostRepository {
	return &mongoForumPostRepository{
		collection: db.Collection(forumPostCollectionName),
	}
}

func (r *mongoForumPostRepository) Create(ctx context.Context, post *domain.ForumPost) (primitive.ObjectID, error) {
	if post.AuthorID == primitive.NilObjectID || post.Content == "" {
		return primitive.NilObjectID, errors.New("post requires authorId and content")
	}

	post.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now
	post.LikeCount = 0
	post.CommentCount = 0

	result, err := r.collection.InsertOne(ctx, post)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted post ID")
	}
	return insertedID, nil
}

func (r *mongoForumPostRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ForumPost, error) {
	var post domain.ForumPost
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

// List returns the feed, newest first.
func (r *mongoForumPostRepository) List(ctx context.Context, page repository.PageRequest) (*repository.Page[domain.ForumPost], error) {
	return findPage(ctx, r.collection, bson.M{}, newestFirst, page, func(p *domain.ForumPost) (time.Time, primitive.ObjectID) {
		return p.CreatedAt, p.ID
	})
}

// Update writes the editable content. Counters are only moved by Increment*.
func (r *mongoForumPostRepository) Update(ctx context.Context, post *domain.ForumPost) error {
	update := bson.M{
		"$set": bson.M{
			"title":     post.Title,
			"content":   post.Content,
			"imageUrl":  post.ImageURL,
			"updatedAt": time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": post.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoForumPostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoForumPostRepository) IncrementLikes(ctx context.Context, id primitive.ObjectID, delta int) error {
	return r.increment(ctx, id, "likeCount", delta)
}

func (r *mongoForumPostRepository) IncrementComments(ctx context.Context, id primitive.ObjectID, delta int) error {
	return r.increment(ctx, id, "commentCount", delta)
}

// increment moves a counter; a decrement never takes it below zero.
func (r *mongoForumPostRepository) increment(ctx context.Context, id primitive.ObjectID, field string, delta int) error {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter[field] = bson.M{"$gte": -delta}
	}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{field: delta}})
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

// EnsureForumPostIndexes creates necessary indexes for the forumPosts collection.
func EnsureForumPostIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "authorId", Value: 1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// --- Comments ---

type mongoForumCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoForumCommentRepository creates a new ForumComment repository backed by MongoDB.
func NewMongoForumCommentRepository(db *mongo.Database) repository.ForumCommentRepository {
	return &mongoForumCommentRepository{
		collection: db.Collection(forumCommentCollectionName),
	}
}

func (r *mongoForumCommentRepository) Create(ctx context.Context, comment *domain.ForumComment) (primitive.ObjectID, error) {
	if comment.PostID == primitive.NilObjectID || comment.AuthorID == primitive.NilObjectID || comment.Content == "" {
		return primitive.NilObjectID, errors.New("comment requires postId, authorId and content")
	}

	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, comment)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted comment ID")
	}
	return insertedID, nil
}

func (r *mongoForumCommentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ForumComment, error) {
	var comment domain.ForumComment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &comment, nil
}

// ListByPost returns a thread's comments, newest first.
func (r *mongoForumCommentRepository) ListByPost(ctx context.Context, postID primitive.ObjectID, page repository.PageRequest) (*repository.Page[domain.ForumComment], error) {
	return findPage(ctx, r.collection, bson.M{"postId": postID}, newestFirst, page, func(c *domain.ForumComment) (time.Time, primitive.ObjectID) {
		return c.CreatedAt, c.ID
	})
}

func (r *mongoForumCommentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoForumCommentRepository) DeleteByPost(ctx context.Context, postID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"postId": postID})
	return err
}

// EnsureForumCommentIndexes creates necessary indexes for the forumComments collection.
func EnsureForumCommentIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "postId", Value: 1}, {Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// --- Likes ---

type mongoForumLikeRepository struct {
	collection *mongo.Collection
}

// NewMongoForumLikeRepository creates a new ForumLike repository backed by MongoDB.
func NewMongoForumLikeRepository(db *mongo.Database) repository.ForumLikeRepository {
	return &mongoForumLikeRepository{
		collection: db.Collection(forumLikeCollectionName),
	}
}

func (r *mongoForumLikeRepository) Create(ctx context.Context, like *domain.ForumLike) error {
	like.ID = primitive.NewObjectID()
	like.CreatedAt = time.Now().UTC()

	_, err := r.collection.InsertOne(ctx, like)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *mongoForumLikeRepository) Delete(ctx context.Context, postID, userID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"postId": postID, "userId": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoForumLikeRepository) DeleteByPost(ctx context.Context, postID primitive.ObjectID) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"postId": postID})
	return err
}

func (r *mongoForumLikeRepository) LikedPostIDs(ctx context.Context, userID primitive.ObjectID, postIDs []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	liked := make(map[primitive.ObjectID]bool)
	if len(postIDs) == 0 {
		return liked, nil
	}

	filter := bson.M{"userId": userID, "postId": bson.M{"$in": postIDs}}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"postId": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var likes []domain.ForumLike
	if err = cursor.All(ctx, &likes); err != nil {
		return nil, err
	}
	for _, l := range likes {
		liked[l.PostID] = true
	}
	return liked, nil
}

// EnsureForumLikeIndexes creates necessary indexes for the forumLikes collection.
func EnsureForumLikeIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "postId", Value: 1}, {Key: "userId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("one_like_per_user"),
		},
		{
			Keys: bson.D{{Key: "userId", Value: 1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
