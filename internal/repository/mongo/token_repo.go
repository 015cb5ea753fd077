package mongo

import (
	"alcyxob/gym-app/internal/domain"
	"alcyxob/gym-app/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const tokenCollectionName = "revoked_tokens"

type mongoTokenRepository struct {
	collection *mongo.Collection
}

// NewMongoTokenRepository creates the store of signed-out token ids.
func NewMongoTokenRepository(db *mongo.Database) repository.TokenRepository {
	return &mongoTokenRepository{
		collection: db.Collection(tokenCollectionName),
	}
}

// Revoke records a jti. Revoking twice is harmless.
func (r *mongoTokenRepository) Revoke(ctx context.Context, token *domain.RevokedToken) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": token.JTI},
		bson.M{"$setOnInsert": bson.M{"userId": token.UserID, "expiresAt": token.ExpiresAt.UTC()}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *mongoTokenRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": jti}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// EnsureTokenIndexes lets MongoDB drop entries once the token would have expired.
func EnsureTokenIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expiresAt", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	})
	return err
}
