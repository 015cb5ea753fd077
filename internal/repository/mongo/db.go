package mongo

import (
	"alcyxob/gym-app/internal/repository"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI.
// Transactions need a replica set (or a single-node replica set in development).
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping the primary node to verify the connection.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	err = client.Ping(pingCtx, readpref.Primary())
	if err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection. Call this once during startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ensurers := []func(context.Context, *mongo.Collection) error{
		EnsureUserIndexes,
		EnsureActivityIndexes,
		EnsureSessionIndexes,
		EnsureTutorialIndexes,
		EnsureCheckInIndexes,
		EnsureForumPostIndexes,
		EnsureForumCommentIndexes,
		EnsureForumLikeIndexes,
		EnsureUploadIndexes,
		EnsureTokenIndexes,
	}
	names := []string{
		userCollectionName,
		activityCollectionName,
		sessionCollectionName,
		tutorialCollectionName,
		checkInCollectionName,
		forumPostCollectionName,
		forumCommentCollectionName,
		forumLikeCollectionName,
		uploadCollectionName,
		tokenCollectionName,
	}
	for i, ensure := range ensurers {
		if err := ensure(ctx, db.Collection(names[i])); err != nil {
			return err
		}
	}
	return nil
}

// mongoTransactor implements repository.Transactor with client sessions.
type mongoTransactor struct {
	client *mongo.Client
}

// NewTransactor creates a Transactor backed by MongoDB multi-document transactions.
func NewTransactor(client *mongo.Client) repository.Transactor {
	return &mongoTransactor{client: client}
}

// WithTransaction runs fn with snapshot reads and majority writes. The driver
// retries fn on transient transaction errors only; business errors returned by
// fn abort the transaction and are passed through.
func (t *mongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	txnOptions := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	}, txnOptions)
	return err
}
