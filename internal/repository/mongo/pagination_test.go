package mongo

import (
	"alcyxob/gym-app/internal/repository"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCursor_RoundTrip(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.UTC)
	id := primitive.NewObjectID()

	gotAt, gotID, err := decodeCursor(encodeCursor(at, id))
	require.NoError(t, err)
	assert.True(t, at.Equal(gotAt))
	assert.Equal(t, id, gotID)
}

func TestDecodeCursor_RejectsGarbage(t *testing.T) {
	for _, c := range []string{"%%%", "bm90LWEtY3Vyc29y", encodeCursor(time.Now(), primitive.NewObjectID())[:10]} {
		_, _, err := decodeCursor(c)
		assert.ErrorIs(t, err, repository.ErrInvalidCursor, "cursor %q", c)
	}
}

func TestAfterCursor(t *testing.T) {
	t.Run("no cursor keeps filter", func(t *testing.T) {
		filter := bson.M{"section": "diete"}
		got, err := afterCursor(filter, newestFirst, "")
		require.NoError(t, err)
		assert.Equal(t, filter, got)
	})

	t.Run("descending uses $lt", func(t *testing.T) {
		at := time.UnixMilli(1_700_000_000_000).UTC()
		id := primitive.NewObjectID()
		got, err := afterCursor(bson.M{}, newestFirst, encodeCursor(at, id))
		require.NoError(t, err)
		or := got["$or"].(bson.A)
		assert.Equal(t, bson.M{"createdAt": bson.M{"$lt": at}}, or[0])
		assert.Equal(t, bson.M{"createdAt": at, "_id": bson.M{"$lt": id}}, or[1])
	})

	t.Run("ascending wraps existing filter", func(t *testing.T) {
		at := time.UnixMilli(1_700_000_000_000).UTC()
		id := primitive.NewObjectID()
		got, err := afterCursor(bson.M{"capacity": 3}, upcomingFirst, encodeCursor(at, id))
		require.NoError(t, err)
		and := got["$and"].(bson.A)
		require.Len(t, and, 2)
		keyset := and[1].(bson.M)["$or"].(bson.A)
		assert.Equal(t, bson.M{"startTime": bson.M{"$gt": at}}, keyset[0])
	})

	t.Run("bad cursor", func(t *testing.T) {
		_, err := afterCursor(bson.M{}, newestFirst, "nope")
		assert.ErrorIs(t, err, repository.ErrInvalidCursor)
	})
}
