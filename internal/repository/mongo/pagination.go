package mongo

import (
	"alcyxob/gym-app/internal/repository"
	"context"
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// pageOrder describes the keyset a list is sorted by: a time field, with _id
// as tie-breaker.
type pageOrder struct {
	field     string
	ascending bool
}

var (
	newestFirst   = pageOrder{field: "createdAt", ascending: false}
	upcomingFirst = pageOrder{field: "startTime", ascending: true}
)

// encodeCursor packs the sort key of the last item of a page.
// BSON datetimes have millisecond precision, so UnixMilli round-trips exactly.
func encodeCursor(at time.Time, id primitive.ObjectID) string {
	raw := strconv.FormatInt(at.UnixMilli(), 10) + ":" + id.Hex()
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(cursor string) (time.Time, primitive.ObjectID, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, primitive.NilObjectID, repository.ErrInvalidCursor
	}
	millis, hex, ok := strings.Cut(string(raw), ":")
	if !ok {
		return time.Time{}, primitive.NilObjectID, repository.ErrInvalidCursor
	}
	ms, err := strconv.ParseInt(millis, 10, 64)
	if err != nil {
		return time.Time{}, primitive.NilObjectID, repository.ErrInvalidCursor
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return time.Time{}, primitive.NilObjectID, repository.ErrInvalidCursor
	}
	return time.UnixMilli(ms).UTC(), id, nil
}

// afterCursor extends filter so only documents past the cursor match.
func afterCursor(filter bson.M, order pageOrder, cursor string) (bson.M, error) {
	if cursor == "" {
		return filter, nil
	}
	at, id, err := decodeCursor(cursor)
	if err != nil {
		return nil, err
	}
	op := "$lt"
	if order.ascending {
		op = "$gt"
	}
	keyset := bson.M{"$or": bson.A{
		bson.M{order.field: bson.M{op: at}},
		bson.M{order.field: at, "_id": bson.M{op: id}},
	}}
	if len(filter) == 0 {
		return keyset, nil
	}
	return bson.M{"$and": bson.A{filter, keyset}}, nil
}

// findPage runs a keyset-paginated Find. sortKey extracts the (time, id) pair
// of an item so the next cursor can be built from the last one returned.
func findPage[T any](
	ctx context.Context,
	collection *mongo.Collection,
	filter bson.M,
	order pageOrder,
	page repository.PageRequest,
	sortKey func(*T) (time.Time, primitive.ObjectID),
) (*repository.Page[T], error) {
	page = page.Normalized()

	filter, err := afterCursor(filter, order, page.Cursor)
	if err != nil {
		return nil, err
	}

	direction := -1
	if order.ascending {
		direction = 1
	}
	// Fetch one extra document to know whether another page exists.
	findOptions := options.Find().
		SetSort(bson.D{{Key: order.field, Value: direction}, {Key: "_id", Value: direction}}).
		SetLimit(int64(page.Limit + 1))

	cursor, err := collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := []T{}
	if err = cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	result := &repository.Page[T]{Items: items}
	if len(items) > page.Limit {
		result.Items = items[:page.Limit]
		at, id := sortKey(&result.Items[page.Limit-1])
		result.NextCursor = encodeCursor(at, id)
	}
	return result, nil
}
