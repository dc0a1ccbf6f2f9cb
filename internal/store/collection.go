// Package store wraps a MongoDB collection with the typed document operations
// shared by every resource repository.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrDuplicateKey = errors.New("duplicate key")
)

// GroupCount is one row of a CountGroupedBy aggregation.
type GroupCount struct {
	Key   string `bson:"_id" json:"_id"`
	Count int64  `bson:"count" json:"count"`
}

type MonthKey struct {
	Year  int `bson:"year" json:"year"`
	Month int `bson:"month" json:"month"`
}

// MonthCount is one row of a CountGroupedByMonth aggregation.
type MonthCount struct {
	Key   MonthKey `bson:"_id" json:"_id"`
	Count int64    `bson:"count" json:"count"`
}

type Collection[T any] struct {
	col *mongo.Collection
}

func NewCollection[T any](col *mongo.Collection) *Collection[T] {
	return &Collection[T]{col: col}
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

func (c *Collection[T]) Insert(ctx context.Context, doc T) error {
	if _, err := c.col.InsertOne(ctx, doc); err != nil {
		return translate(err)
	}
	return nil
}

func (c *Collection[T]) FindByID(ctx context.Context, id string) (T, error) {
	return c.FindOne(ctx, bson.M{"_id": id})
}

func (c *Collection[T]) FindOne(ctx context.Context, filter bson.M) (T, error) {
	var doc T
	if err := c.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		var zero T
		return zero, translate(err)
	}
	return doc, nil
}

// FindAll returns every document matching filter, newest first.
func (c *Collection[T]) FindAll(ctx context.Context, filter bson.M) ([]T, error) {
	if filter == nil {
		filter = bson.M{}
	}
	return c.find(ctx, filter, newestFirst())
}

// FindAllProjected is FindAll restricted to the given fields.
func (c *Collection[T]) FindAllProjected(ctx context.Context, filter bson.M, fields ...string) ([]T, error) {
	if filter == nil {
		filter = bson.M{}
	}
	projection := bson.M{}
	for _, f := range fields {
		projection[f] = 1
	}
	return c.find(ctx, filter, newestFirst().SetProjection(projection))
}

// UpdateByID applies set as a partial $set and returns the document after the update.
func (c *Collection[T]) UpdateByID(ctx context.Context, id string, set bson.M) (T, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": set}

	var updated T
	if err := c.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated); err != nil {
		var zero T
		return zero, translate(err)
	}
	return updated, nil
}

// DeleteByID removes the document and returns it as it was before deletion.
func (c *Collection[T]) DeleteByID(ctx context.Context, id string) (T, error) {
	var deleted T
	if err := c.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted); err != nil {
		var zero T
		return zero, translate(err)
	}
	return deleted, nil
}

// Search matches query as a case-insensitive substring against any of fields.
// The query is matched literally, not as a pattern.
func (c *Collection[T]) Search(ctx context.Context, fields []string, query string) ([]T, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	or := make(bson.A, 0, len(fields))
	for _, f := range fields {
		or = append(or, bson.M{f: pattern})
	}
	return c.find(ctx, bson.M{"$or": or}, newestFirst())
}

func (c *Collection[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	return c.col.CountDocuments(ctx, filter)
}

// CountGroupedBy counts documents per distinct value of field, largest group first.
func (c *Collection[T]) CountGroupedBy(ctx context.Context, field string) ([]GroupCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}
	return aggregate[GroupCount](ctx, c.col, pipeline)
}

// CountGroupedByMonth counts documents whose dateField is at or after since,
// grouped by calendar (year, month) in loc and sorted ascending.
func (c *Collection[T]) CountGroupedByMonth(ctx context.Context, dateField string, since time.Time, loc *time.Location) ([]MonthCount, error) {
	tz := "UTC"
	if loc != nil {
		tz = loc.String()
	}
	date := bson.D{{Key: "date", Value: "$" + dateField}, {Key: "timezone", Value: tz}}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: dateField, Value: bson.D{{Key: "$gte", Value: since}}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "year", Value: bson.D{{Key: "$year", Value: date}}},
				{Key: "month", Value: bson.D{{Key: "$month", Value: date}}},
			}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.year", Value: 1}, {Key: "_id.month", Value: 1}}}},
	}
	return aggregate[MonthCount](ctx, c.col, pipeline)
}

func (c *Collection[T]) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]T, error) {
	cursor, err := c.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]T, 0)
	for cursor.Next(ctx) {
		var item T
		if err := cursor.Decode(&item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func aggregate[R any](ctx context.Context, col *mongo.Collection, pipeline mongo.Pipeline) ([]R, error) {
	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	rows := make([]R, 0)
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	default:
		return err
	}
}
