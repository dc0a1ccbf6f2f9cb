package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Collections struct {
	Projects    *mongo.Collection
	Clients     *mongo.Collection
	Contacts    *mongo.Collection
	Newsletters *mongo.Collection
}

func Connect(ctx context.Context, uri, dbName string) (*mongo.Client, *Collections, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	db := client.Database(dbName)

	cols := &Collections{
		Projects:    db.Collection("projects"),
		Clients:     db.Collection("clients"),
		Contacts:    db.Collection("contacts"),
		Newsletters: db.Collection("newsletters"),
	}

	return client, cols, nil
}

func EnsureIndexes(ctx context.Context, cols *Collections) error {
	indexTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	newestFirst := mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}}

	if _, err := cols.Projects.Indexes().CreateMany(indexTimeout, []mongo.IndexModel{newestFirst}); err != nil {
		return err
	}

	if _, err := cols.Clients.Indexes().CreateMany(indexTimeout, []mongo.IndexModel{newestFirst}); err != nil {
		return err
	}

	_, err := cols.Contacts.Indexes().CreateMany(indexTimeout, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		newestFirst,
		{
			Keys: bson.D{{Key: "city", Value: 1}},
		},
	})
	if err != nil {
		return err
	}

	_, err = cols.Newsletters.Indexes().CreateMany(indexTimeout, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		newestFirst,
		{
			Keys: bson.D{{Key: "isActive", Value: 1}},
		},
	})
	if err != nil {
		return err
	}

	return nil
}
