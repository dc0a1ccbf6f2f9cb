package clients

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"realestate-backend/internal/store"
)

var searchFields = []string{"name", "description", "designation"}

type Repository interface {
	Create(ctx context.Context, item Client) error
	GetByID(ctx context.Context, id string) (Client, error)
	List(ctx context.Context) ([]Client, error)
	Update(ctx context.Context, id string, set bson.M) (Client, error)
	Delete(ctx context.Context, id string) (Client, error)
	Search(ctx context.Context, query string) ([]Client, error)
}

type MongoRepository struct {
	docs *store.Collection[Client]
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{docs: store.NewCollection[Client](col)}
}

func (r *MongoRepository) Create(ctx context.Context, item Client) error {
	return r.docs.Insert(ctx, item)
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (Client, error) {
	return r.docs.FindByID(ctx, id)
}

func (r *MongoRepository) List(ctx context.Context) ([]Client, error) {
	return r.docs.FindAll(ctx, nil)
}

func (r *MongoRepository) Update(ctx context.Context, id string, set bson.M) (Client, error) {
	return r.docs.UpdateByID(ctx, id, set)
}

func (r *MongoRepository) Delete(ctx context.Context, id string) (Client, error) {
	return r.docs.DeleteByID(ctx, id)
}

func (r *MongoRepository) Search(ctx context.Context, query string) ([]Client, error) {
	return r.docs.Search(ctx, searchFields, query)
}
