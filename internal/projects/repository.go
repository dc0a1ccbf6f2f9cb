package projects

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"realestate-backend/internal/store"
)

var searchFields = []string{"name", "description"}

type Repository interface {
	Create(ctx context.Context, item Project) error
	GetByID(ctx context.Context, id string) (Project, error)
	List(ctx context.Context) ([]Project, error)
	Update(ctx context.Context, id string, set bson.M) (Project, error)
	Delete(ctx context.Context, id string) (Project, error)
	Search(ctx context.Context, query string) ([]Project, error)
}

type MongoRepository struct {
	docs *store.Collection[Project]
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{docs: store.NewCollection[Project](col)}
}

func (r *MongoRepository) Create(ctx context.Context, item Project) error {
	return r.docs.Insert(ctx, item)
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (Project, error) {
	return r.docs.FindByID(ctx, id)
}

func (r *MongoRepository) List(ctx context.Context) ([]Project, error) {
	return r.docs.FindAll(ctx, nil)
}

func (r *MongoRepository) Update(ctx context.Context, id string, set bson.M) (Project, error) {
	return r.docs.UpdateByID(ctx, id, set)
}

func (r *MongoRepository) Delete(ctx context.Context, id string) (Project, error) {
	return r.docs.DeleteByID(ctx, id)
}

func (r *MongoRepository) Search(ctx context.Context, query string) ([]Project, error) {
	return r.docs.Search(ctx, searchFields, query)
}
