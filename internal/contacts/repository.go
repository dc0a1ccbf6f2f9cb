package contacts

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"realestate-backend/internal/store"
)

var searchFields = []string{"fullName", "email", "city"}

type Repository interface {
	Create(ctx context.Context, c Contact) error
	GetByID(ctx context.Context, id string) (Contact, error)
	FindByEmail(ctx context.Context, email string) (Contact, error)
	List(ctx context.Context) ([]Contact, error)
	Delete(ctx context.Context, id string) (Contact, error)
	Search(ctx context.Context, query string) ([]Contact, error)
	Count(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	CountByCity(ctx context.Context) ([]store.GroupCount, error)
}

type MongoRepository struct {
	docs *store.Collection[Contact]
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{docs: store.NewCollection[Contact](col)}
}

func (r *MongoRepository) Create(ctx context.Context, c Contact) error {
	return r.docs.Insert(ctx, c)
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (Contact, error) {
	return r.docs.FindByID(ctx, id)
}

func (r *MongoRepository) FindByEmail(ctx context.Context, email string) (Contact, error) {
	return r.docs.FindOne(ctx, bson.M{"email": email})
}

func (r *MongoRepository) List(ctx context.Context) ([]Contact, error) {
	return r.docs.FindAll(ctx, nil)
}

func (r *MongoRepository) Delete(ctx context.Context, id string) (Contact, error) {
	return r.docs.DeleteByID(ctx, id)
}

func (r *MongoRepository) Search(ctx context.Context, query string) ([]Contact, error) {
	return r.docs.Search(ctx, searchFields, query)
}

func (r *MongoRepository) Count(ctx context.Context) (int64, error) {
	return r.docs.Count(ctx, nil)
}

func (r *MongoRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	return r.docs.Count(ctx, bson.M{"createdAt": bson.M{"$gte": since}})
}

func (r *MongoRepository) CountByCity(ctx context.Context) ([]store.GroupCount, error) {
	return r.docs.CountGroupedBy(ctx, "city")
}
