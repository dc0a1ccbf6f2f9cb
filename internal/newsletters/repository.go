package newsletters

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"realestate-backend/internal/store"
)

type Repository interface {
	Create(ctx context.Context, s Subscriber) error
	GetByID(ctx context.Context, id string) (Subscriber, error)
	FindByEmail(ctx context.Context, email string) (Subscriber, error)
	List(ctx context.Context) ([]Subscriber, error)
	ListActive(ctx context.Context) ([]ExportRow, error)
	SetActive(ctx context.Context, id string, active bool) (Subscriber, error)
	Delete(ctx context.Context, id string) (Subscriber, error)
	Search(ctx context.Context, query string) ([]Subscriber, error)
	Count(ctx context.Context, activeOnly bool) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	CountByMonth(ctx context.Context, since time.Time, loc *time.Location) ([]store.MonthCount, error)
}

type MongoRepository struct {
	docs *store.Collection[Subscriber]
}

func NewRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{docs: store.NewCollection[Subscriber](col)}
}

func (r *MongoRepository) Create(ctx context.Context, s Subscriber) error {
	return r.docs.Insert(ctx, s)
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (Subscriber, error) {
	return r.docs.FindByID(ctx, id)
}

func (r *MongoRepository) FindByEmail(ctx context.Context, email string) (Subscriber, error) {
	return r.docs.FindOne(ctx, bson.M{"email": email})
}

func (r *MongoRepository) List(ctx context.Context) ([]Subscriber, error) {
	return r.docs.FindAll(ctx, nil)
}

func (r *MongoRepository) ListActive(ctx context.Context) ([]ExportRow, error) {
	subs, err := r.docs.FindAllProjected(ctx, bson.M{"isActive": true}, "email", "createdAt")
	if err != nil {
		return nil, err
	}
	rows := make([]ExportRow, 0, len(subs))
	for _, s := range subs {
		rows = append(rows, ExportRow{ID: s.ID, Email: s.Email, CreatedAt: s.CreatedAt})
	}
	return rows, nil
}

func (r *MongoRepository) SetActive(ctx context.Context, id string, active bool) (Subscriber, error) {
	return r.docs.UpdateByID(ctx, id, bson.M{"isActive": active})
}

func (r *MongoRepository) Delete(ctx context.Context, id string) (Subscriber, error) {
	return r.docs.DeleteByID(ctx, id)
}

func (r *MongoRepository) Search(ctx context.Context, query string) ([]Subscriber, error) {
	return r.docs.Search(ctx, []string{"email"}, query)
}

func (r *MongoRepository) Count(ctx context.Context, activeOnly bool) (int64, error) {
	if activeOnly {
		return r.docs.Count(ctx, bson.M{"isActive": true})
	}
	return r.docs.Count(ctx, nil)
}

func (r *MongoRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	return r.docs.Count(ctx, bson.M{"createdAt": bson.M{"$gte": since}})
}

func (r *MongoRepository) CountByMonth(ctx context.Context, since time.Time, loc *time.Location) ([]store.MonthCount, error) {
	return r.docs.CountGroupedByMonth(ctx, "createdAt", since, loc)
}
