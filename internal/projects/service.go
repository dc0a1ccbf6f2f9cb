package projects

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"realestate-backend/internal/store"
	"realestate-backend/internal/uploads"
	"realestate-backend/internal/validation"
)

var (
	ErrNotFound      = errors.New("project not found")
	ErrImageRequired = errors.New("project image is required")
	ErrQueryRequired = errors.New("search query is required")
)

// ImageStore turns uploads into stored images and deletes them again.
type ImageStore interface {
	Process(ctx context.Context, up uploads.Upload) (uploads.Stored, error)
	Remove(url string)
}

type Service struct {
	repo     Repository
	images   ImageStore
	val      *validation.Validator
	location *time.Location
	now      func() time.Time
}

func NewService(repo Repository, images ImageStore, val *validation.Validator, location *time.Location) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		repo:     repo,
		images:   images,
		val:      val,
		location: location,
		now:      time.Now,
	}
}

func (s *Service) List(ctx context.Context) ([]Project, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id string) (Project, error) {
	item, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Project{}, ErrNotFound
		}
		return Project{}, err
	}
	return item, nil
}

// Create validates req, stores the image and persists the project. The image
// is removed again if the insert fails.
func (s *Service) Create(ctx context.Context, req CreateRequest, image *uploads.Upload) (Project, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if err := s.val.Check(req); err != nil {
		return Project{}, err
	}
	if image == nil {
		return Project{}, ErrImageRequired
	}

	stored, err := s.images.Process(ctx, *image)
	if err != nil {
		return Project{}, err
	}

	now := s.now().In(s.location)
	item := Project{
		ID:          primitive.NewObjectID().Hex(),
		Name:        req.Name,
		Description: req.Description,
		Image:       stored.URL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, item); err != nil {
		s.images.Remove(stored.URL)
		return Project{}, err
	}
	return item, nil
}

// Update merges the supplied fields. A new image replaces the old one, which
// is deleted from disk once the update has been persisted.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest, image *uploads.Upload) (Project, error) {
	id = strings.TrimSpace(id)
	req.Name = trimmed(req.Name)
	req.Description = trimmed(req.Description)
	if err := s.val.Check(req); err != nil {
		return Project{}, err
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return Project{}, err
	}

	set := bson.M{"updatedAt": s.now().In(s.location)}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}

	var newImage string
	if image != nil {
		stored, err := s.images.Process(ctx, *image)
		if err != nil {
			return Project{}, err
		}
		newImage = stored.URL
		set["image"] = newImage
	}

	updated, err := s.repo.Update(ctx, id, set)
	if err != nil {
		if newImage != "" {
			s.images.Remove(newImage)
		}
		if errors.Is(err, store.ErrNotFound) {
			return Project{}, ErrNotFound
		}
		return Project{}, err
	}

	if newImage != "" && existing.Image != "" && existing.Image != newImage {
		s.images.Remove(existing.Image)
	}
	return updated, nil
}

// Delete removes the project, then its image on a best-effort basis.
func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	s.images.Remove(deleted.Image)
	return nil
}

func (s *Service) Search(ctx context.Context, query string) ([]Project, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryRequired
	}
	return s.repo.Search(ctx, query)
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}
