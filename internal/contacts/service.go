package contacts

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"realestate-backend/internal/store"
	"realestate-backend/internal/validation"
)

var (
	ErrNotFound       = errors.New("contact not found")
	ErrDuplicateEmail = errors.New("email already submitted")
	ErrQueryRequired  = errors.New("search query is required")
)

type Notifier interface {
	SendContactNotification(ctx context.Context, c Contact) (string, error)
}

type Service struct {
	repo     Repository
	val      *validation.Validator
	location *time.Location
	notifier Notifier
	now      func() time.Time
}

func NewService(repo Repository, val *validation.Validator, location *time.Location, notifier Notifier) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		repo:     repo,
		val:      val,
		location: location,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *Service) List(ctx context.Context) ([]Contact, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id string) (Contact, error) {
	c, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Contact{}, ErrNotFound
		}
		return Contact{}, err
	}
	return c, nil
}

// Create stores a contact form submission. Each email may submit once; the
// unique index backs up the lookup when two submissions race.
func (s *Service) Create(ctx context.Context, req CreateRequest) (Contact, error) {
	req.FullName = strings.TrimSpace(req.FullName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Mobile = strings.TrimSpace(req.Mobile)
	req.City = strings.TrimSpace(req.City)
	if err := s.val.Check(req); err != nil {
		return Contact{}, err
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return Contact{}, ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrNotFound) {
		return Contact{}, err
	}

	c := Contact{
		ID:        primitive.NewObjectID().Hex(),
		FullName:  req.FullName,
		Email:     req.Email,
		Mobile:    req.Mobile,
		City:      req.City,
		CreatedAt: s.now().In(s.location),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return Contact{}, ErrDuplicateEmail
		}
		return Contact{}, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Delete(ctx, strings.TrimSpace(id)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *Service) Search(ctx context.Context, query string) ([]Contact, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryRequired
	}
	return s.repo.Search(ctx, query)
}

// Stats runs the three aggregate queries concurrently. The month starts at
// midnight on the first day in the service's location.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	now := s.now().In(s.location)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.location)

	var stats Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.Count(gctx)
		stats.TotalContacts = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountSince(gctx, monthStart)
		stats.ContactsThisMonth = n
		return err
	})
	g.Go(func() error {
		rows, err := s.repo.CountByCity(gctx)
		stats.ContactsByCity = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	if stats.ContactsByCity == nil {
		stats.ContactsByCity = []store.GroupCount{}
	}
	return stats, nil
}

func (s *Service) NotifyNewContact(ctx context.Context, c Contact) error {
	if s.notifier == nil {
		return nil
	}
	_, err := s.notifier.SendContactNotification(ctx, c)
	return err
}
