package newsletters

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
	ErrNotFound       = errors.New("newsletter subscriber not found")
	ErrDuplicateEmail = errors.New("email already subscribed")
	ErrQueryRequired  = errors.New("search query is required")
)

// trendMonths is how far back SubscriptionTrends reaches.
const trendMonths = 6

type Notifier interface {
	SendNewsletterWelcome(ctx context.Context, s Subscriber) (string, error)
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

func (s *Service) List(ctx context.Context) ([]Subscriber, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id string) (Subscriber, error) {
	sub, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Subscriber{}, ErrNotFound
		}
		return Subscriber{}, err
	}
	return sub, nil
}

// Subscribe registers an active subscriber. An email that is already known,
// active or not, is rejected.
func (s *Service) Subscribe(ctx context.Context, req SubscribeRequest) (Subscriber, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.val.Check(req); err != nil {
		return Subscriber{}, err
	}

	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return Subscriber{}, ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrNotFound) {
		return Subscriber{}, err
	}

	sub := Subscriber{
		ID:        primitive.NewObjectID().Hex(),
		Email:     req.Email,
		IsActive:  true,
		CreatedAt: s.now().In(s.location),
	}
	if err := s.repo.Create(ctx, sub); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return Subscriber{}, ErrDuplicateEmail
		}
		return Subscriber{}, err
	}
	return sub, nil
}

// ToggleStatus sets isActive to *active, or flips it when active is nil.
func (s *Service) ToggleStatus(ctx context.Context, id string, active *bool) (Subscriber, error) {
	current, err := s.GetByID(ctx, id)
	if err != nil {
		return Subscriber{}, err
	}

	next := !current.IsActive
	if active != nil {
		next = *active
	}

	updated, err := s.repo.SetActive(ctx, current.ID, next)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Subscriber{}, ErrNotFound
		}
		return Subscriber{}, err
	}
	return updated, nil
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

func (s *Service) Search(ctx context.Context, query string) ([]Subscriber, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrQueryRequired
	}
	return s.repo.Search(ctx, query)
}

// Export lists active subscribers, newest first.
func (s *Service) Export(ctx context.Context) ([]ExportRow, error) {
	return s.repo.ListActive(ctx)
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	now := s.now().In(s.location)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.location)
	trendStart := now.AddDate(0, -trendMonths, 0)

	var stats Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.Count(gctx, false)
		stats.TotalSubscribers = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.Count(gctx, true)
		stats.ActiveSubscribers = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountSince(gctx, monthStart)
		stats.SubscribersThisMonth = n
		return err
	})
	g.Go(func() error {
		rows, err := s.repo.CountByMonth(gctx, trendStart, s.location)
		stats.SubscriptionTrends = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	stats.InactiveSubscribers = stats.TotalSubscribers - stats.ActiveSubscribers
	if stats.SubscriptionTrends == nil {
		stats.SubscriptionTrends = []store.MonthCount{}
	}
	return stats, nil
}

func (s *Service) NotifySubscribed(ctx context.Context, sub Subscriber) error {
	if s.notifier == nil {
		return nil
	}
	_, err := s.notifier.SendNewsletterWelcome(ctx, sub)
	return err
}
