package newsletters

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"realestate-backend/internal/store"
)

type memoryRepo struct {
	mu    sync.Mutex
	items map[string]Subscriber
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[string]Subscriber{}}
}

func (m *memoryRepo) Create(ctx context.Context, s Subscriber) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.Email == s.Email {
			return fmt.Errorf("%w: email_1 dup key", store.ErrDuplicateKey)
		}
	}
	m.items[s.ID] = s
	return nil
}

func (m *memoryRepo) GetByID(ctx context.Context, id string) (Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.items[id]
	if !ok {
		return Subscriber{}, store.ErrNotFound
	}
	return s, nil
}

func (m *memoryRepo) FindByEmail(ctx context.Context, email string) (Subscriber, error) {
	for _, s := range m.all() {
		if s.Email == email {
			return s, nil
		}
	}
	return Subscriber{}, store.ErrNotFound
}

func (m *memoryRepo) List(ctx context.Context) ([]Subscriber, error) {
	return m.all(), nil
}

func (m *memoryRepo) ListActive(ctx context.Context) ([]ExportRow, error) {
	rows := []ExportRow{}
	for _, s := range m.all() {
		if s.IsActive {
			rows = append(rows, ExportRow{ID: s.ID, Email: s.Email, CreatedAt: s.CreatedAt})
		}
	}
	return rows, nil
}

func (m *memoryRepo) SetActive(ctx context.Context, id string, active bool) (Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.items[id]
	if !ok {
		return Subscriber{}, store.ErrNotFound
	}
	s.IsActive = active
	m.items[id] = s
	return s, nil
}

func (m *memoryRepo) Delete(ctx context.Context, id string) (Subscriber, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.items[id]
	if !ok {
		return Subscriber{}, store.ErrNotFound
	}
	delete(m.items, id)
	return s, nil
}

func (m *memoryRepo) Search(ctx context.Context, query string) ([]Subscriber, error) {
	out := []Subscriber{}
	for _, s := range m.all() {
		if strings.Contains(strings.ToLower(s.Email), strings.ToLower(query)) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memoryRepo) Count(ctx context.Context, activeOnly bool) (int64, error) {
	var n int64
	for _, s := range m.all() {
		if !activeOnly || s.IsActive {
			n++
		}
	}
	return n, nil
}

func (m *memoryRepo) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	for _, s := range m.all() {
		if !s.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memoryRepo) CountByMonth(ctx context.Context, since time.Time, loc *time.Location) ([]store.MonthCount, error) {
	counts := map[store.MonthKey]int64{}
	for _, s := range m.all() {
		if s.CreatedAt.Before(since) {
			continue
		}
		local := s.CreatedAt.In(loc)
		counts[store.MonthKey{Year: local.Year(), Month: int(local.Month())}]++
	}
	rows := make([]store.MonthCount, 0, len(counts))
	for k, n := range counts {
		rows = append(rows, store.MonthCount{Key: k, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Key.Year != rows[j].Key.Year {
			return rows[i].Key.Year < rows[j].Key.Year
		}
		return rows[i].Key.Month < rows[j].Key.Month
	})
	return rows, nil
}

func (m *memoryRepo) all() []Subscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Subscriber, 0, len(m.items))
	for _, s := range m.items {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

type welcomeRecorder struct {
	sent chan string
}

func (w *welcomeRecorder) SendNewsletterWelcome(ctx context.Context, s Subscriber) (string, error) {
	w.sent <- s.Email
	return "", nil
}
