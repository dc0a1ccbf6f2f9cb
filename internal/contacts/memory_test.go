package contacts

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
	mu      sync.Mutex
	items   map[string]Contact
	failErr error
	// skipEmailCheck makes FindByEmail miss, as when two submissions race.
	skipEmailCheck bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[string]Contact{}}
}

func (m *memoryRepo) Create(ctx context.Context, c Contact) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.Email == c.Email {
			return fmt.Errorf("%w: E11000 duplicate key error", store.ErrDuplicateKey)
		}
	}
	m.items[c.ID] = c
	return nil
}

func (m *memoryRepo) GetByID(ctx context.Context, id string) (Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return Contact{}, store.ErrNotFound
	}
	return c, nil
}

func (m *memoryRepo) FindByEmail(ctx context.Context, email string) (Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.skipEmailCheck {
		for _, c := range m.items {
			if c.Email == email {
				return c, nil
			}
		}
	}
	return Contact{}, store.ErrNotFound
}

func (m *memoryRepo) List(ctx context.Context) ([]Contact, error) {
	return m.filter(func(Contact) bool { return true }), nil
}

func (m *memoryRepo) Delete(ctx context.Context, id string) (Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return Contact{}, store.ErrNotFound
	}
	delete(m.items, id)
	return c, nil
}

func (m *memoryRepo) Search(ctx context.Context, query string) ([]Contact, error) {
	q := strings.ToLower(query)
	return m.filter(func(c Contact) bool {
		for _, f := range []string{c.FullName, c.Email, c.City} {
			if strings.Contains(strings.ToLower(f), q) {
				return true
			}
		}
		return false
	}), nil
}

func (m *memoryRepo) Count(ctx context.Context) (int64, error) {
	if m.failErr != nil {
		return 0, m.failErr
	}
	return int64(len(m.filter(func(Contact) bool { return true }))), nil
}

func (m *memoryRepo) CountSince(ctx context.Context, since time.Time) (int64, error) {
	return int64(len(m.filter(func(c Contact) bool { return !c.CreatedAt.Before(since) }))), nil
}

func (m *memoryRepo) CountByCity(ctx context.Context) ([]store.GroupCount, error) {
	counts := map[string]int64{}
	for _, c := range m.filter(func(Contact) bool { return true }) {
		counts[c.City]++
	}
	rows := make([]store.GroupCount, 0, len(counts))
	for city, n := range counts {
		rows = append(rows, store.GroupCount{Key: city, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Key < rows[j].Key
	})
	return rows, nil
}

func (m *memoryRepo) filter(keep func(Contact) bool) []Contact {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Contact, 0, len(m.items))
	for _, c := range m.items {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

type recordingNotifier struct {
	sent chan Contact
	err  error
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{sent: make(chan Contact, 4)}
}

func (n *recordingNotifier) SendContactNotification(ctx context.Context, c Contact) (string, error) {
	n.sent <- c
	return "msg-1", n.err
}
