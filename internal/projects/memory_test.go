package projects

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"realestate-backend/internal/store"
	"realestate-backend/internal/uploads"
)

type memoryRepo struct {
	mu        sync.Mutex
	items     map[string]Project
	createErr error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[string]Project{}}
}

func (m *memoryRepo) Create(ctx context.Context, item Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.items[item.ID] = item
	return nil
}

func (m *memoryRepo) GetByID(ctx context.Context, id string) (Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return Project{}, store.ErrNotFound
	}
	return item, nil
}

func (m *memoryRepo) List(ctx context.Context) ([]Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(Project) bool { return true }), nil
}

func (m *memoryRepo) Update(ctx context.Context, id string, set bson.M) (Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return Project{}, store.ErrNotFound
	}
	for k, v := range set {
		switch k {
		case "name":
			item.Name = v.(string)
		case "description":
			item.Description = v.(string)
		case "image":
			item.Image = v.(string)
		case "updatedAt":
			item.UpdatedAt = v.(time.Time)
		}
	}
	m.items[id] = item
	return item, nil
}

func (m *memoryRepo) Delete(ctx context.Context, id string) (Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return Project{}, store.ErrNotFound
	}
	delete(m.items, id)
	return item, nil
}

func (m *memoryRepo) Search(ctx context.Context, query string) ([]Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q := strings.ToLower(query)
	return m.sorted(func(p Project) bool {
		return strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Description), q)
	}), nil
}

func (m *memoryRepo) sorted(keep func(Project) bool) []Project {
	out := make([]Project, 0, len(m.items))
	for _, item := range m.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

type fakeImages struct {
	mu      sync.Mutex
	next    int
	err     error
	removed []string
}

func (f *fakeImages) Process(ctx context.Context, up uploads.Upload) (uploads.Stored, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return uploads.Stored{}, f.err
	}
	f.next++
	url := "/uploads/image-" + strings.Repeat("x", f.next) + "-cropped.jpg"
	return uploads.Stored{URL: url, Width: 450, Height: 350}, nil
}

func (f *fakeImages) Remove(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, url)
}

// steppedClock returns a clock that advances one second per call.
func steppedClock() func() time.Time {
	t := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}
