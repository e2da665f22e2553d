package profile

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/holthoefer/qmflow/internal/models"
	"github.com/holthoefer/qmflow/internal/store"
)

// fakeProfileStore is an in-memory store.ProfileStore for tests.
// Set failAll to simulate an unreachable store.
type fakeProfileStore struct {
	mu       sync.Mutex
	profiles map[string]*models.UserProfile
	failAll  bool
	creates  int
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{profiles: make(map[string]*models.UserProfile)}
}

var _ store.ProfileStore = (*fakeProfileStore)(nil)

func (f *fakeProfileStore) Get(ctx context.Context, uid string) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, fmt.Errorf("connection refused")
	}
	p, ok := f.profiles[uid]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", uid, store.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfileStore) CreateIfAbsent(ctx context.Context, profile *models.UserProfile) (*models.UserProfile, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, false, fmt.Errorf("connection refused")
	}
	if existing, ok := f.profiles[profile.UID]; ok {
		cp := *existing
		return &cp, false, nil
	}
	now := time.Now().UTC()
	stored := *profile
	stored.CreatedAt = now
	stored.UpdatedAt = now
	f.profiles[profile.UID] = &stored
	f.creates++
	cp := stored
	return &cp, true, nil
}

func (f *fakeProfileStore) UpdateEmail(ctx context.Context, uid, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return fmt.Errorf("connection refused")
	}
	p, ok := f.profiles[uid]
	if !ok {
		return fmt.Errorf("profile %s: %w", uid, store.ErrNotFound)
	}
	p.Email = email
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeProfileStore) UpdateRoleStatus(ctx context.Context, uid string, role *models.Role, status *models.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return fmt.Errorf("connection refused")
	}
	p, ok := f.profiles[uid]
	if !ok {
		return fmt.Errorf("profile %s: %w", uid, store.ErrNotFound)
	}
	if role != nil {
		p.Role = *role
	}
	if status != nil {
		p.Status = *status
	}
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (f *fakeProfileStore) List(ctx context.Context) ([]*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, fmt.Errorf("connection refused")
	}
	out := make([]*models.UserProfile, 0, len(f.profiles))
	for _, p := range f.profiles {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}
