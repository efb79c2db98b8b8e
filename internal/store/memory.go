package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"notes-service/internal/model"
)

// MemStore is an in-memory Store used by tests. A single mutex guards
// every operation, so the count check and the insert inside
// CreateNoteWithinQuota are atomic the same way the database
// implementation's transaction is.
type MemStore struct {
	mu      sync.Mutex
	users   map[uint]*model.User
	tenants map[uint]*model.Tenant
	notes   map[uint]*model.Note

	nextUserID   uint
	nextTenantID uint
	nextNoteID   uint

	clock func() time.Time
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		users:        make(map[uint]*model.User),
		tenants:      make(map[uint]*model.Tenant),
		notes:        make(map[uint]*model.Note),
		nextUserID:   1,
		nextTenantID: 1,
		nextNoteID:   1,
		clock:        time.Now,
	}
}

// WithClock overrides the clock for tests that assert on ordering.
func (s *MemStore) WithClock(clock func() time.Time) *MemStore {
	s.clock = clock
	return s
}

func (s *MemStore) FindPrincipalByID(ctx context.Context, id uint) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return s.userWithTenant(user), nil
}

func (s *MemStore) FindUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == email {
			return s.userWithTenant(user), nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *MemStore) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return ErrEmailTaken
		}
	}
	user.ID = s.nextUserID
	s.nextUserID++
	user.CreatedAt = s.clock()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *MemStore) CreateTenant(ctx context.Context, tenant *model.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenant.ID = s.nextTenantID
	s.nextTenantID++
	if tenant.Plan == "" {
		tenant.Plan = model.PlanFree
	}
	tenant.CreatedAt = s.clock()
	tenant.UpdatedAt = tenant.CreatedAt
	stored := *tenant
	s.tenants[tenant.ID] = &stored
	return nil
}

func (s *MemStore) FindTenantByID(ctx context.Context, id uint) (*model.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenant, ok := s.tenants[id]
	if !ok {
		return nil, ErrTenantNotFound
	}
	copied := *tenant
	return &copied, nil
}

func (s *MemStore) FindTenantBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tenant := range s.tenants {
		if tenant.Slug == slug {
			copied := *tenant
			return &copied, nil
		}
	}
	return nil, ErrTenantNotFound
}

func (s *MemStore) UpgradeTenantPlan(ctx context.Context, slug string) (*model.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tenant := range s.tenants {
		if tenant.Slug == slug {
			if tenant.Plan == model.PlanPro {
				return nil, ErrAlreadyPro
			}
			tenant.Plan = model.PlanPro
			tenant.UpdatedAt = s.clock()
			copied := *tenant
			return &copied, nil
		}
	}
	return nil, ErrTenantNotFound
}

func (s *MemStore) CountNotesByTenant(ctx context.Context, tenantID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countNotesLocked(tenantID), nil
}

func (s *MemStore) CreateNoteWithinQuota(ctx context.Context, note *model.Note, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tenants[note.TenantID]; !ok {
		return ErrTenantNotFound
	}
	if limit >= 0 && s.countNotesLocked(note.TenantID) >= int64(limit) {
		return ErrQuotaExceeded
	}
	note.ID = s.nextNoteID
	s.nextNoteID++
	note.CreatedAt = s.clock()
	note.UpdatedAt = note.CreatedAt
	stored := *note
	s.notes[note.ID] = &stored
	return nil
}

func (s *MemStore) FindNoteByIDAndTenant(ctx context.Context, id, tenantID uint) (*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, ok := s.notes[id]
	if !ok || note.TenantID != tenantID {
		return nil, ErrNotFound
	}
	return s.noteWithUser(note), nil
}

func (s *MemStore) ListNotesByTenant(ctx context.Context, tenantID uint) ([]model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var notes []model.Note
	for _, note := range s.notes {
		if note.TenantID == tenantID {
			notes = append(notes, *s.noteWithUser(note))
		}
	}
	sort.Slice(notes, func(i, j int) bool {
		if !notes[i].CreatedAt.Equal(notes[j].CreatedAt) {
			return notes[i].CreatedAt.After(notes[j].CreatedAt)
		}
		return notes[i].ID > notes[j].ID
	})
	return notes, nil
}

func (s *MemStore) UpdateNote(ctx context.Context, id, tenantID uint, title, content string) (*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, ok := s.notes[id]
	if !ok || note.TenantID != tenantID {
		return nil, ErrNotFound
	}
	note.Title = title
	note.Content = content
	note.UpdatedAt = s.clock()
	return s.noteWithUser(note), nil
}

func (s *MemStore) DeleteNote(ctx context.Context, id, tenantID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, ok := s.notes[id]
	if !ok || note.TenantID != tenantID {
		return ErrNotFound
	}
	delete(s.notes, id)
	return nil
}

func (s *MemStore) countNotesLocked(tenantID uint) int64 {
	var count int64
	for _, note := range s.notes {
		if note.TenantID == tenantID {
			count++
		}
	}
	return count
}

func (s *MemStore) userWithTenant(user *model.User) *model.User {
	copied := *user
	if tenant, ok := s.tenants[user.TenantID]; ok {
		copied.Tenant = *tenant
	}
	return &copied
}

func (s *MemStore) noteWithUser(note *model.Note) *model.Note {
	copied := *note
	if user, ok := s.users[note.UserID]; ok {
		copied.User = *user
	}
	return &copied
}
