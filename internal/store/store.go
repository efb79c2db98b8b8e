// Package store defines the persistence collaborator for the notes
// service. All tenant-scoped queries and mutations go through this
// interface; handlers never touch the database directly, which keeps
// tenant scoping enforceable by construction and lets tests substitute
// the in-memory implementation.
package store

import (
	"context"
	"errors"

	"notes-service/internal/model"
)

// Sentinel errors for tenant isolation and quota violations.
var (
	// ErrNotFound is returned when a note does not exist or exists under
	// a different tenant. The two cases are intentionally conflated so a
	// caller cannot probe for resources across the tenant boundary.
	ErrNotFound = errors.New("store: note not found")

	// ErrTenantNotFound is returned when the target tenant does not exist.
	ErrTenantNotFound = errors.New("store: tenant not found")

	// ErrUserNotFound is returned when the user does not exist or has
	// been deleted.
	ErrUserNotFound = errors.New("store: user not found")

	// ErrQuotaExceeded is returned when a note creation would exceed the
	// tenant's plan limit. No note is created.
	ErrQuotaExceeded = errors.New("store: note quota exceeded")

	// ErrAlreadyPro is returned when upgrading a tenant that is already
	// on the pro plan. The plan is left unchanged.
	ErrAlreadyPro = errors.New("store: tenant already on pro plan")

	// ErrEmailTaken is returned when registering an email that already
	// has an account.
	ErrEmailTaken = errors.New("store: email already registered")
)

// Store is the persistence collaborator. Each method is a single logical
// operation; CreateNoteWithinQuota is the combined count-and-create form
// the quota enforcer requires to stay atomic under concurrent creates.
type Store interface {
	// FindPrincipalByID loads a user together with their tenant in one
	// logical read, so the caller never observes a plan from a second,
	// later round trip.
	FindPrincipalByID(ctx context.Context, id uint) (*model.User, error)
	FindUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error

	CreateTenant(ctx context.Context, tenant *model.Tenant) error
	FindTenantByID(ctx context.Context, id uint) (*model.Tenant, error)
	FindTenantBySlug(ctx context.Context, slug string) (*model.Tenant, error)
	// UpgradeTenantPlan moves the tenant free -> pro. The transition is
	// conditional: an already-pro tenant yields ErrAlreadyPro and no write.
	UpgradeTenantPlan(ctx context.Context, slug string) (*model.Tenant, error)

	CountNotesByTenant(ctx context.Context, tenantID uint) (int64, error)
	// CreateNoteWithinQuota inserts the note only if the tenant's note
	// count is below limit; the check and the insert are one atomic unit
	// with respect to other creates for the same tenant. A negative limit
	// means unbounded.
	CreateNoteWithinQuota(ctx context.Context, note *model.Note, limit int) error
	FindNoteByIDAndTenant(ctx context.Context, id, tenantID uint) (*model.Note, error)
	// ListNotesByTenant returns the tenant's notes ordered by creation
	// time, newest first.
	ListNotesByTenant(ctx context.Context, tenantID uint) ([]model.Note, error)
	// UpdateNote and DeleteNote re-validate tenant scope in the mutating
	// statement itself; an out-of-scope or missing note yields ErrNotFound.
	UpdateNote(ctx context.Context, id, tenantID uint, title, content string) (*model.Note, error)
	DeleteNote(ctx context.Context, id, tenantID uint) error
}
