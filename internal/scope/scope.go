// Package scope enforces tenant isolation. Every data operation takes its
// tenant boundary exclusively from the resolved principal, never from
// client input; a note that exists under another tenant is reported the
// same way as one that does not exist at all.
package scope

import (
	"context"
	"errors"

	"notes-service/internal/auth"
	"notes-service/internal/model"
	"notes-service/internal/store"
)

// Filter scopes all note and tenant operations to the caller's tenant.
type Filter struct {
	store store.Store
}

// NewFilter creates a filter backed by the given store.
func NewFilter(st store.Store) *Filter {
	return &Filter{store: st}
}

// FindNote returns the note only if it belongs to the principal's tenant.
// Absent and cross-tenant notes are both store.ErrNotFound.
func (f *Filter) FindNote(ctx context.Context, p *auth.Principal, noteID uint) (*model.Note, error) {
	return f.store.FindNoteByIDAndTenant(ctx, noteID, p.TenantID)
}

// ListNotes returns the principal's tenant's notes, newest first.
func (f *Filter) ListNotes(ctx context.Context, p *auth.Principal) ([]model.Note, error) {
	return f.store.ListNotesByTenant(ctx, p.TenantID)
}

// UpdateNote mutates the note in place. Tenant scope is re-validated by
// the store inside the mutating statement itself, not from an earlier
// check.
func (f *Filter) UpdateNote(ctx context.Context, p *auth.Principal, noteID uint, title, content string) (*model.Note, error) {
	return f.store.UpdateNote(ctx, noteID, p.TenantID, title, content)
}

// DeleteNote removes the note if it is in the principal's tenant.
func (f *Filter) DeleteNote(ctx context.Context, p *auth.Principal, noteID uint) error {
	return f.store.DeleteNote(ctx, noteID, p.TenantID)
}

// UpgradePlan upgrades the tenant addressed by slug to the pro plan. The
// slug must resolve to the principal's own tenant; a mismatch is
// ErrForbidden, not ErrNotFound, because slugs are public identifiers and
// existence is not a secret at this layer. The role check is the access
// gate's job and must already have passed.
func (f *Filter) UpgradePlan(ctx context.Context, p *auth.Principal, slug string) (*model.Tenant, error) {
	tenant, err := f.store.FindTenantBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrTenantNotFound) {
			return nil, auth.ErrForbidden
		}
		return nil, err
	}
	if tenant.ID != p.TenantID {
		return nil, auth.ErrForbidden
	}
	return f.store.UpgradeTenantPlan(ctx, slug)
}
