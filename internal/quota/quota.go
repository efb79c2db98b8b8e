// Package quota admits or rejects note creation against the tenant's plan
// limit. The count check and the insert are a single atomic step in the
// store, so concurrent creates for one tenant can never overshoot the cap.
package quota

import (
	"context"

	"notes-service/internal/auth"
	"notes-service/internal/model"
	"notes-service/internal/store"
)

// Enforcer guards resource-creating operations with the plan limit table.
type Enforcer struct {
	store store.Store
}

// NewEnforcer creates an enforcer backed by the given store.
func NewEnforcer(st store.Store) *Enforcer {
	return &Enforcer{store: st}
}

// CreateNote admits the creation if the principal's tenant is under its
// plan limit, then inserts. The note's tenant and owner are stamped from
// the principal, never from client input. On rejection the store returns
// store.ErrQuotaExceeded and nothing is written.
//
// The limit is taken from the plan resolved with the principal. Plan
// changes are monotonic (free -> pro), so a stale limit is always the
// lower one and the ceiling invariant holds even if an upgrade lands
// mid-request.
func (e *Enforcer) CreateNote(ctx context.Context, p *auth.Principal, title, content string) (*model.Note, error) {
	note := &model.Note{
		Title:    title,
		Content:  content,
		UserID:   p.UserID,
		TenantID: p.TenantID,
	}
	if err := e.store.CreateNoteWithinQuota(ctx, note, p.TenantPlan.NoteLimit()); err != nil {
		return nil, err
	}
	return note, nil
}
