// Package auth resolves authenticated principals and enforces role-based
// access. A Principal is resolved fresh from the store on every request;
// role and tenant are never trusted from the bearer token, so deleting a
// user revokes access immediately even while their token is still valid.
package auth

import (
	"context"
	"errors"

	"notes-service/internal/model"
	"notes-service/internal/store"
)

var (
	// ErrUnauthenticated is returned when the caller's credential is
	// missing, invalid, expired, or refers to a user that no longer exists.
	ErrUnauthenticated = errors.New("auth: unauthenticated")

	// ErrForbidden is returned when an authenticated caller's role or
	// tenant ownership does not permit the operation.
	ErrForbidden = errors.New("auth: forbidden")
)

// Principal is the authenticated identity making a request, with its role
// and tenant resolved. It is owned by the request and never cached.
type Principal struct {
	UserID     uint
	Email      string
	Role       model.Role
	TenantID   uint
	TenantSlug string
	TenantPlan model.Plan
}

// Resolver loads principals from the persistence collaborator.
type Resolver struct {
	store store.Store
}

// NewResolver creates a resolver backed by the given store.
func NewResolver(st store.Store) *Resolver {
	return &Resolver{store: st}
}

// Resolve looks up the principal id and returns the full Principal,
// including the denormalized tenant plan, from a single logical read.
// A missing or deleted user yields ErrUnauthenticated regardless of
// token validity.
func (r *Resolver) Resolve(ctx context.Context, principalID uint) (*Principal, error) {
	user, err := r.store.FindPrincipalByID(ctx, principalID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return &Principal{
		UserID:     user.ID,
		Email:      user.Email,
		Role:       user.Role,
		TenantID:   user.TenantID,
		TenantSlug: user.Tenant.Slug,
		TenantPlan: user.Tenant.Plan,
	}, nil
}
