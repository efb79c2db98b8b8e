package auth

import "notes-service/internal/model"

// Authorize is a pure membership check: it allows the principal only if
// its role is in the allowed set. There is no role hierarchy; admin is
// not a superset of member unless both are listed. Callers must only
// invoke this after authentication has succeeded.
func Authorize(p *Principal, allowed ...model.Role) error {
	if p == nil {
		return ErrUnauthenticated
	}
	for _, role := range allowed {
		if p.Role == role {
			return nil
		}
	}
	return ErrForbidden
}
