// Package authz holds the access decisions for items and chat
// threads. Every function is a pure check over already-loaded
// snapshots; callers pass the identity explicitly and map the returned
// sentinel errors onto HTTP statuses.
package authz

import "lostfound/internal/domain"

// RequireAdmin allows only the admin identity.
func RequireAdmin(u *domain.User) error {
	if u == nil {
		return domain.ErrUnauthorized
	}
	if !u.IsAdmin {
		return domain.ErrForbidden
	}
	return nil
}

// CanCreateItem allows verified accounts to post items.
func CanCreateItem(u *domain.User) error {
	if u == nil {
		return domain.ErrUnauthorized
	}
	if !u.IsVerified && !u.IsAdmin {
		return domain.ErrForbidden
	}
	return nil
}

// CanClaim allows claiming an item that is not already claimed. The
// claimant is not required to differ from the creator.
func CanClaim(u *domain.User, it *domain.Item) error {
	if u == nil {
		return domain.ErrUnauthorized
	}
	if it == nil {
		return domain.ErrNotFound
	}
	if it.Status == domain.StatusClaimed {
		return domain.ErrConflict
	}
	return nil
}

// CanDeleteItem allows an item's creator to delete it.
func CanDeleteItem(u *domain.User, it *domain.Item) error {
	if u == nil {
		return domain.ErrUnauthorized
	}
	if it == nil {
		return domain.ErrNotFound
	}
	if it.CreatedBy != u.ID {
		return domain.ErrForbidden
	}
	return nil
}

// CanAccessChat allows reading and writing an item's chat. The
// decision follows the item's current state: the creator, the current
// claimant, and the admin qualify. An ex-claimant loses access the
// moment the item is re-claimed by someone else.
func CanAccessChat(u *domain.User, it *domain.Item) error {
	if u == nil {
		return domain.ErrUnauthorized
	}
	if it == nil {
		return domain.ErrNotFound
	}
	if u.IsAdmin || u.ID == it.CreatedBy {
		return nil
	}
	if it.ClaimedBy != nil && u.ID == *it.ClaimedBy {
		return nil
	}
	return domain.ErrForbidden
}
