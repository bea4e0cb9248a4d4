// Package authz holds the account access policy. Decisions are pure
// functions of the acting user's snapshot and the target account id; callers
// establish that an authenticated user exists before asking.
package authz

import "github.com/avelarde/campushub-be/internal/models"

// Decision is the outcome of a policy check. Reason is a user-facing denial
// message, empty when allowed.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// CanEdit allows a user to edit their own account, and admins to edit any
// account.
func CanEdit(actor models.UserSnapshot, targetID int64) Decision {
	if actor.ID == targetID || actor.Role == models.RoleAdmin {
		return allow()
	}
	return deny("You do not have permission to edit this account.")
}

// CanDelete allows admins to delete accounts other than their own. Self
// deletion is blocked even for admins.
func CanDelete(actor models.UserSnapshot, targetID int64) Decision {
	if actor.Role != models.RoleAdmin {
		return deny("You do not have permission to delete accounts.")
	}
	if actor.ID == targetID {
		return deny("You cannot delete your own account.")
	}
	return allow()
}
