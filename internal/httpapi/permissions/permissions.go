// Package permissions holds the access-control decision table for the
// whole API. Handlers build a Subject from the authenticated request and
// ask Allowed before touching a resource; the answer depends only on the
// subject's role, its ownership relation to the resource, and the action.
package permissions

import "yamdb/internal/httpapi/models"

type Action int

const (
	ActionRead Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
)

type Resource int

const (
	// ResourceCatalog covers categories, genres and titles: public read,
	// admin-only write
	ResourceCatalog Resource = iota
	ResourceReview
	ResourceComment
	ResourceUser
)

// RoleAnonymous marks an unauthenticated subject. Authenticated roles are
// the models.Role* constants.
const RoleAnonymous = "anonymous"

// Subject is who is asking. IsOwner is true when the subject authored the
// specific resource instance being acted on; it is meaningless for
// collection-level actions.
type Subject struct {
	Role    string
	IsOwner bool
}

func (s Subject) Authenticated() bool {
	return s.Role != RoleAnonymous && s.Role != ""
}

// Allowed decides whether the subject may perform the action on the
// resource. Rules are evaluated in precedence order; anything not
// explicitly granted is denied.
func Allowed(s Subject, action Action, resource Resource) bool {
	// catalog, review and comment reads are public
	if action == ActionRead && resource != ResourceUser {
		return true
	}

	switch resource {
	case ResourceCatalog:
		return s.Role == models.RoleAdmin

	case ResourceReview, ResourceComment:
		switch action {
		case ActionCreate:
			return s.Authenticated()
		case ActionUpdate, ActionDelete:
			if !s.Authenticated() {
				return false
			}
			return s.IsOwner || s.Role == models.RoleModerator || s.Role == models.RoleAdmin
		}

	case ResourceUser:
		// self-access is resolved by the caller marking IsOwner; arbitrary
		// user records are admin territory
		switch action {
		case ActionRead, ActionUpdate:
			if !s.Authenticated() {
				return false
			}
			return s.IsOwner || s.Role == models.RoleAdmin
		case ActionCreate, ActionDelete:
			return s.Role == models.RoleAdmin
		}
	}

	return false
}

// CanAssignRole reports whether the subject may change a user's role.
// Only admins assign roles; everyone else keeps whatever they have.
func CanAssignRole(s Subject) bool {
	return s.Role == models.RoleAdmin
}
