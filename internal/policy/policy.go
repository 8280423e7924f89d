// Package policy decides who may do what.  Handlers and services call Allow
// instead of checking roles or ownership inline.
package policy

import "errors"

// Roles carried in the JWT "role" claim.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

var (
	// ErrUnauthenticated is returned when an action needs an identity and
	// none was supplied.  Handlers map it to 401.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden is returned when the actor lacks the role or ownership
	// the action needs.  Handlers map it to 403.
	ErrForbidden = errors.New("forbidden")
)

// Action is an operation on a resource.
type Action string

const (
	ActionRead   Action = "read"
	ActionList   Action = "list"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Kind names a resource type.
type Kind string

const (
	KindBuilding    Kind = "building"
	KindRoom        Kind = "room"
	KindReservation Kind = "reservation"
	KindUser        Kind = "user"
)

// Actor is the caller.  The zero value is an anonymous visitor.
type Actor struct {
	UserID uint64
	Role   string
}

// Authenticated reports whether the actor carries an identity.
func (a Actor) Authenticated() bool { return a.UserID != 0 }

// IsAdmin reports whether the actor has the administrative role.
func (a Actor) IsAdmin() bool { return a.Authenticated() && a.Role == RoleAdmin }

// Resource identifies what an action targets.  OwnerID is the author of a
// reservation and zero for kinds without an owner or for collections.
type Resource struct {
	Kind    Kind
	OwnerID uint64
}

// Allow returns nil when actor may perform action on res.
//
//	building, room:  read/list anyone; writes admin only
//	reservation:     read/list/create authenticated; update author;
//	                 delete author or admin
//	user:            list/read admin only
func Allow(actor Actor, action Action, res Resource) error {
	switch res.Kind {
	case KindBuilding, KindRoom:
		if action == ActionRead || action == ActionList {
			return nil
		}
		return requireAdmin(actor)

	case KindReservation:
		if !actor.Authenticated() {
			return ErrUnauthenticated
		}
		switch action {
		case ActionRead, ActionList, ActionCreate:
			return nil
		case ActionUpdate:
			if res.OwnerID == actor.UserID {
				return nil
			}
			return ErrForbidden
		case ActionDelete:
			if res.OwnerID == actor.UserID || actor.IsAdmin() {
				return nil
			}
			return ErrForbidden
		}

	case KindUser:
		return requireAdmin(actor)
	}
	return ErrForbidden
}

func requireAdmin(actor Actor) error {
	if !actor.Authenticated() {
		return ErrUnauthenticated
	}
	if !actor.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
