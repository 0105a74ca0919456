// Package rbac holds the static role to action permission table.
package rbac

import "github.com/Baaaki/event-manager/internal/models"

// Action names an operation a role may be granted.
type Action uint8

const (
	ActionPostEvent Action = iota + 1
	ActionGetEvents
	ActionGetEvent
	ActionPutEvent
	ActionDeleteEvent
	ActionDeleteUser
	ActionPutUser
)

// AllActions lists every action in declaration order.
var AllActions = []Action{
	ActionPostEvent,
	ActionGetEvents,
	ActionGetEvent,
	ActionPutEvent,
	ActionDeleteEvent,
	ActionDeleteUser,
	ActionPutUser,
}

func (a Action) String() string {
	switch a {
	case ActionPostEvent:
		return "post_event"
	case ActionGetEvents:
		return "get_events"
	case ActionGetEvent:
		return "get_event"
	case ActionPutEvent:
		return "put_event"
	case ActionDeleteEvent:
		return "delete_event"
	case ActionDeleteUser:
		return "delete_user"
	case ActionPutUser:
		return "put_user"
	default:
		return "unknown"
	}
}

// ActionSet is a bit set of actions.
type ActionSet uint16

func NewActionSet(actions ...Action) ActionSet {
	var s ActionSet
	for _, a := range actions {
		s |= 1 << a
	}
	return s
}

func (s ActionSet) Has(a Action) bool {
	return a != 0 && s&(1<<a) != 0
}

// Actions returns the members of the set in declaration order.
func (s ActionSet) Actions() []Action {
	var out []Action
	for _, a := range AllActions {
		if s.Has(a) {
			out = append(out, a)
		}
	}
	return out
}

// Policy is immutable once built; it is shared by every request.
type Policy struct {
	admin  ActionSet
	vendor ActionSet
	guest  ActionSet
}

// NewPolicy builds a policy from explicit per-role grants.
func NewPolicy(admin, vendor, guest ActionSet) *Policy {
	return &Policy{admin: admin, vendor: vendor, guest: guest}
}

// DefaultPolicy is the permission table the service runs with.
func DefaultPolicy() *Policy {
	return NewPolicy(
		NewActionSet(
			ActionPostEvent, ActionGetEvents, ActionGetEvent, ActionPutEvent, ActionDeleteEvent,
			ActionDeleteUser, ActionPutUser,
		),
		NewActionSet(
			ActionPostEvent, ActionGetEvents, ActionGetEvent, ActionPutEvent, ActionDeleteEvent,
		),
		NewActionSet(
			ActionGetEvents, ActionGetEvent,
		),
	)
}

// Grants returns the action set for a role. Unknown roles get nothing.
func (p *Policy) Grants(role models.Role) ActionSet {
	switch role {
	case models.RoleAdmin:
		return p.admin
	case models.RoleVendor:
		return p.vendor
	case models.RoleGuest:
		return p.guest
	default:
		return 0
	}
}

// Allows reports whether role may perform action.
func (p *Policy) Allows(role models.Role, action Action) bool {
	return p.Grants(role).Has(action)
}

// RolesAllowed lists the roles that hold action, e.g. to describe a route.
func (p *Policy) RolesAllowed(action Action) []models.Role {
	var roles []models.Role
	for _, r := range []models.Role{models.RoleAdmin, models.RoleVendor, models.RoleGuest} {
		if p.Allows(r, action) {
			roles = append(roles, r)
		}
	}
	return roles
}
