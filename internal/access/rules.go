// AngelaMos | 2026
// rules.go

// Package access decides who may read or mutate which resource. Rules are
// held in a single table so the whole policy is auditable in one place and
// testable without any HTTP wiring.
package access

type Role string

const (
	RoleAnonymous Role = ""
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ParseRole maps a stored role string onto the closed enum. Unrecognized
// values report false and deny everything an anonymous actor would be
// denied, rather than being compared as raw strings downstream.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleModerator, RoleAdmin:
		return Role(s), true
	default:
		return RoleAnonymous, false
	}
}

func (r Role) Elevated() bool {
	return r == RoleModerator || r == RoleAdmin
}

type Action int

const (
	ActionRead Action = iota
	ActionWrite
)

type Resource int

const (
	ResourceCategory Resource = iota
	ResourceGenre
	ResourceTitle
	ResourceReview
	ResourceComment
	ResourceUserAdmin
	ResourceSelfProfile
)

// Actor is the identity resolved from a bearer token, or the zero value
// for anonymous requests.
type Actor struct {
	ID            string
	Username      string
	Role          Role
	Authenticated bool
}

func Anonymous() Actor {
	return Actor{}
}

// gate answers a single allow/deny question. ownerID is empty for
// collection-level checks (list/create) where no object exists yet.
type gate func(a Actor, ownerID string) bool

func anyone(Actor, string) bool {
	return true
}

func adminOnly(a Actor, _ string) bool {
	return a.Authenticated && a.Role == RoleAdmin
}

// staffOrOwner grants admins, moderators and the object's owner. With no
// object yet (create), any authenticated actor passes and becomes owner.
func staffOrOwner(a Actor, ownerID string) bool {
	if !a.Authenticated {
		return false
	}
	if a.Role.Elevated() {
		return true
	}
	if a.Role != RoleUser {
		return false
	}
	return ownerID == "" || ownerID == a.ID
}

// selfOnly grants any authenticated actor access to their own record.
func selfOnly(a Actor, ownerID string) bool {
	if !a.Authenticated {
		return false
	}
	return ownerID == "" || ownerID == a.ID
}

type policy struct {
	read  gate
	write gate
}

var rules = map[Resource]policy{
	ResourceCategory:    {read: anyone, write: adminOnly},
	ResourceGenre:       {read: anyone, write: adminOnly},
	ResourceTitle:       {read: anyone, write: adminOnly},
	ResourceReview:      {read: anyone, write: staffOrOwner},
	ResourceComment:     {read: anyone, write: staffOrOwner},
	ResourceUserAdmin:   {read: adminOnly, write: adminOnly},
	ResourceSelfProfile: {read: selfOnly, write: selfOnly},
}

// Allowed evaluates the rule table against a concrete object, identified
// by the ID of the user owning it.
func Allowed(a Actor, action Action, res Resource, ownerID string) bool {
	p, ok := rules[res]
	if !ok {
		return false
	}
	if action == ActionRead {
		return p.read(a, ownerID)
	}
	return p.write(a, ownerID)
}

// CanAct evaluates the collection-level half of a request (list/create),
// before any object has been loaded.
func CanAct(a Actor, action Action, res Resource) bool {
	return Allowed(a, action, res, "")
}
