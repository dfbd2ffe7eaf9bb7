// Package access decides who may read or change course resources.
// Every predicate is pure: callers load the facts, these functions judge them.
package access

import "github.com/sahilchouksey/learnhub-api/model"

// Caller is the authenticated principal making a request.
// The zero value is an anonymous caller.
type Caller struct {
	ID   uint
	Role string
}

// FromUser builds a Caller from a loaded user; nil means anonymous.
func FromUser(u *model.User) Caller {
	if u == nil {
		return Caller{}
	}
	return Caller{ID: u.ID, Role: u.Role}
}

func (c Caller) Authenticated() bool { return c.ID != 0 }

func (c Caller) IsAdmin() bool { return c.Role == model.RoleAdmin }

// Decision is the outcome of an access check. Reason explains a denial.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// OwnerOrAdmin allows the resource owner and any admin.
func OwnerOrAdmin(caller Caller, ownerID uint) Decision {
	if !caller.Authenticated() {
		return deny("Authentication required")
	}
	if caller.IsAdmin() || caller.ID == ownerID {
		return allow()
	}
	return deny("Not authorized to modify this resource")
}

// EnrolledOrPrivileged allows enrolled students, the course instructor and admins.
func EnrolledOrPrivileged(caller Caller, instructorID uint, enrolled bool) Decision {
	if !caller.Authenticated() {
		return deny("Authentication required")
	}
	if enrolled || caller.IsAdmin() || caller.ID == instructorID {
		return allow()
	}
	return deny("Not enrolled in this course")
}

// CanViewLessonContent extends EnrolledOrPrivileged with public preview lessons.
func CanViewLessonContent(caller Caller, instructorID uint, enrolled, isPreview bool) Decision {
	if isPreview {
		return allow()
	}
	return EnrolledOrPrivileged(caller, instructorID, enrolled)
}

// HasRole allows callers holding any of roles.
func HasRole(caller Caller, roles ...string) Decision {
	if !caller.Authenticated() {
		return deny("Authentication required")
	}
	for _, r := range roles {
		if caller.Role == r {
			return allow()
		}
	}
	return deny("Insufficient permissions")
}
