package domain

// AccessLevel is what a user may do in a workspace. Levels are ordered.
type AccessLevel int

const (
	AccessNone AccessLevel = iota
	AccessPending
	AccessMember
	AccessAdmin
	AccessOwner
)

func (a AccessLevel) String() string {
	switch a {
	case AccessPending:
		return "pending"
	case AccessMember:
		return "member"
	case AccessAdmin:
		return "admin"
	case AccessOwner:
		return "owner"
	default:
		return "none"
	}
}

// CanView is true for the owner and every accepted member.
func (a AccessLevel) CanView() bool { return a >= AccessMember }

// CanManage covers updating the workspace and inviting or removing members.
func (a AccessLevel) CanManage() bool { return a >= AccessAdmin }

// CanDelete is reserved to the owner.
func (a AccessLevel) CanDelete() bool { return a == AccessOwner }

// ResolveAccess computes the access level of userID in w. The owner is always
// AccessOwner. In an individual workspace nobody else has access, whatever
// rows might exist. Pending invitations grant nothing.
func ResolveAccess(w Workspace, userID string) AccessLevel {
	if userID == "" {
		return AccessNone
	}
	if w.OwnerID == userID {
		return AccessOwner
	}
	if w.Type != WorkspaceTeam {
		return AccessNone
	}

	level := AccessNone
	for _, m := range w.Members {
		if m.UserID != userID {
			continue
		}
		if !m.Accepted {
			if level < AccessPending {
				level = AccessPending
			}
			continue
		}
		if m.Role == RoleAdmin {
			return AccessAdmin
		}
		level = AccessMember
	}
	return level
}

// RoleFor reports the effective role of userID, treating the owner as admin.
func RoleFor(w Workspace, userID string) (Role, bool) {
	switch ResolveAccess(w, userID) {
	case AccessOwner, AccessAdmin:
		return RoleAdmin, true
	case AccessMember:
		m, _ := w.AcceptedMember(userID)
		return m.Role, true
	}
	return "", false
}
