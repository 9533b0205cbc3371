package domain

// Role is a member's role inside a workspace.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleWriter Role = "writer"
	RoleViewer Role = "viewer"
)

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleWriter, RoleViewer:
		return r, nil
	}
	return "", invalid("role", "must be one of admin, writer, viewer")
}
