package identity

import "time"

// GlobalRole is an application-wide role attached to a user account.
type GlobalRole string

// Known global roles. Unknown values compare as plain strings and grant nothing.
const (
	RoleMember         GlobalRole = "member"
	RoleProjectManager GlobalRole = "project_manager"
	RoleCTO            GlobalRole = "cto"
	RoleConsultant     GlobalRole = "consultant"
	RoleAdmin          GlobalRole = "admin"
)

// Principal is the verified identity of the requester for the current
// request. It is resolved fresh on every request and never cached across
// requests.
type Principal struct {
	ID          string
	DisplayName string
	Email       string
	Username    string
	GlobalRole  GlobalRole
	IsAdmin     bool
}

// Credential is the login-time view of a user account. It carries the
// password hash and active flag and never leaves the identity package.
type Credential struct {
	Principal
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
