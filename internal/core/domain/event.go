package domain

import "time"

// AuthEventType names what happened in an authentication flow.
type AuthEventType string

const (
	EventRegistered    AuthEventType = "registered"
	EventRegisterFail  AuthEventType = "register_failed"
	EventLoginSuccess  AuthEventType = "login_succeeded"
	EventLoginFail     AuthEventType = "login_failed"
	EventRoleAssigned  AuthEventType = "role_assigned"
	EventAccessDenied  AuthEventType = "access_denied"
	EventAccessGranted AuthEventType = "access_granted"
)

// AuthEvent is an audit record of an authentication or authorization outcome.
// It never carries secrets.
type AuthEvent struct {
	Type      AuthEventType
	Email     string
	Username  string
	Role      Role
	Policy    string
	Reason    string
	Timestamp time.Time
}
