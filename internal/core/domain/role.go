package domain

import "fmt"

// Role is a closed set of identity roles. Roles are compared by value; the
// text form only exists at the token and storage boundaries.
type Role uint8

const (
	// RoleNone is the zero value and means no role was supplied.
	RoleNone Role = iota
	RoleUser
	RoleVipUser
	RolePlatinumUser
)

var roleNames = map[Role]string{
	RoleUser:         "User",
	RoleVipUser:      "VipUser",
	RolePlatinumUser: "PlatinumUser",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return ""
}

// Valid reports whether r is one of the assignable roles.
func (r Role) Valid() bool {
	_, ok := roleNames[r]
	return ok
}

// ParseRole converts the text form of a role. Matching is exact.
func ParseRole(s string) (Role, error) {
	for r, name := range roleNames {
		if name == s {
			return r, nil
		}
	}
	return RoleNone, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownRole, r)
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(text []byte) error {
	parsed, err := ParseRole(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
