package domain

import "time"

// AccessTokenTTL is the fixed lifetime of an issued token. Expiry is the only
// invalidation path.
const AccessTokenTTL = time.Hour

// AccessToken is a signed bearer credential together with the values it encodes.
type AccessToken struct {
	Token     string
	Subject   string
	Role      Role
	Issuer    string
	Audience  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Claims are the values decoded from a validated token.
type Claims struct {
	Username  string
	Role      Role
	Issuer    string
	Audience  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
