package domain

import (
	"fmt"
	"time"
)

// AccountType is an attribute of an account resource, not of the user.
type AccountType uint8

const (
	// AccountTypeUnknown is the zero value and means the attribute was not supplied.
	AccountTypeUnknown AccountType = iota
	AccountCurrent
	AccountSavings
)

var accountTypeNames = map[AccountType]string{
	AccountCurrent: "Current",
	AccountSavings: "Savings",
}

func (t AccountType) String() string {
	if name, ok := accountTypeNames[t]; ok {
		return name
	}
	return ""
}

func (t AccountType) Valid() bool {
	_, ok := accountTypeNames[t]
	return ok
}

// ParseAccountType converts the text form of an account type.
func ParseAccountType(s string) (AccountType, error) {
	for t, name := range accountTypeNames {
		if name == s {
			return t, nil
		}
	}
	return AccountTypeUnknown, fmt.Errorf("%w: %q", ErrUnknownAccountType, s)
}

func (t AccountType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAccountType, t)
	}
	return []byte(t.String()), nil
}

func (t *AccountType) UnmarshalText(text []byte) error {
	parsed, err := ParseAccountType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Account is a bank account owned by a single identity.
type Account struct {
	ID        string      `json:"id"`
	Number    string      `json:"number"`
	Type      AccountType `json:"type"`
	Balance   float64     `json:"balance"`
	UserID    string      `json:"user_id"`
	CreatedAt time.Time   `json:"created_at"`
}
