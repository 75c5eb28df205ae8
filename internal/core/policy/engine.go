// Package policy evaluates named authorization policies. Each policy pairs a
// required caller role with a required resource attribute; the table is built
// once at startup and never mutated, so an Engine is safe for concurrent use.
package policy

import (
	"errors"
	"fmt"
	"sort"

	"github.com/bankaccountmanager/account-api/internal/core/domain"
)

// RequireVipCurrentAccount lets a VipUser access Current accounts.
const RequireVipCurrentAccount = "RequireVipCurrentAccount"

var ErrInvalidRequirement = errors.New("invalid policy requirement")

// Decision is the outcome of a policy evaluation. The zero value is Deny.
type Decision uint8

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Requirement is a declarative rule bound to a policy name.
type Requirement struct {
	Name        string
	Role        domain.Role
	AccountType domain.AccountType
}

// Evaluate returns Allow iff both the role and the account type match.
// A missing role or attribute never matches.
func (r Requirement) Evaluate(role domain.Role, accountType domain.AccountType) Decision {
	if !role.Valid() || !accountType.Valid() {
		return Deny
	}
	if role == r.Role && accountType == r.AccountType {
		return Allow
	}
	return Deny
}

// DefaultRequirements is the policy table shipped with the service.
func DefaultRequirements() []Requirement {
	return []Requirement{
		{Name: RequireVipCurrentAccount, Role: domain.RoleVipUser, AccountType: domain.AccountCurrent},
	}
}

// Engine looks up requirements by name.
type Engine struct {
	requirements map[string]Requirement
}

// NewEngine builds the immutable requirement table.
func NewEngine(reqs ...Requirement) (*Engine, error) {
	table := make(map[string]Requirement, len(reqs))
	for _, r := range reqs {
		if r.Name == "" {
			return nil, fmt.Errorf("%w: empty name", ErrInvalidRequirement)
		}
		if !r.Role.Valid() || !r.AccountType.Valid() {
			return nil, fmt.Errorf("%w: %s needs a role and an account type", ErrInvalidRequirement, r.Name)
		}
		if _, dup := table[r.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate policy %s", ErrInvalidRequirement, r.Name)
		}
		table[r.Name] = r
	}
	return &Engine{requirements: table}, nil
}

// Authorize evaluates the named policy. Business mismatches are a Deny, never
// an error; only an unregistered name fails.
func (e *Engine) Authorize(name string, role domain.Role, accountType domain.AccountType) (Decision, error) {
	req, ok := e.requirements[name]
	if !ok {
		return Deny, fmt.Errorf("%w: %s", domain.ErrUnknownPolicy, name)
	}
	return req.Evaluate(role, accountType), nil
}

// Names returns the registered policy names in sorted order.
func (e *Engine) Names() []string {
	names := make([]string, 0, len(e.requirements))
	for n := range e.requirements {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// MustHave panics if any of names is not registered. Routes call it while
// being wired so a typo stops the process at boot.
func (e *Engine) MustHave(names ...string) {
	for _, n := range names {
		if _, ok := e.requirements[n]; !ok {
			panic(fmt.Sprintf("policy: %v: %s", domain.ErrUnknownPolicy, n))
		}
	}
}
