package policy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bankaccountmanager/account-api/internal/core/domain"
)

// ParseRequirements converts a name -> "Role:AccountType" map, as loaded from
// configuration, into requirements. Output is sorted by name.
func ParseRequirements(specs map[string]string) ([]Requirement, error) {
	names := make([]string, 0, len(specs))
	for n := range specs {
		names = append(names, n)
	}
	sort.Strings(names)

	reqs := make([]Requirement, 0, len(specs))
	for _, name := range names {
		roleText, typeText, ok := strings.Cut(specs[name], ":")
		if !ok {
			return nil, fmt.Errorf("%w: %s: expected Role:AccountType, got %q", ErrInvalidRequirement, name, specs[name])
		}
		role, err := domain.ParseRole(strings.TrimSpace(roleText))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRequirement, name, err)
		}
		accountType, err := domain.ParseAccountType(strings.TrimSpace(typeText))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidRequirement, name, err)
		}
		reqs = append(reqs, Requirement{Name: strings.TrimSpace(name), Role: role, AccountType: accountType})
	}
	return reqs, nil
}
