package holder

import "strings"

// Filter is a sparse set of optional criteria over holders: a username
// substring and a role-membership set. Unset fields contribute no
// restriction.
type Filter struct {
	Username string
	Roles    []string
}

// Matches evaluates the filter against a single holder. A non-empty role
// set matches holders carrying at least one of the named roles.
func (f Filter) Matches(h Holder) bool {
	if f.Username != "" && !strings.Contains(h.Username, f.Username) {
		return false
	}
	if len(f.Roles) > 0 {
		any := false
		for _, r := range f.Roles {
			if h.HasRole(r) {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}
	return true
}

func window(holders []Holder, page Page) []Holder {
	if page.Offset < 0 {
		page.Offset = 0
	}
	if page.Offset >= len(holders) {
		return nil
	}
	holders = holders[page.Offset:]
	if page.Limit > 0 && page.Limit < len(holders) {
		holders = holders[:page.Limit]
	}
	return holders
}
