package holder

import "time"

// Holder is an identity that owns zero or more cards. Usernames are unique
// across the institution; the credential is stored as a bcrypt hash only.
type Holder struct {
	ID           string
	Username     string
	PasswordHash []byte
	Roles        []string
	CreatedAt    time.Time
}

// HasRole reports whether the holder carries the named role.
func (h Holder) HasRole(name string) bool {
	for _, r := range h.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// View is the external representation of a holder. The credential hash
// never leaves the core.
type View struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
}

// Page is an offset/limit window applied after filtering.
type Page struct {
	Offset int
	Limit  int
}
