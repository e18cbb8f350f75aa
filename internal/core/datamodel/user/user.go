package user

import "strings"

// User is the logged-in identity. Phone is the primary key the backend uses
// on every call; ID is assigned server-side and may be absent.
type User struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// IsValid reports whether the record is usable as a session identity.
// Anything less than a name plus a phone is treated as "logged out".
func (u *User) IsValid() bool {
	if u == nil {
		return false
	}
	return strings.TrimSpace(u.Name) != "" && strings.TrimSpace(u.Phone) != ""
}
