package models

type User struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role,omitempty"`
	Location string `json:"location,omitempty"`
}

// AuthResult is returned by the backend login and register endpoints.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Preferences are the contact and location details remembered across sessions
// purely to pre-fill forms. They are never authoritative.
type Preferences struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
}

// Merge overwrites fields of p with the non-empty fields of other.
func (p Preferences) Merge(other Preferences) Preferences {
	if other.Name != "" {
		p.Name = other.Name
	}
	if other.Email != "" {
		p.Email = other.Email
	}
	if other.Phone != "" {
		p.Phone = other.Phone
	}
	if other.Location != "" {
		p.Location = other.Location
	}
	return p
}

// Session is the stored auth token and current-user record.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
