package models

// User is the account profile the backend returns at login/registration.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Session pairs the opaque bearer token with the user profile. A partial
// session (token without user, or vice versa) counts as not authenticated
// and is not actively repaired.
type Session struct {
	Token string
	User  *User
}

// Authenticated reports whether both session fields are present.
func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}
