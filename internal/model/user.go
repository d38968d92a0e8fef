package model

// User is a locally registered account. Credentials are stored and matched
// in plaintext against the local user list; this is a convenience feature,
// not an authentication mechanism.
type User struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

// Session identifies the currently signed-in user. Password is never
// carried on the session record.
type Session struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}
