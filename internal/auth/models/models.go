package models

import "time"

// User is an operator account. Level is the flat permission level the
// capability check compares against; 48 and above is the management tier.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Level        int    `json:"level"`
}

// Session is one live login. Sessions outlive nothing: logout or TTL expiry
// invalidates the JWT that references them.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Level     int       `json:"level"`
	Device    string    `json:"device,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LoginRequest is the credential form.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult carries the issued token back to the client.
type LoginResult struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Level     int       `json:"level"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateUserRequest is the admin user-creation form.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Level    int    `json:"level"`
}

// UpdateUserRequest changes a user's password and/or level. An empty
// password keeps the current one.
type UpdateUserRequest struct {
	Password string `json:"password,omitempty"`
	Level    int    `json:"level"`
}
