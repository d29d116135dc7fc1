package models

import "time"

// AuthUser is the signed-in user as returned by the identity provider.
// Tokens are handed back to the client and never persisted.
type AuthUser struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName,omitempty"`
	PhotoURL     string `json:"photoURL,omitempty"`
	IDToken      string `json:"idToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// AuthResult is the success/error tuple every auth operation returns.
// Err keeps the original error for Go callers; Error is its message for clients.
type AuthResult struct {
	Success bool      `json:"success"`
	User    *AuthUser `json:"user,omitempty"`
	Error   string    `json:"error,omitempty"`
	Err     error     `json:"-"`
}

// Succeeded builds a successful result.
func Succeeded(user *AuthUser) AuthResult {
	return AuthResult{Success: true, User: user}
}

// Failed builds a failed result from err.
func Failed(err error) AuthResult {
	return AuthResult{Success: false, Error: err.Error(), Err: err}
}

// Sign-in methods, used for events and metrics labels.
const (
	MethodGoogle    = "google"
	MethodPassword  = "password"
	MethodEmailLink = "email_link"
	MethodMagicLink = "magic_link_send"
	MethodSignOut   = "sign_out"
)

// AuthStateEventType distinguishes sign-in from sign-out notifications.
type AuthStateEventType string

const (
	SignedIn  AuthStateEventType = "signed_in"
	SignedOut AuthStateEventType = "signed_out"
)

// AuthStateEvent is delivered to auth-state observers.
type AuthStateEvent struct {
	Type   AuthStateEventType `json:"type"`
	Method string             `json:"method"`
	UID    string             `json:"uid"`
	Email  string             `json:"email,omitempty"`
	At     time.Time          `json:"at"`
}
