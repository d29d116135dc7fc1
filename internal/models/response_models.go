package models

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// MagicLinkResponse is returned by POST /auth/email/link. DeviceID echoes the
// device the email was remembered for.
type MagicLinkResponse struct {
	AuthResult
	DeviceID string `json:"deviceId,omitempty"`
}

// GoogleAuthURLResponse is returned by GET /auth/google?mode=json.
type GoogleAuthURLResponse struct {
	URL string `json:"url"`
}

// InitializeUserResponse is returned by POST /users/initialize.
type InitializeUserResponse struct {
	Created bool         `json:"created"`
	Profile *UserProfile `json:"profile"`
}
