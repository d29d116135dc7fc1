package models

// EmailSignInRequest is the body of POST /auth/email/signin.
type EmailSignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// MagicLinkRequest is the body of POST /auth/email/link.
type MagicLinkRequest struct {
	Email       string `json:"email" binding:"required,email"`
	RedirectURL string `json:"redirectUrl" binding:"required,url"`
}

// CompleteMagicLinkRequest is the body of POST /auth/email/link/complete.
// Email may be omitted when the device requested the link earlier.
type CompleteMagicLinkRequest struct {
	Link  string `json:"link" binding:"required"`
	Email string `json:"email" binding:"omitempty,email"`
}
