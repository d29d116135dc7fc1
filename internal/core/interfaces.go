package core

import (
	"context"
	"errors"

	"github.com/thierry260/vibewise-backend/internal/models"
)

var (
	// ErrInvalidState is returned when an OAuth callback carries an unknown or reused state.
	ErrInvalidState = errors.New("invalid or expired OAuth state")
	// ErrGoogleSignInCancelled is returned when Google redirects back with an error instead of a code.
	ErrGoogleSignInCancelled = errors.New("google sign-in was not completed")
	// ErrNotSignInLink is returned when a link is not an email sign-in link.
	ErrNotSignInLink = errors.New("link is not an email sign-in link")
	// ErrEmailRequired is returned when no email was given nor remembered for the device.
	ErrEmailRequired = errors.New("email is required to complete sign-in on this device")
	// ErrUserNotFound is returned when the user's profile document does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// IdentityProvider is the Firebase Authentication surface the shim calls into.
type IdentityProvider interface {
	GoogleAuthURL(state string) string
	SignInWithGoogle(ctx context.Context, code string) (*models.AuthUser, error)
	SignInWithPassword(ctx context.Context, email, password string) (*models.AuthUser, error)
	SendSignInLink(ctx context.Context, email, continueURL string) error
	SignInWithEmailLink(ctx context.Context, email, oobCode string) (*models.AuthUser, error)
	SignOut(ctx context.Context, uid string) error
}

// UserSeeder guarantees a user's documents exist.
type UserSeeder interface {
	EnsureUserDocuments(ctx context.Context, user *models.AuthUser) (bool, error)
}

// AuthStateObserver is notified after every successful sign-in and sign-out.
type AuthStateObserver interface {
	OnAuthStateChanged(ctx context.Context, event models.AuthStateEvent)
}

// AuthStateObserverFunc adapts a function to AuthStateObserver.
type AuthStateObserverFunc func(ctx context.Context, event models.AuthStateEvent)

func (f AuthStateObserverFunc) OnAuthStateChanged(ctx context.Context, event models.AuthStateEvent) {
	f(ctx, event)
}

// AttemptRecorder records the outcome of auth operations.
type AttemptRecorder interface {
	ObserveAttempt(method string, success bool)
	ObserveSeeded()
}

type noopRecorder struct{}

func (noopRecorder) ObserveAttempt(string, bool) {}
func (noopRecorder) ObserveSeeded()              {}

// AuthService is the sign-in bootstrap shim. Every operation returning an
// AuthResult reports failure in the result instead of an error.
type AuthService interface {
	BeginGoogleSignIn(ctx context.Context) (string, error)
	SignInWithGoogle(ctx context.Context, state, code string) models.AuthResult
	// CancelGoogleSignIn consumes state and reports the provider's error reason as a failed Google attempt.
	CancelGoogleSignIn(ctx context.Context, state, reason string) models.AuthResult
	SignInWithEmail(ctx context.Context, email, password string) models.AuthResult
	SendMagicLink(ctx context.Context, deviceID, email, redirectURL string) models.AuthResult
	CompleteMagicLink(ctx context.Context, deviceID, email, link string) models.AuthResult
	SignOutUser(ctx context.Context, uid string) models.AuthResult

	InitializeUser(ctx context.Context, user *models.AuthUser) (*models.UserProfile, bool, error)
	CurrentProfile(ctx context.Context, uid string) (*models.UserProfile, error)

	// OnAuthStateChanged registers observer and returns a function removing it.
	OnAuthStateChanged(observer AuthStateObserver) (unsubscribe func())
}
