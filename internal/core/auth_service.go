package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thierry260/vibewise-backend/internal/db"
	"github.com/thierry260/vibewise-backend/internal/identity"
	"github.com/thierry260/vibewise-backend/internal/models"
	"github.com/thierry260/vibewise-backend/pkg/cache"
)

const (
	oauthStateTTL        = 10 * time.Minute
	defaultEmailTTL      = 24 * time.Hour
	oauthStateKeyPrefix  = "oauthState:"
	emailForSignInPrefix = "emailForSignIn:"
)

// EmailForSignInKey is the store key remembering which email asked for a magic link on deviceID.
func EmailForSignInKey(deviceID string) string {
	return emailForSignInPrefix + deviceID
}

func oauthStateKey(state string) string {
	return oauthStateKeyPrefix + state
}

// AuthServiceConfig holds the collaborators of the auth service.
type AuthServiceConfig struct {
	Identity IdentityProvider
	Seeder   UserSeeder
	Users    db.UserDocumentRepository
	Store    cache.Cache
	Metrics  AttemptRecorder
	Logger   *zap.Logger
	// EmailTTL bounds how long the magic-link email is remembered per device.
	EmailTTL time.Duration
}

type observerEntry struct {
	id       uint64
	observer AuthStateObserver
}

// authService implements AuthService.
type authService struct {
	identity IdentityProvider
	seeder   UserSeeder
	users    db.UserDocumentRepository
	store    cache.Cache
	metrics  AttemptRecorder
	logger   *zap.Logger
	emailTTL time.Duration
	now      func() time.Time

	mu        sync.RWMutex
	observers []observerEntry
	nextID    uint64
}

// NewAuthService creates the auth service.
func NewAuthService(cfg AuthServiceConfig) (AuthService, error) {
	if cfg.Identity == nil || cfg.Seeder == nil || cfg.Users == nil || cfg.Store == nil {
		return nil, errors.New("auth service requires identity provider, seeder, user repository and store")
	}
	s := &authService{
		identity: cfg.Identity,
		seeder:   cfg.Seeder,
		users:    cfg.Users,
		store:    cfg.Store,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		emailTTL: cfg.EmailTTL,
		now:      time.Now,
	}
	if s.metrics == nil {
		s.metrics = noopRecorder{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.emailTTL <= 0 {
		s.emailTTL = defaultEmailTTL
	}
	return s, nil
}

// BeginGoogleSignIn stores a one-time state and returns the Google consent URL.
func (s *authService) BeginGoogleSignIn(ctx context.Context) (string, error) {
	state := uuid.NewString()
	if err := s.store.Set(ctx, oauthStateKey(state), "1", oauthStateTTL); err != nil {
		s.logger.Error("Failed to store OAuth state", zap.Error(err))
		return "", fmt.Errorf("store oauth state: %w", err)
	}
	return s.identity.GoogleAuthURL(state), nil
}

// SignInWithGoogle completes the Google flow and seeds the user's documents.
func (s *authService) SignInWithGoogle(ctx context.Context, state, code string) models.AuthResult {
	if err := s.consumeState(ctx, state); err != nil {
		return s.fail(models.MethodGoogle, err)
	}

	user, err := s.identity.SignInWithGoogle(ctx, code)
	if err != nil {
		return s.fail(models.MethodGoogle, err)
	}

	if err := s.seed(ctx, user); err != nil {
		return s.fail(models.MethodGoogle, err)
	}

	s.notify(ctx, models.SignedIn, models.MethodGoogle, user)
	return s.succeed(models.MethodGoogle, user)
}

// CancelGoogleSignIn ends a Google flow the user or provider aborted.
func (s *authService) CancelGoogleSignIn(ctx context.Context, state, reason string) models.AuthResult {
	if err := s.consumeState(ctx, state); err != nil && !errors.Is(err, ErrInvalidState) {
		s.logger.Warn("Failed to consume OAuth state", zap.Error(err))
	}
	return s.fail(models.MethodGoogle, fmt.Errorf("%w: %s", ErrGoogleSignInCancelled, reason))
}

func (s *authService) consumeState(ctx context.Context, state string) error {
	if state == "" {
		return ErrInvalidState
	}
	if _, err := s.store.Take(ctx, oauthStateKey(state)); err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return ErrInvalidState
		}
		return fmt.Errorf("consume oauth state: %w", err)
	}
	return nil
}

// SignInWithEmail signs in with email and password.
func (s *authService) SignInWithEmail(ctx context.Context, email, password string) models.AuthResult {
	user, err := s.identity.SignInWithPassword(ctx, email, password)
	if err != nil {
		return s.fail(models.MethodPassword, err)
	}
	s.notify(ctx, models.SignedIn, models.MethodPassword, user)
	return s.succeed(models.MethodPassword, user)
}

// SendMagicLink sends the sign-in link and, only once that succeeded, remembers
// the email for deviceID so the link can be completed without asking again.
func (s *authService) SendMagicLink(ctx context.Context, deviceID, email, redirectURL string) models.AuthResult {
	if deviceID == "" {
		return s.fail(models.MethodMagicLink, errors.New("device id is required"))
	}

	if err := s.identity.SendSignInLink(ctx, email, redirectURL); err != nil {
		return s.fail(models.MethodMagicLink, err)
	}

	if err := s.store.Set(ctx, EmailForSignInKey(deviceID), email, s.emailTTL); err != nil {
		return s.fail(models.MethodMagicLink, fmt.Errorf("remember email for sign-in: %w", err))
	}

	s.metrics.ObserveAttempt(models.MethodMagicLink, true)
	return models.AuthResult{Success: true}
}

// CompleteMagicLink signs in with a link received by email.
func (s *authService) CompleteMagicLink(ctx context.Context, deviceID, email, link string) models.AuthResult {
	oobCode, ok := identity.ParseEmailLink(link)
	if !ok {
		return s.fail(models.MethodEmailLink, ErrNotSignInLink)
	}

	if email == "" && deviceID != "" {
		stored, err := s.store.Get(ctx, EmailForSignInKey(deviceID))
		switch {
		case err == nil:
			email = stored
		case !errors.Is(err, cache.ErrMiss):
			return s.fail(models.MethodEmailLink, fmt.Errorf("load email for sign-in: %w", err))
		}
	}
	if email == "" {
		return s.fail(models.MethodEmailLink, ErrEmailRequired)
	}

	user, err := s.identity.SignInWithEmailLink(ctx, email, oobCode)
	if err != nil {
		return s.fail(models.MethodEmailLink, err)
	}

	if deviceID != "" {
		if err := s.store.Delete(ctx, EmailForSignInKey(deviceID)); err != nil {
			s.logger.Warn("Failed to forget email for sign-in", zap.String("deviceID", deviceID), zap.Error(err))
		}
	}

	if err := s.seed(ctx, user); err != nil {
		return s.fail(models.MethodEmailLink, err)
	}

	s.notify(ctx, models.SignedIn, models.MethodEmailLink, user)
	return s.succeed(models.MethodEmailLink, user)
}

// SignOutUser signs uid out everywhere.
func (s *authService) SignOutUser(ctx context.Context, uid string) models.AuthResult {
	if err := s.identity.SignOut(ctx, uid); err != nil {
		return s.fail(models.MethodSignOut, err)
	}
	s.notify(ctx, models.SignedOut, models.MethodSignOut, &models.AuthUser{UID: uid})
	s.metrics.ObserveAttempt(models.MethodSignOut, true)
	return models.AuthResult{Success: true}
}

// InitializeUser runs the seeding routine for an already authenticated user and
// returns the stored profile.
func (s *authService) InitializeUser(ctx context.Context, user *models.AuthUser) (*models.UserProfile, bool, error) {
	created, err := s.seeder.EnsureUserDocuments(ctx, user)
	if err != nil {
		s.logger.Error("Failed to initialize user", zap.String("uid", user.UID), zap.Error(err))
		return nil, false, err
	}
	if created {
		s.metrics.ObserveSeeded()
	}
	profile, err := s.CurrentProfile(ctx, user.UID)
	if err != nil {
		return nil, false, err
	}
	return profile, created, nil
}

// CurrentProfile returns users/{uid}.
func (s *authService) CurrentProfile(ctx context.Context, uid string) (*models.UserProfile, error) {
	profile, err := s.users.GetProfile(ctx, uid)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, uid)
		}
		return nil, err
	}
	return profile, nil
}

// OnAuthStateChanged registers observer.
func (s *authService) OnAuthStateChanged(observer AuthStateObserver) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, observerEntry{id: id, observer: observer})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, e := range s.observers {
				if e.id == id {
					s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *authService) seed(ctx context.Context, user *models.AuthUser) error {
	created, err := s.seeder.EnsureUserDocuments(ctx, user)
	if err != nil {
		return err
	}
	if created {
		s.metrics.ObserveSeeded()
	}
	return nil
}

func (s *authService) notify(ctx context.Context, typ models.AuthStateEventType, method string, user *models.AuthUser) {
	event := models.AuthStateEvent{
		Type:   typ,
		Method: method,
		UID:    user.UID,
		Email:  user.Email,
		At:     s.now().UTC(),
	}

	s.mu.RLock()
	observers := make([]AuthStateObserver, 0, len(s.observers))
	for _, e := range s.observers {
		observers = append(observers, e.observer)
	}
	s.mu.RUnlock()

	for _, o := range observers {
		s.safeNotify(ctx, o, event)
	}
}

// safeNotify recovers observer panics.
func (s *authService) safeNotify(ctx context.Context, o AuthStateObserver, event models.AuthStateEvent) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Auth state observer panicked", zap.Any("panic", r), zap.String("uid", event.UID))
		}
	}()
	o.OnAuthStateChanged(ctx, event)
}

func (s *authService) succeed(method string, user *models.AuthUser) models.AuthResult {
	s.metrics.ObserveAttempt(method, true)
	return models.Succeeded(user)
}

func (s *authService) fail(method string, err error) models.AuthResult {
	s.logger.Error("Auth operation failed", zap.String("method", method), zap.Error(err))
	s.metrics.ObserveAttempt(method, false)
	return models.Failed(err)
}
