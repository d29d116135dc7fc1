package core

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/thierry260/vibewise-backend/internal/models"
)

type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) GoogleAuthURL(state string) string {
	args := m.Called(state)
	if fn, ok := args.Get(0).(func(string) string); ok {
		return fn(state)
	}
	return args.String(0)
}

func (m *MockIdentityProvider) SignInWithGoogle(ctx context.Context, code string) (*models.AuthUser, error) {
	args := m.Called(ctx, code)
	user, _ := args.Get(0).(*models.AuthUser)
	return user, args.Error(1)
}

func (m *MockIdentityProvider) SignInWithPassword(ctx context.Context, email, password string) (*models.AuthUser, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(0).(*models.AuthUser)
	return user, args.Error(1)
}

func (m *MockIdentityProvider) SendSignInLink(ctx context.Context, email, continueURL string) error {
	return m.Called(ctx, email, continueURL).Error(0)
}

func (m *MockIdentityProvider) SignInWithEmailLink(ctx context.Context, email, oobCode string) (*models.AuthUser, error) {
	args := m.Called(ctx, email, oobCode)
	user, _ := args.Get(0).(*models.AuthUser)
	return user, args.Error(1)
}

func (m *MockIdentityProvider) SignOut(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

type MockSeeder struct {
	mock.Mock
}

func (m *MockSeeder) EnsureUserDocuments(ctx context.Context, user *models.AuthUser) (bool, error) {
	args := m.Called(ctx, user)
	return args.Bool(0), args.Error(1)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetProfile(ctx context.Context, uid string) (*models.UserProfile, error) {
	args := m.Called(ctx, uid)
	p, _ := args.Get(0).(*models.UserProfile)
	return p, args.Error(1)
}

func (m *MockUserRepo) SetProfile(ctx context.Context, profile *models.UserProfile) error {
	return m.Called(ctx, profile).Error(0)
}

func (m *MockUserRepo) SetSettings(ctx context.Context, uid string, settings *models.UserSettings) error {
	return m.Called(ctx, uid, settings).Error(0)
}

func (m *MockUserRepo) SetSummary(ctx context.Context, uid string, summary *models.UserSummary) error {
	return m.Called(ctx, uid, summary).Error(0)
}

func (m *MockUserRepo) SeedAtomically(ctx context.Context, docs models.UserDocuments) (bool, error) {
	args := m.Called(ctx, docs)
	return args.Bool(0), args.Error(1)
}

// recordingRecorder counts metric observations.
type recordingRecorder struct {
	mu       sync.Mutex
	attempts map[string][2]int // [success, failure]
	seeded   int
}

func newRecordingRecorder() *recordingRecorder {
	return &recordingRecorder{attempts: map[string][2]int{}}
}

func (r *recordingRecorder) ObserveAttempt(method string, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.attempts[method]
	if success {
		c[0]++
	} else {
		c[1]++
	}
	r.attempts[method] = c
}

func (r *recordingRecorder) ObserveSeeded() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seeded++
}
