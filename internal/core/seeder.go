package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/thierry260/vibewise-backend/internal/db"
	"github.com/thierry260/vibewise-backend/internal/models"
)

// Seeder creates the profile, settings and summary documents on a user's first sign-in.
//
// Without transactional mode the existence check and the three writes are not
// atomic: two concurrent first sign-ins for the same uid may both write. The
// documents are identical apart from timestamps, so the last writer wins.
type Seeder struct {
	repo          db.UserDocumentRepository
	logger        *zap.Logger
	now           func() time.Time
	transactional bool
}

// SeederOption configures a Seeder.
type SeederOption func(*Seeder)

// WithTransactions makes the seeder check and write inside one Firestore transaction.
func WithTransactions(enabled bool) SeederOption {
	return func(s *Seeder) { s.transactional = enabled }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) SeederOption {
	return func(s *Seeder) { s.now = now }
}

// NewSeeder creates a Seeder over repo.
func NewSeeder(repo db.UserDocumentRepository, logger *zap.Logger, opts ...SeederOption) *Seeder {
	s := &Seeder{repo: repo, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if !s.transactional {
		s.logger.Debug("User document seeding runs without a transaction; concurrent first sign-ins are not guarded")
	}
	return s
}

// EnsureUserDocuments writes the three user documents when users/{uid} does not
// exist yet. It reports whether they were created.
func (s *Seeder) EnsureUserDocuments(ctx context.Context, user *models.AuthUser) (bool, error) {
	if user == nil || user.UID == "" {
		return false, errors.New("cannot seed documents for a user without uid")
	}

	docs := models.NewUserDocuments(user, s.now())

	if s.transactional {
		created, err := s.repo.SeedAtomically(ctx, docs)
		if err != nil {
			return false, err
		}
		s.logSeeded(user.UID, created)
		return created, nil
	}

	_, err := s.repo.GetProfile(ctx, user.UID)
	switch {
	case err == nil:
		s.logSeeded(user.UID, false)
		return false, nil
	case !errors.Is(err, db.ErrNotFound):
		return false, fmt.Errorf("check profile for user '%s': %w", user.UID, err)
	}

	if err := s.repo.SetProfile(ctx, &docs.Profile); err != nil {
		return false, err
	}
	if err := s.repo.SetSettings(ctx, user.UID, &docs.Settings); err != nil {
		return false, err
	}
	if err := s.repo.SetSummary(ctx, user.UID, &docs.Summary); err != nil {
		return false, err
	}

	s.logSeeded(user.UID, true)
	return true, nil
}

func (s *Seeder) logSeeded(uid string, created bool) {
	if created {
		s.logger.Info("Created user documents", zap.String("uid", uid))
		return
	}
	s.logger.Debug("User documents already exist", zap.String("uid", uid))
}
