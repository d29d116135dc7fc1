package db

import (
	"context"

	"github.com/thierry260/vibewise-backend/internal/models"
)

// UserDocumentRepository defines the storage operations for the documents
// created on a user's first sign-in.
type UserDocumentRepository interface {
	// GetProfile returns users/{uid}, or ErrNotFound.
	GetProfile(ctx context.Context, uid string) (*models.UserProfile, error)
	SetProfile(ctx context.Context, profile *models.UserProfile) error
	SetSettings(ctx context.Context, uid string, settings *models.UserSettings) error
	SetSummary(ctx context.Context, uid string, summary *models.UserSummary) error
	// SeedAtomically checks for the profile and writes all three documents in one
	// transaction. It reports false when the profile already existed.
	SeedAtomically(ctx context.Context, docs models.UserDocuments) (bool, error)
}
