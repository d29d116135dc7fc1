package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/thierry260/vibewise-backend/internal/models"
)

const (
	usersCollection   = "users"
	privateCollection = "private"
	settingsDocID     = "settings"
	summaryDocID      = "summary"
)

// firestoreUserDocumentRepository implements UserDocumentRepository using Firestore.
type firestoreUserDocumentRepository struct {
	client *firestore.Client
}

// NewFirestoreUserDocumentRepository creates a repository over client.
func NewFirestoreUserDocumentRepository(client *firestore.Client) (UserDocumentRepository, error) {
	if client == nil {
		return nil, errors.New("firestore client is not initialized for UserDocumentRepository")
	}
	return &firestoreUserDocumentRepository{client: client}, nil
}

func (r *firestoreUserDocumentRepository) profileRef(uid string) *firestore.DocumentRef {
	return r.client.Collection(usersCollection).Doc(uid)
}

func (r *firestoreUserDocumentRepository) privateRef(uid, docID string) *firestore.DocumentRef {
	return r.profileRef(uid).Collection(privateCollection).Doc(docID)
}

// GetProfile retrieves users/{uid}.
func (r *firestoreUserDocumentRepository) GetProfile(ctx context.Context, uid string) (*models.UserProfile, error) {
	if uid == "" {
		return nil, errors.New("uid cannot be empty for GetProfile")
	}
	snap, err := r.profileRef(uid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("profile for user '%s': %w", uid, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile for user '%s': %w", uid, err)
	}

	var profile models.UserProfile
	if err := snap.DataTo(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile for user '%s': %w", uid, err)
	}
	return &profile, nil
}

// SetProfile overwrites users/{uid}.
func (r *firestoreUserDocumentRepository) SetProfile(ctx context.Context, profile *models.UserProfile) error {
	if profile.UID == "" {
		return errors.New("uid cannot be empty for SetProfile")
	}
	if _, err := r.profileRef(profile.UID).Set(ctx, profile); err != nil {
		return fmt.Errorf("failed to write profile for user '%s': %w", profile.UID, err)
	}
	return nil
}

// SetSettings overwrites users/{uid}/private/settings.
func (r *firestoreUserDocumentRepository) SetSettings(ctx context.Context, uid string, settings *models.UserSettings) error {
	if uid == "" {
		return errors.New("uid cannot be empty for SetSettings")
	}
	if _, err := r.privateRef(uid, settingsDocID).Set(ctx, settings); err != nil {
		return fmt.Errorf("failed to write settings for user '%s': %w", uid, err)
	}
	return nil
}

// SetSummary overwrites users/{uid}/private/summary.
func (r *firestoreUserDocumentRepository) SetSummary(ctx context.Context, uid string, summary *models.UserSummary) error {
	if uid == "" {
		return errors.New("uid cannot be empty for SetSummary")
	}
	if _, err := r.privateRef(uid, summaryDocID).Set(ctx, summary); err != nil {
		return fmt.Errorf("failed to write summary for user '%s': %w", uid, err)
	}
	return nil
}

// SeedAtomically runs the existence check and the three writes inside a transaction.
func (r *firestoreUserDocumentRepository) SeedAtomically(ctx context.Context, docs models.UserDocuments) (bool, error) {
	uid := docs.Profile.UID
	if uid == "" {
		return false, errors.New("uid cannot be empty for SeedAtomically")
	}

	var created bool
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		created = false // the function may be retried

		_, err := tx.Get(r.profileRef(uid))
		switch {
		case err == nil:
			return nil
		case status.Code(err) != codes.NotFound:
			return err
		}

		if err := tx.Set(r.profileRef(uid), &docs.Profile); err != nil {
			return err
		}
		if err := tx.Set(r.privateRef(uid, settingsDocID), &docs.Settings); err != nil {
			return err
		}
		if err := tx.Set(r.privateRef(uid, summaryDocID), &docs.Summary); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to seed documents for user '%s': %w", uid, err)
	}
	return created, nil
}
