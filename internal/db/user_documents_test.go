package db

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thierry260/vibewise-backend/internal/models"
)

func TestNewFirestoreUserDocumentRepository_NilClient(t *testing.T) {
	_, err := NewFirestoreUserDocumentRepository(nil)
	assert.Error(t, err)
}

// emulatorRepo connects to the Firestore emulator, or skips the test when
// FIRESTORE_EMULATOR_HOST is not set.
func emulatorRepo(t *testing.T) UserDocumentRepository {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "vibewise-test")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	repo, err := NewFirestoreUserDocumentRepository(client)
	require.NoError(t, err)
	return repo
}

func testDocs(uid string) models.UserDocuments {
	user := &models.AuthUser{UID: uid, Email: "ada@example.com", DisplayName: "Ada"}
	return models.NewUserDocuments(user, time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC))
}

func TestEmulator_ProfileRoundTrip(t *testing.T) {
	repo := emulatorRepo(t)
	ctx := context.Background()
	docs := testDocs(uuid.NewString())

	_, err := repo.GetProfile(ctx, docs.Profile.UID)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.SetProfile(ctx, &docs.Profile))
	require.NoError(t, repo.SetSettings(ctx, docs.Profile.UID, &docs.Settings))
	require.NoError(t, repo.SetSummary(ctx, docs.Profile.UID, &docs.Summary))

	got, err := repo.GetProfile(ctx, docs.Profile.UID)
	require.NoError(t, err)
	if diff := cmp.Diff(&docs.Profile, got); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
}

func TestEmulator_SeedAtomically(t *testing.T) {
	repo := emulatorRepo(t)
	ctx := context.Background()
	docs := testDocs(uuid.NewString())

	created, err := repo.SeedAtomically(ctx, docs)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.SeedAtomically(ctx, docs)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestEmptyUIDRejected(t *testing.T) {
	repo := &firestoreUserDocumentRepository{}
	ctx := context.Background()

	_, err := repo.GetProfile(ctx, "")
	assert.Error(t, err)
	assert.Error(t, repo.SetProfile(ctx, &models.UserProfile{}))
	assert.Error(t, repo.SetSettings(ctx, "", &models.UserSettings{}))
	assert.Error(t, repo.SetSummary(ctx, "", &models.UserSummary{}))
	_, err = repo.SeedAtomically(ctx, models.UserDocuments{})
	assert.Error(t, err)
}
