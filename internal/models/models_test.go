package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTimestamp(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	ts := time.Date(2026, 3, 14, 10, 26, 53, 589_400_000, loc)

	assert.Equal(t, "2026-03-14T09:26:53.589Z", FormatTimestamp(ts))
	assert.Equal(t, "2026-03-14T09:26:53.000Z", FormatTimestamp(ts.Truncate(time.Second)))
}

func TestUserSummary_NullLastSessionDate(t *testing.T) {
	docs := NewUserDocuments(&AuthUser{UID: "uid-1"}, time.Now())

	raw, err := json.Marshal(docs.Summary)
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))

	assert.Contains(t, fields, "lastSessionDate")
	assert.Nil(t, fields["lastSessionDate"])
	assert.Equal(t, 0.0, fields["totalSessions"])
	assert.Equal(t, 0.0, fields["streakDays"])
}

func TestAuthResultJSON(t *testing.T) {
	raw, err := json.Marshal(Failed(errors.New("Firebase: Error (auth/popup-closed-by-user).")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"Firebase: Error (auth/popup-closed-by-user)."}`, string(raw))

	raw, err = json.Marshal(Succeeded(&AuthUser{UID: "uid-1", Email: "ada@example.com"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"user":{"uid":"uid-1","email":"ada@example.com"}}`, string(raw))
}
