package models

import "time"

// TimestampLayout is the ISO-8601 layout used for the createdAt/updatedAt strings
// written to the user documents (UTC, millisecond precision).
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Default values for a freshly seeded user.
const (
	DefaultTheme               = "light"
	DefaultNotificationEnabled = true
)

// FormatTimestamp renders t the way the user documents store it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// UserProfile is the public profile document stored at users/{uid}.
type UserProfile struct {
	UID         string `json:"uid" firestore:"uid"`
	Email       string `json:"email" firestore:"email"`
	DisplayName string `json:"displayName" firestore:"displayName"`
	PhotoURL    string `json:"photoURL" firestore:"photoURL"`
	CreatedAt   string `json:"createdAt" firestore:"createdAt"`
	UpdatedAt   string `json:"updatedAt" firestore:"updatedAt"`
}

// UserSettings is stored at users/{uid}/private/settings.
type UserSettings struct {
	Theme               string `json:"theme" firestore:"theme"`
	NotificationEnabled bool   `json:"notificationEnabled" firestore:"notificationEnabled"`
	CreatedAt           string `json:"createdAt" firestore:"createdAt"`
	UpdatedAt           string `json:"updatedAt" firestore:"updatedAt"`
}

// UserSummary is stored at users/{uid}/private/summary.
// LastSessionDate stays null until the first session is recorded.
type UserSummary struct {
	TotalSessions   int     `json:"totalSessions" firestore:"totalSessions"`
	StreakDays      int     `json:"streakDays" firestore:"streakDays"`
	LastSessionDate *string `json:"lastSessionDate" firestore:"lastSessionDate"`
	CreatedAt       string  `json:"createdAt" firestore:"createdAt"`
	UpdatedAt       string  `json:"updatedAt" firestore:"updatedAt"`
}

// UserDocuments groups the three documents written on a user's first sign-in.
type UserDocuments struct {
	Profile  UserProfile
	Settings UserSettings
	Summary  UserSummary
}

// NewUserDocuments builds the first-sign-in document set for user, stamped with now.
func NewUserDocuments(user *AuthUser, now time.Time) UserDocuments {
	ts := FormatTimestamp(now)
	return UserDocuments{
		Profile: UserProfile{
			UID:         user.UID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			PhotoURL:    user.PhotoURL,
			CreatedAt:   ts,
			UpdatedAt:   ts,
		},
		Settings: UserSettings{
			Theme:               DefaultTheme,
			NotificationEnabled: DefaultNotificationEnabled,
			CreatedAt:           ts,
			UpdatedAt:           ts,
		},
		Summary: UserSummary{
			TotalSessions:   0,
			StreakDays:      0,
			LastSessionDate: nil,
			CreatedAt:       ts,
			UpdatedAt:       ts,
		},
	}
}
