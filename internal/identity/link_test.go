package identity

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEmailLink(t *testing.T) {
	direct := "https://vibewise.firebaseapp.com/__/auth/action?apiKey=k&mode=signIn&oobCode=CODE123&continueUrl=https%3A%2F%2Fvibewise.app%2Ffinish&lang=en"
	wrapped := "https://vibewise.page.link/?link=" + url.QueryEscape(direct) + "&apn=app.vibewise"
	deep := "https://vibewise.app/finish?deep_link_id=" + url.QueryEscape(direct)

	tests := []struct {
		name   string
		link   string
		want   string
		wantOK bool
	}{
		{"direct action link", direct, "CODE123", true},
		{"dynamic link wrapper", wrapped, "CODE123", true},
		{"deep_link_id wrapper", deep, "CODE123", true},
		{"password reset link", "https://x.firebaseapp.com/__/auth/action?mode=resetPassword&oobCode=C", "", false},
		{"missing code", "https://x.firebaseapp.com/__/auth/action?mode=signIn", "", false},
		{"not a url", "://", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseEmailLink(tt.link)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
