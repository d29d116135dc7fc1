package identity

import (
	"context"
	"fmt"
	"html"

	"firebase.google.com/go/v4/auth"
)

// Mailer sends one email.
type Mailer interface {
	Send(recipient, subject, body string) error
}

const signInSubject = "Sign in to VibeWise"

// MailLinkSender generates sign-in links with the Admin SDK and mails them
// through our own SMTP server instead of Firebase's mailer.
type MailLinkSender struct {
	admin  AdminAuth
	mailer Mailer
}

// NewMailLinkSender returns a LinkSender backed by admin and mailer.
func NewMailLinkSender(admin AdminAuth, mailer Mailer) *MailLinkSender {
	return &MailLinkSender{admin: admin, mailer: mailer}
}

func (s *MailLinkSender) SendSignInLink(ctx context.Context, email, continueURL string) error {
	link, err := s.admin.EmailSignInLink(ctx, email, &auth.ActionCodeSettings{
		URL:             continueURL,
		HandleCodeInApp: true,
	})
	if err != nil {
		return fmt.Errorf("identity: generate sign-in link: %w", err)
	}

	if err := s.mailer.Send(email, signInSubject, signInBody(link)); err != nil {
		return fmt.Errorf("identity: mail sign-in link: %w", err)
	}
	return nil
}

func signInBody(link string) string {
	escaped := html.EscapeString(link)
	return "<html><body>" +
		"<p>Click the link below to sign in to VibeWise.</p>" +
		`<p><a href="` + escaped + `">Sign in</a></p>` +
		"<p>If you did not ask for this email you can ignore it.</p>" +
		"</body></html>"
}
