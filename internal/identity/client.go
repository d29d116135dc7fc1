package identity

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"github.com/thierry260/vibewise-backend/internal/models"
)

const (
	googleProviderID  = "google.com"
	emailSignInReqTyp = "EMAIL_SIGNIN"
)

// GoogleScopes are the scopes requested from the Google provider.
var GoogleScopes = []string{"profile", "email"}

// AdminAuth is the part of the Firebase Admin auth client used here.
type AdminAuth interface {
	EmailSignInLink(ctx context.Context, email string, settings *auth.ActionCodeSettings) (string, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
}

// LinkSender delivers an email sign-in link for email that returns to continueURL.
type LinkSender interface {
	SendSignInLink(ctx context.Context, email, continueURL string) error
}

// Options configures a Client.
type Options struct {
	APIKey string
	OAuth  *oauth2.Config
	Admin  AdminAuth
	// Links overrides the default Identity Toolkit delivery (Firebase sends the mail).
	Links LinkSender
	// ToolkitOptions are appended to the Identity Toolkit client options.
	ToolkitOptions []option.ClientOption
}

// Client signs users in against Firebase Authentication. It implements core.IdentityProvider.
type Client struct {
	toolkit *identitytoolkit.RelyingpartyService
	admin   AdminAuth
	oauth   *oauth2.Config
	links   LinkSender
	logger  *zap.Logger
}

// GoogleOAuthConfig returns the OAuth2 configuration of the Google provider.
func GoogleOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       GoogleScopes,
		Endpoint:     google.Endpoint,
	}
}

// NewClient builds a Client talking to the Identity Toolkit API with the project's web API key.
func NewClient(ctx context.Context, opts Options, logger *zap.Logger) (*Client, error) {
	if opts.APIKey == "" {
		return nil, errors.New("identity: API key is required")
	}
	if opts.OAuth == nil {
		return nil, errors.New("identity: OAuth config is required")
	}
	if opts.Admin == nil {
		return nil, errors.New("identity: admin auth client is required")
	}

	clientOpts := append([]option.ClientOption{option.WithAPIKey(opts.APIKey)}, opts.ToolkitOptions...)
	svc, err := identitytoolkit.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("identity: create identity toolkit service: %w", err)
	}

	c := &Client{
		toolkit: svc.Relyingparty,
		admin:   opts.Admin,
		oauth:   opts.OAuth,
		links:   opts.Links,
		logger:  logger,
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.links == nil {
		c.links = &toolkitLinkSender{toolkit: svc.Relyingparty}
	}
	return c, nil
}

// GoogleAuthURL returns the consent page URL for state.
func (c *Client) GoogleAuthURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// SignInWithGoogle exchanges the authorization code with Google and signs the
// user in to Firebase with the resulting Google credential.
func (c *Client) SignInWithGoogle(ctx context.Context, code string) (*models.AuthUser, error) {
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("identity: exchange google code: %w", err)
	}

	post := url.Values{
		"access_token": {tok.AccessToken},
		"providerId":   {googleProviderID},
	}
	if idToken, ok := tok.Extra("id_token").(string); ok && idToken != "" {
		post.Set("id_token", idToken)
	}

	resp, err := c.toolkit.VerifyAssertion(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyAssertionRequest{
		RequestUri:        c.oauth.RedirectURL,
		PostBody:          post.Encode(),
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("identity: verify google assertion: %w", err)
	}

	return &models.AuthUser{
		UID:          resp.LocalId,
		Email:        resp.Email,
		DisplayName:  resp.DisplayName,
		PhotoURL:     resp.PhotoUrl,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

// SignInWithPassword signs in with email and password.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*models.AuthUser, error) {
	resp, err := c.toolkit.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("identity: verify password: %w", err)
	}

	return &models.AuthUser{
		UID:          resp.LocalId,
		Email:        resp.Email,
		DisplayName:  resp.DisplayName,
		PhotoURL:     resp.PhotoUrl,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

// SendSignInLink sends a magic link that opens continueURL in the app.
func (c *Client) SendSignInLink(ctx context.Context, email, continueURL string) error {
	return c.links.SendSignInLink(ctx, email, continueURL)
}

// SignInWithEmailLink completes a magic-link sign-in with the link's oobCode.
func (c *Client) SignInWithEmailLink(ctx context.Context, email, oobCode string) (*models.AuthUser, error) {
	resp, err := c.toolkit.EmailLinkSignin(&identitytoolkit.IdentitytoolkitRelyingpartyEmailLinkSigninRequest{
		Email:   email,
		OobCode: oobCode,
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("identity: email link sign-in: %w", err)
	}

	user := &models.AuthUser{
		UID:          resp.LocalId,
		Email:        resp.Email,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
	}

	// The email-link response carries no profile fields.
	record, err := c.admin.GetUser(ctx, resp.LocalId)
	if err != nil {
		c.logger.Warn("Could not load user record after email link sign-in", zap.String("uid", resp.LocalId), zap.Error(err))
		return user, nil
	}
	if record.UserInfo != nil {
		user.DisplayName = record.DisplayName
		user.PhotoURL = record.PhotoURL
	}
	return user, nil
}

// SignOut revokes the user's refresh tokens so every session has to sign in again.
func (c *Client) SignOut(ctx context.Context, uid string) error {
	if err := c.admin.RevokeRefreshTokens(ctx, uid); err != nil {
		return fmt.Errorf("identity: revoke refresh tokens for %s: %w", uid, err)
	}
	return nil
}

// toolkitLinkSender asks Firebase to send the sign-in email.
type toolkitLinkSender struct {
	toolkit *identitytoolkit.RelyingpartyService
}

func (s *toolkitLinkSender) SendSignInLink(ctx context.Context, email, continueURL string) error {
	_, err := s.toolkit.GetOobConfirmationCode(&identitytoolkit.Relyingparty{
		RequestType:        emailSignInReqTyp,
		Email:              email,
		ContinueUrl:        continueURL,
		CanHandleCodeInApp: true,
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("identity: send sign-in link: %w", err)
	}
	return nil
}
