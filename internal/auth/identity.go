package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"
)

// ErrInvalidIdentity is returned when the identity provider rejects a token.
var ErrInvalidIdentity = errors.New("invalid identity token")

// Identity is the signed-in user object issued by the identity provider.
type Identity struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// IdentityVerifier exchanges a provider token for an Identity.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// GoogleVerifier validates Google ID tokens issued for a single OAuth client.
type GoogleVerifier struct {
	clientID string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

// NewGoogleVerifier creates a verifier for tokens whose audience is clientID.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{
		clientID: clientID,
		validate: idtoken.Validate,
	}
}

// Verify checks the token signature, audience and expiry with Google's keys.
func (v *GoogleVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("%w: token is empty", ErrInvalidIdentity)
	}
	if v.clientID == "" {
		return nil, fmt.Errorf("google sign-in is not configured")
	}

	payload, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	return identityFromClaims(payload.Subject, payload.Claims)
}

func identityFromClaims(subject string, claims map[string]interface{}) (*Identity, error) {
	email, _ := claims["email"].(string)
	if subject == "" || email == "" {
		return nil, fmt.Errorf("%w: subject or email claim missing", ErrInvalidIdentity)
	}
	if verified, ok := claims["email_verified"].(bool); ok && !verified {
		return nil, fmt.Errorf("%w: email %s is not verified", ErrInvalidIdentity, email)
	}
	name, _ := claims["name"].(string)
	picture, _ := claims["picture"].(string)
	return &Identity{
		Subject: subject,
		Email:   strings.ToLower(email),
		Name:    name,
		Picture: picture,
	}, nil
}
