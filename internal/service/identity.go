package service

import (
	"context"
	"fmt"

	googleAuthIDTokenVerifier "github.com/futurenda/google-auth-id-token-verifier"
)

// Identity is the verified claim set of a federated ID token.
type Identity struct {
	Email   string
	Name    string
	Subject string
}

// IdentityVerifier validates a federated ID token and extracts the
// caller's identity.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
}

// GoogleVerifier verifies Google-issued ID tokens against a client ID.
type GoogleVerifier struct {
	clientID string
}

// NewGoogleVerifier constructs the verifier.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID}
}

// Verify checks the token signature and audience, then decodes the
// claim set.
func (g *GoogleVerifier) Verify(_ context.Context, idToken string) (*Identity, error) {
	v := googleAuthIDTokenVerifier.Verifier{}
	if err := v.VerifyIDToken(idToken, []string{g.clientID}); err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}
	claimSet, err := googleAuthIDTokenVerifier.Decode(idToken)
	if err != nil {
		return nil, fmt.Errorf("decode id token: %w", err)
	}
	return &Identity{Email: claimSet.Email, Name: claimSet.Name, Subject: claimSet.Sub}, nil
}
