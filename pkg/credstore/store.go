package credstore

import (
	"context"
	"errors"
	"time"
)

// ErrCredentialNotFound is returned when a merchant has no stored integration.
var ErrCredentialNotFound = errors.New("credential not found")

// Credential is the stored OAuth pair for one merchant.
type Credential struct {
	MerchantID   string
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
	UpdatedAt    time.Time
}

// Store defines credential persistence for the sync pipeline.
type Store interface {
	// Get returns the credential for a merchant, or ErrCredentialNotFound.
	Get(ctx context.Context, merchantID string) (*Credential, error)
	// Put creates or replaces the credential for a merchant.
	Put(ctx context.Context, cred *Credential) error
	// UpdateTokens persists a refreshed token pair and bumps the update timestamp.
	UpdateTokens(ctx context.Context, merchantID, accessToken, refreshToken string, expiresIn int) error
}
