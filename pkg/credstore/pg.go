package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type pgStore struct {
	db     *bun.DB
	cipher *Cipher
}

// NewStore creates a new postgres implementation of the credential store.
func NewStore(db *bun.DB, cipher *Cipher) *pgStore {
	return &pgStore{db: db, cipher: cipher}
}

func (s *pgStore) Get(ctx context.Context, merchantID string) (*Credential, error) {
	dao := new(CredentialDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("merchant_id = ?", merchantID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	refreshToken, err := s.cipher.Decrypt(merchantID, dao.RefreshTokenEncrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt refresh token: %w", err)
	}

	return &Credential{
		MerchantID:   dao.MerchantID,
		AccessToken:  dao.AccessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    dao.ExpiresIn,
		UpdatedAt:    dao.UpdatedAt,
	}, nil
}

func (s *pgStore) Put(ctx context.Context, cred *Credential) error {
	encrypted, err := s.cipher.Encrypt(cred.MerchantID, cred.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	dao := &CredentialDao{
		MerchantID:            cred.MerchantID,
		AccessToken:           cred.AccessToken,
		RefreshTokenEncrypted: encrypted,
		ExpiresIn:             cred.ExpiresIn,
		UpdatedAt:             time.Now().UTC(),
	}

	_, err = s.db.NewInsert().
		Model(dao).
		On("CONFLICT (merchant_id) DO UPDATE").
		Set("access_token = EXCLUDED.access_token").
		Set("refresh_token_encrypted = EXCLUDED.refresh_token_encrypted").
		Set("expires_in = EXCLUDED.expires_in").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to put credential: %w", err)
	}
	return nil
}

func (s *pgStore) UpdateTokens(ctx context.Context, merchantID, accessToken, refreshToken string, expiresIn int) error {
	encrypted, err := s.cipher.Encrypt(merchantID, refreshToken)
	if err != nil {
		return fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	res, err := s.db.NewUpdate().
		Model((*CredentialDao)(nil)).
		Set("access_token = ?", accessToken).
		Set("refresh_token_encrypted = ?", encrypted).
		Set("expires_in = ?", expiresIn).
		Set("updated_at = NOW()").
		Where("merchant_id = ?", merchantID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update tokens: %w", err)
	}

	rows, err := res.RowsAffected()
	if err == nil && rows == 0 {
		return ErrCredentialNotFound
	}
	return nil
}
