package credstore

import (
	"time"

	"github.com/uptrace/bun"
)

// CredentialDao is a data access object that maps directly to the
// 'pos_credentials' table in PostgreSQL. The refresh token is stored
// encrypted; the access token is short-lived and stored in the clear.
type CredentialDao struct {
	bun.BaseModel         `bun:"table:pos_credentials,alias:pc"`
	MerchantID            string    `bun:"merchant_id,pk,type:varchar(128)"`
	AccessToken           string    `bun:"access_token,notnull,type:text"`
	RefreshTokenEncrypted string    `bun:"refresh_token_encrypted,notnull,type:text"`
	ExpiresIn             int       `bun:"expires_in"`
	UpdatedAt             time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}
