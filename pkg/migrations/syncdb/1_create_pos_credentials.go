package syncdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	"github.com/taployalty/lightspeed-sync/pkg/credstore"
	mghelper "github.com/taployalty/lightspeed-sync/pkg/pgutil/migrations"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating pos_credentials table...")
		return mghelper.CreateSchema(ctx, db, &credstore.CredentialDao{})
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping pos_credentials table...")
		return mghelper.DropTables(ctx, db, &credstore.CredentialDao{})
	})
}
