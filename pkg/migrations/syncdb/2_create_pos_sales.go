package syncdb

import (
	"context"
	"log"

	"github.com/uptrace/bun"

	mghelper "github.com/taployalty/lightspeed-sync/pkg/pgutil/migrations"
	"github.com/taployalty/lightspeed-sync/pkg/salestore"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating pos_sales table...")
		if err := mghelper.CreateSchema(ctx, db, &salestore.SaleDao{}); err != nil {
			return err
		}
		// The insert path relies on this unique index for ON CONFLICT dedup.
		if err := mghelper.CreateUniqueIndex(ctx, db, "pos_sales", "uq_pos_sales_merchant_sale", "merchant_id", "sale_id"); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &salestore.SaleDao{}, "saved_at")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping pos_sales table...")
		return mghelper.DropTables(ctx, db, &salestore.SaleDao{})
	})
}
