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
		log.Println("creating daily_sales tables...")
		if err := mghelper.CreateSchema(ctx, db, &salestore.DailyBucketDao{}, &salestore.DailySummaryDao{}); err != nil {
			return err
		}
		// Bucket and summary upserts both target (merchant_id, day_id).
		if err := mghelper.CreateUniqueIndex(ctx, db, "daily_sales", "uq_daily_sales_merchant_day", "merchant_id", "day_id"); err != nil {
			return err
		}
		return mghelper.CreateUniqueIndex(ctx, db, "daily_sales_summary", "uq_daily_sales_summary_merchant_day", "merchant_id", "day_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping daily_sales tables...")
		return mghelper.DropTables(ctx, db, &salestore.DailyBucketDao{}, &salestore.DailySummaryDao{})
	})
}
