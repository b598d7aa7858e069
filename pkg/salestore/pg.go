package salestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/taployalty/lightspeed-sync/pkg/sale"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the sale store.
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) SaleExists(ctx context.Context, merchantID, saleID string) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*SaleDao)(nil)).
		Where("merchant_id = ?", merchantID).
		Where("sale_id = ?", saleID).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check sale exists: %w", err)
	}
	return exists, nil
}

func (s *pgStore) InsertSales(ctx context.Context, merchantID string, sales []sale.ProcessedSale) (int, error) {
	if len(sales) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	daos := make([]SaleDao, 0, len(sales))
	for i := range sales {
		daos = append(daos, SaleDao{
			MerchantID: merchantID,
			SaleID:     sales[i].SaleID,
			Payload:    &sales[i],
			SavedAt:    now,
			Source:     SourceSaleLine,
		})
	}

	// The unique index on (merchant_id, sale_id) makes concurrent syncs safe:
	// a sale written by another run between the existence check and this
	// insert is silently skipped.
	res, err := s.db.NewInsert().
		Model(&daos).
		On("CONFLICT (merchant_id, sale_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to insert sales: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return len(sales), nil
	}
	return int(rows), nil
}

func (s *pgStore) GetDailyBucket(ctx context.Context, merchantID, dayID string) (*DailyBucket, error) {
	dao := new(DailyBucketDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("merchant_id = ?", merchantID).
		Where("day_id = ?", dayID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBucketNotFound
		}
		return nil, fmt.Errorf("failed to get daily bucket: %w", err)
	}
	return toBucket(dao)
}

func (s *pgStore) PutDailyBucket(ctx context.Context, bucket *DailyBucket) error {
	dao := toBucketDao(bucket)

	_, err := s.db.NewInsert().
		Model(dao).
		On("CONFLICT (merchant_id, day_id) DO UPDATE").
		Set("sales = EXCLUDED.sales").
		Set("total_sales = EXCLUDED.total_sales").
		Set("total_amount = EXCLUDED.total_amount").
		Set("last_updated = EXCLUDED.last_updated").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to put daily bucket: %w", err)
	}
	return nil
}

func (s *pgStore) PutDailySummary(ctx context.Context, summary *DailySummary) error {
	dao := toSummaryDao(summary)

	_, err := s.db.NewInsert().
		Model(dao).
		On("CONFLICT (merchant_id, day_id) DO UPDATE").
		Set("total_sales = EXCLUDED.total_sales").
		Set("total_amount = EXCLUDED.total_amount").
		Set("last_updated = EXCLUDED.last_updated").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to put daily summary: %w", err)
	}
	return nil
}
