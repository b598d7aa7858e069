// Package salestore persists processed sales, daily buckets and daily
// summaries keyed by merchant.
package salestore

import (
	"context"
	"errors"
	"time"

	"github.com/taployalty/lightspeed-sync/pkg/sale"
)

// ErrBucketNotFound is returned when no daily bucket exists for a day.
var ErrBucketNotFound = errors.New("daily bucket not found")

// DailyBucket holds the full sales detail for one merchant calendar day.
// Sales contains no two entries with the same saleID.
type DailyBucket struct {
	MerchantID  string
	DayID       string
	Sales       []sale.ProcessedSale
	TotalSales  int
	TotalAmount sale.Amount
	LastUpdated time.Time
}

// DailySummary holds just the per-day totals, rewritten on every sync that
// touches the day.
type DailySummary struct {
	MerchantID  string
	DayID       string
	TotalSales  int
	TotalAmount sale.Amount
	LastUpdated time.Time
}

// SaleWriter is the narrow interface the dedup writer needs.
type SaleWriter interface {
	// SaleExists reports whether a sale document is already stored.
	SaleExists(ctx context.Context, merchantID, saleID string) (bool, error)
	// InsertSales writes the given sales, skipping any that already exist,
	// and returns the number actually inserted.
	InsertSales(ctx context.Context, merchantID string, sales []sale.ProcessedSale) (int, error)
}

// DailyStore is the narrow interface the daily aggregator needs.
type DailyStore interface {
	// GetDailyBucket returns the bucket for a day, or ErrBucketNotFound.
	GetDailyBucket(ctx context.Context, merchantID, dayID string) (*DailyBucket, error)
	// PutDailyBucket creates or replaces the bucket for a day.
	PutDailyBucket(ctx context.Context, bucket *DailyBucket) error
	// PutDailySummary creates or replaces the summary for a day.
	PutDailySummary(ctx context.Context, summary *DailySummary) error
}

// Store combines all sale persistence operations.
type Store interface {
	SaleWriter
	DailyStore
}
