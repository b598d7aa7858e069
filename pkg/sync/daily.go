package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/taployalty/lightspeed-sync/internal/metrics"
	"github.com/taployalty/lightspeed-sync/pkg/sale"
	"github.com/taployalty/lightspeed-sync/pkg/salestore"
)

// Aggregator maintains the per-day bucket and summary documents.
type Aggregator struct {
	store  salestore.DailyStore
	logger *zap.Logger
	now    func() time.Time
}

// NewAggregator creates a daily aggregator over the given store.
func NewAggregator(store salestore.DailyStore, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Aggregate buckets the sales by UTC calendar day and merges each day into
// its stored bucket, deduplicated by saleID. Void/adjustment items (itemID
// "0") are dropped from stored detail; the sale itself still counts. The
// per-day summary is rewritten for every touched day. A failed day is
// logged and does not stop the remaining days.
func (a *Aggregator) Aggregate(ctx context.Context, merchantID string, sales []sale.ProcessedSale) error {
	if len(sales) == 0 {
		return nil
	}

	byDay := make(map[string][]sale.ProcessedSale)
	var dayOrder []string
	for _, s := range sales {
		dayID := s.DayID()
		if dayID == "" {
			continue
		}
		if _, ok := byDay[dayID]; !ok {
			dayOrder = append(dayOrder, dayID)
		}
		byDay[dayID] = append(byDay[dayID], stripVoidItems(s))
	}

	a.logger.Debug("daily aggregation started",
		zap.String("merchant_id", merchantID),
		zap.Int("sales", len(sales)),
		zap.Int("days", len(dayOrder)),
	)

	var firstErr error
	for _, dayID := range dayOrder {
		if err := a.aggregateDay(ctx, merchantID, dayID, byDay[dayID]); err != nil {
			metrics.PersistenceErrors.WithLabelValues("daily_bucket").Inc()
			a.logger.Error("daily bucket update failed",
				zap.String("merchant_id", merchantID),
				zap.String("day_id", dayID),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (a *Aggregator) aggregateDay(ctx context.Context, merchantID, dayID string, daySales []sale.ProcessedSale) error {
	bucket, err := a.store.GetDailyBucket(ctx, merchantID, dayID)
	switch {
	case errors.Is(err, salestore.ErrBucketNotFound):
		bucket = &salestore.DailyBucket{
			MerchantID: merchantID,
			DayID:      dayID,
			Sales:      daySales,
		}
		bucket.TotalSales = len(bucket.Sales)
		bucket.TotalAmount = sumTotals(bucket.Sales)
		bucket.LastUpdated = a.now().UTC()

		if err := a.store.PutDailyBucket(ctx, bucket); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		a.logger.Debug("daily bucket created",
			zap.String("day_id", dayID),
			zap.Int("sales", bucket.TotalSales),
		)

	case err != nil:
		return fmt.Errorf("load bucket: %w", err)

	default:
		existing := make(map[string]struct{}, len(bucket.Sales))
		for _, s := range bucket.Sales {
			existing[s.SaleID] = struct{}{}
		}

		var newSales []sale.ProcessedSale
		for _, s := range daySales {
			if _, ok := existing[s.SaleID]; !ok {
				newSales = append(newSales, s)
			}
		}

		if len(newSales) > 0 {
			bucket.Sales = append(bucket.Sales, newSales...)
			bucket.TotalSales = len(bucket.Sales)
			bucket.TotalAmount = sumTotals(bucket.Sales)
			bucket.LastUpdated = a.now().UTC()

			if err := a.store.PutDailyBucket(ctx, bucket); err != nil {
				return fmt.Errorf("update bucket: %w", err)
			}
			a.logger.Debug("daily bucket updated",
				zap.String("day_id", dayID),
				zap.Int("new_sales", len(newSales)),
				zap.Int("total_sales", bucket.TotalSales),
			)
		}
	}

	// The summary is rewritten even when the bucket did not change.
	summary := &salestore.DailySummary{
		MerchantID:  merchantID,
		DayID:       dayID,
		TotalSales:  bucket.TotalSales,
		TotalAmount: bucket.TotalAmount,
		LastUpdated: a.now().UTC(),
	}
	if err := a.store.PutDailySummary(ctx, summary); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// stripVoidItems returns a copy of the sale without items whose itemID is
// empty or the "0" sentinel.
func stripVoidItems(s sale.ProcessedSale) sale.ProcessedSale {
	filtered := make([]sale.ProcessedItem, 0, len(s.Items))
	for _, item := range s.Items {
		if item.ItemID == "" || item.ItemID == "0" {
			continue
		}
		filtered = append(filtered, item)
	}
	s.Items = filtered
	return s
}

func sumTotals(sales []sale.ProcessedSale) sale.Amount {
	total := decimal.Zero
	for _, s := range sales {
		total = total.Add(s.Total.Decimal)
	}
	return sale.NewAmount(total.Round(2))
}
