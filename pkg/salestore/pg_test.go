package salestore

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/taployalty/lightspeed-sync/pkg/pgutil"
	mghelper "github.com/taployalty/lightspeed-sync/pkg/pgutil/migrations"
	"github.com/taployalty/lightspeed-sync/pkg/sale"
)

func setupStore(t *testing.T) (context.Context, *pgStore) {
	t.Helper()
	requireDockerAccess(t)

	ctx := context.Background()
	db, cleanup := pgutil.SetupTestDB(t)
	t.Cleanup(cleanup)

	err := mghelper.CreateSchema(ctx, db, &SaleDao{}, &DailyBucketDao{}, &DailySummaryDao{})
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	// The ON CONFLICT clauses target these unique indexes.
	if err = mghelper.CreateUniqueIndex(ctx, db, "pos_sales", "uq_pos_sales_merchant_sale", "merchant_id", "sale_id"); err != nil {
		t.Fatalf("failed to create sales index: %v", err)
	}
	if err = mghelper.CreateUniqueIndex(ctx, db, "daily_sales", "uq_daily_sales_merchant_day", "merchant_id", "day_id"); err != nil {
		t.Fatalf("failed to create bucket index: %v", err)
	}
	if err = mghelper.CreateUniqueIndex(ctx, db, "daily_sales_summary", "uq_daily_sales_summary_merchant_day", "merchant_id", "day_id"); err != nil {
		t.Fatalf("failed to create summary index: %v", err)
	}

	return ctx, NewStore(db)
}

func requireDockerAccess(t *testing.T) {
	t.Helper()

	candidates := []string{
		"/var/run/docker.sock",
		filepath.Join(os.Getenv("HOME"), ".docker/run/docker.sock"),
	}

	for _, sock := range candidates {
		if sock == "" {
			continue
		}
		if _, err := os.Stat(sock); err != nil {
			continue
		}
		conn, err := (&net.Dialer{}).DialContext(context.Background(), "unix", sock)
		if err == nil {
			_ = conn.Close()
			return
		}
	}

	t.Skip("docker daemon socket is not accessible; skipping testcontainer-backed salestore tests")
}

func newProcessedSale(saleID, total string) sale.ProcessedSale {
	amount, err := sale.AmountFromString(total)
	if err != nil {
		panic(err)
	}
	return sale.ProcessedSale{
		SaleID:       saleID,
		TicketNumber: "LS-" + saleID,
		TimeStamp:    time.Date(2026, 8, 27, 14, 30, 0, 0, time.UTC),
		CustomerName: "(No customer name)",
		Total:        amount,
		CalcTotal:    amount,
	}
}

func TestSalePGStore_ExistsAndInsert(t *testing.T) {
	ctx, s := setupStore(t)

	exists, err := s.SaleExists(ctx, "m1", "42")
	if err != nil {
		t.Fatalf("SaleExists() failed: %v", err)
	}
	if exists {
		t.Fatal("expected sale to not exist")
	}

	n, err := s.InsertSales(ctx, "m1", []sale.ProcessedSale{newProcessedSale("42", "7.75")})
	if err != nil {
		t.Fatalf("InsertSales() failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 inserted, got %d", n)
	}

	exists, err = s.SaleExists(ctx, "m1", "42")
	if err != nil {
		t.Fatalf("SaleExists() failed: %v", err)
	}
	if !exists {
		t.Fatal("expected sale to exist after insert")
	}

	// Same sale ID under another merchant is a distinct row.
	exists, err = s.SaleExists(ctx, "m2", "42")
	if err != nil {
		t.Fatalf("SaleExists() failed: %v", err)
	}
	if exists {
		t.Fatal("expected sale to be scoped to its merchant")
	}
}

func TestSalePGStore_InsertSkipsConflicts(t *testing.T) {
	ctx, s := setupStore(t)

	first := []sale.ProcessedSale{newProcessedSale("42", "7.75"), newProcessedSale("43", "3.00")}
	n, err := s.InsertSales(ctx, "m1", first)
	if err != nil {
		t.Fatalf("InsertSales() failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 inserted, got %d", n)
	}

	second := []sale.ProcessedSale{newProcessedSale("43", "3.00"), newProcessedSale("44", "1.25")}
	n, err = s.InsertSales(ctx, "m1", second)
	if err != nil {
		t.Fatalf("InsertSales() re-insert failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected only the new sale inserted, got %d", n)
	}

	pgutil.AssertRowCount(t, s.db, "pos_sales", 3)
}

func TestSalePGStore_InsertEmptyIsNoop(t *testing.T) {
	ctx, s := setupStore(t)

	n, err := s.InsertSales(ctx, "m1", nil)
	if err != nil {
		t.Fatalf("InsertSales() failed: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected 0 inserted, got %d", n)
	}
}

func TestSalePGStore_PayloadRoundTrip(t *testing.T) {
	ctx, s := setupStore(t)

	ps := newProcessedSale("42", "7.75")
	ps.Items = []sale.ProcessedItem{{
		ItemID:    "7",
		Name:      "Coffee",
		UnitPrice: "4.50",
		Quantity:  "1",
		ExtPrice:  "4.50",
		Fee:       &sale.ItemFee{Name: "deposit", Value: "0.10"},
	}}
	if _, err := s.InsertSales(ctx, "m1", []sale.ProcessedSale{ps}); err != nil {
		t.Fatalf("InsertSales() failed: %v", err)
	}

	dao := new(SaleDao)
	err := s.db.NewSelect().Model(dao).
		Where("merchant_id = ?", "m1").
		Where("sale_id = ?", "42").
		Scan(ctx)
	if err != nil {
		t.Fatalf("failed to read stored sale: %v", err)
	}

	if dao.Source != SourceSaleLine {
		t.Errorf("unexpected source %q", dao.Source)
	}
	if dao.SavedAt.IsZero() {
		t.Error("expected saved_at to be set")
	}
	got := dao.Payload
	if got.TicketNumber != "LS-42" {
		t.Errorf("unexpected ticket %q", got.TicketNumber)
	}
	if got.Total.StringFixed(2) != "7.75" {
		t.Errorf("unexpected total %s", got.Total.StringFixed(2))
	}
	if len(got.Items) != 1 || got.Items[0].Fee == nil || got.Items[0].Fee.Value != "0.10" {
		t.Errorf("items did not survive the round trip: %+v", got.Items)
	}
	if !got.TimeStamp.Equal(ps.TimeStamp) {
		t.Errorf("unexpected timestamp %s", got.TimeStamp)
	}
}

func TestDailyBucketPGStore_GetMissing(t *testing.T) {
	ctx, s := setupStore(t)

	_, err := s.GetDailyBucket(ctx, "m1", "2026-08-27")
	if !errors.Is(err, ErrBucketNotFound) {
		t.Fatalf("expected ErrBucketNotFound, got %v", err)
	}
}

func TestDailyBucketPGStore_PutAndGet(t *testing.T) {
	ctx, s := setupStore(t)

	bucket := &DailyBucket{
		MerchantID:  "m1",
		DayID:       "2026-08-27",
		Sales:       []sale.ProcessedSale{newProcessedSale("42", "7.75")},
		TotalSales:  1,
		TotalAmount: sale.NewAmount(decimal.RequireFromString("7.75")),
		LastUpdated: time.Now().UTC(),
	}
	if err := s.PutDailyBucket(ctx, bucket); err != nil {
		t.Fatalf("PutDailyBucket() failed: %v", err)
	}

	got, err := s.GetDailyBucket(ctx, "m1", "2026-08-27")
	if err != nil {
		t.Fatalf("GetDailyBucket() failed: %v", err)
	}
	if got.TotalSales != 1 {
		t.Errorf("unexpected total sales %d", got.TotalSales)
	}
	if got.TotalAmount.StringFixed(2) != "7.75" {
		t.Errorf("unexpected total amount %s", got.TotalAmount.StringFixed(2))
	}
	if len(got.Sales) != 1 || got.Sales[0].SaleID != "42" {
		t.Errorf("unexpected bucket sales: %+v", got.Sales)
	}
}

func TestDailyBucketPGStore_PutUpserts(t *testing.T) {
	ctx, s := setupStore(t)

	bucket := &DailyBucket{
		MerchantID:  "m1",
		DayID:       "2026-08-27",
		Sales:       []sale.ProcessedSale{newProcessedSale("42", "7.75")},
		TotalSales:  1,
		TotalAmount: sale.NewAmount(decimal.RequireFromString("7.75")),
		LastUpdated: time.Now().UTC(),
	}
	if err := s.PutDailyBucket(ctx, bucket); err != nil {
		t.Fatalf("PutDailyBucket() failed: %v", err)
	}

	bucket.Sales = append(bucket.Sales, newProcessedSale("43", "3.00"))
	bucket.TotalSales = 2
	bucket.TotalAmount = sale.NewAmount(decimal.RequireFromString("10.75"))
	if err := s.PutDailyBucket(ctx, bucket); err != nil {
		t.Fatalf("PutDailyBucket() upsert failed: %v", err)
	}

	got, err := s.GetDailyBucket(ctx, "m1", "2026-08-27")
	if err != nil {
		t.Fatalf("GetDailyBucket() failed: %v", err)
	}
	if got.TotalSales != 2 || got.TotalAmount.StringFixed(2) != "10.75" {
		t.Errorf("upsert did not replace bucket: %+v", got)
	}
	pgutil.AssertRowCount(t, s.db, "daily_sales", 1)
}

func TestDailySummaryPGStore_PutUpserts(t *testing.T) {
	ctx, s := setupStore(t)

	summary := &DailySummary{
		MerchantID:  "m1",
		DayID:       "2026-08-27",
		TotalSales:  1,
		TotalAmount: sale.NewAmount(decimal.RequireFromString("7.75")),
		LastUpdated: time.Now().UTC(),
	}
	if err := s.PutDailySummary(ctx, summary); err != nil {
		t.Fatalf("PutDailySummary() failed: %v", err)
	}

	summary.TotalSales = 3
	summary.TotalAmount = sale.NewAmount(decimal.RequireFromString("21.00"))
	if err := s.PutDailySummary(ctx, summary); err != nil {
		t.Fatalf("PutDailySummary() upsert failed: %v", err)
	}

	dao := new(DailySummaryDao)
	err := s.db.NewSelect().Model(dao).
		Where("merchant_id = ?", "m1").
		Where("day_id = ?", "2026-08-27").
		Scan(ctx)
	if err != nil {
		t.Fatalf("failed to read summary row: %v", err)
	}
	if dao.TotalSales != 3 || dao.TotalAmount != "21.00" {
		t.Errorf("upsert did not replace summary: %+v", dao)
	}
	pgutil.AssertRowCount(t, s.db, "daily_sales_summary", 1)
}
