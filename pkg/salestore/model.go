package salestore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/taployalty/lightspeed-sync/pkg/sale"
)

// SourceSaleLine marks sale documents ingested from the SaleLine endpoint.
const SourceSaleLine = "lightspeed_saleline"

// SaleDao is a data access object that maps directly to the 'pos_sales'
// table in PostgreSQL. The normalized sale is stored as a JSONB document;
// merchant_id + sale_id carry a unique index for dedup.
type SaleDao struct {
	bun.BaseModel `bun:"table:pos_sales,alias:ps"`
	ID            int64               `bun:"id,pk,autoincrement"`
	MerchantID    string              `bun:"merchant_id,notnull,type:varchar(128)"`
	SaleID        string              `bun:"sale_id,notnull,type:varchar(64)"`
	Payload       *sale.ProcessedSale `bun:"payload,notnull,type:jsonb"`
	SavedAt       time.Time           `bun:"saved_at,nullzero,default:current_timestamp"`
	Source        string              `bun:"source,notnull,type:varchar(64)"`
}

// DailyBucketDao maps to the 'daily_sales' table. merchant_id + day_id
// carry a unique index.
type DailyBucketDao struct {
	bun.BaseModel `bun:"table:daily_sales,alias:ds"`
	ID            int64                `bun:"id,pk,autoincrement"`
	MerchantID    string               `bun:"merchant_id,notnull,type:varchar(128)"`
	DayID         string               `bun:"day_id,notnull,type:varchar(10)"`
	Sales         []sale.ProcessedSale `bun:"sales,notnull,type:jsonb"`
	TotalSales    int                  `bun:"total_sales,notnull"`
	TotalAmount   string               `bun:"total_amount,notnull,type:numeric(14,2)"`
	LastUpdated   time.Time            `bun:"last_updated,nullzero,default:current_timestamp"`
}

// DailySummaryDao maps to the 'daily_sales_summary' table. merchant_id +
// day_id carry a unique index.
type DailySummaryDao struct {
	bun.BaseModel `bun:"table:daily_sales_summary,alias:dss"`
	ID            int64     `bun:"id,pk,autoincrement"`
	MerchantID    string    `bun:"merchant_id,notnull,type:varchar(128)"`
	DayID         string    `bun:"day_id,notnull,type:varchar(10)"`
	TotalSales    int       `bun:"total_sales,notnull"`
	TotalAmount   string    `bun:"total_amount,notnull,type:numeric(14,2)"`
	LastUpdated   time.Time `bun:"last_updated,nullzero,default:current_timestamp"`
}

func toBucketDao(b *DailyBucket) *DailyBucketDao {
	return &DailyBucketDao{
		MerchantID:  b.MerchantID,
		DayID:       b.DayID,
		Sales:       b.Sales,
		TotalSales:  b.TotalSales,
		TotalAmount: b.TotalAmount.StringFixed(2),
		LastUpdated: b.LastUpdated,
	}
}

func toBucket(dao *DailyBucketDao) (*DailyBucket, error) {
	amount, err := sale.AmountFromString(dao.TotalAmount)
	if err != nil {
		return nil, err
	}
	return &DailyBucket{
		MerchantID:  dao.MerchantID,
		DayID:       dao.DayID,
		Sales:       dao.Sales,
		TotalSales:  dao.TotalSales,
		TotalAmount: amount,
		LastUpdated: dao.LastUpdated,
	}, nil
}

func toSummaryDao(s *DailySummary) *DailySummaryDao {
	return &DailySummaryDao{
		MerchantID:  s.MerchantID,
		DayID:       s.DayID,
		TotalSales:  s.TotalSales,
		TotalAmount: s.TotalAmount.StringFixed(2),
		LastUpdated: s.LastUpdated,
	}
}
