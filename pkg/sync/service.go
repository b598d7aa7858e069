// Package sync implements the sales synchronization pipeline: paginated
// sale line fetches, grouping into sales, enrichment, dedup persistence and
// daily rollups.
package sync

import (
	"context"

	"github.com/taployalty/lightspeed-sync/pkg/sale"
)

// Request describes one sync run.
type Request struct {
	MerchantID string `validate:"required"`
	AccountID  string `validate:"required,numeric"`
	// Pages is the requested page count; the orchestrator clamps it to
	// [1, max_pages].
	Pages     int
	StartDate string `validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `validate:"omitempty,datetime=2006-01-02"`
}

// DateRange echoes the requested date filter in the response.
type DateRange struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

// Pagination describes how much of the upstream data one run covered.
type Pagination struct {
	PagesFetched int        `json:"pagesFetched"`
	MaxPages     int        `json:"maxPages"`
	PageSize     int        `json:"pageSize"`
	TotalSales   int        `json:"totalSales"`
	DateRange    *DateRange `json:"dateRange,omitempty"`
}

// Result is the outcome of one sync run: all assembled sales, newest first.
type Result struct {
	Sales      []sale.ProcessedSale `json:"sales"`
	Pagination Pagination           `json:"pagination"`
}

// Service defines the sync business logic.
type Service interface {
	SyncSales(ctx context.Context, req *Request) (*Result, error)
}
