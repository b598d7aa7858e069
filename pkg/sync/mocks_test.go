package sync

import (
	"context"

	"github.com/taployalty/lightspeed-sync/pkg/credstore"
	"github.com/taployalty/lightspeed-sync/pkg/lightspeed"
	"github.com/taployalty/lightspeed-sync/pkg/sale"
	"github.com/taployalty/lightspeed-sync/pkg/salestore"
)

// mockClient is a mock implementation of both pageFetcher and detailClient
type mockClient struct {
	FetchSaleLinesFunc func(ctx context.Context, accessToken, accountID string, q lightspeed.SaleLinesQuery) (*lightspeed.SaleLinePage, error)
	FetchItemFunc      func(ctx context.Context, accessToken, accountID, itemID string) (*lightspeed.Item, error)
	FetchCustomersFunc func(ctx context.Context, accessToken, accountID string, customerIDs []string) ([]lightspeed.Customer, error)
}

func (m *mockClient) FetchSaleLines(ctx context.Context, accessToken, accountID string, q lightspeed.SaleLinesQuery) (*lightspeed.SaleLinePage, error) {
	if m.FetchSaleLinesFunc != nil {
		return m.FetchSaleLinesFunc(ctx, accessToken, accountID, q)
	}
	return &lightspeed.SaleLinePage{}, nil
}

func (m *mockClient) FetchItem(ctx context.Context, accessToken, accountID, itemID string) (*lightspeed.Item, error) {
	if m.FetchItemFunc != nil {
		return m.FetchItemFunc(ctx, accessToken, accountID, itemID)
	}
	return &lightspeed.Item{ItemID: itemID}, nil
}

func (m *mockClient) FetchCustomers(ctx context.Context, accessToken, accountID string, customerIDs []string) ([]lightspeed.Customer, error) {
	if m.FetchCustomersFunc != nil {
		return m.FetchCustomersFunc(ctx, accessToken, accountID, customerIDs)
	}
	return nil, nil
}

// mockRefresher is a mock implementation of tokenRefresher
type mockRefresher struct {
	RefreshFunc func(ctx context.Context, merchantID, refreshToken string) (string, error)
}

func (m *mockRefresher) Refresh(ctx context.Context, merchantID, refreshToken string) (string, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, merchantID, refreshToken)
	}
	return "", nil
}

// mockCredReader is a mock implementation of credentialReader
type mockCredReader struct {
	GetFunc func(ctx context.Context, merchantID string) (*credstore.Credential, error)
}

func (m *mockCredReader) Get(ctx context.Context, merchantID string) (*credstore.Credential, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, merchantID)
	}
	return &credstore.Credential{MerchantID: merchantID, AccessToken: "token", RefreshToken: "refresh"}, nil
}

// mockSaleWriter is a mock implementation of salestore.SaleWriter
type mockSaleWriter struct {
	SaleExistsFunc  func(ctx context.Context, merchantID, saleID string) (bool, error)
	InsertSalesFunc func(ctx context.Context, merchantID string, sales []sale.ProcessedSale) (int, error)
}

func (m *mockSaleWriter) SaleExists(ctx context.Context, merchantID, saleID string) (bool, error) {
	if m.SaleExistsFunc != nil {
		return m.SaleExistsFunc(ctx, merchantID, saleID)
	}
	return false, nil
}

func (m *mockSaleWriter) InsertSales(ctx context.Context, merchantID string, sales []sale.ProcessedSale) (int, error) {
	if m.InsertSalesFunc != nil {
		return m.InsertSalesFunc(ctx, merchantID, sales)
	}
	return len(sales), nil
}

// mockDailyStore is a mock implementation of salestore.DailyStore
type mockDailyStore struct {
	GetDailyBucketFunc  func(ctx context.Context, merchantID, dayID string) (*salestore.DailyBucket, error)
	PutDailyBucketFunc  func(ctx context.Context, bucket *salestore.DailyBucket) error
	PutDailySummaryFunc func(ctx context.Context, summary *salestore.DailySummary) error
}

func (m *mockDailyStore) GetDailyBucket(ctx context.Context, merchantID, dayID string) (*salestore.DailyBucket, error) {
	if m.GetDailyBucketFunc != nil {
		return m.GetDailyBucketFunc(ctx, merchantID, dayID)
	}
	return nil, salestore.ErrBucketNotFound
}

func (m *mockDailyStore) PutDailyBucket(ctx context.Context, bucket *salestore.DailyBucket) error {
	if m.PutDailyBucketFunc != nil {
		return m.PutDailyBucketFunc(ctx, bucket)
	}
	return nil
}

func (m *mockDailyStore) PutDailySummary(ctx context.Context, summary *salestore.DailySummary) error {
	if m.PutDailySummaryFunc != nil {
		return m.PutDailySummaryFunc(ctx, summary)
	}
	return nil
}
