package sync

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taployalty/lightspeed-sync/internal/metrics"
	apperrors "github.com/taployalty/lightspeed-sync/pkg/app/errors"
	"github.com/taployalty/lightspeed-sync/pkg/credstore"
	"github.com/taployalty/lightspeed-sync/pkg/lightspeed"
	"github.com/taployalty/lightspeed-sync/pkg/sale"
)

// pageFetcher is the paginated-fetch surface of the Lightspeed client.
type pageFetcher interface {
	FetchSaleLines(ctx context.Context, accessToken, accountID string, q lightspeed.SaleLinesQuery) (*lightspeed.SaleLinePage, error)
}

// tokenRefresher exchanges a refresh token for a new access token.
type tokenRefresher interface {
	Refresh(ctx context.Context, merchantID, refreshToken string) (string, error)
}

// credentialReader is the read-only surface of the credential store.
type credentialReader interface {
	Get(ctx context.Context, merchantID string) (*credstore.Credential, error)
}

// Orchestrator runs the sync pipeline end to end: fetch pages, group lines
// into sales, enrich, then hand the results to background persistence.
type Orchestrator struct {
	client     pageFetcher
	refresher  tokenRefresher
	creds      credentialReader
	enricher   *Enricher
	writer     *Writer
	aggregator *Aggregator
	supervisor *Supervisor
	logger     *zap.Logger

	pageSize int
	maxPages int
}

// NewOrchestrator wires the pipeline stages together. pageSize and maxPages
// bound how much upstream data one run may pull.
func NewOrchestrator(
	client pageFetcher,
	refresher tokenRefresher,
	creds credentialReader,
	enricher *Enricher,
	writer *Writer,
	aggregator *Aggregator,
	supervisor *Supervisor,
	pageSize, maxPages int,
	logger *zap.Logger,
) *Orchestrator {
	if pageSize <= 0 {
		pageSize = 200
	}
	if maxPages <= 0 {
		maxPages = 5
	}
	return &Orchestrator{
		client:     client,
		refresher:  refresher,
		creds:      creds,
		enricher:   enricher,
		writer:     writer,
		aggregator: aggregator,
		supervisor: supervisor,
		logger:     logger,
		pageSize:   pageSize,
		maxPages:   maxPages,
	}
}

// SyncSales pulls up to req.Pages pages of sale lines, assembles them into
// sales and schedules persistence in the background. The response is built
// from whatever pages were fetched; a provider failure after the first page
// truncates the run instead of failing it.
func (o *Orchestrator) SyncSales(ctx context.Context, req *Request) (*Result, error) {
	timer := time.Now()
	runID := uuid.NewString()
	logger := o.logger.With(
		zap.String("run_id", runID),
		zap.String("merchant_id", req.MerchantID),
	)

	pages := req.Pages
	if pages < 1 {
		pages = 1
	}
	if pages > o.maxPages {
		pages = o.maxPages
	}

	cred, err := o.creds.Get(ctx, req.MerchantID)
	if err != nil {
		metrics.SyncRuns.WithLabelValues("failure").Inc()
		if errors.Is(err, credstore.ErrCredentialNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "integration not found for merchant")
		}
		return nil, apperrors.GeneralError(err)
	}
	if cred.AccessToken == "" {
		metrics.SyncRuns.WithLabelValues("failure").Inc()
		return nil, apperrors.UnAuthorizedError(nil, "no access token stored for merchant")
	}
	accessToken := cred.AccessToken

	var (
		allSales     []sale.ProcessedSale
		pagesFetched int
		cursor       string
	)

	for page := 0; page < pages; page++ {
		q := lightspeed.SaleLinesQuery{
			Limit:     o.pageSize,
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
			Cursor:    cursor,
		}

		linePage, err := o.client.FetchSaleLines(ctx, accessToken, req.AccountID, q)
		if err != nil {
			// An expired token surfaces as a 401 on the first page. Refresh
			// once and retry; mid-run expiry is not handled.
			var apiErr *lightspeed.APIError
			if page == 0 && errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
				accessToken, linePage, err = o.refreshAndRetry(ctx, req, cred, q)
			}
			if err != nil {
				metrics.PagesFetched.WithLabelValues("failure").Inc()
				if page == 0 {
					metrics.SyncRuns.WithLabelValues("failure").Inc()
					return nil, o.firstPageError(err)
				}
				logger.Warn("page fetch failed, returning partial result",
					zap.Int("page", page+1),
					zap.Error(err),
				)
				break
			}
		}
		metrics.PagesFetched.WithLabelValues("success").Inc()
		pagesFetched++

		if len(linePage.Lines) == 0 {
			break
		}

		groups := GroupLines(linePage.Lines)
		o.enricher.EnrichItems(ctx, accessToken, req.AccountID, groups)
		customers := o.enricher.FetchCustomerNames(ctx, accessToken, req.AccountID, groups)

		for _, group := range groups {
			s, err := AssembleSale(group, customers)
			if err != nil {
				logger.Warn("sale assembly failed",
					zap.String("sale_id", group.SaleID),
					zap.Error(err),
				)
				continue
			}
			allSales = append(allSales, *s)
		}

		logger.Debug("page processed",
			zap.Int("page", page+1),
			zap.Int("lines", len(linePage.Lines)),
			zap.Int("sales", len(groups)),
		)

		cursor = linePage.Attributes.Next
		if cursor == "" || len(linePage.Lines) < o.pageSize {
			break
		}
	}

	sort.Slice(allSales, func(i, j int) bool {
		return allSales[i].TimeStamp.After(allSales[j].TimeStamp)
	})

	metrics.SalesProcessed.Add(float64(len(allSales)))

	if len(allSales) > 0 {
		merchantID := req.MerchantID
		persisted := make([]sale.ProcessedSale, len(allSales))
		copy(persisted, allSales)

		o.supervisor.Go("persist_sales", func(ctx context.Context) error {
			_, err := o.writer.WriteSales(ctx, merchantID, persisted)
			return err
		})
		o.supervisor.Go("aggregate_daily", func(ctx context.Context) error {
			return o.aggregator.Aggregate(ctx, merchantID, persisted)
		})
	}

	if allSales == nil {
		allSales = []sale.ProcessedSale{}
	}

	result := &Result{
		Sales: allSales,
		Pagination: Pagination{
			PagesFetched: pagesFetched,
			MaxPages:     o.maxPages,
			PageSize:     o.pageSize,
			TotalSales:   len(allSales),
		},
	}
	if req.StartDate != "" && req.EndDate != "" {
		result.Pagination.DateRange = &DateRange{
			StartDate: req.StartDate,
			EndDate:   req.EndDate,
		}
	}

	metrics.SyncRuns.WithLabelValues("success").Inc()
	metrics.SyncRunDuration.Observe(time.Since(timer).Seconds())

	logger.Info("sync run complete",
		zap.Int("pages_fetched", pagesFetched),
		zap.Int("total_sales", len(allSales)),
		zap.Duration("duration", time.Since(timer)),
	)

	return result, nil
}

// refreshAndRetry refreshes the merchant's token and retries the page fetch
// once with the new access token.
func (o *Orchestrator) refreshAndRetry(ctx context.Context, req *Request, cred *credstore.Credential, q lightspeed.SaleLinesQuery) (string, *lightspeed.SaleLinePage, error) {
	o.logger.Info("access token rejected, refreshing",
		zap.String("merchant_id", req.MerchantID),
	)

	accessToken, err := o.refresher.Refresh(ctx, req.MerchantID, cred.RefreshToken)
	if err != nil {
		return "", nil, apperrors.UnAuthorizedError(err, "token refresh failed")
	}

	page, err := o.client.FetchSaleLines(ctx, accessToken, req.AccountID, q)
	if err != nil {
		return accessToken, nil, err
	}
	return accessToken, page, nil
}

// firstPageError maps a first-page fetch failure to a service error. With no
// data at all the run fails outright; auth errors keep their category.
func (o *Orchestrator) firstPageError(err error) error {
	var svcErr *apperrors.ServiceError
	if errors.As(err, &svcErr) {
		return err
	}
	var apiErr *lightspeed.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		return apperrors.UnAuthorizedError(err, "provider rejected access token")
	}
	return apperrors.DependencyFailureError(err, "sale line fetch failed")
}
