package sync

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/taployalty/lightspeed-sync/internal/metrics"
	"github.com/taployalty/lightspeed-sync/pkg/lightspeed"
)

// detailClient is the secondary-lookup surface of the Lightspeed client.
type detailClient interface {
	FetchItem(ctx context.Context, accessToken, accountID, itemID string) (*lightspeed.Item, error)
	FetchCustomers(ctx context.Context, accessToken, accountID string, customerIDs []string) ([]lightspeed.Customer, error)
}

// CustomerName is a run-scoped customer display name entry.
type CustomerName struct {
	FirstName string
	LastName  string
}

// Enricher fills in item descriptions and customer names missing from the
// primary paginated response.
type Enricher struct {
	client      detailClient
	cache       *ItemCache
	concurrency int
	batchSize   int
	logger      *zap.Logger
}

// NewEnricher creates an enricher. concurrency bounds the parallel item
// detail fan-out; batchSize is the customer IDs per lookup request.
func NewEnricher(client detailClient, cache *ItemCache, concurrency, batchSize int, logger *zap.Logger) *Enricher {
	if concurrency <= 0 {
		concurrency = 10
	}
	if batchSize <= 0 {
		batchSize = 20
	}
	return &Enricher{
		client:      client,
		cache:       cache,
		concurrency: concurrency,
		batchSize:   batchSize,
		logger:      logger,
	}
}

// EnrichItems backfills Item.description/longDescription on lines whose item
// relation is missing or has no description. Details come from the shared
// cache first, then from parallel per-item fetches. A failed lookup leaves
// that item unresolved; it does not abort the run.
func (e *Enricher) EnrichItems(ctx context.Context, accessToken, accountID string, groups []LineGroup) {
	missing := e.collectMissingItemIDs(groups)
	if len(missing) == 0 {
		return
	}

	details := make(map[string]ItemDetail, len(missing))
	var toFetch []string
	for _, itemID := range missing {
		if detail, ok := e.cache.Get(itemID); ok {
			metrics.ItemCacheHits.Inc()
			details[itemID] = detail
			continue
		}
		metrics.ItemCacheMisses.Inc()
		toFetch = append(toFetch, itemID)
	}

	e.logger.Debug("item enrichment lookup",
		zap.Int("cache_hits", len(details)),
		zap.Int("cache_misses", len(toFetch)),
	)

	if len(toFetch) > 0 {
		fetched := e.fetchItemDetails(ctx, accessToken, accountID, toFetch)
		for itemID, detail := range fetched {
			details[itemID] = detail
		}
	}

	// Backfill the original lines in place.
	for _, group := range groups {
		for _, line := range group.Lines {
			detail, ok := details[line.ItemID]
			if !ok {
				continue
			}
			if line.Item == nil {
				line.Item = &lightspeed.Item{ItemID: line.ItemID}
			}
			if line.Item.Description == "" {
				line.Item.Description = detail.Description
			}
			if line.Item.LongDescription == "" {
				line.Item.LongDescription = detail.LongDescription
			}
		}
	}
}

// collectMissingItemIDs returns the distinct item IDs across all groups
// whose lines lack an item description.
func (e *Enricher) collectMissingItemIDs(groups []LineGroup) []string {
	seen := make(map[string]struct{})
	var missing []string
	for _, group := range groups {
		for _, line := range group.Lines {
			if line.ItemID == "" {
				continue
			}
			if line.Item != nil && line.Item.Description != "" {
				continue
			}
			if _, ok := seen[line.ItemID]; ok {
				continue
			}
			seen[line.ItemID] = struct{}{}
			missing = append(missing, line.ItemID)
		}
	}
	return missing
}

// fetchItemDetails fetches the given item IDs in parallel with bounded
// fan-out, populating the shared cache as results arrive.
func (e *Enricher) fetchItemDetails(ctx context.Context, accessToken, accountID string, itemIDs []string) map[string]ItemDetail {
	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		fetched = make(map[string]ItemDetail, len(itemIDs))
		sem     = make(chan struct{}, e.concurrency)
	)

	for _, itemID := range itemIDs {
		wg.Add(1)
		go func(itemID string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			item, err := e.client.FetchItem(ctx, accessToken, accountID, itemID)
			if err != nil {
				e.logger.Warn("item detail lookup failed",
					zap.String("item_id", itemID),
					zap.Error(err),
				)
				return
			}

			detail := ItemDetail{
				Description:     item.Description,
				LongDescription: item.LongDescription,
			}
			e.cache.Put(itemID, detail)

			mu.Lock()
			fetched[itemID] = detail
			mu.Unlock()
		}(itemID)
	}
	wg.Wait()

	e.logger.Debug("item detail fetch complete",
		zap.Int("requested", len(itemIDs)),
		zap.Int("fetched", len(fetched)),
	)

	return fetched
}

// FetchCustomerNames resolves display names for the distinct non-zero
// customer IDs across the groups, one batch request at a time. The result
// is scoped to this run; failed batches are logged and skipped.
func (e *Enricher) FetchCustomerNames(ctx context.Context, accessToken, accountID string, groups []LineGroup) map[string]CustomerName {
	seen := make(map[string]struct{})
	var customerIDs []string
	for _, group := range groups {
		if len(group.Lines) == 0 {
			continue
		}
		id := group.Lines[0].CustomerID
		if id == "" || id == "0" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		customerIDs = append(customerIDs, id)
	}

	names := make(map[string]CustomerName, len(customerIDs))
	if len(customerIDs) == 0 {
		return names
	}

	for i := 0; i < len(customerIDs); i += e.batchSize {
		end := i + e.batchSize
		if end > len(customerIDs) {
			end = len(customerIDs)
		}
		batch := customerIDs[i:end]

		customers, err := e.client.FetchCustomers(ctx, accessToken, accountID, batch)
		if err != nil {
			e.logger.Warn("customer lookup batch failed",
				zap.Int("batch_start", i),
				zap.Int("batch_size", len(batch)),
				zap.Error(err),
			)
			continue
		}

		for _, customer := range customers {
			if customer.CustomerID == "" {
				continue
			}
			names[customer.CustomerID] = CustomerName{
				FirstName: customer.FirstName,
				LastName:  customer.LastName,
			}
		}
	}

	return names
}
