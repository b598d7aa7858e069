package sync

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/taployalty/lightspeed-sync/internal/metrics"
	"github.com/taployalty/lightspeed-sync/pkg/sale"
	"github.com/taployalty/lightspeed-sync/pkg/salestore"
)

const writerChunkSize = 50

// Writer persists assembled sales, skipping ones already stored. Re-running
// the pipeline with the same upstream data writes nothing new.
type Writer struct {
	store     salestore.SaleWriter
	logger    *zap.Logger
	chunkSize int
}

// NewWriter creates a dedup writer over the given store.
func NewWriter(store salestore.SaleWriter, logger *zap.Logger) *Writer {
	return &Writer{
		store:     store,
		logger:    logger,
		chunkSize: writerChunkSize,
	}
}

// WriteSales writes the sales not already present in storage, in chunks,
// and returns the number of new documents written.
func (w *Writer) WriteSales(ctx context.Context, merchantID string, sales []sale.ProcessedSale) (int, error) {
	if len(sales) == 0 {
		return 0, nil
	}

	written := 0
	for start := 0; start < len(sales); start += w.chunkSize {
		end := start + w.chunkSize
		if end > len(sales) {
			end = len(sales)
		}
		chunk := sales[start:end]

		newSales, err := w.filterNew(ctx, merchantID, chunk)
		if err != nil {
			metrics.PersistenceErrors.WithLabelValues("sale_exists").Inc()
			return written, err
		}

		if len(newSales) == 0 {
			w.logger.Debug("no new sales in chunk",
				zap.String("merchant_id", merchantID),
				zap.Int("chunk_start", start),
			)
			continue
		}

		n, err := w.store.InsertSales(ctx, merchantID, newSales)
		if err != nil {
			metrics.PersistenceErrors.WithLabelValues("sale_insert").Inc()
			return written, fmt.Errorf("insert sales chunk: %w", err)
		}
		written += n
		metrics.SalesPersisted.Add(float64(n))

		w.logger.Debug("sales chunk committed",
			zap.String("merchant_id", merchantID),
			zap.Int("new_sales", n),
			zap.Int("processed", end),
			zap.Int("total", len(sales)),
		)
	}

	w.logger.Info("sale persistence complete",
		zap.String("merchant_id", merchantID),
		zap.Int("received", len(sales)),
		zap.Int("written", written),
	)

	return written, nil
}

// filterNew concurrently checks existence of every sale in the chunk and
// returns the subset not already stored, preserving order.
func (w *Writer) filterNew(ctx context.Context, merchantID string, chunk []sale.ProcessedSale) ([]sale.ProcessedSale, error) {
	type result struct {
		exists bool
		err    error
	}

	results := make([]result, len(chunk))
	var wg sync.WaitGroup

	for i := range chunk {
		if chunk[i].SaleID == "" {
			results[i] = result{exists: true}
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			exists, err := w.store.SaleExists(ctx, merchantID, chunk[i].SaleID)
			results[i] = result{exists: exists, err: err}
		}(i)
	}
	wg.Wait()

	var newSales []sale.ProcessedSale
	for i, res := range results {
		if res.err != nil {
			return nil, fmt.Errorf("check sale %s: %w", chunk[i].SaleID, res.err)
		}
		if !res.exists {
			newSales = append(newSales, chunk[i])
		}
	}
	return newSales, nil
}
