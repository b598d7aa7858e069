package sync

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const serviceName = "SyncService"

// logService wraps Service with automatic logging of all method calls
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the sync Service.
// It logs method entry/exit, duration and errors.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{
		svc:    svc,
		logger: logger,
	}
}

// SyncSales wraps the service method with logging
func (ls *logService) SyncSales(
	ctx context.Context,
	req *Request,
) (resp *Result, err error) {
	start := time.Now()

	ls.logger.Info("SyncSales started",
		zap.String("service", serviceName),
		zap.String("method", "SyncSales"),
		zap.String("merchant_id", req.MerchantID),
		zap.String("account_id", req.AccountID),
		zap.Int("pages", req.Pages),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	defer func() {
		duration := time.Since(start)

		if err != nil {
			ls.logger.Error("SyncSales failed",
				zap.String("service", serviceName),
				zap.String("method", "SyncSales"),
				zap.String("merchant_id", req.MerchantID),
				zap.Duration("duration", duration),
				zap.Error(err),
			)
		} else {
			ls.logger.Info("SyncSales completed",
				zap.String("service", serviceName),
				zap.String("method", "SyncSales"),
				zap.String("merchant_id", req.MerchantID),
				zap.Int("pages_fetched", resp.Pagination.PagesFetched),
				zap.Int("total_sales", resp.Pagination.TotalSales),
				zap.Duration("duration", duration),
			)
		}
	}()

	return ls.svc.SyncSales(ctx, req)
}
