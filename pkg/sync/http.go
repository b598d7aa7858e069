package sync

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	apperrors "github.com/taployalty/lightspeed-sync/pkg/app/errors"
	apphttp "github.com/taployalty/lightspeed-sync/pkg/app/http"
	"github.com/taployalty/lightspeed-sync/pkg/sale"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service  Service
	validate *validator.Validate
	logger   *zap.Logger
}

// RegisterRoutes registers HTTP endpoints for the sync service on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}

	r.Get("/api/lightspeed/sales", apphttp.HandleError(h.getSales))
}

type salesResponse struct {
	Success    bool                 `json:"success"`
	Sales      []sale.ProcessedSale `json:"sales"`
	Pagination Pagination           `json:"pagination"`
}

// getSales handles HTTP requests
func (h *HTTP) getSales(w http.ResponseWriter, r *http.Request) error {
	query := r.URL.Query()

	req := &Request{
		MerchantID: query.Get("merchantId"),
		AccountID:  query.Get("accountId"),
		StartDate:  query.Get("startDate"),
		EndDate:    query.Get("endDate"),
		Pages:      1,
	}

	if raw := query.Get("pages"); raw != "" {
		pages, err := strconv.Atoi(raw)
		if err != nil {
			return apperrors.BadRequestError(err, "pages must be an integer")
		}
		req.Pages = pages
	}

	// A date filter needs both bounds.
	if (req.StartDate == "") != (req.EndDate == "") {
		return apperrors.BadRequestError(nil, "startDate and endDate must be provided together")
	}

	if err := h.validate.Struct(req); err != nil {
		return apperrors.BadRequestError(err, "invalid request parameters")
	}

	resp, err := h.service.SyncSales(r.Context(), req)
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, &salesResponse{
		Success:    true,
		Sales:      resp.Sales,
		Pagination: resp.Pagination,
	})
	return nil
}

func (h *HTTP) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
