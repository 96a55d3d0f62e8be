package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ishan739/sanskriti-bazaar/internal/domain"
	"github.com/ishan739/sanskriti-bazaar/internal/inventory"
	"github.com/ishan739/sanskriti-bazaar/internal/orders"
	"github.com/ishan739/sanskriti-bazaar/internal/repository"
	"github.com/ishan739/sanskriti-bazaar/internal/service"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type StockErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	ItemID    string `json:"item_id"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps the domain error taxonomy to HTTP statuses.
// Everything here is a recoverable, user-facing condition; anything
// unrecognized is an internal storage failure surfaced as 503 so the
// caller may retry.
func handleServiceError(w http.ResponseWriter, err error) {
	var stockErr *inventory.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		respondJSON(w, http.StatusConflict, StockErrorResponse{
			Error:     stockErr.Error(),
			Code:      "insufficient_stock",
			ItemID:    stockErr.ItemID,
			Requested: stockErr.Requested,
			Available: stockErr.Available,
		})
	case errors.Is(err, service.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, inventory.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "item_not_found", err.Error())
	case errors.Is(err, domain.ErrLineNotFound):
		respondError(w, http.StatusNotFound, "line_not_found", err.Error())
	case errors.Is(err, orders.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "order_not_found", err.Error())
	case errors.Is(err, repository.ErrCartNotFound):
		respondError(w, http.StatusNotFound, "cart_not_found", err.Error())
	case errors.Is(err, domain.ErrCartNotMutable):
		respondError(w, http.StatusConflict, "cart_not_mutable", err.Error())
	case errors.Is(err, service.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", err.Error())
	case errors.Is(err, orders.ErrDuplicateCart):
		respondError(w, http.StatusConflict, "duplicate_order", err.Error())
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "temporary storage failure, retry later")
	}
}
