package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ishan739/sanskriti-bazaar/internal/domain"
)

type ItemReader interface {
	GetItem(ctx context.Context, itemID string) (*domain.Item, error)
}

type ItemHandler struct {
	items   ItemReader
	timeout time.Duration
}

func NewItemHandler(items ItemReader, timeout time.Duration) *ItemHandler {
	return &ItemHandler{
		items:   items,
		timeout: timeout,
	}
}

// GET /api/v1/items/{item_id}
func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	itemID := chi.URLParam(r, "item_id")
	if itemID == "" {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "item_id is required")
		return
	}

	item, err := h.items.GetItem(ctx, itemID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, item)
}
