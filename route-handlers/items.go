package routehandlers

import (
	"context"
	"net/http"

	"github.com/coreybb/itemgate/models"
	"github.com/coreybb/itemgate/webutil"
)

// ItemFetcher returns the merged item list for one request.
type ItemFetcher interface {
	FetchAllItems(ctx context.Context) []models.Item
}

// Holds dependencies for item route handlers.
type ItemHandler struct {
	Fetcher ItemFetcher
}

// Creates a new ItemHandler.
func NewItemHandler(fetcher ItemFetcher) *ItemHandler {
	return &ItemHandler{Fetcher: fetcher}
}

// HandleGetAllItems responds with every item from both sources. The request
// body is ignored. Source failures only shrink the list; the status is
// always 200.
func (h *ItemHandler) HandleGetAllItems(w http.ResponseWriter, r *http.Request) error {
	items := h.Fetcher.FetchAllItems(r.Context())
	if items == nil {
		items = []models.Item{}
	}
	webutil.RespondWithJSON(w, http.StatusOK, items)
	return nil
}
