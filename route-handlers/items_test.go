package routehandlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/coreybb/itemgate/aggregator"
	"github.com/coreybb/itemgate/datastore"
	"github.com/coreybb/itemgate/models"
	"github.com/coreybb/itemgate/webutil"
	"github.com/stretchr/testify/assert"
)

type stubSource struct {
	name  string
	items []models.Item
	err   error
}

func (s stubSource) Name() string { return s.name }

func (s stubSource) FetchItems(context.Context) ([]models.Item, error) {
	return s.items, s.err
}

type nilFetcher struct{}

func (nilFetcher) FetchAllItems(context.Context) []models.Item { return nil }

func TestHandleGetAllItems(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		a        stubSource
		b        stubSource
		wantJSON string
	}{
		{
			name: "merges A before B",
			a:    stubSource{name: "a", items: []models.Item{{ID: "1", Name: "Widget"}}},
			b:    stubSource{name: "b", items: []models.Item{{ID: "2", Name: "Gadget"}, {ID: "3", Name: "Gizmo"}}},
			wantJSON: `[{"itemId":"1","itemName":"Widget"},` +
				`{"itemId":"2","itemName":"Gadget"},` +
				`{"itemId":"3","itemName":"Gizmo"}]`,
		},
		{
			name:     "source A connection fails",
			a:        stubSource{name: "a", err: datastore.ErrConnect},
			b:        stubSource{name: "b", items: []models.Item{{ID: "9", Name: "Bolt"}}},
			wantJSON: `[{"itemId":"9","itemName":"Bolt"}]`,
		},
		{
			name:     "both fail",
			a:        stubSource{name: "a", err: datastore.ErrConnect},
			b:        stubSource{name: "b", err: datastore.ErrQuery},
			wantJSON: `[]`,
		},
		{
			name:     "missing name is omitted",
			a:        stubSource{name: "a", items: []models.Item{{ID: "5"}}},
			b:        stubSource{name: "b"},
			wantJSON: `[{"itemId":"5"}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := NewItemHandler(aggregator.New(tt.a, tt.b))
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/getAllItems", strings.NewReader(`{"ignored":true}`))

			webutil.MakeHandler(h.HandleGetAllItems)(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, webutil.ContentTypeJSONUTF8, rec.Header().Get(webutil.HeaderContentType))
			assert.JSONEq(t, tt.wantJSON, rec.Body.String())
		})
	}
}

func TestHandleGetAllItems_NilFromFetcher(t *testing.T) {
	t.Parallel()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/getAllItems", nil)

	webutil.MakeHandler(NewItemHandler(nilFetcher{}).HandleGetAllItems)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
