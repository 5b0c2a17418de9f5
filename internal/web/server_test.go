package web

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deviseur/internal/app"
	"deviseur/internal/config"
	"deviseur/internal/storage"
)

const catalogueCSV = "ref;design;prix;unite;ecotaxe;categorie\n" +
	"CHA-1;Chaise;10;1;0,50;Mobilier\n" +
	"DAL-600;Dalle 600;12,50;3;0,10;Plafonds > Dalles\n" +
	"LAMP;Lampe;30;;;\n"

func newTestServer(t *testing.T, load bool) *Server {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(catalogueCSV), 0o644))

	db, err := storage.Open(filepath.Join(dir, "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	session := app.NewSession(db, config.Config{
		CatalogueSource:    path,
		CatalogueDelimiter: ";",
		FetchTimeoutMs:     1000,
		VATRate:            0.2,
		OfferValidityDays:  30,
		CompanyName:        "Atelier Test",
	})
	if load {
		_, err = session.LoadCatalogue(context.Background(), "")
		require.NoError(t, err)
	}
	return NewServer(session)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestCatalogueEndpoints(t *testing.T) {
	s := newTestServer(t, true)

	rec := do(t, s, http.MethodGet, "/api/catalogue", "")
	require.Equal(t, http.StatusOK, rec.Code)
	info := decode[catalogueInfo](t, rec)
	assert.Equal(t, 3, info.Products)
	assert.Equal(t, "3 produits chargés.", info.Message)

	rec = do(t, s, http.MethodGet, "/api/catalogue/facets", "")
	f := decode[facets](t, rec)
	assert.Equal(t, []string{"Mobilier", "Plafonds > Dalles"}, f.Categories)
	require.Len(t, f.Units, 3)
	assert.Equal(t, unitFacet{Value: "__none__", Label: "À l'unité"}, f.Units[0])

	rec = do(t, s, http.MethodGet, "/api/products?q=dalle", "")
	products := decode[[]productView](t, rec)
	require.Len(t, products, 1)
	assert.Equal(t, "DAL-600", products[0].ID)
	assert.Equal(t, "12,50 €", products[0].PriceLabel)

	rec = do(t, s, http.MethodGet, "/api/products?category=Mobilier&category=Plafonds+%3E+Dalles", "")
	assert.Len(t, decode[[]productView](t, rec), 2)

	rec = do(t, s, http.MethodGet, "/api/catalogue/tree", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"label":"Plafonds"`)
}

func TestReload(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, http.MethodGet, "/api/catalogue", "")
	assert.False(t, decode[catalogueInfo](t, rec).Loaded)

	rec = do(t, s, http.MethodPost, "/api/catalogue/reload", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[reloadResponse](t, rec)
	assert.Equal(t, 3, resp.Products)
	assert.Equal(t, 3, resp.Rows)

	rec = do(t, s, http.MethodPost, "/api/catalogue/reload", `{"source":"/nonexistent/export.csv"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	errBody := decode[ErrorResponse](t, rec)
	assert.Equal(t, "LOAD_FAILED", errBody.Code)

	rec = do(t, s, http.MethodGet, "/api/catalogue", "")
	assert.False(t, decode[catalogueInfo](t, rec).Loaded)
}

func TestQuoteFlow(t *testing.T) {
	s := newTestServer(t, true)

	rec := do(t, s, http.MethodPost, "/api/quote/lines", `{"id":"CHA-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, s, http.MethodPost, "/api/quote/lines/CHA-1/quantity", `{"delta":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[app.View](t, rec)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 2.0, view.Lines[0].Quantity)

	rec = do(t, s, http.MethodPut, "/api/quote/discount", `{"discount":"10"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	view = decode[app.View](t, rec)
	assert.Equal(t, 10.0, view.DiscountRate)
	assert.InDelta(t, 22.8, view.Totals.Total, 1e-9)

	rec = do(t, s, http.MethodPost, "/api/quote/lines", `{"id":"DAL-600"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, s, http.MethodPut, "/api/quote/lines/DAL-600/dimensions", `{"length":"2,5","width":"2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	view = decode[app.View](t, rec)
	assert.InDelta(t, 5.0, view.Lines[1].Quantity, 1e-9)

	rec = do(t, s, http.MethodPost, "/api/quote/lines/DAL-600/quantity", `{"delta":1}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "WRONG_QUANTITY_MODE", decode[ErrorResponse](t, rec).Code)

	rec = do(t, s, http.MethodPost, "/api/quote/lines", `{"id":"NOPE"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/api/quote/totals", "")
	require.Equal(t, http.StatusOK, rec.Code)
	totals := decode[totalsResponse](t, rec)
	require.NotEmpty(t, totals.Rows)
	assert.Equal(t, "Net à payer", totals.Rows[len(totals.Rows)-1].Label)

	rec = do(t, s, http.MethodDelete, "/api/quote/lines/CHA-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[app.View](t, rec).Lines, 1)
}

func TestSnapshotEndpoints(t *testing.T) {
	s := newTestServer(t, true)
	do(t, s, http.MethodPost, "/api/quote/lines", `{"id":"CHA-1"}`)
	do(t, s, http.MethodPut, "/api/quote/comment", `{"comment":"Livraison lundi"}`)

	rec := do(t, s, http.MethodGet, "/api/quote/snapshot", "")
	require.Equal(t, http.StatusOK, rec.Code)
	payload := rec.Body.String()
	assert.Contains(t, payload, `"generalComment": "Livraison lundi"`)

	do(t, s, http.MethodDelete, "/api/quote", "")
	rec = do(t, s, http.MethodPost, "/api/quote/snapshot", payload)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[importResponse](t, rec).Restored)

	rec = do(t, s, http.MethodPost, "/api/quote/snapshot", "{broken")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, "/api/quotes", `{"label":"Chantier Dupont"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	saved := decode[savedQuoteJSON](t, rec)

	rec = do(t, s, http.MethodGet, "/api/quotes", "")
	list := decode[[]savedQuoteJSON](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, "Chantier Dupont", list[0].Label)

	rec = do(t, s, http.MethodPost, "/api/quotes/"+saved.ID+"/open", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, s, http.MethodPost, "/api/quotes/missing/open", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloads(t *testing.T) {
	s := newTestServer(t, true)

	rec := do(t, s, http.MethodGet, "/api/quote/pdf", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	errBody := decode[ErrorResponse](t, rec)
	assert.Equal(t, "EMPTY_QUOTE", errBody.Code)
	assert.Equal(t, "Ajoutez au moins un article avant de générer le devis.", errBody.Message)

	do(t, s, http.MethodPost, "/api/quote/lines", `{"id":"LAMP"}`)

	rec = do(t, s, http.MethodGet, "/api/quote/pdf", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".pdf")

	rec = do(t, s, http.MethodGet, "/api/quote/xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"))
}

func TestImportSnapshotWithoutCatalogue(t *testing.T) {
	s := newTestServer(t, false)

	rec := do(t, s, http.MethodPost, "/api/quote/snapshot", `{"version":1,"items":[{"id":"CHA-1","quantity":2}]}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "NO_CATALOGUE", decode[ErrorResponse](t, rec).Code)
}
