package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/fabestimate/internal/db"
	"github.com/Simplici0/fabestimate/internal/document"
	"github.com/Simplici0/fabestimate/internal/migrations"
	"github.com/Simplici0/fabestimate/internal/seed"
	"github.com/Simplici0/fabestimate/internal/store"
)

func newTestServer(t *testing.T) *server {
	t.Helper()
	ctx := context.Background()

	database, err := db.Open(filepath.Join(t.TempDir(), "server-test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, migrations.Up(ctx, database))
	_, err = seed.Run(ctx, database)
	require.NoError(t, err)

	return newServer(database, document.NewRenderer(document.Options{
		Now: func() time.Time { return time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC) },
	}))
}

func do(t *testing.T, srv *server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	srv.routes().ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

const gateEstimate = `{
	"items": [{"name": "Steel Gate", "qty": "1", "unit": "pc", "base_rate": 10000}],
	"days": 2,
	"welders": 1,
	"helpers": 1
}`

func TestCalculateUsesStoredSettings(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/estimates/calculate", gateEstimate)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	out := decodeBody(t, rr)
	assert.Equal(t, "10000", out["total_material_base_cost"])
	assert.Equal(t, "1600", out["labor_actual_cost"])
	assert.Equal(t, "11600", out["total_project_cost"])
	assert.Equal(t, "13340", out["bill_amount"])
	assert.Equal(t, "1740", out["total_profit"])
	assert.Equal(t, "1334", out["advance_amount"])
}

func TestCalculateRejectsBadInput(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/estimates/calculate", `{"items": [], "profit_margin": "fifteen"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "fifteen")

	rr = do(t, srv, http.MethodPost, "/estimates/calculate", `{"labor_details": [{"count": 1, "rate": 500}]}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, srv, http.MethodPost, "/estimates/calculate", `{"items": [`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDocumentFormats(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	body := `{"client_name": "Acme", "estimate": ` + gateEstimate + `}`

	rr := do(t, srv, http.MethodPost, "/estimates/document", body)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "Grand Total: ₹13,340")
	assert.Contains(t, rr.Body.String(), "Advance Required: ₹1,334")

	rr = do(t, srv, http.MethodPost, "/estimates/document?final=1", body)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `<div class="title">INVOICE</div>`)
	assert.NotContains(t, rr.Body.String(), "Advance Required")

	rr = do(t, srv, http.MethodPost, "/estimates/document?format=report", body)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Internal Profit Report (Confidential) - Acme")

	rr = do(t, srv, http.MethodPost, "/estimates/document?format=pdf", body)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "Estimate_Acme.pdf")
	assert.True(t, strings.HasPrefix(rr.Body.String(), "%PDF"))

	rr = do(t, srv, http.MethodPost, "/estimates/document?format=xlsx&final=true", body)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "Invoice_Acme.xlsx")

	rr = do(t, srv, http.MethodPost, "/estimates/document?format=docx", body)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/settings", "")
	require.Equal(t, http.StatusOK, rr.Code)
	settings := decodeBody(t, rr)
	assert.EqualValues(t, 15, settings["profit_margin"])
	assert.EqualValues(t, 10, settings["advance_percentage"])

	rr = do(t, srv, http.MethodGet, "/staff-roles", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var roles []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &roles))
	require.Len(t, roles, 2)
	assert.Equal(t, "Welder", roles[0]["role_name"])

	rr = do(t, srv, http.MethodGet, "/inventory?type=Square+Pipe&dimension=40x40", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "MS Square Pipe 40x40", decodeBody(t, rr)["item_name"])

	rr = do(t, srv, http.MethodGet, "/inventory?type=Square+Pipe&dimension=1x1", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func createProject(t *testing.T, srv *server, clientName, projectType string) int64 {
	t.Helper()
	ctx := context.Background()
	clientID, err := srv.store.CreateClient(ctx, store.Client{Name: clientName})
	require.NoError(t, err)
	id, err := srv.store.CreateProject(ctx, clientID, projectType)
	require.NoError(t, err)
	return id
}

func TestProjectEstimateLifecycle(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	createProject(t, srv, "Acme", "Gate")

	rr := do(t, srv, http.MethodGet, "/projects/1/estimate", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Nil(t, decodeBody(t, rr)["result"])

	rr = do(t, srv, http.MethodGet, "/projects/1/document", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, srv, http.MethodPut, "/projects/1/estimate", `{"version": 0, "estimate": `+gateEstimate+`}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	saved := decodeBody(t, rr)
	assert.EqualValues(t, 1, saved["version"])
	assert.Equal(t, "Estimate Updated", saved["status"])

	rr = do(t, srv, http.MethodPut, "/projects/1/estimate", `{"version": 0, "estimate": {"days": 5}}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, srv, http.MethodGet, "/projects/1/estimate", "")
	require.Equal(t, http.StatusOK, rr.Code)
	view := decodeBody(t, rr)
	result := view["result"].(map[string]any)
	assert.Equal(t, "13340", result["bill_amount"])

	rr = do(t, srv, http.MethodGet, "/projects/1/document?final=1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Client: <strong>Acme</strong>")
	assert.Contains(t, rr.Body.String(), "Grand Total: ₹13,340")

	rr = do(t, srv, http.MethodPut, "/projects/1/estimate", `{"version": 1, "estimate": {"profit_margin": "lots"}}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code, "invalid estimates are never saved")

	rr = do(t, srv, http.MethodPut, "/projects/77/estimate", `{"version": 0, "estimate": {}}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandleProjectEstimateRejectsBadID(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/projects/abc/estimate", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "abc")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rr := httptest.NewRecorder()
	srv.handleProjectEstimate(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestProjectsList(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t)
	createProject(t, srv, "Acme Builders", "Gate")
	createProject(t, srv, "Brightline", "Staircase")

	rr := do(t, srv, http.MethodGet, "/projects", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var all []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &all))
	require.Len(t, all, 2)
	assert.Equal(t, "Brightline", all[0]["client_name"])

	rr = do(t, srv, http.MethodGet, "/projects?q=acme", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var found []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &found))
	require.Len(t, found, 1)
	assert.Equal(t, "Gate", found[0]["project_type"])
}
