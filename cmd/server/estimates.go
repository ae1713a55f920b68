package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Simplici0/fabestimate/internal/document"
	"github.com/Simplici0/fabestimate/internal/estimate"
	"github.com/Simplici0/fabestimate/internal/store"
)

const maxBodyBytes = 1 << 20

type documentRequest struct {
	ClientName string           `json:"client_name"`
	Estimate   estimate.Request `json:"estimate"`
}

func (s *server) handleSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.store.Settings(r.Context())
	if err != nil {
		s.serverError(w, "failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *server) handleStaffRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := s.store.StaffRoles(r.Context())
	if err != nil {
		s.serverError(w, "failed to load staff roles", err)
		return
	}
	writeJSON(w, http.StatusOK, roles)
}

// handleInventory lists the catalog, or returns the single item matching
// ?type=&dimension= when both are given.
func (s *server) handleInventory(w http.ResponseWriter, r *http.Request) {
	itemType := strings.TrimSpace(r.URL.Query().Get("type"))
	dimension := strings.TrimSpace(r.URL.Query().Get("dimension"))

	if itemType != "" && dimension != "" {
		item, err := s.store.FindInventory(r.Context(), itemType, dimension)
		if err != nil {
			if eris.Is(err, store.ErrNotFound) {
				http.Error(w, "inventory item not found", http.StatusNotFound)
				return
			}
			s.serverError(w, "failed to load inventory item", err)
			return
		}
		writeJSON(w, http.StatusOK, item)
		return
	}

	items, err := s.store.Inventory(r.Context())
	if err != nil {
		s.serverError(w, "failed to load inventory", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req estimate.Request
	if err := decodeJSON(w, r, &req); err != nil {
		http.Error(w, "invalid estimate payload", http.StatusBadRequest)
		return
	}

	res, ok := s.compute(w, r, req)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *server) handleDocument(w http.ResponseWriter, r *http.Request) {
	var body documentRequest
	if err := decodeJSON(w, r, &body); err != nil {
		http.Error(w, "invalid document payload", http.StatusBadRequest)
		return
	}

	res, ok := s.compute(w, r, body.Estimate)
	if !ok {
		return
	}
	s.writeDocument(w, r, body.ClientName, res)
}

// compute runs the engine with the stored settings. Input errors are
// reported as 400 and ok is false once a response has been written.
func (s *server) compute(w http.ResponseWriter, r *http.Request, req estimate.Request) (estimate.Result, bool) {
	settings, err := s.store.Settings(r.Context())
	if err != nil {
		s.serverError(w, "failed to load settings", err)
		return estimate.Result{}, false
	}

	res, err := estimate.ComputeRequest(req, settings)
	if err != nil {
		if eris.Is(err, estimate.ErrInvalidMargin) || eris.Is(err, estimate.ErrInvalidLaborRole) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return estimate.Result{}, false
		}
		s.serverError(w, "failed to calculate estimate", err)
		return estimate.Result{}, false
	}
	return res, true
}

// writeDocument renders res in the format named by ?format= (html, pdf,
// xlsx or report). ?final=1 switches from estimate to invoice.
func (s *server) writeDocument(w http.ResponseWriter, r *http.Request, clientName string, res estimate.Result) {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	isFinal, _ := strconv.ParseBool(r.URL.Query().Get("final"))

	var (
		buf         bytes.Buffer
		contentType string
		ext         string
		err         error
	)
	switch format {
	case "", "html":
		contentType, ext = "text/html; charset=utf-8", "html"
		err = s.renderer.Render(&buf, clientName, res, isFinal)
	case "report":
		contentType, ext = "text/html; charset=utf-8", "html"
		err = s.renderer.RenderInternalReport(&buf, clientName, res)
	case "pdf":
		var out []byte
		contentType, ext = "application/pdf", "pdf"
		if out, err = s.renderer.PDF(clientName, res, isFinal); err == nil {
			buf.Write(out)
		}
	case "xlsx":
		var out []byte
		contentType, ext = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "xlsx"
		if out, err = s.renderer.Excel(clientName, res, isFinal); err == nil {
			buf.Write(out)
		}
	default:
		http.Error(w, "unsupported document format", http.StatusBadRequest)
		return
	}
	if err != nil {
		s.serverError(w, "failed to render document", err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	if ext != "html" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+document.Filename(clientName, isFinal, ext)+`"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return eris.Wrap(err, "decode request body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write json response", zap.Error(err))
	}
}

func (s *server) serverError(w http.ResponseWriter, msg string, err error) {
	zap.L().Error(msg, zap.Error(err))
	http.Error(w, msg, http.StatusInternalServerError)
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
