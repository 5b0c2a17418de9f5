package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"deviseur/internal"
	"deviseur/internal/document"
)

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.View())
}

func (s *Server) handleResetQuote(w http.ResponseWriter, r *http.Request) {
	s.session.Reset()
	writeJSON(w, http.StatusOK, s.session.View())
}

type addLineRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleAddLine(w http.ResponseWriter, r *http.Request) {
	var req addLineRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, errors.Join(errBadRequest, err))
		return
	}
	if _, err := s.session.AddProduct(req.ID); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session.View())
}

type quantityRequest struct {
	Delta int `json:"delta"`
}

func (s *Server) handleChangeQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, errors.Join(errBadRequest, err))
		return
	}
	s.mutateLine(w, r, func(id string) error {
		_, err := s.session.ChangeQuantity(id, req.Delta)
		return err
	})
}

// dimensionsRequest carries dimensions as typed by the user, "2,5" included.
type dimensionsRequest struct {
	Length string `json:"length"`
	Width  string `json:"width"`
}

func (s *Server) handleSetDimensions(w http.ResponseWriter, r *http.Request) {
	var req dimensionsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, errors.Join(errBadRequest, err))
		return
	}
	s.mutateLine(w, r, func(id string) error {
		_, err := s.session.SetDimensions(id, req.Length, req.Width)
		return err
	})
}

type commentRequest struct {
	Comment string `json:"comment"`
}

func (s *Server) handleSetLineComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, errors.Join(errBadRequest, err))
		return
	}
	s.mutateLine(w, r, func(id string) error {
		_, err := s.session.SetComment(id, req.Comment)
		return err
	})
}

func (s *Server) handleToggleLine(w http.ResponseWriter, r *http.Request) {
	s.mutateLine(w, r, func(id string) error {
		_, err := s.session.Toggle(id)
		return err
	})
}

func (s *Server) handleRemoveLine(w http.ResponseWriter, r *http.Request) {
	s.mutateLine(w, r, func(id string) error {
		s.session.Remove(id)
		return nil
	})
}

func (s *Server) mutateLine(w http.ResponseWriter, r *http.Request, apply func(id string) error) {
	if err := apply(chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.session.View())
}

type discountRequest struct {
	Discount string `json:"discount"`
}

func (s *Server) handleSetDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, errors.Join(errBadRequest, err))
		return
	}
	s.session.SetDiscount(req.Discount)
	writeJSON(w, http.StatusOK, s.session.View())
}

func (s *Server) handleSetGeneralComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, errors.Join(errBadRequest, err))
		return
	}
	s.session.SetGeneralComment(req.Comment)
	writeJSON(w, http.StatusOK, s.session.View())
}

type totalsResponse struct {
	Values internal.Totals   `json:"values"`
	Rows   []summaryRowJSON `json:"rows"`
}

type summaryRowJSON struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	resp := totalsResponse{Values: s.session.Totals(), Rows: []summaryRowJSON{}}
	if q, err := s.session.Document(); err == nil {
		for _, row := range q.Summary() {
			resp.Rows = append(resp.Rows, summaryRowJSON{Label: row.Label, Value: row.Value})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExportSnapshot(w http.ResponseWriter, r *http.Request) {
	payload, err := s.session.ExportSnapshot()
	if err != nil {
		respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="devis.json"`)
	_, _ = w.Write(payload)
}

type importResponse struct {
	Restored int      `json:"restored"`
	Skipped  []string `json:"skipped"`
}

func (s *Server) handleImportSnapshot(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodySize))
	if err != nil {
		respondError(w, r, errors.Join(errBadRequest, err))
		return
	}
	result, err := s.session.ImportSnapshot(body)
	if err != nil {
		respondError(w, r, errors.Join(errBadRequest, err))
		return
	}
	skipped := result.Skipped
	if skipped == nil {
		skipped = []string{}
	}
	writeJSON(w, http.StatusOK, importResponse{Restored: result.Restored, Skipped: skipped})
}

func (s *Server) handleDownloadPDF(w http.ResponseWriter, r *http.Request) {
	q, err := s.session.Document()
	if err != nil {
		respondError(w, r, err)
		return
	}
	body, err := document.RenderPDF(q)
	if err != nil {
		respondError(w, r, err)
		return
	}
	sendFile(w, "application/pdf", q.FileName("pdf"), body)
}

func (s *Server) handleDownloadXLSX(w http.ResponseWriter, r *http.Request) {
	q, err := s.session.Document()
	if err != nil {
		respondError(w, r, err)
		return
	}
	f, err := document.RenderXLSX(q)
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		respondError(w, r, err)
		return
	}
	sendFile(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", q.FileName("xlsx"), buf.Bytes())
}

func sendFile(w http.ResponseWriter, contentType, name string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	_, _ = w.Write(body)
}

type saveRequest struct {
	Label string `json:"label"`
}

func (s *Server) handleSaveQuote(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(w, r, errors.Join(errBadRequest, err))
			return
		}
	}
	saved, err := s.session.SaveQuote(req.Label)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, savedQuoteJSON{ID: saved.ID, Label: saved.Label, CreatedAt: saved.CreatedAt})
}

type savedQuoteJSON struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	CreatedAt string `json:"createdAt"`
}

func (s *Server) handleListQuotes(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	rows, err := s.session.ListQuotes(limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]savedQuoteJSON, 0, len(rows))
	for _, row := range rows {
		out = append(out, savedQuoteJSON{ID: row.ID, Label: row.Label, CreatedAt: row.CreatedAt})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleOpenQuote(w http.ResponseWriter, r *http.Request) {
	result, err := s.session.OpenQuote(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	skipped := result.Skipped
	if skipped == nil {
		skipped = []string{}
	}
	writeJSON(w, http.StatusOK, importResponse{Restored: result.Restored, Skipped: skipped})
}
