package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"pkt.systems/mdpage/answer"
	"pkt.systems/mdpage/export"
	"pkt.systems/mdpage/pdf"
)

type processRequest struct {
	Query string `json:"query"`
}

type processResponse struct {
	Answer string `json:"answer"`
}

type exportRequest struct {
	Title    string `json:"title"`
	Markdown string `json:"markdown"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"source": s.source.Name(),
	})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryFrameBytes)).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	query, err := answer.CheckQuery(req.Query)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	text, err := answer.Collect(r.Context(), s.source, query)
	if err != nil {
		s.log.Error().Err(err).Str("source", s.source.Name()).Msg("process query failed")
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, processResponse{Answer: text})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxExportBytes)).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonError(w, fmt.Sprintf("export body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	res, err := s.exporter.Export(r.Context(), &buf, req.Markdown, req.Title)
	switch {
	case errors.Is(err, export.ErrNothingToExport):
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, export.ErrExportInProgress):
		w.Header().Set("Retry-After", "1")
		jsonError(w, err.Error(), http.StatusTooManyRequests)
		return
	case err != nil:
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	filename := res.Filename
	if filename == "" {
		filename = pdf.FileName(req.Title)
	}
	h := w.Header()
	h.Set("Content-Type", "application/pdf")
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	h.Set("Content-Length", strconv.Itoa(buf.Len()))
	h.Set("X-Page-Count", strconv.Itoa(res.Pages))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"detail": msg})
}
