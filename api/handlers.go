// Package api provides HTTP handlers, middleware, and routing for the
// Aether settings service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aetherchat/settings"
)

// confirmHeader must accompany destructive requests. The client's
// confirmation dialog sets it after the user explicitly agrees, so a
// stray request cannot wipe state on its own.
const confirmHeader = "X-Aether-Confirm"

type updateRequest struct {
	Value interface{} `json:"value"`
}

// handleGetSections returns the rendered section descriptors for the
// current snapshot.
func (s *Server) handleGetSections(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, r, http.StatusOK, s.agg.Sections())
}

// handleGetSettings returns the raw snapshot.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, r, http.StatusOK, s.agg.Snapshot())
}

// handleUpdateSetting applies one preference mutation. The response is
// sent once the optimistic update is committed; the durable write
// completes in the background (write failures keep the optimistic value
// and are logged, matching the client behavior).
func (s *Server) handleUpdateSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	// Limit the size of the request body to 1MB
	r.Body = http.MaxBytesReader(w, r.Body, 1024*1024)

	var req updateRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	// The durable write outlives this handler: net/http cancels the
	// request context as soon as the response is written, which would
	// fail the queued persist on every context-aware backend.
	writeCtx := context.WithoutCancel(r.Context())
	if _, err := s.agg.UpdateSetting(writeCtx, key, req.Value); err != nil {
		switch {
		case errors.Is(err, settings.ErrNotDefined):
			s.respondWithError(w, r, http.StatusNotFound, "Unknown setting", err)
		case errors.Is(err, settings.ErrInvalidValue):
			s.respondWithError(w, r, http.StatusBadRequest, "Invalid value", err)
		default:
			s.respondWithError(w, r, http.StatusInternalServerError, "Failed to update setting", err)
		}
		return
	}

	value, err := s.agg.Get(key)
	if err != nil {
		s.respondWithError(w, r, http.StatusInternalServerError, "Failed to read setting", err)
		return
	}
	s.respondWithJSON(w, r, http.StatusAccepted, map[string]interface{}{"key": key, "value": value})
}

// handleExport serializes the snapshot for the platform share sheet.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	payload, err := s.agg.Export(r.Context())
	if err != nil {
		s.respondWithError(w, r, http.StatusInternalServerError, "Failed to export settings", err)
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, map[string]string{"export": payload})
}

// handleImport applies a previously exported payload.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1024*1024)

	var req struct {
		Payload string `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	if err := s.agg.Import(r.Context(), req.Payload); err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Failed to import settings", err)
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, s.agg.Snapshot())
}

// handleReset restores every preference to its default. Requires the
// confirmation header.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get(confirmHeader) != "reset" {
		s.respondWithError(w, r, http.StatusPreconditionRequired, "Confirmation header required", nil)
		return
	}
	if err := s.agg.Reset(r.Context()); err != nil {
		s.respondWithError(w, r, http.StatusInternalServerError, "Failed to reset settings", err)
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, s.agg.Snapshot())
}

// handleClearAll runs the destructive clear-data flow: remote deletion
// first, local reset second. Requires the confirmation header.
func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get(confirmHeader) != "clear" {
		s.respondWithError(w, r, http.StatusPreconditionRequired, "Confirmation header required", nil)
		return
	}
	if err := s.agg.ClearAll(r.Context()); err != nil {
		s.respondWithError(w, r, http.StatusBadGateway, "Failed to clear data", err)
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, s.agg.Snapshot())
}

// respondWithError is a helper to send JSON error responses.
func (s *Server) respondWithError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	resp := map[string]interface{}{
		"error": map[string]string{
			"message": message,
		},
	}
	if err != nil {
		resp["error"].(map[string]string)["details"] = err.Error()
	}
	s.logger.Error("API Error", "status", status, "message", message, "path", r.URL.Path, "error", err)
	respondWithJSONRaw(w, status, resp)
}

// respondWithJSON is a helper to send JSON responses.
func (s *Server) respondWithJSON(w http.ResponseWriter, _ *http.Request, status int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("Failed to marshal JSON response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"Failed to marshal response"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// respondWithJSONRaw is a lower-level helper for error payloads.
func respondWithJSONRaw(w http.ResponseWriter, status int, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"Critical: Failed to marshal error response"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
