package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/mkarvon/fitplan/internal/errors"
	"github.com/mkarvon/fitplan/internal/plan"
)

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	app.writeJSON(w, r, http.StatusInternalServerError,
		map[string]string{"error": http.StatusText(http.StatusInternalServerError)})
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.writeJSON(w, r, status, map[string]string{"error": message})
}

// notFoundOrServerError maps plan.ErrNotFound to 404 and everything else to
// 500.
func (app *application) notFoundOrServerError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, plan.ErrNotFound) {
		app.clientError(w, r, http.StatusNotFound, "not found")
		return
	}
	app.serverError(w, r, err)
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "encode response",
			errors.SlogError(errors.Wrap(err, "encode json")))
	}
}

// readJSON decodes the request body into dst, rejecting unknown fields.
func readJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	return nil
}

// parseUUIDParam parses a UUID path parameter. On failure it responds 404
// because a malformed ID can't name any resource.
func (app *application) parseUUIDParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		http.NotFound(w, r)
		return uuid.Nil, false
	}
	return id, true
}

// parseIntParam parses an integer path parameter.
func (app *application) parseIntParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	value, err := strconv.Atoi(r.PathValue(name))
	if err != nil {
		http.NotFound(w, r)
		return 0, false
	}
	return value, true
}
