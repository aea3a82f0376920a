package main

import (
	"net/http"

	"github.com/mkarvon/fitplan/internal/errors"
	"github.com/mkarvon/fitplan/internal/plan"
)

type loginRequest struct {
	APIKey string `json:"apiKey"`
}

type loginResponse struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// loginPOST exchanges an API key for a session cookie.
func (app *application) loginPOST(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.APIKey == "" {
		app.clientError(w, r, http.StatusBadRequest, "apiKey is required")
		return
	}

	user, err := app.planService.AuthenticateAPIKey(r.Context(), req.APIKey)
	if errors.Is(err, plan.ErrNotFound) {
		app.clientError(w, r, http.StatusUnauthorized, "invalid api key")
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	// New privilege level, new session token.
	if err := app.sessionManager.RenewToken(r.Context()); err != nil {
		app.serverError(w, r, errors.Wrap(err, "renew session token"))
		return
	}
	app.sessionManager.Put(r.Context(), sessionKeyUserID, user.ID.String())

	app.writeJSON(w, r, http.StatusOK, loginResponse{
		UserID:      user.ID.String(),
		DisplayName: user.DisplayName,
	})
}

// logoutPOST destroys the session.
func (app *application) logoutPOST(w http.ResponseWriter, r *http.Request) {
	if err := app.sessionManager.Destroy(r.Context()); err != nil {
		app.serverError(w, r, errors.Wrap(err, "destroy session"))
		return
	}
	app.writeJSON(w, r, http.StatusOK, map[string]string{"status": "logged out"})
}

// healthy responds with a JSON object indicating that the server is healthy.
func (app *application) healthy(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
