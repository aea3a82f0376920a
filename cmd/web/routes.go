package main

import (
	"net/http"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	var (
		session = func(next http.Handler) http.Handler {
			return app.recoverPanic(app.logAndTraceRequest(secureHeaders(
				app.sessionManager.LoadAndSave(app.authenticate(app.timeout(next))))))
		}
		mustSession = func(next http.Handler) http.Handler {
			return session(app.mustAuthenticate(next))
		}
	)

	mux.Handle("POST /api/login", session(http.HandlerFunc(app.loginPOST)))
	mux.Handle("POST /api/logout", session(http.HandlerFunc(app.logoutPOST)))
	mux.Handle("GET /api/healthy", session(http.HandlerFunc(app.healthy)))

	mux.Handle("GET /api/goals", mustSession(http.HandlerFunc(app.goalsGET)))

	mux.Handle("GET /api/templates", mustSession(http.HandlerFunc(app.templatesGET)))
	mux.Handle("GET /api/templates/{templateID}", mustSession(http.HandlerFunc(app.templateGET)))

	mux.Handle("POST /api/plans", mustSession(http.HandlerFunc(app.planCreatePOST)))
	mux.Handle("GET /api/plans", mustSession(http.HandlerFunc(app.plansGET)))
	mux.Handle("GET /api/plans/{planID}", mustSession(http.HandlerFunc(app.planGET)))
	mux.Handle("POST /api/plans/{planID}/activate", mustSession(http.HandlerFunc(app.planActivatePOST)))
	mux.Handle("GET /api/plans/{planID}/stats", mustSession(http.HandlerFunc(app.planStatsGET)))
	mux.Handle("POST /api/plans/{planID}/weeks/{week}/days/{day}/status",
		mustSession(http.HandlerFunc(app.sessionStatusPOST)))

	return mux
}
