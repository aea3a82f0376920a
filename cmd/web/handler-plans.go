package main

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/mkarvon/fitplan/internal/contexthelpers"
	"github.com/mkarvon/fitplan/internal/engine"
	"github.com/mkarvon/fitplan/internal/errors"
	"github.com/mkarvon/fitplan/internal/plan"
)

type planCreateRequest struct {
	GoalID        string `json:"goalId"`
	WeeksCount    int    `json:"weeksCount"`
	PreferredDays []int  `json:"preferredDays"`
}

type sessionResponse struct {
	DayOfWeek    int                `json:"dayOfWeek"`
	DayName      string             `json:"dayName"`
	WorkoutType  string             `json:"workoutType"`
	TemplateID   string             `json:"templateId,omitempty"`
	TemplateName string             `json:"templateName,omitempty"`
	SessionOrder int                `json:"sessionOrder,omitempty"`
	Status       string             `json:"status"`
	CompletedAt  *time.Time         `json:"completedAt,omitempty"`
	Exercises    []exerciseResponse `json:"exercises,omitempty"`
}

type weekResponse struct {
	WeekNumber            int               `json:"weekNumber"`
	EstimatedWeeklyVolume float64           `json:"estimatedWeeklyVolume"`
	Sessions              []sessionResponse `json:"sessions"`
}

type planResponse struct {
	ID         string         `json:"id"`
	GoalID     string         `json:"goalId"`
	WeeksCount int            `json:"weeksCount"`
	Active     bool           `json:"active"`
	CreatedAt  time.Time      `json:"createdAt"`
	Weeks      []weekResponse `json:"weeks"`
}

type planSummaryResponse struct {
	ID         string    `json:"id"`
	GoalID     string    `json:"goalId"`
	WeeksCount int       `json:"weeksCount"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
}

func planToResponse(p plan.Plan) planResponse {
	weeks := make([]weekResponse, 0, len(p.Weeks))
	for _, week := range p.Weeks {
		sessions := make([]sessionResponse, 0, len(week.Sessions))
		for _, session := range week.Sessions {
			sessions = append(sessions, sessionResponse{
				DayOfWeek:    session.DayOfWeek,
				DayName:      session.DayName,
				WorkoutType:  session.WorkoutType,
				TemplateID:   session.TemplateID,
				TemplateName: session.TemplateName,
				SessionOrder: session.SessionOrder,
				Status:       string(session.Status),
				CompletedAt:  session.CompletedAt,
				Exercises:    exerciseResponses(session.Exercises),
			})
		}
		weeks = append(weeks, weekResponse{
			WeekNumber:            week.WeekNumber,
			EstimatedWeeklyVolume: week.EstimatedWeeklyVolume,
			Sessions:              sessions,
		})
	}
	return planResponse{
		ID:         p.ID.String(),
		GoalID:     p.GoalID.String(),
		WeeksCount: p.WeeksCount,
		Active:     p.Active,
		CreatedAt:  p.CreatedAt,
		Weeks:      weeks,
	}
}

// planCreatePOST generates a new plan from a goal and makes it the active one.
func (app *application) planCreatePOST(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())

	var req planCreateRequest
	if err := readJSON(r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	goalID, err := uuid.Parse(req.GoalID)
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest, "invalid goal id")
		return
	}
	for _, day := range req.PreferredDays {
		if day < 0 || day > 6 {
			app.clientError(w, r, http.StatusBadRequest, "preferred days must be between 0 and 6")
			return
		}
	}

	p, err := app.planService.GeneratePlan(r.Context(), userID, goalID, req.WeeksCount, req.PreferredDays)
	switch {
	case errors.Is(err, plan.ErrNotFound):
		app.clientError(w, r, http.StatusNotFound, "goal not found")
		return
	case errors.Is(err, engine.ErrWeeksCount):
		app.clientError(w, r, http.StatusBadRequest, "weeks count must be between 1 and 12")
		return
	case err != nil:
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusCreated, planToResponse(p))
}

// plansGET lists the user's plans, newest first.
func (app *application) plansGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())

	summaries, err := app.planService.ListPlans(r.Context(), userID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	response := make([]planSummaryResponse, 0, len(summaries))
	for _, summary := range summaries {
		response = append(response, planSummaryResponse{
			ID:         summary.ID.String(),
			GoalID:     summary.GoalID.String(),
			WeeksCount: summary.WeeksCount,
			Active:     summary.Active,
			CreatedAt:  summary.CreatedAt,
		})
	}
	app.writeJSON(w, r, http.StatusOK, response)
}

func (app *application) planGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	planID, ok := app.parseUUIDParam(w, r, "planID")
	if !ok {
		return
	}

	p, err := app.planService.GetPlan(r.Context(), userID, planID)
	if err != nil {
		app.notFoundOrServerError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, planToResponse(p))
}

func (app *application) planActivatePOST(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	planID, ok := app.parseUUIDParam(w, r, "planID")
	if !ok {
		return
	}

	if err := app.planService.ActivatePlan(r.Context(), userID, planID); err != nil {
		app.notFoundOrServerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type weekStatsResponse struct {
	WeekNumber    int     `json:"weekNumber"`
	Workouts      int     `json:"workouts"`
	Completed     int     `json:"completed"`
	Skipped       int     `json:"skipped"`
	Modified      int     `json:"modified"`
	AdherenceRate float64 `json:"adherenceRate"`
}

type statsResponse struct {
	PlanID        string              `json:"planId"`
	Workouts      int                 `json:"workouts"`
	Completed     int                 `json:"completed"`
	AdherenceRate float64             `json:"adherenceRate"`
	Weeks         []weekStatsResponse `json:"weeks"`
}

func (app *application) planStatsGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	planID, ok := app.parseUUIDParam(w, r, "planID")
	if !ok {
		return
	}

	stats, err := app.planService.AdherenceStats(r.Context(), userID, planID)
	if err != nil {
		app.notFoundOrServerError(w, r, err)
		return
	}

	weeks := make([]weekStatsResponse, 0, len(stats.Weeks))
	for _, week := range stats.Weeks {
		weeks = append(weeks, weekStatsResponse{
			WeekNumber:    week.WeekNumber,
			Workouts:      week.Workouts,
			Completed:     week.Completed,
			Skipped:       week.Skipped,
			Modified:      week.Modified,
			AdherenceRate: week.AdherenceRate,
		})
	}
	app.writeJSON(w, r, http.StatusOK, statsResponse{
		PlanID:        stats.PlanID.String(),
		Workouts:      stats.Workouts,
		Completed:     stats.Completed,
		AdherenceRate: stats.AdherenceRate,
		Weeks:         weeks,
	})
}

type sessionStatusRequest struct {
	Status string `json:"status"`
}

// sessionStatusPOST records what happened to one scheduled session.
func (app *application) sessionStatusPOST(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	planID, ok := app.parseUUIDParam(w, r, "planID")
	if !ok {
		return
	}
	week, ok := app.parseIntParam(w, r, "week")
	if !ok {
		return
	}
	day, ok := app.parseIntParam(w, r, "day")
	if !ok {
		return
	}

	var req sessionStatusRequest
	if err := readJSON(r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	ref := plan.SessionRef{PlanID: planID, WeekNumber: week, DayOfWeek: day}
	err := app.planService.UpdateSessionStatus(r.Context(), userID, ref, plan.SessionStatus(req.Status))
	switch {
	case errors.Is(err, plan.ErrInvalidStatus):
		app.clientError(w, r, http.StatusBadRequest, "invalid session status")
		return
	case errors.Is(err, plan.ErrNotFound):
		app.clientError(w, r, http.StatusNotFound, "session not found")
		return
	case err != nil:
		app.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
