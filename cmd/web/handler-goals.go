package main

import (
	"net/http"
	"time"

	"github.com/mkarvon/fitplan/internal/contexthelpers"
	"github.com/mkarvon/fitplan/internal/engine"
)

type goalResponse struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	GoalType     string     `json:"goalType"`
	InitialValue float64    `json:"initialValue"`
	CurrentValue float64    `json:"currentValue"`
	TargetValue  float64    `json:"targetValue"`
	Unit         string     `json:"unit,omitempty"`
	TargetDate   *time.Time `json:"targetDate,omitempty"`
}

// goalsGET lists the user's goals with their inferred goal types.
func (app *application) goalsGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())

	goals, err := app.planService.ListGoals(r.Context(), userID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	response := make([]goalResponse, 0, len(goals))
	for _, goal := range goals {
		response = append(response, goalResponse{
			ID:           goal.ID,
			Title:        goal.Title,
			Description:  goal.Description,
			GoalType:     string(engine.ClassifyGoal(goal)),
			InitialValue: goal.InitialValue,
			CurrentValue: goal.CurrentValue,
			TargetValue:  goal.TargetValue,
			Unit:         goal.Unit,
			TargetDate:   goal.TargetDate,
		})
	}
	app.writeJSON(w, r, http.StatusOK, response)
}
