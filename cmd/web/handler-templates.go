package main

import (
	"bytes"
	"net/http"

	"github.com/mkarvon/fitplan/internal/contexthelpers"
	"github.com/mkarvon/fitplan/internal/engine"
	"github.com/mkarvon/fitplan/internal/errors"
	"github.com/yuin/goldmark"
)

type exerciseResponse struct {
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	Sets            int     `json:"sets,omitempty"`
	Reps            int     `json:"reps,omitempty"`
	WeightKg        float64 `json:"weightKg,omitempty"`
	DurationMinutes int     `json:"durationMinutes,omitempty"`
	DistanceKm      float64 `json:"distanceKm,omitempty"`
	RestSeconds     int     `json:"restSeconds,omitempty"`
}

type templateSummaryResponse struct {
	ID                       string `json:"id"`
	Name                     string `json:"name"`
	Public                   bool   `json:"public"`
	DominantType             string `json:"dominantType"`
	EstimatedDurationMinutes int    `json:"estimatedDurationMinutes"`
	ExerciseCount            int    `json:"exerciseCount"`
}

type templateResponse struct {
	ID                       string             `json:"id"`
	Name                     string             `json:"name"`
	Public                   bool               `json:"public"`
	DominantType             string             `json:"dominantType"`
	EstimatedDurationMinutes int                `json:"estimatedDurationMinutes"`
	DescriptionHTML          string             `json:"descriptionHtml"`
	Exercises                []exerciseResponse `json:"exercises"`
}

// templatesGET lists the templates visible to the user.
func (app *application) templatesGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())

	templates, err := app.planService.ListTemplates(r.Context(), userID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	response := make([]templateSummaryResponse, 0, len(templates))
	for _, tmpl := range templates {
		response = append(response, templateSummaryResponse{
			ID:                       tmpl.ID,
			Name:                     tmpl.Name,
			Public:                   tmpl.Public,
			DominantType:             string(tmpl.DominantType()),
			EstimatedDurationMinutes: tmpl.EstimatedDurationMinutes,
			ExerciseCount:            len(tmpl.Exercises),
		})
	}
	app.writeJSON(w, r, http.StatusOK, response)
}

// templateGET returns one template with its markdown description rendered to
// HTML.
func (app *application) templateGET(w http.ResponseWriter, r *http.Request) {
	userID := contexthelpers.AuthenticatedUserID(r.Context())
	templateID, ok := app.parseUUIDParam(w, r, "templateID")
	if !ok {
		return
	}

	tmpl, err := app.planService.GetTemplate(r.Context(), userID, templateID)
	if err != nil {
		app.notFoundOrServerError(w, r, err)
		return
	}

	descriptionHTML, err := renderMarkdown(tmpl.DescriptionMarkdown)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	app.writeJSON(w, r, http.StatusOK, templateResponse{
		ID:                       tmpl.ID,
		Name:                     tmpl.Name,
		Public:                   tmpl.Public,
		DominantType:             string(tmpl.DominantType()),
		EstimatedDurationMinutes: tmpl.EstimatedDurationMinutes,
		DescriptionHTML:          descriptionHTML,
		Exercises:                exerciseResponses(tmpl.Exercises),
	})
}

func renderMarkdown(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", errors.Wrap(err, "render markdown")
	}
	return buf.String(), nil
}

func exerciseResponses(exercises []engine.Exercise) []exerciseResponse {
	out := make([]exerciseResponse, 0, len(exercises))
	for _, ex := range exercises {
		out = append(out, exerciseResponse{
			Name:            ex.Name,
			Type:            string(ex.Type),
			Sets:            ex.Sets,
			Reps:            ex.Reps,
			WeightKg:        ex.WeightKg,
			DurationMinutes: ex.DurationMinutes,
			DistanceKm:      ex.DistanceKm,
			RestSeconds:     ex.RestSeconds,
		})
	}
	return out
}
