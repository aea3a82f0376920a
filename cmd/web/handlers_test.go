package main

import (
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestLogin(t *testing.T) {
	repo := newFakeRepository()
	seedRepository(repo)
	server, client := newTestServer(t, repo)

	t.Run("valid api key creates a session", func(t *testing.T) {
		resp := doJSON(t, client, http.MethodPost, server.URL+"/api/login", loginRequest{APIKey: testAPIKey})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		var body loginResponse
		decodeJSON(t, resp, &body)
		if body.DisplayName != "Test User" {
			t.Errorf("displayName = %q, want %q", body.DisplayName, "Test User")
		}

		resp = doJSON(t, client, http.MethodGet, server.URL+"/api/goals", nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("goals after login status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
	})

	t.Run("unknown api key is rejected", func(t *testing.T) {
		resp := doJSON(t, client, http.MethodPost, server.URL+"/api/login", loginRequest{APIKey: "wrong"})
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
		}
	})

	t.Run("empty api key is a bad request", func(t *testing.T) {
		resp := doJSON(t, client, http.MethodPost, server.URL+"/api/login", loginRequest{})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
		}
	})
}

func TestLogout(t *testing.T) {
	repo := newFakeRepository()
	seedRepository(repo)
	server, client := newTestServer(t, repo)
	login(t, client, server.URL)

	resp := doJSON(t, client, http.MethodPost, server.URL+"/api/logout", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	resp = doJSON(t, client, http.MethodGet, server.URL+"/api/goals", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("goals after logout status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestGoalsGET(t *testing.T) {
	repo := newFakeRepository()
	seedRepository(repo)
	server, client := newTestServer(t, repo)
	login(t, client, server.URL)

	resp := doJSON(t, client, http.MethodGet, server.URL+"/api/goals", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var goals []goalResponse
	decodeJSON(t, resp, &goals)
	if len(goals) != 1 {
		t.Fatalf("len(goals) = %d, want 1", len(goals))
	}
	if goals[0].Title != "Build muscle for summer" {
		t.Errorf("title = %q", goals[0].Title)
	}
	if goals[0].GoalType != "muscle_building" {
		t.Errorf("goalType = %q, want muscle_building", goals[0].GoalType)
	}
}

func TestTemplates(t *testing.T) {
	repo := newFakeRepository()
	seedRepository(repo)
	server, client := newTestServer(t, repo)
	login(t, client, server.URL)

	resp := doJSON(t, client, http.MethodGet, server.URL+"/api/templates", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var templates []templateSummaryResponse
	decodeJSON(t, resp, &templates)
	if len(templates) != 2 {
		t.Fatalf("len(templates) = %d, want 2", len(templates))
	}

	var strengthID string
	for _, tmpl := range templates {
		if tmpl.Name == "Full Body Strength" {
			strengthID = tmpl.ID
			if tmpl.DominantType != "strength" {
				t.Errorf("dominantType = %q, want strength", tmpl.DominantType)
			}
			if tmpl.ExerciseCount != 2 {
				t.Errorf("exerciseCount = %d, want 2", tmpl.ExerciseCount)
			}
		}
	}
	if strengthID == "" {
		t.Fatal("strength template missing from listing")
	}

	resp = doJSON(t, client, http.MethodGet, server.URL+"/api/templates/"+strengthID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var tmpl templateResponse
	decodeJSON(t, resp, &tmpl)
	if len(tmpl.Exercises) != 2 {
		t.Errorf("len(exercises) = %d, want 2", len(tmpl.Exercises))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(tmpl.DescriptionHTML))
	if err != nil {
		t.Fatalf("parse description HTML: %v", err)
	}
	if heading := doc.Find("h2").Text(); heading != "Full Body Strength" {
		t.Errorf("description heading = %q, want template name", heading)
	}
	if items := doc.Find("li").Length(); items != 2 {
		t.Errorf("description list items = %d, want 2", items)
	}
}

func TestTemplateGETUnknownID(t *testing.T) {
	repo := newFakeRepository()
	seedRepository(repo)
	server, client := newTestServer(t, repo)
	login(t, client, server.URL)

	for _, path := range []string{
		"/api/templates/" + "11111111-1111-1111-1111-111111111111",
		"/api/templates/not-a-uuid",
	} {
		resp := doJSON(t, client, http.MethodGet, server.URL+path, nil)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want %d", path, resp.StatusCode, http.StatusNotFound)
		}
	}
}

func TestPlanLifecycle(t *testing.T) {
	repo := newFakeRepository()
	_, goalID := seedRepository(repo)
	server, client := newTestServer(t, repo)
	login(t, client, server.URL)

	resp := doJSON(t, client, http.MethodPost, server.URL+"/api/plans", planCreateRequest{
		GoalID:     goalID.String(),
		WeeksCount: 4,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	var created planResponse
	decodeJSON(t, resp, &created)
	if !created.Active {
		t.Error("new plan should be active")
	}
	if len(created.Weeks) != 4 {
		t.Fatalf("len(weeks) = %d, want 4", len(created.Weeks))
	}
	for _, week := range created.Weeks {
		if len(week.Sessions) != 7 {
			t.Errorf("week %d has %d sessions, want 7", week.WeekNumber, len(week.Sessions))
		}
	}

	resp = doJSON(t, client, http.MethodGet, server.URL+"/api/plans", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var summaries []planSummaryResponse
	decodeJSON(t, resp, &summaries)
	if len(summaries) != 1 || summaries[0].ID != created.ID {
		t.Errorf("summaries = %+v, want the created plan", summaries)
	}

	resp = doJSON(t, client, http.MethodGet, server.URL+"/api/plans/"+created.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var fetched planResponse
	decodeJSON(t, resp, &fetched)
	if fetched.ID != created.ID || len(fetched.Weeks) != 4 {
		t.Errorf("fetched plan = %s with %d weeks", fetched.ID, len(fetched.Weeks))
	}

	// Complete the first workout of week 1.
	var workoutDay = -1
	for _, session := range created.Weeks[0].Sessions {
		if session.WorkoutType != "rest" {
			workoutDay = session.DayOfWeek
			break
		}
	}
	if workoutDay < 0 {
		t.Fatal("week 1 has no workout day")
	}
	statusURL := server.URL + "/api/plans/" + created.ID +
		"/weeks/1/days/" + strconv.Itoa(workoutDay) + "/status"
	resp = doJSON(t, client, http.MethodPost, statusURL, sessionStatusRequest{Status: "completed"})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status update = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}

	resp = doJSON(t, client, http.MethodGet, server.URL+"/api/plans/"+created.ID+"/stats", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var stats statsResponse
	decodeJSON(t, resp, &stats)
	if stats.Completed != 1 {
		t.Errorf("completed = %d, want 1", stats.Completed)
	}
	if stats.Workouts == 0 || stats.AdherenceRate == 0 {
		t.Errorf("stats = %+v, want non-zero workouts and adherence", stats)
	}

	resp = doJSON(t, client, http.MethodPost, server.URL+"/api/plans/"+created.ID+"/activate", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("activate status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
}

func TestPlanCreateValidation(t *testing.T) {
	repo := newFakeRepository()
	_, goalID := seedRepository(repo)
	server, client := newTestServer(t, repo)
	login(t, client, server.URL)

	tests := []struct {
		name       string
		request    planCreateRequest
		wantStatus int
	}{
		{
			name:       "zero weeks",
			request:    planCreateRequest{GoalID: goalID.String(), WeeksCount: 0},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "too many weeks",
			request:    planCreateRequest{GoalID: goalID.String(), WeeksCount: 13},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed goal id",
			request:    planCreateRequest{GoalID: "nope", WeeksCount: 4},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown goal",
			request:    planCreateRequest{GoalID: "11111111-1111-1111-1111-111111111111", WeeksCount: 4},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "preferred day out of range",
			request:    planCreateRequest{GoalID: goalID.String(), WeeksCount: 4, PreferredDays: []int{7}},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, client, http.MethodPost, server.URL+"/api/plans", tt.request)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestSessionStatusValidation(t *testing.T) {
	repo := newFakeRepository()
	_, goalID := seedRepository(repo)
	server, client := newTestServer(t, repo)
	login(t, client, server.URL)

	resp := doJSON(t, client, http.MethodPost, server.URL+"/api/plans", planCreateRequest{
		GoalID:     goalID.String(),
		WeeksCount: 2,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	var created planResponse
	decodeJSON(t, resp, &created)

	statusURL := server.URL + "/api/plans/" + created.ID + "/weeks/1/days/1/status"
	resp = doJSON(t, client, http.MethodPost, statusURL, sessionStatusRequest{Status: "done"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid status code = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	missingURL := server.URL + "/api/plans/11111111-1111-1111-1111-111111111111/weeks/1/days/1/status"
	resp = doJSON(t, client, http.MethodPost, missingURL, sessionStatusRequest{Status: "completed"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown plan code = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}
