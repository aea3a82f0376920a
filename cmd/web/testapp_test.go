package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/mkarvon/fitplan/internal/engine"
	"github.com/mkarvon/fitplan/internal/plan"
	"github.com/mkarvon/fitplan/internal/testhelpers"
)

const testAPIKey = "test-api-key"

// fakeRepository keeps everything in memory so handler tests run without
// Postgres.
type fakeRepository struct {
	users     map[string]plan.User
	goals     map[uuid.UUID]engine.Goal
	history   []engine.HistoryEntry
	templates []engine.Template
	plans     map[uuid.UUID]plan.Plan
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		users: map[string]plan.User{},
		goals: map[uuid.UUID]engine.Goal{},
		plans: map[uuid.UUID]plan.Plan{},
	}
}

func (f *fakeRepository) UserByAPIKey(_ context.Context, apiKey string) (plan.User, error) {
	user, ok := f.users[apiKey]
	if !ok {
		return plan.User{}, plan.ErrNotFound
	}
	return user, nil
}

func (f *fakeRepository) Goal(_ context.Context, _, goalID uuid.UUID) (engine.Goal, error) {
	goal, ok := f.goals[goalID]
	if !ok {
		return engine.Goal{}, plan.ErrNotFound
	}
	return goal, nil
}

func (f *fakeRepository) ListGoals(_ context.Context, _ uuid.UUID) ([]engine.Goal, error) {
	var goals []engine.Goal
	for _, goal := range f.goals {
		goals = append(goals, goal)
	}
	return goals, nil
}

func (f *fakeRepository) ListHistory(_ context.Context, _ uuid.UUID) ([]engine.HistoryEntry, error) {
	return f.history, nil
}

func (f *fakeRepository) ListTemplates(_ context.Context, _ uuid.UUID) ([]engine.Template, error) {
	return f.templates, nil
}

func (f *fakeRepository) Template(_ context.Context, _, templateID uuid.UUID) (engine.Template, error) {
	for _, tmpl := range f.templates {
		if tmpl.ID == templateID.String() {
			return tmpl, nil
		}
	}
	return engine.Template{}, plan.ErrNotFound
}

func (f *fakeRepository) UpdateTemplateDescription(_ context.Context, templateID uuid.UUID, markdown string) error {
	for i, tmpl := range f.templates {
		if tmpl.ID == templateID.String() {
			f.templates[i].DescriptionMarkdown = markdown
		}
	}
	return nil
}

func (f *fakeRepository) CreatePlan(_ context.Context, p plan.Plan) error {
	for id, existing := range f.plans {
		if existing.UserID == p.UserID && existing.Active {
			existing.Active = false
			f.plans[id] = existing
		}
	}
	f.plans[p.ID] = p
	return nil
}

func (f *fakeRepository) Plan(_ context.Context, userID, planID uuid.UUID) (plan.Plan, error) {
	p, ok := f.plans[planID]
	if !ok || p.UserID != userID {
		return plan.Plan{}, plan.ErrNotFound
	}
	return p, nil
}

func (f *fakeRepository) ListPlans(_ context.Context, userID uuid.UUID) ([]plan.Summary, error) {
	var summaries []plan.Summary
	for _, p := range f.plans {
		if p.UserID != userID {
			continue
		}
		summaries = append(summaries, plan.Summary{
			ID: p.ID, GoalID: p.GoalID, WeeksCount: p.WeeksCount, Active: p.Active, CreatedAt: p.CreatedAt,
		})
	}
	return summaries, nil
}

func (f *fakeRepository) ActivatePlan(_ context.Context, userID, planID uuid.UUID) error {
	target, ok := f.plans[planID]
	if !ok || target.UserID != userID {
		return plan.ErrNotFound
	}
	for id, p := range f.plans {
		if p.UserID == userID {
			p.Active = id == planID
			f.plans[id] = p
		}
	}
	return nil
}

func (f *fakeRepository) UpdateSessionStatus(
	_ context.Context, userID uuid.UUID, ref plan.SessionRef, status plan.SessionStatus, completedAt *time.Time,
) error {
	p, ok := f.plans[ref.PlanID]
	if !ok || p.UserID != userID {
		return plan.ErrNotFound
	}
	for wi, week := range p.Weeks {
		if week.WeekNumber != ref.WeekNumber {
			continue
		}
		for si, session := range week.Sessions {
			if session.DayOfWeek == ref.DayOfWeek {
				p.Weeks[wi].Sessions[si].Status = status
				p.Weeks[wi].Sessions[si].CompletedAt = completedAt
				f.plans[ref.PlanID] = p
				return nil
			}
		}
	}
	return plan.ErrNotFound
}

// seedRepository registers a user with a goal and two public templates.
func seedRepository(repo *fakeRepository) (userID, goalID uuid.UUID) {
	userID, goalID = uuid.New(), uuid.New()
	repo.users[testAPIKey] = plan.User{ID: userID, DisplayName: "Test User"}
	repo.goals[goalID] = engine.Goal{
		ID:           goalID.String(),
		UserID:       userID.String(),
		Title:        "Build muscle for summer",
		InitialValue: 70,
		TargetValue:  78,
		Unit:         "kg",
	}
	repo.templates = []engine.Template{
		{
			ID:                       uuid.NewString(),
			Public:                   true,
			Name:                     "Full Body Strength",
			EstimatedDurationMinutes: 60,
			Exercises: []engine.Exercise{
				{Name: "Squat", Type: engine.ExerciseStrength, Sets: 3, Reps: 10, WeightKg: 60, RestSeconds: 90},
				{Name: "Bench Press", Type: engine.ExerciseStrength, Sets: 3, Reps: 8, WeightKg: 50, RestSeconds: 90},
			},
		},
		{
			ID:                       uuid.NewString(),
			Public:                   true,
			Name:                     "Easy Run",
			EstimatedDurationMinutes: 45,
			Exercises: []engine.Exercise{
				{Name: "Run", Type: engine.ExerciseCardio, DurationMinutes: 45, DistanceKm: 7},
			},
		},
	}
	return userID, goalID
}

// newTestServer starts the full middleware and routing stack over the fake
// repository and returns a client with a cookie jar.
func newTestServer(t *testing.T, repo *fakeRepository) (*httptest.Server, *http.Client) {
	t.Helper()

	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	app := application{
		logger:         logger,
		sessionManager: scs.New(),
		planService:    plan.NewService(repo, logger, "", 0),
		flightRecorder: nil,
	}

	server := httptest.NewServer(app.routes())
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New() error = %v", err)
	}
	client := server.Client()
	client.Jar = jar
	return server, client
}

func doJSON(t *testing.T, client *http.Client, method, url string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(t.Context(), method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func login(t *testing.T, client *http.Client, serverURL string) {
	t.Helper()
	resp := doJSON(t, client, http.MethodPost, serverURL+"/api/login", loginRequest{APIKey: testAPIKey})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}
