package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mkarvon/fitplan/internal/engine"
	"github.com/mkarvon/fitplan/internal/errors"
)

// PostgresRepository implements Repository on top of a pgx connection pool.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewPostgresRepository(pool *pgxpool.Pool, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{pool: pool, logger: logger}
}

func (r *PostgresRepository) UserByAPIKey(ctx context.Context, apiKey string) (User, error) {
	var user User
	err := r.pool.QueryRow(ctx,
		`SELECT id, display_name FROM users WHERE api_key = $1`, apiKey).
		Scan(&user.ID, &user.DisplayName)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, errors.Wrap(ErrNotFound, "user by api key")
	}
	if err != nil {
		return User{}, errors.Wrap(err, "query user by api key")
	}
	return user, nil
}

func (r *PostgresRepository) Goal(ctx context.Context, userID, goalID uuid.UUID) (engine.Goal, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, title, description, initial_value, current_value, target_value, unit, target_date
		 FROM goals WHERE id = $1 AND user_id = $2`, goalID, userID)
	goal, err := scanGoal(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return engine.Goal{}, errors.Wrap(ErrNotFound, "goal", slog.String("goal_id", goalID.String()))
	}
	if err != nil {
		return engine.Goal{}, errors.Wrap(err, "query goal")
	}
	return goal, nil
}

func (r *PostgresRepository) ListGoals(ctx context.Context, userID uuid.UUID) ([]engine.Goal, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, title, description, initial_value, current_value, target_value, unit, target_date
		 FROM goals WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "query goals")
	}
	defer rows.Close()

	var goals []engine.Goal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan goal")
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate goals")
	}
	return goals, nil
}

func scanGoal(row pgx.Row) (engine.Goal, error) {
	var (
		goal       engine.Goal
		id, userID uuid.UUID
		targetDate *time.Time
	)
	err := row.Scan(&id, &userID, &goal.Title, &goal.Description,
		&goal.InitialValue, &goal.CurrentValue, &goal.TargetValue, &goal.Unit, &targetDate)
	if err != nil {
		return engine.Goal{}, err
	}
	goal.ID = id.String()
	goal.UserID = userID.String()
	goal.TargetDate = targetDate
	return goal, nil
}

func (r *PostgresRepository) ListHistory(ctx context.Context, userID uuid.UUID) ([]engine.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT completed_at, duration_minutes FROM workout_history
		 WHERE user_id = $1 ORDER BY completed_at`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "query workout history")
	}
	defer rows.Close()

	var history []engine.HistoryEntry
	for rows.Next() {
		var entry engine.HistoryEntry
		if err := rows.Scan(&entry.Date, &entry.DurationMinutes); err != nil {
			return nil, errors.Wrap(err, "scan history entry")
		}
		history = append(history, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate workout history")
	}
	return history, nil
}

func (r *PostgresRepository) ListTemplates(ctx context.Context, userID uuid.UUID) ([]engine.Template, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, COALESCE(user_id, '00000000-0000-0000-0000-000000000000'), is_public, name,
		        description_markdown, estimated_duration_minutes
		 FROM workout_templates
		 WHERE is_public OR user_id = $1
		 ORDER BY created_at`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "query templates")
	}
	defer rows.Close()

	var (
		templates []engine.Template
		index     = map[string]int{}
	)
	for rows.Next() {
		var (
			tmpl        engine.Template
			id, ownerID uuid.UUID
		)
		err := rows.Scan(&id, &ownerID, &tmpl.Public, &tmpl.Name,
			&tmpl.DescriptionMarkdown, &tmpl.EstimatedDurationMinutes)
		if err != nil {
			return nil, errors.Wrap(err, "scan template")
		}
		tmpl.ID = id.String()
		if ownerID != uuid.Nil {
			tmpl.UserID = ownerID.String()
		}
		index[tmpl.ID] = len(templates)
		templates = append(templates, tmpl)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate templates")
	}
	if len(templates) == 0 {
		return nil, nil
	}

	if err := r.loadTemplateExercises(ctx, templates, index); err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *PostgresRepository) loadTemplateExercises(
	ctx context.Context, templates []engine.Template, index map[string]int,
) error {
	ids := make([]uuid.UUID, 0, len(templates))
	for _, tmpl := range templates {
		id, err := uuid.Parse(tmpl.ID)
		if err != nil {
			return errors.Wrap(err, "parse template id")
		}
		ids = append(ids, id)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT template_id, name, exercise_type, sets, reps, weight_kg,
		        duration_minutes, distance_km, rest_seconds
		 FROM template_exercises
		 WHERE template_id = ANY($1)
		 ORDER BY template_id, position`, ids)
	if err != nil {
		return errors.Wrap(err, "query template exercises")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			templateID uuid.UUID
			ex         engine.Exercise
		)
		err := rows.Scan(&templateID, &ex.Name, &ex.Type, &ex.Sets, &ex.Reps,
			&ex.WeightKg, &ex.DurationMinutes, &ex.DistanceKm, &ex.RestSeconds)
		if err != nil {
			return errors.Wrap(err, "scan template exercise")
		}
		if i, ok := index[templateID.String()]; ok {
			templates[i].Exercises = append(templates[i].Exercises, ex)
		}
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "iterate template exercises")
	}
	return nil
}

func (r *PostgresRepository) Template(ctx context.Context, userID, templateID uuid.UUID) (engine.Template, error) {
	var (
		tmpl    engine.Template
		ownerID *uuid.UUID
	)
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, is_public, name, description_markdown, estimated_duration_minutes
		 FROM workout_templates
		 WHERE id = $1 AND (is_public OR user_id = $2)`, templateID, userID).
		Scan(&ownerID, &tmpl.Public, &tmpl.Name, &tmpl.DescriptionMarkdown, &tmpl.EstimatedDurationMinutes)
	if errors.Is(err, pgx.ErrNoRows) {
		return engine.Template{}, errors.Wrap(ErrNotFound, "template", slog.String("template_id", templateID.String()))
	}
	if err != nil {
		return engine.Template{}, errors.Wrap(err, "query template")
	}
	tmpl.ID = templateID.String()
	if ownerID != nil {
		tmpl.UserID = ownerID.String()
	}

	templates := []engine.Template{tmpl}
	if err := r.loadTemplateExercises(ctx, templates, map[string]int{tmpl.ID: 0}); err != nil {
		return engine.Template{}, err
	}
	return templates[0], nil
}

func (r *PostgresRepository) UpdateTemplateDescription(
	ctx context.Context, templateID uuid.UUID, markdown string,
) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE workout_templates SET description_markdown = $2 WHERE id = $1`, templateID, markdown)
	if err != nil {
		return errors.Wrap(err, "update template description")
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrap(ErrNotFound, "template", slog.String("template_id", templateID.String()))
	}
	return nil
}

// sessionExercise is the JSONB shape of one exercise inside a stored session.
type sessionExercise struct {
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	Sets            int     `json:"sets"`
	Reps            int     `json:"reps"`
	WeightKg        float64 `json:"weightKg"`
	DurationMinutes int     `json:"durationMinutes"`
	DistanceKm      float64 `json:"distanceKm"`
	RestSeconds     int     `json:"restSeconds"`
}

func marshalExercises(exercises []engine.Exercise) ([]byte, error) {
	rows := make([]sessionExercise, 0, len(exercises))
	for _, ex := range exercises {
		rows = append(rows, sessionExercise{
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
	data, err := json.Marshal(rows)
	if err != nil {
		return nil, errors.Wrap(err, "marshal exercises")
	}
	return data, nil
}

func unmarshalExercises(data []byte) ([]engine.Exercise, error) {
	var rows []sessionExercise
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrap(err, "unmarshal exercises")
	}
	if len(rows) == 0 {
		return nil, nil
	}
	exercises := make([]engine.Exercise, 0, len(rows))
	for _, row := range rows {
		exercises = append(exercises, engine.Exercise{
			Name:            row.Name,
			Type:            engine.ExerciseType(row.Type),
			Sets:            row.Sets,
			Reps:            row.Reps,
			WeightKg:        row.WeightKg,
			DurationMinutes: row.DurationMinutes,
			DistanceKm:      row.DistanceKm,
			RestSeconds:     row.RestSeconds,
		})
	}
	return exercises, nil
}

// CreatePlan stores the plan and its sessions in one transaction and makes it
// the user's only active plan.
func (r *PostgresRepository) CreatePlan(ctx context.Context, p Plan) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.Exec(ctx,
		`UPDATE workout_plans SET active = FALSE WHERE user_id = $1 AND active`, p.UserID)
	if err != nil {
		return errors.Wrap(err, "deactivate previous plans")
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO workout_plans (id, user_id, goal_id, weeks_count, active, seed, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, p.UserID, p.GoalID, p.WeeksCount, p.Active, int64(p.Seed), p.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "insert plan")
	}

	if err := insertSessions(ctx, tx, p); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit plan")
	}
	return nil
}

func insertSessions(ctx context.Context, tx pgx.Tx, p Plan) error {
	const cols = 9
	query := `INSERT INTO plan_sessions
		(plan_id, week_number, day_of_week, session_order, workout_type, template_id, template_name, exercises, status)
		VALUES `
	var (
		values []string
		args   []any
	)
	for _, week := range p.Weeks {
		for _, session := range week.Sessions {
			base := len(args)
			placeholders := make([]string, 0, cols)
			for i := 1; i <= cols; i++ {
				placeholders = append(placeholders, fmt.Sprintf("$%d", base+i))
			}
			values = append(values, "("+strings.Join(placeholders, ",")+")")

			var templateID *uuid.UUID
			if session.TemplateID != "" {
				id, err := uuid.Parse(session.TemplateID)
				if err != nil {
					return errors.Wrap(err, "parse session template id")
				}
				templateID = &id
			}
			exercises, err := marshalExercises(session.Exercises)
			if err != nil {
				return err
			}
			args = append(args, p.ID, week.WeekNumber, session.DayOfWeek, session.SessionOrder,
				session.WorkoutType, templateID, session.TemplateName, exercises, string(session.Status))
		}
	}
	if len(values) == 0 {
		return nil
	}

	if _, err := tx.Exec(ctx, query+strings.Join(values, ","), args...); err != nil {
		return errors.Wrap(err, "insert plan sessions")
	}
	return nil
}

func (r *PostgresRepository) Plan(ctx context.Context, userID, planID uuid.UUID) (Plan, error) {
	var (
		p    Plan
		seed int64
	)
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, goal_id, weeks_count, active, seed, created_at
		 FROM workout_plans WHERE id = $1 AND user_id = $2`, planID, userID).
		Scan(&p.ID, &p.UserID, &p.GoalID, &p.WeeksCount, &p.Active, &seed, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Plan{}, errors.Wrap(ErrNotFound, "plan", slog.String("plan_id", planID.String()))
	}
	if err != nil {
		return Plan{}, errors.Wrap(err, "query plan")
	}
	p.Seed = uint64(seed)

	weeks, err := r.loadSessions(ctx, planID)
	if err != nil {
		return Plan{}, err
	}
	p.Weeks = weeks
	return p, nil
}

func (r *PostgresRepository) loadSessions(ctx context.Context, planID uuid.UUID) ([]Week, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT week_number, day_of_week, session_order, workout_type, template_id, template_name,
		        exercises, status, completed_at
		 FROM plan_sessions WHERE plan_id = $1
		 ORDER BY week_number, day_of_week`, planID)
	if err != nil {
		return nil, errors.Wrap(err, "query plan sessions")
	}
	defer rows.Close()

	var weeks []Week
	for rows.Next() {
		var (
			session    Session
			templateID *uuid.UUID
			exercises  []byte
			status     string
		)
		err := rows.Scan(&session.WeekNumber, &session.DayOfWeek, &session.SessionOrder,
			&session.WorkoutType, &templateID, &session.TemplateName,
			&exercises, &status, &session.CompletedAt)
		if err != nil {
			return nil, errors.Wrap(err, "scan plan session")
		}
		session.DayName = engine.DayName(session.DayOfWeek)
		session.Status = SessionStatus(status)
		if templateID != nil {
			session.TemplateID = templateID.String()
		}
		if session.Exercises, err = unmarshalExercises(exercises); err != nil {
			return nil, err
		}

		if len(weeks) == 0 || weeks[len(weeks)-1].WeekNumber != session.WeekNumber {
			weeks = append(weeks, Week{WeekNumber: session.WeekNumber, Sessions: nil, EstimatedWeeklyVolume: 0})
		}
		week := &weeks[len(weeks)-1]
		week.Sessions = append(week.Sessions, session)
		week.EstimatedWeeklyVolume += engine.CalculateVolume(session.Exercises)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate plan sessions")
	}
	return weeks, nil
}

func (r *PostgresRepository) ListPlans(ctx context.Context, userID uuid.UUID) ([]Summary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, goal_id, weeks_count, active, created_at
		 FROM workout_plans WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "query plans")
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.GoalID, &s.WeeksCount, &s.Active, &s.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan plan summary")
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate plans")
	}
	return summaries, nil
}

func (r *PostgresRepository) ActivatePlan(ctx context.Context, userID, planID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.Exec(ctx,
		`UPDATE workout_plans SET active = FALSE WHERE user_id = $1 AND active`, userID)
	if err != nil {
		return errors.Wrap(err, "deactivate previous plans")
	}

	tag, err := tx.Exec(ctx,
		`UPDATE workout_plans SET active = TRUE WHERE id = $1 AND user_id = $2`, planID, userID)
	if err != nil {
		return errors.Wrap(err, "activate plan")
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrap(ErrNotFound, "plan", slog.String("plan_id", planID.String()))
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit activation")
	}
	return nil
}

func (r *PostgresRepository) UpdateSessionStatus(
	ctx context.Context, userID uuid.UUID, ref SessionRef, status SessionStatus, completedAt *time.Time,
) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE plan_sessions SET status = $1, completed_at = $2
		 WHERE plan_id = $3 AND week_number = $4 AND day_of_week = $5
		   AND plan_id IN (SELECT id FROM workout_plans WHERE id = $3 AND user_id = $6)`,
		string(status), completedAt, ref.PlanID, ref.WeekNumber, ref.DayOfWeek, userID)
	if err != nil {
		return errors.Wrap(err, "update session status")
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrap(ErrNotFound, "plan session",
			slog.String("plan_id", ref.PlanID.String()),
			slog.Int("week_number", ref.WeekNumber),
			slog.Int("day_of_week", ref.DayOfWeek))
	}
	return nil
}
