package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"adhok_platform/internal/models/project"
)

func (s *Storage) SaveProject(ctx context.Context, clientId string, req project.ProjectRequest) (project.ProjectResponse, error) {
	const op = "storage.postgres.SaveProject"
	row := s.db.QueryRowContext(ctx, `
	INSERT INTO projects(title, description, status, minimum_badge, client_id, budget, deadline)
	VALUES ($1, $2, 'draft', $3, $4, $5, $6)
	RETURNING id, title, description, status, COALESCE(minimum_badge, ''), client_id, talent_id, winning_bid_id, budget, deadline, created_at
	`, req.Title, req.Description, req.MinimumBadge, clientId, req.Budget, nullTime(req.Deadline))

	result, err := scanProject(row)
	if err != nil {
		return project.ProjectResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	out := t.Time
	return &out
}

const projectColumns = `
	id, title, description, status, COALESCE(minimum_badge, ''), client_id,
	talent_id, winning_bid_id, budget, deadline, created_at`

func scanProject(row interface {
	Scan(dest ...interface{}) error
}) (project.ProjectResponse, error) {
	var p project.ProjectResponse
	var talentId, winningBidId sql.NullString
	var deadline sql.NullTime

	err := row.Scan(&p.Id, &p.Title, &p.Description, &p.Status, &p.MinimumBadge,
		&p.ClientId, &talentId, &winningBidId, &p.Budget, &deadline, &p.CreatedAt)
	if err != nil {
		return project.ProjectResponse{}, err
	}

	p.TalentId = talentId.String
	p.WinningBidId = winningBidId.String
	p.Deadline = timePtr(deadline)
	return p, nil
}

var projectOrderColumns = map[string]string{
	"created_at": "created_at",
	"deadline":   "deadline",
	"budget":     "budget",
	"title":      "title",
}

// ReadProjects lists projects with an optional status filter and a
// case-insensitive substring search over title and description.
func (s *Storage) ReadProjects(ctx context.Context, status, search, orderBy string, limit, offset int) ([]project.ProjectResponse, error) {
	const op = "storage.postgres.ReadProjects"

	order, ok := projectOrderColumns[orderBy]
	if !ok {
		order = "created_at"
	}

	query := fmt.Sprintf(`
	SELECT %s
	FROM projects
	WHERE ($1 = '' OR status = $1)
	  AND ($2 = '' OR title ILIKE '%%' || $2 || '%%' OR description ILIKE '%%' || $2 || '%%')
	ORDER BY %s
	LIMIT $3 OFFSET $4
	`, projectColumns, order)

	rows, err := s.db.QueryContext(ctx, query, status, search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]project.ProjectResponse, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

// ReadMyProjects returns projects the user posted or was picked for.
func (s *Storage) ReadMyProjects(ctx context.Context, userId string, limit, offset int) ([]project.ProjectResponse, error) {
	const op = "storage.postgres.ReadMyProjects"

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
	SELECT %s
	FROM projects
	WHERE client_id = $1 OR talent_id = $1
	ORDER BY created_at
	LIMIT $2 OFFSET $3
	`, projectColumns), userId, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]project.ProjectResponse, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (s *Storage) ReadProject(ctx context.Context, projectId string) (project.ProjectResponse, error) {
	const op = "storage.postgres.ReadProject"

	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
	SELECT %s FROM projects WHERE id = $1
	`, projectColumns), projectId)

	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return project.ProjectResponse{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return project.ProjectResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

func (s *Storage) ReadProjectStatus(ctx context.Context, projectId string) (project.Status, error) {
	const op = "storage.postgres.ReadProjectStatus"
	var status project.Status

	err := s.db.QueryRowContext(ctx, `
	SELECT status FROM projects WHERE id = $1
	`, projectId).Scan(&status)

	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return status, nil
}

// UpdateProjectStatus changes a project's status. Only the posting client
// or an admin may do so.
func (s *Storage) UpdateProjectStatus(ctx context.Context, projectId string, status project.Status, callerId string, isAdmin bool) (project.ProjectResponse, error) {
	const op = "storage.postgres.UpdateProjectStatus"

	p, err := s.ReadProject(ctx, projectId)
	if err != nil {
		return project.ProjectResponse{}, err
	}
	if !isAdmin && p.ClientId != callerId {
		return project.ProjectResponse{}, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	err = s.db.QueryRowContext(ctx, `
	UPDATE projects SET status = $1 WHERE id = $2
	RETURNING status
	`, string(status), projectId).Scan(&p.Status)
	if err != nil {
		return project.ProjectResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

// SelectWinner records the chosen bid's owner on the project. No
// qualification check happens here: an admin may deliberately pick an
// underqualified bidder.
func (s *Storage) SelectWinner(ctx context.Context, projectId, professionalId string) (project.ProjectResponse, error) {
	const op = "storage.postgres.SelectWinner"

	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
	UPDATE projects
	SET winning_bid_id = $1, talent_id = $1
	WHERE id = $2
	RETURNING %s
	`, projectColumns), professionalId, projectId)

	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return project.ProjectResponse{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return project.ProjectResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	return p, nil
}

type milestoneStep struct {
	kind        project.MilestoneKind
	amount      float64
	description string
}

// milestonePlan splits the budget into three payments. The final payment
// carries the remainder so the three always sum to the budget.
func milestonePlan(budget float64) []milestoneStep {
	third := math.Floor(budget/3*100) / 100
	final := math.Round((budget-2*third)*100) / 100

	return []milestoneStep{
		{project.MilestoneInitial, third, "Initial payment after project pick-up"},
		{project.MilestoneDraft, third, "Payment upon first draft submission"},
		{project.MilestoneFinal, final, "Final payment after project approval"},
	}
}

// CreateMilestones seeds the payment milestones once the project is
// picked up. Seeding is idempotent: rows already present are left alone
// and returned, so a bounced or repeated pick-up never duplicates
// payment obligations.
func (s *Storage) CreateMilestones(ctx context.Context, projectId string, budget float64) ([]project.Milestone, error) {
	const op = "storage.postgres.CreateMilestones"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	for _, step := range milestonePlan(budget) {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO payment_milestones(project_id, kind, amount, status, description)
		VALUES ($1, $2, $3, 'pending', $4)
		ON CONFLICT (project_id, kind) DO NOTHING
		`, projectId, string(step.kind), step.amount, step.description); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	rows, err := tx.QueryContext(ctx, `
	SELECT id, project_id, kind, amount, status, due_date, COALESCE(description, '')
	FROM payment_milestones
	WHERE project_id = $1
	ORDER BY CASE kind WHEN 'initial' THEN 0 WHEN 'draft' THEN 1 ELSE 2 END
	`, projectId)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result, err := scanMilestones(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func scanMilestones(rows *sql.Rows) ([]project.Milestone, error) {
	defer rows.Close()

	result := make([]project.Milestone, 0)
	for rows.Next() {
		var m project.Milestone
		var due sql.NullTime
		if err := rows.Scan(&m.Id, &m.ProjectId, &m.Kind, &m.Amount, &m.Status, &due, &m.Description); err != nil {
			return nil, err
		}
		m.DueDate = timePtr(due)
		result = append(result, m)
	}
	return result, rows.Err()
}

func (s *Storage) ReadMilestones(ctx context.Context, projectId string) ([]project.Milestone, error) {
	const op = "storage.postgres.ReadMilestones"

	rows, err := s.db.QueryContext(ctx, `
	SELECT id, project_id, kind, amount, status, due_date, COALESCE(description, '')
	FROM payment_milestones
	WHERE project_id = $1
	ORDER BY CASE kind WHEN 'initial' THEN 0 WHEN 'draft' THEN 1 ELSE 2 END
	`, projectId)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result, err := scanMilestones(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (s *Storage) PayMilestone(ctx context.Context, milestoneId string) (project.Milestone, error) {
	const op = "storage.postgres.PayMilestone"
	var m project.Milestone
	var due sql.NullTime

	err := s.db.QueryRowContext(ctx, `
	UPDATE payment_milestones SET status = 'paid'
	WHERE id = $1
	RETURNING id, project_id, kind, amount, status, due_date, COALESCE(description, '')
	`, milestoneId).Scan(&m.Id, &m.ProjectId, &m.Kind, &m.Amount, &m.Status, &due, &m.Description)
	m.DueDate = timePtr(due)

	if errors.Is(err, sql.ErrNoRows) {
		return project.Milestone{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return project.Milestone{}, fmt.Errorf("%s: %w", op, err)
	}

	return m, nil
}
