package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"adhok_platform/internal/models/deliverable"
)

func (s *Storage) SaveDeliverable(ctx context.Context, req deliverable.CreateRequest) (deliverable.Deliverable, error) {
	const op = "storage.postgres.SaveDeliverable"

	if _, err := s.ReadProjectStatus(ctx, req.ProjectId); err != nil {
		return deliverable.Deliverable{}, err
	}

	row := s.db.QueryRowContext(ctx, `
	INSERT INTO deliverables(project_id, title, description, status, estimated_hours, due_date, position)
	VALUES ($1, $2, $3, 'recommended', $4, $5,
	        (SELECT COALESCE(MAX(position) + 1, 0) FROM deliverables WHERE project_id = $1))
	RETURNING id, project_id, title, description, status, estimated_hours, actual_hours,
	          due_date, is_tracking, session_started_at, created_at
	`, req.ProjectId, req.Title, req.Description, req.EstimatedHours, nullTime(req.DueDate))

	d, err := scanDeliverable(row)
	if err != nil {
		return deliverable.Deliverable{}, fmt.Errorf("%s: %w", op, err)
	}

	d.TimeEntries = make([]deliverable.TimeEntry, 0)
	return d, nil
}

const deliverableColumns = `
	id, project_id, title, description, status, estimated_hours, actual_hours,
	due_date, is_tracking, session_started_at, created_at`

func scanDeliverable(row interface {
	Scan(dest ...interface{}) error
}) (deliverable.Deliverable, error) {
	var d deliverable.Deliverable
	var dueDate, sessionStart sql.NullTime

	err := row.Scan(&d.Id, &d.ProjectId, &d.Title, &d.Description, &d.Status,
		&d.EstimatedHours, &d.ActualHours, &dueDate, &d.IsTracking, &sessionStart, &d.CreatedAt)
	if err != nil {
		return deliverable.Deliverable{}, err
	}

	d.DueDate = timePtr(dueDate)
	if d.IsTracking && sessionStart.Valid {
		d.CurrentSession = &deliverable.Session{StartTime: sessionStart.Time}
	}
	return d, nil
}

func (s *Storage) ReadDeliverable(ctx context.Context, deliverableId string) (deliverable.Deliverable, error) {
	const op = "storage.postgres.ReadDeliverable"

	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`
	SELECT %s FROM deliverables WHERE id = $1
	`, deliverableColumns), deliverableId)

	d, err := scanDeliverable(row)
	if errors.Is(err, sql.ErrNoRows) {
		return deliverable.Deliverable{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return deliverable.Deliverable{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.loadDeliverableDetails(ctx, map[string]*deliverable.Deliverable{d.Id: &d}); err != nil {
		return deliverable.Deliverable{}, fmt.Errorf("%s: %w", op, err)
	}

	return d, nil
}

// ReadProjectDeliverables returns a project's deliverables in board
// order with their time entries and submitted files attached.
func (s *Storage) ReadProjectDeliverables(ctx context.Context, projectId string) ([]deliverable.Deliverable, error) {
	const op = "storage.postgres.ReadProjectDeliverables"

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
	SELECT %s FROM deliverables
	WHERE project_id = $1
	ORDER BY position, created_at
	`, deliverableColumns), projectId)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]deliverable.Deliverable, 0)
	byId := make(map[string]*deliverable.Deliverable)
	for rows.Next() {
		d, err := scanDeliverable(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i := range result {
		byId[result[i].Id] = &result[i]
	}
	if err := s.loadDeliverableDetails(ctx, byId); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (s *Storage) loadDeliverableDetails(ctx context.Context, byId map[string]*deliverable.Deliverable) error {
	ids := make([]string, 0, len(byId))
	for id, d := range byId {
		ids = append(ids, id)
		d.TimeEntries = make([]deliverable.TimeEntry, 0)
		d.SubmittedFiles = nil
	}
	if len(ids) == 0 {
		return nil
	}

	rows, err := s.db.QueryContext(ctx, `
	SELECT deliverable_id, start_time, end_time, hours_logged
	FROM time_entries
	WHERE deliverable_id = ANY($1)
	ORDER BY start_time
	`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var entry deliverable.TimeEntry
		var end sql.NullTime
		if err := rows.Scan(&id, &entry.StartTime, &end, &entry.HoursLogged); err != nil {
			return err
		}
		entry.EndTime = timePtr(end)
		if d, ok := byId[id]; ok {
			d.TimeEntries = append(d.TimeEntries, entry)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	fileRows, err := s.db.QueryContext(ctx, `
	SELECT deliverable_id, id, name, url
	FROM submitted_files
	WHERE deliverable_id = ANY($1)
	ORDER BY id
	`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer fileRows.Close()

	for fileRows.Next() {
		var id string
		var f deliverable.SubmittedFile
		if err := fileRows.Scan(&id, &f.Id, &f.Name, &f.Url); err != nil {
			return err
		}
		if d, ok := byId[id]; ok {
			d.SubmittedFiles = append(d.SubmittedFiles, f)
		}
	}
	return fileRows.Err()
}

func (s *Storage) UpdateDeliverableStatus(ctx context.Context, deliverableId string, status deliverable.Status) error {
	const op = "storage.postgres.UpdateDeliverableStatus"

	res, err := s.db.ExecContext(ctx, `
	UPDATE deliverables SET status = $1 WHERE id = $2
	`, string(status), deliverableId)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// PersistTrackingState writes the open-session flags as produced by the
// lifecycle engine.
func (s *Storage) PersistTrackingState(ctx context.Context, d deliverable.Deliverable) error {
	const op = "storage.postgres.PersistTrackingState"

	var startedAt sql.NullTime
	if d.CurrentSession != nil {
		startedAt = sql.NullTime{Time: d.CurrentSession.StartTime, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
	UPDATE deliverables SET is_tracking = $1, session_started_at = $2 WHERE id = $3
	`, d.IsTracking, startedAt, d.Id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// CloseSession records one closed time entry and the new accumulated
// total in a single transaction.
func (s *Storage) CloseSession(ctx context.Context, d deliverable.Deliverable, entry deliverable.TimeEntry) error {
	const op = "storage.postgres.CloseSession"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO time_entries(deliverable_id, start_time, end_time, hours_logged)
	VALUES ($1, $2, $3, $4)
	`, d.Id, entry.StartTime, nullTime(entry.EndTime), entry.HoursLogged)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = tx.ExecContext(ctx, `
	UPDATE deliverables
	SET actual_hours = $1, is_tracking = FALSE, session_started_at = NULL
	WHERE id = $2
	`, d.ActualHours, d.Id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// PersistBoardOrder rewrites position and status for every deliverable
// in the given order.
func (s *Storage) PersistBoardOrder(ctx context.Context, ordered []deliverable.Deliverable) error {
	const op = "storage.postgres.PersistBoardOrder"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	for i, d := range ordered {
		if _, err := tx.ExecContext(ctx, `
		UPDATE deliverables SET position = $1, status = $2 WHERE id = $3
		`, i, string(d.Status), d.Id); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) AttachFile(ctx context.Context, deliverableId, name, url string) (deliverable.SubmittedFile, error) {
	const op = "storage.postgres.AttachFile"
	var f deliverable.SubmittedFile

	err := s.db.QueryRowContext(ctx, `
	INSERT INTO submitted_files(deliverable_id, name, url)
	VALUES ($1, $2, $3)
	RETURNING id, name, url
	`, deliverableId, name, url).Scan(&f.Id, &f.Name, &f.Url)
	if err != nil {
		return deliverable.SubmittedFile{}, fmt.Errorf("%s: %w", op, err)
	}

	return f, nil
}
