package postgres

import (
	"context"
	"fmt"

	"adhok_platform/internal/models/chat"
)

// AppendActivity writes audit entries in the order given, single batch.
func (s *Storage) AppendActivity(ctx context.Context, projectId string, entries []string) error {
	const op = "storage.postgres.AppendActivity"

	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	for _, entry := range entries {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO activity_log(project_id, entry) VALUES ($1, $2)
		`, projectId, entry); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Storage) ReadActivity(ctx context.Context, projectId string, limit, offset int) ([]string, error) {
	const op = "storage.postgres.ReadActivity"

	rows, err := s.db.QueryContext(ctx, `
	SELECT entry FROM activity_log
	WHERE project_id = $1
	ORDER BY id
	LIMIT $2 OFFSET $3
	`, projectId, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]string, 0)
	for rows.Next() {
		var entry string
		if err := rows.Scan(&entry); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (s *Storage) SaveMessage(ctx context.Context, projectId, senderId, body string) (chat.Message, error) {
	const op = "storage.postgres.SaveMessage"
	var m chat.Message

	err := s.db.QueryRowContext(ctx, `
	INSERT INTO messages(project_id, sender_id, body)
	VALUES ($1, $2, $3)
	RETURNING id, project_id, sender_id, body, created_at
	`, projectId, senderId, body).Scan(&m.Id, &m.ProjectId, &m.SenderId, &m.Body, &m.CreatedAt)
	if err != nil {
		return chat.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	return m, nil
}

func (s *Storage) ReadMessages(ctx context.Context, projectId string, limit, offset int) ([]chat.Message, error) {
	const op = "storage.postgres.ReadMessages"

	rows, err := s.db.QueryContext(ctx, `
	SELECT id, project_id, sender_id, body, created_at
	FROM messages
	WHERE project_id = $1
	ORDER BY created_at
	LIMIT $2 OFFSET $3
	`, projectId, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]chat.Message, 0)
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.Id, &m.ProjectId, &m.SenderId, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}
