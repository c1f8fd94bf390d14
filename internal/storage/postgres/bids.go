package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"adhok_platform/internal/models/bids"
	"adhok_platform/internal/models/project"
)

// SaveBid records a bid against a live project. The bidder's display
// name and badge come from the talent profile; a missing profile
// normalizes to empty strings.
func (s *Storage) SaveBid(ctx context.Context, professionalId string, req bids.BidRequest) (bids.Bid, error) {
	const op = "storage.postgres.SaveBid"

	status, err := s.ReadProjectStatus(ctx, req.ProjectId)
	if err != nil {
		return bids.Bid{}, err
	}
	if status != project.StatusLive {
		return bids.Bid{}, fmt.Errorf("%s: project is not open for bids: %w", op, ErrBadRequest)
	}

	// Profile first. The INSERT is the last statement, so a failure
	// before it leaves nothing behind for a client retry to duplicate.
	var name, badge string
	err = s.db.QueryRowContext(ctx, `
	SELECT COALESCE(full_name, ''), COALESCE(experience_badge, '')
	FROM talent_profiles
	WHERE user_id = $1
	`, professionalId).Scan(&name, &badge)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return bids.Bid{}, fmt.Errorf("%s: %w", op, err)
	}

	var b bids.Bid
	err = s.db.QueryRowContext(ctx, `
	INSERT INTO bids(project_id, professional_id, rate_per_hour)
	VALUES ($1, $2, $3)
	RETURNING id, project_id, professional_id, rate_per_hour, created_at
	`, req.ProjectId, professionalId, req.RatePerHour).
		Scan(&b.Id, &b.ProjectId, &b.ProfessionalId, &b.RatePerHour, &b.CreatedAt)
	if err != nil {
		return bids.Bid{}, fmt.Errorf("%s: %w", op, err)
	}

	b.Name, b.Badge = name, badge
	return b, nil
}

// ReadProjectBid resolves a bid id to its owner and project.
func (s *Storage) ReadProjectBid(ctx context.Context, bidId string) (string, string, error) {
	const op = "storage.postgres.ReadProjectBid"
	var professionalId, projectId string

	err := s.db.QueryRowContext(ctx, `
	SELECT professional_id, project_id FROM bids WHERE id = $1
	`, bidId).Scan(&professionalId, &projectId)

	if errors.Is(err, sql.ErrNoRows) {
		return "", "", fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	return professionalId, projectId, nil
}

// ReadProjectBids returns a project's bids in submission order, each
// joined with the bidder's profile.
func (s *Storage) ReadProjectBids(ctx context.Context, projectId string) ([]bids.Bid, error) {
	const op = "storage.postgres.ReadProjectBids"

	rows, err := s.db.QueryContext(ctx, `
	SELECT b.id, b.project_id, b.professional_id, b.rate_per_hour, b.created_at,
	       COALESCE(tp.full_name, ''), COALESCE(tp.experience_badge, '')
	FROM bids b
	LEFT JOIN talent_profiles tp ON tp.user_id = b.professional_id
	WHERE b.project_id = $1
	ORDER BY b.created_at
	`, projectId)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]bids.Bid, 0)
	for rows.Next() {
		var b bids.Bid
		if err := rows.Scan(&b.Id, &b.ProjectId, &b.ProfessionalId, &b.RatePerHour, &b.CreatedAt, &b.Name, &b.Badge); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}

func (s *Storage) ReadMyBids(ctx context.Context, professionalId string, limit, offset int) ([]bids.Bid, error) {
	const op = "storage.postgres.ReadMyBids"

	rows, err := s.db.QueryContext(ctx, `
	SELECT b.id, b.project_id, b.professional_id, b.rate_per_hour, b.created_at,
	       COALESCE(tp.full_name, ''), COALESCE(tp.experience_badge, '')
	FROM bids b
	LEFT JOIN talent_profiles tp ON tp.user_id = b.professional_id
	WHERE b.professional_id = $1
	ORDER BY b.created_at
	LIMIT $2 OFFSET $3
	`, professionalId, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	result := make([]bids.Bid, 0)
	for rows.Next() {
		var b bids.Bid
		if err := rows.Scan(&b.Id, &b.ProjectId, &b.ProfessionalId, &b.RatePerHour, &b.CreatedAt, &b.Name, &b.Badge); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result, nil
}
