package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"adhok_platform/internal/models/user"
)

// RegisterUser creates the account and, for talent, its profile in one
// transaction. Either both rows land or neither does, so a failed
// profile write never strands an account that blocks the retry.
func (s *Storage) RegisterUser(ctx context.Context, email, passwordHash, fullName string, role user.Role, experienceBadge string) (user.User, error) {
	const op = "storage.postgres.RegisterUser"
	var usr user.User

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return user.User{}, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
	INSERT INTO users(email, password_hash, full_name, role)
	VALUES ($1, $2, $3, $4)
	RETURNING id, email, full_name, role, created_at
	`, email, passwordHash, fullName, string(role)).
		Scan(&usr.Id, &usr.Email, &usr.FullName, &usr.Role, &usr.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return user.User{}, fmt.Errorf("%s: email already registered: %w", op, ErrBadRequest)
		}
		return user.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if role == user.RoleTalent {
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO talent_profiles(user_id, full_name, experience_badge)
		VALUES ($1, $2, $3)
		`, usr.Id, fullName, experienceBadge); err != nil {
			return user.User{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return user.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return usr, nil
}

// FetchUserByEmail returns the user record plus the stored password hash.
func (s *Storage) FetchUserByEmail(ctx context.Context, email string) (user.User, string, error) {
	const op = "storage.postgres.FetchUserByEmail"
	var usr user.User
	var hash string

	err := s.db.QueryRowContext(ctx, `
	SELECT id, email, full_name, role, created_at, password_hash
	FROM users
	WHERE email = $1
	`, email).Scan(&usr.Id, &usr.Email, &usr.FullName, &usr.Role, &usr.CreatedAt, &hash)

	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, "", fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return user.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	return usr, hash, nil
}

func (s *Storage) FetchUser(ctx context.Context, userId string) (user.User, error) {
	const op = "storage.postgres.FetchUser"
	var usr user.User

	err := s.db.QueryRowContext(ctx, `
	SELECT id, email, full_name, role, created_at
	FROM users
	WHERE id = $1
	`, userId).Scan(&usr.Id, &usr.Email, &usr.FullName, &usr.Role, &usr.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return user.User{}, fmt.Errorf("%s: %w", op, ErrUserNotFound)
	}
	if err != nil {
		return user.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return usr, nil
}

// FetchTalentProfile normalizes absent rows and NULL columns to empty
// strings so callers always see the canonical shape.
func (s *Storage) FetchTalentProfile(ctx context.Context, userId string) (user.TalentProfile, error) {
	const op = "storage.postgres.FetchTalentProfile"
	var profile user.TalentProfile

	err := s.db.QueryRowContext(ctx, `
	SELECT user_id, full_name, COALESCE(experience_badge, ''), COALESCE(resume_url, '')
	FROM talent_profiles
	WHERE user_id = $1
	`, userId).Scan(&profile.UserId, &profile.FullName, &profile.ExperienceBadge, &profile.ResumeUrl)

	if errors.Is(err, sql.ErrNoRows) {
		return user.TalentProfile{}, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return user.TalentProfile{}, fmt.Errorf("%s: %w", op, err)
	}

	return profile, nil
}

func (s *Storage) UpdateResumeUrl(ctx context.Context, userId, url string) error {
	const op = "storage.postgres.UpdateResumeUrl"

	res, err := s.db.ExecContext(ctx, `
	UPDATE talent_profiles SET resume_url = $1 WHERE user_id = $2
	`, url, userId)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
