package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

type Storage struct {
	db *sql.DB
}

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(100) NOT NULL,
		full_name VARCHAR(100) NOT NULL,
		role VARCHAR(20) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS talent_profiles (
		user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		full_name VARCHAR(100) NOT NULL,
		experience_badge VARCHAR(50) DEFAULT '',
		resume_url VARCHAR(500) DEFAULT ''
	);`,
	`CREATE TABLE IF NOT EXISTS projects (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		title VARCHAR(100) NOT NULL,
		description VARCHAR(2000),
		status VARCHAR(50) NOT NULL,
		minimum_badge VARCHAR(50) DEFAULT '',
		client_id UUID REFERENCES users(id) ON DELETE CASCADE,
		talent_id UUID,
		winning_bid_id UUID,
		budget NUMERIC(12,2) NOT NULL,
		deadline TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS bids (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		project_id UUID REFERENCES projects(id) ON DELETE CASCADE,
		professional_id UUID REFERENCES users(id) ON DELETE CASCADE,
		rate_per_hour NUMERIC(10,2) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS deliverables (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		project_id UUID REFERENCES projects(id) ON DELETE CASCADE,
		title VARCHAR(200) NOT NULL,
		description VARCHAR(2000),
		status VARCHAR(50) NOT NULL,
		estimated_hours NUMERIC(8,2) NOT NULL,
		actual_hours NUMERIC(8,2) NOT NULL DEFAULT 0,
		due_date TIMESTAMP,
		is_tracking BOOLEAN NOT NULL DEFAULT FALSE,
		session_started_at TIMESTAMP,
		position INT NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS time_entries (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		deliverable_id UUID REFERENCES deliverables(id) ON DELETE CASCADE,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP,
		hours_logged NUMERIC(8,2) NOT NULL DEFAULT 0
	);`,
	`CREATE TABLE IF NOT EXISTS submitted_files (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		deliverable_id UUID REFERENCES deliverables(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		url VARCHAR(1000) NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS activity_log (
		id BIGSERIAL PRIMARY KEY,
		project_id UUID REFERENCES projects(id) ON DELETE CASCADE,
		entry VARCHAR(500) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE TABLE IF NOT EXISTS payment_milestones (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		project_id UUID REFERENCES projects(id) ON DELETE CASCADE,
		kind VARCHAR(20) NOT NULL,
		amount NUMERIC(12,2) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		due_date TIMESTAMP,
		description VARCHAR(500) DEFAULT '',
		UNIQUE (project_id, kind)
	);`,
	`CREATE TABLE IF NOT EXISTS messages (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		project_id UUID REFERENCES projects(id) ON DELETE CASCADE,
		sender_id UUID REFERENCES users(id) ON DELETE CASCADE,
		body VARCHAR(2000) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`,
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}
