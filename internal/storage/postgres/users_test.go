package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"adhok_platform/internal/models/user"
)

func TestRegisterTalentWritesAccountAndProfileTogether(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("dana@example.com", "hash", "Dana Reyes", "talent").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "full_name", "role", "created_at"}).
			AddRow("u1", "dana@example.com", "Dana Reyes", "talent", time.Now()))
	mock.ExpectExec("INSERT INTO talent_profiles").
		WithArgs("u1", "Dana Reyes", "Pro Talent").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	usr, err := s.RegisterUser(context.Background(), "dana@example.com", "hash", "Dana Reyes", user.RoleTalent, "Pro Talent")
	if err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}
	if usr.Id != "u1" || usr.Role != user.RoleTalent {
		t.Errorf("unexpected user: %+v", usr)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRegisterTalentRollsBackOnProfileFailure(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("dana@example.com", "hash", "Dana Reyes", "talent").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "full_name", "role", "created_at"}).
			AddRow("u1", "dana@example.com", "Dana Reyes", "talent", time.Now()))
	mock.ExpectExec("INSERT INTO talent_profiles").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	if _, err := s.RegisterUser(context.Background(), "dana@example.com", "hash", "Dana Reyes", user.RoleTalent, "Pro Talent"); err == nil {
		t.Fatal("expected error from failed profile write")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRegisterClientSkipsProfile(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("sam@example.com", "hash", "Sam Okafor", "client").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "full_name", "role", "created_at"}).
			AddRow("u2", "sam@example.com", "Sam Okafor", "client", time.Now()))
	mock.ExpectCommit()

	usr, err := s.RegisterUser(context.Background(), "sam@example.com", "hash", "Sam Okafor", user.RoleClient, "")
	if err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}
	if usr.Role != user.RoleClient {
		t.Errorf("role = %s, want client", usr.Role)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
