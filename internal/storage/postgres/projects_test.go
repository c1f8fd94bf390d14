package postgres

import (
	"context"
	"math"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open mock db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &Storage{db: db}, mock
}

func TestMilestonePlanSumsToBudget(t *testing.T) {
	cases := []struct {
		budget  float64
		amounts [3]float64
	}{
		{90, [3]float64{30, 30, 30}},
		{100, [3]float64{33.33, 33.33, 33.34}},
		{1000.01, [3]float64{333.33, 333.33, 333.35}},
		{0.01, [3]float64{0, 0, 0.01}},
	}

	for _, tc := range cases {
		plan := milestonePlan(tc.budget)
		if len(plan) != 3 {
			t.Fatalf("budget %g: plan has %d steps, want 3", tc.budget, len(plan))
		}

		var sum float64
		for i, step := range plan {
			if step.amount != tc.amounts[i] {
				t.Errorf("budget %g: amount[%d] = %g, want %g", tc.budget, i, step.amount, tc.amounts[i])
			}
			sum += step.amount
		}
		if math.Abs(sum-tc.budget) > 1e-9 {
			t.Errorf("budget %g: amounts sum to %g", tc.budget, sum)
		}
	}
}

func TestCreateMilestonesIsIdempotent(t *testing.T) {
	s, mock := newMockStorage(t)

	cols := []string{"id", "project_id", "kind", "amount", "status", "due_date", "description"}
	seeded := func() *sqlmock.Rows {
		return sqlmock.NewRows(cols).
			AddRow("m1", "p1", "initial", 33.33, "pending", nil, "Initial payment after project pick-up").
			AddRow("m2", "p1", "draft", 33.33, "pending", nil, "Payment upon first draft submission").
			AddRow("m3", "p1", "final", 33.34, "pending", nil, "Final payment after project approval")
	}

	// First seeding inserts the plan; the repeat conflicts on every row
	// and must hand back the existing three, never six.
	for _, inserted := range []int64{1, 0} {
		mock.ExpectBegin()
		for i := 0; i < 3; i++ {
			mock.ExpectExec("INSERT INTO payment_milestones").
				WillReturnResult(sqlmock.NewResult(0, inserted))
		}
		mock.ExpectQuery("SELECT id, project_id, kind").
			WithArgs("p1").
			WillReturnRows(seeded())
		mock.ExpectCommit()
	}

	first, err := s.CreateMilestones(context.Background(), "p1", 100)
	if err != nil {
		t.Fatalf("first seeding failed: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("first seeding returned %d milestones, want 3", len(first))
	}

	second, err := s.CreateMilestones(context.Background(), "p1", 100)
	if err != nil {
		t.Fatalf("repeated seeding failed: %v", err)
	}
	if len(second) != 3 {
		t.Errorf("repeated seeding returned %d milestones, want 3", len(second))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
