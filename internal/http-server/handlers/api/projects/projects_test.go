package projects

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"adhok_platform/internal/http-server/middleware"
	"adhok_platform/internal/lib/auth"
	"adhok_platform/internal/models/project"
	"adhok_platform/internal/models/user"
)

type stubStatusStore struct {
	project     project.ProjectResponse
	milestones  []project.Milestone
	createCalls int
}

func (s *stubStatusStore) UpdateProjectStatus(_ context.Context, _ string, status project.Status, _ string, _ bool) (project.ProjectResponse, error) {
	s.project.Status = status
	return s.project, nil
}

func (s *stubStatusStore) ReadMilestones(_ context.Context, _ string) ([]project.Milestone, error) {
	return s.milestones, nil
}

func (s *stubStatusStore) CreateMilestones(_ context.Context, projectId string, _ float64) ([]project.Milestone, error) {
	s.createCalls++
	s.milestones = []project.Milestone{
		{Id: "m1", ProjectId: projectId, Kind: project.MilestoneInitial},
		{Id: "m2", ProjectId: projectId, Kind: project.MilestoneDraft},
		{Id: "m3", ProjectId: projectId, Kind: project.MilestoneFinal},
	}
	return s.milestones, nil
}

type stubNotifier struct {
	refreshes int
}

func (n *stubNotifier) Refresh(_ context.Context, _, _ string) {
	n.refreshes++
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRepeatedPickUpSeedsMilestonesOnce(t *testing.T) {
	store := &stubStatusStore{
		project: project.ProjectResponse{Id: "p1", ClientId: "c1", Budget: 900, Status: project.StatusLive},
	}
	notifier := &stubNotifier{}

	router := chi.NewRouter()
	router.Put("/api/projects/{projectId}/status", NewPutProjectStatus(discardLogger(), store, notifier))

	put := func(status string) int {
		req := httptest.NewRequest(http.MethodPut, "/api/projects/p1/status?status="+status, nil)
		req = req.WithContext(middleware.WithSession(req.Context(), auth.Session{UserId: "c1", Role: user.RoleClient}))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	// Transitions are unconditional, so a bounce back to live and a
	// repeated pick-up are both legal. Neither may add milestones.
	for _, status := range []string{"picked_up", "live", "picked_up", "picked_up"} {
		if code := put(status); code != http.StatusOK {
			t.Fatalf("PUT status=%s returned %d, want 200", status, code)
		}
	}

	if store.createCalls != 1 {
		t.Errorf("milestones seeded %d times, want 1", store.createCalls)
	}
	if len(store.milestones) != 3 {
		t.Errorf("project carries %d milestones, want 3", len(store.milestones))
	}
}

func TestPutStatusRejectsUnknownStatus(t *testing.T) {
	store := &stubStatusStore{}
	router := chi.NewRouter()
	router.Put("/api/projects/{projectId}/status", NewPutProjectStatus(discardLogger(), store, &stubNotifier{}))

	req := httptest.NewRequest(http.MethodPut, "/api/projects/p1/status?status=archived", nil)
	req = req.WithContext(middleware.WithSession(req.Context(), auth.Session{UserId: "c1", Role: user.RoleClient}))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if store.createCalls != 0 {
		t.Error("milestones created despite invalid status")
	}
}
