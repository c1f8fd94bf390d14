package bids

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"adhok_platform/internal/models/bids"
	"adhok_platform/internal/models/project"
	"adhok_platform/internal/storage/postgres"
)

type stubReader struct {
	project project.ProjectResponse
	bids    []bids.Bid
	err     error
}

func (s *stubReader) ReadProject(_ context.Context, _ string) (project.ProjectResponse, error) {
	return s.project, s.err
}

func (s *stubReader) ReadProjectBids(_ context.Context, _ string) ([]bids.Bid, error) {
	return s.bids, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGetProjectBidsPartition(t *testing.T) {
	reader := &stubReader{
		project: project.ProjectResponse{Id: "p1", MinimumBadge: "Pro Talent"},
		bids: []bids.Bid{
			{Id: "b1", Badge: "Specialist"},
			{Id: "b2", Badge: "Expert Talent"},
			{Id: "b3", Badge: ""},
		},
	}

	router := chi.NewRouter()
	router.Get("/api/projects/{projectId}/bids", NewGetProjectBids(discardLogger(), reader))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects/p1/bids", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp bids.PartitionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Qualifying) != 1 || resp.Qualifying[0].Id != "b2" {
		t.Errorf("unexpected qualifying bids: %+v", resp.Qualifying)
	}
	if len(resp.Underqualified) != 2 || resp.Underqualified[0].Id != "b1" || resp.Underqualified[1].Id != "b3" {
		t.Errorf("underqualified bids out of order: %+v", resp.Underqualified)
	}
}

func TestGetProjectBidsUnknownProject(t *testing.T) {
	reader := &stubReader{err: postgres.ErrNotFound}

	router := chi.NewRouter()
	router.Get("/api/projects/{projectId}/bids", NewGetProjectBids(discardLogger(), reader))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/projects/missing/bids", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
