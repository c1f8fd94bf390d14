package deliverables

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"adhok_platform/internal/lifecycle"
	"adhok_platform/internal/models/deliverable"
	"adhok_platform/internal/storage/postgres"
)

type stubBoard struct {
	record deliverable.Deliverable
	err    error
	calls  int
}

func (s *stubBoard) ChangeStatus(_ context.Context, _ string, _ deliverable.Status) (deliverable.Deliverable, error) {
	s.calls++
	return s.record, s.err
}

func (s *stubBoard) StartTracking(_ context.Context, _ string) (deliverable.Deliverable, error) {
	s.calls++
	return s.record, s.err
}

func (s *stubBoard) StopTracking(_ context.Context, _ string, _ float64) (deliverable.Deliverable, error) {
	s.calls++
	return s.record, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPutStatusRejectsUnknownColumn(t *testing.T) {
	board := &stubBoard{}
	router := chi.NewRouter()
	router.Put("/api/deliverables/{deliverableId}/status", NewPutDeliverableStatus(discardLogger(), board))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/deliverables/d1/status?status=bogus", nil))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if board.calls != 0 {
		t.Error("service called despite invalid column")
	}
}

func TestPutStatusMapsNotFound(t *testing.T) {
	board := &stubBoard{err: postgres.ErrNotFound}
	router := chi.NewRouter()
	router.Put("/api/deliverables/{deliverableId}/status", NewPutDeliverableStatus(discardLogger(), board))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/deliverables/d1/status?status=approved", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestStartTrackingConflict(t *testing.T) {
	board := &stubBoard{err: lifecycle.ErrAlreadyTracking}
	router := chi.NewRouter()
	router.Post("/api/deliverables/{deliverableId}/track/start", NewStartTracking(discardLogger(), board))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/deliverables/d1/track/start", nil))

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestStopTrackingRejectsNonPositiveHours(t *testing.T) {
	board := &stubBoard{}
	router := chi.NewRouter()
	router.Post("/api/deliverables/{deliverableId}/track/stop", NewStopTracking(discardLogger(), board))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/api/deliverables/d1/track/stop", strings.NewReader(`{"hoursLogged": 0}`)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if board.calls != 0 {
		t.Error("service called despite invalid hours")
	}
}
