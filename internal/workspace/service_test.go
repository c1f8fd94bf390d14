package workspace

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"adhok_platform/internal/lifecycle"
	"adhok_platform/internal/models/deliverable"
)

type stubStore struct {
	deliverables map[string]deliverable.Deliverable
	order        []string
	activity     []string
	closedEntry  *deliverable.TimeEntry
	boardOrder   []deliverable.Deliverable
	failWrites   error
}

func (s *stubStore) SaveDeliverable(_ context.Context, req deliverable.CreateRequest) (deliverable.Deliverable, error) {
	d := deliverable.Deliverable{
		Id:             "new",
		ProjectId:      req.ProjectId,
		Title:          req.Title,
		Status:         deliverable.StatusRecommended,
		EstimatedHours: req.EstimatedHours,
		TimeEntries:    []deliverable.TimeEntry{},
	}
	s.deliverables[d.Id] = d
	return d, nil
}

func (s *stubStore) ReadDeliverable(_ context.Context, id string) (deliverable.Deliverable, error) {
	d, ok := s.deliverables[id]
	if !ok {
		return deliverable.Deliverable{}, errors.New("record not found")
	}
	return d, nil
}

func (s *stubStore) ReadProjectDeliverables(_ context.Context, _ string) ([]deliverable.Deliverable, error) {
	out := make([]deliverable.Deliverable, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.deliverables[id])
	}
	return out, nil
}

func (s *stubStore) UpdateDeliverableStatus(_ context.Context, id string, status deliverable.Status) error {
	if s.failWrites != nil {
		return s.failWrites
	}
	d := s.deliverables[id]
	d.Status = status
	s.deliverables[id] = d
	return nil
}

func (s *stubStore) PersistTrackingState(_ context.Context, d deliverable.Deliverable) error {
	if s.failWrites != nil {
		return s.failWrites
	}
	s.deliverables[d.Id] = d
	return nil
}

func (s *stubStore) CloseSession(_ context.Context, d deliverable.Deliverable, entry deliverable.TimeEntry) error {
	if s.failWrites != nil {
		return s.failWrites
	}
	s.deliverables[d.Id] = d
	s.closedEntry = &entry
	return nil
}

func (s *stubStore) PersistBoardOrder(_ context.Context, ordered []deliverable.Deliverable) error {
	s.boardOrder = ordered
	return nil
}

func (s *stubStore) AttachFile(_ context.Context, _, name, url string) (deliverable.SubmittedFile, error) {
	return deliverable.SubmittedFile{Id: "f1", Name: name, Url: url}, nil
}

func (s *stubStore) AppendActivity(_ context.Context, _ string, entries []string) error {
	s.activity = append(s.activity, entries...)
	return nil
}

type stubNotifier struct {
	refreshes []string
}

func (n *stubNotifier) Refresh(_ context.Context, projectId, resource string) {
	n.refreshes = append(n.refreshes, projectId+"/"+resource)
}

func newFixture() (*Service, *stubStore, *stubNotifier) {
	store := &stubStore{
		deliverables: map[string]deliverable.Deliverable{
			"d1": {
				Id:             "d1",
				ProjectId:      "p1",
				Title:          "SEO Audit",
				Status:         deliverable.StatusScoped,
				EstimatedHours: 8,
				ActualHours:    5.5,
				TimeEntries:    []deliverable.TimeEntry{},
			},
			"d2": {
				Id:             "d2",
				ProjectId:      "p1",
				Title:          "Content Plan",
				Status:         deliverable.StatusRecommended,
				EstimatedHours: 4,
				IsTracking:     true,
				CurrentSession: &deliverable.Session{StartTime: time.Now().Add(-time.Hour)},
				TimeEntries:    []deliverable.TimeEntry{},
			},
		},
		order: []string{"d1", "d2"},
	}
	notifier := &stubNotifier{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, notifier, log), store, notifier
}

func TestChangeStatusPersistsAndNotifies(t *testing.T) {
	svc, store, notifier := newFixture()

	updated, err := svc.ChangeStatus(context.Background(), "d1", deliverable.StatusInProgress)
	if err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}
	if updated.Status != deliverable.StatusInProgress {
		t.Errorf("status = %s, want in_progress", updated.Status)
	}
	if store.deliverables["d1"].Status != deliverable.StatusInProgress {
		t.Error("status change not persisted")
	}
	if len(store.activity) != 1 || store.activity[0] != "SEO Audit moved to in_progress" {
		t.Errorf("unexpected activity: %v", store.activity)
	}
	if len(notifier.refreshes) != 1 || notifier.refreshes[0] != "p1/deliverables" {
		t.Errorf("unexpected refresh signals: %v", notifier.refreshes)
	}
}

func TestStartTrackingRejectsOpenSession(t *testing.T) {
	svc, store, notifier := newFixture()

	_, err := svc.StartTracking(context.Background(), "d2")
	if !errors.Is(err, lifecycle.ErrAlreadyTracking) {
		t.Fatalf("expected ErrAlreadyTracking, got %v", err)
	}
	if len(store.activity) != 0 || len(notifier.refreshes) != 0 {
		t.Error("failed precondition produced side effects")
	}
}

func TestStopTrackingClosesSession(t *testing.T) {
	svc, store, _ := newFixture()

	updated, err := svc.StopTracking(context.Background(), "d2", 3)
	if err != nil {
		t.Fatalf("StopTracking failed: %v", err)
	}
	if updated.IsTracking || updated.CurrentSession != nil {
		t.Error("session still open after stop")
	}
	if updated.ActualHours != 3 {
		t.Errorf("ActualHours = %g, want 3", updated.ActualHours)
	}
	if store.closedEntry == nil || store.closedEntry.HoursLogged != 3 {
		t.Errorf("closed entry not persisted: %+v", store.closedEntry)
	}
}

func TestStopTrackingWithoutSessionWritesNothing(t *testing.T) {
	svc, store, _ := newFixture()

	_, err := svc.StopTracking(context.Background(), "d1", 2)
	if !errors.Is(err, lifecycle.ErrNotTracking) {
		t.Fatalf("expected ErrNotTracking, got %v", err)
	}
	if store.closedEntry != nil {
		t.Error("entry persisted despite precondition failure")
	}
}

func TestMovePersistsNewOrder(t *testing.T) {
	svc, store, _ := newFixture()

	ordered, err := svc.Move(context.Background(), "p1", deliverable.MoveRequest{
		SourceIndex:       1,
		DestinationColumn: deliverable.StatusInProgress,
		DestinationIndex:  0,
	})
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if ordered[0].Id != "d2" || ordered[0].Status != deliverable.StatusInProgress {
		t.Errorf("unexpected order head: %+v", ordered[0])
	}
	if len(store.boardOrder) != 2 {
		t.Errorf("board order not persisted: %v", store.boardOrder)
	}
	if len(store.activity) != 1 || store.activity[0] != "Content Plan moved to in_progress" {
		t.Errorf("unexpected activity: %v", store.activity)
	}
}

func TestMoveRejectsBadSourceIndex(t *testing.T) {
	svc, _, _ := newFixture()

	if _, err := svc.Move(context.Background(), "p1", deliverable.MoveRequest{SourceIndex: 9}); !errors.Is(err, ErrBadMove) {
		t.Fatalf("expected ErrBadMove, got %v", err)
	}
}

func TestWriteFailurePassesThrough(t *testing.T) {
	svc, store, notifier := newFixture()
	boom := errors.New("connection reset")
	store.failWrites = boom

	_, err := svc.ChangeStatus(context.Background(), "d1", deliverable.StatusApproved)
	if !errors.Is(err, boom) {
		t.Fatalf("expected passthrough of storage error, got %v", err)
	}
	if len(notifier.refreshes) != 0 {
		t.Error("refresh emitted despite failed persist")
	}
}
