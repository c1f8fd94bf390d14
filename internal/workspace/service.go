package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"adhok_platform/internal/lifecycle"
	"adhok_platform/internal/models/deliverable"
)

var ErrBadMove = errors.New("move indices out of range")

// Store is the persistence collaborator. Its failures pass through to
// the caller unchanged; the service never retries.
type Store interface {
	SaveDeliverable(ctx context.Context, req deliverable.CreateRequest) (deliverable.Deliverable, error)
	ReadDeliverable(ctx context.Context, deliverableId string) (deliverable.Deliverable, error)
	ReadProjectDeliverables(ctx context.Context, projectId string) ([]deliverable.Deliverable, error)
	UpdateDeliverableStatus(ctx context.Context, deliverableId string, status deliverable.Status) error
	PersistTrackingState(ctx context.Context, d deliverable.Deliverable) error
	CloseSession(ctx context.Context, d deliverable.Deliverable, entry deliverable.TimeEntry) error
	PersistBoardOrder(ctx context.Context, ordered []deliverable.Deliverable) error
	AttachFile(ctx context.Context, deliverableId, name, url string) (deliverable.SubmittedFile, error)
	AppendActivity(ctx context.Context, projectId string, entries []string) error
}

// Notifier signals workspace clients to re-fetch after a mutation.
type Notifier interface {
	Refresh(ctx context.Context, projectId, resource string)
}

// Service runs deliverable operations: each mutation loads fresh state,
// applies the lifecycle engine, persists the outcome and emits a
// refresh signal. Engine preconditions fail before anything is written.
type Service struct {
	store    Store
	notifier Notifier
	log      *slog.Logger
}

func New(store Store, notifier Notifier, log *slog.Logger) *Service {
	return &Service{store: store, notifier: notifier, log: log}
}

func (s *Service) Board(ctx context.Context, projectId string) (map[deliverable.Status][]deliverable.Deliverable, error) {
	list, err := s.store.ReadProjectDeliverables(ctx, projectId)
	if err != nil {
		return nil, err
	}
	return lifecycle.GroupByStatus(list), nil
}

func (s *Service) CreateDeliverable(ctx context.Context, req deliverable.CreateRequest) (deliverable.Deliverable, error) {
	d, err := s.store.SaveDeliverable(ctx, req)
	if err != nil {
		return deliverable.Deliverable{}, err
	}

	s.appendActivity(ctx, d.ProjectId, []string{fmt.Sprintf("Deliverable added: %s", d.Title)})
	s.notifier.Refresh(ctx, d.ProjectId, "deliverables")
	return d, nil
}

func (s *Service) ChangeStatus(ctx context.Context, deliverableId string, status deliverable.Status) (deliverable.Deliverable, error) {
	d, err := s.store.ReadDeliverable(ctx, deliverableId)
	if err != nil {
		return deliverable.Deliverable{}, err
	}

	eng := lifecycle.New([]deliverable.Deliverable{d})
	if err := eng.ChangeStatus(deliverableId, status); err != nil {
		return deliverable.Deliverable{}, err
	}
	updated, _ := eng.Deliverable(deliverableId)

	if err := s.store.UpdateDeliverableStatus(ctx, deliverableId, updated.Status); err != nil {
		return deliverable.Deliverable{}, err
	}

	s.appendActivity(ctx, updated.ProjectId, eng.Activity())
	s.notifier.Refresh(ctx, updated.ProjectId, "deliverables")
	return updated, nil
}

func (s *Service) StartTracking(ctx context.Context, deliverableId string) (deliverable.Deliverable, error) {
	d, err := s.store.ReadDeliverable(ctx, deliverableId)
	if err != nil {
		return deliverable.Deliverable{}, err
	}

	eng := lifecycle.New([]deliverable.Deliverable{d})
	if err := eng.StartTracking(deliverableId); err != nil {
		return deliverable.Deliverable{}, err
	}
	updated, _ := eng.Deliverable(deliverableId)

	if err := s.store.PersistTrackingState(ctx, updated); err != nil {
		return deliverable.Deliverable{}, err
	}

	s.appendActivity(ctx, updated.ProjectId, eng.Activity())
	s.notifier.Refresh(ctx, updated.ProjectId, "deliverables")
	return updated, nil
}

func (s *Service) StopTracking(ctx context.Context, deliverableId string, hoursLogged float64) (deliverable.Deliverable, error) {
	d, err := s.store.ReadDeliverable(ctx, deliverableId)
	if err != nil {
		return deliverable.Deliverable{}, err
	}

	eng := lifecycle.New([]deliverable.Deliverable{d})
	if err := eng.StopTracking(deliverableId, hoursLogged); err != nil {
		return deliverable.Deliverable{}, err
	}
	updated, _ := eng.Deliverable(deliverableId)

	entry := updated.TimeEntries[len(updated.TimeEntries)-1]
	if err := s.store.CloseSession(ctx, updated, entry); err != nil {
		return deliverable.Deliverable{}, err
	}

	s.appendActivity(ctx, updated.ProjectId, eng.Activity())
	s.notifier.Refresh(ctx, updated.ProjectId, "deliverables")
	return updated, nil
}

// Move reorders the board: the deliverable at sourceIndex is restamped
// with the destination column and reinserted at the destination index.
func (s *Service) Move(ctx context.Context, projectId string, req deliverable.MoveRequest) ([]deliverable.Deliverable, error) {
	list, err := s.store.ReadProjectDeliverables(ctx, projectId)
	if err != nil {
		return nil, err
	}
	if req.SourceIndex < 0 || req.SourceIndex >= len(list) {
		return nil, ErrBadMove
	}

	moved := list[req.SourceIndex]
	ordered := lifecycle.Move(list, req.SourceIndex, req.DestinationColumn, req.DestinationIndex)

	if err := s.store.PersistBoardOrder(ctx, ordered); err != nil {
		return nil, err
	}

	s.appendActivity(ctx, projectId, []string{fmt.Sprintf("%s moved to %s", moved.Title, req.DestinationColumn)})
	s.notifier.Refresh(ctx, projectId, "deliverables")
	return ordered, nil
}

func (s *Service) AttachFile(ctx context.Context, deliverableId, name, url string) (deliverable.SubmittedFile, error) {
	d, err := s.store.ReadDeliverable(ctx, deliverableId)
	if err != nil {
		return deliverable.SubmittedFile{}, err
	}

	f, err := s.store.AttachFile(ctx, deliverableId, name, url)
	if err != nil {
		return deliverable.SubmittedFile{}, err
	}

	s.appendActivity(ctx, d.ProjectId, []string{fmt.Sprintf("File submitted for %s: %s", d.Title, name)})
	s.notifier.Refresh(ctx, d.ProjectId, "deliverables")
	return f, nil
}

// appendActivity is best effort: the primary mutation already landed,
// so a failed audit write is logged, not surfaced.
func (s *Service) appendActivity(ctx context.Context, projectId string, entries []string) {
	if err := s.store.AppendActivity(ctx, projectId, entries); err != nil {
		s.log.Error("failed to append activity",
			slog.String("project_id", projectId),
			slog.String("error", err.Error()))
	}
}
