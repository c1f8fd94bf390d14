package deliverables

import (
	"context"
	serrors "errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"adhok_platform/internal/lib/errors"
	"adhok_platform/internal/lifecycle"
	"adhok_platform/internal/models/deliverable"
	"adhok_platform/internal/storage/postgres"
	"adhok_platform/internal/workspace"
)

var validate = validator.New()

type Creator interface {
	CreateDeliverable(ctx context.Context, req deliverable.CreateRequest) (deliverable.Deliverable, error)
}

type BoardReader interface {
	Board(ctx context.Context, projectId string) (map[deliverable.Status][]deliverable.Deliverable, error)
}

type StatusChanger interface {
	ChangeStatus(ctx context.Context, deliverableId string, status deliverable.Status) (deliverable.Deliverable, error)
}

type Mover interface {
	Move(ctx context.Context, projectId string, req deliverable.MoveRequest) ([]deliverable.Deliverable, error)
}

type Tracker interface {
	StartTracking(ctx context.Context, deliverableId string) (deliverable.Deliverable, error)
	StopTracking(ctx context.Context, deliverableId string, hoursLogged float64) (deliverable.Deliverable, error)
}

type FileAttacher interface {
	AttachFile(ctx context.Context, deliverableId, name, url string) (deliverable.SubmittedFile, error)
}

func NewPostDeliverable(log *slog.Logger, creator Creator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req deliverable.CreateRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError(err.Error()))
			return
		}
		req.ProjectId = chi.URLParam(r, "projectId")

		if err := validate.Struct(req); err != nil {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("Invalid deliverable fields"))
			return
		}

		d, err := creator.CreateDeliverable(r.Context(), req)
		if err != nil {
			log.Error("failed to create deliverable", slog.String("error", err.Error()))
			renderWorkspaceError(w, r, err)
			return
		}

		render.Status(r, 201)
		render.JSON(w, r, d)
	}
}

// NewGetBoard returns the project's deliverables grouped by status
// column. Every column is present, empty ones included.
func NewGetBoard(log *slog.Logger, boardReader BoardReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		board, err := boardReader.Board(r.Context(), chi.URLParam(r, "projectId"))
		if err != nil {
			log.Error("failed to read board", slog.String("error", err.Error()))
			renderWorkspaceError(w, r, err)
			return
		}

		render.JSON(w, r, board)
	}
}

func NewPutDeliverableStatus(log *slog.Logger, statusChanger StatusChanger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := deliverable.Status(r.URL.Query().Get("status"))
		if !status.Valid() {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("Unknown deliverable status"))
			return
		}

		d, err := statusChanger.ChangeStatus(r.Context(), chi.URLParam(r, "deliverableId"), status)
		if err != nil {
			log.Error("failed to change status", slog.String("error", err.Error()))
			renderWorkspaceError(w, r, err)
			return
		}

		render.JSON(w, r, d)
	}
}

func NewMoveDeliverable(log *slog.Logger, mover Mover) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req deliverable.MoveRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError(err.Error()))
			return
		}
		if !req.DestinationColumn.Valid() {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("Unknown destination column"))
			return
		}

		ordered, err := mover.Move(r.Context(), chi.URLParam(r, "projectId"), req)
		if err != nil {
			log.Error("failed to move deliverable", slog.String("error", err.Error()))
			renderWorkspaceError(w, r, err)
			return
		}

		render.JSON(w, r, ordered)
	}
}

func NewStartTracking(log *slog.Logger, tracker Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := tracker.StartTracking(r.Context(), chi.URLParam(r, "deliverableId"))
		if err != nil {
			log.Error("failed to start tracking", slog.String("error", err.Error()))
			renderWorkspaceError(w, r, err)
			return
		}

		render.JSON(w, r, d)
	}
}

func NewStopTracking(log *slog.Logger, tracker Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req deliverable.StopTrackingRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError(err.Error()))
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("Logged hours must be positive"))
			return
		}

		d, err := tracker.StopTracking(r.Context(), chi.URLParam(r, "deliverableId"), req.HoursLogged)
		if err != nil {
			log.Error("failed to stop tracking", slog.String("error", err.Error()))
			renderWorkspaceError(w, r, err)
			return
		}

		render.JSON(w, r, d)
	}
}

func NewAttachFile(log *slog.Logger, fileAttacher FileAttacher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req deliverable.AttachFileRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError(err.Error()))
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("File name and url are required"))
			return
		}

		f, err := fileAttacher.AttachFile(r.Context(), chi.URLParam(r, "deliverableId"), req.Name, req.Url)
		if err != nil {
			log.Error("failed to attach file", slog.String("error", err.Error()))
			renderWorkspaceError(w, r, err)
			return
		}

		render.Status(r, 201)
		render.JSON(w, r, f)
	}
}

// Progress is derived, never stored, so it is computed per request.
type progressResponse struct {
	DeliverableId  string  `json:"deliverableId"`
	RemainingHours float64 `json:"remainingHours"`
	Tier           string  `json:"tier"`
}

type DeliverableReader interface {
	ReadDeliverable(ctx context.Context, deliverableId string) (deliverable.Deliverable, error)
}

func NewGetProgress(log *slog.Logger, deliverableReader DeliverableReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := deliverableReader.ReadDeliverable(r.Context(), chi.URLParam(r, "deliverableId"))
		if err != nil {
			log.Error("failed to read deliverable", slog.String("error", err.Error()))
			renderWorkspaceError(w, r, err)
			return
		}

		render.JSON(w, r, progressResponse{
			DeliverableId:  d.Id,
			RemainingHours: lifecycle.RemainingHours(d),
			Tier:           string(lifecycle.Progress(d)),
		})
	}
}

func renderWorkspaceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case serrors.Is(err, postgres.ErrNotFound), serrors.Is(err, lifecycle.ErrNotFound):
		render.Status(r, 404)
	case serrors.Is(err, lifecycle.ErrAlreadyTracking), serrors.Is(err, lifecycle.ErrNotTracking):
		render.Status(r, 409)
	case serrors.Is(err, workspace.ErrBadMove), serrors.Is(err, postgres.ErrBadRequest):
		render.Status(r, 400)
	default:
		render.Status(r, 500)
	}
	render.JSON(w, r, errors.NewHttpError(err.Error()))
}
