package projects

import (
	"context"
	serrors "errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"adhok_platform/internal/http-server/middleware"
	"adhok_platform/internal/lib/errors"
	"adhok_platform/internal/models/project"
	"adhok_platform/internal/models/user"
	"adhok_platform/internal/ranking"
	"adhok_platform/internal/storage/postgres"
)

var validate = validator.New()

type ProjectSaver interface {
	SaveProject(ctx context.Context, clientId string, req project.ProjectRequest) (project.ProjectResponse, error)
}

type ProjectsReader interface {
	ReadProjects(ctx context.Context, status, search, orderBy string, limit, offset int) ([]project.ProjectResponse, error)
}

type MyProjectsReader interface {
	ReadMyProjects(ctx context.Context, userId string, limit, offset int) ([]project.ProjectResponse, error)
}

type ProjectReader interface {
	ReadProject(ctx context.Context, projectId string) (project.ProjectResponse, error)
}

type StatusUpdater interface {
	UpdateProjectStatus(ctx context.Context, projectId string, status project.Status, callerId string, isAdmin bool) (project.ProjectResponse, error)
	ReadMilestones(ctx context.Context, projectId string) ([]project.Milestone, error)
	CreateMilestones(ctx context.Context, projectId string, budget float64) ([]project.Milestone, error)
}

type WinnerSelector interface {
	ReadProjectBid(ctx context.Context, bidId string) (professionalId string, projectId string, err error)
	SelectWinner(ctx context.Context, projectId, professionalId string) (project.ProjectResponse, error)
}

type MilestonesReader interface {
	ReadMilestones(ctx context.Context, projectId string) ([]project.Milestone, error)
}

type MilestonePayer interface {
	PayMilestone(ctx context.Context, milestoneId string) (project.Milestone, error)
}

type ActivityReader interface {
	ReadActivity(ctx context.Context, projectId string, limit, offset int) ([]string, error)
}

// Notifier tells connected workspace clients to re-fetch. Delivery is
// best effort and never fails the request.
type Notifier interface {
	Refresh(ctx context.Context, projectId, resource string)
}

func NewPostProject(log *slog.Logger, projectSaver ProjectSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.SessionFromContext(r.Context())

		var req project.ProjectRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError(err.Error()))
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("Invalid project fields"))
			return
		}
		if req.MinimumBadge != "" && !ranking.ValidBadge(req.MinimumBadge) {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("Unknown experience badge"))
			return
		}

		p, err := projectSaver.SaveProject(r.Context(), sess.UserId, req)
		if err != nil {
			log.Error("failed to save project", slog.String("error", err.Error()))
			renderStorageError(w, r, err)
			return
		}

		render.Status(r, 201)
		render.JSON(w, r, p)
	}
}

func NewGetProjects(log *slog.Logger, projectsReader ProjectsReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		if status != "" && !project.Status(status).Valid() {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("Unknown project status"))
			return
		}

		limit, offset := paginate(r)
		result, err := projectsReader.ReadProjects(r.Context(), status,
			r.URL.Query().Get("search"), r.URL.Query().Get("orderBy"), limit, offset)
		if err != nil {
			log.Error("failed to list projects", slog.String("error", err.Error()))
			renderStorageError(w, r, err)
			return
		}

		render.JSON(w, r, result)
	}
}

func NewGetMyProjects(log *slog.Logger, myProjectsReader MyProjectsReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.SessionFromContext(r.Context())

		limit, offset := paginate(r)
		result, err := myProjectsReader.ReadMyProjects(r.Context(), sess.UserId, limit, offset)
		if err != nil {
			log.Error("failed to list own projects", slog.String("error", err.Error()))
			renderStorageError(w, r, err)
			return
		}

		render.JSON(w, r, result)
	}
}

func NewGetProject(log *slog.Logger, projectReader ProjectReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := projectReader.ReadProject(r.Context(), chi.URLParam(r, "projectId"))
		if err != nil {
			log.Error("failed to read project", slog.String("error", err.Error()))
			renderStorageError(w, r, err)
			return
		}

		render.JSON(w, r, p)
	}
}

// NewPutProjectStatus moves a project along draft, live, picked_up,
// completed. Picking a project up seeds its three payment milestones.
func NewPutProjectStatus(log *slog.Logger, statusUpdater StatusUpdater, notifier Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.SessionFromContext(r.Context())
		projectId := chi.URLParam(r, "projectId")

		status := project.Status(r.URL.Query().Get("status"))
		if !status.Valid() {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("Unknown project status"))
			return
		}

		p, err := statusUpdater.UpdateProjectStatus(r.Context(), projectId, status, sess.UserId, sess.Role == user.RoleAdmin)
		if err != nil {
			log.Error("failed to update project status", slog.String("error", err.Error()))
			renderStorageError(w, r, err)
			return
		}

		// Milestones seed once. Transitions are unconditional, so a
		// bounced or repeated pick-up must not add payment obligations.
		if status == project.StatusPickedUp {
			existing, err := statusUpdater.ReadMilestones(r.Context(), projectId)
			if err != nil {
				log.Error("failed to read milestones", slog.String("error", err.Error()))
				renderStorageError(w, r, err)
				return
			}
			if len(existing) == 0 {
				if _, err := statusUpdater.CreateMilestones(r.Context(), projectId, p.Budget); err != nil {
					log.Error("failed to create milestones", slog.String("error", err.Error()))
					renderStorageError(w, r, err)
					return
				}
			}
		}

		notifier.Refresh(r.Context(), projectId, "project")
		render.JSON(w, r, p)
	}
}

// NewSelectWinner records the chosen bid's owner on the project. The
// pick is deliberate and final, so qualification is not re-checked.
func NewSelectWinner(log *slog.Logger, winnerSelector WinnerSelector, notifier Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectId := chi.URLParam(r, "projectId")
		bidId := r.URL.Query().Get("bidId")
		if bidId == "" {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("bidId query parameter is required"))
			return
		}

		professionalId, bidProjectId, err := winnerSelector.ReadProjectBid(r.Context(), bidId)
		if err != nil {
			log.Error("failed to read bid", slog.String("error", err.Error()))
			renderStorageError(w, r, err)
			return
		}
		if bidProjectId != projectId {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("Bid belongs to a different project"))
			return
		}

		p, err := winnerSelector.SelectWinner(r.Context(), projectId, professionalId)
		if err != nil {
			log.Error("failed to select winner", slog.String("error", err.Error()))
			renderStorageError(w, r, err)
			return
		}

		notifier.Refresh(r.Context(), projectId, "project")
		render.JSON(w, r, p)
	}
}

func NewGetMilestones(log *slog.Logger, milestonesReader MilestonesReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := milestonesReader.ReadMilestones(r.Context(), chi.URLParam(r, "projectId"))
		if err != nil {
			log.Error("failed to read milestones", slog.String("error", err.Error()))
			renderStorageError(w, r, err)
			return
		}

		render.JSON(w, r, result)
	}
}

func NewPayMilestone(log *slog.Logger, milestonePayer MilestonePayer, notifier Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := milestonePayer.PayMilestone(r.Context(), chi.URLParam(r, "milestoneId"))
		if err != nil {
			log.Error("failed to pay milestone", slog.String("error", err.Error()))
			renderStorageError(w, r, err)
			return
		}

		notifier.Refresh(r.Context(), m.ProjectId, "milestones")
		render.JSON(w, r, m)
	}
}

func NewGetActivity(log *slog.Logger, activityReader ActivityReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := paginate(r)
		result, err := activityReader.ReadActivity(r.Context(), chi.URLParam(r, "projectId"), limit, offset)
		if err != nil {
			log.Error("failed to read activity", slog.String("error", err.Error()))
			renderStorageError(w, r, err)
			return
		}

		render.JSON(w, r, result)
	}
}

func paginate(r *http.Request) (limit, offset int) {
	limit, offset = 20, 0
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}

func renderStorageError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case serrors.Is(err, postgres.ErrNotFound):
		render.Status(r, 404)
	case serrors.Is(err, postgres.ErrForbidden):
		render.Status(r, 403)
	case serrors.Is(err, postgres.ErrBadRequest):
		render.Status(r, 400)
	default:
		render.Status(r, 500)
	}
	render.JSON(w, r, errors.NewHttpError(err.Error()))
}
