package bids

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
	"adhok_platform/internal/models/bids"
	"adhok_platform/internal/models/project"
	"adhok_platform/internal/ranking"
	"adhok_platform/internal/storage/postgres"
)

var validate = validator.New()

type BidSaver interface {
	SaveBid(ctx context.Context, professionalId string, req bids.BidRequest) (bids.Bid, error)
}

type ProjectBidsReader interface {
	ReadProject(ctx context.Context, projectId string) (project.ProjectResponse, error)
	ReadProjectBids(ctx context.Context, projectId string) ([]bids.Bid, error)
}

type MyBidsReader interface {
	ReadMyBids(ctx context.Context, professionalId string, limit, offset int) ([]bids.Bid, error)
}

func NewPostBid(log *slog.Logger, bidSaver BidSaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.SessionFromContext(r.Context())

		var req bids.BidRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError(err.Error()))
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("Invalid bid fields"))
			return
		}

		b, err := bidSaver.SaveBid(r.Context(), sess.UserId, req)
		if err != nil {
			log.Error("failed to save bid", slog.String("error", err.Error()))
			renderStorageError(w, r, err)
			return
		}

		render.Status(r, 201)
		render.JSON(w, r, b)
	}
}

// NewGetProjectBids lists a project's bids split into those meeting the
// project's minimum badge and those below it, submission order kept
// within each group.
func NewGetProjectBids(log *slog.Logger, projectBidsReader ProjectBidsReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projectId := chi.URLParam(r, "projectId")

		p, err := projectBidsReader.ReadProject(r.Context(), projectId)
		if err != nil {
			log.Error("failed to read project", slog.String("error", err.Error()))
			renderStorageError(w, r, err)
			return
		}

		all, err := projectBidsReader.ReadProjectBids(r.Context(), projectId)
		if err != nil {
			log.Error("failed to read bids", slog.String("error", err.Error()))
			renderStorageError(w, r, err)
			return
		}

		qualifying, underqualified := ranking.Partition(all, p.MinimumBadge)
		render.JSON(w, r, bids.PartitionResponse{
			Qualifying:     qualifying,
			Underqualified: underqualified,
		})
	}
}

func NewGetMyBids(log *slog.Logger, myBidsReader MyBidsReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.SessionFromContext(r.Context())

		limit, offset := 20, 0
		if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
			limit = v
		}
		if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
			offset = v
		}

		result, err := myBidsReader.ReadMyBids(r.Context(), sess.UserId, limit, offset)
		if err != nil {
			log.Error("failed to list own bids", slog.String("error", err.Error()))
			renderStorageError(w, r, err)
			return
		}

		render.JSON(w, r, result)
	}
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
