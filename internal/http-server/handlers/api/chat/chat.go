package chat

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
	"adhok_platform/internal/models/chat"
	"adhok_platform/internal/storage/postgres"
)

var validate = validator.New()

type MessageSaver interface {
	SaveMessage(ctx context.Context, projectId, senderId, body string) (chat.Message, error)
}

type MessagesReader interface {
	ReadMessages(ctx context.Context, projectId string, limit, offset int) ([]chat.Message, error)
}

// Notifier tells connected workspace clients to re-fetch.
type Notifier interface {
	Refresh(ctx context.Context, projectId, resource string)
}

func NewPostMessage(log *slog.Logger, messageSaver MessageSaver, notifier Notifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.SessionFromContext(r.Context())
		projectId := chi.URLParam(r, "projectId")

		var req chat.MessageRequest
		if err := render.DecodeJSON(r.Body, &req); err != nil {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError(err.Error()))
			return
		}

		if err := validate.Struct(req); err != nil {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("Message body is required"))
			return
		}

		m, err := messageSaver.SaveMessage(r.Context(), projectId, sess.UserId, req.Body)
		if err != nil {
			log.Error("failed to save message", slog.String("error", err.Error()))
			if serrors.Is(err, postgres.ErrNotFound) {
				render.Status(r, 404)
			} else {
				render.Status(r, 500)
			}
			render.JSON(w, r, errors.NewHttpError(err.Error()))
			return
		}

		notifier.Refresh(r.Context(), projectId, "chat")
		render.Status(r, 201)
		render.JSON(w, r, m)
	}
}

func NewGetMessages(log *slog.Logger, messagesReader MessagesReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := 50, 0
		if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
			limit = v
		}
		if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
			offset = v
		}

		result, err := messagesReader.ReadMessages(r.Context(), chi.URLParam(r, "projectId"), limit, offset)
		if err != nil {
			log.Error("failed to read messages", slog.String("error", err.Error()))
			render.Status(r, 500)
			render.JSON(w, r, errors.NewHttpError(err.Error()))
			return
		}

		render.JSON(w, r, result)
	}
}
