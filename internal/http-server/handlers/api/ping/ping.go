package ping

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
)

func New(log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.api.ping.New"

		log.Debug("ping request", slog.String("op", op))

		render.PlainText(w, r, "ok")
	}
}
