package files

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/go-chi/render"
	"github.com/google/uuid"

	"adhok_platform/internal/http-server/middleware"
	"adhok_platform/internal/lib/errors"
	"adhok_platform/internal/models/user"
)

// Uploads are buffered in memory before the PutObject call, so the
// multipart form is capped well below the default server limits.
const maxUploadBytes = 25 << 20

var kinds = map[string]bool{
	"resume":      true,
	"brief":       true,
	"deliverable": true,
}

type Uploader interface {
	Upload(file []byte, key, contentType string) (string, error)
}

type ResumeUpdater interface {
	UpdateResumeUrl(ctx context.Context, userId, url string) error
}

type uploadResponse struct {
	Url  string `json:"url"`
	Name string `json:"name"`
}

// NewUpload accepts a multipart form with a "file" part and a "kind"
// field (resume, brief or deliverable). A resume upload also lands on
// the caller's talent profile.
func NewUpload(log *slog.Logger, uploader Uploader, resumeUpdater ResumeUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _ := middleware.SessionFromContext(r.Context())

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("Invalid multipart form"))
			return
		}

		kind := r.FormValue("kind")
		if !kinds[kind] {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("Unknown file kind"))
			return
		}
		if kind == "resume" && sess.Role != user.RoleTalent {
			render.Status(r, 403)
			render.JSON(w, r, errors.NewHttpError("Only talent accounts carry a resume"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			render.Status(r, 400)
			render.JSON(w, r, errors.NewHttpError("Missing file part"))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
		if err != nil {
			log.Error("failed to read upload", slog.String("error", err.Error()))
			render.Status(r, 500)
			render.JSON(w, r, errors.NewHttpError("Upload failed"))
			return
		}
		if len(data) > maxUploadBytes {
			render.Status(r, 413)
			render.JSON(w, r, errors.NewHttpError("File too large"))
			return
		}

		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		key := kind + "/" + uuid.New().String() + filepath.Ext(header.Filename)
		url, err := uploader.Upload(data, key, contentType)
		if err != nil {
			log.Error("failed to upload file",
				slog.String("key", key),
				slog.String("error", err.Error()))
			render.Status(r, 500)
			render.JSON(w, r, errors.NewHttpError("Upload failed"))
			return
		}

		if kind == "resume" {
			if err := resumeUpdater.UpdateResumeUrl(r.Context(), sess.UserId, url); err != nil {
				log.Error("failed to record resume url", slog.String("error", err.Error()))
				render.Status(r, 500)
				render.JSON(w, r, errors.NewHttpError("Upload failed"))
				return
			}
		}

		render.Status(r, 201)
		render.JSON(w, r, uploadResponse{Url: url, Name: header.Filename})
	}
}
