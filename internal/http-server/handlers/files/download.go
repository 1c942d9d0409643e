package files

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"ChatCRM/internal/database"
	"ChatCRM/internal/lib/api/response"
	"ChatCRM/internal/lib/fileurl"
	"ChatCRM/internal/lib/sl"
)

type Core interface {
	// MediaPath maps a stored file identifier to an absolute path inside
	// the media directory. Traversal attempts come back as ErrNotFound.
	MediaPath(fileID string) (string, error)
	MediaURLSecret() string
}

// Download serves GET /api/v1/files/{fileId}. The route sits outside the
// bearer-auth group: possession of a valid unexpired signature is the
// credential, so <img> tags can load attachments directly.
func Download(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.files")

		logger := log.With(mod, slog.String("remote", r.RemoteAddr))

		fileID := chi.URLParam(r, "fileId")
		expires := r.URL.Query().Get("expires")
		sig := r.URL.Query().Get("sig")

		if !fileurl.Verify(fileID, expires, sig, handler.MediaURLSecret()) {
			logger.Warn("rejected file request", slog.String("file", fileID))
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("Invalid or expired link"))
			return
		}

		path, err := handler.MediaPath(fileID)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				logger.Error("failed to resolve file", slog.String("file", fileID), sl.Err(err))
			}
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, response.Error("File not found"))
			return
		}

		http.ServeFile(w, r, path)
	}
}
