package upload

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"ChatCRM/entity"
	"ChatCRM/internal/database"
	"ChatCRM/internal/lib/api/cont"
	"ChatCRM/internal/lib/api/response"
	"ChatCRM/internal/lib/sl"
)

var ErrFileType = errors.New("file type not allowed")

type Core interface {
	// SaveUpload stores the file, persists the attachment message and
	// returns the payload the client relays over its socket with
	// fromUpload set.
	SaveUpload(ctx context.Context, sender *entity.User, roomID, fileName, contentType string, size int64, file io.Reader) (*entity.MessagePayload, error)
	MaxFileSize() int64
}

func Upload(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.upload")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		user := cont.GetUser(r.Context())
		if user == nil {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("Unauthorized"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, handler.MaxFileSize())
		if err := r.ParseMultipartForm(handler.MaxFileSize()); err != nil {
			logger.Warn("upload rejected", sl.Err(err))
			render.Status(r, http.StatusRequestEntityTooLarge)
			render.JSON(w, r, response.Error("File too large"))
			return
		}

		roomID := r.FormValue("roomId")
		if roomID == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("roomId is required"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("file is required"))
			return
		}
		defer file.Close()

		contentType := header.Header.Get("Content-Type")
		payload, err := handler.SaveUpload(r.Context(), user, roomID, header.Filename, contentType, header.Size, file)
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("Room not found"))
			case errors.Is(err, repository.ErrForbidden):
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("Not a member of this room"))
			case errors.Is(err, ErrFileType):
				render.Status(r, http.StatusUnsupportedMediaType)
				render.JSON(w, r, response.Error("File type not allowed"))
			default:
				logger.Error("failed to store upload",
					slog.String("room", roomID),
					slog.String("file", header.Filename),
					sl.Err(err),
				)
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("Failed to store upload"))
			}
			return
		}

		logger.Info("file uploaded",
			slog.String("room", roomID),
			slog.String("user", user.UserID),
			slog.String("file", header.Filename),
			slog.Int64("size", header.Size),
		)
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(payload))
	}
}
