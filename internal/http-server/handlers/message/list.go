package message

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"ChatCRM/internal/database"
	"ChatCRM/internal/lib/api/cont"
	"ChatCRM/internal/lib/api/response"
	"ChatCRM/internal/lib/sl"
)

const defaultPageSize = 50

func List(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.message")

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

		roomID := chi.URLParam(r, "roomId")
		limit, offset := pagination(r)

		messages, err := handler.ListMessages(r.Context(), user, roomID, limit, offset)
		if err != nil {
			status, msg := mapError(err)
			if status == http.StatusInternalServerError {
				logger.Error("failed to list messages", slog.String("room", roomID), sl.Err(err))
			}
			render.Status(r, status)
			render.JSON(w, r, response.Error(msg))
			return
		}

		logger.Debug("messages listed", slog.String("room", roomID), slog.Int("count", len(messages)))
		render.JSON(w, r, response.Ok(messages))
	}
}

func pagination(r *http.Request) (limit, offset int) {
	limit = defaultPageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "Room not found"
	case errors.Is(err, repository.ErrForbidden):
		return http.StatusForbidden, "Not a member of this room"
	default:
		return http.StatusInternalServerError, "Internal error"
	}
}
