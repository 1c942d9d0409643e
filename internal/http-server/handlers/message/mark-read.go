package message

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"ChatCRM/internal/lib/api/cont"
	"ChatCRM/internal/lib/api/response"
	"ChatCRM/internal/lib/sl"
)

func MarkRead(log *slog.Logger, handler Core) http.HandlerFunc {
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
		readAt, err := handler.MarkRead(r.Context(), user, roomID)
		if err != nil {
			status, msg := mapError(err)
			if status == http.StatusInternalServerError {
				logger.Error("failed to mark room read", slog.String("room", roomID), sl.Err(err))
			}
			render.Status(r, status)
			render.JSON(w, r, response.Error(msg))
			return
		}

		logger.Debug("room marked read", slog.String("room", roomID), slog.String("user", user.UserID))
		render.JSON(w, r, response.Ok(map[string]any{"roomId": roomID, "readAt": readAt}))
	}
}
