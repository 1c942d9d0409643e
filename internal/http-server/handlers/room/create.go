package room

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"ChatCRM/entity"
	"ChatCRM/internal/lib/api/cont"
	"ChatCRM/internal/lib/api/response"
	"ChatCRM/internal/lib/sl"
)

func Create(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.room")

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

		req := &entity.CreateRoomRequest{}
		if err := render.Bind(r, req); err != nil {
			logger.Error("invalid create room request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		room, reused, err := handler.CreateRoom(r.Context(), user, req)
		if err != nil {
			logger.Error("failed to create room", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		logger.Info("room ready",
			slog.String("room", room.RoomID),
			slog.String("type", room.Type),
			slog.Bool("reused", reused),
		)
		if !reused {
			render.Status(r, http.StatusCreated)
		}
		render.JSON(w, r, response.Ok(room))
	}
}
