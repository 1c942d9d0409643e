package support

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"ChatCRM/internal/lib/api/cont"
	"ChatCRM/internal/lib/api/response"
	"ChatCRM/internal/lib/sl"
)

func List(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.support")

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
		if !user.IsAgent() && !user.IsAdmin() {
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("Agents only"))
			return
		}

		rooms, err := handler.ListSupportRooms(r.Context())
		if err != nil {
			logger.Error("failed to list support rooms", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to list support rooms"))
			return
		}

		logger.Debug("support rooms listed", slog.Int("count", len(rooms)))
		render.JSON(w, r, response.Ok(rooms))
	}
}
