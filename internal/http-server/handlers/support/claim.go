package support

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"ChatCRM/internal/database"
	"ChatCRM/internal/lib/api/cont"
	"ChatCRM/internal/lib/api/response"
	"ChatCRM/internal/lib/sl"
)

// Take claims a support room for the calling agent. First writer wins; a
// losing agent gets 409 and refreshes its queue.
func Take(log *slog.Logger, handler Core) http.HandlerFunc {
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

		roomID := chi.URLParam(r, "roomId")
		room, err := handler.TakeSupportRoom(r.Context(), user, roomID)
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrClaimConflict):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error("Room already claimed by another agent"))
			case errors.Is(err, repository.ErrNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("Support room not found"))
			default:
				logger.Error("failed to take support room", slog.String("room", roomID), sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("Failed to take support room"))
			}
			return
		}

		logger.Info("support room taken",
			slog.String("room", roomID),
			slog.String("agent", user.UserID),
		)
		render.JSON(w, r, response.Ok(room))
	}
}

// Release clears the claim on a support room.
func Release(log *slog.Logger, handler Core) http.HandlerFunc {
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

		roomID := chi.URLParam(r, "roomId")
		room, err := handler.ReleaseSupportRoom(r.Context(), user, roomID)
		if err != nil {
			switch {
			case errors.Is(err, repository.ErrForbidden):
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("Only the assigned agent may release this room"))
			case errors.Is(err, repository.ErrNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("Support room not found"))
			default:
				logger.Error("failed to release support room", slog.String("room", roomID), sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("Failed to release support room"))
			}
			return
		}

		logger.Info("support room released",
			slog.String("room", roomID),
			slog.String("actor", user.UserID),
		)
		render.JSON(w, r, response.Ok(room))
	}
}
