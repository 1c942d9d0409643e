package user

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"ChatCRM/internal/database"
	"ChatCRM/internal/lib/api/cont"
	"ChatCRM/internal/lib/api/response"
	"ChatCRM/internal/lib/sl"
)

// GetUser returns the requested user, or the caller itself when no id query
// parameter is given.
func GetUser(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.user")

		logger := log.With(
			mod,
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		self := cont.GetUser(r.Context())
		if self == nil {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("Unauthorized"))
			return
		}

		userID := r.URL.Query().Get("id")
		if userID == "" {
			render.JSON(w, r, response.Ok(self))
			return
		}

		found, err := handler.GetUser(r.Context(), userID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("User not found"))
				return
			}
			logger.Error("failed to get user", slog.String("user", userID), sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to get user"))
			return
		}

		render.JSON(w, r, response.Ok(found))
	}
}
