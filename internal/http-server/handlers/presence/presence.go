package presence

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"ChatCRM/internal/lib/api/cont"
	"ChatCRM/internal/lib/api/response"
	"ChatCRM/internal/lib/sl"
)

// Core is the slice of the chat core the presence endpoints need. HTTP-only
// clients poll and mark themselves through it instead of a socket.
type Core interface {
	MarkOnline(userID string)
	MarkOffline(userID string)
	OnlineUsers() []string
}

// List returns the current online snapshot.
func List(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := cont.GetUser(r.Context())
		if user == nil {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("Unauthorized"))
			return
		}
		render.JSON(w, r, response.Ok(map[string]any{"userList": handler.OnlineUsers()}))
	}
}

// Online marks the caller online and broadcasts the presence snapshot.
func Online(log *slog.Logger, handler Core) http.HandlerFunc {
	return mark(log, handler, true)
}

// Offline marks the caller offline and broadcasts the presence snapshot.
func Offline(log *slog.Logger, handler Core) http.HandlerFunc {
	return mark(log, handler, false)
}

func mark(log *slog.Logger, handler Core, online bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.presence")

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

		if online {
			handler.MarkOnline(user.UserID)
		} else {
			handler.MarkOffline(user.UserID)
		}

		logger.Debug("presence updated", slog.String("user", user.UserID), slog.Bool("online", online))
		render.JSON(w, r, response.Ok(map[string]any{"userId": user.UserID, "online": online}))
	}
}
