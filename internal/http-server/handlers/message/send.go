package message

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"ChatCRM/internal/lib/api/cont"
	"ChatCRM/internal/lib/api/response"
	"ChatCRM/internal/lib/sl"
)

type SendRequest struct {
	Message string `json:"message"`
}

func Send(log *slog.Logger, handler Core) http.HandlerFunc {
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

		var req SendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Message body is empty"))
			return
		}

		roomID := chi.URLParam(r, "roomId")
		msg, err := handler.SendMessage(r.Context(), user, roomID, req.Message)
		if err != nil {
			status, errMsg := mapError(err)
			if status == http.StatusInternalServerError {
				logger.Error("failed to send message", slog.String("room", roomID), sl.Err(err))
			}
			render.Status(r, status)
			render.JSON(w, r, response.Error(errMsg))
			return
		}

		logger.Info("message sent",
			slog.String("room", roomID),
			slog.String("user", user.UserID),
			slog.Int64("message_id", msg.ID),
		)
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(msg))
	}
}
