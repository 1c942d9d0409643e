package key

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

func Generate(log *slog.Logger, handler Core) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mod := sl.Module("http.handlers.key")

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
		if !user.IsAdmin() {
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("Admins only"))
			return
		}

		req := &entity.GenerateKeyRequest{}
		if err := render.Bind(r, req); err != nil {
			logger.Error("invalid generate key request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		token, err := handler.GenerateApiKey(r.Context(), req.Name, user.UserID)
		if err != nil {
			logger.Error("failed to generate api key", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to generate api key"))
			return
		}

		logger.Info("api key generated", slog.String("name", req.Name), slog.String("owner", user.UserID))
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(map[string]string{"name": req.Name, "key": token}))
	}
}
