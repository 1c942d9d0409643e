package user

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"ChatCRM/entity"
	"ChatCRM/internal/lib/api/cont"
	"ChatCRM/internal/lib/api/response"
	"ChatCRM/internal/lib/sl"
	"ChatCRM/internal/lib/validate"
)

type CreateRequest struct {
	Username  string `json:"username" validate:"required,max=64"`
	FirstName string `json:"firstName" validate:"omitempty,max=64"`
	LastName  string `json:"lastName" validate:"omitempty,max=64"`
	Email     string `json:"email" validate:"omitempty,email"`
	Image     string `json:"image" validate:"omitempty,max=255"`
	TypeCode  string `json:"type" validate:"omitempty,oneof=ADMIN MOD AGENT USER GUEST"`
}

// CreateUser registers a user record. Admin only, except that guests may be
// minted by any authenticated caller so widgets can provision visitors.
func CreateUser(log *slog.Logger, handler Core) http.HandlerFunc {
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

		var req CreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid request body"))
			return
		}
		if err := validate.Struct(&req); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
			return
		}

		if req.TypeCode == "" {
			req.TypeCode = entity.UserType
		}
		if req.TypeCode != entity.GuestType && !self.IsAdmin() {
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, response.Error("Admins only"))
			return
		}

		created, err := handler.CreateUser(r.Context(), &entity.User{
			Username:  req.Username,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Image:     req.Image,
			TypeCode:  req.TypeCode,
		})
		if err != nil {
			logger.Error("failed to create user", slog.String("username", req.Username), sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("Failed to create user"))
			return
		}

		logger.Info("user created",
			slog.String("user", created.UserID),
			slog.String("type", created.TypeCode),
		)
		render.Status(r, http.StatusCreated)
		render.JSON(w, r, response.Ok(created))
	}
}
