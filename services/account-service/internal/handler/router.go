package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/shopit-api/services/account-service/internal/model"
	"github.com/vasapolrittideah/shopit-api/services/account-service/internal/payload"
	"github.com/vasapolrittideah/shopit-api/shared/apperror"
	"github.com/vasapolrittideah/shopit-api/shared/metrics"
	"github.com/vasapolrittideah/shopit-api/shared/middleware"
	"github.com/vasapolrittideah/shopit-api/shared/response"
)

// Routes mounts the account API under /api/v1 next to the health and metrics endpoints.
func (h *AccountHandler) Routes(
	verifier middleware.TokenVerifier,
	m *metrics.Metrics,
	logger *zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(logger))
	r.Use(m.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, http.StatusOK, payload.SuccessResponse{Success: true})
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Get("/logout", h.Logout)
		r.Post("/password/forgot", h.ForgotPassword)
		r.Put("/password/reset/{token}", h.ResetPassword)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(verifier))

			r.Get("/me", h.GetProfile)
			r.Put("/me/update", h.UpdateProfile)
			r.Put("/password/update", h.UpdatePassword)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(h.currentRole, string(model.RoleAdmin)))

				r.Get("/admin/users", h.ListUsers)
				r.Get("/admin/user/{id}", h.GetUser)
				r.Put("/admin/user/{id}", h.UpdateUser)
				r.Delete("/admin/user/{id}", h.DeleteUser)
			})
		})
	})

	return r
}

// currentRole reads the caller's role from storage. A credential whose user is gone
// is treated as no credential.
func (h *AccountHandler) currentRole(ctx context.Context, userID string) (string, error) {
	user, err := h.accountUsecase.GetProfile(ctx, userID)
	if err != nil {
		if apperror.From(err).Kind == apperror.KindNotFound {
			return "", apperror.Unauthorized("Login first to access this resource")
		}
		return "", err
	}

	return string(user.Role), nil
}
