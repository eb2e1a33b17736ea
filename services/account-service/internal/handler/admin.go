package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vasapolrittideah/shopit-api/services/account-service/internal/model"
	"github.com/vasapolrittideah/shopit-api/services/account-service/internal/payload"
	"github.com/vasapolrittideah/shopit-api/services/account-service/internal/usecase"
	"github.com/vasapolrittideah/shopit-api/shared/response"
)

// ListUsers accepts optional role and email query filters.
func (h *AccountHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	query := payload.ListUsersQuery{
		Email: r.URL.Query().Get("email"),
		Role:  model.Role(r.URL.Query().Get("role")),
	}
	if !h.validate(w, r, &query) {
		return
	}

	users, err := h.adminUsecase.ListUsers(r.Context(), usecase.ListUsersParams{
		Email: query.Email,
		Role:  query.Role,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, payload.UsersResponse{Success: true, Users: users})
}

func (h *AccountHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.adminUsecase.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, payload.UserResponse{Success: true, User: user})
}

func (h *AccountHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req payload.AdminUpdateUserRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	err := h.adminUsecase.UpdateUser(r.Context(), chi.URLParam(r, "id"), usecase.AdminUpdateUserParams{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, payload.SuccessResponse{Success: true})
}

func (h *AccountHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.adminUsecase.DeleteUser(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, payload.SuccessResponse{Success: true})
}
