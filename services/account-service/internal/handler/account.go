package handler

import (
	"net/http"

	"github.com/vasapolrittideah/shopit-api/services/account-service/internal/payload"
	"github.com/vasapolrittideah/shopit-api/services/account-service/internal/usecase"
	"github.com/vasapolrittideah/shopit-api/shared/middleware"
	"github.com/vasapolrittideah/shopit-api/shared/response"
)

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req payload.RegisterRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.accountUsecase.Register(r.Context(), usecase.RegisterParams{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.sendToken(w, result)
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.accountUsecase.Login(r.Context(), usecase.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.sendToken(w, result)
}

func (h *AccountHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  h.now(),
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	response.JSON(w, http.StatusOK, payload.MessageResponse{
		Success: true,
		Message: "Logout Successful",
	})
}

func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}

	user, err := h.accountUsecase.GetProfile(r.Context(), userID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, payload.UserResponse{Success: true, User: user})
}

func (h *AccountHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}

	var req payload.UpdatePasswordRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.accountUsecase.UpdatePassword(r.Context(), userID, usecase.UpdatePasswordParams{
		OldPassword: req.OldPassword,
		NewPassword: req.Password,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.sendToken(w, result)
}

func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(w, r)
	if !ok {
		return
	}

	var req payload.UpdateProfileRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	err := h.accountUsecase.UpdateProfile(r.Context(), userID, usecase.UpdateProfileParams{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, payload.SuccessResponse{Success: true})
}
