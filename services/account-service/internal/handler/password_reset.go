package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vasapolrittideah/shopit-api/services/account-service/internal/payload"
	"github.com/vasapolrittideah/shopit-api/services/account-service/internal/usecase"
	"github.com/vasapolrittideah/shopit-api/shared/response"
)

func (h *AccountHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ForgotPasswordRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	message, err := h.passwordResetUsecase.ForgotPassword(r.Context(), usecase.ForgotPasswordParams{
		Email:        req.Email,
		ResetURLBase: h.resetURLBase(r),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, payload.MessageResponse{Success: true, Message: message})
}

func (h *AccountHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ResetPasswordRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.passwordResetUsecase.ResetPassword(r.Context(), usecase.ResetPasswordParams{
		Token:           chi.URLParam(r, "token"),
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.sendToken(w, result)
}
