package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/vasapolrittideah/shopit-api/services/account-service/internal/payload"
	"github.com/vasapolrittideah/shopit-api/services/account-service/internal/usecase"
	"github.com/vasapolrittideah/shopit-api/shared/apperror"
	"github.com/vasapolrittideah/shopit-api/shared/middleware"
	"github.com/vasapolrittideah/shopit-api/shared/response"
	"github.com/vasapolrittideah/shopit-api/shared/validation"
)

const maxBodyBytes = 1 << 20

// Config holds the transport settings of the account handler.
type Config struct {
	// ResetURLBase overrides the reset link prefix derived from the request.
	ResetURLBase    string
	CookieExpiresIn time.Duration
	CookieSecure    bool
}

// AccountHandler serves the account API over HTTP.
type AccountHandler struct {
	accountUsecase       usecase.AccountUsecase
	passwordResetUsecase usecase.PasswordResetUsecase
	adminUsecase         usecase.AdminUsecase
	validator            *validation.Validator
	cfg                  Config
	now                  func() time.Time
}

// NewAccountHandler creates a new instance of AccountHandler.
func NewAccountHandler(
	accountUsecase usecase.AccountUsecase,
	passwordResetUsecase usecase.PasswordResetUsecase,
	adminUsecase usecase.AdminUsecase,
	validator *validation.Validator,
	cfg Config,
) *AccountHandler {
	return &AccountHandler{
		accountUsecase:       accountUsecase,
		passwordResetUsecase: passwordResetUsecase,
		adminUsecase:         adminUsecase,
		validator:            validator,
		cfg:                  cfg,
		now:                  time.Now,
	}
}

// decodeAndValidate reads the JSON body into dst. It writes the error response itself and
// reports whether the handler may continue. An empty body decodes as an empty object.
func (h *AccountHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		response.Error(w, apperror.InvalidInput("Invalid request body"))
		return false
	}

	return h.validate(w, r, dst)
}

func (h *AccountHandler) validate(w http.ResponseWriter, r *http.Request, dst any) bool {
	fieldErrs, err := h.validator.Struct(dst)
	if err != nil {
		h.fail(w, r, apperror.Internal("Internal Server Error", err))
		return false
	}
	if len(fieldErrs) > 0 {
		response.ValidationError(w, fieldErrs)
		return false
	}

	return true
}

// fail writes err and logs it when it is a server fault.
func (h *AccountHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperror.From(err)
	if appErr.Kind == apperror.KindInternal {
		apperror.Log(hlog.FromRequest(r), "request failed", appErr)
	}

	response.Error(w, appErr)
}

// sendToken writes the session credential as a cookie and in the body.
func (h *AccountHandler) sendToken(w http.ResponseWriter, result *usecase.AuthResult) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    result.Token,
		Path:     "/",
		Expires:  h.now().Add(h.cfg.CookieExpiresIn),
		HttpOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	response.JSON(w, http.StatusOK, payload.AuthResponse{
		Success: true,
		Token:   result.Token,
		User:    result.User,
	})
}

func (h *AccountHandler) resetURLBase(r *http.Request) string {
	if h.cfg.ResetURLBase != "" {
		return h.cfg.ResetURLBase
	}

	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s/api/v1/password/reset", scheme, r.Host)
}

func (h *AccountHandler) currentUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, apperror.Unauthorized("Login first to access this resource"))
		return "", false
	}

	return claims.UserID, true
}
