package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/shopit-api/services/account-service/internal/model"
	"github.com/vasapolrittideah/shopit-api/services/account-service/internal/repository"
	"github.com/vasapolrittideah/shopit-api/shared/apperror"
	"github.com/vasapolrittideah/shopit-api/shared/events"
	"github.com/vasapolrittideah/shopit-api/shared/mailer"
	"github.com/vasapolrittideah/shopit-api/shared/security"
)

// PasswordResetUsecase drives the emailed reset token from issue to redemption.
type PasswordResetUsecase interface {
	// ForgotPassword emails a reset link and returns a confirmation message for the caller.
	ForgotPassword(ctx context.Context, params ForgotPasswordParams) (string, error)
	ResetPassword(ctx context.Context, params ResetPasswordParams) (*AuthResult, error)
}

// ForgotPasswordParams defines the parameters for requesting a reset email.
// ResetURLBase is the link prefix the raw token is appended to.
type ForgotPasswordParams struct {
	Email        string
	ResetURLBase string
}

// ResetPasswordParams defines the parameters for redeeming a reset token.
type ResetPasswordParams struct {
	Token           string
	Password        string
	ConfirmPassword string
}

// ResetEmailRecorder counts reset email delivery outcomes.
type ResetEmailRecorder interface {
	RecordResetEmail(sent bool)
}

const (
	msgNoUserWithEmail    = "No user found with this email"
	msgResetTokenInvalid  = "The password reset token is invalid or might have been expired"
	msgPasswordsMismatch  = "Passwords do not match"
	resetEmailSubject     = "New password for your account"
	resetEmailBodyPattern = "Your password reset link is here:\n\n%s\n\nIf you didn't request this, please ignore this email."
)

type passwordResetUsecase struct {
	userRepo    repository.UserRepository
	hasher      PasswordHasher
	tokens      security.ResetTokens
	sessions    SessionIssuer
	emailSender EmailSender
	publisher   EventPublisher
	recorder    ResetEmailRecorder
	tokenTTL    time.Duration
	logger      *zerolog.Logger
	now         func() time.Time
}

// NewPasswordResetUsecase creates a new instance of PasswordResetUsecase.
// tokenTTL is how long an emailed reset link stays redeemable.
func NewPasswordResetUsecase(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	tokens security.ResetTokens,
	sessions SessionIssuer,
	emailSender EmailSender,
	publisher EventPublisher,
	recorder ResetEmailRecorder,
	tokenTTL time.Duration,
	logger *zerolog.Logger,
) PasswordResetUsecase {
	return &passwordResetUsecase{
		userRepo:    userRepo,
		hasher:      hasher,
		tokens:      tokens,
		sessions:    sessions,
		emailSender: emailSender,
		publisher:   publisher,
		recorder:    recorder,
		tokenTTL:    tokenTTL,
		logger:      logger,
		now:         time.Now,
	}
}

func (u *passwordResetUsecase) ForgotPassword(ctx context.Context, params ForgotPasswordParams) (string, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", apperror.NotFound(msgNoUserWithEmail)
		}
		return "", internalError("FORGOT_PASSWORD_FAILED", "GetUserByEmail", err)
	}

	rawToken, digest, err := u.tokens.Generate()
	if err != nil {
		return "", internalError("FORGOT_PASSWORD_FAILED", "GenerateResetToken", err)
	}

	userID := user.ID.Hex()
	_, err = u.userRepo.UpdateUser(ctx, userID, repository.UpdateUserParams{
		ResetPassword: &repository.ResetPasswordParams{
			TokenHash: digest,
			ExpiresAt: u.now().Add(u.tokenTTL),
		},
	})
	if err != nil {
		return "", internalError("FORGOT_PASSWORD_FAILED", "UpdateUser", err)
	}

	resetURL := strings.TrimRight(params.ResetURLBase, "/") + "/" + rawToken
	sendErr := u.emailSender.Send(mailer.Email{
		To:      []string{user.Email},
		Subject: resetEmailSubject,
		Body:    fmt.Sprintf(resetEmailBodyPattern, resetURL),
	})
	u.recorder.RecordResetEmail(sendErr == nil)

	if sendErr != nil {
		return "", u.rollbackReset(ctx, user, sendErr)
	}

	return fmt.Sprintf("Email sent to: %s", user.Email), nil
}

// rollbackReset clears the pending token after a failed send. It runs even when the caller
// has gone away. The caller always sees the send error's message; a failed rollback is only
// logged and joined into the cause.
func (u *passwordResetUsecase) rollbackReset(ctx context.Context, user *model.User, sendErr error) error {
	_, err := u.userRepo.UpdateUser(context.WithoutCancel(ctx), user.ID.Hex(), repository.UpdateUserParams{
		ClearResetPassword: true,
	})
	if err != nil {
		u.logger.Error().
			Err(err).
			AnErr("send_error", sendErr).
			Str("user_id", user.ID.Hex()).
			Msg("failed to clear reset token after email failure")
		sendErr = errors.Join(sendErr, err)
	}

	return apperror.Internal(rootMessage(sendErr), sendErr)
}

func (u *passwordResetUsecase) ResetPassword(ctx context.Context, params ResetPasswordParams) (*AuthResult, error) {
	digest := u.tokens.Digest(params.Token)

	_, err := u.userRepo.GetUserByResetToken(ctx, digest, u.now())
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.InvalidInput(msgResetTokenInvalid)
		}
		return nil, internalError("RESET_PASSWORD_FAILED", "GetUserByResetToken", err)
	}

	if params.Password != params.ConfirmPassword {
		return nil, apperror.InvalidInput(msgPasswordsMismatch)
	}

	passwordHash, err := u.hasher.Hash(params.Password)
	if err != nil {
		return nil, internalError("RESET_PASSWORD_FAILED", "Hash", err)
	}

	// The token may have been redeemed or replaced since the lookup.
	updated, err := u.userRepo.RedeemResetToken(ctx, digest, u.now(), passwordHash)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.InvalidInput(msgResetTokenInvalid)
		}
		return nil, internalError("RESET_PASSWORD_FAILED", "RedeemResetToken", err)
	}

	publishUserEvent(ctx, u.publisher, u.logger, events.UserPasswordReset, updated)

	return issueSession(u.sessions, updated)
}

// rootMessage is the message of the first error in a join.
func rootMessage(err error) string {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		if errs := joined.Unwrap(); len(errs) > 0 {
			return errs[0].Error()
		}
	}
	return err.Error()
}
