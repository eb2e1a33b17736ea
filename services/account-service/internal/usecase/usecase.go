package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/oops"

	"github.com/vasapolrittideah/shopit-api/services/account-service/internal/model"
	"github.com/vasapolrittideah/shopit-api/shared/apperror"
	"github.com/vasapolrittideah/shopit-api/shared/events"
	"github.com/vasapolrittideah/shopit-api/shared/mailer"
)

// PasswordHasher is a one-way password hash with constant-time verification.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

// SessionIssuer issues session credentials.
type SessionIssuer interface {
	Issue(userID, role string) (token string, expiresAt time.Time, err error)
}

// EmailSender delivers a single email.
type EmailSender interface {
	Send(email mailer.Email) error
}

// EventPublisher announces account lifecycle events to other services.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, data any) error
}

// AuthResult is returned by every operation that authenticates the caller.
type AuthResult struct {
	User  *model.User
	Token string
}

const (
	msgInternal           = "Internal Server Error"
	msgDuplicateEmail     = "Duplicate email entered"
	msgUserNotFoundWithID = "User not found with ID: %s"
)

func internalError(code, operation string, err error) *apperror.Error {
	return apperror.Internal(msgInternal, oops.
		In("account").
		Code(code).
		With("operation", operation).
		Wrap(err))
}

func userNotFound(id string) *apperror.Error {
	return apperror.NotFound(fmt.Sprintf(msgUserNotFoundWithID, id))
}

func issueSession(issuer SessionIssuer, user *model.User) (*AuthResult, error) {
	token, _, err := issuer.Issue(user.ID.Hex(), string(user.Role))
	if err != nil {
		return nil, internalError("SESSION_ISSUE_FAILED", "Issue", err)
	}

	user.PasswordHash = ""

	return &AuthResult{User: user, Token: token}, nil
}

// publishUserEvent is best effort: a failure is logged and never fails the operation.
func publishUserEvent(
	ctx context.Context,
	publisher EventPublisher,
	logger *zerolog.Logger,
	eventType string,
	user *model.User,
) {
	data := events.UserEventData{UserID: user.ID.Hex(), Email: user.Email}
	if err := publisher.Publish(ctx, eventType, data); err != nil {
		logger.Warn().Err(err).Str("event", eventType).Str("user_id", data.UserID).Msg("failed to publish user event")
	}
}
