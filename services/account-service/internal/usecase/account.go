package usecase

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/shopit-api/services/account-service/internal/model"
	"github.com/vasapolrittideah/shopit-api/services/account-service/internal/repository"
	"github.com/vasapolrittideah/shopit-api/shared/apperror"
	"github.com/vasapolrittideah/shopit-api/shared/events"
)

// AccountUsecase defines the self-service account operations.
type AccountUsecase interface {
	Register(ctx context.Context, params RegisterParams) (*AuthResult, error)
	Login(ctx context.Context, params LoginParams) (*AuthResult, error)
	GetProfile(ctx context.Context, userID string) (*model.User, error)
	UpdatePassword(ctx context.Context, userID string, params UpdatePasswordParams) (*AuthResult, error)
	UpdateProfile(ctx context.Context, userID string, params UpdateProfileParams) error
}

// RegisterParams defines the parameters for user registration.
type RegisterParams struct {
	Name     string
	Email    string
	Password string
}

// LoginParams defines the parameters for user login.
type LoginParams struct {
	Email    string
	Password string
}

// UpdatePasswordParams defines the parameters for changing a known password.
type UpdatePasswordParams struct {
	OldPassword string
	NewPassword string
}

// UpdateProfileParams lists the only fields a user may change on their own profile.
type UpdateProfileParams struct {
	Name  string
	Email string
}

const (
	msgMissingCredentials = "Please provide email and password"
	// Shared by unknown email and wrong password so that login does not reveal which accounts exist.
	msgInvalidCredentials = "Invalid Email or password"
	msgOldPasswordWrong   = "Old password is incorrect"
)

type accountUsecase struct {
	userRepo  repository.UserRepository
	hasher    PasswordHasher
	sessions  SessionIssuer
	publisher EventPublisher
	logger    *zerolog.Logger
}

// NewAccountUsecase creates a new instance of AccountUsecase.
func NewAccountUsecase(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	sessions SessionIssuer,
	publisher EventPublisher,
	logger *zerolog.Logger,
) AccountUsecase {
	return &accountUsecase{
		userRepo:  userRepo,
		hasher:    hasher,
		sessions:  sessions,
		publisher: publisher,
		logger:    logger,
	}
}

func (u *accountUsecase) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	passwordHash, err := u.hasher.Hash(params.Password)
	if err != nil {
		return nil, internalError("REGISTER_FAILED", "Hash", err)
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		Name:         params.Name,
		Email:        params.Email,
		PasswordHash: passwordHash,
		Role:         model.RoleUser,
		Avatar:       model.DefaultAvatar,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperror.InvalidInput(msgDuplicateEmail)
		}
		return nil, internalError("REGISTER_FAILED", "CreateUser", err)
	}

	publishUserEvent(ctx, u.publisher, u.logger, events.UserRegistered, user)

	return issueSession(u.sessions, user)
}

func (u *accountUsecase) Login(ctx context.Context, params LoginParams) (*AuthResult, error) {
	if params.Email == "" || params.Password == "" {
		return nil, apperror.InvalidInput(msgMissingCredentials)
	}

	user, err := u.userRepo.GetUserByEmailWithPassword(ctx, params.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.Unauthorized(msgInvalidCredentials)
		}
		return nil, internalError("LOGIN_FAILED", "GetUserByEmailWithPassword", err)
	}

	ok, err := u.hasher.Verify(params.Password, user.PasswordHash)
	if err != nil {
		return nil, internalError("LOGIN_FAILED", "Verify", err)
	}
	if !ok {
		return nil, apperror.Unauthorized(msgInvalidCredentials)
	}

	return issueSession(u.sessions, user)
}

func (u *accountUsecase) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, userNotFound(userID)
		}
		return nil, internalError("PROFILE_FAILED", "GetUser", err)
	}

	return user, nil
}

func (u *accountUsecase) UpdatePassword(
	ctx context.Context,
	userID string,
	params UpdatePasswordParams,
) (*AuthResult, error) {
	user, err := u.userRepo.GetUserWithPassword(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, userNotFound(userID)
		}
		return nil, internalError("UPDATE_PASSWORD_FAILED", "GetUserWithPassword", err)
	}

	ok, err := u.hasher.Verify(params.OldPassword, user.PasswordHash)
	if err != nil {
		return nil, internalError("UPDATE_PASSWORD_FAILED", "Verify", err)
	}
	if !ok {
		return nil, apperror.InvalidInput(msgOldPasswordWrong)
	}

	passwordHash, err := u.hasher.Hash(params.NewPassword)
	if err != nil {
		return nil, internalError("UPDATE_PASSWORD_FAILED", "Hash", err)
	}

	updated, err := u.userRepo.UpdateUser(ctx, userID, repository.UpdateUserParams{
		PasswordHash: &passwordHash,
	})
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, userNotFound(userID)
		}
		return nil, internalError("UPDATE_PASSWORD_FAILED", "UpdateUser", err)
	}

	publishUserEvent(ctx, u.publisher, u.logger, events.UserPasswordUpdated, updated)

	return issueSession(u.sessions, updated)
}

func (u *accountUsecase) UpdateProfile(ctx context.Context, userID string, params UpdateProfileParams) error {
	_, err := u.userRepo.UpdateUser(ctx, userID, repository.UpdateUserParams{
		Name:  &params.Name,
		Email: &params.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return userNotFound(userID)
		case errors.Is(err, repository.ErrDuplicateEmail):
			return apperror.InvalidInput(msgDuplicateEmail)
		default:
			return internalError("UPDATE_PROFILE_FAILED", "UpdateUser", err)
		}
	}

	return nil
}
