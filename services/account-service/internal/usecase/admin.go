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

// AdminUsecase defines user management available to admins.
type AdminUsecase interface {
	ListUsers(ctx context.Context, params ListUsersParams) ([]*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	UpdateUser(ctx context.Context, id string, params AdminUpdateUserParams) error
	DeleteUser(ctx context.Context, id string) error
}

// ListUsersParams narrows the user list. Empty fields match every user.
type ListUsersParams struct {
	Email string
	Role  model.Role
}

// AdminUpdateUserParams lists the fields an admin may change on any user.
type AdminUpdateUserParams struct {
	Name  string
	Email string
	Role  model.Role
}

type adminUsecase struct {
	userRepo  repository.UserRepository
	publisher EventPublisher
	logger    *zerolog.Logger
}

// NewAdminUsecase creates a new instance of AdminUsecase.
func NewAdminUsecase(
	userRepo repository.UserRepository,
	publisher EventPublisher,
	logger *zerolog.Logger,
) AdminUsecase {
	return &adminUsecase{
		userRepo:  userRepo,
		publisher: publisher,
		logger:    logger,
	}
}

func (u *adminUsecase) ListUsers(ctx context.Context, params ListUsersParams) ([]*model.User, error) {
	var filter repository.FilterUsersParams
	if params.Email != "" {
		filter.Email = &params.Email
	}
	if params.Role != "" {
		filter.Role = &params.Role
	}

	users, err := u.userRepo.ListUsers(ctx, filter)
	if err != nil {
		return nil, internalError("LIST_USERS_FAILED", "ListUsers", err)
	}

	return users, nil
}

func (u *adminUsecase) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, userNotFound(id)
		}
		return nil, internalError("GET_USER_FAILED", "GetUser", err)
	}

	return user, nil
}

func (u *adminUsecase) UpdateUser(ctx context.Context, id string, params AdminUpdateUserParams) error {
	_, err := u.userRepo.UpdateUser(ctx, id, repository.UpdateUserParams{
		Name:  &params.Name,
		Email: &params.Email,
		Role:  &params.Role,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return userNotFound(id)
		case errors.Is(err, repository.ErrDuplicateEmail):
			return apperror.InvalidInput(msgDuplicateEmail)
		default:
			return internalError("UPDATE_USER_FAILED", "UpdateUser", err)
		}
	}

	return nil
}

func (u *adminUsecase) DeleteUser(ctx context.Context, id string) error {
	user, err := u.userRepo.DeleteUser(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return userNotFound(id)
		}
		return internalError("DELETE_USER_FAILED", "DeleteUser", err)
	}

	publishUserEvent(ctx, u.publisher, u.logger, events.UserDeleted, user)

	return nil
}
