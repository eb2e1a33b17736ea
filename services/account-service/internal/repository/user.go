package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/vasapolrittideah/shopit-api/services/account-service/internal/model"
)

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrDuplicateEmail         = errors.New("duplicate email")
	ErrNoFieldsToUpdate       = errors.New("no user fields to update")
	ErrConflictingResetUpdate = errors.New("reset password fields cannot be set and cleared together")
)

// UserRepository defines the interface for user-related database operations.
// Reads leave PasswordHash empty unless the method name says otherwise.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserWithPassword(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByEmailWithPassword(ctx context.Context, email string) (*model.User, error)
	// GetUserByResetToken finds the user holding tokenHash whose reset window ends after now.
	GetUserByResetToken(ctx context.Context, tokenHash string, now time.Time) (*model.User, error)
	UpdateUser(ctx context.Context, id string, params UpdateUserParams) (*model.User, error)
	// RedeemResetToken sets passwordHash and clears the reset fields in one conditional write.
	// Only the first caller holding a pending tokenHash succeeds; later ones get ErrUserNotFound.
	RedeemResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string) (*model.User, error)
	DeleteUser(ctx context.Context, id string) (*model.User, error)
	ListUsers(ctx context.Context, params FilterUsersParams) ([]*model.User, error)
}

// UpdateUserParams lists every field an update may touch. Only non-nil fields are written.
// The reset token and its expiry can only be set together or cleared together.
type UpdateUserParams struct {
	Name               *string
	Email              *string
	Role               *model.Role
	PasswordHash       *string
	ResetPassword      *ResetPasswordParams
	ClearResetPassword bool
}

// ResetPasswordParams is a pending password reset.
type ResetPasswordParams struct {
	TokenHash string
	ExpiresAt time.Time
}

// FilterUsersParams narrows ListUsers. Nil fields match every user.
type FilterUsersParams struct {
	Email *string
	Role  *model.Role
}

const userCollection = "users"

var withoutPassword = bson.M{"password": 0}

type userMongoRepository struct {
	db *mongo.Database
}

func NewUserMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) UserRepository {
	collection := db.Collection(userCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "reset_password_token", Value: 1}},
			Options: options.Index().
				SetPartialFilterExpression(bson.M{"reset_password_token": bson.M{"$exists": true}}),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create user indexes")
	}

	return &userMongoRepository{db: db}
}

func (r *userMongoRepository) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	objectID, ok := result.InsertedID.(bson.ObjectID)
	if !ok {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}
	user.ID = objectID

	return user, nil
}

func (r *userMongoRepository) GetUser(ctx context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	return r.findOne(ctx, bson.M{"_id": objectID}, false)
}

func (r *userMongoRepository) GetUserWithPassword(ctx context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	return r.findOne(ctx, bson.M{"_id": objectID}, true)
}

func (r *userMongoRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, false)
}

func (r *userMongoRepository) GetUserByEmailWithPassword(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, true)
}

func (r *userMongoRepository) GetUserByResetToken(
	ctx context.Context,
	tokenHash string,
	now time.Time,
) (*model.User, error) {
	if tokenHash == "" {
		return nil, ErrUserNotFound
	}

	return r.findOne(ctx, resetTokenFilter(tokenHash, now), false)
}

func (r *userMongoRepository) UpdateUser(
	ctx context.Context,
	id string,
	params UpdateUserParams,
) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	update, err := buildUserUpdate(params, time.Now())
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		update,
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(withoutPassword),
	)

	return decodeUser(result)
}

func (r *userMongoRepository) RedeemResetToken(
	ctx context.Context,
	tokenHash string,
	now time.Time,
	passwordHash string,
) (*model.User, error) {
	if tokenHash == "" {
		return nil, ErrUserNotFound
	}

	update, err := buildUserUpdate(UpdateUserParams{
		PasswordHash:       &passwordHash,
		ClearResetPassword: true,
	}, time.Now())
	if err != nil {
		return nil, err
	}

	result := r.db.Collection(userCollection).FindOneAndUpdate(
		ctx,
		resetTokenFilter(tokenHash, now),
		update,
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(withoutPassword),
	)

	return decodeUser(result)
}

func (r *userMongoRepository) DeleteUser(ctx context.Context, id string) (*model.User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	result := r.db.Collection(userCollection).FindOneAndDelete(
		ctx,
		bson.M{"_id": objectID},
		options.FindOneAndDelete().SetProjection(withoutPassword),
	)

	return decodeUser(result)
}

func (r *userMongoRepository) ListUsers(ctx context.Context, params FilterUsersParams) ([]*model.User, error) {
	findOptions := options.Find().
		SetProjection(withoutPassword).
		SetSort(bson.D{{Key: "created_at", Value: 1}})

	filter := userListFilter(params)

	cursor, err := r.db.Collection(userCollection).Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := make([]*model.User, 0)
	for cursor.Next(ctx) {
		var user model.User
		if err := cursor.Decode(&user); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userMongoRepository) findOne(ctx context.Context, filter bson.M, withPassword bool) (*model.User, error) {
	opts := options.FindOne()
	if !withPassword {
		opts.SetProjection(withoutPassword)
	}

	return decodeUser(r.db.Collection(userCollection).FindOne(ctx, filter, opts))
}

func decodeUser(result *mongo.SingleResult) (*model.User, error) {
	if err := result.Err(); err != nil {
		return nil, translateError(err)
	}

	var user model.User
	if err := result.Decode(&user); err != nil {
		return nil, err
	}

	return &user, nil
}

func translateError(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrUserNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicateEmail
	default:
		return err
	}
}

func userListFilter(params FilterUsersParams) bson.M {
	filter := bson.M{}
	if params.Email != nil {
		filter["email"] = *params.Email
	}
	if params.Role != nil {
		filter["role"] = *params.Role
	}
	return filter
}

func resetTokenFilter(tokenHash string, now time.Time) bson.M {
	return bson.M{
		"reset_password_token":  tokenHash,
		"reset_password_expire": bson.M{"$gt": now},
	}
}

// buildUserUpdate turns params into a $set/$unset document.
func buildUserUpdate(params UpdateUserParams, now time.Time) (bson.M, error) {
	if params.ResetPassword != nil && params.ClearResetPassword {
		return nil, ErrConflictingResetUpdate
	}

	set := bson.M{}
	if params.Name != nil {
		set["name"] = *params.Name
	}
	if params.Email != nil {
		set["email"] = *params.Email
	}
	if params.Role != nil {
		set["role"] = *params.Role
	}
	if params.PasswordHash != nil {
		set["password"] = *params.PasswordHash
	}
	if params.ResetPassword != nil {
		set["reset_password_token"] = params.ResetPassword.TokenHash
		set["reset_password_expire"] = params.ResetPassword.ExpiresAt
	}

	if len(set) == 0 && !params.ClearResetPassword {
		return nil, ErrNoFieldsToUpdate
	}

	set["updated_at"] = now
	update := bson.M{"$set": set}

	if params.ClearResetPassword {
		update["$unset"] = bson.M{
			"reset_password_token":  "",
			"reset_password_expire": "",
		}
	}

	return update, nil
}
