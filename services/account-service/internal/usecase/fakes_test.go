package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/shopit-api/services/account-service/internal/model"
	"github.com/vasapolrittideah/shopit-api/services/account-service/internal/repository"
	"github.com/vasapolrittideah/shopit-api/shared/mailer"
)

// memoryUserRepository mirrors the Mongo repository semantics over a map.
type memoryUserRepository struct {
	mu    sync.Mutex
	users map[string]*model.User
	// updateErr, when set, fails matching updates before they are applied.
	updateErr func(params repository.UpdateUserParams) error
	updates   int
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: make(map[string]*model.User)}
}

func (r *memoryUserRepository) CreateUser(_ context.Context, user *model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == user.Email {
			return nil, repository.ErrDuplicateEmail
		}
	}

	user.ID = bson.NewObjectID()
	stored := *user
	r.users[user.ID.Hex()] = &stored

	return user, nil
}

func (r *memoryUserRepository) GetUser(_ context.Context, id string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.ID.Hex() == id }, false)
}

func (r *memoryUserRepository) GetUserWithPassword(_ context.Context, id string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.ID.Hex() == id }, true)
}

func (r *memoryUserRepository) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Email == email }, false)
}

func (r *memoryUserRepository) GetUserByEmailWithPassword(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u *model.User) bool { return u.Email == email }, true)
}

func (r *memoryUserRepository) GetUserByResetToken(
	_ context.Context,
	tokenHash string,
	now time.Time,
) (*model.User, error) {
	return r.find(func(u *model.User) bool {
		return tokenHash != "" &&
			u.ResetPasswordToken == tokenHash &&
			u.ResetPasswordExpire != nil &&
			u.ResetPasswordExpire.After(now)
	}, false)
}

func (r *memoryUserRepository) UpdateUser(
	ctx context.Context,
	id string,
	params repository.UpdateUserParams,
) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.updateErr != nil {
		if err := r.updateErr(params); err != nil {
			return nil, err
		}
	}

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	if params.Email != nil {
		for _, existing := range r.users {
			if existing.ID != user.ID && existing.Email == *params.Email {
				return nil, repository.ErrDuplicateEmail
			}
		}
	}

	if params.Name != nil {
		user.Name = *params.Name
	}
	if params.Email != nil {
		user.Email = *params.Email
	}
	if params.Role != nil {
		user.Role = *params.Role
	}
	if params.PasswordHash != nil {
		user.PasswordHash = *params.PasswordHash
	}
	if params.ResetPassword != nil {
		expires := params.ResetPassword.ExpiresAt
		user.ResetPasswordToken = params.ResetPassword.TokenHash
		user.ResetPasswordExpire = &expires
	}
	if params.ClearResetPassword {
		user.ResetPasswordToken = ""
		user.ResetPasswordExpire = nil
	}
	r.updates++

	updated := *user
	updated.PasswordHash = ""

	return &updated, nil
}

func (r *memoryUserRepository) RedeemResetToken(
	ctx context.Context,
	tokenHash string,
	now time.Time,
	passwordHash string,
) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if tokenHash == "" || user.ResetPasswordToken != tokenHash ||
			user.ResetPasswordExpire == nil || !user.ResetPasswordExpire.After(now) {
			continue
		}

		user.PasswordHash = passwordHash
		user.ResetPasswordToken = ""
		user.ResetPasswordExpire = nil
		r.updates++

		redeemed := *user
		redeemed.PasswordHash = ""
		return &redeemed, nil
	}

	return nil, repository.ErrUserNotFound
}

func (r *memoryUserRepository) DeleteUser(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	delete(r.users, id)

	deleted := *user
	deleted.PasswordHash = ""

	return &deleted, nil
}

func (r *memoryUserRepository) ListUsers(
	_ context.Context,
	params repository.FilterUsersParams,
) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users := make([]*model.User, 0, len(r.users))
	for _, u := range r.users {
		if params.Email != nil && u.Email != *params.Email {
			continue
		}
		if params.Role != nil && u.Role != *params.Role {
			continue
		}
		listed := *u
		listed.PasswordHash = ""
		users = append(users, &listed)
	}

	return users, nil
}

func (r *memoryUserRepository) find(match func(*model.User) bool, withPassword bool) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if match(u) {
			found := *u
			if !withPassword {
				found.PasswordHash = ""
			}
			return &found, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

// stored returns the raw record, password hash included.
func (r *memoryUserRepository) stored(email string) *model.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied
		}
	}
	return nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", errors.New("empty password")
	}
	return "hashed:" + password, nil
}

func (fakeHasher) Verify(password, hash string) (bool, error) {
	return hash != "" && hash == "hashed:"+password, nil
}

// gatedHasher holds every Hash call until n callers have arrived.
type gatedHasher struct {
	fakeHasher
	arrived *sync.WaitGroup
}

func newGatedHasher(n int) gatedHasher {
	wg := &sync.WaitGroup{}
	wg.Add(n)
	return gatedHasher{arrived: wg}
}

func (h gatedHasher) Hash(password string) (string, error) {
	h.arrived.Done()
	h.arrived.Wait()
	return h.fakeHasher.Hash(password)
}

type fakeSessionIssuer struct {
	expiresAt time.Time
	err       error
}

func (f fakeSessionIssuer) Issue(userID, role string) (string, time.Time, error) {
	if f.err != nil {
		return "", time.Time{}, f.err
	}
	return "session-" + userID + "-" + role, f.expiresAt, nil
}

type fakeEmailSender struct {
	sent []mailer.Email
	err  error
	// onSend runs before every delivery attempt.
	onSend func()
}

func (f *fakeEmailSender) Send(email mailer.Email) error {
	if f.onSend != nil {
		f.onSend()
	}
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, email)
	return nil
}

// rawToken extracts the token from the last reset link that was sent.
func (f *fakeEmailSender) rawToken(base string) string {
	if len(f.sent) == 0 {
		return ""
	}

	body := f.sent[len(f.sent)-1].Body
	start := strings.Index(body, base+"/")
	if start < 0 {
		return ""
	}

	rest := body[start+len(base)+1:]
	if end := strings.IndexByte(rest, '\n'); end >= 0 {
		rest = rest[:end]
	}
	return rest
}

type publishedEvent struct {
	eventType string
	data      any
}

type fakePublisher struct {
	events []publishedEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, eventType string, data any) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, publishedEvent{eventType: eventType, data: data})
	return nil
}

type fakeRecorder struct {
	sent, failed int
}

func (f *fakeRecorder) RecordResetEmail(sent bool) {
	if sent {
		f.sent++
		return
	}
	f.failed++
}
