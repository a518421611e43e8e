// AngelaMos | 2026
// service_test.go

package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayavrik/yamdb-final/internal/core"
)

type fakeRepo struct {
	byID map[string]*User
}

func newFakeRepo(users ...*User) *fakeRepo {
	f := &fakeRepo{byID: make(map[string]*User)}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeRepo) Create(_ context.Context, user *User) error {
	for _, existing := range f.byID {
		if existing.Username == user.Username ||
			existing.Email == user.Email {
			return core.ErrDuplicateKey
		}
	}
	user.IsActive = true
	f.byID[user.ID] = user
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeRepo) GetByUsername(
	_ context.Context,
	username string,
) (*User, error) {
	for _, user := range f.byID {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, user := range f.byID {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeRepo) Update(_ context.Context, user *User) error {
	for id, existing := range f.byID {
		if id == user.ID {
			continue
		}
		if existing.Username == user.Username ||
			existing.Email == user.Email {
			return core.ErrDuplicateKey
		}
	}
	if _, ok := f.byID[user.ID]; !ok {
		return core.ErrNotFound
	}
	copied := *user
	f.byID[user.ID] = &copied
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeRepo) List(
	_ context.Context,
	_ ListUsersParams,
) ([]User, int, error) {
	users := make([]User, 0, len(f.byID))
	for _, u := range f.byID {
		users = append(users, *u)
	}
	return users, len(users), nil
}

func strptr(s string) *string { return &s }

func reader() *User {
	return &User{
		ID:       "u1",
		Username: "reader",
		Email:    "reader@example.com",
		Role:     "user",
		IsActive: true,
	}
}

// A plain user smuggling a role change into a profile update gets the
// rest of the patch applied and the role silently kept as-is.
func TestUpdateMeDropsRoleForPlainUser(t *testing.T) {
	repo := newFakeRepo(reader())
	svc := NewService(repo)

	updated, err := svc.UpdateMe(context.Background(), "u1", UpdateUserRequest{
		Bio:  strptr("long-time watcher"),
		Role: strptr("admin"),
	})

	require.NoError(t, err)
	assert.Equal(t, "user", updated.Role)
	assert.Equal(t, "long-time watcher", updated.Bio)
}

func TestUpdateMeHonorsRoleForElevated(t *testing.T) {
	mod := reader()
	mod.ID = "m1"
	mod.Username = "mod"
	mod.Email = "mod@example.com"
	mod.Role = "moderator"

	svc := NewService(newFakeRepo(mod))

	updated, err := svc.UpdateMe(context.Background(), "m1", UpdateUserRequest{
		Role: strptr("user"),
	})

	require.NoError(t, err)
	assert.Equal(t, "user", updated.Role)
}

func TestUpdateMeRejectsReservedUsername(t *testing.T) {
	svc := NewService(newFakeRepo(reader()))

	_, err := svc.UpdateMe(context.Background(), "u1", UpdateUserRequest{
		Username: strptr("me"),
	})

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "username")
}

func TestEnsureSignupCreatesWithUserRole(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	info, err := svc.EnsureSignup(
		context.Background(), "newbie", "Newbie@Example.com",
	)

	require.NoError(t, err)
	assert.Equal(t, "user", info.Role)
	assert.Equal(t, "newbie@example.com", info.Email)
}

func TestEnsureSignupReusesSamePair(t *testing.T) {
	repo := newFakeRepo(reader())
	svc := NewService(repo)

	info, err := svc.EnsureSignup(
		context.Background(), "reader", "reader@example.com",
	)

	require.NoError(t, err)
	assert.Equal(t, "u1", info.ID)
	assert.Len(t, repo.byID, 1)
}

func TestEnsureSignupUsernameCollision(t *testing.T) {
	svc := NewService(newFakeRepo(reader()))

	_, err := svc.EnsureSignup(
		context.Background(), "reader", "other@example.com",
	)

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "username")
}

func TestEnsureSignupEmailCollision(t *testing.T) {
	svc := NewService(newFakeRepo(reader()))

	_, err := svc.EnsureSignup(
		context.Background(), "other", "reader@example.com",
	)

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "email")
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "odd",
		Email:    "odd@example.com",
		Role:     "superuser",
	})

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "role")
}

func TestCreateUserDefaultsToUserRole(t *testing.T) {
	svc := NewService(newFakeRepo())

	user, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "plain",
		Email:    "plain@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "user", user.Role)
}
