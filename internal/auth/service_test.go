// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayavrik/yamdb-final/internal/config"
	"github.com/ayavrik/yamdb-final/internal/core"
)

type fakeTokenRepo struct {
	tokens      map[string]*RefreshToken
	revokedUser string
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]*RefreshToken)}
}

func (f *fakeTokenRepo) Create(_ context.Context, token *RefreshToken) error {
	f.tokens[token.TokenHash] = token
	return nil
}

func (f *fakeTokenRepo) FindByHash(
	_ context.Context,
	tokenHash string,
) (*RefreshToken, error) {
	token, ok := f.tokens[tokenHash]
	if !ok {
		return nil, core.ErrNotFound
	}
	copied := *token
	return &copied, nil
}

func (f *fakeTokenRepo) MarkAsUsed(
	_ context.Context,
	id, replacedByID string,
) error {
	for _, token := range f.tokens {
		if token.ID == id {
			token.IsUsed = true
			token.ReplacedByID = &replacedByID
			return nil
		}
	}
	return core.ErrNotFound
}

func (f *fakeTokenRepo) RevokeAllForUser(
	_ context.Context,
	userID string,
) error {
	f.revokedUser = userID
	now := time.Now()
	for _, token := range f.tokens {
		if token.UserID == userID {
			token.RevokedAt = &now
		}
	}
	return nil
}

func (f *fakeTokenRepo) DeleteExpired(context.Context) (int64, error) {
	return 0, nil
}

type fakeUserProvider struct {
	users     map[string]*UserInfo
	signupErr error
}

func newFakeUserProvider(users ...*UserInfo) *fakeUserProvider {
	f := &fakeUserProvider{users: make(map[string]*UserInfo)}
	for _, u := range users {
		f.users[u.Username] = u
	}
	return f
}

func (f *fakeUserProvider) GetByUsername(
	_ context.Context,
	username string,
) (*UserInfo, error) {
	user, ok := f.users[username]
	if !ok {
		return nil, core.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserProvider) GetByID(
	_ context.Context,
	id string,
) (*UserInfo, error) {
	for _, user := range f.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeUserProvider) EnsureSignup(
	_ context.Context,
	username, email string,
) (*UserInfo, error) {
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	if user, ok := f.users[username]; ok {
		return user, nil
	}
	user := &UserInfo{
		ID:       "new-" + username,
		Username: username,
		Email:    email,
		Role:     "user",
		IsActive: true,
	}
	f.users[username] = user
	return user, nil
}

type fakeNotifier struct {
	sent []string
	err  error
}

func (f *fakeNotifier) SendConfirmationCode(
	_ context.Context,
	_, _, code string,
) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, code)
	return nil
}

type fakeCodeLedger struct {
	keys map[string]bool
}

func newFakeCodeLedger() *fakeCodeLedger {
	return &fakeCodeLedger{keys: make(map[string]bool)}
}

func (f *fakeCodeLedger) SetNX(
	_ context.Context,
	key string,
	_ any,
	_ time.Duration,
) *redis.BoolCmd {
	if f.keys[key] {
		return redis.NewBoolResult(false, nil)
	}
	f.keys[key] = true
	return redis.NewBoolResult(true, nil)
}

func newTestService(
	repo Repository,
	users UserProvider,
	notifier Notifier,
) *Service {
	codes := NewCodeIssuer(config.CodeConfig{
		Secret: "test-secret",
		TTL:    24 * time.Hour,
	})
	return NewService(repo, nil, codes, users, notifier, newFakeCodeLedger())
}

// newRedeemService wires a service with a real signing key so the full
// code-for-token exchange runs end to end.
func newRedeemService(t *testing.T, users UserProvider) (*Service, *CodeIssuer) {
	t.Helper()

	dir := t.TempDir()
	privateKeyPath := filepath.Join(dir, "jwt_private.pem")
	publicKeyPath := filepath.Join(dir, "jwt_public.pem")
	require.NoError(t, GenerateKeyPair(privateKeyPath, publicKeyPath))

	jwtManager, err := NewJWTManager(config.JWTConfig{
		PrivateKeyPath:     privateKeyPath,
		PublicKeyPath:      publicKeyPath,
		AccessTokenExpire:  15 * time.Minute,
		RefreshTokenExpire: 24 * time.Hour,
		Issuer:             "test-issuer",
		Audience:           "test-audience",
	})
	require.NoError(t, err)

	codes := NewCodeIssuer(config.CodeConfig{
		Secret: "test-secret",
		TTL:    24 * time.Hour,
	})

	svc := NewService(
		newFakeTokenRepo(),
		jwtManager,
		codes,
		users,
		&fakeNotifier{},
		newFakeCodeLedger(),
	)
	return svc, codes
}

func TestSignupReservedUsername(t *testing.T) {
	svc := newTestService(newFakeTokenRepo(), newFakeUserProvider(), &fakeNotifier{})

	_, err := svc.Signup(context.Background(), SignupRequest{
		Username: "me",
		Email:    "me@example.com",
	})

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "username")
}

func TestSignupSendsCode(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newTestService(newFakeTokenRepo(), newFakeUserProvider(), notifier)

	resp, err := svc.Signup(context.Background(), SignupRequest{
		Username: "reader",
		Email:    "reader@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "reader", resp.Username)
	assert.Equal(t, "reader@example.com", resp.Email)
	require.Len(t, notifier.sent, 1)
	assert.NotEmpty(t, notifier.sent[0])
}

// A second signup with the same pair reissues a working code instead of
// failing, so a lost email is recoverable.
func TestSignupIdempotentReissue(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := newTestService(newFakeTokenRepo(), newFakeUserProvider(), notifier)

	req := SignupRequest{Username: "reader", Email: "reader@example.com"}

	_, err := svc.Signup(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.Signup(context.Background(), req)
	require.NoError(t, err)

	assert.Len(t, notifier.sent, 2)
}

func TestSignupDeliveryFailureFailsRequest(t *testing.T) {
	users := newFakeUserProvider()
	notifier := &fakeNotifier{err: errors.New("broker unavailable")}
	svc := newTestService(newFakeTokenRepo(), users, notifier)

	_, err := svc.Signup(context.Background(), SignupRequest{
		Username: "reader",
		Email:    "reader@example.com",
	})

	require.Error(t, err)
	assert.False(t, core.IsAppError(err))

	// The account row survives, so a retry reuses it.
	_, getErr := users.GetByUsername(context.Background(), "reader")
	assert.NoError(t, getErr)
}

func TestIssueTokenUnknownUser(t *testing.T) {
	svc := newTestService(newFakeTokenRepo(), newFakeUserProvider(), &fakeNotifier{})

	_, err := svc.IssueToken(context.Background(), TokenRequest{
		Username:         "ghost",
		ConfirmationCode: "whatever",
	})

	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestIssueTokenBadCode(t *testing.T) {
	user := &UserInfo{
		ID:       "u1",
		Username: "reader",
		Email:    "reader@example.com",
		Role:     "user",
		IsActive: true,
	}
	svc := newTestService(newFakeTokenRepo(), newFakeUserProvider(user), &fakeNotifier{})

	_, err := svc.IssueToken(context.Background(), TokenRequest{
		Username:         "reader",
		ConfirmationCode: "bogus-code",
	})

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "confirmation_code")
}

func TestIssueTokenMintsPair(t *testing.T) {
	user := &UserInfo{
		ID:       "u1",
		Username: "reader",
		Email:    "reader@example.com",
		Role:     "user",
		IsActive: true,
	}
	svc, codes := newRedeemService(t, newFakeUserProvider(user))

	pair, err := svc.IssueToken(context.Background(), TokenRequest{
		Username:         "reader",
		ConfirmationCode: codes.Issue(user),
	})

	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)
}

// A confirmation code buys exactly one token pair; replaying it is a
// per-field validation error even while the code is still in its window.
func TestIssueTokenCodeRedeemsOnce(t *testing.T) {
	user := &UserInfo{
		ID:       "u1",
		Username: "reader",
		Email:    "reader@example.com",
		Role:     "user",
		IsActive: true,
	}
	svc, codes := newRedeemService(t, newFakeUserProvider(user))

	req := TokenRequest{
		Username:         "reader",
		ConfirmationCode: codes.Issue(user),
	}

	_, err := svc.IssueToken(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.IssueToken(context.Background(), req)

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "confirmation_code")
}

func TestRefreshUnknownToken(t *testing.T) {
	svc := newTestService(newFakeTokenRepo(), newFakeUserProvider(), &fakeNotifier{})

	_, err := svc.Refresh(context.Background(), "never-issued")

	assert.ErrorIs(t, err, core.ErrTokenInvalid)
}

// Reuse of a spent refresh token burns every outstanding session for
// that user.
func TestRefreshReuseRevokesAll(t *testing.T) {
	repo := newFakeTokenRepo()
	token := "stolen-refresh-token"
	repo.tokens[core.HashToken(token)] = &RefreshToken{
		ID:        "t1",
		UserID:    "u1",
		TokenHash: core.HashToken(token),
		ExpiresAt: time.Now().Add(time.Hour),
		IsUsed:    true,
	}

	svc := newTestService(repo, newFakeUserProvider(), &fakeNotifier{})

	_, err := svc.Refresh(context.Background(), token)

	assert.ErrorIs(t, err, core.ErrTokenRevoked)
	assert.Equal(t, "u1", repo.revokedUser)
}

func TestRefreshExpiredToken(t *testing.T) {
	repo := newFakeTokenRepo()
	token := "old-refresh-token"
	repo.tokens[core.HashToken(token)] = &RefreshToken{
		ID:        "t1",
		UserID:    "u1",
		TokenHash: core.HashToken(token),
		ExpiresAt: time.Now().Add(-time.Hour),
	}

	svc := newTestService(repo, newFakeUserProvider(), &fakeNotifier{})

	_, err := svc.Refresh(context.Background(), token)

	assert.ErrorIs(t, err, core.ErrTokenExpired)
}
