// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ayavrik/yamdb-final/internal/core"
)

const reservedUsername = "me"

const redeemedKeyPrefix = "code:redeemed:"

// UserInfo is the slice of a user account the handshake needs. The user
// package implements UserProvider against its own entity.
type UserInfo struct {
	ID       string
	Username string
	Email    string
	Role     string
	IsActive bool
}

type UserProvider interface {
	GetByUsername(ctx context.Context, username string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	// EnsureSignup creates the pre-activation row, or returns the
	// existing one when the same (username, email) pair signs up again.
	EnsureSignup(ctx context.Context, username, email string) (*UserInfo, error)
}

// Notifier delivers the confirmation code to the user's mailbox.
type Notifier interface {
	SendConfirmationCode(
		ctx context.Context,
		email, username, code string,
	) error
}

// CodeLedger parks redeemed confirmation-code hashes for the rest of
// their validity window. *redis.Client satisfies it.
type CodeLedger interface {
	SetNX(
		ctx context.Context,
		key string,
		value any,
		expiration time.Duration,
	) *redis.BoolCmd
}

type Service struct {
	repo     Repository
	jwt      *JWTManager
	codes    *CodeIssuer
	users    UserProvider
	notifier Notifier
	ledger   CodeLedger
}

func NewService(
	repo Repository,
	jwt *JWTManager,
	codes *CodeIssuer,
	users UserProvider,
	notifier Notifier,
	ledger CodeLedger,
) *Service {
	return &Service{
		repo:     repo,
		jwt:      jwt,
		codes:    codes,
		users:    users,
		notifier: notifier,
		ledger:   ledger,
	}
}

// Signup creates (or reuses) the account row and mails a confirmation
// code. Delivery failure fails the whole request; the row is retained so
// a retry reissues against the same account.
func (s *Service) Signup(
	ctx context.Context,
	req SignupRequest,
) (*SignupResponse, error) {
	if req.Username == reservedUsername {
		return nil, core.FieldError(
			"username",
			`"me" is a reserved username`,
		)
	}

	user, err := s.users.EnsureSignup(ctx, req.Username, req.Email)
	if err != nil {
		return nil, err
	}

	code := s.codes.Issue(user)

	if err := s.notifier.SendConfirmationCode(
		ctx,
		user.Email,
		user.Username,
		code,
	); err != nil {
		return nil, fmt.Errorf("deliver confirmation code: %w", err)
	}

	return &SignupResponse{
		Username: user.Username,
		Email:    user.Email,
	}, nil
}

// IssueToken exchanges a confirmation code for a token pair. Each code
// redeems once: its hash is parked in redis for the rest of its window.
func (s *Service) IssueToken(
	ctx context.Context,
	req TokenRequest,
) (*TokenPairResponse, error) {
	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	expiresAt, err := s.codes.Verify(user, req.ConfirmationCode)
	if err != nil {
		return nil, core.FieldError(
			"confirmation_code",
			"invalid or expired confirmation code",
		)
	}

	key := redeemedKeyPrefix + core.HashToken(req.ConfirmationCode)
	fresh, err := s.ledger.SetNX(ctx, key, "1", time.Until(expiresAt)).Result()
	if err != nil {
		return nil, fmt.Errorf("record code redemption: %w", err)
	}
	if !fresh {
		return nil, core.FieldError(
			"confirmation_code",
			"confirmation code already redeemed",
		)
	}

	return s.mintPair(ctx, user, nil)
}

// Refresh rotates a refresh token: the old one is single-use, and reuse
// of a spent token revokes every outstanding session for that user.
func (s *Service) Refresh(
	ctx context.Context,
	refreshToken string,
) (*TokenPairResponse, error) {
	storedToken, err := s.repo.FindByHash(ctx, core.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("find token: %w", err)
	}

	if storedToken.IsUsed {
		//nolint:errcheck // security revocation continues regardless
		_ = s.repo.RevokeAllForUser(ctx, storedToken.UserID)
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
	}

	if !storedToken.IsValid() {
		if storedToken.IsRevoked() {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
		}
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenExpired)
	}

	user, err := s.users.GetByID(ctx, storedToken.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return s.mintPair(ctx, user, &storedToken.ID)
}

func (s *Service) mintPair(
	ctx context.Context,
	user *UserInfo,
	oldTokenID *string,
) (*TokenPairResponse, error) {
	accessToken, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	refreshData, err := s.jwt.CreateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	newTokenID := uuid.New().String()

	if err := s.repo.Create(ctx, &RefreshToken{
		ID:        newTokenID,
		UserID:    user.ID,
		TokenHash: refreshData.Hash,
		ExpiresAt: refreshData.ExpiresAt,
	}); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	if oldTokenID != nil {
		//nolint:errcheck // best-effort token chain tracking
		_ = s.repo.MarkAsUsed(ctx, *oldTokenID, newTokenID)
	}

	return &TokenPairResponse{
		Access:  accessToken,
		Refresh: refreshData.Token,
	}, nil
}
