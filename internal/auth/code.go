// AngelaMos | 2026
// code.go

package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/ayavrik/yamdb-final/internal/config"
	"github.com/ayavrik/yamdb-final/internal/core"
)

// CodeIssuer mints and verifies signup confirmation codes. Codes are
// stateless: an expiry and an HMAC over the user's current account state,
// so nothing is stored at issue time and any account change (username,
// email, role, deactivation) invalidates codes already in flight.
type CodeIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewCodeIssuer(cfg config.CodeConfig) *CodeIssuer {
	return &CodeIssuer{
		secret: []byte(cfg.Secret),
		ttl:    cfg.TTL,
		now:    time.Now,
	}
}

// Issue returns a code of the form <expiry-base36>-<signature>.
func (c *CodeIssuer) Issue(u *UserInfo) string {
	expiresAt := c.now().Add(c.ttl).Unix()
	stamp := strconv.FormatInt(expiresAt, 36)
	return stamp + "-" + c.sign(u, stamp)
}

// Verify checks the signature and expiry of a code against the user's
// current state. It returns the code's expiry so callers can park the
// redeemed code for the remainder of its window.
func (c *CodeIssuer) Verify(u *UserInfo, code string) (time.Time, error) {
	stamp, signature, found := strings.Cut(code, "-")
	if !found {
		return time.Time{}, core.ErrInvalidInput
	}

	expiresUnix, err := strconv.ParseInt(stamp, 36, 64)
	if err != nil {
		return time.Time{}, core.ErrInvalidInput
	}

	if !core.VerifyHMAC(c.secret, c.payload(u, stamp), signature) {
		return time.Time{}, core.ErrInvalidInput
	}

	expiresAt := time.Unix(expiresUnix, 0)
	if c.now().After(expiresAt) {
		return time.Time{}, core.ErrTokenExpired
	}

	return expiresAt, nil
}

func (c *CodeIssuer) sign(u *UserInfo, stamp string) string {
	return core.SignHMAC(c.secret, c.payload(u, stamp))
}

func (c *CodeIssuer) payload(u *UserInfo, stamp string) string {
	return u.ID + "|" + stateHash(u) + "|" + stamp
}

func stateHash(u *UserInfo) string {
	state := strings.Join([]string{
		u.Username,
		u.Email,
		u.Role,
		strconv.FormatBool(u.IsActive),
	}, "\x00")

	sum := sha256.Sum256([]byte(state))
	return hex.EncodeToString(sum[:])
}
