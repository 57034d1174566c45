// Package auth implements stateless bearer-token verification for the API.
// Tokens are HMAC-SHA256 signed statements of (subject, email, expiry)
// minted with the service signing key; verification needs no storage and
// attaches a caller Identity for the duration of one request.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"econsim/internal/config"
	"econsim/internal/types"
)

// tokenVersion prefixes every minted token so the format can evolve.
const tokenVersion = "v1"

// Verifier validates bearer tokens. A Verifier with an empty signing key is
// unconfigured: verification is unavailable rather than failing open, and
// gated routes answer with a service-unavailable outcome.
type Verifier struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewVerifier builds a Verifier from the auth configuration.
func NewVerifier(cfg config.AuthConfig) *Verifier {
	var key []byte
	if cfg.SigningKey.Unmask() != "" {
		key = []byte(cfg.SigningKey.Unmask())
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Verifier{key: key, ttl: ttl, now: time.Now}
}

// Configured reports whether a signing key is present.
func (v *Verifier) Configured() bool {
	return len(v.key) > 0
}

// Mint produces a signed token for the given subject, expiring after the
// configured TTL. Used by the mint-token tool and by tests.
func (v *Verifier) Mint(subject, email string) (string, error) {
	if !v.Configured() {
		return "", fmt.Errorf("no signing key configured")
	}
	expiry := v.now().Add(v.ttl).Unix()
	payload := fmt.Sprintf("%s|%s|%d", subject, email, expiry)
	encoded := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return tokenVersion + "." + encoded + "." + v.sign(encoded), nil
}

// Verify checks a bearer token and returns the caller Identity it asserts.
// Failures are reported as AppErrors with distinct codes:
//   - auth_not_configured when no signing key is set
//   - auth_token_invalid for malformed or tampered tokens
//   - auth_token_expired for well-signed but stale tokens
func (v *Verifier) Verify(token string) (types.Identity, error) {
	if !v.Configured() {
		return types.Identity{}, types.NewAppError(
			types.ErrCodeAuthNotConfigured,
			"token verification is not configured",
			nil,
		)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[0] != tokenVersion {
		return types.Identity{}, invalidToken(nil)
	}
	encoded, sig := parts[1], parts[2]

	if !hmac.Equal([]byte(v.sign(encoded)), []byte(sig)) {
		return types.Identity{}, invalidToken(nil)
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return types.Identity{}, invalidToken(err)
	}
	fields := strings.Split(string(raw), "|")
	if len(fields) != 3 {
		return types.Identity{}, invalidToken(nil)
	}

	expiry, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return types.Identity{}, invalidToken(err)
	}
	if v.now().After(time.Unix(expiry, 0)) {
		return types.Identity{}, types.NewAppError(
			types.ErrCodeAuthTokenExpired,
			"token has expired",
			nil,
		)
	}

	return types.Identity{Subject: fields[0], Email: fields[1]}, nil
}

func (v *Verifier) sign(encodedPayload string) string {
	mac := hmac.New(sha256.New, v.key)
	mac.Write([]byte(tokenVersion + "." + encodedPayload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func invalidToken(err error) *types.AppError {
	return types.NewAppError(
		types.ErrCodeAuthTokenInvalid,
		"invalid or expired token",
		err,
	)
}
