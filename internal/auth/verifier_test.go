package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"econsim/internal/config"
	"econsim/internal/types"
)

func newTestVerifier(t *testing.T) *Verifier {
	t.Helper()
	return NewVerifier(config.AuthConfig{
		SigningKey: types.SecretString("test-signing-key"),
		TokenTTL:   time.Hour,
	})
}

func requireCode(t *testing.T, err error, want types.ErrorCode) {
	t.Helper()
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, want, appErr.Code)
}

func TestVerifier_MintVerifyRoundTrip(t *testing.T) {
	v := newTestVerifier(t)

	token, err := v.Mint("user-1", "dev@example.com")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(token, "v1."))

	identity, err := v.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.Subject)
	assert.Equal(t, "dev@example.com", identity.Email)
}

func TestVerifier_TamperedToken(t *testing.T) {
	v := newTestVerifier(t)
	token, err := v.Mint("user-1", "dev@example.com")
	require.NoError(t, err)

	cases := map[string]string{
		"flipped signature byte": token[:len(token)-1] + flipChar(token[len(token)-1]),
		"garbage":                "not-a-token",
		"empty":                  "",
		"wrong version":          "v2." + strings.TrimPrefix(token, "v1."),
		"missing segment":        token[:strings.LastIndex(token, ".")],
		"swapped payload":        rewritePayload(t, v, token),
	}
	for name, tampered := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(tampered)
			requireCode(t, err, types.ErrCodeAuthTokenInvalid)
		})
	}
}

// rewritePayload swaps the payload segment for another subject's while
// keeping the original signature.
func rewritePayload(t *testing.T, v *Verifier, token string) string {
	t.Helper()
	other, err := v.Mint("attacker", "evil@example.com")
	require.NoError(t, err)
	origParts := strings.Split(token, ".")
	otherParts := strings.Split(other, ".")
	return origParts[0] + "." + otherParts[1] + "." + origParts[2]
}

func TestVerifier_ExpiredToken(t *testing.T) {
	v := newTestVerifier(t)
	token, err := v.Mint("user-1", "dev@example.com")
	require.NoError(t, err)

	v.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = v.Verify(token)
	requireCode(t, err, types.ErrCodeAuthTokenExpired)
}

func TestVerifier_KeyMismatch(t *testing.T) {
	v := newTestVerifier(t)
	token, err := v.Mint("user-1", "dev@example.com")
	require.NoError(t, err)

	other := NewVerifier(config.AuthConfig{
		SigningKey: types.SecretString("a-different-key"),
		TokenTTL:   time.Hour,
	})
	_, err = other.Verify(token)
	requireCode(t, err, types.ErrCodeAuthTokenInvalid)
}

func TestVerifier_Unconfigured(t *testing.T) {
	v := NewVerifier(config.AuthConfig{TokenTTL: time.Hour})
	assert.False(t, v.Configured())

	_, err := v.Mint("user-1", "")
	assert.Error(t, err)

	_, err = v.Verify("v1.anything.anything")
	requireCode(t, err, types.ErrCodeAuthNotConfigured)

	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 503, appErr.HTTPStatus())
}

func flipChar(c byte) string {
	if c == 'A' {
		return "B"
	}
	return "A"
}

func TestAdminKeyChecker(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("super-secret-admin-key"), bcrypt.MinCost)
	require.NoError(t, err)

	checker := NewAdminKeyChecker(config.SecurityConfig{
		AdminKeyHash: types.SecretString(string(hash)),
	})
	require.True(t, checker.Configured())

	assert.NoError(t, checker.Check("super-secret-admin-key"))

	err = checker.Check("wrong-key")
	requireCode(t, err, types.ErrCodeAuthTokenInvalid)
}

func TestAdminKeyChecker_Unconfigured(t *testing.T) {
	checker := NewAdminKeyChecker(config.SecurityConfig{})
	assert.False(t, checker.Configured())

	err := checker.Check("anything")
	requireCode(t, err, types.ErrCodeAuthNotConfigured)
}
