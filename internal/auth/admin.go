package auth

import (
	"golang.org/x/crypto/bcrypt"

	"econsim/internal/config"
	"econsim/internal/types"
)

// AdminKeyChecker verifies the management key gating the artifact reload
// endpoint. Only a bcrypt hash of the key is held in configuration.
type AdminKeyChecker struct {
	hash []byte
}

// NewAdminKeyChecker builds a checker from the security configuration.
// An empty hash disables admin access entirely.
func NewAdminKeyChecker(cfg config.SecurityConfig) *AdminKeyChecker {
	var hash []byte
	if cfg.AdminKeyHash.Unmask() != "" {
		hash = []byte(cfg.AdminKeyHash.Unmask())
	}
	return &AdminKeyChecker{hash: hash}
}

// Configured reports whether an admin key hash is present.
func (c *AdminKeyChecker) Configured() bool {
	return len(c.hash) > 0
}

// Check compares the presented key against the stored bcrypt hash.
func (c *AdminKeyChecker) Check(presented string) error {
	if !c.Configured() {
		return types.NewAppError(
			types.ErrCodeAuthNotConfigured,
			"admin access is not configured",
			nil,
		)
	}
	if err := bcrypt.CompareHashAndPassword(c.hash, []byte(presented)); err != nil {
		return types.NewAppError(
			types.ErrCodeAuthTokenInvalid,
			"invalid admin key",
			err,
		)
	}
	return nil
}
