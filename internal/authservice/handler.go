package authservice

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/yushengtzou/yushengtzou.github.io/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// NewAuthenticator returns an authenticator for the single admin account. An empty passwordHash
// disables authentication entirely.
func NewAuthenticator(username, passwordHash string, ttl time.Duration, c *common.Cache) (*Authenticator, error) {
	if username == "" {
		username = DefaultUsername
	}

	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	a := &Authenticator{username: username, ttl: ttl, c: c}

	if passwordHash != "" {
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, ErrInvalidPasswordHash
		}
		a.passwordHash = []byte(passwordHash)
	}

	return a, nil
}

// Enabled reports whether write operations require an admin token.
func (a *Authenticator) Enabled() bool {
	return len(a.passwordHash) > 0
}

// Login checks the admin credentials and issues a session token.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*Token, error) {
	v := common.NewValidator()
	validateUsername(v, username)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if !a.Enabled() {
		return nil, ErrAuthenticationFailure
	}

	// The password is always compared so a wrong username takes as long as a wrong password.
	ok, err := comparePassword(a.passwordHash, password)
	if err != nil {
		return nil, err
	}

	if !ok || subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) != 1 {
		return nil, ErrAuthenticationFailure
	}

	token, err := newToken(a.ttl)
	if err != nil {
		return nil, err
	}

	a.c.Set(common.CacheKeySession(token.Hash), session{admin: Admin{Username: a.username}, expiry: token.Expiry}, a.ttl)

	return token, nil
}

// Authenticate returns the admin owning token.
func (a *Authenticator) Authenticate(token string) (*Admin, error) {
	v := common.NewValidator()
	ValidateToken(v, token)
	if !v.Valid() {
		return nil, ErrInvalidToken
	}

	value, ok := a.c.Get(common.CacheKeySession(hashToken(token)))
	if !ok {
		return nil, ErrInvalidToken
	}

	s, ok := value.(session)
	if !ok || !s.expiry.After(time.Now()) {
		return nil, ErrInvalidToken
	}

	admin := s.admin
	return &admin, nil
}

// Logout revokes token. Revoking an unknown token is not an error.
func (a *Authenticator) Logout(token string) error {
	v := common.NewValidator()
	ValidateToken(v, token)
	if !v.Valid() {
		return ErrInvalidToken
	}

	a.c.Delete(common.CacheKeySession(hashToken(token)))
	return nil
}

func (a *Admin) IsAnonymous() bool {
	return a == &AnonymousAdmin
}
