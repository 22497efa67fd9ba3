package authservice

import (
	"errors"
	"time"

	"github.com/yushengtzou/yushengtzou.github.io/internal/common"
)

const (
	DefaultUsername = "admin"
	// DefaultTokenTTL is how long an admin session token stays valid.
	DefaultTokenTTL time.Duration = 24 * time.Hour

	bcryptCost = 12
)

var (
	ErrAuthenticationFailure = errors.New("invalid authentication credentials")
	ErrInvalidToken          = errors.New("invalid or expired authentication token")
	ErrInvalidPasswordHash   = errors.New("admin password hash is not a valid bcrypt hash")
)

var (
	AnonymousAdmin = Admin{}
)

type Authenticator struct {
	username     string
	passwordHash []byte
	ttl          time.Duration
	c            *common.Cache
}

type Admin struct {
	Username string `json:"username"`
}

type Token struct {
	Plain  string    `json:"token"`
	Hash   []byte    `json:"-"`
	Expiry time.Time `json:"expiry"`
}

type session struct {
	admin  Admin
	expiry time.Time
}
