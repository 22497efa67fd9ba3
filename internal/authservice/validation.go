package authservice

import (
	"github.com/yushengtzou/yushengtzou.github.io/internal/common"
)

func validateUsername(v *common.Validator, username string) {
	v.Check(username != "", "username", "must be provided")
}

func validatePassword(v *common.Validator, password string) {
	v.Check(password != "", "password", "must be provided")
	v.Check(len(password) <= 72, "password", "must not be more than 72 bytes long")
}

func ValidateToken(v *common.Validator, token string) {
	v.Check(token != "", "token", "must be provided")
	v.Check(len(token) == 26, "token", "invalid token")
}
