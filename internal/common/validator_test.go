package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator(t *testing.T) {
	v := NewValidator()
	assert.True(t, v.Valid())

	v.Check(NotBlank("   "), "title", "must be provided")
	v.Check(false, "title", "second message is ignored")
	v.Check(NotBlank("content"), "content", "must be provided")

	assert.False(t, v.Valid())
	assert.Equal(t, map[string]string{"title": "must be provided"}, v.Errors)

	err := v.ValidationError()
	var vErr ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Equal(t, "must be provided", vErr.Errors["title"])
}

func TestCheckStringLength(t *testing.T) {
	v := NewValidator()

	assert.True(t, v.CheckStringLength("難與不難", 1, 4))
	assert.False(t, v.CheckStringLength("abcde", 1, 4))
	assert.False(t, v.CheckStringLength("", 1, 4))
}

func TestPermittedValue(t *testing.T) {
	assert.True(t, PermittedValue("file", "file", "postgres"))
	assert.False(t, PermittedValue("sqlite", "file", "postgres"))
}
