package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsStrongPassword(t *testing.T) {
	assert.True(t, IsStrongPassword("Str0ng!pass"))
	assert.True(t, IsStrongPassword("Abcdefg#"))
	assert.False(t, IsStrongPassword("Abc#"), "too short")
	assert.False(t, IsStrongPassword("abcdefg#"), "no uppercase")
	assert.False(t, IsStrongPassword("ABCDEFG#"), "no lowercase")
	assert.False(t, IsStrongPassword("Abcdefgh"), "no special character")
}

func TestValidateStruct(t *testing.T) {
	type signup struct {
		Name     string `validate:"required,max=5"`
		Email    string `validate:"required,mailformat"`
		Password string `validate:"required,strongpassword"`
	}

	assert.NoError(t, ValidateStruct(signup{Name: "Eve", Email: "eve@example.com", Password: "Str0ng!pass"}))

	err := ValidateStruct(signup{Name: "Evelyn", Email: "nope", Password: "weak"})
	require.Error(t, err)
	appErr, ok := AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Message, "name must be at most 5 characters")
	assert.Contains(t, appErr.Message, "Please enter a valid email address.")
	assert.Contains(t, appErr.Message, "Password requirements are not met.")
}
