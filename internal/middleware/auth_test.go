package middleware

import (
	"testing"
	"time"

	"github.com/rahabenico/core/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNormalizeToken(t *testing.T) {
	assert.Equal(t, "abc", NormalizeToken("abc"))
	assert.Equal(t, "abc", NormalizeToken("  abc  "))
	assert.Equal(t, "abc", NormalizeToken("Bearer abc"))
	assert.Equal(t, "abc", NormalizeToken("bearer abc"))
	assert.Equal(t, "", NormalizeToken("   "))
}

func TestCheckPasswordPlaintext(t *testing.T) {
	assert.True(t, CheckPassword("hunter2", "hunter2"))
	assert.False(t, CheckPassword("hunter2", "wrong"))
	assert.False(t, CheckPassword("", "anything"))
	assert.False(t, CheckPassword("hunter2", ""))
}

func TestCheckPasswordBcrypt(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, CheckPassword(string(hash), "hunter2"))
	assert.False(t, CheckPassword(string(hash), "wrong"))
}

func TestValidateAdmin(t *testing.T) {
	assert.Error(t, ValidateAdmin("hunter2", ""))
	assert.Error(t, ValidateAdmin("hunter2", "wrong"))
	assert.NoError(t, ValidateAdmin("hunter2", "hunter2"))
	assert.NoError(t, ValidateAdmin("hunter2", "Bearer hunter2"))

	token, err := jwt.SignAdmin(time.Minute)
	require.NoError(t, err)
	assert.NoError(t, ValidateAdmin("hunter2", token))
	assert.NoError(t, ValidateAdmin("hunter2", "Bearer "+token))
}
