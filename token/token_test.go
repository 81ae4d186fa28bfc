package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestIssueAndAuthorize(t *testing.T) {
	tok, err := Issue(42, "student", testSecret)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	userID, err := Authorize(tok, "student", testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestAuthorizeRoleMismatch(t *testing.T) {
	tok, err := Issue(7, "student", testSecret)
	require.NoError(t, err)

	_, err = Authorize(tok, "admin", testSecret)
	assert.ErrorIs(t, err, ErrRoleMismatch)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	_, err := Verify("not-a-token", testSecret)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Verify("", testSecret)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tok, err := Issue(7, "admin", testSecret)
	require.NoError(t, err)

	_, err = Verify(tok, []byte("other-secret"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestVerifyRejectsExpired(t *testing.T) {
	tok, err := issueWithExpiry(7, "student", testSecret, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = Verify(tok, testSecret)
	assert.ErrorIs(t, err, ErrExpired)
}
