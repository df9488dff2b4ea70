package auth_test

import (
	"testing"

	"taskmanager/backend/internal/domain/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_Sanitized(t *testing.T) {
	u := &auth.User{ID: 7, Username: "alice", PasswordHash: "$2a$10$hash", Roles: []string{auth.RoleUser}}

	out := u.Sanitized()
	require.NotNil(t, out)
	assert.Empty(t, out.PasswordHash)
	assert.Equal(t, "alice", out.Username)
	assert.Equal(t, "$2a$10$hash", u.PasswordHash)

	out.Roles[0] = auth.RoleAdmin
	assert.Equal(t, []string{auth.RoleUser}, u.Roles)

	var missing *auth.User
	assert.Nil(t, missing.Sanitized())
}
