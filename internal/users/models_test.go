package users

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole("ADMIN"))
	assert.True(t, IsValidRole("STAFF"))
	assert.True(t, IsValidRole("USER"))
	assert.False(t, IsValidRole("admin"))
	assert.False(t, IsValidRole("ROOT"))
}

func TestUser_BeforeCreate(t *testing.T) {
	user := &User{}
	require.NoError(t, user.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, RoleUser, user.Role)

	staff := &User{Role: RoleStaff}
	require.NoError(t, staff.BeforeCreate(nil))
	assert.Equal(t, RoleStaff, staff.Role)

	err := (&User{Role: "staff"}).BeforeCreate(nil)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestStaffRoles(t *testing.T) {
	assert.ElementsMatch(t, []string{"ADMIN", "STAFF"}, StaffRoles())
}
