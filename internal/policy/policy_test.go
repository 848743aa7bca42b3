package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taskboard/internal/domain"
)

var (
	admin = Identity{UserID: "admin-id", Role: domain.RoleAdmin}
	alice = Identity{UserID: "alice-id", Role: domain.RoleUser}
)

func TestCanCreateTask(t *testing.T) {
	assert.True(t, CanCreateTask(admin, "someone-else"))
	assert.True(t, CanCreateTask(alice, "alice-id"))
	assert.False(t, CanCreateTask(alice, "someone-else"))
}

func TestCanAccessTask(t *testing.T) {
	assert.True(t, CanAccessTask(admin, "someone-else"))
	assert.True(t, CanAccessTask(alice, "alice-id"))
	assert.False(t, CanAccessTask(alice, "someone-else"))
}

func TestTaskOwnerFilter(t *testing.T) {
	const wellFormed = "3e8f0b9e-0a50-4dbd-9a41-2bd061c9a2f0"

	tests := []struct {
		name      string
		caller    Identity
		requested string
		want      string
	}{
		{name: "admin without filter sees all", caller: admin, requested: "", want: ""},
		{name: "admin with valid filter", caller: admin, requested: wellFormed, want: wellFormed},
		{name: "admin with malformed filter", caller: admin, requested: "drop table", want: ""},
		{name: "non-admin is pinned to self", caller: alice, requested: "", want: "alice-id"},
		{name: "non-admin filter is ignored", caller: alice, requested: wellFormed, want: "alice-id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TaskOwnerFilter(tt.caller, tt.requested))
		})
	}
}

func TestUserPolicies(t *testing.T) {
	assert.True(t, CanManageUsers(admin))
	assert.False(t, CanManageUsers(alice))

	assert.True(t, CanAccessUser(admin, "anyone"))
	assert.True(t, CanAccessUser(alice, "alice-id"))
	assert.False(t, CanAccessUser(alice, "someone-else"))

	assert.True(t, AllowRoleChange(admin))
	assert.False(t, AllowRoleChange(alice))
}
