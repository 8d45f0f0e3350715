package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	m, st := seededManager(t)

	u, err := m.CreateUser(" frank ", "")
	require.NoError(t, err)
	assert.Equal(t, "frank", u.Username)
	assert.False(t, u.HasPassword())
	assert.NotNil(t, u.Photos)
	assert.Equal(t, 1, st.saves)

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"empty", " ", ErrInvalidInput},
		{"duplicate", "frank", ErrDuplicateName},
		{"reserved admin", "ADMIN", ErrDuplicateName},
		{"existing stock", "stock", ErrDuplicateName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.CreateUser(tt.input, "")
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err = m.CreateUser("Frank", "")
	require.NoError(t, err, "usernames are case-sensitive")
	assert.Len(t, m.Users(), 4)
}

func TestDeleteUser(t *testing.T) {
	m, _ := seededManager(t)
	_, err := m.CreateUser("gina", "")
	require.NoError(t, err)

	require.ErrorIs(t, m.DeleteUser("admin"), ErrForbidden)
	require.ErrorIs(t, m.DeleteUser("stock"), ErrForbidden)
	require.ErrorIs(t, m.DeleteUser("nobody"), ErrNotFound)

	require.NoError(t, m.DeleteUser("gina"))
	_, ok := m.Catalog().User("gina")
	assert.False(t, ok)
}

func TestSetPassword(t *testing.T) {
	m, _ := seededManager(t)
	u, err := m.CreateUser("hank", "")
	require.NoError(t, err)

	require.NoError(t, m.SetPassword(u, "pw"))
	assert.True(t, u.HasPassword())
	assert.NotEqual(t, "pw", u.PasswordHash)
	require.NoError(t, checkPassword(u, "pw"))
	require.ErrorIs(t, checkPassword(u, "nope"), ErrInvalidCredentials)

	require.NoError(t, m.SetPassword(u, ""))
	assert.False(t, u.HasPassword())
}
