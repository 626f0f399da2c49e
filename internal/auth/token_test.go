package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	issuer := NewIssuer("access", "refresh", time.Hour, 24*time.Hour)
	id := uuid.New()

	pair, err := issuer.Issue(id, RoleVendor)
	require.NoError(t, err)

	claims, err := issuer.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.Equal(t, RoleVendor, claims.Role)

	refreshID, err := issuer.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, id, refreshID)

	// tokens are signed with different secrets
	_, err = issuer.ParseAccess(pair.RefreshToken)
	assert.Error(t, err)
	_, err = issuer.ParseRefresh(pair.AccessToken)
	assert.Error(t, err)
}

func TestRefreshTokensAreUnique(t *testing.T) {
	issuer := NewIssuer("access", "refresh", time.Hour, time.Hour)
	id := uuid.New()

	first, err := issuer.Issue(id, RoleCustomer)
	require.NoError(t, err)
	second, err := issuer.Issue(id, RoleCustomer)
	require.NoError(t, err)

	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
}

func TestParseAccessExpired(t *testing.T) {
	issuer := NewIssuer("access", "refresh", time.Minute, time.Minute)
	issuer.now = func() time.Time { return time.Now().Add(-time.Hour) }

	pair, err := issuer.Issue(uuid.New(), RoleCustomer)
	require.NoError(t, err)

	_, err = issuer.ParseAccess(pair.AccessToken)
	assert.Error(t, err)
}
