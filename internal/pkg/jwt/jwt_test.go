package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/domain/employee"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() Service {
	return NewJWTService("test-secret", time.Hour)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newService()

	token, expiresAt, err := svc.GenerateAccessToken("e1", employee.RoleManager)
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	decoded, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	require.NoError(t, err)

	ctx := jwtauth.NewContext(context.Background(), decoded, nil)
	claims, err := ClaimsFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, Claims{EmployeeID: "e1", Role: employee.RoleManager}, claims)
}

func TestClaimsFromContext_RejectsSSEToken(t *testing.T) {
	svc := newService()

	token, _, err := svc.GenerateSSEToken(Claims{EmployeeID: "e1", Role: employee.RoleEmployee})
	require.NoError(t, err)
	decoded, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	require.NoError(t, err)

	_, err = ClaimsFromContext(jwtauth.NewContext(context.Background(), decoded, nil))
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestSSEToken(t *testing.T) {
	svc := newService()

	token, expiresIn, err := svc.GenerateSSEToken(Claims{EmployeeID: "e1", Role: employee.RoleHR})
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	claims, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, Claims{EmployeeID: "e1", Role: employee.RoleHR}, claims)
}

func TestValidateSSEToken_Rejects(t *testing.T) {
	svc := newService()

	access, _, err := svc.GenerateAccessToken("e1", employee.RoleEmployee)
	require.NoError(t, err)
	_, err = svc.ValidateSSEToken(access)
	assert.Error(t, err, "access tokens must not open streams")

	foreign, _, err := NewJWTService("other-secret", time.Hour).GenerateSSEToken(Claims{EmployeeID: "e1", Role: employee.RoleEmployee})
	require.NoError(t, err)
	_, err = svc.ValidateSSEToken(foreign)
	assert.Error(t, err)

	_, err = svc.ValidateSSEToken("not-a-token")
	assert.Error(t, err)
}
