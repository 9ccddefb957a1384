package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintenance-system/pkg/constants"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/types"
)

func TestJWT_RoundTrip(t *testing.T) {
	svc := NewJWTService("secret")
	token, err := svc.GenerateToken(types.Actor{Role: constants.RoleLabInCharge, StaffID: 12}, time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	actor, err := claims.Actor()
	require.NoError(t, err)
	assert.Equal(t, types.Actor{Role: constants.RoleLabInCharge, StaffID: 12}, actor)
}

func TestJWT_Rejects(t *testing.T) {
	svc := NewJWTService("secret")

	expired, err := svc.GenerateToken(types.Actor{Role: constants.RoleAdmin, StaffID: 1}, -time.Minute)
	require.NoError(t, err)
	_, err = svc.ValidateToken(expired)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)

	foreign, err := NewJWTService("other").GenerateToken(types.Actor{Role: constants.RoleAdmin, StaffID: 1}, time.Hour)
	require.NoError(t, err)
	_, err = svc.ValidateToken(foreign)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	unknownRole, err := svc.GenerateToken(types.Actor{Role: "hod", StaffID: 1}, time.Hour)
	require.NoError(t, err)
	claims, err := svc.ValidateToken(unknownRole)
	require.NoError(t, err)
	_, err = claims.Actor()
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
