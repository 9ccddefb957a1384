package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEquipmentStatus_CodeRoundTrip(t *testing.T) {
	for _, s := range []EquipmentStatus{EquipmentActive, EquipmentMaintenance, EquipmentDamaged} {
		code, err := s.Code()
		require.NoError(t, err)
		back, err := EquipmentStatusFromCode(code)
		require.NoError(t, err)
		assert.Equal(t, s, back)
	}
}

func TestEquipmentStatus_CanonicalCodes(t *testing.T) {
	code, _ := EquipmentActive.Code()
	assert.Equal(t, int16(0), code)
	code, _ = EquipmentDamaged.Code()
	assert.Equal(t, int16(1), code)
	code, _ = EquipmentMaintenance.Code()
	assert.Equal(t, int16(2), code)
}

func TestEquipmentStatus_RejectsUnknown(t *testing.T) {
	_, err := EquipmentStatus("broken").Code()
	assert.Error(t, err)
	_, err = EquipmentStatusFromCode(3)
	assert.Error(t, err)
	assert.False(t, EquipmentMaintenance.IsFinalCondition())
	assert.True(t, EquipmentDamaged.IsFinalCondition())
}

func TestRoleAndApproval_IsValid(t *testing.T) {
	assert.True(t, RoleAdmin.IsValid())
	assert.False(t, Role("hod").IsValid())
	assert.True(t, ApprovalRejected.IsValid())
	assert.False(t, ApprovalStatus("maybe").IsValid())
}
