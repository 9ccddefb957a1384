package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	"maintenance-system/pkg/constants"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/types"
	"maintenance-system/pkg/utils"
	"maintenance-system/pkg/validation"
)

func newEquipmentService(st *fakeStore) EquipmentServiceInterface {
	return NewEquipmentService(&fakeTxManager{st: st}, &fakeEquipmentRepo{st: st}, &fakeRequestRepo{st: st}, validation.New(), zap.NewNop())
}

func TestOverrideStatus(t *testing.T) {
	st := newFakeStore()
	st.addEquipment(1, constants.EquipmentDamaged)
	svc := newEquipmentService(st)
	admin := utils.WithActor(context.Background(), types.Actor{Role: constants.RoleAdmin, StaffID: 1})

	got, err := svc.OverrideStatus(admin, 1, dto.UpdateEquipmentStatusDTO{Status: "active"})
	require.NoError(t, err)
	assert.Equal(t, "active", got.Status)
	assert.Equal(t, constants.EquipmentActive, st.equipmentStatus(1))

	_, err = svc.OverrideStatus(admin, 1, dto.UpdateEquipmentStatusDTO{Status: "broken"})
	var ve *apperrors.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = svc.OverrideStatus(admin, 404, dto.UpdateEquipmentStatusDTO{Status: "active"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestOverrideStatus_OnlyAdmin(t *testing.T) {
	st := newFakeStore()
	st.addEquipment(1, constants.EquipmentActive)
	svc := newEquipmentService(st)
	assistant := utils.WithActor(context.Background(), types.Actor{Role: constants.RoleLabAssistant, StaffID: 7})

	_, err := svc.OverrideStatus(assistant, 1, dto.UpdateEquipmentStatusDTO{Status: "damaged"})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.Equal(t, constants.EquipmentActive, st.equipmentStatus(1))
}

func TestOverrideStatus_BlockedByOpenRequest(t *testing.T) {
	st := newFakeStore()
	st.addEquipment(1, constants.EquipmentMaintenance)
	st.requests[10] = entities.Request{ID: 10, EquipmentID: 1, StaffID: 7}
	svc := newEquipmentService(st)
	admin := utils.WithActor(context.Background(), types.Actor{Role: constants.RoleAdmin, StaffID: 1})

	_, err := svc.OverrideStatus(admin, 1, dto.UpdateEquipmentStatusDTO{Status: "active"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, constants.EquipmentMaintenance, st.equipmentStatus(1))
}

func TestGetStatus(t *testing.T) {
	st := newFakeStore()
	st.addEquipment(5, constants.EquipmentDamaged)
	svc := newEquipmentService(st)

	got, err := svc.GetStatus(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, &dto.EquipmentStatusDTO{EquipmentID: 5, Status: "damaged"}, got)

	_, err = svc.GetStatus(context.Background(), 6)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSetStatusInTx_RejectsUnknownStatus(t *testing.T) {
	st := newFakeStore()
	st.addEquipment(1, constants.EquipmentActive)

	err := newEquipmentService(st).SetStatusInTx(context.Background(), nil, 1, "retired")
	var ve *apperrors.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestListByLab(t *testing.T) {
	st := newFakeStore()
	st.addEquipment(1, constants.EquipmentActive)
	st.addEquipment(2, constants.EquipmentDamaged)

	list, err := newEquipmentService(st).ListByLab(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = newEquipmentService(st).ListByLab(context.Background(), 99)
	require.NoError(t, err)
	assert.Empty(t, list)
}
