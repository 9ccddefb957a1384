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
)

func seedInbox(t *testing.T, st *fakeStore) {
	t.Helper()
	repo := &fakeNotificationRepo{st: st}
	for _, n := range []entities.Notification{
		{UserRole: constants.RoleLabAssistant, StaffID: 7, Title: "Request Created"},
		{UserRole: constants.RoleLabAssistant, StaffID: 8, Title: "Request Created"},
		{UserRole: constants.RoleAdmin, StaffID: 7, Title: "Approval Required"},
		{UserRole: constants.RoleAdmin, StaffID: 8, Title: "Approval Required"},
	} {
		n := n
		_, err := repo.CreateInTx(context.Background(), nil, &n)
		require.NoError(t, err)
	}
}

func TestNotificationService_ScopesByActor(t *testing.T) {
	st := newFakeStore()
	seedInbox(t, st)
	svc := NewNotificationService(&fakeNotificationRepo{st: st}, zap.NewNop())

	assistant := utils.WithActor(context.Background(), types.Actor{Role: constants.RoleLabAssistant, StaffID: 7})
	list, err := svc.List(assistant, types.Filter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, uint64(7), list[0].StaffID)

	admin := utils.WithActor(context.Background(), types.Actor{Role: constants.RoleAdmin, StaffID: 1})
	list, err = svc.List(admin, types.Filter{})
	require.NoError(t, err)
	assert.Len(t, list, 2, "администратор видит все уведомления роли admin")

	_, err = svc.List(context.Background(), types.Filter{})
	assert.ErrorIs(t, err, apperrors.ErrActorNotFoundInContext)
}

func TestNotificationService_MarkReadAndDelete(t *testing.T) {
	st := newFakeStore()
	seedInbox(t, st)
	svc := NewNotificationService(&fakeNotificationRepo{st: st}, zap.NewNop())
	assistant := utils.WithActor(context.Background(), types.Actor{Role: constants.RoleLabAssistant, StaffID: 7})

	count, err := svc.CountUnread(assistant)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	own := st.notificationList()[0].ID
	foreign := st.notificationList()[1].ID

	require.NoError(t, svc.MarkRead(assistant, own))
	count, err = svc.CountUnread(assistant)
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.ErrorIs(t, svc.MarkRead(assistant, foreign), apperrors.ErrNotFound, "чужое уведомление")
	assert.ErrorIs(t, svc.Delete(assistant, foreign), apperrors.ErrNotFound)

	require.NoError(t, svc.Delete(assistant, own))
	assert.Len(t, st.notificationList(), 3)
}

func TestReportService_AdminOnly(t *testing.T) {
	repo := &fakeRequestRepo{st: newFakeStore(), pending: []dto.AdminRequestDTO{
		{ID: 1, CurrentStep: 5, CompletedSteps: 4, AdminApprovalStatus: "pending"},
	}}
	svc := NewReportService(repo, zap.NewNop())

	admin := utils.WithActor(context.Background(), types.Actor{Role: constants.RoleAdmin, StaffID: 1})
	list, err := svc.PendingApprovals(admin)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	count, err := svc.CountPendingApprovals(admin)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	incharge := utils.WithActor(context.Background(), types.Actor{Role: constants.RoleLabInCharge, StaffID: 7})
	_, err = svc.GetReport(incharge, types.Filter{})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
