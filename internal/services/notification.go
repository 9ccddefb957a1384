package services

import (
	"context"

	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/repositories"
	"maintenance-system/pkg/constants"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/types"
	"maintenance-system/pkg/utils"
)

type NotificationServiceInterface interface {
	List(ctx context.Context, filter types.Filter) ([]dto.NotificationDTO, error)
	CountUnread(ctx context.Context) (uint64, error)
	MarkRead(ctx context.Context, id uint64) error
	Delete(ctx context.Context, id uint64) error
}

// NotificationService - уведомления текущего участника.
type NotificationService struct {
	notificationRepo repositories.NotificationRepositoryInterface
	logger           *zap.Logger
}

func NewNotificationService(notificationRepo repositories.NotificationRepositoryInterface, logger *zap.Logger) NotificationServiceInterface {
	return &NotificationService{notificationRepo: notificationRepo, logger: logger}
}

// recipient: администратор видит все уведомления роли admin, остальные - только свои.
func recipient(actor types.Actor) (constants.Role, uint64) {
	if actor.Role == constants.RoleAdmin {
		return actor.Role, 0
	}
	return actor.Role, actor.StaffID
}

func (s *NotificationService) List(ctx context.Context, filter types.Filter) ([]dto.NotificationDTO, error) {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	role, staffID := recipient(actor)
	list, err := s.notificationRepo.ListByRecipient(ctx, role, staffID, filter)
	if err != nil {
		s.logger.Error("Ошибка получения уведомлений", zap.Error(err))
		return nil, apperrors.NewStorageError("ListNotifications", err)
	}
	return list, nil
}

func (s *NotificationService) CountUnread(ctx context.Context) (uint64, error) {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return 0, err
	}
	role, staffID := recipient(actor)
	count, err := s.notificationRepo.CountUnread(ctx, role, staffID)
	if err != nil {
		s.logger.Error("Ошибка подсчёта уведомлений", zap.Error(err))
		return 0, apperrors.NewStorageError("CountUnread", err)
	}
	return count, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id uint64) error {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return err
	}
	role, staffID := recipient(actor)
	return s.storageOrDomain("MarkRead", s.notificationRepo.MarkRead(ctx, id, role, staffID))
}

func (s *NotificationService) Delete(ctx context.Context, id uint64) error {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return err
	}
	role, staffID := recipient(actor)
	return s.storageOrDomain("DeleteNotification", s.notificationRepo.Delete(ctx, id, role, staffID))
}

func (s *NotificationService) storageOrDomain(op string, err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	s.logger.Error("Ошибка хранилища уведомлений", zap.String("operation", op), zap.Error(err))
	return apperrors.NewStorageError(op, err)
}
