package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	"maintenance-system/internal/repositories"
	"maintenance-system/pkg/constants"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/utils"
)

// RecipientDirectoryInterface - справочник контактов получателей уведомлений.
// Настройки читаются и меняются только для участника из контекста.
type RecipientDirectoryInterface interface {
	Find(ctx context.Context, role constants.Role, staffID uint64) (*entities.Recipient, error)
	GetPreferences(ctx context.Context) (*dto.NotificationPreferencesDTO, error)
	UpdatePreferences(ctx context.Context, payload dto.UpdateNotificationPreferencesDTO) (*dto.NotificationPreferencesDTO, error)
}

// RecipientDirectory читает контакты через кеш. cache может быть nil, ошибки кеша не фатальны.
type RecipientDirectory struct {
	recipientRepo repositories.RecipientRepositoryInterface
	cache         repositories.CacheRepositoryInterface
	ttl           time.Duration
	logger        *zap.Logger
}

func NewRecipientDirectory(
	recipientRepo repositories.RecipientRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	ttl time.Duration,
	logger *zap.Logger,
) RecipientDirectoryInterface {
	return &RecipientDirectory{recipientRepo: recipientRepo, cache: cache, ttl: ttl, logger: logger}
}

func recipientCacheKey(role constants.Role, staffID uint64) string {
	return fmt.Sprintf(constants.CacheKeyRecipient, role, staffID)
}

func (d *RecipientDirectory) Find(ctx context.Context, role constants.Role, staffID uint64) (*entities.Recipient, error) {
	key := recipientCacheKey(role, staffID)

	if d.cache != nil {
		cached, err := d.cache.Get(ctx, key)
		if err == nil {
			var rc entities.Recipient
			if err := json.Unmarshal([]byte(cached), &rc); err == nil {
				return &rc, nil
			}
			d.logger.Warn("Повреждённая запись кеша получателя", zap.String("key", key))
		} else if !errors.Is(err, repositories.ErrCacheMiss) {
			d.logger.Warn("Кеш недоступен, читаем из БД", zap.String("key", key), zap.Error(err))
		}
	}

	rc, err := d.recipientRepo.FindRecipient(ctx, role, staffID)
	if err != nil {
		return nil, err
	}

	if d.cache != nil && d.ttl > 0 {
		if data, err := json.Marshal(rc); err == nil {
			if err := d.cache.Set(ctx, key, data, d.ttl); err != nil {
				d.logger.Warn("Не удалось записать получателя в кеш", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return rc, nil
}

func (d *RecipientDirectory) GetPreferences(ctx context.Context) (*dto.NotificationPreferencesDTO, error) {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	rc, err := d.recipientRepo.FindRecipient(ctx, actor.Role, actor.StaffID)
	if err != nil {
		return nil, err
	}
	return &dto.NotificationPreferencesDTO{NotifyEmail: rc.NotifyEmail}, nil
}

// UpdatePreferences пишет флаг в БД и сбрасывает кеш, следующая рассылка видит новое значение.
func (d *RecipientDirectory) UpdatePreferences(ctx context.Context, payload dto.UpdateNotificationPreferencesDTO) (*dto.NotificationPreferencesDTO, error) {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if payload.NotifyEmail == nil {
		return nil, apperrors.NewFieldError("notify_email", "обязательное поле")
	}

	staffIDs, err := d.recipientRepo.UpdateNotifyEmail(ctx, actor.Role, actor.StaffID, *payload.NotifyEmail)
	if err != nil {
		return nil, err
	}

	if d.cache != nil {
		keys := make([]string, 0, len(staffIDs))
		for _, id := range staffIDs {
			keys = append(keys, recipientCacheKey(actor.Role, id))
		}
		if err := d.cache.Del(ctx, keys...); err != nil {
			d.logger.Error("Не удалось сбросить кеш получателя", zap.Strings("keys", keys), zap.Error(err))
		}
	}

	d.logger.Info("Настройки уведомлений обновлены",
		zap.String("role", actor.Role.String()),
		zap.Uint64("staff_id", actor.StaffID),
		zap.Bool("notify_email", *payload.NotifyEmail))
	return &dto.NotificationPreferencesDTO{NotifyEmail: *payload.NotifyEmail}, nil
}
