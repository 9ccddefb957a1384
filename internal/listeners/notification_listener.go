package listeners

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"maintenance-system/internal/events"
	"maintenance-system/internal/services"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/eventbus"
)

// NotificationListener доставляет письма по событиям о созданных уведомлениях.
type NotificationListener struct {
	dispatcher services.NotificationDispatcherInterface
	logger     *zap.Logger
}

func NewNotificationListener(dispatcher services.NotificationDispatcherInterface, logger *zap.Logger) *NotificationListener {
	return &NotificationListener{dispatcher: dispatcher, logger: logger}
}

func (l *NotificationListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.NotificationCreated, l.handleNotificationCreated)
	l.logger.Info("NotificationListener подписан на событие", zap.String("event", events.NotificationCreated))
}

// handleNotificationCreated никогда не возвращает ошибку доставки: переход заявки уже зафиксирован.
func (l *NotificationListener) handleNotificationCreated(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.NotificationCreatedEvent)
	if !ok {
		return nil
	}

	err := l.dispatcher.Dispatch(ctx, e.NotificationID)
	if err == nil {
		return nil
	}

	fields := []zap.Field{
		zap.Uint64("notificationID", e.NotificationID),
		zap.Uint64("requestID", e.RequestID),
		zap.String("role", e.UserRole.String()),
		zap.String("txID", e.TxID.String()),
		zap.Error(err),
	}
	var deliveryErr *apperrors.DeliveryError
	if errors.As(err, &deliveryErr) && deliveryErr.Recipient != "" {
		fields = append(fields, zap.String("recipient", deliveryErr.Recipient))
	}
	l.logger.Warn("Письмо не доставлено", fields...)
	return nil
}
