package events

import (
	"github.com/google/uuid"

	"maintenance-system/pkg/constants"
)

const NotificationCreated = "notification.created"

// NotificationCreatedEvent публикуется после коммита транзакции, создавшей уведомление.
type NotificationCreatedEvent struct {
	NotificationID uint64
	RequestID      uint64
	UserRole       constants.Role
	StaffID        uint64
	TxID           uuid.UUID
}

// Name - реализуем интерфейс eventbus.Event
func (e NotificationCreatedEvent) Name() string {
	return NotificationCreated
}
