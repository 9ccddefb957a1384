package entities

import (
	"time"

	"maintenance-system/pkg/constants"
)

// Notification - один факт для конкретной роли и сотрудника.
type Notification struct {
	ID        uint64         `json:"id" db:"id"`
	UserRole  constants.Role `json:"user_role" db:"user_role"`
	StaffID   uint64         `json:"staff_id" db:"staff_id"`
	Type      string         `json:"type" db:"type"`
	Title     string         `json:"title" db:"title"`
	Message   string         `json:"message" db:"message"`
	IsRead    bool           `json:"is_read" db:"is_read"`
	RequestID uint64         `json:"request_id" db:"request_id"`
	CreatedAt time.Time      `json:"timestamp" db:"created_at"`
}

// Recipient - контакт из справочника сотрудников.
type Recipient struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	NotifyEmail bool   `json:"notify_email"`
}
