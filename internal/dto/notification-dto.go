package dto

import "time"

// NotificationDTO - уведомление вместе с оборудованием заявки.
type NotificationDTO struct {
	ID            uint64    `json:"id"`
	UserRole      string    `json:"user_role"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	IsRead        bool      `json:"is_read"`
	Timestamp     time.Time `json:"timestamp"`
	RequestID     uint64    `json:"request_id"`
	StaffID       uint64    `json:"staff_id"`
	EquipmentID   uint64    `json:"equipment_id"`
	EquipmentName string    `json:"equipment_name"`
}

// NotificationPreferencesDTO - настройки уведомлений текущего участника.
type NotificationPreferencesDTO struct {
	NotifyEmail bool `json:"notify_email"`
}

// UpdateNotificationPreferencesDTO: указатель отличает false от пропущенного поля.
type UpdateNotificationPreferencesDTO struct {
	NotifyEmail *bool `json:"notify_email"`
}
