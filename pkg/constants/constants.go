// pkg/constants/constants.go
package constants

//============== ROLES ==============

// Role - ключ роли получателя/исполнителя. Совпадает с колонкой notifications.user_role.
type Role string

const (
	RoleLabAssistant Role = "labassistant"
	RoleLabInCharge  Role = "labincharge"
	RoleAdmin        Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleLabAssistant, RoleLabInCharge, RoleAdmin:
		return true
	}
	return false
}

//============== NOTIFICATION TYPES ==============

const (
	NotificationTypeInfo        = "info"
	NotificationTypeMaintenance = "maintenance"
	NotificationTypeApproval    = "approval"
)

//============== CACHE KEYS ==============

// Префиксы для ключей в Redis/кеше.
const (
	// Контакт получателя уведомлений.
	// Формат: notify:recipient:<role>:<staff_id> -> JSON
	CacheKeyRecipient = "notify:recipient:%s:%d"
)
