package types

import "maintenance-system/pkg/constants"

// Actor - аутентифицированный участник процесса: роль и сотрудник из JWT.
type Actor struct {
	Role    constants.Role `json:"role"`
	StaffID uint64         `json:"staff_id"`
}
