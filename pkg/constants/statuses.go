package constants

import "fmt"

// --- СТАТУСЫ ОБОРУДОВАНИЯ ---

// EquipmentStatus - тройное состояние работоспособности единицы оборудования.
type EquipmentStatus string

const (
	EquipmentActive      EquipmentStatus = "active"
	EquipmentMaintenance EquipmentStatus = "maintenance"
	EquipmentDamaged     EquipmentStatus = "damaged"
)

// Коды в БД (equipments.status). Единственное допустимое соответствие.
const (
	EquipmentActiveCode      int16 = 0
	EquipmentDamagedCode     int16 = 1
	EquipmentMaintenanceCode int16 = 2
)

func (s EquipmentStatus) IsValid() bool {
	switch s {
	case EquipmentActive, EquipmentMaintenance, EquipmentDamaged:
		return true
	}
	return false
}

// IsFinalCondition - состояние, в котором оборудование может остаться после закрытия заявки.
func (s EquipmentStatus) IsFinalCondition() bool {
	return s == EquipmentActive || s == EquipmentDamaged
}

func (s EquipmentStatus) Code() (int16, error) {
	switch s {
	case EquipmentActive:
		return EquipmentActiveCode, nil
	case EquipmentDamaged:
		return EquipmentDamagedCode, nil
	case EquipmentMaintenance:
		return EquipmentMaintenanceCode, nil
	}
	return 0, fmt.Errorf("недопустимый статус оборудования %q", string(s))
}

func EquipmentStatusFromCode(code int16) (EquipmentStatus, error) {
	switch code {
	case EquipmentActiveCode:
		return EquipmentActive, nil
	case EquipmentDamagedCode:
		return EquipmentDamaged, nil
	case EquipmentMaintenanceCode:
		return EquipmentMaintenance, nil
	}
	return "", fmt.Errorf("недопустимый код статуса оборудования %d", code)
}

// --- СТАТУС ОДОБРЕНИЯ АДМИНИСТРАТОРОМ ---

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// --- РЕШЕНИЕ "УСТРАНЕНО СВОИМИ СИЛАМИ" ---

const (
	ResolvedInHouseYes = "yes"
	ResolvedInHouseNo  = "no"
)
