package dto

type EquipmentStatusDTO struct {
	EquipmentID uint64 `json:"equipment_id"`
	Status      string `json:"status"`
}

type UpdateEquipmentStatusDTO struct {
	Status string `json:"status" validate:"required,oneof=active maintenance damaged"`
}
