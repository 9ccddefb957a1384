package entities

import (
	"maintenance-system/pkg/constants"
	"maintenance-system/pkg/types"
)

type Equipment struct {
	ID            uint64                    `json:"id"`
	LabID         uint64                    `json:"lab_id"`
	EquipmentType string                    `json:"equipment_type"`
	Code          string                    `json:"equipment_code"`
	Name          string                    `json:"equipment_name"`
	Company       string                    `json:"company_name"`
	Specification string                    `json:"specification"`
	Location      string                    `json:"location"`
	Status        constants.EquipmentStatus `json:"status"`

	types.BaseEntity
}
