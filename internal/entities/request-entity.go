package entities

import (
	"time"

	"github.com/aarondl/null/v8"

	"maintenance-system/internal/workflow"
	"maintenance-system/pkg/constants"
	"maintenance-system/pkg/types"
)

// Request - заявка на обслуживание оборудования.
type Request struct {
	ID uint64 `json:"id" db:"id"`

	// Классификация
	TypeOfProblem      string    `json:"type_of_problem" db:"type_of_problem"`
	RequestDate        null.Time `json:"date" db:"request_date"`
	Department         string    `json:"department" db:"department"`
	Location           string    `json:"location" db:"location"`
	ComplaintDetails   string    `json:"complaint_details" db:"complaint_details"`
	RecurringComplaint bool      `json:"recurring_complaint" db:"recurring_complaint"`
	RecurringTimes     int       `json:"recurring_times" db:"recurring_times"`

	// Участники
	LabAssistant     null.String `json:"lab_assistant" db:"lab_assistant"`
	LabAssistantDate null.Time   `json:"lab_assistant_date" db:"lab_assistant_date"`
	Hod              null.String `json:"hod" db:"hod"`
	HodDate          null.Time   `json:"hod_date" db:"hod_date"`
	StaffID          uint64      `json:"staff_id" db:"staff_id"`
	EquipmentID      uint64      `json:"equipment_id" db:"equipment_id"`

	// Курсор
	CurrentStep    workflow.Stage `json:"current_step" db:"current_step"`
	CompletedSteps int            `json:"completed_steps" db:"completed_steps"`

	// Этап 3
	AssignedPerson      null.String `json:"assigned_person" db:"assigned_person"`
	InChargeDate        null.Time   `json:"in_charge_date" db:"in_charge_date"`
	VerificationRemarks null.String `json:"verification_remarks" db:"verification_remarks"`

	// Этап 4
	MaterialsUsed        null.String  `json:"materials_used" db:"materials_used"`
	ResolvedInhouse      null.String  `json:"resolved_inhouse" db:"resolved_inhouse"`
	ResolvedRemark       null.String  `json:"resolved_remark" db:"resolved_remark"`
	ConsumablesNeeded    null.String  `json:"consumables_needed" db:"consumables_needed"`
	ConsumableDetails    null.String  `json:"consumable_details" db:"consumable_details"`
	ExternalAgencyNeeded null.String  `json:"external_agency_needed" db:"external_agency_needed"`
	AgencyName           null.String  `json:"agency_name" db:"agency_name"`
	ApproxExpenditure    null.Float64 `json:"approx_expenditure" db:"approx_expenditure"`

	// Этап 5
	AdminApprovalStatus null.String `json:"admin_approval_status" db:"admin_approval_status"`

	// Закрытие
	CompletionRemarkLab         null.String `json:"completion_remark_lab" db:"completion_remark_lab"`
	LabCompletionName           null.String `json:"lab_completion_name" db:"lab_completion_name"`
	LabCompletionSignature      null.String `json:"lab_completion_signature" db:"lab_completion_signature"`
	LabCompletionDate           null.Time   `json:"lab_completion_date" db:"lab_completion_date"`
	CompletionRemarkMaintenance null.String `json:"completion_remark_maintenance" db:"completion_remark_maintenance"`
	MaintenanceClosedDate       null.Time   `json:"maintenance_closed_date" db:"maintenance_closed_date"`
	MaintenanceClosedSignature  null.String `json:"maintenance_closed_signature" db:"maintenance_closed_signature"`
	EquipmentCondition          null.String `json:"equipment_condition" db:"equipment_condition"`
	ClosedAt                    null.Time   `json:"closed_at" db:"closed_at"`

	types.BaseEntity

	// Поля для связанных данных (не колонки в таблице)
	Equipment *Equipment `json:"equipment,omitempty" db:"-"`
}

// IsOpen - заявка ещё не закрыта (закрытие записано).
func (r *Request) IsOpen() bool {
	return !r.ClosedAt.Valid
}

// Cursor - проекция заявки для таблицы переходов.
func (r *Request) Cursor() workflow.Cursor {
	return workflow.Cursor{
		Current:         r.CurrentStep,
		Completed:       r.CompletedSteps,
		Closed:          r.ClosedAt.Valid,
		ApprovalStatus:  constants.ApprovalStatus(r.AdminApprovalStatus.String),
		ResolvedInHouse: r.ResolvedInhouse.String,
	}
}

// Touch обновляет updated_at в памяти перед записью.
func (r *Request) Touch(now time.Time) {
	r.UpdatedAt = &now
	if r.CreatedAt == nil {
		r.CreatedAt = &now
	}
}
