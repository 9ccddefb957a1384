package dto

import "github.com/aarondl/null/v8"

// RequestFormDTO - классификационные поля формы заявки.
type RequestFormDTO struct {
	TypeOfProblem      string  `json:"typeOfProblem" validate:"required,not_blank"`
	Date               string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Department         string  `json:"department" validate:"required,not_blank"`
	Location           string  `json:"location" validate:"required,not_blank"`
	ComplaintDetails   string  `json:"complaintDetails" validate:"required,not_blank"`
	RecurringComplaint string  `json:"recurringComplaint" validate:"omitempty,oneof=yes no"`
	RecurringTimes     int     `json:"recurringTimes" validate:"gte=0"`
	LabAssistant       *string `json:"labAssistant,omitempty"`
	LabAssistantDate   string  `json:"labAssistantDate" validate:"omitempty,datetime=2006-01-02"`
	Hod                *string `json:"hod,omitempty"`
	HodDate            string  `json:"hodDate" validate:"omitempty,datetime=2006-01-02"`
}

// CreateRequestDTO: владелец заявки берётся из токена,
// необязательный staff_id обязан с ним совпадать.
type CreateRequestDTO struct {
	Form        RequestFormDTO `json:"form"`
	StaffID     uint64         `json:"staff_id,omitempty"`
	EquipmentID uint64         `json:"equipment_id" validate:"required,gt=0"`
}

// StepUpdateDTO - простое продвижение курсора.
type StepUpdateDTO struct {
	CurrentStep    int    `json:"currentStep" validate:"required,min=1,max=6"`
	CompletedSteps int    `json:"completedSteps" validate:"min=0,max=6"`
	Message        string `json:"message"`
}

type VerificationDTO struct {
	AssignedPerson      string `json:"assignedPerson" validate:"required,not_blank"`
	InChargeDate        string `json:"inChargeDate" validate:"omitempty,datetime=2006-01-02"`
	VerificationRemarks string `json:"verificationRemarks"`
	CurrentStep         int    `json:"currentStep" validate:"required,min=1,max=6"`
	CompletedSteps      int    `json:"completedSteps" validate:"min=0,max=6"`
	Message             string `json:"message"`
}

type CorrectiveActionDTO struct {
	MaterialsUsed        string       `json:"materialsUsed"`
	ResolvedInhouse      string       `json:"resolvedInhouse" validate:"required"`
	ResolvedRemark       string       `json:"resolvedRemark"`
	ConsumablesNeeded    string       `json:"consumablesNeeded" validate:"omitempty,oneof=yes no"`
	ConsumableDetails    string       `json:"consumableDetails"`
	ExternalAgencyNeeded string       `json:"externalAgencyNeeded" validate:"omitempty,oneof=yes no"`
	AgencyName           string       `json:"agencyName"`
	ApproxExpenditure    null.Float64 `json:"approxExpenditure" validate:"omitempty,gte=0"`
}

type ApprovalDTO struct {
	AdminApprovalStatus string `json:"adminApprovalStatus" validate:"required,oneof=pending approved rejected"`
}

type ClosureDTO struct {
	CompletionRemarkLab         string `json:"completionRemarkLab"`
	LabCompletionName           string `json:"labCompletionName" validate:"required,not_blank"`
	LabCompletionSignature      string `json:"labCompletionSignature"`
	LabCompletionDate           string `json:"labCompletionDate" validate:"omitempty,datetime=2006-01-02"`
	CompletionRemarkMaintenance string `json:"completionRemarkMaintenance"`
	MaintenanceClosedDate       string `json:"maintenanceClosedDate" validate:"omitempty,datetime=2006-01-02"`
	MaintenanceClosedSignature  string `json:"maintenanceClosedSignature"`
	Message                     string `json:"message"`
	EquipmentStatus             string `json:"equipmentStatus" validate:"required,oneof=active damaged"`
}

// AdminRequestDTO - строка административного отчёта и очереди одобрения.
type AdminRequestDTO struct {
	ID                   uint64   `json:"id"`
	TypeOfProblem        string   `json:"type_of_problem"`
	Date                 *string  `json:"date"`
	Department           string   `json:"department"`
	Location             string   `json:"location"`
	ComplaintDetails     string   `json:"complaint_details"`
	LabAssistant         *string  `json:"lab_assistant"`
	Hod                  *string  `json:"hod"`
	StaffID              uint64   `json:"staff_id"`
	AssignedPerson       *string  `json:"assigned_person"`
	VerificationRemarks  *string  `json:"verification_remarks"`
	MaterialsUsed        *string  `json:"materials_used"`
	ResolvedInhouse      *string  `json:"resolved_inhouse"`
	ResolvedRemark       *string  `json:"resolved_remark"`
	ConsumablesNeeded    *string  `json:"consumables_needed"`
	ConsumableDetails    *string  `json:"consumable_details"`
	ExternalAgencyNeeded *string  `json:"external_agency_needed"`
	AgencyName           *string  `json:"agency_name"`
	ApproxExpenditure    *float64 `json:"approx_expenditure"`
	CurrentStep          int      `json:"current_step"`
	CompletedSteps       int      `json:"completed_steps"`
	AdminApprovalStatus  string   `json:"adminApprovalStatus"`
}

type RequestHistoryDTO struct {
	ID        uint64  `json:"id"`
	EventType string  `json:"event_type"`
	ActorRole string  `json:"actor_role"`
	StaffID   uint64  `json:"staff_id"`
	FromStep  int     `json:"from_step"`
	ToStep    int     `json:"to_step"`
	Comment   *string `json:"comment"`
	TxID      string  `json:"tx_id"`
	CreatedAt string  `json:"created_at"`
}
