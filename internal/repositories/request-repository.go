package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	db "maintenance-system/internal/infrastructure/bd"
	"maintenance-system/internal/workflow"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/types"
)

const requestTable = "requests"

// pgForeignKeyViolation - SQLSTATE нарушения внешнего ключа.
const pgForeignKeyViolation = "23503"

// Внешние ключи заявки и поля формы, к которым они относятся.
var requestForeignKeys = map[string]string{
	"requests_staff_id_fkey":     "staff_id",
	"requests_equipment_id_fkey": "equipment_id",
}

const requestColumns = `r.id, r.type_of_problem, r.request_date, r.department, r.location, r.complaint_details,
	r.recurring_complaint, r.recurring_times, r.lab_assistant, r.lab_assistant_date, r.hod, r.hod_date,
	r.staff_id, r.equipment_id, r.current_step, r.completed_steps,
	r.assigned_person, r.in_charge_date, r.verification_remarks,
	r.materials_used, r.resolved_inhouse, r.resolved_remark, r.consumables_needed, r.consumable_details,
	r.external_agency_needed, r.agency_name, r.approx_expenditure,
	r.admin_approval_status,
	r.completion_remark_lab, r.lab_completion_name, r.lab_completion_signature, r.lab_completion_date,
	r.completion_remark_maintenance, r.maintenance_closed_date, r.maintenance_closed_signature,
	r.equipment_condition, r.closed_at, r.created_at, r.updated_at`

// Поля, разрешённые для фильтра и сортировки в списках.
var requestMap = map[string]string{
	"id":                    "r.id",
	"current_step":          "r.current_step",
	"completed_steps":       "r.completed_steps",
	"department":            "r.department",
	"equipment_id":          "r.equipment_id",
	"admin_approval_status": "r.admin_approval_status",
	"created_at":            "r.created_at",
}

type RequestRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, request *entities.Request) (uint64, error)
	FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Request, error)
	UpdateInTx(ctx context.Context, tx pgx.Tx, request *entities.Request) error
	HasOpenRequestForEquipmentInTx(ctx context.Context, tx pgx.Tx, equipmentID uint64) (bool, error)

	FindRequest(ctx context.Context, id uint64) (*entities.Request, error)
	ListByStaff(ctx context.Context, staffID uint64, filter types.Filter) ([]entities.Request, uint64, error)
	ListPendingApprovals(ctx context.Context) ([]dto.AdminRequestDTO, error)
	CountPendingApprovals(ctx context.Context) (uint64, error)
	ListReports(ctx context.Context, filter types.Filter) ([]dto.AdminRequestDTO, error)
}

type RequestRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewRequestRepository(storage *pgxpool.Pool, logger *zap.Logger) RequestRepositoryInterface {
	return &RequestRepository{storage: storage, logger: logger}
}

// -----------------------------------------------------------
// SCAN
// -----------------------------------------------------------

func scanRequest(row pgx.Row) (*entities.Request, error) {
	var r entities.Request
	var currentStep int

	err := row.Scan(
		&r.ID, &r.TypeOfProblem, &r.RequestDate, &r.Department, &r.Location, &r.ComplaintDetails,
		&r.RecurringComplaint, &r.RecurringTimes, &r.LabAssistant, &r.LabAssistantDate, &r.Hod, &r.HodDate,
		&r.StaffID, &r.EquipmentID, &currentStep, &r.CompletedSteps,
		&r.AssignedPerson, &r.InChargeDate, &r.VerificationRemarks,
		&r.MaterialsUsed, &r.ResolvedInhouse, &r.ResolvedRemark, &r.ConsumablesNeeded, &r.ConsumableDetails,
		&r.ExternalAgencyNeeded, &r.AgencyName, &r.ApproxExpenditure,
		&r.AdminApprovalStatus,
		&r.CompletionRemarkLab, &r.LabCompletionName, &r.LabCompletionSignature, &r.LabCompletionDate,
		&r.CompletionRemarkMaintenance, &r.MaintenanceClosedDate, &r.MaintenanceClosedSignature,
		&r.EquipmentCondition, &r.ClosedAt, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования заявки: %w", err)
	}
	r.CurrentStep = workflow.Stage(currentStep)
	return &r, nil
}

// -----------------------------------------------------------
// ЗАПИСЬ (только внутри транзакции движка)
// -----------------------------------------------------------

func (r *RequestRepository) CreateInTx(ctx context.Context, tx pgx.Tx, req *entities.Request) (uint64, error) {
	query := `
		INSERT INTO requests (
			type_of_problem, request_date, department, location,
			complaint_details, recurring_complaint, recurring_times,
			lab_assistant, lab_assistant_date, hod, hod_date,
			current_step, completed_steps, staff_id, equipment_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at`

	err := tx.QueryRow(ctx, query,
		req.TypeOfProblem, req.RequestDate, req.Department, req.Location,
		req.ComplaintDetails, req.RecurringComplaint, req.RecurringTimes,
		req.LabAssistant, req.LabAssistantDate, req.Hod, req.HodDate,
		int(req.CurrentStep), req.CompletedSteps, req.StaffID, req.EquipmentID,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if field, ok := foreignKeyField(err); ok {
			return 0, apperrors.NewFieldError(field, "ссылается на несуществующую запись")
		}
		return 0, fmt.Errorf("ошибка вставки заявки: %w", err)
	}
	return req.ID, nil
}

func foreignKeyField(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgForeignKeyViolation {
		return "", false
	}
	field, ok := requestForeignKeys[pgErr.ConstraintName]
	return field, ok
}

// FindForUpdateInTx блокирует строку заявки до конца транзакции. Параллельные переходы по одной заявке выполняются по очереди.
func (r *RequestRepository) FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s r WHERE r.id = $1 FOR UPDATE`, requestColumns, requestTable)
	return scanRequest(tx.QueryRow(ctx, query, id))
}

func (r *RequestRepository) UpdateInTx(ctx context.Context, tx pgx.Tx, req *entities.Request) error {
	query := `
		UPDATE requests SET
			current_step = $1, completed_steps = $2,
			assigned_person = $3, in_charge_date = $4, verification_remarks = $5,
			materials_used = $6, resolved_inhouse = $7, resolved_remark = $8,
			consumables_needed = $9, consumable_details = $10, external_agency_needed = $11,
			agency_name = $12, approx_expenditure = $13,
			admin_approval_status = $14,
			completion_remark_lab = $15, lab_completion_name = $16, lab_completion_signature = $17,
			lab_completion_date = $18, completion_remark_maintenance = $19, maintenance_closed_date = $20,
			maintenance_closed_signature = $21, equipment_condition = $22, closed_at = $23,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $24
		RETURNING updated_at`

	err := tx.QueryRow(ctx, query,
		int(req.CurrentStep), req.CompletedSteps,
		req.AssignedPerson, req.InChargeDate, req.VerificationRemarks,
		req.MaterialsUsed, req.ResolvedInhouse, req.ResolvedRemark,
		req.ConsumablesNeeded, req.ConsumableDetails, req.ExternalAgencyNeeded,
		req.AgencyName, req.ApproxExpenditure,
		req.AdminApprovalStatus,
		req.CompletionRemarkLab, req.LabCompletionName, req.LabCompletionSignature,
		req.LabCompletionDate, req.CompletionRemarkMaintenance, req.MaintenanceClosedDate,
		req.MaintenanceClosedSignature, req.EquipmentCondition, req.ClosedAt,
		req.ID,
	).Scan(&req.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("ошибка обновления заявки %d: %w", req.ID, err)
	}
	return nil
}

func (r *RequestRepository) HasOpenRequestForEquipmentInTx(ctx context.Context, tx pgx.Tx, equipmentID uint64) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM requests WHERE equipment_id = $1 AND closed_at IS NULL)`,
		equipmentID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки открытых заявок оборудования %d: %w", equipmentID, err)
	}
	return exists, nil
}

// -----------------------------------------------------------
// ЧТЕНИЕ
// -----------------------------------------------------------

func (r *RequestRepository) FindRequest(ctx context.Context, id uint64) (*entities.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s r WHERE r.id = $1`, requestColumns, requestTable)
	return scanRequest(r.storage.QueryRow(ctx, query, id))
}

func (r *RequestRepository) ListByStaff(ctx context.Context, staffID uint64, filter types.Filter) ([]entities.Request, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countBuilder := db.ApplyFilters(psql.Select("COUNT(*)").From(requestTable+" r").Where(sq.Eq{"r.staff_id": staffID}), filter, requestMap)
	countSQL, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса подсчёта: %w", err)
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта заявок: %w", err)
	}

	builder := psql.Select(requestColumns).From(requestTable + " r").Where(sq.Eq{"r.staff_id": staffID})
	builder = db.ApplyListParams(builder, filter, requestMap, "r.id DESC")

	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки запроса списка заявок: %w", err)
	}

	rows, err := r.storage.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения списка заявок: %w", err)
	}
	defer rows.Close()

	list := make([]entities.Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *req)
	}
	return list, total, rows.Err()
}

const adminRequestColumns = `id, type_of_problem, request_date, department, location, complaint_details,
	lab_assistant, hod, staff_id, assigned_person, verification_remarks,
	materials_used, resolved_inhouse, resolved_remark, consumables_needed, consumable_details,
	external_agency_needed, agency_name, approx_expenditure, current_step, completed_steps,
	COALESCE(admin_approval_status, 'pending') AS admin_approval_status`

// pendingApprovalWhere - очередь администратора: корректирующие действия выполнены, ждём решения.
var pendingApprovalWhere = sq.And{
	sq.Eq{"completed_steps": int(workflow.StageCorrectiveAction)},
	sq.Eq{"current_step": int(workflow.StageAdminApproval)},
}

func (r *RequestRepository) ListPendingApprovals(ctx context.Context) ([]dto.AdminRequestDTO, error) {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(adminRequestColumns).
		From(requestTable).
		Where(pendingApprovalWhere).
		OrderBy("id DESC")
	return r.queryAdminRows(ctx, builder)
}

func (r *RequestRepository) CountPendingApprovals(ctx context.Context) (uint64, error) {
	sqlStr, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select("COUNT(*)").
		From(requestTable).
		Where(pendingApprovalWhere).
		Where(sq.Or{sq.Eq{"admin_approval_status": nil}, sq.Eq{"admin_approval_status": "pending"}}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса: %w", err)
	}
	var count uint64
	if err := r.storage.QueryRow(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта ожидающих одобрения: %w", err)
	}
	return count, nil
}

func (r *RequestRepository) ListReports(ctx context.Context, filter types.Filter) ([]dto.AdminRequestDTO, error) {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(adminRequestColumns).
		From(requestTable + " r")
	builder = db.ApplyListParams(builder, filter, requestMap, "r.id DESC")
	return r.queryAdminRows(ctx, builder)
}

func (r *RequestRepository) queryAdminRows(ctx context.Context, builder sq.SelectBuilder) ([]dto.AdminRequestDTO, error) {
	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса: %w", err)
	}
	rows, err := r.storage.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения отчёта по заявкам: %w", err)
	}
	defer rows.Close()

	result := make([]dto.AdminRequestDTO, 0)
	for rows.Next() {
		var d dto.AdminRequestDTO
		var req entities.Request
		if err := rows.Scan(
			&d.ID, &d.TypeOfProblem, &req.RequestDate, &d.Department, &d.Location, &d.ComplaintDetails,
			&req.LabAssistant, &req.Hod, &d.StaffID, &req.AssignedPerson, &req.VerificationRemarks,
			&req.MaterialsUsed, &req.ResolvedInhouse, &req.ResolvedRemark, &req.ConsumablesNeeded, &req.ConsumableDetails,
			&req.ExternalAgencyNeeded, &req.AgencyName, &req.ApproxExpenditure, &d.CurrentStep, &d.CompletedSteps,
			&d.AdminApprovalStatus,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки отчёта: %w", err)
		}
		req.ID = d.ID
		FillAdminRequestDTO(&d, &req)
		result = append(result, d)
	}
	return result, rows.Err()
}

// FillAdminRequestDTO переносит nullable-поля заявки в DTO отчёта.
func FillAdminRequestDTO(d *dto.AdminRequestDTO, req *entities.Request) {
	if req.RequestDate.Valid {
		s := req.RequestDate.Time.Format("2006-01-02")
		d.Date = &s
	}
	d.LabAssistant = req.LabAssistant.Ptr()
	d.Hod = req.Hod.Ptr()
	d.AssignedPerson = req.AssignedPerson.Ptr()
	d.VerificationRemarks = req.VerificationRemarks.Ptr()
	d.MaterialsUsed = req.MaterialsUsed.Ptr()
	d.ResolvedInhouse = req.ResolvedInhouse.Ptr()
	d.ResolvedRemark = req.ResolvedRemark.Ptr()
	d.ConsumablesNeeded = req.ConsumablesNeeded.Ptr()
	d.ConsumableDetails = req.ConsumableDetails.Ptr()
	d.ExternalAgencyNeeded = req.ExternalAgencyNeeded.Ptr()
	d.AgencyName = req.AgencyName.Ptr()
	d.ApproxExpenditure = req.ApproxExpenditure.Ptr()
}
