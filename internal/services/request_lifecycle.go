package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	"maintenance-system/internal/events"
	"maintenance-system/internal/repositories"
	"maintenance-system/internal/workflow"
	"maintenance-system/pkg/config"
	"maintenance-system/pkg/constants"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/eventbus"
	"maintenance-system/pkg/metrics"
	"maintenance-system/pkg/types"
	"maintenance-system/pkg/utils"
)

const dateLayout = "2006-01-02"

// EventPublisher - шина событий. Вызывается только после коммита.
type EventPublisher interface {
	Publish(ctx context.Context, event eventbus.Event)
}

// StructValidator - проверка DTO по тегам validate.
type StructValidator interface {
	Validate(i interface{}) error
}

type RequestLifecycleServiceInterface interface {
	Create(ctx context.Context, payload dto.CreateRequestDTO) (*entities.Request, error)
	AdvanceGeneric(ctx context.Context, id uint64, payload dto.StepUpdateDTO) (*entities.Request, error)
	RecordVerification(ctx context.Context, id uint64, payload dto.VerificationDTO) (*entities.Request, error)
	RecordCorrectiveAction(ctx context.Context, id uint64, payload dto.CorrectiveActionDTO) (*entities.Request, error)
	SetApprovalStatus(ctx context.Context, id uint64, payload dto.ApprovalDTO) (*entities.Request, error)
	RecordClosure(ctx context.Context, id uint64, payload dto.ClosureDTO) (*entities.Request, error)

	FindRequest(ctx context.Context, id uint64) (*entities.Request, error)
	ListByStaff(ctx context.Context, staffID uint64, filter types.Filter) ([]entities.Request, uint64, error)
	History(ctx context.Context, id uint64) ([]dto.RequestHistoryDTO, error)
}

type RequestLifecycleService struct {
	txManager   repositories.TxManagerInterface
	requestRepo repositories.RequestRepositoryInterface
	historyRepo repositories.RequestHistoryRepositoryInterface
	equipment   EquipmentStatusStore
	notifier    NotificationWriter
	publisher   EventPublisher
	validator   StructValidator
	workflowCfg config.WorkflowConfig
	logger      *zap.Logger
	now         func() time.Time
}

func NewRequestLifecycleService(
	txManager repositories.TxManagerInterface,
	requestRepo repositories.RequestRepositoryInterface,
	historyRepo repositories.RequestHistoryRepositoryInterface,
	equipment EquipmentStatusStore,
	notifier NotificationWriter,
	publisher EventPublisher,
	validator StructValidator,
	workflowCfg config.WorkflowConfig,
	logger *zap.Logger,
) RequestLifecycleServiceInterface {
	return &RequestLifecycleService{
		txManager:   txManager,
		requestRepo: requestRepo,
		historyRepo: historyRepo,
		equipment:   equipment,
		notifier:    notifier,
		publisher:   publisher,
		validator:   validator,
		workflowCfg: workflowCfg,
		logger:      logger,
		now:         time.Now,
	}
}

// outcome - что переход записывает помимо самой заявки.
type outcome struct {
	comment       string
	notifications []entities.Notification
	// unchanged: повтор уже применённой операции, ничего не пишем.
	unchanged bool
}

// -----------------------------------------------------------
// ОПЕРАЦИИ ПЕРЕХОДА
// -----------------------------------------------------------

func (s *RequestLifecycleService) Create(ctx context.Context, payload dto.CreateRequestDTO) (*entities.Request, error) {
	actor, err := s.authorize(ctx, workflow.OpCreate)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(payload); err != nil {
		return nil, err
	}

	if payload.StaffID != 0 && payload.StaffID != actor.StaffID {
		return nil, apperrors.NewFieldError("staff_id", "не совпадает с сотрудником из токена")
	}

	req, err := newRequestFromForm(payload, actor.StaffID)
	if err != nil {
		return nil, err
	}

	txID := uuid.New()
	var created []entities.Notification

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		eq, err := s.equipment.FindForUpdateInTx(ctx, tx, payload.EquipmentID)
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewFieldError("equipment_id", fmt.Sprintf("оборудование %d не найдено", payload.EquipmentID))
		}
		if err != nil {
			return err
		}

		open, err := s.requestRepo.HasOpenRequestForEquipmentInTx(ctx, tx, eq.ID)
		if err != nil {
			return err
		}
		if open {
			return apperrors.NewConflictError("по оборудованию %d уже есть открытая заявка", eq.ID)
		}

		req.Touch(s.now())
		if _, err := s.requestRepo.CreateInTx(ctx, tx, req); err != nil {
			return err
		}
		if err := s.equipment.SetStatusInTx(ctx, tx, eq.ID, constants.EquipmentMaintenance); err != nil {
			return err
		}
		req.Equipment = eq
		req.Equipment.Status = constants.EquipmentMaintenance

		out := &outcome{
			notifications: []entities.Notification{
				notificationFor(req, constants.RoleLabAssistant, constants.NotificationTypeInfo,
					"Request Created", "You have created a maintenance request."),
			},
		}
		created, err = s.record(ctx, tx, txID, actor, workflow.OpCreate, 0, req, out)
		return err
	})
	s.observe(workflow.OpCreate, err)
	if err != nil {
		return nil, s.fail(workflow.OpCreate, 0, err)
	}

	s.logger.Info("Заявка создана",
		zap.Uint64("requestID", req.ID),
		zap.Uint64("equipmentID", req.EquipmentID),
		zap.String("txID", txID.String()),
	)
	s.publish(ctx, txID, created)
	return req, nil
}

func (s *RequestLifecycleService) AdvanceGeneric(ctx context.Context, id uint64, payload dto.StepUpdateDTO) (*entities.Request, error) {
	if err := s.validator.Validate(payload); err != nil {
		return nil, err
	}
	next, err := workflow.ParseStage("currentStep", payload.CurrentStep)
	if err != nil {
		return nil, err
	}

	return s.transition(ctx, id, workflow.OpAdvance, func(tx pgx.Tx, req *entities.Request) (*outcome, error) {
		if err := workflow.CheckAdvance(req.Cursor(), next, payload.CompletedSteps); err != nil {
			return nil, err
		}
		req.CurrentStep = next
		req.CompletedSteps = payload.CompletedSteps

		message := messageOr(payload.Message, fmt.Sprintf("Request #%d moved to %s.", req.ID, next))
		return &outcome{
			comment: payload.Message,
			notifications: []entities.Notification{
				notificationFor(req, constants.RoleLabInCharge, constants.NotificationTypeMaintenance, "Request Progressed", message),
			},
		}, nil
	})
}

func (s *RequestLifecycleService) RecordVerification(ctx context.Context, id uint64, payload dto.VerificationDTO) (*entities.Request, error) {
	if err := s.validator.Validate(payload); err != nil {
		return nil, err
	}
	next, err := workflow.ParseStage("currentStep", payload.CurrentStep)
	if err != nil {
		return nil, err
	}
	inChargeDate, err := parseDate("inChargeDate", payload.InChargeDate)
	if err != nil {
		return nil, err
	}

	return s.transition(ctx, id, workflow.OpVerification, func(tx pgx.Tx, req *entities.Request) (*outcome, error) {
		if err := workflow.CheckVerification(req.Cursor(), next, payload.CompletedSteps); err != nil {
			return nil, err
		}
		req.AssignedPerson = null.StringFrom(strings.TrimSpace(payload.AssignedPerson))
		req.InChargeDate = inChargeDate
		req.VerificationRemarks = optionalString(payload.VerificationRemarks)
		req.CurrentStep = next
		req.CompletedSteps = payload.CompletedSteps

		message := messageOr(payload.Message, fmt.Sprintf("Request #%d verified by %s.", req.ID, req.AssignedPerson.String))
		return &outcome{
			comment: payload.Message,
			notifications: []entities.Notification{
				notificationFor(req, constants.RoleLabInCharge, constants.NotificationTypeMaintenance, "Verification Completed", message),
			},
		}, nil
	})
}

func (s *RequestLifecycleService) RecordCorrectiveAction(ctx context.Context, id uint64, payload dto.CorrectiveActionDTO) (*entities.Request, error) {
	if err := s.validator.Validate(payload); err != nil {
		return nil, err
	}
	decision, err := workflow.DecideApproval(payload.ResolvedInhouse)
	if err != nil {
		return nil, err
	}

	return s.transition(ctx, id, workflow.OpCorrectiveAction, func(tx pgx.Tx, req *entities.Request) (*outcome, error) {
		if err := workflow.CheckCorrectiveAction(req.Cursor(), decision); err != nil {
			return nil, err
		}
		req.MaterialsUsed = optionalString(payload.MaterialsUsed)
		req.ResolvedInhouse = null.StringFrom(workflow.NormalizeResolvedInHouse(payload.ResolvedInhouse))
		req.ResolvedRemark = optionalString(payload.ResolvedRemark)
		req.ConsumablesNeeded = optionalString(payload.ConsumablesNeeded)
		req.ConsumableDetails = optionalString(payload.ConsumableDetails)
		req.ExternalAgencyNeeded = optionalString(payload.ExternalAgencyNeeded)
		req.AgencyName = optionalString(payload.AgencyName)
		req.ApproxExpenditure = payload.ApproxExpenditure
		req.CurrentStep = decision.NextStep
		req.CompletedSteps = decision.CompletedSteps
		if decision.NotifyAdmin && !req.AdminApprovalStatus.Valid {
			req.AdminApprovalStatus = null.StringFrom(string(constants.ApprovalPending))
		}

		out := &outcome{
			comment: decision.Message,
			notifications: []entities.Notification{
				notificationFor(req, constants.RoleLabInCharge, constants.NotificationTypeMaintenance, "Corrective Action Completed", decision.Message),
			},
		}
		if decision.NotifyAdmin {
			out.notifications = append(out.notifications,
				notificationFor(req, constants.RoleAdmin, constants.NotificationTypeApproval, "Approval Required",
					fmt.Sprintf("Request #%d (%s) awaits your approval.", req.ID, req.TypeOfProblem)))
		}
		return out, nil
	})
}

// SetApprovalStatus - решение администратора. Курсор не двигается.
func (s *RequestLifecycleService) SetApprovalStatus(ctx context.Context, id uint64, payload dto.ApprovalDTO) (*entities.Request, error) {
	if err := s.validator.Validate(payload); err != nil {
		return nil, err
	}
	status := constants.ApprovalStatus(payload.AdminApprovalStatus)
	if !status.IsValid() {
		return nil, apperrors.NewFieldError("adminApprovalStatus", "допустимые значения: pending approved rejected")
	}

	return s.transition(ctx, id, workflow.OpApproval, func(tx pgx.Tx, req *entities.Request) (*outcome, error) {
		if err := workflow.CheckApproval(req.Cursor()); err != nil {
			return nil, err
		}
		req.AdminApprovalStatus = null.StringFrom(string(status))

		out := &outcome{comment: string(status)}
		if status != constants.ApprovalPending {
			out.notifications = append(out.notifications,
				notificationFor(req, constants.RoleLabAssistant, constants.NotificationTypeApproval, "Approval Decision",
					fmt.Sprintf("Admin marked request #%d as %s.", req.ID, status)))
		}
		return out, nil
	})
}

// RecordClosure закрывает заявку и выставляет итоговое состояние оборудования в той же транзакции.
// Повтор с тем же состоянием возвращает заявку без изменений, с другим - ConflictError.
func (s *RequestLifecycleService) RecordClosure(ctx context.Context, id uint64, payload dto.ClosureDTO) (*entities.Request, error) {
	if err := s.validator.Validate(payload); err != nil {
		return nil, err
	}
	final := constants.EquipmentStatus(payload.EquipmentStatus)
	if !final.IsFinalCondition() {
		return nil, apperrors.NewFieldError("equipmentStatus", "после закрытия допустимо только active или damaged")
	}
	labDate, err := parseDate("labCompletionDate", payload.LabCompletionDate)
	if err != nil {
		return nil, err
	}
	closedDate, err := parseDate("maintenanceClosedDate", payload.MaintenanceClosedDate)
	if err != nil {
		return nil, err
	}

	return s.transition(ctx, id, workflow.OpClosure, func(tx pgx.Tx, req *entities.Request) (*outcome, error) {
		if !req.IsOpen() {
			if req.EquipmentCondition.String == string(final) {
				return &outcome{unchanged: true}, nil
			}
			return nil, apperrors.NewConflictError("заявка %d уже закрыта с состоянием %q", req.ID, req.EquipmentCondition.String)
		}
		if err := workflow.CheckClosure(req.Cursor(), s.workflowCfg.RequireApprovalBeforeClosure); err != nil {
			return nil, err
		}

		req.CompletionRemarkLab = optionalString(payload.CompletionRemarkLab)
		req.LabCompletionName = null.StringFrom(strings.TrimSpace(payload.LabCompletionName))
		req.LabCompletionSignature = optionalString(payload.LabCompletionSignature)
		req.LabCompletionDate = labDate
		req.CompletionRemarkMaintenance = optionalString(payload.CompletionRemarkMaintenance)
		req.MaintenanceClosedDate = closedDate
		req.MaintenanceClosedSignature = optionalString(payload.MaintenanceClosedSignature)
		req.EquipmentCondition = null.StringFrom(string(final))
		req.CurrentStep = workflow.StageClosure
		req.CompletedSteps = int(workflow.StageClosure)
		req.ClosedAt = null.TimeFrom(s.now())

		if err := s.equipment.SetStatusInTx(ctx, tx, req.EquipmentID, final); err != nil {
			return nil, err
		}

		message := messageOr(payload.Message, fmt.Sprintf("Request #%d closed. Equipment is %s.", req.ID, final))
		return &outcome{
			comment: message,
			notifications: []entities.Notification{
				notificationFor(req, constants.RoleLabInCharge, constants.NotificationTypeMaintenance, "Closure Completed", message),
			},
		}, nil
	})
}

// -----------------------------------------------------------
// ЧТЕНИЕ
// -----------------------------------------------------------

func (s *RequestLifecycleService) FindRequest(ctx context.Context, id uint64) (*entities.Request, error) {
	req, err := s.requestRepo.FindRequest(ctx, id)
	if err != nil {
		return nil, s.readError("FindRequest", err)
	}
	eq, err := s.equipment.FindEquipment(ctx, req.EquipmentID)
	if err == nil {
		req.Equipment = eq
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		s.logger.Warn("Не удалось загрузить оборудование заявки", zap.Uint64("requestID", id), zap.Error(err))
	}
	return req, nil
}

func (s *RequestLifecycleService) ListByStaff(ctx context.Context, staffID uint64, filter types.Filter) ([]entities.Request, uint64, error) {
	list, total, err := s.requestRepo.ListByStaff(ctx, staffID, filter)
	if err != nil {
		return nil, 0, s.readError("ListByStaff", err)
	}
	return list, total, nil
}

func (s *RequestLifecycleService) History(ctx context.Context, id uint64) ([]dto.RequestHistoryDTO, error) {
	if _, err := s.requestRepo.FindRequest(ctx, id); err != nil {
		return nil, s.readError("History", err)
	}
	items, err := s.historyRepo.FindByRequestID(ctx, id)
	if err != nil {
		return nil, s.readError("History", err)
	}
	result := make([]dto.RequestHistoryDTO, 0, len(items))
	for _, h := range items {
		result = append(result, dto.RequestHistoryDTO{
			ID:        h.ID,
			EventType: h.EventType,
			ActorRole: h.ActorRole,
			StaffID:   h.StaffID,
			FromStep:  h.FromStep,
			ToStep:    h.ToStep,
			Comment:   h.Comment,
			TxID:      h.TxID.String(),
			CreatedAt: h.CreatedAt.Format(time.RFC3339),
		})
	}
	return result, nil
}

// -----------------------------------------------------------
// ОБЩИЙ КАРКАС ПЕРЕХОДА
// -----------------------------------------------------------

type mutation func(tx pgx.Tx, req *entities.Request) (*outcome, error)

// transition блокирует строку заявки, применяет mutate и пишет заявку, историю и уведомления одной транзакцией.
func (s *RequestLifecycleService) transition(ctx context.Context, id uint64, op workflow.Operation, mutate mutation) (*entities.Request, error) {
	actor, err := s.authorize(ctx, op)
	if err != nil {
		return nil, err
	}

	txID := uuid.New()
	var result *entities.Request
	var created []entities.Notification

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		req, err := s.requestRepo.FindForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		from := req.CurrentStep

		out, err := mutate(tx, req)
		if err != nil {
			return err
		}
		result = req
		if out.unchanged {
			return nil
		}

		req.Touch(s.now())
		if err := s.requestRepo.UpdateInTx(ctx, tx, req); err != nil {
			return err
		}
		created, err = s.record(ctx, tx, txID, actor, op, from, req, out)
		return err
	})
	s.observe(op, err)
	if err != nil {
		return nil, s.fail(op, id, err)
	}

	s.logger.Info("Переход заявки выполнен",
		zap.Uint64("requestID", id),
		zap.String("operation", string(op)),
		zap.Int("currentStep", int(result.CurrentStep)),
		zap.Int("completedSteps", result.CompletedSteps),
		zap.String("txID", txID.String()),
	)
	s.publish(ctx, txID, created)
	return result, nil
}

// record пишет строку истории и уведомления перехода.
func (s *RequestLifecycleService) record(ctx context.Context, tx pgx.Tx, txID uuid.UUID, actor types.Actor, op workflow.Operation, from workflow.Stage, req *entities.Request, out *outcome) ([]entities.Notification, error) {
	history := &entities.RequestHistory{
		RequestID: req.ID,
		StaffID:   actor.StaffID,
		ActorRole: actor.Role.String(),
		EventType: string(op),
		FromStep:  int(from),
		ToStep:    int(req.CurrentStep),
		TxID:      txID,
	}
	if out.comment != "" {
		comment := out.comment
		history.Comment = &comment
	}
	if err := s.historyRepo.CreateInTx(ctx, tx, history); err != nil {
		return nil, err
	}

	created := make([]entities.Notification, 0, len(out.notifications))
	for i := range out.notifications {
		n := out.notifications[i]
		n.RequestID = req.ID
		if err := s.notifier.CreateInTx(ctx, tx, &n); err != nil {
			return nil, err
		}
		created = append(created, n)
	}
	return created, nil
}

func (s *RequestLifecycleService) publish(ctx context.Context, txID uuid.UUID, created []entities.Notification) {
	for _, n := range created {
		s.publisher.Publish(ctx, events.NotificationCreatedEvent{
			NotificationID: n.ID,
			RequestID:      n.RequestID,
			UserRole:       n.UserRole,
			StaffID:        n.StaffID,
			TxID:           txID,
		})
	}
}

func (s *RequestLifecycleService) authorize(ctx context.Context, op workflow.Operation) (types.Actor, error) {
	actor, err := utils.GetActorFromCtx(ctx)
	if err != nil {
		return types.Actor{}, err
	}
	if err := workflow.Authorize(op, actor.Role); err != nil {
		s.logger.Warn("Отказано в доступе", zap.String("role", actor.Role.String()), zap.String("operation", string(op)))
		return types.Actor{}, err
	}
	return actor, nil
}

// fail пропускает доменные ошибки как есть, всё остальное - StorageError (транзакция откатана).
func (s *RequestLifecycleService) fail(op workflow.Operation, id uint64, err error) error {
	if isDomainError(err) {
		s.logger.Debug("Переход отклонён", zap.String("operation", string(op)), zap.Uint64("requestID", id), zap.Error(err))
		return err
	}
	s.logger.Error("Ошибка хранилища при переходе заявки",
		zap.String("operation", string(op)),
		zap.Uint64("requestID", id),
		zap.Error(err),
	)
	return apperrors.NewStorageError(string(op), err)
}

func (s *RequestLifecycleService) observe(op workflow.Operation, err error) {
	result := metrics.TransitionOK
	if err != nil {
		result = metrics.TransitionFailed
		if isDomainError(err) {
			result = metrics.TransitionRejected
		}
	}
	metrics.Default().ObserveTransition(string(op), result)
}

func (s *RequestLifecycleService) readError(op string, err error) error {
	if isDomainError(err) {
		return err
	}
	s.logger.Error("Ошибка чтения заявок", zap.String("operation", op), zap.Error(err))
	return apperrors.NewStorageError(op, err)
}

func isDomainError(err error) bool {
	var validationErr *apperrors.ValidationError
	return errors.As(err, &validationErr) ||
		errors.Is(err, apperrors.ErrNotFound) ||
		errors.Is(err, apperrors.ErrConflict) ||
		errors.Is(err, apperrors.ErrForbidden)
}

// -----------------------------------------------------------
// ВСПОМОГАТЕЛЬНЫЕ
// -----------------------------------------------------------

// newRequestFromForm: заявка всегда принадлежит сотруднику из токена.
func newRequestFromForm(payload dto.CreateRequestDTO, staffID uint64) (*entities.Request, error) {
	form := payload.Form
	requestDate, err := parseDate("form.date", form.Date)
	if err != nil {
		return nil, err
	}
	assistantDate, err := parseDate("form.labAssistantDate", form.LabAssistantDate)
	if err != nil {
		return nil, err
	}
	hodDate, err := parseDate("form.hodDate", form.HodDate)
	if err != nil {
		return nil, err
	}

	return &entities.Request{
		TypeOfProblem:      strings.TrimSpace(form.TypeOfProblem),
		RequestDate:        requestDate,
		Department:         strings.TrimSpace(form.Department),
		Location:           strings.TrimSpace(form.Location),
		ComplaintDetails:   strings.TrimSpace(form.ComplaintDetails),
		RecurringComplaint: form.RecurringComplaint == "yes",
		RecurringTimes:     form.RecurringTimes,
		LabAssistant:       null.StringFromPtr(form.LabAssistant),
		LabAssistantDate:   assistantDate,
		Hod:                null.StringFromPtr(form.Hod),
		HodDate:            hodDate,
		StaffID:            staffID,
		EquipmentID:        payload.EquipmentID,
		CurrentStep:        workflow.StageSubmitted,
		CompletedSteps:     0,
	}, nil
}

func notificationFor(req *entities.Request, role constants.Role, typ, title, message string) entities.Notification {
	return entities.Notification{
		UserRole:  role,
		StaffID:   req.StaffID,
		Type:      typ,
		Title:     title,
		Message:   message,
		RequestID: req.ID,
	}
}

func parseDate(field, value string) (null.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return null.Time{}, nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return null.Time{}, apperrors.NewFieldError(field, "ожидается дата в формате "+dateLayout)
	}
	return null.TimeFrom(t), nil
}

func optionalString(v string) null.String {
	v = strings.TrimSpace(v)
	if v == "" {
		return null.String{}
	}
	return null.StringFrom(v)
}

func messageOr(message, fallback string) string {
	if m := strings.TrimSpace(message); m != "" {
		return m
	}
	return fallback
}
