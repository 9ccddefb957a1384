package workflow

import (
	"fmt"

	"maintenance-system/pkg/constants"
	apperrors "maintenance-system/pkg/errors"
)

// Stage - позиция заявки в жизненном цикле (requests.current_step).
type Stage int

const (
	StageSubmitted        Stage = 1
	StageAcknowledged     Stage = 2
	StageVerified         Stage = 3
	StageCorrectiveAction Stage = 4
	StageAdminApproval    Stage = 5
	StageClosure          Stage = 6
)

var stageNames = map[Stage]string{
	StageSubmitted:        "Submitted",
	StageAcknowledged:     "Acknowledged",
	StageVerified:         "Verified",
	StageCorrectiveAction: "Corrective Action",
	StageAdminApproval:    "Admin Approval",
	StageClosure:          "Closure",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

func (s Stage) IsValid() bool {
	return s >= StageSubmitted && s <= StageClosure
}

// ParseStage проверяет число, пришедшее от клиента.
func ParseStage(field string, v int) (Stage, error) {
	s := Stage(v)
	if !s.IsValid() {
		return 0, apperrors.NewFieldError(field, fmt.Sprintf("этап должен быть в диапазоне 1..6, получено %d", v))
	}
	return s, nil
}

// Operation - операция, меняющая состояние заявки.
type Operation string

const (
	OpCreate           Operation = "CREATE"
	OpAdvance          Operation = "STEP_ADVANCE"
	OpVerification     Operation = "VERIFICATION"
	OpCorrectiveAction Operation = "CORRECTIVE_ACTION"
	OpApproval         Operation = "APPROVAL"
	OpClosure          Operation = "CLOSURE"
)

// Cursor - всё, что нужно таблице переходов знать о заявке.
type Cursor struct {
	Current         Stage
	Completed       int
	Closed          bool
	ApprovalStatus  constants.ApprovalStatus // пусто, если не выставлялся
	ResolvedInHouse string
}

// ApprovalDecided - администратор уже вынес решение (approved/rejected).
func (c Cursor) ApprovalDecided() bool {
	return c.ApprovalStatus == constants.ApprovalApproved || c.ApprovalStatus == constants.ApprovalRejected
}

type rule struct {
	from  []Stage
	to    []Stage
	roles []constants.Role
}

var assistantRoles = []constants.Role{constants.RoleLabAssistant, constants.RoleLabInCharge}

// transitions - фиксированный граф. Этапы 5 и 6 достижимы только через шлюз одобрения и закрытие.
var transitions = map[Operation]rule{
	OpCreate: {
		to:    []Stage{StageSubmitted},
		roles: assistantRoles,
	},
	OpAdvance: {
		from:  []Stage{StageSubmitted, StageAcknowledged, StageVerified, StageCorrectiveAction},
		to:    []Stage{StageAcknowledged, StageVerified, StageCorrectiveAction},
		roles: assistantRoles,
	},
	OpVerification: {
		from:  []Stage{StageAcknowledged, StageVerified, StageCorrectiveAction},
		to:    []Stage{StageVerified, StageCorrectiveAction},
		roles: assistantRoles,
	},
	OpCorrectiveAction: {
		from:  []Stage{StageVerified, StageCorrectiveAction, StageAdminApproval, StageClosure},
		to:    []Stage{StageAdminApproval, StageClosure},
		roles: assistantRoles,
	},
	OpApproval: {
		from:  []Stage{StageAdminApproval},
		to:    []Stage{StageAdminApproval},
		roles: []constants.Role{constants.RoleAdmin},
	},
	OpClosure: {
		from:  []Stage{StageAdminApproval, StageClosure},
		to:    []Stage{StageClosure},
		roles: assistantRoles,
	},
}

func contains(list []Stage, s Stage) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Authorize проверяет, что роль может выполнять операцию.
func Authorize(op Operation, role constants.Role) error {
	r, ok := transitions[op]
	if !ok {
		return fmt.Errorf("неизвестная операция %s", op)
	}
	for _, allowed := range r.roles {
		if allowed == role {
			return nil
		}
	}
	return fmt.Errorf("%w: роль %q не может выполнять %s", apperrors.ErrForbidden, role, op)
}

func checkSource(op Operation, cur Cursor) error {
	if cur.Closed {
		return apperrors.NewConflictError("заявка уже закрыта, %s невозможен", op)
	}
	if !contains(transitions[op].from, cur.Current) {
		return apperrors.NewConflictError("%s недопустим на этапе %d (%s)", op, cur.Current, cur.Current)
	}
	return nil
}

func checkCompleted(cur Cursor, next Stage, completed int) error {
	if completed < 0 || completed > int(next) {
		return apperrors.NewFieldError("completedSteps", fmt.Sprintf("должно быть в диапазоне 0..%d", next))
	}
	if completed < cur.Completed {
		return apperrors.NewConflictError("completedSteps не может уменьшиться (%d -> %d)", cur.Completed, completed)
	}
	return nil
}

// CheckAdvance - простое продвижение курсора: на месте или на один этап вперёд, не дальше этапа 4.
func CheckAdvance(cur Cursor, next Stage, completed int) error {
	if err := checkSource(OpAdvance, cur); err != nil {
		return err
	}
	if next != cur.Current && !contains(transitions[OpAdvance].to, next) {
		return apperrors.NewConflictError("этап %d недостижим простым продвижением", next)
	}
	if next < cur.Current {
		return apperrors.NewConflictError("возврат с этапа %d на %d запрещён", cur.Current, next)
	}
	if next > cur.Current+1 {
		return apperrors.NewConflictError("переход с этапа %d на %d пропускает этапы", cur.Current, next)
	}
	return checkCompleted(cur, next, completed)
}

// CheckVerification - запись проверки (этап 3). Повторная отправка разрешена до корректирующих действий.
func CheckVerification(cur Cursor, next Stage, completed int) error {
	if err := checkSource(OpVerification, cur); err != nil {
		return err
	}
	if !contains(transitions[OpVerification].to, next) {
		return apperrors.NewConflictError("после проверки возможен только этап 3 или 4, получено %d", next)
	}
	if next < cur.Current {
		return apperrors.NewConflictError("возврат с этапа %d на %d запрещён", cur.Current, next)
	}
	return checkCompleted(cur, next, completed)
}

// CheckCorrectiveAction - первая запись с этапов 3/4. Повтор с 5/6 разрешён, только если
// решение шлюза совпадает с текущим этапом и администратор ещё не принял решение.
func CheckCorrectiveAction(cur Cursor, decision GateDecision) error {
	if err := checkSource(OpCorrectiveAction, cur); err != nil {
		return err
	}
	if cur.Current == StageVerified || cur.Current == StageCorrectiveAction {
		return nil
	}
	if cur.ApprovalDecided() {
		return apperrors.NewConflictError("администратор уже принял решение (%s), корректирующие действия не изменить", cur.ApprovalStatus)
	}
	if decision.NextStep != cur.Current {
		return apperrors.NewConflictError("повторная запись меняет ветку: этап %d -> %d", cur.Current, decision.NextStep)
	}
	return nil
}

// CheckApproval - решение администратора возможно только на этапе 5.
func CheckApproval(cur Cursor) error {
	return checkSource(OpApproval, cur)
}

// CheckClosure - закрытие с этапа 5 (ветка одобрения) или 6 (устранено своими силами).
func CheckClosure(cur Cursor, requireApproval bool) error {
	if err := checkSource(OpClosure, cur); err != nil {
		return err
	}
	if requireApproval && cur.Current == StageAdminApproval && cur.ApprovalStatus != constants.ApprovalApproved {
		return apperrors.NewConflictError("закрытие требует одобрения администратора (текущий статус: %q)", cur.ApprovalStatus)
	}
	return nil
}
