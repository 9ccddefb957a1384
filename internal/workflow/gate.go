package workflow

import (
	"strings"

	"maintenance-system/pkg/constants"
	apperrors "maintenance-system/pkg/errors"
)

const (
	MessageResolvedInHouse  = "Resolved in-house. Admin approval skipped, moved to closure."
	MessageAwaitingApproval = "Corrective action completed. Awaiting admin approval."
)

// GateDecision - результат шлюза одобрения.
type GateDecision struct {
	NextStep       Stage
	CompletedSteps int
	Message        string
	NotifyAdmin    bool
}

// NormalizeResolvedInHouse приводит "Yes"/" no " к каноническому виду.
func NormalizeResolvedInHouse(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// DecideApproval - единственная развилка графа. Зависит только от resolvedInHouse.
func DecideApproval(resolvedInHouse string) (GateDecision, error) {
	switch NormalizeResolvedInHouse(resolvedInHouse) {
	case constants.ResolvedInHouseYes:
		return GateDecision{
			NextStep:       StageClosure,
			CompletedSteps: int(StageClosure),
			Message:        MessageResolvedInHouse,
			NotifyAdmin:    false,
		}, nil
	case constants.ResolvedInHouseNo:
		return GateDecision{
			NextStep:       StageAdminApproval,
			CompletedSteps: int(StageCorrectiveAction),
			Message:        MessageAwaitingApproval,
			NotifyAdmin:    true,
		}, nil
	}
	return GateDecision{}, apperrors.NewFieldError("resolvedInhouse", `допустимые значения: "yes", "no"`)
}
