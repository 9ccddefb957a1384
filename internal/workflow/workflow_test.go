package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintenance-system/pkg/constants"
	apperrors "maintenance-system/pkg/errors"
)

func TestDecideApproval(t *testing.T) {
	yes, err := DecideApproval("yes")
	require.NoError(t, err)
	assert.Equal(t, StageClosure, yes.NextStep)
	assert.Equal(t, 6, yes.CompletedSteps)
	assert.False(t, yes.NotifyAdmin)
	assert.Equal(t, MessageResolvedInHouse, yes.Message)

	no, err := DecideApproval(" No ")
	require.NoError(t, err)
	assert.Equal(t, StageAdminApproval, no.NextStep)
	assert.Equal(t, 4, no.CompletedSteps)
	assert.True(t, no.NotifyAdmin)

	_, err = DecideApproval("partly")
	var ve *apperrors.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "resolvedInhouse")
}

func TestParseStage(t *testing.T) {
	s, err := ParseStage("nextStep", 3)
	require.NoError(t, err)
	assert.Equal(t, StageVerified, s)
	assert.Equal(t, "Verified", s.String())

	_, err = ParseStage("nextStep", 7)
	assert.Error(t, err)
	_, err = ParseStage("nextStep", 0)
	assert.Error(t, err)
}

func TestCheckAdvance(t *testing.T) {
	cases := []struct {
		name      string
		cur       Cursor
		next      Stage
		completed int
		conflict  bool
		invalid   bool
	}{
		{"submitted to acknowledged", Cursor{Current: 1}, 2, 1, false, false},
		{"acknowledged to verified", Cursor{Current: 2, Completed: 1}, 3, 2, false, false},
		{"stay in place", Cursor{Current: 2, Completed: 1}, 2, 1, false, false},
		{"skip stage", Cursor{Current: 1}, 3, 1, true, false},
		{"backwards", Cursor{Current: 3, Completed: 2}, 2, 2, true, false},
		{"into approval", Cursor{Current: 4, Completed: 3}, 5, 4, true, false},
		{"from approval", Cursor{Current: 5, Completed: 4}, 5, 4, true, false},
		{"closed", Cursor{Current: 6, Completed: 6, Closed: true}, 6, 6, true, false},
		{"completed above next", Cursor{Current: 1}, 2, 3, false, true},
		{"completed decreases", Cursor{Current: 2, Completed: 2}, 3, 1, true, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckAdvance(tc.cur, tc.next, tc.completed)
			switch {
			case tc.conflict:
				assert.ErrorIs(t, err, apperrors.ErrConflict)
			case tc.invalid:
				var ve *apperrors.ValidationError
				assert.ErrorAs(t, err, &ve)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckVerification(t *testing.T) {
	assert.NoError(t, CheckVerification(Cursor{Current: 2, Completed: 1}, 4, 3))
	assert.NoError(t, CheckVerification(Cursor{Current: 4, Completed: 3}, 4, 3), "повторная отправка")
	assert.ErrorIs(t, CheckVerification(Cursor{Current: 1}, 3, 2), apperrors.ErrConflict)
	assert.ErrorIs(t, CheckVerification(Cursor{Current: 5, Completed: 4}, 4, 3), apperrors.ErrConflict)
	assert.ErrorIs(t, CheckVerification(Cursor{Current: 2, Completed: 1}, 5, 4), apperrors.ErrConflict)
}

func TestCheckCorrectiveAction(t *testing.T) {
	yes, _ := DecideApproval("yes")
	no, _ := DecideApproval("no")

	assert.NoError(t, CheckCorrectiveAction(Cursor{Current: 4, Completed: 3}, no))
	assert.NoError(t, CheckCorrectiveAction(Cursor{Current: 3, Completed: 2}, yes))
	assert.ErrorIs(t, CheckCorrectiveAction(Cursor{Current: 2, Completed: 1}, yes), apperrors.ErrConflict)

	// повтор с тем же решением
	assert.NoError(t, CheckCorrectiveAction(Cursor{Current: 5, Completed: 4}, no))
	assert.NoError(t, CheckCorrectiveAction(Cursor{Current: 6, Completed: 6}, yes))
	// смена ветки после решения шлюза
	assert.ErrorIs(t, CheckCorrectiveAction(Cursor{Current: 5, Completed: 4}, yes), apperrors.ErrConflict)
	// решение администратора уже принято
	decided := Cursor{Current: 5, Completed: 4, ApprovalStatus: constants.ApprovalApproved}
	assert.ErrorIs(t, CheckCorrectiveAction(decided, no), apperrors.ErrConflict)
}

func TestCheckApprovalAndClosure(t *testing.T) {
	assert.NoError(t, CheckApproval(Cursor{Current: 5, Completed: 4}))
	assert.ErrorIs(t, CheckApproval(Cursor{Current: 6, Completed: 6}), apperrors.ErrConflict)
	assert.ErrorIs(t, CheckApproval(Cursor{Current: 4, Completed: 3}), apperrors.ErrConflict)

	assert.NoError(t, CheckClosure(Cursor{Current: 5, Completed: 4}, false))
	assert.NoError(t, CheckClosure(Cursor{Current: 6, Completed: 6}, true))
	assert.ErrorIs(t, CheckClosure(Cursor{Current: 4, Completed: 3}, false), apperrors.ErrConflict)
	assert.ErrorIs(t, CheckClosure(Cursor{Current: 5, Completed: 4}, true), apperrors.ErrConflict)
	approved := Cursor{Current: 5, Completed: 4, ApprovalStatus: constants.ApprovalApproved}
	assert.NoError(t, CheckClosure(approved, true))
	assert.ErrorIs(t, CheckClosure(Cursor{Current: 6, Completed: 6, Closed: true}, false), apperrors.ErrConflict)
}

func TestAuthorize(t *testing.T) {
	assert.NoError(t, Authorize(OpApproval, constants.RoleAdmin))
	assert.ErrorIs(t, Authorize(OpApproval, constants.RoleLabAssistant), apperrors.ErrForbidden)
	assert.NoError(t, Authorize(OpClosure, constants.RoleLabAssistant))
	assert.ErrorIs(t, Authorize(OpClosure, constants.RoleAdmin), apperrors.ErrForbidden)
	assert.NoError(t, Authorize(OpCreate, constants.RoleLabInCharge))
}
