package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintenance-system/internal/dto"
	apperrors "maintenance-system/pkg/errors"
)

func TestValidate_FieldLevelDetail(t *testing.T) {
	v := New()

	err := v.Validate(&dto.CreateRequestDTO{
		Form: dto.RequestFormDTO{
			TypeOfProblem:    "Hardware",
			Department:       "   ",
			ComplaintDetails: "Monitor flickers",
			Date:             "15/01/2025",
		},
		StaffID:     3,
		EquipmentID: 0,
	})
	require.Error(t, err)

	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "form.department")
	assert.Contains(t, ve.Fields, "form.location")
	assert.Contains(t, ve.Fields, "form.date")
	assert.Contains(t, ve.Fields, "equipment_id")
	assert.NotContains(t, ve.Fields, "staff_id")
}

func TestValidate_OneOf(t *testing.T) {
	v := New()

	err := v.Validate(&dto.ClosureDTO{LabCompletionName: "R. Iyer", EquipmentStatus: "maintenance"})
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "допустимые значения: active damaged", ve.Fields["equipmentStatus"])

	assert.NoError(t, v.Validate(&dto.ClosureDTO{LabCompletionName: "R. Iyer", EquipmentStatus: "damaged"}))
}

func TestTranslate_Nil(t *testing.T) {
	assert.NoError(t, Translate(nil))
}
