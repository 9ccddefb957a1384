package db

import (
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintenance-system/pkg/types"
)

var allowed = map[string]string{
	"current_step": "r.current_step",
	"created_at":   "r.created_at",
}

func base() sq.SelectBuilder {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar).Select("r.id").From("requests r")
}

func TestApplyListParams_FiltersAndPagination(t *testing.T) {
	filter := types.Filter{
		Filter:         map[string]interface{}{"current_step": "4,5", "password": "x"},
		Sort:           map[string]string{"created_at": "desc"},
		Limit:          10,
		Offset:         20,
		WithPagination: true,
	}

	sqlStr, args, err := ApplyListParams(base(), filter, allowed, "r.id DESC").ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT r.id FROM requests r WHERE r.current_step IN ($1,$2) ORDER BY r.created_at DESC LIMIT 10 OFFSET 20", sqlStr)
	assert.Equal(t, []interface{}{"4", "5"}, args)
}

func TestApplyListParams_DefaultOrder(t *testing.T) {
	sqlStr, args, err := ApplyListParams(base(), types.Filter{}, allowed, "r.id DESC").ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT r.id FROM requests r ORDER BY r.id DESC", sqlStr)
	assert.Empty(t, args)
}
