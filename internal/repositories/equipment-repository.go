package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"maintenance-system/internal/entities"
	"maintenance-system/pkg/constants"
	apperrors "maintenance-system/pkg/errors"
)

const equipmentColumns = `e.id, e.lab_id, e.equipment_type, e.equipment_code, e.equipment_name,
	e.company_name, e.specification, e.location, e.status, e.created_at, e.updated_at`

type EquipmentRepositoryInterface interface {
	FindEquipmentForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error)
	SetStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, status constants.EquipmentStatus) error

	FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error)
	ListByLab(ctx context.Context, labID uint64) ([]entities.Equipment, error)
}

type EquipmentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewEquipmentRepository(storage *pgxpool.Pool, logger *zap.Logger) EquipmentRepositoryInterface {
	return &EquipmentRepository{storage: storage, logger: logger}
}

func scanEquipment(row pgx.Row) (*entities.Equipment, error) {
	var e entities.Equipment
	var code int16
	err := row.Scan(
		&e.ID, &e.LabID, &e.EquipmentType, &e.Code, &e.Name,
		&e.Company, &e.Specification, &e.Location, &code, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования оборудования: %w", err)
	}
	status, err := constants.EquipmentStatusFromCode(code)
	if err != nil {
		return nil, fmt.Errorf("оборудование %d: %w", e.ID, err)
	}
	e.Status = status
	return &e, nil
}

// FindEquipmentForUpdateInTx блокирует строку оборудования: две заявки на одно оборудование не создаются одновременно.
func (r *EquipmentRepository) FindEquipmentForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error) {
	query := fmt.Sprintf(`SELECT %s FROM equipments e WHERE e.id = $1 FOR UPDATE`, equipmentColumns)
	return scanEquipment(tx.QueryRow(ctx, query, id))
}

func (r *EquipmentRepository) SetStatusInTx(ctx context.Context, tx pgx.Tx, id uint64, status constants.EquipmentStatus) error {
	code, err := status.Code()
	if err != nil {
		return apperrors.NewFieldError("status", err.Error())
	}
	tag, err := tx.Exec(ctx,
		`UPDATE equipments SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
		code, id,
	)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса оборудования %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *EquipmentRepository) FindEquipment(ctx context.Context, id uint64) (*entities.Equipment, error) {
	query := fmt.Sprintf(`SELECT %s FROM equipments e WHERE e.id = $1`, equipmentColumns)
	return scanEquipment(r.storage.QueryRow(ctx, query, id))
}

func (r *EquipmentRepository) ListByLab(ctx context.Context, labID uint64) ([]entities.Equipment, error) {
	query := fmt.Sprintf(`SELECT %s FROM equipments e WHERE e.lab_id = $1 ORDER BY e.id`, equipmentColumns)
	rows, err := r.storage.Query(ctx, query, labID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения оборудования лаборатории %d: %w", labID, err)
	}
	defer rows.Close()

	list := make([]entities.Equipment, 0)
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *e)
	}
	return list, rows.Err()
}
