package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"maintenance-system/internal/entities"
)

type RequestHistoryRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, history *entities.RequestHistory) error
	FindByRequestID(ctx context.Context, requestID uint64) ([]entities.RequestHistory, error)
}

type RequestHistoryRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewRequestHistoryRepository(storage *pgxpool.Pool, logger *zap.Logger) RequestHistoryRepositoryInterface {
	return &RequestHistoryRepository{storage: storage, logger: logger}
}

func (r *RequestHistoryRepository) CreateInTx(ctx context.Context, tx pgx.Tx, h *entities.RequestHistory) error {
	query := `
		INSERT INTO request_history (request_id, staff_id, actor_role, event_type, from_step, to_step, comment, tx_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := tx.QueryRow(ctx, query,
		h.RequestID, h.StaffID, h.ActorRole, h.EventType, h.FromStep, h.ToStep, h.Comment, h.TxID,
	).Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка записи истории заявки %d: %w", h.RequestID, err)
	}
	return nil
}

func (r *RequestHistoryRepository) FindByRequestID(ctx context.Context, requestID uint64) ([]entities.RequestHistory, error) {
	rows, err := r.storage.Query(ctx, `
		SELECT id, request_id, staff_id, actor_role, event_type, from_step, to_step, comment, tx_id, created_at
		FROM request_history
		WHERE request_id = $1
		ORDER BY created_at ASC, id ASC`, requestID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории заявки %d: %w", requestID, err)
	}
	defer rows.Close()

	list := make([]entities.RequestHistory, 0)
	for rows.Next() {
		var h entities.RequestHistory
		if err := rows.Scan(
			&h.ID, &h.RequestID, &h.StaffID, &h.ActorRole, &h.EventType,
			&h.FromStep, &h.ToStep, &h.Comment, &h.TxID, &h.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования истории: %w", err)
		}
		list = append(list, h)
	}
	return list, rows.Err()
}
