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

// Таблицы контактов ролей лаборатории. Имя таблицы берём только отсюда, не из входных данных.
var recipientTables = map[constants.Role]string{
	constants.RoleLabAssistant: "lab_assistants",
	constants.RoleLabInCharge:  "lab_incharges",
}

type RecipientRepositoryInterface interface {
	FindRecipient(ctx context.Context, role constants.Role, staffID uint64) (*entities.Recipient, error)
	UpdateNotifyEmail(ctx context.Context, role constants.Role, staffID uint64, enabled bool) ([]uint64, error)
}

type RecipientRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewRecipientRepository(storage *pgxpool.Pool, logger *zap.Logger) RecipientRepositoryInterface {
	return &RecipientRepository{storage: storage, logger: logger}
}

// FindRecipient ищет контакт получателя. Для администратора: сотрудник -> лаборатория -> администратор.
func (r *RecipientRepository) FindRecipient(ctx context.Context, role constants.Role, staffID uint64) (*entities.Recipient, error) {
	var query string
	if role == constants.RoleAdmin {
		query = `
			SELECT a.name, a.email, a.notify_email
			FROM staff s
			JOIN labs l ON l.id = s.lab_id
			JOIN admins a ON a.id = l.admin_id
			WHERE s.id = $1`
	} else {
		table, ok := recipientTables[role]
		if !ok {
			return nil, fmt.Errorf("неизвестная роль получателя %q", role)
		}
		query = fmt.Sprintf(`SELECT name, email, notify_email FROM %s WHERE staff_id = $1`, table)
	}

	var rc entities.Recipient
	err := r.storage.QueryRow(ctx, query, staffID).Scan(&rc.Name, &rc.Email, &rc.NotifyEmail)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска получателя %s/%d: %w", role, staffID, err)
	}
	return &rc, nil
}

// UpdateNotifyEmail меняет флаг почтовых уведомлений и возвращает staff_id,
// чьи записи кеша получателя устарели. Администратор общий для всех
// сотрудников своих лабораторий, поэтому для него список длиннее одного.
func (r *RecipientRepository) UpdateNotifyEmail(ctx context.Context, role constants.Role, staffID uint64, enabled bool) ([]uint64, error) {
	if role == constants.RoleAdmin {
		return r.updateAdminNotifyEmail(ctx, staffID, enabled)
	}

	table, ok := recipientTables[role]
	if !ok {
		return nil, fmt.Errorf("неизвестная роль получателя %q", role)
	}
	query := fmt.Sprintf(`UPDATE %s SET notify_email = $1 WHERE staff_id = $2`, table)

	tag, err := r.storage.Exec(ctx, query, enabled, staffID)
	if err != nil {
		return nil, fmt.Errorf("ошибка обновления настроек %s/%d: %w", role, staffID, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.ErrNotFound
	}
	return []uint64{staffID}, nil
}

func (r *RecipientRepository) updateAdminNotifyEmail(ctx context.Context, staffID uint64, enabled bool) ([]uint64, error) {
	query := `
		WITH updated AS (
			UPDATE admins a
			SET notify_email = $1, updated_at = CURRENT_TIMESTAMP
			FROM staff s
			JOIN labs l ON l.id = s.lab_id
			WHERE s.id = $2 AND a.id = l.admin_id
			RETURNING a.id
		)
		SELECT s.id
		FROM staff s
		JOIN labs l ON l.id = s.lab_id
		WHERE l.admin_id IN (SELECT id FROM updated)
		ORDER BY s.id`

	rows, err := r.storage.Query(ctx, query, enabled, staffID)
	if err != nil {
		return nil, fmt.Errorf("ошибка обновления настроек администратора (staff %d): %w", staffID, err)
	}
	defer rows.Close()

	var staffIDs []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		staffIDs = append(staffIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка обновления настроек администратора (staff %d): %w", staffID, err)
	}
	if len(staffIDs) == 0 {
		return nil, apperrors.ErrNotFound
	}
	r.logger.Info("Обновлены настройки уведомлений администратора",
		zap.Uint64("staff_id", staffID), zap.Int("affected_staff", len(staffIDs)))
	return staffIDs, nil
}
