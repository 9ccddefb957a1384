package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/entities"
	db "maintenance-system/internal/infrastructure/bd"
	"maintenance-system/pkg/constants"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/types"
)

var notificationMap = map[string]string{
	"type":       "n.type",
	"is_read":    "n.is_read",
	"request_id": "n.request_id",
	"timestamp":  "n.created_at",
}

type NotificationRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, n *entities.Notification) (uint64, error)

	FindByID(ctx context.Context, id uint64) (*entities.Notification, error)
	ListByRecipient(ctx context.Context, role constants.Role, staffID uint64, filter types.Filter) ([]dto.NotificationDTO, error)
	CountUnread(ctx context.Context, role constants.Role, staffID uint64) (uint64, error)
	MarkRead(ctx context.Context, id uint64, role constants.Role, staffID uint64) error
	Delete(ctx context.Context, id uint64, role constants.Role, staffID uint64) error
}

type NotificationRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewNotificationRepository(storage *pgxpool.Pool, logger *zap.Logger) NotificationRepositoryInterface {
	return &NotificationRepository{storage: storage, logger: logger}
}

func (r *NotificationRepository) CreateInTx(ctx context.Context, tx pgx.Tx, n *entities.Notification) (uint64, error) {
	query := `
		INSERT INTO notifications (user_role, staff_id, type, title, message, is_read, request_id)
		VALUES ($1, $2, $3, $4, $5, FALSE, $6)
		RETURNING id, created_at`

	err := tx.QueryRow(ctx, query,
		n.UserRole.String(), n.StaffID, n.Type, n.Title, n.Message, n.RequestID,
	).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("ошибка вставки уведомления: %w", err)
	}
	return n.ID, nil
}

func (r *NotificationRepository) FindByID(ctx context.Context, id uint64) (*entities.Notification, error) {
	var n entities.Notification
	var role string
	err := r.storage.QueryRow(ctx, `
		SELECT id, user_role, staff_id, type, title, message, is_read, request_id, created_at
		FROM notifications WHERE id = $1`, id,
	).Scan(&n.ID, &role, &n.StaffID, &n.Type, &n.Title, &n.Message, &n.IsRead, &n.RequestID, &n.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения уведомления %d: %w", id, err)
	}
	n.UserRole = constants.Role(role)
	return &n, nil
}

// ListByRecipient - уведомления роли и сотрудника вместе с оборудованием заявки, новые сверху.
func (r *NotificationRepository) ListByRecipient(ctx context.Context, role constants.Role, staffID uint64, filter types.Filter) ([]dto.NotificationDTO, error) {
	builder := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select(
			"n.id", "n.user_role", "n.type", "n.title", "n.message", "n.is_read",
			"n.created_at", "n.request_id", "n.staff_id",
			"COALESCE(e.id, 0)", "COALESCE(e.equipment_name, '')",
		).
		From("notifications n").
		LeftJoin("requests r ON r.id = n.request_id").
		LeftJoin("equipments e ON e.id = r.equipment_id").
		Where(recipientWhere("n.", role, staffID))
	builder = db.ApplyListParams(builder, filter, notificationMap, "n.created_at DESC")

	sqlStr, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса уведомлений: %w", err)
	}
	rows, err := r.storage.Query(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения уведомлений: %w", err)
	}
	defer rows.Close()

	list := make([]dto.NotificationDTO, 0)
	for rows.Next() {
		var d dto.NotificationDTO
		if err := rows.Scan(
			&d.ID, &d.UserRole, &d.Type, &d.Title, &d.Message, &d.IsRead,
			&d.Timestamp, &d.RequestID, &d.StaffID, &d.EquipmentID, &d.EquipmentName,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования уведомления: %w", err)
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

func (r *NotificationRepository) CountUnread(ctx context.Context, role constants.Role, staffID uint64) (uint64, error) {
	sqlStr, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Select("COUNT(*)").
		From("notifications").
		Where(recipientWhere("", role, staffID)).
		Where(sq.Eq{"is_read": false}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса: %w", err)
	}
	var count uint64
	if err := r.storage.QueryRow(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта непрочитанных уведомлений: %w", err)
	}
	return count, nil
}

// MarkRead и Delete ограничены получателем: чужое уведомление выглядит как отсутствующее.
func (r *NotificationRepository) MarkRead(ctx context.Context, id uint64, role constants.Role, staffID uint64) error {
	sqlStr, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Update("notifications").
		Set("is_read", true).
		Where(sq.Eq{"id": id}).
		Where(recipientWhere("", role, staffID)).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса: %w", err)
	}
	tag, err := r.storage.Exec(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("ошибка отметки уведомления %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id uint64, role constants.Role, staffID uint64) error {
	sqlStr, args, err := sq.StatementBuilder.PlaceholderFormat(sq.Dollar).
		Delete("notifications").
		Where(sq.Eq{"id": id}).
		Where(recipientWhere("", role, staffID)).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса: %w", err)
	}
	tag, err := r.storage.Exec(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("ошибка удаления уведомления %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// recipientWhere - условие "уведомление адресовано роли". staffID = 0 снимает фильтр по сотруднику:
// администратор видит все уведомления роли admin, по всем лабораториям.
func recipientWhere(prefix string, role constants.Role, staffID uint64) sq.Sqlizer {
	cond := sq.Eq{prefix + "user_role": role.String()}
	if staffID != 0 {
		cond[prefix+"staff_id"] = staffID
	}
	return cond
}
