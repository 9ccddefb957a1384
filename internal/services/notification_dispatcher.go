package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"maintenance-system/internal/entities"
	"maintenance-system/internal/repositories"
	apperrors "maintenance-system/pkg/errors"
	"maintenance-system/pkg/mailer"
	"maintenance-system/pkg/metrics"
)

// NotificationWriter создаёт уведомление внутри транзакции перехода.
type NotificationWriter interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, n *entities.Notification) error
}

type NotificationDispatcherInterface interface {
	NotificationWriter
	Dispatch(ctx context.Context, notificationID uint64) error
}

type NotificationDispatcher struct {
	notificationRepo repositories.NotificationRepositoryInterface
	recipients       RecipientDirectoryInterface
	sender           mailer.Sender
	timeout          time.Duration
	dashboardURL     string
	logger           *zap.Logger
}

func NewNotificationDispatcher(
	notificationRepo repositories.NotificationRepositoryInterface,
	recipients RecipientDirectoryInterface,
	sender mailer.Sender,
	timeout time.Duration,
	dashboardURL string,
	logger *zap.Logger,
) NotificationDispatcherInterface {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NotificationDispatcher{
		notificationRepo: notificationRepo,
		recipients:       recipients,
		sender:           sender,
		timeout:          timeout,
		dashboardURL:     dashboardURL,
		logger:           logger,
	}
}

func (d *NotificationDispatcher) CreateInTx(ctx context.Context, tx pgx.Tx, n *entities.Notification) error {
	if !n.UserRole.IsValid() {
		return fmt.Errorf("недопустимая роль получателя %q", n.UserRole)
	}
	if strings.TrimSpace(n.Title) == "" {
		return fmt.Errorf("пустой заголовок уведомления")
	}
	n.IsRead = false
	_, err := d.notificationRepo.CreateInTx(ctx, tx, n)
	return err
}

// Dispatch отправляет письмо по уже зафиксированному уведомлению. Одна попытка, без повторов.
// Получатель без notify_email или без записи в справочнике - не ошибка.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, notificationID uint64) (err error) {
	result := metrics.DeliverySkipped
	defer func() {
		if err != nil {
			result = metrics.DeliveryFailed
		}
		metrics.Default().ObserveDelivery(result)
	}()

	n, err := d.notificationRepo.FindByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			d.logger.Warn("Уведомление не найдено, отправка пропущена", zap.Uint64("notificationID", notificationID))
			return nil
		}
		return &apperrors.DeliveryError{NotificationID: notificationID, Err: err}
	}

	rc, err := d.recipients.Find(ctx, n.UserRole, n.StaffID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			d.logger.Warn("Получатель не найден",
				zap.Uint64("notificationID", n.ID),
				zap.String("role", n.UserRole.String()),
				zap.Uint64("staffID", n.StaffID),
			)
			return nil
		}
		return &apperrors.DeliveryError{NotificationID: n.ID, Err: err}
	}

	if !rc.NotifyEmail {
		d.logger.Debug("📭 Email-уведомления отключены", zap.String("email", rc.Email), zap.Uint64("notificationID", n.ID))
		return nil
	}

	msg, err := mailer.Render(rc.Email, n.Title, n.Message, d.dashboardURL)
	if err != nil {
		return &apperrors.DeliveryError{NotificationID: n.ID, Recipient: rc.Email, Err: err}
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	observeSend := metrics.Default().StartSend()
	err = d.sender.Send(sendCtx, msg)
	observeSend()
	if err != nil {
		return &apperrors.DeliveryError{NotificationID: n.ID, Recipient: rc.Email, Err: err}
	}
	result = metrics.DeliverySent

	d.logger.Info("📩 Уведомление отправлено", zap.Uint64("notificationID", n.ID), zap.String("email", rc.Email))
	return nil
}
