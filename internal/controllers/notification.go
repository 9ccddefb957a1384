package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"maintenance-system/internal/dto"
	"maintenance-system/internal/services"
	"maintenance-system/pkg/api"
	"maintenance-system/pkg/utils"
)

type NotificationController struct {
	notificationService services.NotificationServiceInterface
	recipients          services.RecipientDirectoryInterface
	logger              *zap.Logger
}

func NewNotificationController(
	notificationService services.NotificationServiceInterface,
	recipients services.RecipientDirectoryInterface,
	logger *zap.Logger,
) *NotificationController {
	return &NotificationController{notificationService: notificationService, recipients: recipients, logger: logger}
}

// GetNotifications - уведомления текущего участника, новые сверху.
func (c *NotificationController) GetNotifications(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	list, err := c.notificationService.List(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if list == nil {
		list = make([]dto.NotificationDTO, 0)
	}
	return utils.SuccessResponse(ctx, list, "Successfully", http.StatusOK)
}

func (c *NotificationController) CountUnread(ctx echo.Context) error {
	count, err := c.notificationService.CountUnread(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessOne(ctx, http.StatusOK, "Successfully", map[string]uint64{"count": count})
}

func (c *NotificationController) MarkRead(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.notificationService.MarkRead(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Уведомление прочитано", http.StatusOK)
}

func (c *NotificationController) DeleteNotification(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.notificationService.Delete(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Уведомление удалено", http.StatusOK)
}

func (c *NotificationController) GetPreferences(ctx echo.Context) error {
	prefs, err := c.recipients.GetPreferences(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, prefs, "Successfully", http.StatusOK)
}

func (c *NotificationController) UpdatePreferences(ctx echo.Context) error {
	var payload dto.UpdateNotificationPreferencesDTO
	if err := bind(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	prefs, err := c.recipients.UpdatePreferences(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, prefs, "Настройки уведомлений обновлены", http.StatusOK)
}
