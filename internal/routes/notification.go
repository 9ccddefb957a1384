package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"maintenance-system/internal/controllers"
	"maintenance-system/internal/services"
)

func runNotificationRouter(
	secureGroup *echo.Group,
	notificationService services.NotificationServiceInterface,
	recipients services.RecipientDirectoryInterface,
	logger *zap.Logger,
) {
	notificationCtrl := controllers.NewNotificationController(notificationService, recipients, logger)

	notifications := secureGroup.Group("/notifications")

	// Получатель определяется по токену: роль + staff_id
	notifications.GET("", notificationCtrl.GetNotifications)
	notifications.GET("/unread/count", notificationCtrl.CountUnread)
	notifications.PUT("/:id/read", notificationCtrl.MarkRead)
	notifications.DELETE("/:id", notificationCtrl.DeleteNotification)

	notifications.GET("/preferences", notificationCtrl.GetPreferences)
	notifications.PUT("/preferences", notificationCtrl.UpdatePreferences)
}
