package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"maintenance-system/internal/controllers"
	"maintenance-system/internal/services"
	"maintenance-system/pkg/constants"
	"maintenance-system/pkg/middleware"
)

func runRequestRouter(
	secureGroup *echo.Group,
	requestService services.RequestLifecycleServiceInterface,
	logger *zap.Logger,
	authMW *middleware.AuthMiddleware,
) {
	requestCtrl := controllers.NewRequestController(requestService, logger)

	requests := secureGroup.Group("/requests")

	// Чтение доступно всем ролям
	requests.GET("/:id", requestCtrl.FindRequest)
	requests.GET("/:id/history", requestCtrl.History)
	requests.GET("/staff/:staff_id", requestCtrl.ListByStaff)

	// Переходы выполняют лаборант и заведующий лабораторией
	staffOnly := authMW.RequireRole(constants.RoleLabAssistant, constants.RoleLabInCharge)
	requests.POST("", requestCtrl.CreateRequest, staffOnly)
	requests.PUT("/:id/step", requestCtrl.AdvanceStep, staffOnly)
	requests.PUT("/:id/verification", requestCtrl.RecordVerification, staffOnly)
	requests.PUT("/:id/corrective-action", requestCtrl.RecordCorrectiveAction, staffOnly)
	requests.PUT("/:id/closure", requestCtrl.RecordClosure, staffOnly)

	requests.PUT("/:id/approval", requestCtrl.SetApprovalStatus, authMW.RequireRole(constants.RoleAdmin))
}
