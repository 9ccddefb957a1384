package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"maintenance-system/internal/controllers"
	"maintenance-system/internal/services"
	"maintenance-system/pkg/constants"
	"maintenance-system/pkg/middleware"
)

func runAdminRouter(
	secureGroup *echo.Group,
	requestService services.RequestLifecycleServiceInterface,
	reportService services.ReportServiceInterface,
	logger *zap.Logger,
	authMW *middleware.AuthMiddleware,
) {
	requestCtrl := controllers.NewRequestController(requestService, logger)
	reportCtrl := controllers.NewReportController(reportService, logger)

	admin := secureGroup.Group("/admin", authMW.RequireRole(constants.RoleAdmin))

	admin.GET("/requests/pending", reportCtrl.PendingApprovals)
	admin.GET("/requests/pending/count", reportCtrl.CountPendingApprovals)
	admin.GET("/reports", reportCtrl.GetReport)

	admin.PUT("/:id/approved", requestCtrl.Approve)
	admin.PUT("/:id/rejected", requestCtrl.Reject)
}
