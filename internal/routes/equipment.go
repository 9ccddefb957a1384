package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"maintenance-system/internal/controllers"
	"maintenance-system/internal/services"
	"maintenance-system/pkg/constants"
	"maintenance-system/pkg/middleware"
)

func runEquipmentRouter(
	secureGroup *echo.Group,
	equipmentService services.EquipmentServiceInterface,
	logger *zap.Logger,
	authMW *middleware.AuthMiddleware,
) {
	equipmentCtrl := controllers.NewEquipmentController(equipmentService, logger)

	equipment := secureGroup.Group("/equipment")

	equipment.GET("/:id", equipmentCtrl.FindEquipment)
	equipment.GET("/:id/status", equipmentCtrl.GetStatus)
	equipment.GET("/lab/:lab_id", equipmentCtrl.ListByLab)
	equipment.PUT("/:id/status", equipmentCtrl.OverrideStatus, authMW.RequireRole(constants.RoleAdmin))
}
