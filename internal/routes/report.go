package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"task-system/internal/controllers"
	"task-system/internal/services"
	"task-system/pkg/middleware"
)

func runReportRouter(secureGroup *echo.Group, reportService services.ReportServiceInterface, logger *zap.Logger, authMW *middleware.AuthMiddleware) {
	reportCtrl := controllers.NewReportController(reportService, logger)
	{
		secureGroup.GET("/reports/payroll", reportCtrl.GetPayrollReport, authMW.RequireAdmin)
	}
}
