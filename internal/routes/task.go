package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"task-system/internal/controllers"
	"task-system/internal/services"
	"task-system/pkg/middleware"
)

func runTaskRouter(secureGroup *echo.Group, taskService services.TaskServiceInterface, logger *zap.Logger, authMW *middleware.AuthMiddleware) {
	taskCtrl := controllers.NewTaskController(taskService, logger)
	{
		secureGroup.GET("/tasks", taskCtrl.GetTasks)
		secureGroup.GET("/tasks/:id", taskCtrl.GetTask)
		secureGroup.POST("/tasks/:id/submit", taskCtrl.SubmitForReview)
		secureGroup.POST("/tasks/:id/approve", taskCtrl.ApproveTask, authMW.RequireAdmin)
		secureGroup.POST("/tasks/:id/return", taskCtrl.ReturnForRework, authMW.RequireAdmin)
		secureGroup.POST("/tasks/:id/penalty", taskCtrl.ApplyDispatcherPenalty, authMW.RequireAdmin)
		secureGroup.DELETE("/tasks/:id", taskCtrl.DeleteTask, authMW.RequireAdmin)
	}
}
