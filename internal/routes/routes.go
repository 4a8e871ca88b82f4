package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"task-system/internal/repositories"
	"task-system/internal/services"
	"task-system/pkg/config"
	"task-system/pkg/filestorage"
	"task-system/pkg/middleware"
	"task-system/pkg/service"
)

type Loggers struct {
	Main *zap.Logger
	Task *zap.Logger
}

func InitRouter(e *echo.Echo, dbConn *pgxpool.Pool, redisClient *redis.Client, jwtSvc service.JWTService, loggers *Loggers, cfg *config.Config) {
	loggers.Main.Info("InitRouter: начало создания маршрутов")

	// --- 0. ОБЩИЕ КОМПОНЕНТЫ ---
	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, loggers.Main)
	fileStorage, err := filestorage.NewLocalFileStorage(cfg.Upload.BasePath, cfg.Upload.PublicPrefix)
	if err != nil {
		loggers.Main.Fatal("не удалось создать файловое хранилище", zap.Error(err))
	}
	txManager := repositories.NewTxManager(dbConn)

	// --- 1. РЕПОЗИТОРИИ ---
	taskRepo := repositories.NewTaskRepository(dbConn)
	userRepo := repositories.NewUserRepository(dbConn)
	zakazRepo := repositories.NewZakazRepository(dbConn)
	automationRepo := repositories.NewAutomationRepository(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	// --- 2. СЕРВИСЫ ---
	automationService := services.NewAutomationService(zakazRepo, automationRepo, loggers.Main)
	taskService := services.NewTaskService(
		taskRepo, userRepo, zakazRepo, automationService,
		txManager, fileStorage, cacheRepo, loggers.Task,
	)
	reportService := services.NewReportService(userRepo, loggers.Main)

	// --- 3. РОУТЕРЫ ---
	secureGroup := api.Group("", authMW.Auth)

	runTaskRouter(secureGroup, taskService, loggers.Task, authMW)
	runReportRouter(secureGroup, reportService, loggers.Main, authMW)

	loggers.Main.Info("InitRouter: создание маршрутов завершено")
}
