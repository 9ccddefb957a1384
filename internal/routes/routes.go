package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"maintenance-system/internal/listeners"
	"maintenance-system/internal/repositories"
	"maintenance-system/internal/services"
	"maintenance-system/pkg/config"
	"maintenance-system/pkg/eventbus"
	"maintenance-system/pkg/mailer"
	"maintenance-system/pkg/middleware"
	"maintenance-system/pkg/service"
	"maintenance-system/pkg/validation"
)

type Loggers struct {
	Main         *zap.Logger
	Auth         *zap.Logger
	Request      *zap.Logger
	Notification *zap.Logger
}

// Services - всё, что нужно контроллерам.
type Services struct {
	Requests      services.RequestLifecycleServiceInterface
	Equipment     services.EquipmentServiceInterface
	Notifications services.NotificationServiceInterface
	Recipients    services.RecipientDirectoryInterface
	Reports       services.ReportServiceInterface
}

// BuildServices собирает репозитории и сервисы и подписывает доставку писем на шину.
// redisClient может быть nil - тогда контакты получателей не кешируются.
func BuildServices(
	dbConn *pgxpool.Pool,
	redisClient *redis.Client,
	bus *eventbus.Bus,
	sender mailer.Sender,
	cfg *config.Config,
	loggers *Loggers,
) *Services {
	loggers.Main.Info("BuildServices: Начало сборки сервисов")

	// --- 0. ОБЩИЕ КОМПОНЕНТЫ ---
	txManager := repositories.NewTxManager(dbConn)
	v := validation.New()

	var cacheRepo repositories.CacheRepositoryInterface
	if redisClient != nil {
		cacheRepo = repositories.NewRedisCacheRepository(redisClient)
	}

	// --- 1. РЕПОЗИТОРИИ ---
	requestRepo := repositories.NewRequestRepository(dbConn, loggers.Request)
	historyRepo := repositories.NewRequestHistoryRepository(dbConn, loggers.Request)
	equipmentRepo := repositories.NewEquipmentRepository(dbConn, loggers.Main)
	notificationRepo := repositories.NewNotificationRepository(dbConn, loggers.Notification)
	recipientRepo := repositories.NewRecipientRepository(dbConn, loggers.Notification)

	// --- 2. СЕРВИСЫ ---
	equipmentService := services.NewEquipmentService(txManager, equipmentRepo, requestRepo, v, loggers.Main)
	recipients := services.NewRecipientDirectory(recipientRepo, cacheRepo, cfg.Notification.RecipientCacheTTL, loggers.Notification)
	dispatcher := services.NewNotificationDispatcher(
		notificationRepo,
		recipients,
		sender,
		cfg.Email.Timeout,
		cfg.Notification.DashboardURL,
		loggers.Notification,
	)
	requestService := services.NewRequestLifecycleService(
		txManager, requestRepo, historyRepo, equipmentService, dispatcher, bus, v, cfg.Workflow, loggers.Request,
	)

	// --- 3. СЛУШАТЕЛИ ---
	listeners.NewNotificationListener(dispatcher, loggers.Notification).Register(bus)

	return &Services{
		Requests:      requestService,
		Equipment:     equipmentService,
		Notifications: services.NewNotificationService(notificationRepo, loggers.Notification),
		Recipients:    recipients,
		Reports:       services.NewReportService(requestRepo, loggers.Main),
	}
}

func InitRouter(e *echo.Echo, svc *Services, jwtSvc service.JWTService, loggers *Loggers) {
	loggers.Main.Info("InitRouter: Начало создания маршрутов")

	// Метрики Prometheus, без авторизации
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api", middleware.InjectLogger(loggers.Main))
	authMW := middleware.NewAuthMiddleware(jwtSvc, loggers.Auth)
	secureGroup := api.Group("", authMW.Auth)

	runRequestRouter(secureGroup, svc.Requests, loggers.Request, authMW)
	runAdminRouter(secureGroup, svc.Requests, svc.Reports, loggers.Main, authMW)
	runEquipmentRouter(secureGroup, svc.Equipment, loggers.Main, authMW)
	runNotificationRouter(secureGroup, svc.Notifications, svc.Recipients, loggers.Notification)

	loggers.Main.Info("INIT_ROUTER: Создание маршрутов завершено")
}
