package main

import (
	"os"

	_ "hrm/api/swagger" // swagger docs
	"hrm/internal/database"
	"hrm/internal/handler"
	"hrm/internal/jobs"
	"hrm/internal/middleware"
	"hrm/internal/repository"
	"hrm/internal/service"
	"hrm/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           HR Time-Off API
// @version         1.0
// @description     Employee time-off requests, approval workflow and monthly leave quota ledger.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := godotenv.Load("configs/.env"); err != nil {
		logger.Info().Msg("No configs/.env file found or error loading it")
	}

	dbHost := envOr("DB_HOST", "localhost")
	dbPort := envOr("DB_PORT", "5432")
	dbUser := envOr("DB_USER", "postgres")
	dbPassword := envOr("DB_PASSWORD", "postgres")
	dbName := envOr("DB_NAME", "postgres")
	dbSslMode := envOr("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		logger.Fatal().Err(err).Msg("Database connection failed")
	}
	logger.Info().Msg("Connected to PostgreSQL successfully")

	// Set up WebSocket Hub for request lifecycle notifications
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txMgr := repository.NewTransactionManager(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	quotaRepo := repository.NewQuotaRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	employeeService := service.NewEmployeeService(employeeRepo, departmentRepo, auditRepo)
	departmentService := service.NewDepartmentService(departmentRepo)
	requestService := service.NewRequestService(requestRepo, quotaRepo, auditRepo, txMgr, wsHub, logger)
	quotaService := service.NewQuotaService(quotaRepo, requestRepo, employeeRepo, departmentRepo, auditRepo, txMgr, logger)
	dashboardService := service.NewDashboardService(quotaRepo, requestRepo)
	auditService := service.NewAuditService(auditRepo)

	// Initialize Handlers
	employeeHandler := handler.NewEmployeeHandler(employeeService)
	departmentHandler := handler.NewDepartmentHandler(departmentService)
	requestHandler := handler.NewRequestHandler(requestService)
	quotaHandler := handler.NewQuotaHandler(quotaService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Optional monthly auto-provisioning of default quotas
	if raw := os.Getenv("DEFAULT_MONTHLY_QUOTA"); raw != "" {
		defaultDays, parseErr := decimal.NewFromString(raw)
		if parseErr != nil {
			logger.Fatal().Err(parseErr).Msg("invalid DEFAULT_MONTHLY_QUOTA")
		}
		if _, jobErr := jobs.StartMonthlyProvisioning(quotaService, defaultDays, logger); jobErr != nil {
			logger.Fatal().Err(jobErr).Msg("failed to schedule quota provisioning job")
		}
		logger.Info().Str("default_days", defaultDays.String()).Msg("monthly quota provisioning scheduled")
	}

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173"}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	employeeHandler.RegisterRoutes(router.Group(""))
	departmentHandler.RegisterRoutes(router.Group(""))
	requestHandler.RegisterRoutes(router.Group(""))
	quotaHandler.RegisterRoutes(router.Group(""))
	dashboardHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	port := envOr("PORT", "8080")

	logger.Info().Str("port", port).Msg("Server listening")
	if err := router.Run(":" + port); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
