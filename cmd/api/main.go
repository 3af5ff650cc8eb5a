package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/soaco-industrial/projection-service/internal/application"
	"github.com/soaco-industrial/projection-service/internal/domain"
	"github.com/soaco-industrial/projection-service/internal/infrastructure/csvimport"
	mongoRepo "github.com/soaco-industrial/projection-service/internal/infrastructure/mongodb"
	"github.com/soaco-industrial/projection-service/pkg/kafka"
	"github.com/soaco-industrial/projection-service/pkg/logging"
	"github.com/soaco-industrial/projection-service/pkg/metrics"
	"github.com/soaco-industrial/projection-service/pkg/middleware"
	"github.com/soaco-industrial/projection-service/pkg/mongodb"
)

const serviceName = "projection-service"

func main() {
	_ = godotenv.Load()

	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting projection-service API")

	config := loadConfig()
	ctx := context.Background()

	m := metrics.New(serviceName)

	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	defer mongoClient.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	// Kafka is optional; without brokers the service runs standalone and
	// skips event publishing.
	var publisher application.EventPublisher
	if len(config.Kafka.Brokers) > 0 && config.Kafka.Brokers[0] != "" {
		producer := kafka.NewProducer(config.Kafka)
		defer producer.Close()
		publisher = producer
		logger.Info("Kafka producer initialized", "brokers", config.Kafka.Brokers)
	} else {
		logger.Info("Kafka disabled, events will not be published")
	}

	orderRepo, err := mongoRepo.NewOrderRepository(mongoClient, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize order repository")
		os.Exit(1)
	}
	stockRepo, err := mongoRepo.NewStockRepository(mongoClient, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize stock repository")
		os.Exit(1)
	}
	routeRepo, err := mongoRepo.NewRouteRepository(mongoClient, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize route repository")
		os.Exit(1)
	}
	kitRepo, err := mongoRepo.NewShelfKitRepository(mongoClient, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize shelf kit repository")
		os.Exit(1)
	}
	accountRepo, err := mongoRepo.NewAccountRepository(mongoClient, logger)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize account repository")
		os.Exit(1)
	}

	clock := domain.SystemClock{}
	projectionService := application.NewProjectionService(orderRepo, stockRepo, routeRepo, kitRepo, publisher, logger, m, clock)
	accountService := application.NewAccountService(accountRepo, logger, clock)

	if err := accountService.EnsureDefaultAdmin(ctx, config.DefaultAdminPassword); err != nil {
		logger.WithError(err).Error("Failed to bootstrap admin account")
		os.Exit(1)
	}

	router := gin.New()
	middleware.Setup(router, middleware.DefaultConfig(serviceName, logger.Logger))
	router.Use(middleware.MetricsMiddleware(m))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return mongoClient.HealthCheck(ctx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	api := router.Group("/api/v1")
	api.Use(middleware.ProfileAuth(&middleware.ProfileAuthConfig{
		DefaultProfile: string(domain.ProfileReadOnly),
	}))
	{
		api.POST("/auth/login", loginHandler(accountService, logger))

		users := api.Group("/users")
		users.Use(middleware.RequireProfile(string(domain.ProfileAdmin)))
		{
			users.GET("", listUsersHandler(accountService, logger))
			users.POST("", createUserHandler(accountService, logger))
			users.PUT("/:id", updateUserHandler(accountService, logger))
			users.DELETE("/:id", deleteUserHandler(accountService, logger))
		}

		canEdit := middleware.RequireProfile(string(domain.ProfileAdmin), string(domain.ProfilePlanning))

		api.GET("/orders", listOrdersHandler(projectionService, logger))
		api.POST("/orders/import", canEdit, importOrdersHandler(projectionService, logger))
		api.POST("/orders/import/csv", canEdit, importOrdersCSVHandler(projectionService, logger))

		api.POST("/stock/import", canEdit, importStockHandler(projectionService, logger))
		api.POST("/stock/import/csv", canEdit, importStockCSVHandler(projectionService, logger))

		api.GET("/projection", projectionHandler(projectionService, logger))

		api.GET("/routes", listRoutesHandler(projectionService, logger))
		api.PUT("/routes/sequence", canEdit, resequenceRoutesHandler(projectionService, logger))
		api.PUT("/routes/:id/date", canEdit, setRouteDateHandler(projectionService, logger))

		api.GET("/shelf-kits", listShelfKitsHandler(projectionService, logger))
		api.PUT("/shelf-kits", canEdit, saveShelfKitsHandler(projectionService, logger))
		api.DELETE("/shelf-kits/:code", canEdit, deleteShelfKitHandler(projectionService, logger))
	}

	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr           string
	DefaultAdminPassword string
	MongoDB              *mongodb.Config
	Kafka                *kafka.Config
}

func loadConfig() *Config {
	return &Config{
		ServerAddr:           getEnv("SERVER_ADDR", ":8080"),
		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", "admin123"),
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "projection"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
		},
		Kafka: kafka.DefaultConfig(splitNonEmpty(getEnv("KAFKA_BROKERS", ""))),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Auth handlers

func loginHandler(service *application.AccountService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Username string `json:"username" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		user, err := service.Login(c.Request.Context(), application.LoginCommand{
			Username: req.Username,
			Password: req.Password,
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

func listUsersHandler(service *application.AccountService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		users, err := service.ListUsers(c.Request.Context())
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, users)
	}
}

func createUserHandler(service *application.AccountService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Username string `json:"username" binding:"required"`
			Name     string `json:"name" binding:"required"`
			Password string `json:"password" binding:"required"`
			Profile  string `json:"profile" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		user, err := service.CreateUser(c.Request.Context(), application.CreateUserCommand{
			Username: req.Username,
			Name:     req.Name,
			Password: req.Password,
			Profile:  domain.Profile(req.Profile),
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusCreated, user)
	}
}

func updateUserHandler(service *application.AccountService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Name     string `json:"name" binding:"required"`
			Password string `json:"password"`
			Profile  string `json:"profile" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		user, err := service.UpdateUser(c.Request.Context(), application.UpdateUserCommand{
			ID:       c.Param("id"),
			Name:     req.Name,
			Password: req.Password,
			Profile:  domain.Profile(req.Profile),
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, user)
	}
}

func deleteUserHandler(service *application.AccountService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		if err := service.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
			responder.RespondWithError(err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// Import handlers

func importOrdersHandler(service *application.ProjectionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Lines []domain.OrderLine `json:"lines" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		result, err := service.ImportOrders(c.Request.Context(), application.ImportOrdersCommand{Lines: req.Lines})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func importOrdersCSVHandler(service *application.ProjectionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		file, err := c.FormFile("file")
		if err != nil {
			responder.RespondBadRequest("file upload is required")
			return
		}
		src, err := file.Open()
		if err != nil {
			responder.RespondBadRequest("cannot read uploaded file")
			return
		}
		defer src.Close()

		lines, err := csvimport.ParseOrders(src)
		if err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		result, err := service.ImportOrders(c.Request.Context(), application.ImportOrdersCommand{Lines: lines})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func importStockHandler(service *application.ProjectionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Items []domain.StockItem `json:"items" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		result, err := service.ImportStock(c.Request.Context(), application.ImportStockCommand{Items: req.Items})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func importStockCSVHandler(service *application.ProjectionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		file, err := c.FormFile("file")
		if err != nil {
			responder.RespondBadRequest("file upload is required")
			return
		}
		src, err := file.Open()
		if err != nil {
			responder.RespondBadRequest("cannot read uploaded file")
			return
		}
		defer src.Close()

		items, err := csvimport.ParseStock(src)
		if err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		result, err := service.ImportStock(c.Request.Context(), application.ImportStockCommand{Items: items})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// Read handlers

func listOrdersHandler(service *application.ProjectionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		orders, err := service.Orders(c.Request.Context(), application.OrdersQuery{
			Search:  c.Query("search"),
			Channel: c.Query("channel"),
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

func projectionHandler(service *application.ProjectionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var routes []string
		for _, v := range c.QueryArray("routes") {
			routes = append(routes, splitNonEmpty(v)...)
		}

		result, err := service.Projection(c.Request.Context(), application.ProjectionQuery{
			Search: c.Query("search"),
			Routes: routes,
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// Route handlers

func listRoutesHandler(service *application.ProjectionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		routes, err := service.Routes(c.Request.Context())
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, routes)
	}
}

func resequenceRoutesHandler(service *application.ProjectionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			OrderedIDs []string `json:"orderedIds" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		routes, err := service.ResequenceRoutes(c.Request.Context(), application.ResequenceRoutesCommand{
			OrderedIDs: req.OrderedIDs,
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, routes)
	}
}

func setRouteDateHandler(service *application.ProjectionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Date string `json:"date" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		date, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
		if err != nil {
			responder.RespondBadRequest("date must be in YYYY-MM-DD format")
			return
		}

		err = service.SetRouteDate(c.Request.Context(), application.SetRouteDateCommand{
			RouteID: c.Param("id"),
			Date:    date,
		})
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// Shelf kit handlers

func listShelfKitsHandler(service *application.ProjectionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		kits, err := service.ShelfKits(c.Request.Context())
		if err != nil {
			responder.RespondWithError(err)
			return
		}

		c.JSON(http.StatusOK, kits)
	}
}

func saveShelfKitsHandler(service *application.ProjectionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req struct {
			Kits []domain.ShelfKit `json:"kits" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			responder.RespondBadRequest(err.Error())
			return
		}

		if err := service.SaveShelfKits(c.Request.Context(), application.SaveShelfKitsCommand{Kits: req.Kits}); err != nil {
			responder.RespondWithError(err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

func deleteShelfKitHandler(service *application.ProjectionService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		if err := service.DeleteShelfKit(c.Request.Context(), c.Param("code")); err != nil {
			responder.RespondWithError(err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}
