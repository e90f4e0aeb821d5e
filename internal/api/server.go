package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"boxoffice/internal/config"
	"boxoffice/internal/database"
	"boxoffice/internal/handlers"
	"boxoffice/internal/messaging"
	"boxoffice/internal/metrics"
	"boxoffice/internal/middleware"
	"boxoffice/internal/repository"
	"boxoffice/internal/search"
	"boxoffice/internal/service"
)

// Server представляет HTTP сервер реестра продаж
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	search   *search.ElasticsearchClient
	metrics  *metrics.Metrics
	services *service.Services
}

// NewServer создает новый экземпляр сервера
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	// Устанавливаем режим Gin
	gin.SetMode(cfg.GinMode)

	// Подключаемся к базе данных
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Запускаем миграции
	if err := db.RunMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// NATS не обязателен: без него терминалы узнают о продажах по таймеру
	var publisher messaging.Publisher
	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		slog.Warn("NATS unavailable, sales changes will not be published", "error", err)
		natsClient = nil
	} else {
		publisher = natsClient
	}

	// Elasticsearch only serves search; PostgreSQL stays the source of truth
	var searcher service.SaleSearcher
	var esClient *search.ElasticsearchClient
	if cfg.Elasticsearch.Enabled {
		esClient, err = search.NewElasticsearchClient(cfg.Elasticsearch)
		if err != nil {
			slog.Warn("Elasticsearch unavailable, search falls back to PostgreSQL", "error", err)
			esClient = nil
		} else {
			searcher = esClient
		}
	}

	m := metrics.New()
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, searcher, publisher, m)

	server := &Server{
		router:   newRouter(m),
		config:   cfg,
		db:       db,
		nats:     natsClient,
		search:   esClient,
		metrics:  m,
		services: services,
	}

	// Настраиваем роуты
	server.setupRoutes()

	return server, nil
}

func newRouter(m *metrics.Metrics) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(m.Middleware())
	return router
}

// setupRoutes настраивает все API роуты
func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services)

	api := s.router.Group("/api")
	{
		sales := api.Group("/sales")
		{
			sales.GET("", h.ListSales)
			sales.POST("", h.CreateSale)
			sales.GET("/search", h.SearchSales)
			sales.GET("/stats", h.SalesStats)
			sales.GET("/seat/:seat_id", h.GetSaleBySeat)
			sales.DELETE("/:id", h.DeleteSale)
		}

		students := api.Group("/students")
		{
			students.GET("", h.ListStudents)
			students.POST("", h.CreateStudent)
			students.PUT("/:id", h.UpdateStudent)
			students.DELETE("/:id", h.DeleteStudent)
		}

		api.GET("/settings", h.GetSettings)
		api.PUT("/settings", h.UpdateSettings)
		api.POST("/reset", h.ResetLedger)
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", s.metrics.Handler())
}

// healthCheck проверяет базу данных и нагрузку на пул соединений
func (s *Server) healthCheck(c *gin.Context) {
	db := s.db.HealthCheck(c.Request.Context())

	status := http.StatusOK
	if db.Status != database.StatusHealthy {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   db.Status,
		"service":  "boxoffice-ledger",
		"database": db,
		"nats":     s.nats != nil,
		"search":   s.search != nil,
	})
}

// GetRouter возвращает роутер для тестирования
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup закрывает соединения
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
