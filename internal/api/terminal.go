package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/stan.go"
	"github.com/redis/go-redis/v9"

	"boxoffice/internal/cache"
	"boxoffice/internal/config"
	"boxoffice/internal/external"
	"boxoffice/internal/handlers"
	"boxoffice/internal/inventory"
	"boxoffice/internal/layout"
	"boxoffice/internal/logger"
	"boxoffice/internal/messaging"
	"boxoffice/internal/metrics"
	"boxoffice/internal/models"
	"boxoffice/internal/reconcile"
	"boxoffice/internal/sale"
)

// TerminalServer - локальный сервер одного кассового терминала
type TerminalServer struct {
	router  *gin.Engine
	config  *config.Config
	store   *inventory.Store
	ledger  *external.LedgerClient
	builder *sale.Builder
	engine  *reconcile.Engine
	metrics *metrics.Metrics

	redis *redis.Client
	nats  *messaging.NATSClient
	sub   stan.Subscription
}

// NewTerminalServer builds the seat map, restores the local snapshot and wires
// the sale builder and the reconciliation engine to the ledger.
func NewTerminalServer(ctx context.Context, cfg *config.Config) (*TerminalServer, error) {
	gin.SetMode(cfg.GinMode)
	tcfg := cfg.Terminal
	log := logger.WithTerminal(tcfg.ID)

	venue, err := layout.Resolve(tcfg.VenueLayout, tcfg.VenueLayoutFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load venue layout: %w", err)
	}

	opts := []inventory.Option{inventory.WithLogger(log)}

	// Снимок в Redis не обязателен: без него терминал стартует с пустым выбором
	var rdb *redis.Client
	if tcfg.SnapshotEnabled {
		rdb, err = cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, local snapshot disabled", "error", err)
			rdb = nil
		} else {
			opts = append(opts, inventory.WithPersister(cache.NewSnapshotStore(rdb, tcfg.ID)))
		}
	}

	store := inventory.New(layout.Generate(venue), opts...)
	if restored, err := store.Restore(ctx); err != nil {
		log.Warn("Failed to restore seat snapshot", "error", err)
	} else if restored {
		log.Info("Seat snapshot restored", "selected", len(store.Selection()))
	}

	for _, id := range tcfg.BlockedSeats {
		if _, err := store.Block(id); err != nil {
			log.Warn("Cannot block seat", "seat_id", id, "error", err)
		}
	}

	ledger := external.NewLedgerClient(external.LedgerConfig{
		BaseURL: tcfg.LedgerURL,
		Timeout: tcfg.LedgerTimeout,
	})
	if err := ledger.Ping(ctx); err != nil {
		log.Warn("Sales ledger not reachable yet, reconciliation will retry", "url", tcfg.LedgerURL, "error", err)
	}

	m := metrics.New()
	engine := reconcile.NewEngine(ledger, store, m, tcfg.ReconcileInterval)
	builder := sale.NewBuilder(ledger, ledger, store)
	builder.OnCommitted = func(*models.Sale) { engine.Trigger() }

	s := &TerminalServer{
		router:  newRouter(m),
		config:  cfg,
		store:   store,
		ledger:  ledger,
		builder: builder,
		engine:  engine,
		metrics: m,
		redis:   rdb,
	}

	s.subscribeSalesChanged(log)
	s.setupRoutes()

	log.Info("Terminal ready",
		"layout", tcfg.VenueLayout,
		"seats", layout.Capacity(venue),
		"ledger", tcfg.LedgerURL,
		"reconcile_interval", engine.Interval())

	return s, nil
}

// subscribeSalesChanged ускоряет сверку: сигнал из реестра вместо ожидания таймера
func (s *TerminalServer) subscribeSalesChanged(log *slog.Logger) {
	natsCfg := s.config.NATS
	natsCfg.ClientID = "boxoffice-terminal-" + s.config.Terminal.ID

	client, err := messaging.NewNATSClient(natsCfg)
	if err != nil {
		log.Warn("NATS unavailable, relying on periodic reconciliation", "error", err)
		return
	}

	sub, err := client.Subscribe(models.EventSalesChanged, func(msg *stan.Msg) {
		log.Debug("Sales changed on ledger", "sequence", msg.Sequence)
		s.engine.Trigger()
	})
	if err != nil {
		log.Warn("Failed to subscribe to sales changes", "error", err)
		_ = client.Close()
		return
	}

	s.nats = client
	s.sub = sub
}

func (s *TerminalServer) setupRoutes() {
	h := handlers.NewTerminalHandlers(s.store, s.builder, s.engine, s.metrics)

	api := s.router.Group("/api")
	{
		seats := api.Group("/seats")
		{
			seats.GET("", h.ListSeats)
			seats.PATCH("/select", h.SelectSeat)
			seats.PATCH("/deselect", h.DeselectSeat)
		}

		api.GET("/selection", h.GetSelection)
		api.PATCH("/selection/clear", h.ClearSelection)
		api.POST("/sale", h.SubmitSale)
		api.POST("/reconcile", h.Reconcile)
		api.GET("/panel", h.Panel)
		api.GET("/stream", h.Stream)
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", s.metrics.Handler())
}

// healthCheck - терминал работает и без реестра, поэтому всегда 200
func (s *TerminalServer) healthCheck(c *gin.Context) {
	ledgerStatus := "ok"
	if err := s.ledger.Ping(c.Request.Context()); err != nil {
		ledgerStatus = "unavailable"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "boxoffice-terminal",
		"terminal": s.config.Terminal.ID,
		"ledger":   ledgerStatus,
		"snapshot": s.redis != nil,
		"nats":     s.nats != nil,
	})
}

// Start запускает фоновую сверку с реестром
func (s *TerminalServer) Start(ctx context.Context) {
	s.engine.Start(ctx)
}

func (s *TerminalServer) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup останавливает сверку и закрывает соединения
func (s *TerminalServer) Cleanup() error {
	s.engine.Stop()

	if s.sub != nil {
		if err := s.sub.Close(); err != nil {
			slog.Error("Error closing sales subscription", "error", err)
		}
	}
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			slog.Error("Error closing Redis connection", "error", err)
			return err
		}
	}

	return nil
}
