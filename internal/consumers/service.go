package consumers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nats-io/stan.go"

	"boxoffice/internal/config"
	"boxoffice/internal/database"
	"boxoffice/internal/messaging"
	"boxoffice/internal/models"
	"boxoffice/internal/repository"
	"boxoffice/internal/search"
)

// IndexerQueue - группа подписчиков индексатора; сообщение обрабатывает одна реплика
const IndexerQueue = "indexer"

type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	sub      stan.Subscription
	handlers *Handlers
}

func NewConsumerService(ctx context.Context, cfg *config.Config) (*ConsumerService, error) {
	if !cfg.Elasticsearch.Enabled {
		return nil, fmt.Errorf("indexer requires ELASTICSEARCH_ENABLED=true")
	}

	// Connect to database
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	es, err := search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	// Connect to NATS
	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	repos := repository.NewRepositories(db)

	return &ConsumerService{
		db:       db,
		nats:     natsClient,
		handlers: NewHandlers(es, repos.Sales),
	}, nil
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting sales indexer...")

	sub, err := cs.nats.SubscribeQueue(models.EventSalesChanged, IndexerQueue, cs.handlers.HandleSalesChanged)
	if err != nil {
		return err
	}
	cs.sub = sub

	slog.Info("Sales indexer started", "subject", models.EventSalesChanged, "queue", IndexerQueue)
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	// Close, not Unsubscribe: the durable queue must survive restarts
	if cs.sub != nil {
		if err := cs.sub.Close(); err != nil {
			slog.Error("Error closing subscription", "error", err)
		}
	}

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
