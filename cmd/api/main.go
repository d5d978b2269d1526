package main

import (
	"context"
	"fmt"
	"log"

	"chat-service/config"
	"chat-service/internal/events"
	"chat-service/internal/handler"
	"chat-service/internal/kafka"
	"chat-service/internal/proxy"
	chatredis "chat-service/internal/redis"
	"chat-service/internal/repository"
	"chat-service/internal/server"
	"chat-service/internal/services"
	"chat-service/internal/websocket"
	"chat-service/pkg/database"
	"chat-service/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	l := logger.New(cfg.App.Env)
	logger.SetGlobalLogger(l)
	defer l.Sync()

	if err := run(cfg, l); err != nil {
		l.Errorf("chat-service stopped: %v", err)
		l.Sync()
		log.Fatal(err)
	}
}

func run(cfg *config.Config, l *logger.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	dialect := repository.Dialect(cfg.Database.Driver)
	if err := repository.RunMigrations(ctx, db, dialect, l); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	userRepo := repository.NewUserRepository(db, dialect)
	convRepo := repository.NewConversationRepository(db, dialect)
	msgRepo := repository.NewMessageRepository(db, dialect)
	access := proxy.NewAccessControl(convRepo)

	hub := websocket.NewHub()
	go hub.Run(ctx)

	checks := map[string]server.HealthCheck{
		"database": func(ctx context.Context) error { return database.HealthCheck(ctx, db) },
	}

	notifier, closeNotifier, err := buildNotifier(ctx, cfg, hub, l, checks)
	if err != nil {
		return err
	}
	defer closeNotifier()

	authService := services.NewAuthService(cfg.Auth)
	conversationService := services.NewConversationService(convRepo, msgRepo, userRepo, access, notifier, l)
	messageService := services.NewMessageService(msgRepo, convRepo, access, notifier, l)

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Conversations: handler.NewConversationHandler(conversationService),
		Messages:      handler.NewMessageHandler(messageService),
		WebSocket:     websocket.NewHandler(authService, hub, l),
	}, authService, checks)

	l.Infof("chat-service ready: db=%s events=%s", cfg.Database.Driver, cfg.Events.Backend)
	return srv.Start(ctx)
}

// buildNotifier wires the configured fanout backend. Redis fans out across
// instances through per-user channels; kafka feeds downstream consumers while
// local connections are served from the hub.
func buildNotifier(ctx context.Context, cfg *config.Config, hub *websocket.Hub, l *logger.Logger, checks map[string]server.HealthCheck) (events.Notifier, func(), error) {
	switch cfg.Events.Backend {
	case config.EventsRedis:
		client := chatredis.NewClient(cfg.Redis)
		if err := chatredis.Ping(ctx, client); err != nil {
			client.Close()
			return nil, nil, err
		}
		checks["redis"] = func(ctx context.Context) error { return chatredis.Ping(ctx, client) }

		bridge := websocket.NewRedisBridge(chatredis.NewSubscriber(client), hub, l)
		go func() {
			if err := bridge.Run(ctx); err != nil {
				l.Errorf("redis bridge stopped: %v", err)
			}
		}()
		notifier := events.NewPubSubNotifier(chatredis.NewPublisher(client), nil)
		return notifier, func() { _ = client.Close() }, nil

	case config.EventsKafka:
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("kafka producer: %w", err)
		}
		notifier := events.Fanout{
			websocket.NewHubNotifier(hub),
			events.NewKafkaNotifier(producer, cfg.Kafka.Topic),
		}
		return notifier, func() { _ = producer.Close() }, nil

	default:
		return websocket.NewHubNotifier(hub), func() {}, nil
	}
}

