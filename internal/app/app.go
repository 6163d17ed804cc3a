package app

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Ygohr/queue-proxy-consumer/internal/config"
	"github.com/Ygohr/queue-proxy-consumer/internal/consumer"
	"github.com/Ygohr/queue-proxy-consumer/internal/consumer/poller"
	"github.com/Ygohr/queue-proxy-consumer/internal/health"
	"github.com/Ygohr/queue-proxy-consumer/internal/logger"
	"github.com/Ygohr/queue-proxy-consumer/internal/proxy"
	"github.com/Ygohr/queue-proxy-consumer/internal/service"
	"golang.org/x/sync/errgroup"
)

const stopTimeout = 30 * time.Second

type App struct {
	config     *config.Config
	logger     *logger.ZapLogger
	consumer   consumer.Consumer
	health     *health.Server
	dlqService *service.DLQService
}

func NewApp() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewZapLogger(cfg.LogDevelopment, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return New(cfg, log)
}

// New wires the application from an already loaded configuration.
func New(cfg *config.Config, log *logger.ZapLogger) (*App, error) {
	status := proxy.NewStatusTracker()
	transport := proxy.NewHTTPTransport(cfg.RequestTimeout(), cfg.QueueAuthorizationKey)

	client, err := proxy.NewClient(cfg, transport, status, log.With("component", "proxy"))
	if err != nil {
		return nil, fmt.Errorf("failed to create queue proxy client: %w", err)
	}

	var dlqService *service.DLQService
	if cfg.KafkaTopicDlq != "" {
		dlqService, err = service.NewDLQService(
			strings.Split(cfg.KafkaBootstrapServers, ","),
			cfg.KafkaTopicDlq,
			cfg.QueueGroup,
			cfg.KafkaUsername,
			cfg.KafkaPassword,
			cfg.KafkaSaslMechanism,
			log.With("component", "dlq"),
		)
		if err != nil {
			log.Warnf("Failed to create DLQ service: %v", err)
		} else {
			log.Infof("DLQ service initialized for topic: %s", cfg.KafkaTopicDlq)
		}
	}

	var dlq poller.DeadLetterPublisher
	if dlqService != nil {
		dlq = dlqService
	}

	queueConsumer, err := poller.NewConsumer(cfg, client, dlq, log.With("component", "poller"))
	if err != nil {
		return nil, fmt.Errorf("failed to create queue consumer: %w", err)
	}

	healthServer := health.New(health.Config{
		Address:         cfg.HealthAddr,
		ShutdownTimeout: cfg.HealthShutdown(),
	}, status, log.With("component", "health"))

	return &App{
		config:     cfg,
		logger:     log,
		consumer:   queueConsumer,
		health:     healthServer,
		dlqService: dlqService,
	}, nil
}

func (a *App) setupHandlers() error {
	recordProcessor := service.NewRecordProcessor(a.config.TargetServiceUrl, a.logger)

	err := a.consumer.Subscribe(a.config.QueueTopic, recordProcessor.Process)
	if err != nil {
		return fmt.Errorf("failed to subscribe to topic: %w", err)
	}

	var validator consumer.MessageValidator = &consumer.DefaultValidator{}
	if len(a.config.RequiredFields) > 0 {
		validator = &service.RequiredFieldsValidator{Fields: a.config.RequiredFields}
	}

	err = a.consumer.AddValidator(a.config.QueueTopic, validator)
	if err != nil {
		return fmt.Errorf("failed to add validator: %w", err)
	}

	return nil
}

func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	return a.run(ctx)
}

func (a *App) run(ctx context.Context) error {
	defer a.logger.Sync()

	err := a.setupHandlers()
	if err != nil {
		return fmt.Errorf("failed to setup handlers: %w", err)
	}

	err = a.consumer.Start(ctx)
	if err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	a.logger.Infof("Application started successfully")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.health.Listen(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		a.logger.Infof("Shutting down application...")

		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()

		if err := a.consumer.Stop(stopCtx); err != nil {
			a.logger.Errorf("Error stopping consumer: %v", err)
		}
		return nil
	})

	err = g.Wait()

	if a.dlqService != nil {
		if cerr := a.dlqService.Close(); cerr != nil {
			a.logger.Errorf("Error closing DLQ service: %v", cerr)
		}
	}

	if err != nil {
		return fmt.Errorf("health server failed: %w", err)
	}

	a.logger.Infof("Application shutdown complete")
	return nil
}
