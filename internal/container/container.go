package container

import (
	"context"
	"time"

	"intervue-api/internal/config"
	"intervue-api/internal/repository"
	"intervue-api/internal/service"
	"intervue-api/internal/service/auth"
	"intervue-api/internal/service/llm"
	"intervue-api/internal/service/payment"
	"intervue-api/pkg/database"
	"intervue-api/pkg/logger"
	"intervue-api/pkg/redis"
	"intervue-api/pkg/store"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           *database.PostgresDB
	RedisClient  *redis.Client
	Store        store.KeyValueStore
	Repositories *repository.Repositories
	Services     *service.Services
}

// New creates a new dependency injection container
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Container, error) {
	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	// Redis backs both the cache and the rate limiter across replicas. When
	// it is not configured every admission decision is process-local.
	var redisClient *redis.Client
	var kv store.KeyValueStore
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Redis client, falling back to in-memory store")
			kv = store.NewMemoryStore()
		} else {
			redisClient = client
			kv = store.NewRedisStore(client)
			log.Info("Redis client initialized successfully")
		}
	} else {
		log.Info("Redis URL not configured, using in-memory store")
		kv = store.NewMemoryStore()
	}

	keys := redis.NewKeyBuilder(cfg.Environment)

	repos := &repository.Repositories{
		User:      repository.NewUserRepository(db),
		Interview: repository.NewInterviewRepository(db),
		Ledger:    repository.NewLedgerRepository(db),
		Payment:   repository.NewPaymentRepository(db),
	}

	authService := auth.NewService(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.JWTSecret,
		time.Duration(cfg.JWTExpiryHours)*time.Hour,
		log,
	)

	llmClient := llm.NewClient(
		cfg.LLMAPIKey,
		cfg.LLMBaseURL,
		cfg.LLMModel,
		time.Duration(cfg.LLMTimeoutSeconds)*time.Second,
		log,
	)

	rateLimitService := service.NewRateLimitService(kv, keys, log.Logger)
	cacheService := service.NewCacheService(kv, keys, log.Logger)
	ledgerService := service.NewLedgerService(repos.Ledger, log.Logger)
	evaluationService := service.NewEvaluationService(
		llmClient,
		kv,
		keys,
		cfg.LLMModel,
		time.Duration(cfg.LLMTimeoutSeconds)*time.Second,
		log.Logger,
	)
	interviewService := service.NewInterviewService(
		repos.Interview,
		ledgerService,
		evaluationService,
		cacheService,
		log.Logger,
	)
	paymentService := payment.NewService(
		cfg.PaymentGatewayURL,
		cfg.PaymentGatewayKey,
		cfg.PaymentWebhookKey,
		repos.Payment,
		ledgerService,
		log,
	)

	services := &service.Services{
		Auth:       authService,
		RateLimit:  rateLimitService,
		Cache:      cacheService,
		Ledger:     ledgerService,
		Evaluation: evaluationService,
		Interview:  interviewService,
		Payment:    paymentService,
	}

	return &Container{
		Config:       cfg,
		Logger:       log,
		DB:           db,
		RedisClient:  redisClient,
		Store:        kv,
		Repositories: repos,
		Services:     services,
	}, nil
}

// Close releases held connections
func (c *Container) Close() {
	if c.DB != nil {
		c.DB.Close()
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.WithError(err).Warn("Failed to close Redis client")
		}
	}
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetAuthService returns the auth service
func (c *Container) GetAuthService() service.AuthService {
	return c.Services.Auth
}

// GetRateLimitService returns the rate limit service
func (c *Container) GetRateLimitService() *service.RateLimitService {
	return c.Services.RateLimit
}

// GetInterviewService returns the interview service
func (c *Container) GetInterviewService() *service.InterviewService {
	return c.Services.Interview
}

// GetLedgerService returns the ledger service
func (c *Container) GetLedgerService() *service.LedgerService {
	return c.Services.Ledger
}

// GetPaymentService returns the payment service
func (c *Container) GetPaymentService() service.PaymentService {
	return c.Services.Payment
}
