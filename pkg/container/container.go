package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"freshbasket-backend/internal/config"
	"freshbasket-backend/internal/infrastructure/cache"
	"freshbasket-backend/internal/infrastructure/database"
	"freshbasket-backend/internal/infrastructure/orders"

	"freshbasket-backend/internal/domains/address"
	addressHandler "freshbasket-backend/internal/domains/address/handler"
	addressRepo "freshbasket-backend/internal/domains/address/repository"
	cartRepo "freshbasket-backend/internal/domains/cart/repository"
	"freshbasket-backend/internal/domains/checkout"
	checkoutHandler "freshbasket-backend/internal/domains/checkout/handler"
	subscriptionRepo "freshbasket-backend/internal/domains/subscription/repository"
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph. Everything here is a
// process-wide singleton; per-subscriber state lives behind the
// registries.
type Container struct {
	Config *config.Config
	DB     *database.PostgresDB
	Redis  *cache.RedisClient
	Queue  *asynq.Client

	Submitter checkout.OrderSubmitter

	AddressBooks *address.Registry
	Sessions     *checkout.SessionRegistry

	AddressHandler  *addressHandler.AddressHandler
	CheckoutHandler *checkoutHandler.CheckoutHandler
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

// NewContainer initializes the whole dependency graph in order:
// config, infrastructure, registries, handlers.
func NewContainer() (*Container, error) {
	log.Println("🔧 Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	log.Println("📋 Loading configuration...")

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("✅ Config loaded (Environment: %s)", cfg.App.Environment)

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	log.Println("🗄️  Connecting to PostgreSQL...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db
	log.Println("✅ Database connected")

	// ========================================
	// STEP 3: INITIALIZE REDIS + TASK QUEUE
	// ========================================
	log.Println("🔴 Connecting to Redis...")

	redisClient := cache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisClient.Connect(context.Background()); err != nil {
		// Redis carries the cart mirror and the completion queue; a cold
		// start without it still serves address CRUD.
		log.Printf("⚠️  Redis connection failed (non-critical): %v", err)
	} else {
		log.Println("✅ Redis connected")
	}
	c.Redis = redisClient

	c.Queue = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// ========================================
	// STEP 4: EXTERNAL SERVICES
	// ========================================
	c.Submitter = orders.NewHTTPSubmitter(cfg.Fulfillment)

	// ========================================
	// STEP 5: REGISTRIES
	// ========================================
	log.Println("📦 Initializing registries...")

	c.AddressBooks = address.NewRegistry(c.addressRepositoryFactory())
	log.Printf("📒 Address slots backed by %s", cfg.App.AddressStore)

	c.Sessions = checkout.NewSessionRegistry(c.newSession)
	log.Println("✅ Registries initialized")

	// ========================================
	// STEP 6: INITIALIZE HANDLERS
	// ========================================
	log.Println("🎯 Initializing handlers...")

	c.AddressHandler = addressHandler.NewAddressHandler(c.AddressBooks)
	c.CheckoutHandler = checkoutHandler.NewCheckoutHandler(c.Sessions)
	log.Println("✅ Handlers initialized")

	log.Println("🎉 DI Container initialized successfully")
	return c, nil
}

// addressRepositoryFactory picks the slot backend configured through
// ADDRESS_STORE. Config validation already rejected unknown values.
func (c *Container) addressRepositoryFactory() address.RepositoryFactory {
	switch c.Config.App.AddressStore {
	case "redis":
		return func(subscriberID uuid.UUID) address.Repository {
			return addressRepo.NewRedisRepository(c.Redis.Client, subscriberID)
		}
	case "memory":
		return func(subscriberID uuid.UUID) address.Repository {
			return addressRepo.NewMemoryRepository()
		}
	default:
		return func(subscriberID uuid.UUID) address.Repository {
			return addressRepo.NewPostgresRepository(c.DB.Pool, subscriberID)
		}
	}
}

// newSession wires the per-subscriber collaborators for one checkout
// session. The address book is shared with the address handlers; cart
// and subscription providers are cheap per-subscriber views.
func (c *Container) newSession(ctx context.Context, subscriberID uuid.UUID) (*checkout.Session, error) {
	book, err := c.AddressBooks.Book(ctx, subscriberID)
	if err != nil {
		return nil, err
	}

	notifier := checkout.NewRecordingNotifier()

	workflow := checkout.NewWorkflow(checkout.Deps{
		SubscriberID: subscriberID,
		Book:         book,
		Cart:         cartRepo.NewRedisProvider(c.Redis.Client, subscriberID),
		Subscription: subscriptionRepo.NewPostgresProvider(c.DB.Pool, subscriberID),
		Submitter:    c.Submitter,
		Notifier:     notifier,
		Completions:  checkout.NewAsynqPublisher(c.Queue),
	})

	return &checkout.Session{
		Workflow: workflow,
		Notifier: notifier,
	}, nil
}

// ========================================
// CLEANUP
// ========================================

// Cleanup releases infrastructure resources during graceful shutdown.
func (c *Container) Cleanup() {
	log.Println("🧹 Cleaning up container resources...")

	if c.Queue != nil {
		if err := c.Queue.Close(); err != nil {
			log.Printf("⚠️  Failed to close task queue: %v", err)
		}
	}

	if c.DB != nil && c.DB.Pool != nil {
		c.DB.Pool.Close()
		log.Println("✅ Database connections closed")
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Printf("⚠️  Failed to close Redis: %v", err)
		} else {
			log.Println("✅ Redis connections closed")
		}
	}

	log.Println("✅ Container cleanup completed")
}
