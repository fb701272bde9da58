package container

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"publishing-backend/internal/config"
	"publishing-backend/internal/domains/account"
	accountHandler "publishing-backend/internal/domains/account/handler"
	accountRepo "publishing-backend/internal/domains/account/repository"
	accountService "publishing-backend/internal/domains/account/service"
	"publishing-backend/internal/domains/organization"
	orgHandler "publishing-backend/internal/domains/organization/handler"
	orgRepo "publishing-backend/internal/domains/organization/repository"
	orgService "publishing-backend/internal/domains/organization/service"
	"publishing-backend/internal/domains/publication"
	pubHandler "publishing-backend/internal/domains/publication/handler"
	pubRepo "publishing-backend/internal/domains/publication/repository"
	pubService "publishing-backend/internal/domains/publication/service"
	infraCache "publishing-backend/internal/infrastructure/cache"
	"publishing-backend/internal/infrastructure/database"
	"publishing-backend/internal/shared/middleware"
	"publishing-backend/pkg/cache"
	"publishing-backend/pkg/jwt"
	"publishing-backend/pkg/logger"
)

const (
	redisKeyPrefix          = "publishing:"
	rateLimiterCleanupEvery = time.Minute
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container chứa toàn bộ dependency graph của API.
// Thứ tự khởi tạo: Config -> Infrastructure -> Repositories -> Services -> Handlers
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config      *config.Config
	DB          *database.PostgresDB
	Redis       *infraCache.RedisClient
	Cache       cache.Cache
	JWTManager  *jwt.Manager
	AuthLimiter *middleware.RateLimiter

	// ========================================
	// REPOSITORY LAYER
	// ========================================
	AccountRepo      account.Repository
	OrganizationRepo organization.Repository
	PublicationRepo  publication.Repository

	// ========================================
	// SERVICE LAYER
	// ========================================
	AccountService      account.Service
	OrganizationService organization.Service
	PublicationService  publication.Service

	// ========================================
	// HANDLER LAYER
	// ========================================
	AccountHandler      *accountHandler.AccountHandler
	OrganizationHandler *orgHandler.OrganizationHandler
	PublicationHandler  *pubHandler.PublicationHandler

	done chan struct{}
}

// ========================================
// CONSTRUCTOR: BUILD CONTAINER
// ========================================

func NewContainer() (*Container, error) {
	c := &Container{done: make(chan struct{})}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	logger.Init(cfg.App.Environment, cfg.App.LogLevel)
	log.Info().Str("env", cfg.App.Environment).Msg("[CONTAINER] Configuration loaded")

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	// ========================================
	// STEP 3: INITIALIZE CACHE
	// ========================================
	// Redis lỗi không chặn startup: login throttling và revocation fail-open
	c.Redis = infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Redis.Connect(ctx); err != nil {
		log.Warn().Err(err).Msg("[CONTAINER] Redis connection failed (non-critical)")
	}
	c.Cache = infraCache.NewRedisCache(c.Redis.Client, redisKeyPrefix)

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTTL(), cfg.JWT.RefreshTTL())

	// ========================================
	// STEP 4: RATE LIMITER (/auth/*)
	// ========================================
	c.AuthLimiter = middleware.NewRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst)
	c.AuthLimiter.StartCleanup(rateLimiterCleanupEvery, c.done)

	// ========================================
	// STEP 5: REPOSITORIES -> SERVICES -> HANDLERS
	// ========================================
	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Info().Msg("[CONTAINER] Dependency graph initialized")
	return c, nil
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.AccountRepo = accountRepo.NewPostgresRepository(pool)
	c.OrganizationRepo = orgRepo.NewPostgresRepository(pool)
	c.PublicationRepo = pubRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	c.AccountService = accountService.NewAccountService(
		c.AccountRepo,
		c.Cache,
		c.JWTManager,
		c.Config.Auth,
	)
	c.OrganizationService = orgService.NewOrganizationService(c.OrganizationRepo)

	// Cross-domain: publication cần organization repo để kiểm tra ownership khi attach
	c.PublicationService = pubService.NewPublicationService(c.PublicationRepo, c.OrganizationRepo)
}

func (c *Container) initHandlers() {
	c.AccountHandler = accountHandler.NewAccountHandler(c.AccountService)
	c.OrganizationHandler = orgHandler.NewOrganizationHandler(c.OrganizationService)
	c.PublicationHandler = pubHandler.NewPublicationHandler(c.PublicationService)
}

// ========================================
// LIFECYCLE
// ========================================

// Cleanup dọn dẹp resources khi shutdown
func (c *Container) Cleanup() {
	log.Info().Msg("[CONTAINER] Cleaning up resources...")

	close(c.done)

	if c.DB != nil {
		_ = c.DB.Close()
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("[CONTAINER] Failed to close Redis")
		}
	}

	log.Info().Msg("[CONTAINER] Cleanup completed")
}
