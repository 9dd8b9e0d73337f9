package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "budgetpilot/docs"
	"budgetpilot/internal/ai"
	"budgetpilot/internal/config"
	"budgetpilot/internal/handler"
	adviceHandler "budgetpilot/internal/handler/advice"
	chatHandler "budgetpilot/internal/handler/chat"
	"budgetpilot/internal/pkg/cache"
	"budgetpilot/internal/pkg/jwt"
	"budgetpilot/internal/pkg/metrics"
	"budgetpilot/internal/pkg/mongodb"
	"budgetpilot/internal/pkg/ratelimit"
	"budgetpilot/internal/repository"
	"budgetpilot/internal/server/middleware"
	"budgetpilot/internal/service"
)

const (
	defaultJWTSecret    = "default-secret-key-change-in-production"
	limiterSweepPeriod  = time.Minute
	shutdownGracePeriod = 10 * time.Second
)

// Server HTTP 服务器
type Server struct {
	cfg     *config.Config
	engine  *gin.Engine
	mongo   *mongodb.Client
	redis   *cache.RedisCache
	sweeper *ratelimit.MemoryLimiter
}

// New 连接存储、组装服务并注册路由
// MongoDB 必须可用；Redis 可选，不可用时退化为进程内限流且不使用缓存
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	mongoClient, err := mongodb.New(ctx, &cfg.Mongo)
	if err != nil {
		return nil, err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("Connected to MongoDB")

	db := mongoClient.Database()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Warn().Err(err).Msg("Failed to ensure indexes")
	}

	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to Redis, continuing without it")
		} else {
			redisCache = rc
			log.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")
		}
	}

	generator, err := ai.NewGenerator(ctx, cfg)
	if err != nil {
		_ = mongoClient.Close(context.Background())
		return nil, err
	}

	var convRepo repository.ConversationRepository = repository.NewConversationRepo(db)
	if redisCache != nil {
		convRepo = repository.NewCachedConversationRepo(convRepo, redisCache, cfg.Chat.CacheTTL)
	}

	limiter, sweeper := newLimiter(&cfg.Chat.RateLimit, redisCache)

	txnRepo := repository.NewTransactionRepo(db)
	finance := service.NewFinancialContextService(txnRepo, cfg.Chat.CurrencySymbol)
	chatSvc := service.NewChatService(generator, convRepo, finance, limiter, &cfg.Chat)
	adviceSvc := service.NewAdviceService(generator, txnRepo, repository.NewAdviceHistoryRepo(db), limiter, &cfg.Advice)

	readiness := map[string]handler.Pinger{"mongo": mongoClient}
	if redisCache != nil {
		readiness["redis"] = redisCache
	}

	srv := newServer(cfg, chatSvc, adviceSvc, readiness)
	srv.mongo = mongoClient
	srv.redis = redisCache
	srv.sweeper = sweeper
	return srv, nil
}

// newLimiter backend=redis 且 Redis 可用时使用共享限流，否则进程内限流
func newLimiter(cfg *config.RateLimitConfig, rc *cache.RedisCache) (ratelimit.Limiter, *ratelimit.MemoryLimiter) {
	if cfg.Backend == "redis" {
		if rc != nil {
			return ratelimit.NewRedisLimiter(rc.Client(), cfg.PerSec, ratelimit.DefaultWindow), nil
		}
		log.Warn().Msg("Redis rate limit backend requested but Redis is unavailable, using in-memory limiter")
	}
	ml := ratelimit.NewMemoryLimiter(cfg.PerSec, ratelimit.DefaultWindow)
	return ml, ml
}

func newServer(cfg *config.Config, chatSvc service.ConversationService, adviceSvc service.AdviceProvider, readiness map[string]handler.Pinger) *Server {
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &Server{
		cfg:    cfg,
		engine: gin.New(),
	}
	srv.setupRoutes(chatSvc, adviceSvc, readiness)
	return srv
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(chatSvc service.ConversationService, adviceSvc service.AdviceProvider, readiness map[string]handler.Pinger) {
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS(s.cfg.Server.AllowOrigins))
	if s.cfg.Metrics.Enabled {
		s.engine.Use(middleware.Metrics())
		s.engine.GET(s.cfg.Metrics.Path, metrics.Handler())
	}

	healthHandler := handler.NewHealthHandler(readiness)
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	jwtSecret := s.cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = defaultJWTSecret
		log.Warn().Msg("JWT secret not configured, using default (NOT SECURE for production)")
	}
	// 只校验，过期时间不参与
	jwtUtil := jwt.NewJWT(jwtSecret, 0)

	v1 := s.engine.Group("/api/v1")
	{
		chatHdl := chatHandler.NewHandler(chatSvc)
		chatGroup := v1.Group("/chat")
		chatGroup.Use(middleware.Auth(jwtUtil))
		{
			chatGroup.POST("/start", chatHdl.StartConversation)
			chatGroup.GET("", chatHdl.ListConversations)
			chatGroup.GET("/:conversation_id", chatHdl.GetConversation)
			chatGroup.POST("/:conversation_id/message", chatHdl.SendMessage)
		}

		adviceHdl := adviceHandler.NewHandler(adviceSvc)
		aiGroup := v1.Group("/ai")
		aiGroup.Use(middleware.Auth(jwtUtil))
		{
			aiGroup.POST("/advice", adviceHdl.GenerateAdvice)
			aiGroup.GET("/tips", adviceHdl.RecommendTips)
			aiGroup.GET("/patterns", adviceHdl.AnalyzePatterns)
			aiGroup.GET("/savings", adviceHdl.PredictSavings)
			aiGroup.GET("/history", adviceHdl.ListHistory)
			aiGroup.GET("/history/:history_id", adviceHdl.GetHistoryEntry)
		}
	}
}

// Run 启动服务器，ctx 结束时优雅关闭
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	if s.sweeper != nil {
		go s.sweeper.Run(ctx, limiterSweepPeriod)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		shutdownErr := srv.Shutdown(shutdownCtx)

		s.Close(shutdownCtx)
		if shutdownErr != nil {
			return fmt.Errorf("shutdown server: %w", shutdownErr)
		}
		return nil
	case err := <-errCh:
		s.Close(context.Background())
		return err
	}
}

// Close 关闭存储连接
func (s *Server) Close(ctx context.Context) {
	if s.mongo != nil {
		if err := s.mongo.Close(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to close MongoDB connection")
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Redis connection")
		}
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
