package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/bu-planner/backend/internal/advisor"
	"github.com/bu-planner/backend/internal/ai"
	"github.com/bu-planner/backend/internal/api/handlers"
	"github.com/bu-planner/backend/internal/cache/redis"
	"github.com/bu-planner/backend/internal/catalog"
	"github.com/bu-planner/backend/internal/chatbot"
	"github.com/bu-planner/backend/internal/metrics"
	"github.com/bu-planner/backend/internal/middleware/ratelimit"
	"github.com/bu-planner/backend/internal/middleware/security"
	"github.com/bu-planner/backend/internal/middleware/validation"
	"github.com/bu-planner/backend/internal/professors"
	"github.com/bu-planner/backend/internal/storage/sqlite"
	"github.com/bu-planner/backend/pkg/config"
	appLogger "github.com/bu-planner/backend/pkg/logger"
)

func main() {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	level := cfg.Logging.Level
	if cfg.Debug {
		level = "debug"
	}
	err = appLogger.Init(level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Course Planner API Server")

	metrics.Register()

	store, err := catalog.Load(cfg.Catalog.CoursesPath)
	if err != nil {
		appLogger.Fatal("Failed to load course catalog", zap.Error(err))
	}
	appLogger.Info("Course catalog loaded", zap.Int("courses", store.Count()))

	careers, err := catalog.LoadCareers(cfg.Catalog.CareersPath, store)
	if err != nil {
		appLogger.Fatal("Failed to load career profiles", zap.Error(err))
	}

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var cacheClient *redis.Client
	if cfg.Redis.Enabled {
		cacheClient, err = redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, running without cache", zap.Error(err))
			cacheClient = nil
		}
	}

	gateway, err := ai.NewGateway(ai.Options{
		Provider:    cfg.AI.Provider,
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
		Timeout:     time.Duration(cfg.AI.TimeoutSec) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Failed to build AI gateway", zap.Error(err))
	}
	if !gateway.Available() {
		appLogger.Warn("AI gateway disabled, chatbot will answer from rules only",
			zap.String("provider", cfg.AI.Provider))
	}

	sessions := chatbot.NewSessionManager(
		cfg.Chatbot.HistoryCap,
		time.Duration(cfg.Chatbot.SessionTTLMin)*time.Minute,
	)
	defer sessions.Close()

	bot := chatbot.NewBot(gateway, chatbot.DefaultRules(), store.Count(), cfg.Chatbot.CondenseLast)

	engine := advisor.NewEngine(cfg.Advisor.CoursesPerSemester)
	advisorSvc := advisor.NewService(engine, store, careers, gateway, cacheClient, sqliteClient,
		time.Duration(cfg.Advisor.CacheTTLMin)*time.Minute)

	roster, err := professors.LoadRoster(cfg.Professors.RosterPath)
	if err != nil {
		appLogger.Fatal("Failed to load professor roster", zap.Error(err))
	}
	openalexClient := professors.NewOpenAlexClient(
		cfg.OpenAlex.BaseURL,
		time.Duration(cfg.OpenAlex.TimeoutSec)*time.Second,
	)
	professorsSvc := professors.NewService(roster, openalexClient, gateway, cacheClient,
		time.Duration(cfg.Advisor.CacheTTLMin)*time.Minute, cfg.OpenAlex.MaxWorks)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, X-Session-ID",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.Headers())

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: 60,
		Logger:               appLogger.GetLogger(),
	})
	defer limiter.Close()
	app.Use(limiter.Middleware())

	app.Use(validation.Middleware(validation.Config{
		MaxMessageLength: cfg.Chatbot.MaxMessageLen,
		Logger:           appLogger.GetLogger(),
	}))

	chatbotHandler := handlers.NewChatbotHandler(bot, sessions, sqliteClient)
	advisorHandler := handlers.NewAdvisorHandler(advisorSvc, cfg.Advisor.DefaultMaxCourses)
	geminiHandler := handlers.NewGeminiHandler(gateway, cfg.AI.Model)
	coursesHandler := handlers.NewCoursesHandler(store)
	professorsHandler := handlers.NewProfessorsHandler(professorsSvc)
	wsHandler := handlers.NewWebSocketHandler(bot, sessions)

	api := app.Group("/api")

	api.Post("/chatbot/", chatbotHandler.HandleMessage)
	api.Get("/chatbot/history", chatbotHandler.GetHistory)

	api.Post("/ai-advisor/", advisorHandler.Recommend)
	api.Get("/ai-advisor/careers", advisorHandler.Careers)

	api.Post("/gemini/", geminiHandler.Generate)
	api.Get("/ai/models", geminiHandler.Models)

	api.Get("/courses/", coursesHandler.List)
	api.Get("/courses/search/", coursesHandler.Search)
	api.Get("/courses/level/:level", coursesHandler.ByLevel)
	api.Get("/courses/:id", coursesHandler.Get)
	api.Get("/departments/", coursesHandler.Departments)
	api.Get("/subjects/", coursesHandler.Subjects)

	api.Get("/professors/", professorsHandler.List)
	api.Post("/professors/cold-email", professorsHandler.ColdEmail)
	api.Get("/professors/:name", professorsHandler.Research)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":       "healthy",
			"courses":      store.Count(),
			"ai_available": gateway.Available(),
			"time":         time.Now().Unix(),
		})
	})

	app.Get("/metrics", metrics.Handler())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat", websocket.New(wsHandler.HandleConnection))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
