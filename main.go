package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"hotelbot/config"
	"hotelbot/cron"
	"hotelbot/database"
	bookingRepo "hotelbot/database/repository/booking"
	"hotelbot/handlers"
	"hotelbot/middleware"
	"hotelbot/routes"
	"hotelbot/services/booking"
	"hotelbot/services/dialogue"
	ai "hotelbot/services/intelligence"
	"hotelbot/services/notification"
	"hotelbot/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Reservations live in MongoDB; outside production an unreachable database
	// falls back to an in-memory repository.
	var repo bookingRepo.BookingRepository
	if err := database.InitDB(); err != nil {
		if config.IsProduction() {
			logger.Fatal("main: failed to connect to MongoDB", zap.Error(err))
		}
		logger.Warn("main: MongoDB unavailable, bookings are kept in memory", zap.Error(err))
		repo = bookingRepo.NewMemoryBookingRepo()
	} else {
		repo = bookingRepo.NewMongoBookingRepo(database.Database())
		if err := bookingRepo.EnsureIndexes(repo); err != nil {
			logger.Warn("main: failed to ensure booking indexes", zap.Error(err))
		}
	}

	var (
		classifier dialogue.IntentClassifier = ai.KeywordClassifier{}
		answerer   dialogue.InquiryAnswerer  = ai.FactsAnswerer{}
		writer     ai.TextGenerator
	)
	if cfg.GeminiAPIKey != "" {
		gemini, err := ai.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("main: Gemini unavailable, using keyword classifier", zap.Error(err))
		} else {
			defer gemini.Close()
			classifier = ai.NewLLMIntentClassifier(gemini, logger)
			answerer = ai.NewGeminiInquiryAnswerer(gemini, logger)
			writer = gemini
		}
	} else {
		logger.Info("main: GEMINI_API_KEY not set, using keyword classifier")
	}

	bookingService := booking.NewDefaultBookingService(repo, cfg.Hotel, writer, logger)

	var (
		backend dialogue.StateBackend
		janitor *dialogue.Janitor
	)
	switch cfg.ConversationBackend {
	case "redis":
		if err := utils.InitCache(); err != nil {
			logger.Fatal("main: failed to connect conversation redis", zap.Error(err))
		}
		backend = dialogue.NewRedisBackend(utils.CacheClient, cfg.ConversationIdleTTL)
	default:
		mem := dialogue.NewMemoryBackend()
		janitor = dialogue.NewJanitor(mem, cfg.ConversationIdleTTL, dialogue.DefaultJanitorInterval, logger)
		backend = mem
	}

	validator := dialogue.NewValidator(dialogue.Limits{
		MinNights:   cfg.MinNights,
		MaxNights:   cfg.MaxNights,
		MaxLeadDays: cfg.MaxLeadDays,
	}, cfg.Hotel.RoomTypes)

	engine := dialogue.NewEngine(
		dialogue.NewStateStore(backend),
		classifier,
		bookingService,
		answerer,
		validator,
		cfg.Hotel,
		dialogue.WithLogger(logger),
		dialogue.WithTurnTimeout(cfg.TurnTimeout),
	)

	var notifier notification.NotificationService = notification.LogNotificationService{Logger: logger}
	if cfg.InstagramAccessToken != "" {
		notifier = notification.NewInstagramNotificationService(cfg.InstagramAccessToken, cfg.InstagramAPIVersion, logger)
	} else {
		logger.Warn("main: INSTAGRAM_ACCESS_TOKEN not set, replies are only logged")
	}

	processor := &cron.TurnProcessor{Engine: engine, Notifier: notifier, Logger: logger}
	g, gctx := errgroup.WithContext(ctx)

	var (
		dispatcher cron.Dispatcher
		inline     *cron.InlineDispatcher
	)
	if cfg.DispatchMode == "inline" {
		inline = &cron.InlineDispatcher{Processor: processor, Timeout: cfg.TurnTimeout + 10*time.Second}
		dispatcher = inline
	} else {
		if err := utils.InitQueueCache(); err != nil {
			logger.Fatal("main: failed to connect queue redis", zap.Error(err))
		}
		client := asynq.NewClient(cron.RedisOpt())
		defer client.Close()
		processor.Retry = client
		dispatcher = &cron.QueueDispatcher{Client: client, Logger: logger}

		worker := cron.NewWorker(cron.RedisOpt(), cfg.WorkerConcurrency, processor, logger)
		g.Go(func() error { return worker.Run(gctx) })
	}

	if janitor != nil {
		janitor.Start(gctx)
		defer janitor.Stop()
	}

	var redisClients []*redis.Client
	for _, c := range []*redis.Client{utils.CacheClient, utils.QueueClient} {
		if c != nil {
			redisClients = append(redisClients, c)
		}
	}
	utils.StartHealthMonitor(gctx, 30*time.Second, redisClients, database.MongoClient)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	webhookHandler := handlers.NewWebhookHandler(cfg.InstagramVerifyToken, dispatcher)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	chatHandler := handlers.NewChatHandler(engine)
	hotelHandler := handlers.NewHotelHandler(cfg.Hotel)

	handlerBundle := &handlers.HandlerBundle{
		VerifyWebhookHandler:  webhookHandler.VerifyWebhookHandler,
		ReceiveWebhookHandler: webhookHandler.ReceiveWebhookHandler,
		AppSecret:             cfg.InstagramAppSecret,

		ListBookingsHandler:   bookingHandler.ListBookingsHandler,
		GetBookingHandler:     bookingHandler.GetBookingHandler,
		CreateBookingHandler:  bookingHandler.CreateBookingHandler,
		UpdateBookingHandler:  bookingHandler.UpdateBookingHandler,
		DeleteBookingHandler:  bookingHandler.DeleteBookingHandler,
		ConfirmBookingHandler: bookingHandler.ConfirmBookingHandler,

		ChatHandler:              chatHandler.HandleChat,
		GetConversationHandler:   chatHandler.GetConversationHandler,
		ResetConversationHandler: chatHandler.ResetConversationHandler,

		RootHandler:      hotelHandler.RootHandler,
		HotelInfoHandler: hotelHandler.HotelInfoHandler,
		HealthHandler:    handlers.HealthHandler,
	}
	routes.RegisterRoutes(router, handlerBundle)

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.Sugar().Infof("Starting server on %s...", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("main: server is shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("main: stopped with error", zap.Error(err))
	}
	if inline != nil {
		inline.Wait()
	}

	utils.CloseCaches()
	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.Disconnect(closeCtx); err != nil {
		logger.Warn("main: failed to disconnect MongoDB", zap.Error(err))
	}
	logger.Info("main: server stopped gracefully")
}
