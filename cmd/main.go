package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/cbt-core/config"
	"github.com/lshigami/cbt-core/database"
	"github.com/lshigami/cbt-core/internal/controller"
	"github.com/lshigami/cbt-core/internal/event"
	"github.com/lshigami/cbt-core/internal/logger"
	"github.com/lshigami/cbt-core/internal/model"
	"github.com/lshigami/cbt-core/internal/ranking"
	"github.com/lshigami/cbt-core/internal/repository"
	"github.com/lshigami/cbt-core/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title CBT Attempt & Ranking API
// @version 1.0
// @description Attempt lifecycle, auto-grading and leaderboards for timed exams.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewRedisClient,
			NewGinEngine,
		),

		fx.Provide(
			repository.NewExamRepository,
			repository.NewQuestionRepository,
			repository.NewAttemptRepository,
			repository.NewAnswerRepository,
			repository.NewUserRepository,
		),

		fx.Provide(
			ranking.NewStore,
			ranking.NewService,
			event.NewRankingPropagator,
			service.NewGradingService,
			service.NewAttemptService,
		),

		fx.Provide(
			controller.NewAttemptController,
			controller.NewRankingController,
		),

		fx.Invoke(AutoMigrateDB),
		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(StartRankingConsumer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewRedisClient(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and the server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	attemptCtrl *controller.AttemptController,
	rankingCtrl *controller.RankingController,
) {
	api := router.Group("/api/v1")
	{
		attempts := api.Group("/attempts")
		attempts.POST("", attemptCtrl.StartAttempt)
		attempts.GET("/history", attemptCtrl.GetHistory)
		attempts.GET("/:attempt_id", attemptCtrl.GetAttemptDetail)
		attempts.POST("/:attempt_id/answers", attemptCtrl.SaveAnswers)
		attempts.POST("/:attempt_id/submit", attemptCtrl.SubmitAttempt)
		attempts.GET("/:attempt_id/review", attemptCtrl.GetReview)

		rankings := api.Group("/rankings")
		rankings.GET("/exams/:exam_id", rankingCtrl.GetExamRanking)
		rankings.GET("/submissions", rankingCtrl.GetGlobalSubmissionRanking)
		rankings.GET("/submissions/me", rankingCtrl.GetMySubmissionRank)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("CBT API server starting on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

// StartRankingConsumer runs the Kafka consumer loop for the lifetime of the
// app. Skipped in sync propagation mode, where submit updates Redis inline.
func StartRankingConsumer(lc fx.Lifecycle, cfg *config.Config, rankingService ranking.Service) {
	if cfg.Ranking.Propagation == "sync" {
		log.Info().Msg("Ranking consumer disabled (sync propagation mode)")
		return
	}

	consumer := event.NewConsumer(cfg, rankingService)
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info().Str("topic", cfg.Kafka.Topic).Str("group", cfg.Kafka.GroupID).Msg("Starting ranking consumer")
			go consumer.Run(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return consumer.Close()
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.User{},
		&model.Exam{},
		&model.Question{},
		&model.Attempt{},
		&model.Answer{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
