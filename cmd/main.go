package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/revisehub/revisehub/config"
	_ "github.com/revisehub/revisehub/docs"
	"github.com/revisehub/revisehub/internal/auth"
	"github.com/revisehub/revisehub/internal/controller"
	"github.com/revisehub/revisehub/internal/extract"
	"github.com/revisehub/revisehub/internal/logger"
	"github.com/revisehub/revisehub/internal/model"
	"github.com/revisehub/revisehub/internal/prompt"
	"github.com/revisehub/revisehub/internal/provider"
	"github.com/revisehub/revisehub/internal/service"
	"github.com/revisehub/revisehub/internal/store"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title ReviseHub API
// @version 1.0
// @description Generate timed knowledge-check quizzes from study material and grade the answers.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			store.New, // Provides store.Store and *gorm.DB (nil for the memory backend)
			provider.New,
			NewGinEngine,
		),

		fx.Provide(
			func(cfg *config.Config) *prompt.Resolver {
				return prompt.NewResolver(prompt.NewHTTPStore(cfg), cfg.PromptStore.Environment)
			},
			auth.NewVerifier,
			extract.New,
		),

		fx.Provide(
			service.NewScoringService,
			service.NewQuestionGenerator,
			service.NewAnswerGrader,
			service.NewRevisionService,
			service.NewRunCoordinator,
		),

		fx.Provide(
			controller.NewRevisionController,
			controller.NewRunController,
			controller.NewController,
		),

		fx.Invoke(AutoMigrateDB),
		fx.Invoke(RegisterRoutesAndStartServer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
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
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", auth.SessionHeader},
		ExposeHeaders:    []string{"Content-Length", auth.SessionHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	ctrl *controller.Controller,
) {
	ctrl.RegisterRoutes(router)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("ReviseHub API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
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

// AutoMigrateDB migrates the schema when the durable backend is active. The
// memory backend provides a nil *gorm.DB and needs no migration.
func AutoMigrateDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Revision{},
		&model.Run{},
		&model.Question{},
		&model.Answer{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
