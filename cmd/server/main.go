package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"psyconnect/config"
	_ "psyconnect/docs"
	"psyconnect/internal/adapters/auth"
	"psyconnect/internal/adapters/codegen"
	"psyconnect/internal/adapters/email"
	"psyconnect/internal/adapters/openai"
	httpdelivery "psyconnect/internal/delivery/http"
	"psyconnect/internal/delivery/http/controllers"
	"psyconnect/internal/delivery/http/middleware"
	"psyconnect/internal/repository/postgres"
	"psyconnect/internal/services"
)

// @title psyconnect API
// @version 1.0
// @description Invitation lifecycle and assistant chat relay for the psyconnect mobile app.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	invitationRepo := postgres.NewInvitationRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	psychologistRepo := postgres.NewPsychologistRepository(db)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:             cfg.Email.SESRegion,
			AccessKeyID:        cfg.Email.SESAccessKeyID,
			SecretAccessKey:    cfg.Email.SESSecretAccessKey,
			InsecureSkipVerify: cfg.Email.SESInsecureSkipVerify,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())

	invitationService := services.NewInvitationService(
		invitationRepo,
		patientRepo,
		psychologistRepo,
		codegen.NewGenerator(),
		emailService,
		cfg.WebappURL,
		logger,
	)

	chatService, err := services.NewChatService(openai.NewClient(openai.Config{
		APIKey: cfg.OpenAI.APIKey,
		Model:  cfg.OpenAI.Model,
	}))
	if err != nil {
		logger.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}

	invitationController := controllers.NewInvitationController(logger, invitationService)
	chatController := controllers.NewChatController(logger, chatService)

	// Chat routes are open unless a JWT secret is configured.
	var requireAuth func(http.HandlerFunc) http.HandlerFunc
	if cfg.ChatJWTSecret != "" {
		requireAuth = middleware.RequireAuth(auth.NewJWTVerifier(cfg.ChatJWTSecret), logger)
	}

	mux := httpdelivery.NewRouter(invitationController, chatController, requireAuth)
	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "err", err)
		os.Exit(1)
	}
	logger.Info("server exited")
}
