package main

import (
	"go.uber.org/zap"

	"mailbridge/internal/config"
	"mailbridge/internal/db"
	"mailbridge/internal/handler"
	"mailbridge/internal/httpserver"
	"mailbridge/internal/mq"
	"mailbridge/internal/provider"
	"mailbridge/internal/repository"
	"mailbridge/internal/service/link"
	"mailbridge/internal/util"
)

func main() {
	// Load config
	cfg := config.Load()

	logger := util.NewLogger()
	defer logger.Sync()

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, logger)
	if err != nil {
		logger.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// Init RabbitMQ Publisher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		logger.Fatal("failed to init publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Token cipher for mailbox credentials at rest
	cipher, err := util.NewTokenCipher(cfg.App.TokenCipherKey)
	if err != nil {
		logger.Fatal("failed to init token cipher", zap.Error(err))
	}

	// Init Repositories
	userRepo := repository.NewUserRepository(dbConn)
	accountRepo := repository.NewMailboxAccountRepository(dbConn, cipher)

	// Init Provider + Services
	gmail := provider.NewGmail(cfg.Google, logger)
	linkService := link.NewService(gmail, userRepo, accountRepo, publisher, logger)

	// Init Handlers
	oauthHandler := handler.NewOAuthHandler(linkService, cfg.App.SettingsURL, logger)
	mailboxHandler := handler.NewMailboxHandler(userRepo, accountRepo, logger)

	// Router
	router := httpserver.NewRouter(oauthHandler, mailboxHandler, cfg.JWT.Secret)

	// Start API server
	if err := router.Run(cfg.Server.Port); err != nil {
		logger.Fatal("server start failed", zap.Error(err))
	}
}
