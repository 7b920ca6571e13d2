package main

import (
	"time"

	"go.uber.org/zap"

	"mailbridge/internal/config"
	"mailbridge/internal/db"
	"mailbridge/internal/mq"
	"mailbridge/internal/mqhandler"
	redisclient "mailbridge/internal/redis"
	"mailbridge/internal/repository"
	"mailbridge/internal/util"
)

func main() {
	// Load config
	cfg := config.Load()

	logger := util.NewLogger()
	defer logger.Sync()

	logger.Info("Starting worker service...")

	// Init Redis
	rdb := redisclient.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	deduper := util.NewDeduper(rdb, time.Hour)

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, logger)
	if err != nil {
		logger.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// Init Repositories
	linkEventRepo := repository.NewLinkEventRepository(dbConn)

	// Init Handlers
	auditHandler := mqhandler.NewMailboxLinkedHandler(linkEventRepo, deduper, logger)

	// Consumer for the link audit trail
	logger.Info("Initializing audit consumer", zap.String("queue", "mailbox.linked.audit.q"))
	consumer, err := mq.NewConsumer(cfg.MQ.URL, "mailbox.linked.audit.q", mq.RoutingKeyMailboxLinked, logger)
	if err != nil {
		logger.Fatal("failed to init audit consumer", zap.Error(err))
	}
	consumer.SetHandler(auditHandler.HandleMailboxLinked)
	defer consumer.Close()

	logger.Info("Starting audit consumer")
	if err := consumer.StartConsuming(); err != nil {
		logger.Fatal("audit consumer failed", zap.Error(err))
	}
}
