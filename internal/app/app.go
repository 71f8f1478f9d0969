package app

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"orgchat/database"
	"orgchat/internal/config"
	"orgchat/internal/feed"
	"orgchat/internal/handlers"
	"orgchat/internal/logger"
	"orgchat/internal/repositories"
	repoChat "orgchat/internal/repositories/chat"
	"orgchat/internal/routes"
	"orgchat/internal/services"
	chatService "orgchat/internal/services/chat"
	"orgchat/internal/storage"
	"orgchat/ws"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("logger initialized", "env", cfg.Server.Env)

	db, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("migration failed", "error", err)
	}
	logger.Info("database connected")

	store, err := storage.NewStorage(storage.Config{
		Type:       cfg.Storage.Type,
		BasePath:   cfg.Storage.BasePath,
		BaseURL:    cfg.Storage.BaseURL,
		Bucket:     cfg.Storage.Bucket,
		Region:     cfg.Storage.Region,
		AccessKey:  cfg.Storage.AccessKey,
		SecretKey:  cfg.Storage.SecretKey,
		Endpoint:   cfg.Storage.Endpoint,
		UseSSL:     cfg.Storage.UseSSL,
		PublicRead: cfg.Storage.PublicRead,
	})
	if err != nil {
		logger.Fatal("failed to initialize blob storage", "error", err)
	}

	broker := feed.NewBroker()

	conversationRepo := repoChat.NewConversationRepository(db)
	memberRepo := repoChat.NewMemberRepository(db)
	messageRepo := repoChat.NewMessageRepository(db)
	reactionRepo := repoChat.NewReactionRepository(db)
	pollRepo := repoChat.NewPollRepository(db)
	indexRepo := repoChat.NewIndexRepository(db)
	attachmentRepo := repoChat.NewAttachmentRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	userRepo := repositories.NewUserRepository(db)

	notificationSvc := services.NewNotificationService(notificationRepo, cfg.Chat.PreviewLength)
	attachmentSvc := chatService.NewAttachmentService(attachmentRepo, store)
	indexSvc := chatService.NewIndexService(indexRepo, conversationRepo, messageRepo, broker)
	conversationSvc := chatService.NewConversationService(conversationRepo, memberRepo, messageRepo, indexRepo)
	messageSvc := chatService.NewMessageService(chatService.MessageServiceDeps{
		Messages:    messageRepo,
		Members:     memberRepo,
		Reactions:   reactionRepo,
		Attachments: attachmentSvc,
		Users:       userRepo,
		Index:       indexSvc,
		Notifier:    notificationSvc,
		Feed:        broker,
	}, time.Duration(cfg.Chat.DeleteWindowMinutes)*time.Minute, cfg.Chat.TombstoneText)
	reactionSvc := chatService.NewReactionService(reactionRepo, messageRepo, userRepo, broker)
	pollSvc := chatService.NewPollService(pollRepo, messageRepo, memberRepo, indexSvc, notificationSvc, broker)

	manager := ws.NewManager(broker)
	go manager.Run()

	chatHandler := handlers.NewChatHandler(conversationSvc, messageSvc, reactionSvc, pollSvc, indexSvc)
	notificationHandler := handlers.NewNotificationHandler(notificationSvc)
	wsHandler := ws.NewHandler(manager)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	routes.Register(router, chatHandler, notificationHandler, wsHandler)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("server starting", "address", address)
	if err := router.Run(address); err != nil {
		logger.Fatal("server stopped", "error", err)
	}
}
