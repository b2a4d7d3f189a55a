package bootstrap

import (
	"context"
	"log"

	"relatescore-be/internal/config"
	"relatescore-be/internal/controller"
	"relatescore-be/internal/handler"
	"relatescore-be/internal/pkg/logger"
	"relatescore-be/internal/pkg/mailer"
	"relatescore-be/internal/repository/memory"
	"relatescore-be/internal/repository/redisstore"
	"relatescore-be/internal/repository/unitofwork"
	"relatescore-be/internal/service"
	"relatescore-be/internal/websocket"
	"relatescore-be/pkg/assessment"
	"relatescore-be/pkg/flow"
	pktNats "relatescore-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// HistoryTopic carries result snapshots and reflections to the persistence
// consumer.
const HistoryTopic = "relatescore.history"

type Container struct {
	// Controllers
	HealthController   controller.IHealthController
	QuestionController controller.IQuestionController
	SessionController  controller.ISessionController
	InviteController   controller.IInviteController

	// Background Services (Exposed for main.go to run)
	ConsumerService     service.IConsumerService
	NotificationService *service.NotificationService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub

	Logger logger.ILogger

	closers []func()
}

// NewContainer builds every component. db may be nil, in which case history
// is neither persisted nor served.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) *Container {
	c := &Container{}

	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	c.Logger = sysLogger

	// 2. Scoring
	bank := assessment.DefaultQuestionBank()
	rng := assessment.NewRandom(cfg.Scoring.Seed)
	engine := assessment.NewEngine(bank, rng)
	gate := assessment.NewRandomGate(cfg.Scoring.ModerationBlockRate, rng)

	// 3. Infrastructure
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
			_ = rdb.Close()
			rdb = nil
		} else {
			c.closers = append(c.closers, func() { _ = rdb.Close() })
		}
	}

	var invites flow.InviteRegistry
	if cfg.Session.InviteStore == "redis" && rdb != nil {
		invites = redisstore.NewInviteRegistry(rdb, cfg.Session.InviteTTL)
		log.Printf("[INFO] Using invite registry: REDIS")
	} else {
		if cfg.Session.InviteStore == "redis" {
			log.Printf("[WARN] INVITE_STORE=redis but Redis is unavailable, falling back to memory")
		}
		invites = memory.NewInviteRegistry(cfg.Session.InviteTTL)
		log.Printf("[INFO] Using invite registry: MEMORY")
	}

	sessionRepo := memory.NewSessionRepository(cfg.Session.TTL)
	flowController := flow.NewController(engine, gate, invites)

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.HubLogFilePath)
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run(ctx)
	c.WebSocketHub = wsHub

	// NATS
	var natsSub *pktNats.Subscriber
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, natsSub = connectNats(cfg.App.NatsURL)
		if natsPub != nil {
			c.closers = append(c.closers, natsPub.Close)
		}
		if natsSub != nil {
			c.closers = append(c.closers, natsSub.Close)
		}
	}

	notifService := service.NewNotificationService(natsSub, wsHub, wsLogger) // Hub implements NotificationDelivery
	c.NotificationService = notifService

	var eventPublisher service.EventPublisher = service.LocalEventPublisher{Notifier: notifService}
	if natsPub != nil && natsSub != nil {
		eventPublisher = natsPub
	}

	// 4. History persistence
	var uowFactory unitofwork.RepositoryFactory
	var historyPublisher service.IPublisherService
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)

		watermillLogger := watermill.NewStdLogger(false, false)
		pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)
		c.closers = append(c.closers, func() { _ = pubSub.Close() })

		historyPublisher = service.NewPublisherService(HistoryTopic, pubSub)
		c.ConsumerService = service.NewConsumerService(pubSub, HistoryTopic, uowFactory, sysLogger)
	}

	// 5. Services
	var emailService mailer.IEmailService
	if cfg.SMTPEnabled() {
		emailService = mailer.NewEmailService(
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Email,
			cfg.SMTP.Password,
			cfg.SMTP.SenderName,
			cfg.App.ClientURL,
			sysLogger,
		)
	}

	sessionService := service.NewSessionService(
		sessionRepo,
		flowController,
		eventPublisher,
		historyPublisher,
		sysLogger,
		service.SessionServiceConfig{
			TokenSecret: cfg.Session.JWTSecret,
			TokenTTL:    cfg.Session.TTL,
		},
	)
	historyService := service.NewHistoryService(uowFactory)
	inviteService := service.NewInviteService(sessionService, flowController, emailService, sysLogger)
	questionService := service.NewQuestionService(bank)

	// 6. Controllers
	c.HealthController = controller.NewHealthController()
	c.QuestionController = controller.NewQuestionController(questionService)
	c.SessionController = controller.NewSessionController(sessionService, historyService)
	c.InviteController = controller.NewInviteController(inviteService)
	c.NotificationHandler = handler.NewNotificationHandler(wsHub, cfg.Session.JWTSecret, wsLogger)

	return c
}

// connectNats shares one connection between both sides. The publisher owns
// it and closes it.
func connectNats(url string) (*pktNats.Publisher, *pktNats.Subscriber) {
	nc, err := pktNats.Connect(url)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS: %v", err)
		return nil, nil
	}
	pub, err := pktNats.NewPublisher(nc)
	if err != nil {
		log.Printf("[WARN] Failed to create NATS Publisher: %v", err)
		nc.Close()
		return nil, nil
	}
	sub, err := pktNats.NewSubscriber(nc)
	if err != nil {
		log.Printf("[WARN] Failed to create NATS Subscriber: %v", err)
		return pub, nil
	}
	return pub, sub
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	if zl, ok := c.Logger.(*logger.ZapLogger); ok {
		_ = zl.Sync()
	}
}
