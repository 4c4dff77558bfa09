package app

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"taskhub/internal/api/http/handler"
	"taskhub/internal/api/http/route"
	"taskhub/internal/apperrors"
	"taskhub/internal/config"
	"taskhub/internal/msg/broker"
	"taskhub/internal/msg/inbox"
	"taskhub/internal/msg/outbox"
	"taskhub/internal/projector"
	"taskhub/internal/realtime"
	"taskhub/internal/repository"
	"taskhub/internal/service"
	"taskhub/pkg/jwt"
	"taskhub/pkg/postgres"
	"taskhub/pkg/redis"
	"taskhub/pkg/search"
	"taskhub/pkg/server"
)

const defaultTimeout = 15 * time.Second

type App struct {
	Cfg        *config.Config
	Log        *zap.Logger
	DB         postgres.Postgres
	RDB        redis.Redis   // nil when redis is disabled
	ES         search.Search // nil when elasticsearch is disabled
	Broker     broker.Broker
	HTTPServer server.HTTPServer
	Realtime   *Realtime
	EBus       *EBus
}

type Repository struct {
	UserRepository         *repository.UserRepository
	ProjectRepository      *repository.ProjectRepository
	TodoRepository         *repository.TodoRepository
	NotificationRepository *repository.NotificationRepository
	ActivityRepository     *repository.ActivityRepository
	OutboxRepository       *repository.OutboxRepository
	InboxRepository        *repository.InboxRepository
	SearchRepository       *repository.TodoSearchRepository // nil when elasticsearch is disabled
}

type Service struct {
	HealthService       *service.HealthService
	ProjectService      *service.ProjectService
	TodoService         *service.TodoService
	NotificationService *service.NotificationService
	ActivityService     *service.ActivityService
	SearchService       *service.SearchService
}

type Realtime struct {
	Hub    *realtime.Hub
	Fanout *realtime.Fanout
	Bridge *realtime.Bridge // nil without redis
}

type EBus struct {
	OutboxPublisher  *outbox.Publisher
	InboxSubscribers []*inbox.Subscriber
}

func New(cfg *config.Config, log *zap.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	db, err := initDB(&cfg.Database)
	if err != nil {
		log.Error("Failed to initialize database", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	log.Debug("Database initialized")

	var rdb redis.Redis
	if cfg.Redis.Enable {
		rdb, err = initRedis(&cfg.Redis)
		if err != nil {
			log.Error("Failed to initialize redis", zap.Error(err))
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}

		log.Debug("Redis initialized")
	}

	publicKey, err := jwt.LoadECDSAPublicKey(cfg.HTTPServer.JWT.PublicKeyPath)
	if err != nil {
		log.Error("Failed to load public key", zap.Error(err))
		return nil, fmt.Errorf("failed to load public key: %w", err)
	}

	log.Debug("Public key loaded")

	var es search.Search
	if cfg.Elastic.Enable {
		es, err = initElastic(&cfg.Elastic)
		if err != nil {
			log.Error("Failed to initialize elastic", zap.Error(err))
			return nil, fmt.Errorf("failed to initialize elastic: %w", err)
		}

		log.Debug("Elasticsearch initialized")
	}

	repo := initRepository(log, db, es)

	if repo.SearchRepository != nil {
		if err := repo.SearchRepository.EnsureIndex(ctx); err != nil {
			log.Error("Failed to EnsureIndex a todo search repository", zap.Error(err))
			return nil, fmt.Errorf("failed to EnsureIndex a todo search repository: %w", err)
		}
	}

	brk, err := initBroker(&cfg.Broker)
	if err != nil {
		log.Error("Failed to initialize broker", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize broker: %w", err)
	}

	log.Debug("Broker initialized", zap.String("driver", cfg.Broker.Driver))

	rt := initRealtime(log, &cfg.Realtime, rdb)

	svc := initService(log, db, repo)

	httpServer := initHTTPServer(log, cfg, publicKey, svc, rt)

	eBus, err := initEBus(log, cfg, db, rdb, brk, repo, rt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ebus: %w", err)
	}

	return &App{
		Cfg:        cfg,
		Log:        log,
		DB:         db,
		RDB:        rdb,
		ES:         es,
		Broker:     brk,
		HTTPServer: httpServer,
		Realtime:   rt,
		EBus:       eBus,
	}, nil
}

func MustNew(cfg *config.Config, log *zap.Logger) *App {
	app, err := New(cfg, log)
	if err != nil {
		panic(err)
	}
	return app
}

// Run blocks until ctx is done and every component has stopped, or until
// the first component fails.
func (a *App) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(a.HTTPServer.Run)

	g.Go(func() error {
		<-gctx.Done()

		if err := a.HTTPServer.Shutdown(); err != nil {
			return fmt.Errorf("failed to shutdown http server: %w", err)
		}

		a.Log.Debug("Http server shutdown")

		return nil
	})

	g.Go(func() error {
		return a.Realtime.Hub.Run(gctx)
	})

	if a.Realtime.Bridge != nil {
		g.Go(func() error {
			return a.Realtime.Bridge.Run(gctx)
		})
	}

	g.Go(func() error {
		a.EBus.OutboxPublisher.Run(gctx)
		return nil
	})

	for _, sub := range a.EBus.InboxSubscribers {
		g.Go(func() error {
			if err := sub.Run(gctx); err != nil {
				return fmt.Errorf("subscriber %s: %w", sub.Name(), err)
			}

			return nil
		})
	}

	a.Log.Info("Application started",
		zap.String("addr", fmt.Sprintf("%s:%d", a.Cfg.HTTPServer.Host, a.Cfg.HTTPServer.Port)),
		zap.Int("subscribers", len(a.EBus.InboxSubscribers)),
	)

	return g.Wait()
}

func (a *App) Shutdown() error {
	err := apperrors.ErrShutdown

	for _, sub := range a.EBus.InboxSubscribers {
		if subErr := sub.Close(); subErr != nil {
			err = fmt.Errorf("%w, failed to close subscriber %s: %w", err, sub.Name(), subErr)
		}
	}

	a.Log.Debug("Subscribers closed")

	if brkErr := a.Broker.Close(); brkErr != nil {
		err = fmt.Errorf("%w, failed to close broker: %w", err, brkErr)
	}

	a.Log.Debug("Broker closed")

	if a.RDB != nil {
		if rdbErr := a.RDB.Close(); rdbErr != nil {
			err = fmt.Errorf("%w, failed to close RDB: %w", err, rdbErr)
		}

		a.Log.Debug("Redis closed")
	}

	a.DB.Close()
	a.Log.Debug("Database closed")

	if err == apperrors.ErrShutdown { //nolint:errorlint // nothing was wrapped onto the sentinel
		return nil
	}

	return err
}

func initDB(cfg *config.Database) (postgres.Postgres, error) {
	postgresCfg := &postgres.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		Name:     cfg.Name,
		SSLMode:  cfg.SSLMode,
		MaxConns: cfg.MaxConns,
		MinConns: cfg.MinConns,
		Migration: postgres.Migration{
			Path:      cfg.Migration.Path,
			AutoApply: cfg.Migration.AutoApply,
		},
	}

	db, err := postgres.New(postgresCfg)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func initRedis(cfg *config.Redis) (redis.Redis, error) {
	redisCfg := &redis.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	rdb, err := redis.New(redisCfg)
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func initElastic(cfg *config.Elastic) (search.Search, error) {
	elasticCfg := &search.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		CloudID:   cfg.CloudID,
		APIKey:    cfg.APIKey,
		Timeout:   cfg.Timeout,
	}

	return search.New(elasticCfg)
}

func initBroker(cfg *config.Broker) (broker.Broker, error) {
	return broker.New(broker.Config{
		Driver:     cfg.Driver,
		Topic:      cfg.Topic,
		BufferSize: cfg.BufferSize,
		Brokers:    cfg.Kafka.Brokers,
		RabbitURL:  cfg.RabbitMQ.URL,
		Exchange:   cfg.RabbitMQ.Exchange,
		Prefetch:   cfg.RabbitMQ.Prefetch,
	})
}

func initRepository(log *zap.Logger, db postgres.Postgres, es search.Search) *Repository {
	repo := &Repository{
		UserRepository:         repository.NewUserRepository(db.Pool()),
		ProjectRepository:      repository.NewProjectRepository(db.Pool()),
		TodoRepository:         repository.NewTodoRepository(db.Pool()),
		NotificationRepository: repository.NewNotificationRepository(db.Pool()),
		ActivityRepository:     repository.NewActivityRepository(db.Pool()),
		OutboxRepository:       repository.NewOutboxRepository(db.Pool()),
		InboxRepository:        repository.NewInboxRepository(db.Pool()),
	}

	if es != nil {
		repo.SearchRepository = repository.NewTodoSearchRepository(es.Client())
	}

	log.Debug("Repositories initialized", zap.Bool("search", repo.SearchRepository != nil))

	return repo
}

func initRealtime(log *zap.Logger, cfg *config.Realtime, rdb redis.Redis) *Realtime {
	hub := realtime.NewHub(log.With(zap.String("component", "hub")))

	// A typed nil client would not compare equal to nil inside Fanout.
	var client goredis.UniversalClient
	if rdb != nil {
		client = rdb.Client()
	}

	rt := &Realtime{
		Hub:    hub,
		Fanout: realtime.NewFanout(log, hub, client, cfg.Channel),
	}

	if client != nil {
		rt.Bridge = realtime.NewBridge(log, client, hub, cfg.Channel)
	}

	log.Debug("Realtime initialized", zap.Bool("redis_bridge", rt.Bridge != nil))

	return rt
}

func initService(log *zap.Logger, db postgres.Postgres, repo *Repository) *Service {
	writer := outbox.NewWriter(repo.OutboxRepository)

	svc := &Service{
		HealthService:       service.NewHealthService(log, db.Pool()),
		ProjectService:      service.NewProjectService(log, repo.ProjectRepository, repo.UserRepository, writer),
		TodoService:         service.NewTodoService(log, repo.TodoRepository, repo.ProjectRepository, repo.UserRepository, writer),
		NotificationService: service.NewNotificationService(log, repo.NotificationRepository),
		ActivityService:     service.NewActivityService(log, repo.ActivityRepository, repo.ProjectRepository),
	}

	if repo.SearchRepository != nil {
		svc.SearchService = service.NewSearchService(repo.SearchRepository, repo.ProjectRepository)
	}

	log.Debug("Services initialized")

	return svc
}

func initHTTPServer(log *zap.Logger, cfg *config.Config, publicKey *ecdsa.PublicKey, svc *Service, rt *Realtime) server.HTTPServer {
	hdl := route.Handlers{
		Health:       handler.NewHealthHandler(log, svc.HealthService),
		Notification: handler.NewNotificationHandler(svc.NotificationService),
		Project:      handler.NewProjectHandler(svc.ProjectService, svc.ActivityService),
		Todo:         handler.NewTodoHandler(svc.TodoService),
		Realtime: handler.NewRealtimeHandler(log, rt.Hub, realtime.ClientConfig{
			WriteWait:  cfg.Realtime.WriteWait,
			PongWait:   cfg.Realtime.PongWait,
			SendBuffer: cfg.Realtime.SendBuffer,
		}, nil),
	}

	if svc.SearchService != nil {
		hdl.Search = handler.NewSearchHandler(svc.SearchService)
	}

	log.Debug("Handlers initialized")

	router := route.SetupRouter(log, cfg, publicKey, hdl)

	httpServer := server.NewHTTPServer(
		server.WithAddr(cfg.HTTPServer.Host, cfg.HTTPServer.Port),
		server.WithTimeout(cfg.HTTPServer.Timeout.Read, cfg.HTTPServer.Timeout.Write, cfg.HTTPServer.Timeout.Idle),
		server.WithHandler(router),
	)

	return httpServer
}

func initEBus(
	log *zap.Logger,
	cfg *config.Config,
	db postgres.Postgres,
	rdb redis.Redis,
	brk broker.Broker,
	repo *Repository,
	rt *Realtime,
) (*EBus, error) {
	var locker outbox.Locker = &outbox.LocalLocker{}
	if rdb != nil {
		locker = redis.NewLocker(rdb.Client())
	}

	publisher := outbox.NewPublisher(
		log,
		outbox.Config{
			Name:         cfg.Publisher.Name,
			PollInterval: cfg.Publisher.PollInterval,
			BatchSize:    cfg.Publisher.BatchSize,
			LockKey:      cfg.Publisher.LockKey,
			LockTTL:      cfg.Publisher.LockTTL,
			Breaker: outbox.BreakerConfig{
				MaxRequests:      cfg.Publisher.Breaker.MaxRequests,
				Interval:         cfg.Publisher.Breaker.Interval,
				Timeout:          cfg.Publisher.Breaker.Timeout,
				ConsecutiveFails: cfg.Publisher.Breaker.ConsecutiveFails,
			},
		},
		brk,
		repo.OutboxRepository,
		locker,
	)

	log.Debug("Outbox publisher initialized")

	type binding struct {
		name    string
		cfg     config.Subscriber
		handler func(name string) inbox.Handler
	}

	subs := cfg.Subscribers

	bindings := []binding{
		{"notification-projector", subs.Notification, func(name string) inbox.Handler {
			once := inbox.NewOnce(db.Pool(), repo.InboxRepository, name)
			return projector.NewNotificationProjector(log, once, repo.UserRepository, repo.ProjectRepository, repo.NotificationRepository, rt.Fanout)
		}},
		{"activity-projector", subs.Activity, func(name string) inbox.Handler {
			once := inbox.NewOnce(db.Pool(), repo.InboxRepository, name)
			return projector.NewActivityProjector(log, once, repo.UserRepository, repo.ActivityRepository)
		}},
		{"feed-relay", subs.Feed, func(string) inbox.Handler {
			return projector.NewFeedRelay(log, repo.ProjectRepository, rt.Fanout)
		}},
		{"audit-log", subs.Audit, func(string) inbox.Handler {
			return projector.NewAuditLog(log)
		}},
	}

	if repo.SearchRepository != nil {
		bindings = append(bindings, binding{"search-indexer", subs.Search, func(string) inbox.Handler {
			return projector.NewSearchIndexer(log, repo.SearchRepository)
		}})
	}

	subscribers := make([]*inbox.Subscriber, 0, len(bindings))

	for _, b := range bindings {
		if !b.cfg.Enabled {
			continue
		}

		if b.cfg.Name == "" {
			b.cfg.Name = b.name
		}

		sub, err := brk.Subscribe(b.cfg.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to subscribe %s: %w", b.cfg.Name, err)
		}

		subscribers = append(subscribers, inbox.NewSubscriber(
			log,
			inbox.Config{
				Name:          b.cfg.Name,
				WorkerCount:   b.cfg.WorkerCount,
				BufferSize:    b.cfg.BufferSize,
				HandleTimeout: b.cfg.HandleTimeout,
			},
			sub,
			b.handler(b.cfg.Name),
		))

		log.Debug("Inbox subscriber initialized", zap.String("name", b.cfg.Name))
	}

	return &EBus{
		OutboxPublisher:  publisher,
		InboxSubscribers: subscribers,
	}, nil
}
