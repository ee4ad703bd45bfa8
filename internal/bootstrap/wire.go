package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	driver "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/baechuer/account-service/internal/application/account"
	"github.com/baechuer/account-service/internal/config"
	mongodb "github.com/baechuer/account-service/internal/infrastructure/db/mongo"
	"github.com/baechuer/account-service/internal/infrastructure/memory"
	"github.com/baechuer/account-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/account-service/internal/infrastructure/notify"
	"github.com/baechuer/account-service/internal/infrastructure/redis"
	"github.com/baechuer/account-service/internal/infrastructure/security"
	"github.com/baechuer/account-service/internal/logger"
	http_handlers "github.com/baechuer/account-service/internal/transport/http/handlers"
	"github.com/baechuer/account-service/internal/transport/http/middleware"
	"github.com/baechuer/account-service/internal/transport/http/response"
	"github.com/baechuer/account-service/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewMongo func(uri, dbName string) (MongoCloser, *driver.Database, error)

	NewRedis func(addr, password string, db int) RedisClient

	NewNotifier func(cfg *config.Config) (account.Notifier, func(), error)

	NewRouter func(router.Deps) (http.Handler, error)
}

type MongoCloser interface {
	Ping(ctx context.Context) error
	Disconnect(ctx context.Context) error
}

// mongoCloser narrows *driver.Client to what bootstrap needs.
type mongoCloser struct{ *driver.Client }

func (m mongoCloser) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, nil)
}

type RedisClient interface {
	Ping(ctx context.Context) error
	Close() error
}

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	// 1) document store
	mongoCli, db, err := deps.NewMongo(cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, nil, err
	}

	cleanupFns := []func(){
		func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mongoCli.Disconnect(ctx)
		},
	}

	// 2) user repo (the unique email index is what closes the register race)
	userRepo := mongodb.NewUserRepo(db)
	{
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := userRepo.EnsureIndexes(ctx)
		cancel()
		if err != nil {
			runCleanup(cleanupFns)
			return nil, nil, fmt.Errorf("ensure indexes: %w", err)
		}
	}

	// 3) redis token store
	var tokenStore account.TokenStore
	var redisCli RedisClient
	if deps.NewRedis != nil {
		c := deps.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := c.Ping(ctx)
		cancel()

		if err != nil {
			if cfg.Env != "dev" {
				_ = c.Close()
				runCleanup(cleanupFns)
				return nil, nil, fmt.Errorf("redis ping: %w", err)
			}
			logger.Logger.Warn().Err(err).Msg("redis unavailable; tokens held in memory")
			_ = c.Close()
		} else {
			logger.Logger.Info().Msg("redis connected")
			redisCli = c
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
		}
	}

	if redisCli != nil {
		tokenStore = redis.NewTokenStore(redisCli.(*redis.Client))
	} else {
		tokenStore = memory.NewTokenStore()
	}

	// 4) notification dispatcher
	notifier, notifierCleanup, err := deps.NewNotifier(cfg)
	if err != nil {
		if cfg.Env == "dev" {
			logger.Logger.Warn().Err(err).Msg("notifier unavailable; using noop dispatcher")
			notifier = memory.NewNoopDispatcher(logger.Logger)
		} else {
			runCleanup(cleanupFns)
			return nil, nil, err
		}
	}
	if notifierCleanup != nil {
		cleanupFns = append(cleanupFns, notifierCleanup)
	}

	// 5) security
	logger.Logger.Info().Str("issuer", cfg.JWTIssuer).Msg("initializing jwt signer")
	hasher := security.NewBcryptHasher(12)
	signer := security.NewJWTSigner(cfg.JWTSecret, cfg.JWTIssuer)

	// 6) service
	accountSvc := account.NewService(
		userRepo,
		hasher,
		tokenStore,
		notifier,
		account.Config{
			RegistrationTokenTTL:  cfg.RegistrationTokenTTL,
			PasswordResetTokenTTL: cfg.PasswordResetTokenTTL,
		},
	)

	accountSvc = accountSvc.WithAudit(func(action string, fields map[string]string) {
		evt := logger.Logger.Info().
			Bool("audit", true).
			Str("action", action)
		for k, v := range fields {
			evt = evt.Str(k, v)
		}
		evt.Msg("audit")
	})

	// 7) handlers + middleware
	accountH := http_handlers.NewAccountHandler(accountSvc, signer, cfg.AccessTokenTTL)

	stores := map[string]http_handlers.Pinger{
		"mongo": http_handlers.PingFunc(mongoCli.Ping),
	}
	if redisCli != nil {
		stores["redis"] = http_handlers.PingFunc(redisCli.Ping)
	}
	healthH := http_handlers.NewHealthHandler(stores)

	authMW := middleware.Auth(signer, response.WriteError)

	// 8) router
	mux, err := deps.NewRouter(router.Deps{
		Health:      healthH,
		Account:     accountH,
		RequestIDMW: middleware.RequestID,
		AuthMW:      authMW,
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 9) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig: config.Load,
		NewMongo: func(uri, dbName string) (MongoCloser, *driver.Database, error) {
			cli, db, err := config.NewMongo(uri, dbName)
			if err != nil {
				return nil, nil, err
			}
			return mongoCloser{cli}, db, nil
		},
		NewRedis: func(addr, password string, db int) RedisClient {
			return redis.New(addr, password, db)
		},
		NewNotifier: newNotifier,
		NewRouter: func(d router.Deps) (http.Handler, error) {
			return router.New(d)
		},
	}
}

func newNotifier(cfg *config.Config) (account.Notifier, func(), error) {
	switch cfg.NotifyMode {
	case "http":
		d := notify.NewHTTPDispatcher(notify.Config{
			RegistrationURL:  cfg.NotifyRegistrationURL,
			PasswordResetURL: cfg.NotifyPasswordURL,
		})
		return d, nil, nil

	case "amqp":
		d, err := rabbitmq.NewDispatcher(cfg.RabbitURL)
		if err != nil {
			return nil, nil, err
		}
		d.SetExchange(cfg.RabbitExchange)
		return d, func() { _ = d.Close() }, nil

	case "noop":
		return memory.NewNoopDispatcher(logger.Logger), nil, nil

	default:
		return nil, nil, fmt.Errorf("invalid notify mode: %q", cfg.NotifyMode)
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
