package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stripe/stripe-go/v76"

	"github.com/Domenick1991/domora/api"
	"github.com/Domenick1991/domora/config"
	"github.com/Domenick1991/domora/internal/auth"
	"github.com/Domenick1991/domora/internal/bootstrap"
	"github.com/Domenick1991/domora/internal/cache"
	"github.com/Domenick1991/domora/internal/checkout"
	"github.com/Domenick1991/domora/internal/events"
	"github.com/Domenick1991/domora/internal/geo"
	"github.com/Domenick1991/domora/internal/kafka"
	"github.com/Domenick1991/domora/internal/metrics"
	"github.com/Domenick1991/domora/internal/mq"
	"github.com/Domenick1991/domora/internal/repository"
	"github.com/Domenick1991/domora/internal/repository/mongostore"
	"github.com/Domenick1991/domora/internal/service/account"
	"github.com/Domenick1991/domora/internal/service/booking"
	"github.com/Domenick1991/domora/internal/service/catalog"
	"github.com/Domenick1991/domora/internal/service/payment"
	"github.com/Domenick1991/domora/internal/service/pricing"
	"github.com/Domenick1991/domora/internal/service/provider"
)

var logger = loggo.GetLogger("domora")

type repositories struct {
	users     repository.UserRepository
	catalog   repository.CatalogRepository
	providers repository.ProviderRepository
	bookings  repository.BookingRepository
	payments  repository.PaymentRepository
	close     func()
}

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Criticalf("load config: %v", err)
		os.Exit(1)
	}
	if err := loggo.ConfigureLoggers(cfg.Log.Level); err != nil {
		logger.Warningf("log level %q: %v", cfg.Log.Level, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Criticalf("server error: %v", errors.ErrorStack(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	if err := api.RegisterValidators(); err != nil {
		return errors.Trace(err)
	}

	repos, err := openRepositories(ctx, cfg.Database)
	if err != nil {
		return errors.Trace(err)
	}
	defer repos.close()

	collector := metrics.NewMetricsCollector()
	if err := prometheus.Register(collector); err != nil {
		return errors.Annotate(err, "register metrics")
	}

	catalogService := catalog.NewCatalogService(repos.catalog)
	if err := catalogService.Seed(ctx); err != nil {
		return errors.Annotate(err, "seed catalog")
	}

	emitter, closeEvents, err := openEvents(cfg.Events)
	if err != nil {
		return errors.Trace(err)
	}
	defer closeEvents()

	var geoService geo.Service = geo.Disabled{}
	if cfg.Maps.APIKey != "" {
		gm, err := geo.NewGoogleMaps(cfg.Maps.APIKey)
		if err != nil {
			return errors.Annotate(err, "init maps client")
		}
		geoService = gm
	} else {
		logger.Warningf("maps.api_key not set; travel fees are disabled")
	}

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, clock.WallClock)
	accountService := account.NewAccountService(repos.users, tokens, account.WithAdminSignup(cfg.Auth.AllowAdminSignup))

	pricingService := pricing.NewPricingService(repos.catalog, repos.providers, geoService, pricing.Config{
		FreeRadiusKm: cfg.Pricing.FreeRadiusKm,
		FeePerKm:     cfg.Pricing.FeePerKm,
		Currency:     cfg.Pricing.Currency,
		GeoTimeout:   cfg.Pricing.GeoTimeout,
	}, pricing.WithMetrics(collector))

	bookingOpts := []booking.BookingServiceOption{booking.WithMetrics(collector)}
	paymentOpts := []payment.PaymentServiceOption{
		payment.WithMetrics(collector),
		payment.WithUsers(repos.users),
	}
	if emitter != nil {
		bookingOpts = append(bookingOpts, booking.WithEmitter(emitter))
		paymentOpts = append(paymentOpts, payment.WithEmitter(emitter))
	}

	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Payments.WebhookDedupTTL)
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warningf("redis unavailable, checkout claims rely on the database: %v", err)
		}
		paymentOpts = append(paymentOpts, payment.WithCache(redisCache))
	}

	bookingService := booking.NewBookingService(repos.bookings, repos.catalog, repos.providers, pricingService, bookingOpts...)
	providerService := provider.NewProviderService(repos.providers, pricingService, clock.WallClock)

	stripeBackend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		HTTPClient: &http.Client{Timeout: cfg.Stripe.RequestTimeout},
	})
	gateway := checkout.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, checkout.WithBackend(stripeBackend))
	paymentService := payment.NewPaymentService(repos.bookings, repos.payments, gateway, payment.Config{
		Currency:    cfg.Pricing.Currency,
		PublicURL:   cfg.HTTP.PublicURL,
		SuccessPath: cfg.Stripe.SuccessPath,
		CancelPath:  cfg.Stripe.CancelPath,
		LockTTL:     cfg.Payments.CheckoutLockTTL,
	}, paymentOpts...)

	return bootstrap.Run(ctx, cfg, bootstrap.Dependencies{
		Services: api.Services{
			Accounts:  accountService,
			Profiles:  repos.providers,
			Catalog:   catalogService,
			Pricing:   pricingService,
			Bookings:  bookingService,
			Providers: providerService,
			Payments:  paymentService,
		},
		Metrics: collector,
	})
}

func openRepositories(ctx context.Context, cfg config.DatabaseConfig) (*repositories, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		store, err := mongostore.Open(ctx, cfg.MongoURI, cfg.Name)
		if err != nil {
			return nil, errors.Trace(err)
		}
		db := store.Database()
		return &repositories{
			users:     mongostore.NewUserRepository(db),
			catalog:   mongostore.NewCatalogRepository(db),
			providers: mongostore.NewProviderRepository(db),
			bookings:  mongostore.NewBookingRepository(db),
			payments:  mongostore.NewPaymentRepository(db),
			close: func() {
				if err := store.Close(context.Background()); err != nil {
					logger.Warningf("close mongo: %v", err)
				}
			},
		}, nil
	default:
		if cfg.AutoMigrate {
			if err := repository.MigrateUp(cfg.MigrationURL()); err != nil {
				return nil, errors.Trace(err)
			}
			logger.Infof("database schema is up to date")
		}
		pool, err := pgxpool.New(ctx, cfg.DSN())
		if err != nil {
			return nil, errors.Annotate(err, "connect postgres")
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, errors.Annotate(err, "ping postgres")
		}
		return &repositories{
			users:     repository.NewUserRepository(pool),
			catalog:   repository.NewCatalogRepository(pool),
			providers: repository.NewProviderRepository(pool),
			bookings:  repository.NewBookingRepository(pool),
			payments:  repository.NewPaymentRepository(pool),
			close:     pool.Close,
		}, nil
	}
}

// openEvents returns a nil emitter when no bus is configured.
func openEvents(cfg config.EventsConfig) (*events.Emitter, func(), error) {
	switch cfg.Driver {
	case config.EventsKafka:
		producer := kafka.NewProducer(cfg.Brokers)
		emitter := events.NewEmitter(producer, cfg.BookingEventsTopic, events.WithNotificationsTopic(cfg.NotificationsTopic))
		return emitter, func() { _ = producer.Close() }, nil
	case config.EventsRabbitMQ:
		publisher, err := mq.NewPublisher(cfg.AMQPURL, cfg.Exchange)
		if err != nil {
			return nil, nil, errors.Annotate(err, "connect rabbitmq")
		}
		emitter := events.NewEmitter(publisher, cfg.BookingEventsTopic, events.WithNotificationsTopic(cfg.NotificationsTopic))
		return emitter, func() { _ = publisher.Close() }, nil
	default:
		logger.Infof("events disabled")
		return nil, func() {}, nil
	}
}
