package main

import (
	"context"

	blockshandler "slotkeeper/internal/blocks/handler"
	blocksrepository "slotkeeper/internal/blocks/repository"
	blocksservice "slotkeeper/internal/blocks/service"
	blocksvalidator "slotkeeper/internal/blocks/validator"
	bookingshandler "slotkeeper/internal/bookings/handler"
	bookingsrepository "slotkeeper/internal/bookings/repository"
	bookingsservice "slotkeeper/internal/bookings/service"
	bookingsvalidator "slotkeeper/internal/bookings/validator"
	calendarhandler "slotkeeper/internal/calendar/handler"
	calendarrepository "slotkeeper/internal/calendar/repository"
	calendarservice "slotkeeper/internal/calendar/service"
	calendarvalidator "slotkeeper/internal/calendar/validator"
	cataloghandler "slotkeeper/internal/catalog/handler"
	"slotkeeper/internal/catalog/remote"
	catalogrepository "slotkeeper/internal/catalog/repository"
	catalogservice "slotkeeper/internal/catalog/service"
	catalogvalidator "slotkeeper/internal/catalog/validator"
	"slotkeeper/internal/events"
	healthhandler "slotkeeper/internal/health/handler"
	"slotkeeper/internal/occupancy"
	slotshandler "slotkeeper/internal/slots/handler"
	slotsservice "slotkeeper/internal/slots/service"
	"slotkeeper/pkg/app"
	"slotkeeper/pkg/client"
	"slotkeeper/pkg/config"
	"slotkeeper/pkg/contracts"
	mongotx "slotkeeper/pkg/db/mongo"
	"slotkeeper/pkg/db/postgres"
	"slotkeeper/pkg/kafka"
	kafka_config "slotkeeper/pkg/kafka/config"
	kafka_middleware "slotkeeper/pkg/kafka/middleware"
	"slotkeeper/pkg/lock"
	"slotkeeper/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ServiceName = "scheduler"
	lockPrefix  = "slotkeeper:lock:"
)

type stores struct {
	specialists calendarrepository.SpecialistRepository
	services    catalogrepository.ServiceRepository
	bookings    bookingsrepository.BookingRepository
	blocks      blocksrepository.BlockRepository
}

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.Log.Info("Starting scheduler service")
	cfg.Connect()
	defer cfg.GracefulShutdown()

	m := metrics.New(prometheus.DefaultRegisterer)
	serverApp := app.NewApplication(cfg, m, prometheus.DefaultGatherer)

	st := initStores(cfg)
	serializer := initSerializer(cfg, m)
	publisher := initEvents(cfg, m, serverApp)

	calendarService := calendarservice.NewCalendarService(
		st.specialists,
		calendarvalidator.NewCalendarValidator(cfg.Log),
		cfg,
	)
	catalogService := catalogservice.NewCatalogService(
		st.services,
		catalogvalidator.NewServiceValidator(cfg.Log),
		cfg,
	)
	serviceCatalog, clientDirectory := initCollaborators(cfg, catalogService)
	aggregator := occupancy.NewAggregator(st.bookings, st.blocks)

	slotService := slotsservice.NewSlotService(calendarService, serviceCatalog, aggregator, m, cfg)
	bookingService := bookingsservice.NewBookingService(bookingsservice.Dependencies{
		Repo:       st.bookings,
		Validator:  bookingsvalidator.NewBookingValidator(cfg.Log),
		Calendar:   calendarService,
		Catalog:    serviceCatalog,
		Clients:    clientDirectory,
		Occupancy:  aggregator,
		Serializer: serializer,
		Events:     publisher,
		Metrics:    m,
	}, cfg)
	blockService := blocksservice.NewBlockService(
		st.blocks,
		blocksvalidator.NewBlockValidator(cfg.Log),
		calendarService,
		aggregator,
		serializer,
		publisher,
		m,
		cfg,
	)

	handlers := []contracts.Handler{
		calendarhandler.NewCalendarHandler(calendarService, cfg.Log),
		slotshandler.NewSlotHandler(slotService, cfg.Log),
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
		blockshandler.NewBlockHandler(blockService, cfg.Log),
	}
	if cfg.CatalogURL == "" {
		handlers = append(handlers, cataloghandler.NewServiceHandler(catalogService, cfg.Log))
	}

	serverApp.SetApp(healthhandler.NewHealthHandler(healthChecks(cfg), cfg.Log), handlers...)
	serverApp.Run()
}

func initStores(cfg *config.Config) stores {
	if cfg.StorageDriver == config.StoragePostgres {
		pool := cfg.Client.Postgres
		cfg.Log.Info("Using Postgres storage")
		return stores{
			specialists: calendarrepository.NewPostgresSpecialistRepository(pool),
			services:    catalogrepository.NewPostgresServiceRepository(pool),
			bookings:    bookingsrepository.NewPostgresBookingRepository(pool),
			blocks:      blocksrepository.NewPostgresBlockRepository(pool),
		}
	}

	cfg.Log.Info("Using Mongo storage", "database", cfg.MongoDatabaseName, "transactions", cfg.MongoTransactions)
	return stores{
		specialists: calendarrepository.NewMongoSpecialistRepository(cfg),
		services:    catalogrepository.NewMongoServiceRepository(cfg),
		bookings:    bookingsrepository.NewMongoBookingRepository(cfg),
		blocks:      blocksrepository.NewMongoBlockRepository(cfg),
	}
}

// initSerializer builds the per-(specialist, date) critical section for the
// configured lock backend.
func initSerializer(cfg *config.Config, m *metrics.Metrics) lock.Serializer {
	if cfg.LockBackend == config.LockBackendPostgres {
		cfg.Log.Info("Occupancy lock backend configured", "backend", cfg.LockBackend)
		return postgres.NewAdvisorySerializer(cfg.Client.Postgres, cfg.LockWaitTimeout, m)
	}

	var locker lock.Locker
	switch cfg.LockBackend {
	case config.LockBackendRedis:
		locker = lock.NewRedisLocker(cfg.Client.Redis, lockPrefix, cfg.LockTTL, cfg.LockWaitTimeout, cfg.LockRetryInterval)
	case config.LockBackendMongo:
		leases := bookingsrepository.NewBookingLockRepository(cfg)
		locker = lock.NewLeaseLocker(leases, cfg.LockTTL, cfg.LockWaitTimeout, cfg.LockRetryInterval)
	default:
		locker = lock.NewLocalLocker(cfg.LockWaitTimeout)
	}

	cfg.Log.Info("Occupancy lock backend configured", "backend", cfg.LockBackend)
	return lock.NewSerializer(cfg.LockBackend, locker, storeTransactor(cfg), cfg.Log, m)
}

func storeTransactor(cfg *config.Config) lock.Transactor {
	switch {
	case cfg.StorageDriver == config.StoragePostgres:
		return postgres.NewTxManager(cfg.Client.Postgres)
	case cfg.MongoTransactions:
		return mongotx.NewTransactionManager(cfg.Client.Mongo)
	}
	return lock.NoTransaction{}
}

func initCollaborators(cfg *config.Config, store catalogservice.CatalogService) (catalogservice.ServiceCatalog, catalogservice.ClientDirectory) {
	var catalog catalogservice.ServiceCatalog = store
	if cfg.CatalogURL != "" {
		catalog = remote.NewHTTPServiceCatalog(client.NewHttpClient(cfg.CatalogURL, cfg.CollaboratorTimeout), cfg.Log)
		cfg.Log.Info("Using remote service catalog", "url", cfg.CatalogURL)
	}

	var directory catalogservice.ClientDirectory = catalogservice.OpenDirectory{}
	if cfg.ClientDirectoryURL != "" {
		directory = remote.NewHTTPClientDirectory(client.NewHttpClient(cfg.ClientDirectoryURL, cfg.CollaboratorTimeout), cfg.Log)
		cfg.Log.Info("Using remote client directory", "url", cfg.ClientDirectoryURL)
	}
	return catalog, directory
}

func initEvents(cfg *config.Config, m *metrics.Metrics, serverApp *app.Application) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Domain events disabled")
		return events.NopPublisher{}
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.KafkaEventsTopic, cfg.KafkaDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafka_middleware.MetricsProducerMiddleware(m))

	serverApp.OnShutdown(func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})

	cfg.Log.Info("Domain events enabled", "topic", cfg.KafkaEventsTopic)
	return events.NewKafkaPublisher(producer, cfg.Log)
}

func healthChecks(cfg *config.Config) map[string]healthhandler.Check {
	checks := map[string]healthhandler.Check{}
	if c := cfg.Client.Mongo; c != nil {
		checks["mongo"] = func(ctx context.Context) error { return c.Ping(ctx, nil) }
	}
	if p := cfg.Client.Postgres; p != nil {
		checks["postgres"] = func(ctx context.Context) error { return p.Ping(ctx) }
	}
	if r := cfg.Client.Redis; r != nil {
		checks["redis"] = func(ctx context.Context) error { return r.Ping(ctx).Err() }
	}
	return checks
}
