package main

import (
	apptshandler "medibites/internal/appointments/handler"
	apptsrepository "medibites/internal/appointments/repository"
	apptsservice "medibites/internal/appointments/service"
	apptsvalidator "medibites/internal/appointments/validator"
	assistanthandler "medibites/internal/assistant/handler"
	assistantservice "medibites/internal/assistant/service"
	cataloghandler "medibites/internal/catalog/handler"
	doctorsrepository "medibites/internal/doctors/repository"
	doctorsservice "medibites/internal/doctors/service"
	"medibites/internal/intent"
	"medibites/internal/otp"
	paymentshandler "medibites/internal/payments/handler"
	paymentsrepository "medibites/internal/payments/repository"
	paymentsservice "medibites/internal/payments/service"
	paymentsvalidator "medibites/internal/payments/validator"
	slotsrepository "medibites/internal/slots/repository"
	slotsservice "medibites/internal/slots/service"
	"medibites/pkg/app"
	"medibites/pkg/config"
	"medibites/pkg/contracts"
	mongotx "medibites/pkg/db/mongo"
	"medibites/pkg/kafka"
	kafka_config "medibites/pkg/kafka/config"
	kafkamiddleware "medibites/pkg/kafka/middleware"
	"medibites/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const ServiceName = "appointments"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Appointments service")

	m := metrics.New()
	serverApp := app.NewApplication(cfg)
	events := initEvents(cfg, m, serverApp)

	serverApp.SetApp(m, initHandlers(cfg, m, events)...)
	serverApp.Run()
}

// initEvents returns a publisher-less AppointmentEvents when Kafka is disabled.
func initEvents(cfg *config.Config, m *metrics.Metrics, serverApp *app.Application) *kafka.AppointmentEvents {
	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	if !kafkaCfg.Enabled {
		cfg.Log.Info("Kafka disabled, appointment events will not be published")
		return kafka.NewAppointmentEvents(nil, ServiceName, cfg.Log)
	}

	producer, err := kafka.NewProducer(kafkaCfg, cfg.AppointmentEventsTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
	producer.Use(kafkamiddleware.MetricsProducerMiddleware(m))
	serverApp.OnShutdown(producer.Close)

	cfg.Log.Info("Kafka producer initialized", "topic", producer.Topic())
	return kafka.NewAppointmentEvents(producer, ServiceName, cfg.Log)
}

func initHandlers(cfg *config.Config, m *metrics.Metrics, events *kafka.AppointmentEvents) []contracts.Handler {
	tx := mongotx.NewTransactionManager(cfg.Client.Mongo)
	otpAuthority := otp.NewAuthority(cfg.OTPHashCost)

	var cache redis.Cmdable
	if cfg.Client.Redis != nil {
		cache = cfg.Client.Redis
	}
	doctorRepo := doctorsrepository.NewCachedDoctorRepository(
		doctorsrepository.NewMongoDoctorRepository(cfg),
		cache,
		cfg.DoctorCacheTTL,
		m,
		cfg.Log,
	)
	doctorService := doctorsservice.NewDoctorService(doctorRepo, cfg)
	slotService := slotsservice.NewSlotService(slotsrepository.NewMongoSlotRepository(cfg), cfg)

	appointmentRepo := apptsrepository.NewMongoAppointmentRepository(cfg)
	appointmentService := apptsservice.NewAppointmentService(
		appointmentRepo,
		tx,
		slotService,
		doctorService,
		otpAuthority,
		apptsvalidator.NewAppointmentValidator(cfg.Log),
		events,
		m,
		cfg,
	)

	paymentService := paymentsservice.NewPaymentService(
		paymentsrepository.NewMongoLedgerRepository(cfg),
		appointmentRepo,
		tx,
		otpAuthority,
		paymentsvalidator.NewPaymentValidator(cfg.Log),
		events,
		m,
		cfg,
	)

	assistantService := assistantservice.NewAssistantService(
		intent.NewExtractor(cfg.AppointmentDuration),
		appointmentService,
		doctorService,
		cfg,
	)

	cfg.Log.Info("Appointment services initialized", "database", cfg.MongoDatabaseName)

	return []contracts.Handler{
		apptshandler.NewAppointmentHandler(appointmentService, cfg.AppointmentDuration, cfg.Log),
		paymentshandler.NewPaymentHandler(paymentService, cfg.Log),
		assistanthandler.NewAssistantHandler(assistantService, cfg.Log),
		cataloghandler.NewCatalogHandler(doctorService, slotService, cfg.Log),
	}
}
