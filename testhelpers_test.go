//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/catchify/service-booking/internal/adapter"
	"github.com/catchify/service-booking/internal/application"
	"github.com/catchify/service-booking/internal/domain/booking"
	"github.com/catchify/service-booking/internal/domain/promo"
	scheduleEvents "github.com/catchify/service-booking/internal/events"
	"github.com/catchify/service-booking/internal/platform/database"
	"github.com/catchify/service-booking/internal/platform/kafka"
	"github.com/catchify/service-booking/internal/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	bookingTopic  = "booking.events"
	scheduleTopic = "schedule.events"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	Redis        *redis.Client
	KafkaBrokers []string
	Cleanup      func()
}

// bookingStack holds wired-up booking service components.
type bookingStack struct {
	Seats       *application.SeatService
	Promos      *application.PromoService
	Bookings    *application.BookingService
	Selections  *application.SelectionService
	PromoRepo   *repository.GormPromoRepository
	BookingRepo *repository.GormBookingRepository
	Consumer    *scheduleEvents.ScheduleEventConsumer
	Cleanup     func()
}

// setupContainers starts PostgreSQL, Redis and Kafka testcontainers, applies
// the SQL migrations and returns connected clients.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_booking",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_booking sslmode=disable", pgHost, pgPort.Port())
	dbURL := fmt.Sprintf("postgres://test:test@%s:%s/test_booking?sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = database.Connect(dsn, logger)
		return err == nil
	}, 30*time.Second, time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, database.RunMigrations(dbURL, "migrations", logger))

	redisReq := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: redisReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start Redis container")

	redisHost, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	redisPort, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)
	redisClient := redis.NewClient(&redis.Options{Addr: net.JoinHostPort(redisHost, redisPort.Port())})
	require.NoError(t, redisClient.Ping(ctx).Err())

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, kafkaBrokers, bookingTopic, scheduleTopic)

	cleanup := func() {
		_ = redisClient.Close()
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Redis container: %v", err)
		}
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{
		DB:           db,
		Redis:        redisClient,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

// setupBookingStack wires the booking service the way cmd/server does, with
// confirmations published to Kafka.
func setupBookingStack(t *testing.T, infra *testInfra) *bookingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	txManager := repository.NewGormTxManager(infra.DB)
	seatRepo := repository.NewGormSeatRepository(infra.DB)
	promoRepo := repository.NewGormPromoRepository(infra.DB)
	bookingRepo := repository.NewGormBookingRepository(infra.DB)
	showingRepo := repository.NewGormShowingRepository(infra.DB)
	producer := kafka.NewProducer(infra.KafkaBrokers, logger)

	seatSvc := application.NewSeatService(txManager, seatRepo, showingRepo, logger)
	promoSvc := application.NewPromoService(promoRepo, logger)
	dispatcher := adapter.NewKafkaDispatcher(producer, bookingTopic, logger)
	bookingSvc := application.NewBookingService(txManager, seatRepo, promoSvc, bookingRepo, showingRepo, dispatcher, 5*time.Second, logger)
	selectionSvc := application.NewSelectionService(
		repository.NewRedisSelectionStore(infra.Redis, time.Hour), seatSvc, promoSvc, bookingSvc, logger,
	)

	groupID := fmt.Sprintf("test-booking-%s", uuid.New().String()[:8])
	consumer := scheduleEvents.NewScheduleEventConsumer(infra.KafkaBrokers, groupID, scheduleTopic, seatSvc, logger)

	return &bookingStack{
		Seats:       seatSvc,
		Promos:      promoSvc,
		Bookings:    bookingSvc,
		Selections:  selectionSvc,
		PromoRepo:   promoRepo,
		BookingRepo: bookingRepo,
		Consumer:    consumer,
		Cleanup: func() {
			_ = consumer.Close()
			_ = producer.Close()
		},
	}
}

// seedShowing provisions a showing with rows A and B of five Gold seats at
// Rs 300 each and returns the seat ids keyed by location.
func seedShowing(t *testing.T, stack *bookingStack) (uuid.UUID, map[string]uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	scheduleID := uuid.New()
	_, err := stack.Seats.ProvisionSeats(ctx, application.ProvisionRequest{
		Showing: booking.Showing{
			ScheduleID:      scheduleID,
			EventID:         uuid.New(),
			EventName:       "Interstellar",
			Genre:           "Sci-Fi",
			Language:        "English",
			DurationMinutes: 169,
			VenueName:       "PVR Phoenix Lower Parel",
			StartsAt:        time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second),
		},
		Blocks: []application.SeatBlock{{SeatType: "Gold", PricePaise: 30000, Rows: []string{"A", "B"}, Columns: 5}},
	})
	require.NoError(t, err)

	seats, err := stack.Seats.GetSeats(ctx, scheduleID)
	require.NoError(t, err)
	require.Len(t, seats, 10)

	byLocation := make(map[string]uuid.UUID, len(seats))
	for _, s := range seats {
		byLocation[s.Location] = s.ID
	}
	return scheduleID, byLocation
}

// seedPromo stores an active flat promo code.
func seedPromo(t *testing.T, stack *bookingStack, code string, valuePaise int64) *promo.PromoCode {
	t.Helper()
	p, err := promo.NewPromoCode(code, valuePaise, nil)
	require.NoError(t, err)
	require.NoError(t, stack.PromoRepo.Save(context.Background(), p))
	return p
}

// commitRequest builds a request for the given seats at Rs 300.
func commitRequest(userID, scheduleID uuid.UUID, seatIDs ...uuid.UUID) booking.CommitRequest {
	req := booking.CommitRequest{
		Purchaser:     booking.Purchaser{UserID: userID, Email: "buyer@catchify.test"},
		ScheduleID:    scheduleID,
		PaymentMethod: "card",
	}
	for _, id := range seatIDs {
		req.Seats = append(req.Seats, booking.SeatRequest{SeatID: id, SnapshotPricePaise: 30000, SeatType: "Gold"})
	}
	return req
}

// vacancy returns the vacancy flag of each seat.
func vacancy(t *testing.T, stack *bookingStack, scheduleID uuid.UUID, seatIDs ...uuid.UUID) map[uuid.UUID]bool {
	t.Helper()
	v, err := stack.Seats.CheckVacant(context.Background(), scheduleID, seatIDs)
	require.NoError(t, err)
	return v
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data any) {
	t.Helper()
	producer := kafka.NewProducer(brokers, zap.NewNop())
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// consumeEvent reads from a Kafka topic until it finds an event of the
// expected type and subject.
func consumeEvent(t *testing.T, brokers []string, topic, expectedType, subject string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType && ce.Subject == subject {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	require.NoError(t, controllerConn.CreateTopics(topicConfigs...), "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(time.Second)
}
