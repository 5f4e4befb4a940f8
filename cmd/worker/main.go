package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/hotelbooking/config"
	"github.com/Domenick1991/hotelbooking/internal/email"
	"github.com/Domenick1991/hotelbooking/internal/events"
	"github.com/Domenick1991/hotelbooking/internal/kafka"
	"github.com/Domenick1991/hotelbooking/internal/logger"
	"github.com/Domenick1991/hotelbooking/internal/payment"
	"github.com/Domenick1991/hotelbooking/internal/repository"
	"github.com/Domenick1991/hotelbooking/internal/service/booking"
	"github.com/Domenick1991/hotelbooking/internal/service/vouchers"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zl = zl.Named("worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		zl.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers, zl)
	defer producer.Close()
	publisher := events.NewPublisher(producer, cfg.Kafka.BookingEventsTopic, zl,
		events.WithNotificationsTopic(cfg.Kafka.NotificationsTopic))

	bookingService := booking.NewBookingService(
		repository.NewBookingRepository(pool),
		repository.NewRoomRepository(pool),
		vouchers.NewVoucherService(repository.NewVoucherRepository(pool)),
		payment.NewVNPay(cfg.VNPay),
		publisher,
		time.Duration(cfg.Booking.PaymentTTLMinutes)*time.Minute,
		zl,
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, zl)
	defer consumer.Close()

	emailSender := email.NewSender(zl)

	go func() {
		if err := consumer.ConsumeEvents(ctx, emailSender.Send); err != nil && !errors.Is(err, context.Canceled) {
			zl.Error("notification consumer stopped", zap.Error(err))
		}
	}()

	expireTicker := time.NewTicker(time.Duration(cfg.Worker.ExpirationSweepMinutes) * time.Minute)
	defer expireTicker.Stop()

	for {
		select {
		case <-expireTicker.C:
			expired, err := bookingService.ExpirePendingBookings(ctx)
			if err != nil {
				zl.Error("expire bookings", zap.Error(err))
				continue
			}
			if len(expired) > 0 {
				zl.Info("expired unpaid bookings", zap.Int("count", len(expired)))
			}
		case <-ctx.Done():
			zl.Info("shutting down")
			return
		}
	}
}
