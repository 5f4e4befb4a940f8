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
	"github.com/Domenick1991/hotelbooking/internal/bootstrap"
	"github.com/Domenick1991/hotelbooking/internal/cache"
	"github.com/Domenick1991/hotelbooking/internal/cart"
	"github.com/Domenick1991/hotelbooking/internal/domain"
	"github.com/Domenick1991/hotelbooking/internal/events"
	"github.com/Domenick1991/hotelbooking/internal/kafka"
	"github.com/Domenick1991/hotelbooking/internal/logger"
	"github.com/Domenick1991/hotelbooking/internal/payment"
	"github.com/Domenick1991/hotelbooking/internal/realtime"
	"github.com/Domenick1991/hotelbooking/internal/repository"
	"github.com/Domenick1991/hotelbooking/internal/service/booking"
	"github.com/Domenick1991/hotelbooking/internal/service/carts"
	"github.com/Domenick1991/hotelbooking/internal/service/rooms"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		zl.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(
		cfg.Redis,
		time.Duration(cfg.Booking.RoomsCacheTTL)*time.Second,
		time.Duration(cfg.Booking.CartTTLMinutes)*time.Minute,
	)
	defer redisCache.Close()

	var (
		cartStore cart.Store      = redisCache
		roomCache rooms.RoomCache = redisCache
	)
	if err := redisCache.Ping(ctx); err != nil {
		zl.Warn("redis unavailable, carts kept in memory and room cache disabled", zap.Error(err))
		cartStore = cart.NewMemoryStore()
		roomCache = nil
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, zl)
	defer producer.Close()
	if err := producer.CheckConnection(ctx); err != nil {
		zl.Warn("kafka unavailable, events will be dropped", zap.Error(err))
	}
	publisher := events.NewPublisher(producer, cfg.Kafka.BookingEventsTopic, zl,
		events.WithNotificationsTopic(cfg.Kafka.NotificationsTopic))

	roomRepo := repository.NewRoomRepository(pool)
	voucherRepo := repository.NewVoucherRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	roomService := rooms.NewRoomService(roomRepo, roomCache, publisher, zl)
	voucherService := vouchers.NewVoucherService(voucherRepo)
	bookingService := booking.NewBookingService(
		bookingRepo,
		roomService,
		voucherService,
		payment.NewVNPay(cfg.VNPay),
		publisher,
		time.Duration(cfg.Booking.PaymentTTLMinutes)*time.Minute,
		zl,
	)
	cartService := carts.NewCartService(cartStore, roomService, voucherService, bookingService, zl,
		carts.WithDefaultSource(cfg.Booking.DefaultSource))

	policy, err := realtime.ParsePolicy(cfg.Realtime.RefreshPolicy)
	if err != nil {
		zl.Fatal("realtime policy", zap.Error(err))
	}
	hub := realtime.NewHub(policy, zl)

	// Every API instance reads the full event stream under its own group
	// so all connected browsers hear about every change.
	host, _ := os.Hostname()
	live := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.LiveGroupID+"-"+host, cfg.Kafka.BookingEventsTopic, zl)
	defer live.Close()
	go func() {
		err := live.ConsumeEvents(ctx, func(_ context.Context, event domain.Event) error {
			hub.Broadcast(event)
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			zl.Error("live event consumer stopped", zap.Error(err))
		}
	}()

	err = bootstrap.Run(ctx, cfg, bootstrap.Services{
		Rooms:    roomService,
		Vouchers: voucherService,
		Carts:    cartService,
		Bookings: bookingService,
		Hub:      hub,
	}, zl)
	if err != nil {
		zl.Fatal("server error", zap.Error(err))
	}
}
