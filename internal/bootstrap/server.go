package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/Domenick1991/hotelbooking/api"
	"github.com/Domenick1991/hotelbooking/config"
	"github.com/Domenick1991/hotelbooking/internal/logger"
	"github.com/Domenick1991/hotelbooking/internal/realtime"
	"github.com/Domenick1991/hotelbooking/internal/service/booking"
	"github.com/Domenick1991/hotelbooking/internal/service/carts"
	"github.com/Domenick1991/hotelbooking/internal/service/rooms"
	"github.com/Domenick1991/hotelbooking/internal/service/vouchers"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

type Services struct {
	Rooms    rooms.RoomUseCase
	Vouchers vouchers.VoucherUseCase
	Carts    carts.CartUseCase
	Bookings booking.BookingUseCase
	Hub      *realtime.Hub
}

// Run serves the HTTP API and blocks until ctx is cancelled or the server
// fails.
func Run(ctx context.Context, cfg *config.Config, svc Services, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           NewRouter(cfg, svc, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.HTTP.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if svc.Hub != nil {
			svc.Hub.Close()
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func NewRouter(cfg *config.Config, svc Services, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), logger.GinMiddleware(log.Named("http")))

	group := router.Group("/api")
	api.NewRoomHandler(svc.Rooms).Register(group.Group("/rooms"))

	limiter := api.NewRateLimiter(cfg.HTTP.VoucherRPS, cfg.HTTP.VoucherBurst, log.Named("ratelimit"))
	api.NewVoucherHandler(svc.Vouchers).Register(group.Group("/vouchers"), limiter.Middleware())

	api.NewCartHandler(svc.Carts).Register(group.Group("/cart"))

	bookings := api.NewBookingHandler(svc.Bookings)
	bookings.Register(group.Group("/bookings"))
	bookings.RegisterCustomers(group.Group("/customers"))
	bookings.RegisterPayments(group.Group("/payments"))

	if svc.Hub != nil {
		router.GET("/ws", gin.WrapH(svc.Hub))
	}

	if cfg.HTTP.SwaggerDir != "" {
		router.StaticFile("/swagger/doc.json", filepath.Join(cfg.HTTP.SwaggerDir, "swagger.json"))
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json"))))
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
