package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"pulasa-client/config"
	"pulasa-client/handlers"
	"pulasa-client/internal/api"
	"pulasa-client/internal/auth"
	"pulasa-client/internal/bidflow"
	"pulasa-client/internal/jobs"
	"pulasa-client/internal/payment"
	"pulasa-client/internal/realtime"
	"pulasa-client/internal/tokenstore"
	"pulasa-client/models"
	"pulasa-client/monitoring"
	"pulasa-client/services"
	"pulasa-client/utils"
)

func Start() error {
	// Load .env if present; real env vars win.
	_ = godotenv.Load()

	cfg := config.LoadConfig()
	utils.InitLogger(cfg.Environment, cfg.LogLevel)
	logger := utils.Component("main")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Token store: file by default, Redis when a shared instance exists.
	var store tokenstore.Store
	switch cfg.TokenStore {
	case "redis":
		redisClient, err := tokenstore.NewRedisClient(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		store = tokenstore.NewRedisStore(redisClient)
	default:
		store = tokenstore.NewFileStore(cfg.TokenFilePath)
	}

	authClient := auth.NewClient(cfg.AuthBaseURL, cfg.RequestTimeout)
	session := auth.NewSession(authClient, store)
	session.Restore(ctx)

	apiClient := api.NewClient(cfg.AuctionBaseURL, cfg.RequestTimeout, session.Token)

	// Payment gateway
	factory := payment.NewFactory()
	var gatewayCfg any
	provider := payment.Provider(cfg.PaymentProvider)
	if provider == payment.ProviderRazorpay {
		gatewayCfg = &payment.RazorpayConfig{
			KeyID:           cfg.RazorpayKeyID,
			CheckoutTimeout: cfg.CheckoutTimeout,
		}
	}
	gateway, err := factory.CreateGateway(ctx, provider, gatewayCfg)
	if err != nil {
		return err
	}
	defer gateway.Close(context.Background())

	// Domain stores
	auctions := services.NewAuctionService(apiClient)
	flowOpts := bidflow.Options{Name: "Pulasa Auction"}
	bids := services.NewBidService(apiClient, auctions, gateway, flowOpts)
	wallet := services.NewWalletService(apiClient, gateway, flowOpts)
	notifications := services.NewNotificationService(apiClient)

	// Realtime lifecycle: one channel per authenticated session, torn down
	// on logout and recreated on login.
	rt := newRealtimeManager(cfg, auctions, wallet, notifications)
	defer rt.stop(context.Background())

	go func() {
		rt.sync(ctx, session.Current(), session.Token())
		for range session.Watch() {
			rt.sync(ctx, session.Current(), session.Token())
		}
	}()

	if cfg.EnableMetrics {
		monitoring.NewMonitor()
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv := &http.Server{Addr: ":" + cfg.MetricsPort, Handler: mux}
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.WithError(err).Error("metrics server stopped")
			}
		}()
	}

	runner := jobs.NewRunner(session, notifications, wallet, cfg.NotificationPoll, cfg.WalletPoll)
	runner.Start()
	defer runner.Stop()

	// Local HTTP surface
	e := echo.New()
	h := handlers.New(session, auctions, rt.Tracker, bids, wallet, notifications, gateway)
	h.Register(e)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: e,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", srv.Addr).Info("local surface listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.WithField("signal", sig.String()).Info("shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	return srv.Shutdown(shutdownCtx)
}

// realtimeManager ties the channel, tracker and event router to the session
// lifecycle.
type realtimeManager struct {
	cfg           *config.Config
	auctions      *services.AuctionService
	wallet        *services.WalletService
	notifications *services.NotificationService
	log           *log.Entry

	mu      sync.Mutex
	channel realtime.Channel
	track   *services.Tracker
	cancel  context.CancelFunc
	userID  string
}

func newRealtimeManager(cfg *config.Config, auctions *services.AuctionService, wallet *services.WalletService, notifications *services.NotificationService) *realtimeManager {
	m := &realtimeManager{
		cfg:           cfg,
		auctions:      auctions,
		wallet:        wallet,
		notifications: notifications,
		log:           utils.Component("realtime"),
	}
	// A tracker exists even while logged out, backed by a disconnected
	// channel; room joins simply do nothing until login.
	m.track = services.NewTracker(auctions, noopChannel{})
	return m
}

// Tracker returns the current tracker instance.
func (m *realtimeManager) Tracker() *services.Tracker {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.track
}

// sync reconciles the channel with the session: connect on login, tear down
// on logout, nothing when the user is unchanged.
func (m *realtimeManager) sync(ctx context.Context, user *models.User, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user == nil {
		m.stopLocked(ctx)
		return
	}
	if m.channel != nil && m.userID == user.ID {
		return
	}
	m.stopLocked(ctx)

	creds := realtime.Credentials{UserID: user.ID, Token: token}
	var channel realtime.Channel
	switch m.cfg.RealtimeProvider {
	case "pubnub":
		channel = realtime.NewPubNubChannel(realtime.PubNubConfig{
			SubscribeKey: m.cfg.PubNubSubscribeKey,
			PublishKey:   m.cfg.PubNubPublishKey,
		}, creds)
	default:
		channel = realtime.NewWebsocketChannel(realtime.WebsocketConfig{
			URL: m.cfg.WebsocketURL,
		}, creds)
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := channel.Connect(runCtx); err != nil {
		m.log.WithError(err).Error("realtime connect failed")
		cancel()
		return
	}

	m.channel = channel
	m.cancel = cancel
	m.userID = user.ID

	m.track.Close()
	m.track = services.NewTracker(m.auctions, channel)

	router := services.NewEventRouter(m.auctions, m.track, m.wallet, m.notifications)
	go router.Run(runCtx, channel.Events())

	m.log.WithField("user_id", user.ID).Info("realtime channel connected")
}

func (m *realtimeManager) stop(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked(ctx)
}

func (m *realtimeManager) stopLocked(ctx context.Context) {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.channel != nil {
		if err := m.channel.Close(ctx); err != nil {
			m.log.WithError(err).Warn("channel close failed")
		}
		m.channel = nil
	}
	m.userID = ""
	m.track.Close()
	m.track = services.NewTracker(m.auctions, noopChannel{})
}

// noopChannel backs the tracker while no session is active.
type noopChannel struct{}

func (noopChannel) Connect(context.Context) error              { return nil }
func (noopChannel) Events() <-chan realtime.Event              { return nil }
func (noopChannel) JoinAuction(context.Context, string) error  { return nil }
func (noopChannel) LeaveAuction(context.Context, string) error { return nil }
func (noopChannel) Close(context.Context) error                { return nil }
