package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/redis/go-redis/v9"

	"PartnerWebserver/internal/auth"
	"PartnerWebserver/internal/config"
	"PartnerWebserver/internal/httpapi"
	"PartnerWebserver/internal/notifications"
	"PartnerWebserver/internal/realtime"
	"PartnerWebserver/internal/service"
	"PartnerWebserver/internal/store/postgres"
)

// userDirectory joins the users table with the search query so services
// that want both lookup and search can take a single dependency.
type userDirectory struct {
	*postgres.UsersStore
	*postgres.UserSearchStore
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	logger := newLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var typing realtime.TypingStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("redis ping failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		typing = realtime.NewRedisTypingStore(rdb)
		logger.Info("typing store: redis", "addr", cfg.RedisAddr)
	} else {
		mem := realtime.NewMemoryTypingStore()
		go mem.RunSweeper(ctx, time.Minute)
		typing = mem
	}

	registry := realtime.NewRegistry()
	rooms := realtime.NewRoomHub()
	relay := &realtime.Relay{Registry: registry, Rooms: rooms, Logger: logger}

	var (
		authSvc         *service.AuthService
		tripSvc         *service.TripService
		inviteSvc       *service.InviteService
		messageSvc      *service.MessageService
		feedSvc         *service.FeedService
		followSvc       *service.FollowService
		usersSvc        *service.UsersService
		profileSvc      *service.ProfileService
		notificationSvc *service.NotificationService
		lastSeen        httpapi.LastSeenStore
		dbPing          func(context.Context) error
	)

	if cfg.DBDSN != "" {
		pgPool, err := postgres.Open(ctx, cfg.DBDSN)
		if err != nil {
			logger.Error("db open failed", "err", err)
			os.Exit(1)
		}
		defer pgPool.Close()

		users := postgres.NewUsersStore(pgPool)
		sessions := postgres.NewSessionsStore(pgPool)
		trips := postgres.NewTripsStore(pgPool)
		tripPhotos := postgres.NewTripPhotosStore(pgPool)
		invitations := postgres.NewInvitationsStore(pgPool)
		messages := postgres.NewMessagesStore(pgPool)
		posts := postgres.NewPostsStore(pgPool)
		follows := postgres.NewFollowsStore(pgPool)
		reviews := postgres.NewReviewsStore(pgPool)
		reports := postgres.NewReportsStore(pgPool)
		notificationRows := postgres.NewNotificationsStore(pgPool)
		notificationTokens := postgres.NewNotificationTokensStore(pgPool)
		userSearch := postgres.NewUserSearchStore(pgPool)
		directory := userDirectory{users, userSearch}

		var pushSender service.PushSender
		if cfg.FCMProjectID != "" && cfg.FCMCredentialsPath != "" {
			fcm, err := notifications.NewFCMSender(ctx, cfg.FCMProjectID, cfg.FCMCredentialsPath)
			if err != nil {
				logger.Error("fcm init failed", "err", err)
				os.Exit(1)
			}
			pushSender = fcm
			logger.Info("push notifications enabled", "project", cfg.FCMProjectID)
		}

		notificationSvc = &service.NotificationService{
			Store:  notificationRows,
			Tokens: notificationTokens,
			Sender: pushSender,
			Logger: logger,
		}
		authSvc = &service.AuthService{
			Users:      users,
			Sessions:   sessions,
			SessionTTL: cfg.SessionTTL,
		}
		tripSvc = &service.TripService{
			Trips:    trips,
			Photos:   tripPhotos,
			Notifier: notificationSvc,
			Logger:   logger,
		}
		inviteSvc = &service.InviteService{
			Invitations: invitations,
			Trips:       trips,
			Users:       directory,
			Notifier:    notificationSvc,
			Logger:      logger,
		}
		messageSvc = &service.MessageService{
			Messages: messages,
			Users:    directory,
			Typing:   typing,
		}
		feedSvc = &service.FeedService{
			Posts:    posts,
			Notifier: notificationSvc,
			Logger:   logger,
		}
		followSvc = &service.FollowService{
			Follows:  follows,
			Users:    users,
			Notifier: notificationSvc,
			Logger:   logger,
		}
		usersSvc = &service.UsersService{
			Users:       directory,
			Posts:       posts,
			Reviews:     reviews,
			Reports:     reports,
			Follows:     follows,
			Trips:       trips,
			TripCounts:  trips,
			PhotoCounts: tripPhotos,
		}
		profileSvc = &service.ProfileService{Store: users}
		lastSeen = users
		dbPing = pgPool.Ping
	}

	codec := auth.NewCookieCodec([]byte(cfg.CookieSecret))

	var wsHandler http.Handler
	if authSvc != nil {
		wsHandler = &realtime.Handler{
			Registry: registry,
			Rooms:    rooms,
			Relay:    relay,
			Logger:   logger,
			Identify: httpapi.SessionIdentifier(codec, authSvc),
		}
	}

	for _, dir := range []string{cfg.AvatarDir(), cfg.TripPhotoDir(), cfg.PostDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("create uploads dir failed", "dir", dir, "err", err)
			os.Exit(1)
		}
	}

	router := httpapi.NewRouter(httpapi.RouterOpts{
		Logger:        logger,
		IsProd:        cfg.IsProd(),
		DBPing:        dbPing,
		Auth:          authSvc,
		Trips:         tripSvc,
		Invites:       inviteSvc,
		Messages:      messageSvc,
		Feed:          feedSvc,
		Follows:       followSvc,
		Users:         usersSvc,
		Profile:       profileSvc,
		Notifications: notificationSvc,
		LastSeen:      lastSeen,
		Realtime:      wsHandler,
		CookieCodec:   codec,
		CookieSecure:  cfg.CookieSecure(),
		SessionTTL:    cfg.SessionTTL,
		AvatarDir:     cfg.AvatarDir(),
		TripPhotoDir:  cfg.TripPhotoDir(),
		PostDir:       cfg.PostDir(),
		UploadsDir:    cfg.UploadsDir,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "env", cfg.Env, "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		registry.Clear()
		_ = srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProd() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
