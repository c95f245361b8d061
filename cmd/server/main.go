package main

import (
	"context"
	"database/sql"
	"fmt"
	stdhttp "net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gaming-hub/auth"
	"gaming-hub/domain/event"
	"gaming-hub/infrastructure/http"
	"gaming-hub/infrastructure/ws"
	"gaming-hub/internal"
	"gaming-hub/moderation"
	"gaming-hub/notify"
	"gaming-hub/observability"
	"gaming-hub/realtime"
	"gaming-hub/repositories/postgres"
	"gaming-hub/runtime/workers"
	"gaming-hub/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so every defer executes before the process
// exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := internal.NewLogger(config.LogLevel)

	// 2. Database (PostgreSQL)
	db, err := sql.Open("postgres", config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing PostgreSQL pool...")
		_ = db.Close()
	}()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelPing()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	if err := postgres.Migrate(db, log); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}

	// 3. Stores
	sessionStore := postgres.NewSessionStore(db)
	notificationStore := postgres.NewNotificationStore(db)
	messageStore := postgres.NewMessageStore(db)
	userStore := postgres.NewUserStore(db)

	// 4. Real-time core. The offline hook broadcasts the last-disconnect
	// transition to everyone on the presence topic.
	monitor := observability.NewMonitor()
	router := realtime.NewRouter(log)
	presence := realtime.NewPresence(log, func(userID string) {
		frame, err := event.Encode(event.PresenceChanged, event.PresencePayload{
			UserID: userID,
			Online: false,
		})
		if err != nil {
			log.Error("failed to encode offline event", "user_id", userID, "err", err)
			return
		}
		router.Publish(realtime.PresenceTopic, frame)
	})
	dispatcher := notify.NewDispatcher(log, notificationStore, presence, router, monitor)

	// 5. Moderation
	replacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return err
	}
	words := moderation.DefaultWords()
	if config.CensoredWordsCSV != "" {
		words = strings.Split(config.CensoredWordsCSV, ",")
	}
	moderator, err := moderation.NewModerator(words, replacement, log)
	if err != nil {
		return fmt.Errorf("moderation setup failed: %w", err)
	}

	// 6. Services
	tokens := auth.NewTokenManager(config.AuthSecret, config.AuthTokenDuration)
	authService := services.NewAuthService(log, userStore, tokens)
	sessionService := services.NewSessionService(log, sessionStore, dispatcher)
	messageService := services.NewMessageService(log, messageStore, sessionStore,
		dispatcher, presence, router, moderator, monitor, config.MaxContentLength)
	friendService := services.NewFriendService(log, userStore, dispatcher)
	notificationService := services.NewNotificationService(log, notificationStore)

	// 7. Transport
	gateway := ws.NewGateway(log, presence, router, tokens, messageService,
		config.ConnectionBufferSize, monitor)
	server := http.NewServer(log, db, authService, sessionService, messageService,
		friendService, notificationService, tokens, gateway, monitor)

	// 8. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 9. Background workers
	sup := workers.NewSupervisor(log)
	sup.Add(workers.NewHeartbeatWorker(log, monitor, config.MetricInterval))
	go sup.Run(ctx)

	// 10. HTTP server
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	srv := &stdhttp.Server{Addr: address, Handler: server.Handler()}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := srv.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 11. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 12. Final Cleanup
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP shutdown incomplete", "err", err)
	}
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}
