package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"group-chat/auth"
	"group-chat/infrastructure/ws"
	"group-chat/internal"
	"group-chat/repositories"
	"group-chat/runtime"
	"group-chat/services"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting so every defer (database close, sequence
// release) executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories
	userRepository, err := repositories.NewUserRepository(db)
	if err != nil {
		return fmt.Errorf("user repository: %w", err)
	}
	defer func() { _ = userRepository.Close() }()

	groupRepository, err := repositories.NewGroupRepository(db)
	if err != nil {
		return fmt.Errorf("group repository: %w", err)
	}
	defer func() { _ = groupRepository.Close() }()

	messageRepository, err := repositories.NewMessageRepository(db, log)
	if err != nil {
		return fmt.Errorf("message repository: %w", err)
	}
	defer func() { _ = messageRepository.Close() }()

	// 4. Session layer
	registry := runtime.NewRegistry()
	verifier := auth.NewVerifier(userRepository)
	chatService := services.NewChatService(log, userRepository, groupRepository, messageRepository)
	sessionServer := ws.NewServer(log, verifier, chatService, registry,
		config.ConnectionBufferSize, config.DeliveryTimeout)

	mux := http.NewServeMux()
	mux.Handle("/ws/chat", sessionServer)

	// 5. Optional read-only inspect page
	if config.DebugPort > 0 {
		internal.StartDebugServer(db, config.DebugPort, "/inspect", ChatMapper, func() map[string]any {
			return map[string]any{
				"UsersOnline": registry.Online(),
				"Time":        time.Now().Format(time.RFC822),
			}
		})
	}

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server := &http.Server{Addr: address, Handler: mux}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting session server", "address", address, "at", time.Now().UTC())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// 7. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 8. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	log.Info("Program stopped cleanly")

	return nil
}

// ChatMapper renders store records for the inspect page. Records are
// decoded generically so one mapper covers users, groups, memberships and
// messages.
func ChatMapper(key string, val []byte) internal.InspectRow {
	row := internal.DefaultMapper(key, val)

	var record map[string]any
	if err := cbor.Unmarshal(val, &record); err != nil {
		return row
	}

	for _, field := range []string{"username", "name", "text"} {
		if v, ok := record[field].(string); ok {
			row.Detail = v
			break
		}
	}

	for _, field := range []string{"registered_at", "created_at", "joined_at"} {
		if ts, ok := asInt64(record[field]); ok {
			row.Timestamp = time.Unix(0, ts).Format("15:04:05")
			break
		}
	}
	return row
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	}
	return 0, false
}
