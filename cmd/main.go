package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"pairchat/auth"
	"pairchat/domain"
	"pairchat/internal"
	"pairchat/projection"
	"pairchat/services"
	"pairchat/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run hosts one chat session: it validates the provider token, ensures
// the profile exists, then keeps the live views attached until the
// process is told to stop. Errors flow back here so deferred cleanup
// (database close, subscription teardown) always executes.
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

	client := store.NewBadger(db, log)

	// 3. Identity: the provider token carries who we are.
	account, err := auth.ValidateIdentityToken(config.IdentityToken)
	if err != nil {
		return fmt.Errorf("identity token rejected: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	identity := services.NewIdentityService(client, log)
	profile, err := identity.EnsureProfile(ctx, account)
	if err != nil {
		return fmt.Errorf("profile provisioning failed: %w", err)
	}
	log.Info("Session started", "accountId", profile.AccountID, "numericId", profile.NumericID)

	// 4. Live views: conversation list plus one message window that
	// follows the most recently active room.
	conversations, err := projection.WatchConversations(ctx, client, log, profile.AccountID)
	if err != nil {
		return fmt.Errorf("conversation subscription failed: %w", err)
	}
	defer conversations.Close()

	window := projection.NewMessageWindow(ctx, client, log, config.WindowSize)
	defer window.Close()

	var observedRoom domain.RoomID
	for {
		select {
		case <-ctx.Done():
			log.Info("Shutting down gracefully...")
			return nil
		case list := <-conversations.Updates:
			log.Info("Conversation list updated", "count", len(list))
			if len(list) == 0 || list[0].RoomID == observedRoom {
				continue
			}
			observedRoom = list[0].RoomID
			if err = window.Retarget(observedRoom); err != nil {
				return fmt.Errorf("window retarget failed: %w", err)
			}
		case messages := <-window.Updates:
			log.Info("Message window updated", "roomId", observedRoom, "count", len(messages))
		}
	}
}
