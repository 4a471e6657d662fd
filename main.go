package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/colorbar-salon/voice-agent/config"
	"github.com/colorbar-salon/voice-agent/llm"
	"github.com/colorbar-salon/voice-agent/retell"
	"github.com/colorbar-salon/voice-agent/server"
	"github.com/colorbar-salon/voice-agent/session"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Collaborators are constructed once and passed in; nothing ambient.
	agent := llm.NewClient(cfg)
	callBridge := retell.NewClient(cfg.RetellAPIKey, cfg.RetellAPIBase)

	// Create session manager
	sessionManager, err := session.NewManager(cfg, agent)
	if err != nil {
		log.Fatalf("Failed to create session manager: %v", err)
	}

	// Start cleanup routine
	ctx, cancel := context.WithCancel(context.Background())
	go sessionManager.StartCleanupRoutine(ctx)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	switch cfg.ServerType {
	case "relay":
		srv := server.NewRelayServer(cfg, sessionManager, callBridge)

		go func() {
			<-sigChan
			log.Println("\nReceived shutdown signal...")
			cancel()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("Server shutdown error: %v", err)
			}
		}()

		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Fatalf("Server error: %v", err)
		}

	case "retell":
		retellSrv := server.NewRetellServer(cfg, sessionManager)

		go func() {
			<-sigChan
			log.Println("\nReceived shutdown signal...")
			cancel()
			sessionManager.Shutdown()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := retellSrv.Shutdown(shutdownCtx); err != nil {
				log.Printf("Retell server shutdown error: %v", err)
			}
		}()

		if err := retellSrv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Fatalf("Retell server error: %v", err)
		}

	case "both":
		srv := server.NewRelayServer(cfg, sessionManager, callBridge)
		retellSrv := server.NewRetellServer(cfg, sessionManager)

		go func() {
			<-sigChan
			log.Println("\nReceived shutdown signal...")
			cancel()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("Relay server shutdown error: %v", err)
			}
			if err := retellSrv.Shutdown(shutdownCtx); err != nil {
				log.Printf("Retell server shutdown error: %v", err)
			}
		}()

		// Start Retell server in background
		go func() {
			if err := retellSrv.Start(); err != nil && err.Error() != "http: Server closed" {
				log.Fatalf("Retell server error: %v", err)
			}
		}()

		// Start relay server (blocks)
		if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
			log.Fatalf("Relay server error: %v", err)
		}

	default:
		log.Fatalf("Unknown SERVER_TYPE: %s", cfg.ServerType)
	}

	log.Println("Server stopped")
}
