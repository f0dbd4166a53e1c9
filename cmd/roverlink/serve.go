package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rover-control/roverlink/internal/api"
	"github.com/rover-control/roverlink/internal/audit"
	"github.com/rover-control/roverlink/internal/auth"
	"github.com/rover-control/roverlink/internal/command"
	"github.com/rover-control/roverlink/internal/config"
	"github.com/rover-control/roverlink/internal/intent"
	"github.com/rover-control/roverlink/internal/mode"
	"github.com/rover-control/roverlink/internal/script"
	"github.com/rover-control/roverlink/internal/telemetry"
	"github.com/rover-control/roverlink/internal/transport/fake"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Rover Command Container",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	log.Printf("Starting Rover Command Container v%s", api.Version)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log.Println("Configuration loaded successfully")

	policy := mode.DefaultPolicy()
	if err := policy.Validate(); err != nil {
		return fmt.Errorf("mode policy invalid: %w", err)
	}

	contract := script.DefaultContract().
		WithCapabilities(cfg.Script.ExtraCapabilities).
		WithDenylist(cfg.Script.Denylist)

	hub := telemetry.NewHub(cfg.Telemetry.BufferSize, cfg.Telemetry.HeartbeatInterval)
	log.Println("Telemetry hub initialized")

	auditLogger, err := audit.NewLogger(cfg.LogDir)
	if err != nil {
		return fmt.Errorf("failed to initialize audit logger: %w", err)
	}
	log.Println("Audit logger initialized")

	resolver := command.NewResolver(policy, contract)
	resolver.SetAuditLogger(auditLogger)
	resolver.SetEventPublisher(hub)

	server := api.NewServer(resolver, policy, hub, cfg.ReadTimeout, cfg.WriteTimeout, cfg.IdleTimeout)
	server.SetContract(contract)

	// The loopback deliverer stands in until a real link driver is wired;
	// delivery is an external collaborator's responsibility either way.
	server.SetDeliverer(fake.NewLoopback())

	if cfg.Intent.URL != "" {
		server.SetOracle(intent.NewHTTPOracle(cfg.Intent.URL, cfg.Intent.Timeout))
		log.Printf("Intent oracle configured at %s", cfg.Intent.URL)
	}

	if cfg.Auth.Enabled {
		verifier, err := buildVerifier(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize auth: %w", err)
		}
		server.SetAuthMiddleware(auth.NewMiddleware(verifier))
		log.Printf("Auth enabled (%s)", cfg.Auth.Algorithm)
	}

	log.Printf("Starting HTTP server on %s", cfg.Addr)
	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(cfg.Addr); err != nil {
			serverErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	log.Printf("Health endpoint: http://localhost%s/api/v1/health", cfg.Addr)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		log.Printf("Received signal %v, initiating graceful shutdown...", sig)
	case err := <-serverErr:
		log.Printf("Server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hub.Stop()
	log.Println("Telemetry hub stopped")

	if err := auditLogger.Close(); err != nil {
		log.Printf("Error closing audit logger: %v", err)
	}
	log.Println("Audit logger closed")

	if err := server.Stop(ctx); err != nil {
		log.Printf("Error stopping HTTP server: %v", err)
	} else {
		log.Println("HTTP server stopped gracefully")
	}

	log.Println("Rover Command Container shutdown complete")
	return nil
}

// buildVerifier constructs the JWT verifier from configuration.
func buildVerifier(cfg *config.Config) (*auth.Verifier, error) {
	verifierConfig := auth.VerifierConfig{
		Algorithm: cfg.Auth.Algorithm,
		SecretKey: cfg.Auth.SecretKey,
	}
	if cfg.Auth.PublicKeyPEMFile != "" {
		pemData, err := os.ReadFile(cfg.Auth.PublicKeyPEMFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read public key file: %w", err)
		}
		verifierConfig.PublicKeyPEM = string(pemData)
	}
	return auth.NewVerifier(verifierConfig)
}
