package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/kiwify-relay/internal/api"
	"github.com/ignite/kiwify-relay/internal/catalog"
	"github.com/ignite/kiwify-relay/internal/config"
	"github.com/ignite/kiwify-relay/internal/mailerlite"
	"github.com/ignite/kiwify-relay/internal/pkg/logger"
	"github.com/ignite/kiwify-relay/internal/relay"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale/stub processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func main() {
	log.Println("╔════════════════════════════════════════════════════════════╗")
	log.Println("║  Kiwify → MailerLite relay (cmd/server/main.go)           ║")
	log.Println("║  Mirrors purchase events into subscriber groups and tags  ║")
	log.Println("╚════════════════════════════════════════════════════════════╝")

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.SetLevel(logger.ParseLevel(os.Getenv("LOG_LEVEL")))

	// Pre-flight check: verify the target port is available
	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	products, err := catalog.New(cfg.Products)
	if err != nil {
		log.Fatalf("Invalid product catalog: %v", err)
	}
	log.Printf("Product catalog loaded: %d products, fallback %q", products.Len(), products.Fallback().DisplayName)

	// The relay pipeline only comes up with an API key; without one the
	// webhook answers 500 while health/metrics stay available for probes.
	var (
		classifier *relay.Classifier
		reconciler *relay.Reconciler
	)
	if cfg.MailerLite.APIKey != "" {
		client := mailerlite.NewClient(cfg.MailerLite)
		classifier = relay.NewClassifier(products, cfg.Kiwify.WebhookToken, cfg.Relay)
		reconciler = relay.NewReconciler(client, cfg.Relay)
	} else {
		log.Println("WARNING: MAILERLITE_API_KEY not set - webhook will answer 500 until configured")
	}
	if cfg.Kiwify.WebhookToken == "" {
		log.Println("WARNING: no webhook token configured - inbound events are not authenticated")
	}
	if cfg.Relay.DryRun {
		log.Println("[relay] dry run active - no directory calls will be issued")
	}
	if !cfg.Relay.TagsEnabled() {
		log.Println("[relay] tag management disabled - only group membership will be mirrored")
	}
	if cfg.Relay.ProcessUnknownProducts {
		log.Println("[relay] unknown products will be processed with the fallback mapping")
	}

	server := api.NewServer(cfg.Server, classifier, reconciler, products)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Println("Relay is ready")

	<-done
	log.Println("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
