package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SantanaPablo/Manuales-IA/internal/bootstrap"
	"github.com/SantanaPablo/Manuales-IA/internal/config"
	"github.com/SantanaPablo/Manuales-IA/internal/server"
	"github.com/SantanaPablo/Manuales-IA/internal/tracer"
)

const warmUpTimeout = 2 * time.Minute

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer("buscar-manual")
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(cfg)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize pipeline: %v", err)
	}
	defer container.Close()

	// 3. Load the embedding model before accepting requests
	ctx, cancel := context.WithTimeout(context.Background(), warmUpTimeout)
	if err := container.Pipeline.WarmUp(ctx); err != nil {
		cancel()
		log.Fatalf("[FATAL] %v", err)
	}
	cancel()

	// 4. Start Background Services
	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	if err := container.ConsumerService.Consume(bgCtx); err != nil {
		log.Printf("Background Consumer Error: %v", err)
	}
	if container.IndexSyncService != nil {
		if err := container.IndexSyncService.Start(bgCtx); err != nil {
			log.Printf("Index sync disabled: %v", err)
		}
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down...")
		_ = srv.Shutdown()
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
