// Command ingest indexes every manual in MANUALS_FOLDER (or the folder given
// as first argument) and exits.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/SantanaPablo/Manuales-IA/internal/bootstrap"
	"github.com/SantanaPablo/Manuales-IA/internal/config"
	"github.com/SantanaPablo/Manuales-IA/internal/pkg/logger"
	"github.com/SantanaPablo/Manuales-IA/internal/tracer"
	"github.com/SantanaPablo/Manuales-IA/pkg/rag/ingest"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

func main() {
	shutdownTracer := tracer.InitTracer("procesar-manual")
	defer shutdownTracer(context.Background())

	cfg := config.Load()
	folder := cfg.Pipeline.ManualsFolder
	if len(os.Args) > 1 {
		folder = os.Args[1]
	}

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer sysLogger.Sync()

	p, _, closers, err := bootstrap.NewPipeline(cfg, sysLogger, "ingest-"+uuid.NewString())
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize pipeline: %v", err)
	}
	defer p.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := p.WarmUp(ctx); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	start := time.Now()
	results, err := p.Ingestor.IngestFolder(ctx, folder)
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}

	failures := 0
	for _, r := range results {
		switch r.Status {
		case ingest.StatusIndexed:
			color.Green("%-40s indexed (%d segments, %s)", r.DocumentID, r.Segments, r.Duration.Round(time.Millisecond))
		case ingest.StatusSkipped:
			color.Cyan("%-40s already indexed", r.DocumentID)
		case ingest.StatusEmpty:
			color.Yellow("%-40s no text", r.DocumentID)
		case ingest.StatusFailed:
			color.Red("%-40s failed: %s", r.DocumentID, r.Error)
		}
		if ingest.IsFailure(r) {
			failures++
		}
	}

	fmt.Printf("Tiempo total de procesamiento: %.2f segundos\n", time.Since(start).Seconds())
	if failures > 0 {
		os.Exit(1)
	}
}
