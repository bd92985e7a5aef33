package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/strobe-lab/loomstim/internal/api"
	"github.com/strobe-lab/loomstim/internal/config"
	"github.com/strobe-lab/loomstim/internal/db"
	"github.com/strobe-lab/loomstim/internal/trigger"
	"github.com/strobe-lab/loomstim/internal/version"
)

var (
	devMode     = flag.Bool("dev", false, "Run in dev mode with a mock trigger box")
	listen      = flag.String("listen", ":8080", "Listen address")
	configPath  = flag.String("config", "", "Path to experiment config JSON (optional)")
	dbPath      = flag.String("db", "", "Path to sqlite database (overrides config)")
	triggerPort = flag.String("trigger", "", "Trigger box serial port (overrides config)")
	migrations  = flag.String("migrations", "", "Path to migrations directory (overrides config)")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

// handleTriggerLine parses one line from the trigger box and records it as a
// response event. Command echoes and status lines are logged and skipped.
func handleTriggerLine(database *db.DB, line string) {
	event, err := trigger.ParseEvent(line)
	if err != nil {
		log.Printf("skipping trigger line: %v", err)
		return
	}
	if err := database.RecordTriggerEvent(event.Clock, event.Frame); err != nil {
		log.Printf("failed to record trigger event: %v", err)
		return
	}
	log.Printf("Recorded trigger event: clock=%.3f, frame=%d", event.Clock, event.Frame)
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("loomstim %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	cfg := config.EmptyConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
	}

	databaseFile := cfg.GetDBPath()
	if *dbPath != "" {
		databaseFile = *dbPath
	}
	migrationsDir := cfg.GetMigrationsDir()
	if *migrations != "" {
		migrationsDir = *migrations
	}
	portPath := cfg.GetTriggerPort()
	if *triggerPort != "" {
		portPath = *triggerPort
	}

	database, err := db.NewDB(databaseFile)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := database.MigrateUp(migrationsDir); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	var m trigger.TriggerMuxInterface
	if *devMode {
		data, err := os.ReadFile("fixtures.txt")
		if err != nil {
			log.Fatalf("failed to open fixtures file: %v", err)
		}
		m = trigger.NewMockTriggerMux(data)
	} else {
		m, err = trigger.NewRealTriggerMux(portPath, trigger.PortOptions{})
		if err != nil {
			log.Fatalf("failed to open trigger port %s: %v", portPath, err)
		}
		if err := m.Initialize(); err != nil {
			log.Fatalf("failed to initialize trigger box: %v", err)
		}
	}
	defer m.Close()

	// Create a wait group for the HTTP server, trigger monitor, and event
	// handler routines
	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// run the monitor routine to manage IO on the trigger port
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := m.Monitor(ctx); err != nil && err != context.Canceled {
			log.Printf("failed to monitor trigger port: %v", err)
		}
		log.Print("monitor routine terminated")
	}()

	// subscribe to trigger box lines and record response events
	wg.Add(1)
	go func() {
		defer wg.Done()
		id, c := m.Subscribe()
		defer m.Unsubscribe(id)
		for {
			select {
			case line := <-c:
				handleTriggerLine(database, line)
			case <-ctx.Done():
				log.Printf("subscribe routine terminated")
				return
			}
		}
	}()

	// HTTP server goroutine
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := api.NewServer(database, m, cfg).ServeMux()

		server := &http.Server{
			Addr:    *listen,
			Handler: api.LoggingMiddleware(mux),
		}

		// Start server in a goroutine so it doesn't block
		go func() {
			log.Printf("listening on %s", *listen)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		// Wait for context cancellation to shut down server
		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}

		log.Printf("HTTP server routine stopped")
	}()

	// Wait for all goroutines to finish
	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
