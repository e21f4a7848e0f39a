package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"watchmarket/api"
	"watchmarket/collect"
	"watchmarket/comparison"
	"watchmarket/config"
	"watchmarket/httputil"
	"watchmarket/logging"
	"watchmarket/match"
	"watchmarket/scheduler"
	"watchmarket/store"
)

var (
	collectNow = flag.Bool("collect", false, "Run collection once and exit")
	serve      = flag.Bool("serve", false, "Serve the HTTP API without the collection scheduler")
)

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	logFile, err := logging.Setup("watchmarket.log")
	if err != nil {
		log.Printf("Warning: could not set up file logging: %v", err)
	} else {
		defer logFile.Close()
	}

	log.Println("Starting watchmarket...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Loaded %d source configs", len(cfg.Sources))
	for id, src := range cfg.Sources {
		log.Printf("  - %s (%s)", src.Name, id)
	}

	clients := httputil.NewClients(&cfg.Proxy)

	ctx := context.Background()

	pgStore, err := store.NewPostgresStore(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pgStore.Close()
	log.Printf("Connected to Postgres: %s", maskConnectionString(cfg.Database.URL))

	runStore, err := store.NewRunStore(cfg.RunDBPath)
	if err != nil {
		log.Fatalf("Failed to open run store: %v", err)
	}
	defer runStore.Close()
	log.Printf("Run database: %s", cfg.RunDBPath)

	collectors, err := buildCollectors(cfg, clients)
	if err != nil {
		log.Fatalf("Failed to build collectors: %v", err)
	}
	orchestrator := collect.NewOrchestrator(collectors, pgStore, runStore, 0)

	if *collectNow {
		log.Println("Running collection...")
		stats := orchestrator.RunAll(ctx)
		for _, s := range stats {
			log.Printf("  %s: %s (%d found, %d created, %d malformed)", s.Source, s.Status, s.Found, s.Created, s.Malformed)
		}
		log.Println("Collection complete!")
		return
	}

	engine := match.NewEngine(pgStore)
	compareSvc := comparison.NewService(engine, pgStore, pgStore, cfg.Compare.TrendDeadband)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if !*serve {
		sched := scheduler.New(cfg, orchestrator)
		if err := sched.Start(ctx); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
		defer sched.Stop()
	}

	router := api.NewRouter(compareSvc, runStore, cfg)
	go func() {
		log.Printf("HTTP API listening on %s", cfg.Server.Addr)
		if err := router.Run(cfg.Server.Addr); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	log.Println("Daemon running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
}

func buildCollectors(cfg *config.Config, clients *httputil.Clients) ([]collect.Collector, error) {
	ids := make([]string, 0, len(cfg.Sources))
	for id := range cfg.Sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var collectors []collect.Collector
	for _, id := range ids {
		c, err := collect.New(cfg.Sources[id], cfg, clients)
		if err != nil {
			return nil, err
		}
		collectors = append(collectors, c)
	}
	return collectors, nil
}

// maskConnectionString masks password in connection string for logging
func maskConnectionString(connStr string) string {
	start := 0
	for i := 0; i < len(connStr)-3; i++ {
		if connStr[i:i+3] == "://" {
			start = i + 3
			break
		}
	}
	if start == 0 {
		return connStr
	}

	colonIdx := -1
	atIdx := -1
	for i := start; i < len(connStr); i++ {
		if connStr[i] == ':' && colonIdx == -1 {
			colonIdx = i
		}
		if connStr[i] == '@' {
			atIdx = i
			break
		}
	}

	if colonIdx > 0 && atIdx > colonIdx {
		return connStr[:colonIdx+1] + "****" + connStr[atIdx:]
	}
	return connStr
}
