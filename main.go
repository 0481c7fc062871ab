package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/pkarpov/matchnight/cliparse"
	"github.com/pkarpov/matchnight/consensus"
	"github.com/pkarpov/matchnight/db"
	"github.com/pkarpov/matchnight/dispatch"
	"github.com/pkarpov/matchnight/events"
	"github.com/pkarpov/matchnight/models"
	"github.com/pkarpov/matchnight/partition"
	"github.com/pkarpov/matchnight/router"
	"github.com/pkarpov/matchnight/session"
	"github.com/pkarpov/matchnight/sheet"
	"github.com/pkarpov/matchnight/store"
	"github.com/pkarpov/matchnight/transport"
)

// driverName maps the configured database type to its driver.
var driverName = map[string]string{
	"sqlite":   "sqlite",
	"postgres": "postgres",
}

func main() {
	var err error

	// Optional .env for local development; env variables win over it.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env", "error", err)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	dbConn, err := sql.Open(driverName[cfg.DatabaseType], cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	// Seed precomputed partition candidates when a fixture is given
	if cfg.CandidateFile != "" {
		f, err := store.LoadCandidateFile(cfg.CandidateFile)
		if err != nil {
			slog.Error("candidate file load failed", "path", cfg.CandidateFile, "error", err)
			os.Exit(1)
		}
		if err := store.SeedCandidates(context.Background(), dbConn, f); err != nil {
			slog.Error("candidate seeding failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Partition candidates seeded", "populations", len(f))
	}

	// Wire the domain
	roster := store.NewRoster(dbConn)
	engine := consensus.New(roster, partition.New(store.NewCandidateTable(dbConn)))
	dispatcher := dispatch.New(transport.NewBridge(cfg.TransportURL), cfg.OwnerChatID)
	tracker := session.NewTracker()

	var sheetStore sheet.Store
	if cfg.SheetURL != "" {
		sheetStore = sheet.NewBridge(cfg.SheetURL)
	} else {
		slog.Info("No sheet configured, readiness answers will not be recorded")
	}

	// Restore the message ledger so edits survive a restart
	restoreTracker(tracker, roster)

	loop := events.NewLoop(engine, dispatcher, tracker, roster, sheetStore)
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()
	go loop.Run(loopCtx)

	// Create router
	mux := router.NewRouter(router.Deps{
		Engine:     engine,
		Dispatcher: dispatcher,
		Tracker:    tracker,
		Roster:     roster,
		Sheet:      sheetStore,
		Queue:      loop,
		Config:     cfg,
	})

	// Create server
	server := http.Server{
		Handler: mux,
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

// restoreTracker reloads the persisted per-chat messages into the
// in-memory ledger. Best effort; a failed reload only costs edits of
// messages delivered before the restart.
func restoreTracker(tracker *session.Tracker, roster *store.Roster) {
	ctx := context.Background()
	for _, kind := range []struct {
		kind models.MessageKind
		name string
	}{
		{kind: models.KindReadyCount, name: "readiness"},
		{kind: models.KindTeamPoll, name: "team poll"},
	} {
		records, err := roster.Messages(ctx, kind.kind)
		if err != nil {
			slog.Warn("failed to restore messages", "kind", kind.name, "error", err)
			continue
		}
		for _, rec := range records {
			tracker.Record(kind.kind, rec)
		}
		if len(records) > 0 {
			slog.Info("Restored delivered messages", "kind", kind.name, "count", len(records))
		}
	}
}
