// Command simplekp generates a random knowledge graph and serves it over
// HTTP until interrupted. Every run gets a fresh graph; pass -seed to get
// the same graph twice.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mockkp/simplekp/pkg/api"
	"github.com/mockkp/simplekp/pkg/config"
	"github.com/mockkp/simplekp/pkg/generator"
	"github.com/mockkp/simplekp/pkg/graphql"
	"github.com/mockkp/simplekp/pkg/logging"
	"github.com/mockkp/simplekp/pkg/metrics"
	"github.com/mockkp/simplekp/pkg/server"
	"github.com/mockkp/simplekp/pkg/storage"
)

func main() {
	var (
		nodeCount  = flag.Int("nodes", 100, "Number of nodes to generate")
		edgeCount  = flag.Int("edges", 300, "Number of edges to generate")
		seed       = flag.Int64("seed", time.Now().UnixNano(), "Generation seed (default: current time)")
		host       = flag.String("host", "", "Host to bind (overrides config)")
		port       = flag.Int("port", 0, "Port to listen on (overrides config)")
		dataDir    = flag.String("data", "", "Data directory (overrides config)")
		configPath = flag.String("config", "", "Path to YAML config file")
		logLevel   = flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *host != "" {
		cfg.Host = *host
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	logger := logging.NewJSONLogger(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	if err := run(cfg, *nodeCount, *edgeCount, *seed, logger); err != nil {
		logger.Error("fatal", logging.Err(err))
		os.Exit(1)
	}
}

func run(cfg config.Config, nodeCount, edgeCount int, seed int64, logger logging.Logger) error {
	reg := metrics.NewRegistry()

	logger.Info("generating graph",
		logging.F("nodes", nodeCount),
		logging.F("edges", edgeCount),
		logging.F("seed", seed))

	start := time.Now()
	graph, err := generator.Generate(generator.Config{
		NodeCount: nodeCount,
		EdgeCount: edgeCount,
		Seed:      seed,
	})
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}
	reg.RecordGeneration(time.Since(start))
	logger.Info("graph generated", logging.F("duration_ms", time.Since(start).Milliseconds()))

	// Each run stores its snapshot in its own subdirectory so concurrent
	// instances sharing a data dir do not collide.
	runDir := filepath.Join(cfg.DataDir, fmt.Sprintf("run-%d", os.Getpid()))
	store, err := storage.NewGraphStore(storage.StoreConfig{
		DataDir: runDir,
		Logger:  logger.With(logging.F("component", "storage")),
		Metrics: reg,
	})
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close store", logging.Err(err))
		}
		if err := os.RemoveAll(runDir); err != nil {
			logger.Error("failed to remove data dir", logging.Err(err))
		}
	}()

	if err := store.Load(graph); err != nil {
		return fmt.Errorf("failed to load graph: %w", err)
	}

	schema, err := graphql.BuildSchema(store)
	if err != nil {
		return fmt.Errorf("failed to build graphql schema: %w", err)
	}

	apiServer := api.NewServer(store,
		api.WithLogger(logger.With(logging.F("component", "api"))),
		api.WithMetrics(reg),
		api.WithCORSOrigins(cfg.CORSOrigins),
		api.WithGraphQL(graphql.NewHandler(schema)),
	)

	srv := server.NewGracefulServer(cfg.Addr(), apiServer.Routes(), cfg.ShutdownTimeout, logger)
	logger.Info("server starting",
		logging.F("addr", cfg.Addr()),
		logging.F("node_count", store.NodeCount()),
		logging.F("edge_count", store.EdgeCount()))
	return srv.Run()
}
