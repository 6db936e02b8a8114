package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/tailored-agentic-units/entity/dispatch"
	"github.com/tailored-agentic-units/entity/entity"
	"github.com/tailored-agentic-units/entity/observability"
	"github.com/tailored-agentic-units/entity/plugin"
	"github.com/tailored-agentic-units/entity/plugin/devtools"
	"github.com/tailored-agentic-units/entity/plugin/schema"
	"github.com/tailored-agentic-units/entity/plugin/trace"
	"github.com/tailored-agentic-units/entity/registry"
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to runtime config file (.json, .yaml, .toml)")
		addr       = flag.String("addr", "", "Devtools listen address (overrides default)")
		interval   = flag.Duration("interval", time.Second, "Tick interval for the demo clock entity")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	cfg := entity.DefaultConfig()
	if *configFile != "" {
		loaded, err := entity.LoadConfig(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	reg := registry.New()
	inspector := devtools.NewServer(reg, devtools.Config{Addr: *addr}, logger)

	var tracer observability.Observer = observability.NewSlogObserver(logger)
	if *verbose {
		tracer = observability.NewConsoleZerologObserver()
	}
	catalog, err := plugin.NewCatalog(
		trace.New(tracer, observability.LevelVerbose),
		schema.Plugin(),
		inspector.Plugin(),
	)
	if err != nil {
		log.Fatalf("Failed to build plugin catalog: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rt, err := entity.NewRuntime(&cfg,
		entity.WithContext(ctx),
		entity.WithCatalog(catalog),
		entity.WithRegistry(reg),
		entity.WithLogger(logger),
	)
	if err != nil {
		log.Fatalf("Failed to create runtime: %v", err)
	}
	defer rt.Close()

	if err := seed(rt, *interval); err != nil {
		log.Fatalf("Failed to create demo entities: %v", err)
	}

	if err := inspector.Start(); err != nil {
		log.Fatalf("Failed to start devtools: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := inspector.Shutdown(shutdownCtx); err != nil {
			logger.Error("devtools shutdown failed", "error", err)
		}
	}()

	logger.Info("runtime ready",
		"runtime", rt.Name(),
		"plugins", catalog.Names(),
		"entities", reg.Len(),
		"pending", rt.Queue().Pending(),
		"devtools", "http://"+inspector.Addr()+"/entities",
	)

	if err := rt.Queue().Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, dispatch.ErrClosed) {
		log.Fatalf("Dispatch loop failed: %v", err)
	}
	logger.Info("shutting down", "dropped_callbacks", rt.Queue().Pending())
}
