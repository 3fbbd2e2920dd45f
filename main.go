package main

import (
	"log"
	"net/http"

	"github.com/NYTimes/gziphandler"
	"github.com/google/gops/agent"
	"github.com/gorilla/handlers"

	"github.com/cbsinteractive/ltc-generator/config"
	"github.com/cbsinteractive/ltc-generator/db"
	"github.com/cbsinteractive/ltc-generator/service"
	"github.com/cbsinteractive/ltc-generator/service/exceptions"
)

func main() {
	agent.Listen(agent.Options{})
	defer agent.Close()
	cfg := config.LoadConfig()

	logger, err := cfg.Log.Logger()
	if err != nil {
		log.Fatal(err)
	}

	reporter, err := exceptions.New(cfg.SentryDSN, cfg.Env)
	if err != nil {
		logger.Fatalf("creating exception reporter: %v", err)
	}

	repo, err := db.NewClient(cfg.Redis)
	if err != nil {
		logger.Fatal("unable to initialize preset store: ", err)
	}

	metrics := service.NewMetrics()
	srv := service.New(cfg, repo, logger, reporter, metrics)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.Handle("/", gziphandler.GzipHandler(handlers.RecoveryHandler(
		handlers.RecoveryLogger(logger),
		handlers.PrintRecoveryStack(true),
	)(srv)))

	logger.WithField("addr", cfg.Server.Addr).Info("serving ltc renders")
	if err := http.ListenAndServe(cfg.Server.Addr, mux); err != nil {
		logger.Fatal("server encountered a fatal error: ", err)
	}
}
