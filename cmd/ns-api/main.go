package main

import (
	"ConnSpectra/internal/api"
	"ConnSpectra/internal/config"
	"ConnSpectra/internal/engine/manager"
	"ConnSpectra/internal/model"
	"ConnSpectra/internal/report"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	reportPath := flag.String("report", "", "serve a saved gob report instead of analyzing a capture")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-config file] (-report report.dat | <path_to_pcap_file>)\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// Load configuration
	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	if *reportPath == "" && flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	// The API only serves the report; writers are not run here, alerts are.
	cfg.Report.Writers = nil
	managerImpl, err := manager.NewManager(cfg)
	if err != nil {
		log.Fatalf("Failed to create manager: %v", err)
	}

	load := func() (*model.Report, error) {
		if *reportPath != "" {
			return report.LoadGob(*reportPath)
		}
		return managerImpl.AnalyzeFile(flag.Arg(0))
	}

	rep, err := load()
	if err != nil {
		log.Fatalf("Failed to load report: %v", err)
	}
	if err := managerImpl.Alert(rep); err != nil {
		log.Errorf("Failed to send alerts: %v", err)
	}

	apiHandler := api.NewHandler(rep)

	// Start HTTP server
	server := &http.Server{
		Addr:    cfg.API.ListenAddr,
		Handler: apiHandler.Router(),
	}

	go func() {
		log.Infof("API server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", server.Addr, err)
		}
	}()

	// SIGHUP reloads the report, SIGINT/SIGTERM shut down.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	for sig := range signals {
		if sig != syscall.SIGHUP {
			break
		}
		rep, err := load()
		if err != nil {
			log.Errorf("Failed to reload report, keeping the current one: %v", err)
			continue
		}
		apiHandler.SetReport(rep)
		log.Infof("Report reloaded: %d connections", len(rep.Connections))
		if err := managerImpl.Alert(rep); err != nil {
			log.Errorf("Failed to send alerts: %v", err)
		}
	}
	log.Info("API server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Info("API server exited.")
}
