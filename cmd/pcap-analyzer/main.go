package main

import (
	"ConnSpectra/internal/config"
	"ConnSpectra/internal/engine/manager"
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file (default: text report on stdout)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-config configs/config.yaml] <path_to_pcap_file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// 1. Get pcap file path from command-line arguments
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}
	pcapFilePath := flag.Arg(0)

	// 2. Load configuration
	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		log.Infof("Configuration loaded from %s.", *configPath)
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.Warnf("Unknown log level '%s', keeping %s", cfg.LogLevel, log.GetLevel())
	}

	// 3. Initialize modules
	managerImpl, err := manager.NewManager(cfg)
	if err != nil {
		log.Fatalf("Failed to create manager: %v", err)
	}
	defer managerImpl.Stop()

	// 4. Analyze the capture
	log.Infof("Reading packets from '%s'...", pcapFilePath)
	report, err := managerImpl.AnalyzeFile(pcapFilePath)
	if err != nil {
		log.Fatalf("Failed to analyze capture: %v", err)
	}

	// 5. Hand the report to the writers and the alerter
	if err := managerImpl.Publish(report); err != nil {
		log.Errorf("Some report writers failed: %v", err)
	}
}
