package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TrackerConfig tunes the connection tracker.
type TrackerConfig struct {
	SymmetricRTT       bool `yaml:"symmetric_rtt"`
	MaxPendingSegments int  `yaml:"max_pending_segments"`
}

// TextConfig configures the human-readable report. An empty path or "-" means stdout.
type TextConfig struct {
	Path string `yaml:"path"`
}

// ClickHouseConfig holds the connection settings for ClickHouse.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// NATSConfig holds the NATS server and subject prefix used to publish reports.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// WriterDef defines a single report writer from the config file.
type WriterDef struct {
	Type       string           `yaml:"type"`
	Enabled    bool             `yaml:"enabled"`
	Text       TextConfig       `yaml:"text"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	NATS       NATSConfig       `yaml:"nats"`
}

// ReportConfig lists the writers a finished report is handed to.
type ReportConfig struct {
	RootPath string      `yaml:"root_path"`
	Writers  []WriterDef `yaml:"writers"`
}

// AlerterRule defines a threshold on one summary metric.
type AlerterRule struct {
	Name      string  `yaml:"name"`
	Metric    string  `yaml:"metric"`
	Operator  string  `yaml:"operator"`
	Threshold float64 `yaml:"threshold"`
}

// AlerterConfig holds the alert rules evaluated after each run.
type AlerterConfig struct {
	Enabled bool          `yaml:"enabled"`
	Rules   []AlerterRule `yaml:"rules"`
}

// SMTPConfig holds the mail server settings for the e-mail notifier.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

// APIConfig configures the HTTP API of ns-api.
type APIConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	LogLevel string        `yaml:"log_level"`
	Tracker  TrackerConfig `yaml:"tracker"`
	Report   ReportConfig  `yaml:"report"`
	Alerter  AlerterConfig `yaml:"alerter"`
	SMTP     SMTPConfig    `yaml:"smtp"`
	API      APIConfig     `yaml:"api"`
}

// Default returns the configuration used when no config file is given:
// a text report on stdout and nothing else.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Report: ReportConfig{
			RootPath: "reports",
			Writers: []WriterDef{
				{Type: "text", Enabled: true},
			},
		},
		API: APIConfig{
			ListenAddr: ":8080",
		},
	}
}

// LoadConfig reads the configuration from a YAML file on top of the defaults.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	return cfg, nil
}
