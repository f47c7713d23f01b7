package report

import (
	"ConnSpectra/internal/model"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
)

// SummaryData is the content of summary.json.
type SummaryData struct {
	Source    string             `json:"source"`
	Capture   model.CaptureStats `json:"capture"`
	Summary   model.Summary      `json:"summary"`
	Timestamp string             `json:"timestamp"`
}

// JSONWriter writes summary.json and connections.json into a timestamped directory.
type JSONWriter struct {
	rootPath string
}

// NewJSONWriter creates a new JSON writer rooted at rootPath.
func NewJSONWriter(rootPath string) model.Writer {
	return &JSONWriter{rootPath: rootPath}
}

// Name returns the writer type.
func (w *JSONWriter) Name() string {
	return "json"
}

// Write serializes the summary and the connection records as indented JSON.
func (w *JSONWriter) Write(report *model.Report, timestamp string) error {
	dir := filepath.Join(w.rootPath, timestamp)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	summary := SummaryData{
		Source:    report.Source,
		Capture:   report.Capture,
		Summary:   report.Summary,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err := writeJSON(filepath.Join(dir, "summary.json"), summary); err != nil {
		return err
	}

	connections := report.Connections
	if connections == nil {
		connections = []model.ConnectionRecord{}
	}
	if err := writeJSON(filepath.Join(dir, "connections.json"), connections); err != nil {
		return err
	}

	log.Infof("Wrote JSON report for %d connections to %s", len(connections), dir)
	return nil
}

func writeJSON(filePath string, v interface{}) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file '%s': %w", filePath, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json for file '%s': %w", filePath, err)
	}
	return nil
}
