package report

import (
	"ConnSpectra/internal/model"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// GobWriter stores the whole report as a gob stream so later runs can reload it.
type GobWriter struct {
	rootPath string
}

// NewGobWriter creates a new gob writer rooted at rootPath.
func NewGobWriter(rootPath string) model.Writer {
	return &GobWriter{rootPath: rootPath}
}

// Name returns the writer type.
func (w *GobWriter) Name() string {
	return "gob"
}

// Write encodes the report to <root>/<timestamp>/report.dat.
func (w *GobWriter) Write(report *model.Report, timestamp string) error {
	dir := filepath.Join(w.rootPath, timestamp)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	filePath := filepath.Join(dir, "report.dat")
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create report file '%s': %w", filePath, err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(report); err != nil {
		return fmt.Errorf("failed to encode report to gob for file '%s': %w", filePath, err)
	}
	return nil
}

// LoadGob reads a report written by GobWriter.
func LoadGob(filePath string) (*model.Report, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open report file: %w", err)
	}
	defer file.Close()

	var report model.Report
	if err := gob.NewDecoder(file).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &report, nil
}
