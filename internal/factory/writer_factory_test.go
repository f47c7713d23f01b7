package factory

import (
	"ConnSpectra/internal/config"
	"ConnSpectra/internal/model"
	"errors"
	"testing"
)

type stubWriter struct{ name string }

func (w *stubWriter) Write(*model.Report, string) error { return nil }
func (w *stubWriter) Name() string                      { return w.name }

func init() {
	RegisterWriter("stub", func(def config.WriterDef, _ config.ReportConfig) (model.Writer, error) {
		return &stubWriter{name: def.Type}, nil
	})
	RegisterWriter("broken", func(config.WriterDef, config.ReportConfig) (model.Writer, error) {
		return nil, errors.New("cannot connect")
	})
}

func TestCreate(t *testing.T) {
	cfg := config.ReportConfig{Writers: []config.WriterDef{
		{Type: "stub", Enabled: true},
		{Type: "stub", Enabled: false},
		{Type: "broken", Enabled: true},
	}}

	writers, err := Create(cfg)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if len(writers) != 1 || writers[0].Name() != "stub" {
		t.Errorf("Expected only the enabled, working writer, got %d writers", len(writers))
	}
}

func TestCreate_UnknownType(t *testing.T) {
	cfg := config.ReportConfig{Writers: []config.WriterDef{{Type: "carrier-pigeon", Enabled: true}}}
	if _, err := Create(cfg); err == nil {
		t.Error("Expected an error for an unknown writer type")
	}
}

func TestRegisterWriter_Duplicate(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected a panic when registering a type twice")
		}
	}()
	RegisterWriter("stub", nil)
}
