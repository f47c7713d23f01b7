package report

import (
	"ConnSpectra/internal/config"
	"ConnSpectra/internal/factory"
	"ConnSpectra/internal/model"
)

// TimestampLayout names the per-run report directories.
const TimestampLayout = "2006-01-02_15-04-05"

func init() {
	factory.RegisterWriter("text", func(def config.WriterDef, _ config.ReportConfig) (model.Writer, error) {
		return NewTextWriter(def.Text.Path), nil
	})
	factory.RegisterWriter("json", func(_ config.WriterDef, cfg config.ReportConfig) (model.Writer, error) {
		return NewJSONWriter(cfg.RootPath), nil
	})
	factory.RegisterWriter("gob", func(_ config.WriterDef, cfg config.ReportConfig) (model.Writer, error) {
		return NewGobWriter(cfg.RootPath), nil
	})
	factory.RegisterWriter("clickhouse", func(def config.WriterDef, _ config.ReportConfig) (model.Writer, error) {
		return NewClickHouseWriter(def.ClickHouse)
	})
	factory.RegisterWriter("nats", func(def config.WriterDef, _ config.ReportConfig) (model.Writer, error) {
		return NewNATSWriter(def.NATS)
	})
}
