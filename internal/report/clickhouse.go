package report

import (
	"ConnSpectra/internal/config"
	"ConnSpectra/internal/model"
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	log "github.com/sirupsen/logrus"
)

const createTableStatement = `
CREATE TABLE IF NOT EXISTS tcp_connections (
    Timestamp   DateTime,
    Source      String,
    ConnID      UInt32,
    SrcIP       String,
    SrcPort     UInt16,
    DstIP       String,
    DstPort     UInt16,
    Status      String,
    Class       LowCardinality(String),
    StartTime   Float64,
    EndTime     Float64,
    Duration    Float64,
    PacketsAToB UInt64,
    PacketsBToA UInt64,
    BytesAToB   UInt64,
    BytesBToA   UInt64,
    RTTSamples  UInt32
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(Timestamp)
ORDER BY (Source, Timestamp, ConnID);
`

// ClickHouseWriter inserts one row per connection into the tcp_connections table.
type ClickHouseWriter struct {
	conn driver.Conn
}

// NewClickHouseWriter connects to ClickHouse and makes sure the table exists.
func NewClickHouseWriter(cfg config.ClickHouseConfig) (model.Writer, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	if err := ensureTable(conn); err != nil {
		return nil, err
	}
	log.Infof("Connected to ClickHouse at %s:%d and ensured table exists.", cfg.Host, cfg.Port)

	return &ClickHouseWriter{conn: conn}, nil
}

// ensureTable creates the tcp_connections table, closing conn if that fails.
func ensureTable(conn driver.Conn) error {
	if err := conn.Exec(context.Background(), createTableStatement); err != nil {
		if cerr := conn.Close(); cerr != nil {
			log.Warnf("Failed to close ClickHouse connection: %v", cerr)
		}
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

func connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}

	return conn, nil
}

// Name returns the writer type.
func (w *ClickHouseWriter) Name() string {
	return "clickhouse"
}

// Write inserts the report's connections as one batch.
func (w *ClickHouseWriter) Write(report *model.Report, timestamp string) error {
	if len(report.Connections) == 0 {
		return nil // Nothing to write
	}

	batch, err := w.conn.PrepareBatch(context.Background(), "INSERT INTO tcp_connections")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	runTime := parseTimestamp(timestamp)
	for _, c := range report.Connections {
		if err := batch.Append(connectionRow(runTime, report.Source, c)...); err != nil {
			return fmt.Errorf("failed to append connection %d to batch: %w", c.ID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	log.Infof("Wrote %d connections to ClickHouse for '%s'", len(report.Connections), report.Source)
	return nil
}

// connectionRow returns the column values of one tcp_connections row, in table order.
func connectionRow(runTime time.Time, source string, c model.ConnectionRecord) []interface{} {
	return []interface{}{
		runTime,
		source,
		uint32(c.ID),
		c.SrcIP,
		c.SrcPort,
		c.DstIP,
		c.DstPort,
		c.Status,
		string(c.Class),
		c.StartTime,
		c.EndTime,
		c.Duration,
		c.PacketsAToB,
		c.PacketsBToA,
		c.BytesAToB,
		c.BytesBToA,
		uint32(c.RTTSamples),
	}
}

// parseTimestamp reads a run timestamp, falling back to now.
func parseTimestamp(timestamp string) time.Time {
	t, err := time.Parse(TimestampLayout, timestamp)
	if err != nil {
		return time.Now()
	}
	return t
}

// Close closes the ClickHouse connection.
func (w *ClickHouseWriter) Close() {
	if err := w.conn.Close(); err != nil {
		log.Warnf("Failed to close ClickHouse connection: %v", err)
	}
}
