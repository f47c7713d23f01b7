package report

import (
	"ConnSpectra/internal/config"
	"ConnSpectra/internal/model"
	"fmt"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const defaultSubject = "connspectra"

// NATSWriter publishes each connection record and the run summary as
// protobuf-encoded structpb messages.
type NATSWriter struct {
	nc      *nats.Conn
	subject string
}

// NewNATSWriter connects to the NATS server in cfg.
func NewNATSWriter(cfg config.NATSConfig) (model.Writer, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	subject := cfg.Subject
	if subject == "" {
		subject = defaultSubject
	}
	log.Infof("Connected to NATS server at %s", cfg.URL)
	return &NATSWriter{nc: nc, subject: subject}, nil
}

// Name returns the writer type.
func (w *NATSWriter) Name() string {
	return "nats"
}

// Write publishes to <subject>.connections once per record, then to <subject>.summary,
// and flushes the connection.
func (w *NATSWriter) Write(report *model.Report, timestamp string) error {
	connSubject := w.subject + ".connections"
	for _, c := range report.Connections {
		data, err := marshalRecord(report.Source, timestamp, c)
		if err != nil {
			return err
		}
		if err := w.nc.Publish(connSubject, data); err != nil {
			return fmt.Errorf("failed to publish connection %d: %w", c.ID, err)
		}
	}

	data, err := marshalSummary(report, timestamp)
	if err != nil {
		return err
	}
	if err := w.nc.Publish(w.subject+".summary", data); err != nil {
		return fmt.Errorf("failed to publish summary: %w", err)
	}

	if err := w.nc.Flush(); err != nil {
		return fmt.Errorf("failed to flush nats connection: %w", err)
	}
	log.Infof("Published %d connections to NATS subject '%s'", len(report.Connections), connSubject)
	return nil
}

// Close drains and closes the NATS connection.
func (w *NATSWriter) Close() {
	if w.nc != nil {
		w.nc.Drain()
		log.Info("NATS connection drained and closed.")
	}
}

// recordStruct converts a connection record into a structpb message.
func recordStruct(source, timestamp string, c model.ConnectionRecord) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"source":             source,
		"timestamp":          timestamp,
		"id":                 c.ID,
		"src_ip":             c.SrcIP,
		"src_port":           uint32(c.SrcPort),
		"dst_ip":             c.DstIP,
		"dst_port":           uint32(c.DstPort),
		"status":             c.Status,
		"class":              string(c.Class),
		"start_time":         c.StartTime,
		"end_time":           c.EndTime,
		"duration":           c.Duration,
		"packets_src_to_dst": c.PacketsAToB,
		"packets_dst_to_src": c.PacketsBToA,
		"bytes_src_to_dst":   c.BytesAToB,
		"bytes_dst_to_src":   c.BytesBToA,
		"rtt_samples":        c.RTTSamples,
	})
}

func marshalRecord(source, timestamp string, c model.ConnectionRecord) ([]byte, error) {
	msg, err := recordStruct(source, timestamp, c)
	if err != nil {
		return nil, fmt.Errorf("failed to convert connection %d: %w", c.ID, err)
	}
	return proto.Marshal(msg)
}

func descriptive(d model.Descriptive) map[string]interface{} {
	return map[string]interface{}{"min": d.Min, "mean": d.Mean, "max": d.Max}
}

// summaryStruct converts the run summary into a structpb message.
func summaryStruct(report *model.Report, timestamp string) (*structpb.Struct, error) {
	s := report.Summary
	return structpb.NewStruct(map[string]interface{}{
		"source":                     report.Source,
		"timestamp":                  timestamp,
		"frames":                     report.Capture.Frames,
		"total_connections":          s.TotalConnections,
		"complete_connections":       s.CompleteConnections,
		"reset_connections":          s.ResetConnections,
		"open_connections":           s.OpenConnections,
		"before_capture_connections": s.PreCaptureConns,
		"duration":                   descriptive(s.Duration),
		"rtt":                        descriptive(s.RTT),
		"packets":                    descriptive(s.Packets),
		"window_size":                descriptive(s.WindowSize),
	})
}

func marshalSummary(report *model.Report, timestamp string) ([]byte, error) {
	msg, err := summaryStruct(report, timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to convert summary: %w", err)
	}
	return proto.Marshal(msg)
}
