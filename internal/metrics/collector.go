package metrics

import (
	"ConnSpectra/internal/model"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var connLabels = []string{"src_ip", "src_port", "dst_ip", "dst_port", "class"}

// ReportCollector exposes the most recent report as Prometheus gauges.
type ReportCollector struct {
	mu     sync.RWMutex
	report *model.Report

	connections    *prometheus.Desc
	frames         *prometheus.Desc
	durationStats  *prometheus.Desc
	rttStats       *prometheus.Desc
	packetStats    *prometheus.Desc
	windowStats    *prometheus.Desc
	connPackets    *prometheus.Desc
	connBytes      *prometheus.Desc
	connDuration   *prometheus.Desc
	connRTTSamples *prometheus.Desc
}

// NewReportCollector creates a collector. It reports nothing until SetReport is called.
func NewReportCollector() *ReportCollector {
	return &ReportCollector{
		connections: prometheus.NewDesc(
			"connspectra_connections", "Number of connections per class",
			[]string{"class"}, nil,
		),
		frames: prometheus.NewDesc(
			"connspectra_capture_frames", "Number of capture frames per decode outcome",
			[]string{"outcome"}, nil,
		),
		durationStats: prometheus.NewDesc(
			"connspectra_duration_seconds", "Duration of complete connections",
			[]string{"stat"}, nil,
		),
		rttStats: prometheus.NewDesc(
			"connspectra_rtt_seconds", "Round-trip time samples across all connections",
			[]string{"stat"}, nil,
		),
		packetStats: prometheus.NewDesc(
			"connspectra_connection_packets_stats", "Packets per connection across all connections",
			[]string{"stat"}, nil,
		),
		windowStats: prometheus.NewDesc(
			"connspectra_window_size_bytes", "Receive window sizes across all packets",
			[]string{"stat"}, nil,
		),
		connPackets: prometheus.NewDesc(
			"connspectra_connection_packets", "Packets seen per connection and direction",
			append(connLabels, "direction"), nil,
		),
		connBytes: prometheus.NewDesc(
			"connspectra_connection_bytes", "Payload bytes per connection and direction",
			append(connLabels, "direction"), nil,
		),
		connDuration: prometheus.NewDesc(
			"connspectra_connection_duration_seconds", "Time between first SYN and last FIN",
			connLabels, nil,
		),
		connRTTSamples: prometheus.NewDesc(
			"connspectra_connection_rtt_samples", "Number of RTT samples per connection",
			connLabels, nil,
		),
	}
}

// SetReport replaces the report the collector exposes.
func (c *ReportCollector) SetReport(report *model.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.report = report
}

func (c *ReportCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.connections
	ch <- c.frames
	ch <- c.durationStats
	ch <- c.rttStats
	ch <- c.packetStats
	ch <- c.windowStats
	ch <- c.connPackets
	ch <- c.connBytes
	ch <- c.connDuration
	ch <- c.connRTTSamples
}

func (c *ReportCollector) Collect(ch chan<- prometheus.Metric) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.report == nil {
		return
	}
	s := c.report.Summary

	gauge := func(desc *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, v, labels...)
	}

	gauge(c.connections, float64(s.CompleteConnections), string(model.ClassComplete))
	gauge(c.connections, float64(s.ResetConnections), string(model.ClassReset))
	gauge(c.connections, float64(s.OpenConnections), string(model.ClassOpen))
	gauge(c.connections, float64(s.PreCaptureConns), string(model.ClassPreCapture))

	capture := c.report.Capture
	gauge(c.frames, float64(capture.Decoded), "decoded")
	gauge(c.frames, float64(capture.NotApplicable), "not_applicable")
	gauge(c.frames, float64(capture.Truncated), "truncated")

	describe := func(desc *prometheus.Desc, d model.Descriptive) {
		gauge(desc, d.Min, "min")
		gauge(desc, d.Mean, "mean")
		gauge(desc, d.Max, "max")
	}
	describe(c.durationStats, s.Duration)
	describe(c.rttStats, s.RTT)
	describe(c.packetStats, s.Packets)
	describe(c.windowStats, s.WindowSize)

	for _, conn := range c.report.Connections {
		labels := []string{
			conn.SrcIP, strconv.Itoa(int(conn.SrcPort)),
			conn.DstIP, strconv.Itoa(int(conn.DstPort)),
			string(conn.Class),
		}
		gauge(c.connPackets, float64(conn.PacketsAToB), append(labels, "src_to_dst")...)
		gauge(c.connPackets, float64(conn.PacketsBToA), append(labels, "dst_to_src")...)
		gauge(c.connBytes, float64(conn.BytesAToB), append(labels, "src_to_dst")...)
		gauge(c.connBytes, float64(conn.BytesBToA), append(labels, "dst_to_src")...)
		gauge(c.connDuration, conn.Duration, labels...)
		gauge(c.connRTTSamples, float64(conn.RTTSamples), labels...)
	}
}
