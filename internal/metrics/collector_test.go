package metrics

import (
	"ConnSpectra/internal/model"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testReport() *model.Report {
	return &model.Report{
		Source:  "trace.pcap",
		Capture: model.CaptureStats{Frames: 12, Decoded: 10, NotApplicable: 2},
		Connections: []model.ConnectionRecord{
			{ID: 1, SrcIP: "10.0.0.1", SrcPort: 5000, DstIP: "10.0.0.2", DstPort: 80, Class: model.ClassComplete,
				PacketsAToB: 6, PacketsBToA: 4, BytesAToB: 300, Duration: 2, RTTSamples: 3},
			{ID: 2, SrcIP: "10.0.0.1", SrcPort: 5001, DstIP: "10.0.0.2", DstPort: 80, Class: model.ClassReset},
		},
		Summary: model.Summary{
			TotalConnections:    2,
			CompleteConnections: 1,
			ResetConnections:    1,
			RTT:                 model.Descriptive{Min: 0.1, Mean: 0.2, Max: 0.3},
		},
	}
}

func TestCollect_NoReport(t *testing.T) {
	if n := testutil.CollectAndCount(NewReportCollector()); n != 0 {
		t.Errorf("Expected no metrics before a report is set, got %d", n)
	}
}

func TestCollect_Connections(t *testing.T) {
	c := NewReportCollector()
	c.SetReport(testReport())

	expected := `
# HELP connspectra_connections Number of connections per class
# TYPE connspectra_connections gauge
connspectra_connections{class="complete"} 1
connspectra_connections{class="open"} 0
connspectra_connections{class="pre_capture"} 0
connspectra_connections{class="reset"} 1
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected), "connspectra_connections"); err != nil {
		t.Errorf("Unexpected connection metrics: %v", err)
	}

	expected = `
# HELP connspectra_rtt_seconds Round-trip time samples across all connections
# TYPE connspectra_rtt_seconds gauge
connspectra_rtt_seconds{stat="max"} 0.3
connspectra_rtt_seconds{stat="mean"} 0.2
connspectra_rtt_seconds{stat="min"} 0.1
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected), "connspectra_rtt_seconds"); err != nil {
		t.Errorf("Unexpected RTT metrics: %v", err)
	}
}

func TestCollect_PerConnection(t *testing.T) {
	c := NewReportCollector()
	c.SetReport(testReport())

	if n := testutil.CollectAndCount(c, "connspectra_connection_packets"); n != 4 {
		t.Errorf("Expected 2 directions for 2 connections, got %d series", n)
	}
	if n := testutil.CollectAndCount(c, "connspectra_connection_rtt_samples"); n != 2 {
		t.Errorf("Expected one RTT sample series per connection, got %d", n)
	}

	expected := `
# HELP connspectra_connection_duration_seconds Time between first SYN and last FIN
# TYPE connspectra_connection_duration_seconds gauge
connspectra_connection_duration_seconds{class="complete",dst_ip="10.0.0.2",dst_port="80",src_ip="10.0.0.1",src_port="5000"} 2
connspectra_connection_duration_seconds{class="reset",dst_ip="10.0.0.2",dst_port="80",src_ip="10.0.0.1",src_port="5001"} 0
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(expected), "connspectra_connection_duration_seconds"); err != nil {
		t.Errorf("Unexpected duration metrics: %v", err)
	}
}
