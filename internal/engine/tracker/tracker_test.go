package tracker

import (
	"ConnSpectra/internal/model"
	"math"
	"testing"
)

const (
	clientIP = "10.0.0.1"
	serverIP = "10.0.0.2"
)

// clientPacket and serverPacket build packets for 10.0.0.1:5000 <-> 10.0.0.2:80,
// where the client is endpoint A.
func clientPacket(ts float64, flags uint8, seq, ack uint32, payload int) *model.DecodedPacket {
	return &model.DecodedPacket{
		Timestamp: ts, SrcIP: clientIP, DstIP: serverIP, SrcPort: 5000, DstPort: 80,
		Seq: seq, Ack: ack, Flags: flags, Window: 1000, PayloadLen: payload,
	}
}

func serverPacket(ts float64, flags uint8, seq, ack uint32, payload int) *model.DecodedPacket {
	return &model.DecodedPacket{
		Timestamp: ts, SrcIP: serverIP, DstIP: clientIP, SrcPort: 80, DstPort: 5000,
		Seq: seq, Ack: ack, Flags: flags, Window: 2000, PayloadLen: payload,
	}
}

func onlyState(t *testing.T, trk *Tracker) *model.ConnectionState {
	t.Helper()
	states := trk.Table().States()
	if len(states) != 1 {
		t.Fatalf("Expected 1 connection, got %d", len(states))
	}
	return states[0]
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestProcessPacket_HandshakeAndClose(t *testing.T) {
	trk := New(Options{})
	packets := []*model.DecodedPacket{
		clientPacket(1.0, model.FlagSYN, 100, 0, 0),
		serverPacket(1.1, model.FlagSYN|model.FlagACK, 500, 101, 0),
		clientPacket(1.2, model.FlagACK, 101, 501, 0),
		clientPacket(1.3, model.FlagACK|model.FlagPSH, 101, 501, 200),
		serverPacket(1.4, model.FlagACK, 501, 301, 50),
		clientPacket(2.0, model.FlagFIN|model.FlagACK, 301, 551, 0),
		serverPacket(2.1, model.FlagFIN|model.FlagACK, 551, 302, 0),
		clientPacket(2.2, model.FlagACK, 302, 552, 0),
	}
	for _, p := range packets {
		trk.ProcessPacket(p)
	}

	conn := onlyState(t, trk)
	if conn.Key.A.Addr != clientIP || conn.Key.A.Port != 5000 {
		t.Errorf("Expected the client to be endpoint A, got %s", conn.Key)
	}
	if conn.SynCount != 2 {
		t.Errorf("Expected SYN and SYN-ACK to be counted, got %d", conn.SynCount)
	}
	if conn.FinCount != 2 {
		t.Errorf("Expected 2 FINs, got %d", conn.FinCount)
	}
	if !conn.Complete || conn.Reset {
		t.Errorf("Expected complete, non-reset connection, got complete=%v reset=%v", conn.Complete, conn.Reset)
	}
	if !conn.HasStart || conn.StartTime != 1.0 {
		t.Errorf("Expected start time 1.0 from the first SYN, got %v (%f)", conn.HasStart, conn.StartTime)
	}
	if !conn.HasEnd || conn.EndTime != 2.1 {
		t.Errorf("Expected end time 2.1 from the last FIN, got %v (%f)", conn.HasEnd, conn.EndTime)
	}
	if conn.PacketsAToB != 5 || conn.PacketsBToA != 3 {
		t.Errorf("Expected 5/3 packets, got %d/%d", conn.PacketsAToB, conn.PacketsBToA)
	}
	if conn.BytesAToB != 200 || conn.BytesBToA != 50 {
		t.Errorf("Expected 200/50 bytes, got %d/%d", conn.BytesAToB, conn.BytesBToA)
	}
	if len(conn.WindowSizes) != len(packets) {
		t.Errorf("Expected one window sample per packet, got %d", len(conn.WindowSizes))
	}
	if conn.WindowSizes[0] != 1000 || conn.WindowSizes[1] != 2000 {
		t.Errorf("Expected window sizes in capture order, got %v", conn.WindowSizes[:2])
	}

	// Only the initial SYN is an A->B segment without ACK; the SYN-ACK acknowledges it.
	if len(conn.RTTSamples) != 1 || !approx(conn.RTTSamples[0], 0.1) {
		t.Errorf("Expected a single RTT sample of 0.1, got %v", conn.RTTSamples)
	}
	if len(conn.PendingAToB) != 0 {
		t.Errorf("Expected no pending segments, got %v", conn.PendingAToB)
	}
}

func TestProcessPacket_ResetOnly(t *testing.T) {
	trk := New(Options{})
	trk.ProcessPacket(serverPacket(3.0, model.FlagRST, 0, 0, 0))

	conn := onlyState(t, trk)
	if !conn.Reset {
		t.Error("Expected reset to be set")
	}
	if conn.SynCount != 0 || conn.FinCount != 0 || conn.Complete {
		t.Errorf("Unexpected counts: syn=%d fin=%d complete=%v", conn.SynCount, conn.FinCount, conn.Complete)
	}
	if conn.HasStart || conn.HasEnd {
		t.Error("Expected no start or end time")
	}
	if conn.PacketsBToA != 1 {
		t.Errorf("Expected the packet to be counted B->A, got %d", conn.PacketsBToA)
	}
}

func TestProcessPacket_ResetIsSticky(t *testing.T) {
	trk := New(Options{})
	trk.ProcessPacket(clientPacket(1, model.FlagSYN, 1, 0, 0))
	trk.ProcessPacket(serverPacket(2, model.FlagRST|model.FlagACK, 0, 2, 0))
	trk.ProcessPacket(clientPacket(3, model.FlagACK, 2, 0, 10))

	if conn := onlyState(t, trk); !conn.Reset {
		t.Error("Expected reset to stay set after later packets")
	}
}

func TestProcessPacket_RTTMatching(t *testing.T) {
	trk := New(Options{})
	trk.ProcessPacket(clientPacket(1.0, 0, 100, 0, 10))
	trk.ProcessPacket(clientPacket(1.5, 0, 200, 0, 10))
	// Retransmission of seq 100 overwrites its send time but keeps its position.
	trk.ProcessPacket(clientPacket(1.8, 0, 100, 0, 10))

	// Acks 150: seq 100 is the first entry <= 150.
	trk.ProcessPacket(serverPacket(2.0, model.FlagACK, 0, 150, 0))
	// Acks 90: nothing <= 90 remains, no sample.
	trk.ProcessPacket(serverPacket(2.1, model.FlagACK, 0, 90, 0))
	// Acks 300: seq 200.
	trk.ProcessPacket(serverPacket(2.5, model.FlagACK, 0, 300, 0))
	// Nothing left to match.
	trk.ProcessPacket(serverPacket(2.6, model.FlagACK, 0, 400, 0))

	conn := onlyState(t, trk)
	want := []float64{0.2, 1.0}
	if len(conn.RTTSamples) != len(want) {
		t.Fatalf("Expected %d RTT samples, got %v", len(want), conn.RTTSamples)
	}
	for i := range want {
		if !approx(conn.RTTSamples[i], want[i]) {
			t.Errorf("RTT sample %d: expected %f, got %f", i, want[i], conn.RTTSamples[i])
		}
	}
}

func TestProcessPacket_AsymmetricByDefault(t *testing.T) {
	trk := New(Options{})
	trk.ProcessPacket(serverPacket(1.0, 0, 100, 0, 10))
	trk.ProcessPacket(clientPacket(1.3, model.FlagACK, 0, 200, 0))

	conn := onlyState(t, trk)
	if len(conn.RTTSamples) != 0 {
		t.Errorf("Expected no RTT sample for the B->A leg, got %v", conn.RTTSamples)
	}
	if len(conn.PendingBToA) != 0 {
		t.Errorf("Expected B->A segments not to be tracked, got %v", conn.PendingBToA)
	}
}

func TestProcessPacket_SymmetricRTT(t *testing.T) {
	trk := New(Options{SymmetricRTT: true})
	trk.ProcessPacket(serverPacket(1.0, 0, 100, 0, 10))
	trk.ProcessPacket(clientPacket(1.3, model.FlagACK, 0, 200, 0))

	conn := onlyState(t, trk)
	if len(conn.RTTSamples) != 1 || !approx(conn.RTTSamples[0], 0.3) {
		t.Errorf("Expected one RTT sample of 0.3, got %v", conn.RTTSamples)
	}
}

func TestProcessPacket_PendingBound(t *testing.T) {
	trk := New(Options{MaxPendingSegments: 2})
	for i := 0; i < 5; i++ {
		trk.ProcessPacket(clientPacket(float64(i), 0, uint32(100*(i+1)), 0, 1))
	}

	conn := onlyState(t, trk)
	if len(conn.PendingAToB) != 2 {
		t.Fatalf("Expected 2 pending segments, got %d", len(conn.PendingAToB))
	}
	if conn.PendingAToB[0].Seq != 400 || conn.PendingAToB[1].Seq != 500 {
		t.Errorf("Expected the newest segments to be kept, got %v", conn.PendingAToB)
	}
}

func TestProcessPacket_PendingUnboundedByDefault(t *testing.T) {
	trk := New(Options{})
	const segments = 2000
	for i := 0; i < segments; i++ {
		trk.ProcessPacket(clientPacket(float64(i)/1000, 0, uint32(10*(i+1)), 0, 1))
	}

	conn := onlyState(t, trk)
	if len(conn.PendingAToB) != segments {
		t.Fatalf("Expected %d pending segments, got %d", segments, len(conn.PendingAToB))
	}

	// The very first segment is still matchable.
	trk.ProcessPacket(serverPacket(5.0, model.FlagACK, 0, 10, 0))
	if len(conn.RTTSamples) != 1 || !approx(conn.RTTSamples[0], 5.0) {
		t.Errorf("Expected one RTT sample of 5.0, got %v", conn.RTTSamples)
	}
}

func TestProcessPacket_RTTSamplesNeverExceedSegments(t *testing.T) {
	trk := New(Options{})
	sent := 0
	for i := 0; i < 20; i++ {
		if i%3 == 0 {
			trk.ProcessPacket(clientPacket(float64(i), 0, uint32(i), 0, 1))
			sent++
		}
		trk.ProcessPacket(serverPacket(float64(i)+0.5, model.FlagACK, 0, 1000, 0))
		trk.ProcessPacket(serverPacket(float64(i)+0.6, model.FlagACK, 0, 1000, 0))
	}

	conn := onlyState(t, trk)
	if len(conn.RTTSamples) > sent {
		t.Errorf("Expected at most %d RTT samples, got %d", sent, len(conn.RTTSamples))
	}
}

func TestProcessPacket_SeparateConnections(t *testing.T) {
	trk := New(Options{})
	trk.ProcessPacket(clientPacket(1, model.FlagSYN, 1, 0, 0))
	other := clientPacket(2, model.FlagSYN, 1, 0, 0)
	other.SrcPort = 5001
	trk.ProcessPacket(other)
	trk.ProcessPacket(serverPacket(3, model.FlagSYN|model.FlagACK, 1, 2, 0))

	states := trk.Table().States()
	if len(states) != 2 {
		t.Fatalf("Expected 2 connections, got %d", len(states))
	}
	if states[0].Key.A.Port != 5000 || states[1].Key.A.Port != 5001 {
		t.Errorf("Expected first-seen order, got %s then %s", states[0].Key, states[1].Key)
	}
	if states[0].TotalPackets() != 2 || states[1].TotalPackets() != 1 {
		t.Errorf("Unexpected packet totals: %d and %d", states[0].TotalPackets(), states[1].TotalPackets())
	}
}
