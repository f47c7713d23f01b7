package tracker

import (
	"ConnSpectra/internal/engine/flowkey"
	"ConnSpectra/internal/model"

	log "github.com/sirupsen/logrus"
)

// Options tunes the tracker.
type Options struct {
	// SymmetricRTT also pairs B->A segments with A->B acknowledgments.
	// When false only the A->B data / B->A ack leg produces RTT samples.
	SymmetricRTT bool
	// MaxPendingSegments bounds each pending list per connection; the oldest
	// entry is evicted when it is full. Zero or negative means unbounded.
	MaxPendingSegments int
}

// Tracker applies decoded packets, in capture order, to per-connection state.
// It owns its connection table; a Tracker is not safe for concurrent use.
type Tracker struct {
	opts  Options
	table *model.ConnectionTable
}

// New creates a tracker with an empty connection table.
func New(opts Options) *Tracker {
	return &Tracker{
		opts:  opts,
		table: model.NewConnectionTable(),
	}
}

// Table returns the connection table. Callers must stop feeding packets
// before reading it.
func (t *Tracker) Table() *model.ConnectionTable {
	return t.table
}

// ProcessPacket updates the state of the packet's connection.
func (t *Tracker) ProcessPacket(pkt *model.DecodedPacket) {
	key, dir := flowkey.ForPacket(pkt)
	conn := t.table.GetOrCreate(key)
	ts := pkt.Timestamp

	if pkt.SYN() {
		conn.SynCount++
		if !conn.HasStart {
			conn.StartTime = ts
			conn.HasStart = true
		}
	}
	if pkt.FIN() {
		conn.FinCount++
		conn.EndTime = ts
		conn.HasEnd = true
	}
	if pkt.RST() {
		conn.Reset = true
	}

	t.trackRTT(conn, pkt, dir)

	conn.Complete = conn.SynCount >= 1 && conn.FinCount >= 1

	if dir == model.AToB {
		conn.PacketsAToB++
		conn.BytesAToB += uint64(pkt.PayloadLen)
	} else {
		conn.PacketsBToA++
		conn.BytesBToA += uint64(pkt.PayloadLen)
	}

	conn.WindowSizes = append(conn.WindowSizes, pkt.Window)
}

// trackRTT records unacknowledged segments and turns matching ACKs into RTT samples.
func (t *Tracker) trackRTT(conn *model.ConnectionState, pkt *model.DecodedPacket, dir model.Direction) {
	switch {
	case dir == model.AToB && !pkt.ACK():
		conn.PendingAToB = t.remember(conn.PendingAToB, pkt)
	case dir == model.BToA && pkt.ACK():
		conn.PendingAToB = matchAck(conn, conn.PendingAToB, pkt)
	}

	if !t.opts.SymmetricRTT {
		return
	}
	switch {
	case dir == model.BToA && !pkt.ACK():
		conn.PendingBToA = t.remember(conn.PendingBToA, pkt)
	case dir == model.AToB && pkt.ACK():
		conn.PendingBToA = matchAck(conn, conn.PendingBToA, pkt)
	}
}

// remember stores the send time of pkt's sequence number. A repeated sequence
// number overwrites the earlier send time and keeps its place in the list.
func (t *Tracker) remember(pending []model.PendingSegment, pkt *model.DecodedPacket) []model.PendingSegment {
	for i := range pending {
		if pending[i].Seq == pkt.Seq {
			pending[i].SentAt = pkt.Timestamp
			return pending
		}
	}

	if limit := t.opts.MaxPendingSegments; limit > 0 && len(pending) >= limit {
		log.Debugf("Pending segment list full, evicting seq %d", pending[0].Seq)
		pending = pending[1:]
	}
	return append(pending, model.PendingSegment{Seq: pkt.Seq, SentAt: pkt.Timestamp})
}

// matchAck consumes the oldest pending segment covered by pkt's acknowledgment
// number, if any, and records one RTT sample for it.
func matchAck(conn *model.ConnectionState, pending []model.PendingSegment, pkt *model.DecodedPacket) []model.PendingSegment {
	for i, seg := range pending {
		if seg.Seq <= pkt.Ack {
			conn.RTTSamples = append(conn.RTTSamples, pkt.Timestamp-seg.SentAt)
			return append(pending[:i], pending[i+1:]...)
		}
	}
	return pending
}
