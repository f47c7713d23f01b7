package model

import (
	"fmt"
)

// CaptureFrame is one record read from a capture file.
// Timestamp is seconds since the epoch with the sub-second part kept as a fraction.
type CaptureFrame struct {
	Timestamp   float64
	CapturedLen int
	OriginalLen int
	Data        []byte
}

// TCP flag bits as laid out in the low byte of the offset/flags field.
const (
	FlagFIN uint8 = 1 << iota
	FlagSYN
	FlagRST
	FlagPSH
	FlagACK
	FlagURG
)

// DecodedPacket holds the Ethernet, IPv4 and TCP fields needed downstream.
// It is only built for Ethernet/IPv4/TCP frames.
type DecodedPacket struct {
	Timestamp  float64
	EtherType  uint16
	SrcIP      string
	DstIP      string
	Protocol   uint8
	SrcPort    uint16
	DstPort    uint16
	Seq        uint32
	Ack        uint32
	DataOffset int // TCP header length in bytes
	Flags      uint8
	Window     uint16
	PayloadLen int
}

func (p *DecodedPacket) SYN() bool { return p.Flags&FlagSYN != 0 }
func (p *DecodedPacket) FIN() bool { return p.Flags&FlagFIN != 0 }
func (p *DecodedPacket) RST() bool { return p.Flags&FlagRST != 0 }
func (p *DecodedPacket) ACK() bool { return p.Flags&FlagACK != 0 }

// Source returns the sending endpoint of the packet.
func (p *DecodedPacket) Source() Endpoint {
	return Endpoint{Addr: p.SrcIP, Port: p.SrcPort}
}

// Destination returns the receiving endpoint of the packet.
func (p *DecodedPacket) Destination() Endpoint {
	return Endpoint{Addr: p.DstIP, Port: p.DstPort}
}

// Endpoint is one side of a connection.
type Endpoint struct {
	Addr string
	Port uint16
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d", e.Addr, e.Port)
}

// Less orders endpoints by address string, then by port.
func (e Endpoint) Less(o Endpoint) bool {
	if e.Addr != o.Addr {
		return e.Addr < o.Addr
	}
	return e.Port < o.Port
}

// ConnectionKey identifies a connection independently of packet direction.
// A is always the smaller endpoint.
type ConnectionKey struct {
	A Endpoint
	B Endpoint
}

func (k ConnectionKey) String() string {
	return fmt.Sprintf("%s<->%s", k.A, k.B)
}

// Direction tells whether a packet was sent by endpoint A or endpoint B.
type Direction uint8

const (
	AToB Direction = iota
	BToA
)

func (d Direction) String() string {
	if d == AToB {
		return "A->B"
	}
	return "B->A"
}

// PendingSegment is a sent, not yet acknowledged segment awaiting an ACK.
type PendingSegment struct {
	Seq    uint32
	SentAt float64
}

// ConnectionState is the mutable per-connection state kept by the tracker.
type ConnectionState struct {
	Key ConnectionKey

	StartTime float64
	HasStart  bool
	EndTime   float64
	HasEnd    bool

	PacketsAToB uint64
	PacketsBToA uint64
	BytesAToB   uint64
	BytesBToA   uint64

	WindowSizes []uint16
	RTTSamples  []float64

	SynCount int
	FinCount int
	Reset    bool
	Complete bool

	// PendingAToB holds A->B segments waiting for an ACK from B.
	// PendingBToA is only used when symmetric RTT matching is enabled.
	PendingAToB []PendingSegment
	PendingBToA []PendingSegment
}

// NewConnectionState returns the zero state for a newly seen key.
func NewConnectionState(key ConnectionKey) *ConnectionState {
	return &ConnectionState{Key: key}
}

// TotalPackets returns the packet count across both directions.
func (s *ConnectionState) TotalPackets() uint64 {
	return s.PacketsAToB + s.PacketsBToA
}

// TotalBytes returns the payload byte count across both directions.
func (s *ConnectionState) TotalBytes() uint64 {
	return s.BytesAToB + s.BytesBToA
}

// ConnectionTable maps keys to states and remembers first-seen order.
type ConnectionTable struct {
	order  []ConnectionKey
	states map[ConnectionKey]*ConnectionState
}

// NewConnectionTable creates an empty table.
func NewConnectionTable() *ConnectionTable {
	return &ConnectionTable{states: make(map[ConnectionKey]*ConnectionState)}
}

// GetOrCreate returns the state for key, creating it on first sight.
func (t *ConnectionTable) GetOrCreate(key ConnectionKey) *ConnectionState {
	if state, ok := t.states[key]; ok {
		return state
	}
	state := NewConnectionState(key)
	t.states[key] = state
	t.order = append(t.order, key)
	return state
}

// Get returns the state for key if present.
func (t *ConnectionTable) Get(key ConnectionKey) (*ConnectionState, bool) {
	state, ok := t.states[key]
	return state, ok
}

// Len returns the number of distinct connections.
func (t *ConnectionTable) Len() int {
	return len(t.order)
}

// States returns all states in first-seen order.
func (t *ConnectionTable) States() []*ConnectionState {
	states := make([]*ConnectionState, 0, len(t.order))
	for _, key := range t.order {
		states = append(states, t.states[key])
	}
	return states
}
