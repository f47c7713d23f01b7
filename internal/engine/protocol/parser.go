package protocol

import (
	"ConnSpectra/internal/model"
	"encoding/binary"
	"net"

	"github.com/google/gopacket/layers"
)

const (
	ethernetHeaderLen = 14
	ipv4MinHeaderLen  = 20
	tcpMinHeaderLen   = 20

	ipv4Offset = ethernetHeaderLen
	tcpOffset  = ipv4Offset + ipv4MinHeaderLen
)

// Outcome tells the caller what ParsePacket made of a frame.
type Outcome int

const (
	// Decoded means the frame is Ethernet/IPv4/TCP and the packet is valid.
	Decoded Outcome = iota
	// NotApplicable means the frame carries something other than IPv4/TCP.
	NotApplicable
	// Truncated means the frame is too short to hold the headers it announces.
	Truncated
)

func (o Outcome) String() string {
	switch o {
	case Decoded:
		return "decoded"
	case NotApplicable:
		return "not_applicable"
	case Truncated:
		return "truncated"
	default:
		return "unknown"
	}
}

// ParsePacket extracts the Ethernet, IPv4 and TCP fields from one frame.
//
// The IPv4 header is read as a fixed 20 byte header and the TCP header starts
// right after it, at byte 34 of the frame. Inconsistent TCP header lengths are
// tolerated: the payload byte count is clamped at zero.
func ParsePacket(frame model.CaptureFrame) (model.DecodedPacket, Outcome) {
	data := frame.Data
	var pkt model.DecodedPacket

	if len(data) < ethernetHeaderLen {
		return pkt, Truncated
	}
	pkt.EtherType = binary.BigEndian.Uint16(data[12:14])
	if layers.EthernetType(pkt.EtherType) != layers.EthernetTypeIPv4 {
		return pkt, NotApplicable
	}

	if len(data) < tcpOffset {
		return pkt, Truncated
	}
	ip := data[ipv4Offset:tcpOffset]
	pkt.Protocol = ip[9]
	if layers.IPProtocol(pkt.Protocol) != layers.IPProtocolTCP {
		return pkt, NotApplicable
	}
	pkt.SrcIP = net.IP(ip[12:16]).String()
	pkt.DstIP = net.IP(ip[16:20]).String()

	if len(data) < tcpOffset+tcpMinHeaderLen {
		return pkt, Truncated
	}
	tcp := data[tcpOffset : tcpOffset+tcpMinHeaderLen]
	pkt.SrcPort = binary.BigEndian.Uint16(tcp[0:2])
	pkt.DstPort = binary.BigEndian.Uint16(tcp[2:4])
	pkt.Seq = binary.BigEndian.Uint32(tcp[4:8])
	pkt.Ack = binary.BigEndian.Uint32(tcp[8:12])
	offsetFlags := binary.BigEndian.Uint16(tcp[12:14])
	pkt.DataOffset = int(offsetFlags>>12) * 4
	pkt.Flags = uint8(offsetFlags & 0x3F)
	pkt.Window = binary.BigEndian.Uint16(tcp[14:16])

	capturedLen := frame.CapturedLen
	if capturedLen == 0 {
		capturedLen = len(data)
	}
	pkt.PayloadLen = capturedLen - (tcpOffset + pkt.DataOffset)
	if pkt.PayloadLen < 0 {
		pkt.PayloadLen = 0
	}

	pkt.Timestamp = frame.Timestamp
	return pkt, Decoded
}
