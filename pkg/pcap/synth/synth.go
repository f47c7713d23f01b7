// Package synth builds Ethernet/IPv4/TCP frames and legacy pcap captures from
// segment descriptions. It backs the capture generator and the package tests.
package synth

import (
	"ConnSpectra/internal/model"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

const ethernetHeaderLen = 14

var (
	srcMAC = net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	dstMAC = net.HardwareAddr{0x00, 0x66, 0x77, 0x88, 0x99, 0xAA}
)

// Segment describes one TCP segment on the wire.
type Segment struct {
	Timestamp time.Time
	SrcIP     string
	DstIP     string
	SrcPort   uint16
	DstPort   uint16
	Seq       uint32
	Ack       uint32
	Flags     uint8 // model.Flag* bits
	Window    uint16
	Payload   []byte
}

// BuildFrame serializes the segment into an Ethernet frame. The frame is not
// padded to the Ethernet minimum, so its payload byte count is exactly len(Payload).
func BuildFrame(seg Segment) ([]byte, error) {
	srcIP := net.ParseIP(seg.SrcIP).To4()
	dstIP := net.ParseIP(seg.DstIP).To4()
	if srcIP == nil || dstIP == nil {
		return nil, fmt.Errorf("invalid IPv4 address pair %q -> %q", seg.SrcIP, seg.DstIP)
	}

	ipLayer := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    srcIP,
		DstIP:    dstIP,
	}
	tcpLayer := &layers.TCP{
		SrcPort: layers.TCPPort(seg.SrcPort),
		DstPort: layers.TCPPort(seg.DstPort),
		Seq:     seg.Seq,
		Ack:     seg.Ack,
		Window:  seg.Window,
		FIN:     seg.Flags&model.FlagFIN != 0,
		SYN:     seg.Flags&model.FlagSYN != 0,
		RST:     seg.Flags&model.FlagRST != 0,
		PSH:     seg.Flags&model.FlagPSH != 0,
		ACK:     seg.Flags&model.FlagACK != 0,
		URG:     seg.Flags&model.FlagURG != 0,
	}
	if err := tcpLayer.SetNetworkLayerForChecksum(ipLayer); err != nil {
		return nil, err
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{
		ComputeChecksums: true,
		FixLengths:       true,
	}
	if err := gopacket.SerializeLayers(buf, opts, ipLayer, tcpLayer, gopacket.Payload(seg.Payload)); err != nil {
		return nil, fmt.Errorf("failed to serialize layers: %w", err)
	}

	// layers.Ethernet pads short frames to 60 bytes, so the link header is written by hand.
	eth, err := buf.PrependBytes(ethernetHeaderLen)
	if err != nil {
		return nil, err
	}
	copy(eth[0:6], dstMAC)
	copy(eth[6:12], srcMAC)
	binary.BigEndian.PutUint16(eth[12:14], uint16(layers.EthernetTypeIPv4))

	return buf.Bytes(), nil
}

// Frame is a raw frame with its capture time.
type Frame struct {
	Timestamp time.Time
	Data      []byte
}

// CaptureWriter writes frames as a legacy microsecond pcap with an Ethernet link type.
type CaptureWriter struct {
	w *pcapgo.Writer
}

// NewCaptureWriter writes the global header and returns a writer for frames.
func NewCaptureWriter(out io.Writer) (*CaptureWriter, error) {
	w := pcapgo.NewWriter(out)
	if err := w.WriteFileHeader(65536, layers.LinkTypeEthernet); err != nil {
		return nil, fmt.Errorf("failed to write pcap header: %w", err)
	}
	return &CaptureWriter{w: w}, nil
}

// WriteFrame appends a raw frame.
func (c *CaptureWriter) WriteFrame(f Frame) error {
	ci := gopacket.CaptureInfo{
		Timestamp:     f.Timestamp,
		CaptureLength: len(f.Data),
		Length:        len(f.Data),
	}
	return c.w.WritePacket(ci, f.Data)
}

// WriteSegment builds the segment's frame and appends it.
func (c *CaptureWriter) WriteSegment(seg Segment) error {
	data, err := BuildFrame(seg)
	if err != nil {
		return err
	}
	return c.WriteFrame(Frame{Timestamp: seg.Timestamp, Data: data})
}

// WriteCapture writes a complete capture holding the given segments in order.
func WriteCapture(out io.Writer, segments []Segment) error {
	cw, err := NewCaptureWriter(out)
	if err != nil {
		return err
	}
	for i, seg := range segments {
		if err := cw.WriteSegment(seg); err != nil {
			return fmt.Errorf("failed to write segment %d: %w", i, err)
		}
	}
	return nil
}
