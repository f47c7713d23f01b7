package main

import (
	"ConnSpectra/internal/model"
	"ConnSpectra/pkg/pcap"
	"ConnSpectra/pkg/pcap/synth"
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestFlagString(t *testing.T) {
	if got := flagString(model.FlagSYN | model.FlagACK); got != "S." {
		t.Errorf("Expected S., got %s", got)
	}
	if got := flagString(0); got != "none" {
		t.Errorf("Expected none, got %s", got)
	}
}

func TestDump(t *testing.T) {
	var capture bytes.Buffer
	seg := synth.Segment{
		Timestamp: time.Unix(10, 0), SrcIP: "10.0.0.1", DstIP: "10.0.0.2", SrcPort: 1234, DstPort: 80,
		Seq: 7, Flags: model.FlagSYN, Window: 512,
	}
	if err := synth.WriteCapture(&capture, []synth.Segment{seg, seg, seg}); err != nil {
		t.Fatalf("WriteCapture failed: %v", err)
	}
	reader, err := pcap.NewReader(&capture)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}

	var out bytes.Buffer
	dump(&out, reader, 2)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %q", len(lines), out.String())
	}
	if !strings.Contains(lines[0], "10.0.0.1:1234 -> 10.0.0.2:80 flags=S seq=7") {
		t.Errorf("Unexpected line: %s", lines[0])
	}
}
