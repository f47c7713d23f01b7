package main

import (
	"ConnSpectra/internal/model"
	"ConnSpectra/pkg/pcap/synth"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
)

// kind is the shape of a generated conversation.
type kind int

const (
	complete  kind = iota // handshake, data, both FINs
	reset                 // handshake, data, RST from the server
	open                  // handshake and data, no FIN
	midstream             // data only: started before the capture
	numKinds
)

func (k kind) String() string {
	return [...]string{"complete", "reset", "open", "midstream"}[k]
}

func main() {
	outputFile := flag.String("o", "test.pcap", "Output pcap file path")
	count := flag.Int("c", 100, "Number of conversations to generate")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	f, err := os.Create(*outputFile)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()

	counts, err := generate(f, *count, rand.New(rand.NewSource(*seed)))
	if err != nil {
		log.Fatalf("Failed to generate capture: %v", err)
	}
	log.WithFields(log.Fields{
		"complete":  counts[complete],
		"reset":     counts[reset],
		"open":      counts[open],
		"midstream": counts[midstream],
	}).Infof("Wrote %d conversations to %s", *count, *outputFile)
}

// generate writes n interleaved conversations and returns how many of each kind it wrote.
func generate(out io.Writer, n int, rng *rand.Rand) (map[kind]int, error) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	counts := make(map[kind]int)
	var segments []synth.Segment

	for i := 0; i < n; i++ {
		k := kind(rng.Intn(int(numKinds)))
		counts[k]++
		start := base.Add(time.Duration(rng.Intn(60_000)) * time.Millisecond)
		segments = append(segments, conversation(k, i, start, rng)...)
	}

	sort.SliceStable(segments, func(a, b int) bool {
		return segments[a].Timestamp.Before(segments[b].Timestamp)
	})
	return counts, synth.WriteCapture(out, segments)
}

// conversation builds the segments of one client/server exchange. Each
// conversation gets its own client address so connections never collide.
func conversation(k kind, i int, start time.Time, rng *rand.Rand) []synth.Segment {
	clientIP := fmt.Sprintf("10.%d.%d.%d", (i>>16)&0xFF, (i>>8)&0xFF, i&0xFF)
	serverIP := "192.168.100.1"
	clientPort := uint16(1024 + rng.Intn(60000))
	rtt := time.Duration(1+rng.Intn(50)) * time.Millisecond
	clientSeq, serverSeq := rng.Uint32()>>1, rng.Uint32()>>1

	now := start
	var segs []synth.Segment
	send := func(fromClient bool, flags uint8, payload int) {
		seg := synth.Segment{
			Timestamp: now,
			Flags:     flags,
			Payload:   make([]byte, payload),
		}
		if fromClient {
			seg.SrcIP, seg.DstIP, seg.SrcPort, seg.DstPort = clientIP, serverIP, clientPort, 443
			seg.Seq, seg.Ack, seg.Window = clientSeq, serverSeq, 64240
			clientSeq += uint32(payload)
		} else {
			seg.SrcIP, seg.DstIP, seg.SrcPort, seg.DstPort = serverIP, clientIP, 443, clientPort
			seg.Seq, seg.Ack, seg.Window = serverSeq, clientSeq, 65160
			serverSeq += uint32(payload)
		}
		segs = append(segs, seg)
		now = now.Add(rtt / 2)
	}

	if k != midstream {
		send(true, model.FlagSYN, 0)
		clientSeq++
		send(false, model.FlagSYN|model.FlagACK, 0)
		serverSeq++
		send(true, model.FlagACK, 0)
	}

	for r := rng.Intn(4) + 1; r > 0; r-- {
		send(true, model.FlagACK|model.FlagPSH, 100+rng.Intn(400))
		send(false, model.FlagACK|model.FlagPSH, 200+rng.Intn(1200))
		send(true, model.FlagACK, 0)
	}

	switch k {
	case complete:
		send(true, model.FlagFIN|model.FlagACK, 0)
		clientSeq++
		send(false, model.FlagFIN|model.FlagACK, 0)
		serverSeq++
		send(true, model.FlagACK, 0)
	case reset:
		send(false, model.FlagRST, 0)
	}
	return segs
}
