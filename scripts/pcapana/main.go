package main

import (
	"ConnSpectra/internal/engine/protocol"
	"ConnSpectra/internal/model"
	"ConnSpectra/pkg/pcap"
	"flag"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

func main() {
	limit := flag.Int("n", 5, "Number of frames to print (0 for all)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-n N] <path_to_pcap_file>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	reader, err := pcap.Open(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	defer reader.Close()

	dump(os.Stdout, reader, *limit)
	if err := reader.Err(); err != nil {
		log.Warnf("Capture ended early: %v", err)
	}
}

// dump prints one line per frame with its decode outcome.
func dump(out io.Writer, reader *pcap.Reader, limit int) {
	for i := 1; limit <= 0 || i <= limit; i++ {
		frame, ok := reader.Next()
		if !ok {
			return
		}
		pkt, outcome := protocol.ParsePacket(frame)
		if outcome != protocol.Decoded {
			fmt.Fprintf(out, "#%d [%.6f] %s (%d bytes captured)\n", i, frame.Timestamp, outcome, frame.CapturedLen)
			continue
		}
		fmt.Fprintf(out, "#%d [%.6f] %s -> %s flags=%s seq=%d ack=%d win=%d payload=%d\n",
			i, pkt.Timestamp, pkt.Source(), pkt.Destination(), flagString(pkt.Flags),
			pkt.Seq, pkt.Ack, pkt.Window, pkt.PayloadLen)
	}
}

func flagString(flags uint8) string {
	names := []struct {
		bit  uint8
		name byte
	}{
		{model.FlagSYN, 'S'}, {model.FlagACK, '.'}, {model.FlagFIN, 'F'},
		{model.FlagRST, 'R'}, {model.FlagPSH, 'P'}, {model.FlagURG, 'U'},
	}
	var b []byte
	for _, n := range names {
		if flags&n.bit != 0 {
			b = append(b, n.name)
		}
	}
	if len(b) == 0 {
		return "none"
	}
	return string(b)
}
