package report

import (
	"ConnSpectra/internal/model"
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	log "github.com/sirupsen/logrus"
)

const separator = "________________________________________________"

// TextWriter renders the human-readable connection report.
type TextWriter struct {
	rootPath string
	out      io.Writer // nil: write to <rootPath>/<timestamp>/report.txt
}

// NewTextWriter creates a text writer. An empty path or "-" writes to stdout,
// any other path is the root directory of timestamped report files.
func NewTextWriter(path string) model.Writer {
	if path == "" || path == "-" {
		return &TextWriter{out: os.Stdout}
	}
	return &TextWriter{rootPath: path}
}

// Name returns the writer type.
func (w *TextWriter) Name() string {
	return "text"
}

// Write renders the report to stdout or to a timestamped report.txt.
func (w *TextWriter) Write(report *model.Report, timestamp string) error {
	if w.out != nil {
		return Render(w.out, report)
	}

	dir := filepath.Join(w.rootPath, timestamp)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	filePath := filepath.Join(dir, "report.txt")
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create report file '%s': %w", filePath, err)
	}
	defer file.Close()

	if err := Render(file, report); err != nil {
		return err
	}
	log.Infof("Wrote text report for %d connections to %s", len(report.Connections), filePath)
	return nil
}

// Render writes the report in four parts: connection count, per-connection
// details, class counts and the aggregate statistics.
func Render(out io.Writer, report *model.Report) error {
	w := bufio.NewWriter(out)
	s := report.Summary

	fmt.Fprintln(w, "A) Total number of connections:", s.TotalConnections)
	fmt.Fprintln(w, separator)

	fmt.Fprint(w, "\nB) Connection's details\n\n")
	for _, c := range report.Connections {
		fmt.Fprintf(w, "Connection %d:\n", c.ID)
		fmt.Fprintf(w, "Source Address: %s\n", c.SrcIP)
		fmt.Fprintf(w, "Destination Address: %s\n", c.DstIP)
		fmt.Fprintf(w, "Source Port: %d\n", c.SrcPort)
		fmt.Fprintf(w, "Destination Port: %d\n", c.DstPort)
		fmt.Fprintf(w, "Status: %s\n", c.Status)
		fmt.Fprintf(w, "Start time: %s seconds\n", number(c.StartTime))
		fmt.Fprintf(w, "End Time: %s seconds\n", number(c.EndTime))
		fmt.Fprintf(w, "Duration: %s seconds\n", number(c.Duration))
		fmt.Fprintf(w, "Number of packets sent from Source to Destination: %d\n", c.PacketsAToB)
		fmt.Fprintf(w, "Number of packets sent from Destination to Source: %d\n", c.PacketsBToA)
		fmt.Fprintf(w, "Total number of packets: %d\n", c.Packets)
		fmt.Fprintf(w, "Number of data bytes sent from Source to Destination: %d\n", c.BytesAToB)
		fmt.Fprintf(w, "Number of data bytes sent from Destination to Source: %d\n", c.BytesBToA)
		fmt.Fprintf(w, "Total number of data bytes: %d\n", c.Bytes)
		fmt.Fprint(w, "END\n++++++++++++++++++++++++++++++++\n")
	}

	fmt.Fprint(w, "\nC) General\n\n")
	fmt.Fprintln(w, "Total number of complete TCP connections:", s.CompleteConnections)
	fmt.Fprintln(w, "Number of reset TCP connections:", s.ResetConnections)
	fmt.Fprintln(w, "Number of TCP connections that were still open when the trace capture ended:", s.OpenConnections)
	fmt.Fprintln(w, "Number of TCP connections established before the trace capture started:", s.PreCaptureConns)
	fmt.Fprintln(w, separator)

	fmt.Fprint(w, "\nD) Complete TCP connections\n\n")
	fmt.Fprintf(w, "Minimum time duration: %s seconds\n", number(s.Duration.Min))
	fmt.Fprintf(w, "Mean time duration: %s seconds\n", number(s.Duration.Mean))
	fmt.Fprintf(w, "Maximum time duration: %s seconds\n", number(s.Duration.Max))

	writeDescriptive(w, "RTT value", s.RTT)
	writeDescriptive(w, "number of packets including both directions", s.Packets)
	writeDescriptive(w, "receive window size including both directions", s.WindowSize)

	return w.Flush()
}

func writeDescriptive(w io.Writer, what string, d model.Descriptive) {
	fmt.Fprintf(w, "\nMinimum %s: %s\n", what, number(d.Min))
	fmt.Fprintf(w, "Mean %s: %s\n", what, number(d.Mean))
	fmt.Fprintf(w, "Maximum %s: %s\n", what, number(d.Max))
}

// number formats a float in plain decimal notation with the fewest digits that round-trip.
func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
