package statistic

import (
	"ConnSpectra/internal/model"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Classify puts a connection into exactly one class.
// Precedence is reset > complete > open > pre_capture.
func Classify(conn *model.ConnectionState) model.Class {
	switch {
	case conn.Reset:
		return model.ClassReset
	case conn.SynCount >= 1 && conn.FinCount >= 1:
		return model.ClassComplete
	case conn.SynCount >= 1:
		return model.ClassOpen
	default:
		return model.ClassPreCapture
	}
}

// Status returns the short status string of a connection: "R" once reset,
// otherwise "S<syn count>F<fin count>".
func Status(conn *model.ConnectionState) string {
	if conn.Reset {
		return "R"
	}
	return fmt.Sprintf("S%dF%d", conn.SynCount, conn.FinCount)
}

// Aggregate computes the summary over a finished connection table.
func Aggregate(table *model.ConnectionTable) model.Summary {
	var (
		summary   model.Summary
		durations []float64
		rtts      []float64
		windows   []float64
		packets   []float64
	)

	for _, conn := range table.States() {
		summary.TotalConnections++

		switch Classify(conn) {
		case model.ClassReset:
			summary.ResetConnections++
		case model.ClassComplete:
			summary.CompleteConnections++
			if conn.HasStart && conn.HasEnd {
				durations = append(durations, conn.EndTime-conn.StartTime)
			}
		case model.ClassOpen:
			summary.OpenConnections++
		case model.ClassPreCapture:
			summary.PreCaptureConns++
		}

		packets = append(packets, float64(conn.TotalPackets()))
		rtts = append(rtts, conn.RTTSamples...)
		for _, w := range conn.WindowSizes {
			windows = append(windows, float64(w))
		}
	}

	summary.Duration = Describe(durations)
	summary.RTT = Describe(rtts)
	summary.Packets = Describe(packets)
	summary.WindowSize = Describe(windows)
	return summary
}

// Describe returns min, mean and max of values, or zeros when values is empty.
func Describe(values []float64) model.Descriptive {
	if len(values) == 0 {
		return model.Descriptive{}
	}
	return model.Descriptive{
		Min:  floats.Min(values),
		Mean: stat.Mean(values, nil),
		Max:  floats.Max(values),
	}
}

// Records builds the per-connection report records in first-seen order.
func Records(table *model.ConnectionTable) []model.ConnectionRecord {
	states := table.States()
	records := make([]model.ConnectionRecord, 0, len(states))
	for i, conn := range states {
		start := 0.0
		if conn.HasStart {
			start = conn.StartTime
		}
		end := start
		if conn.HasEnd {
			end = conn.EndTime
		}

		records = append(records, model.ConnectionRecord{
			ID:          i + 1,
			SrcIP:       conn.Key.A.Addr,
			SrcPort:     conn.Key.A.Port,
			DstIP:       conn.Key.B.Addr,
			DstPort:     conn.Key.B.Port,
			Status:      Status(conn),
			Class:       Classify(conn),
			StartTime:   start,
			EndTime:     end,
			Duration:    end - start,
			PacketsAToB: conn.PacketsAToB,
			PacketsBToA: conn.PacketsBToA,
			Packets:     conn.TotalPackets(),
			BytesAToB:   conn.BytesAToB,
			BytesBToA:   conn.BytesBToA,
			Bytes:       conn.TotalBytes(),
			RTTSamples:  len(conn.RTTSamples),
		})
	}
	return records
}
