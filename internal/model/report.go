package model

// Class is the single category a connection is counted under in the summary.
type Class string

const (
	ClassReset      Class = "reset"
	ClassComplete   Class = "complete"
	ClassOpen       Class = "open"
	ClassPreCapture Class = "pre_capture" // no SYN seen: opened before the capture started
)

// ConnectionRecord is the per-connection view handed to report writers.
type ConnectionRecord struct {
	ID          int     `json:"id"`
	SrcIP       string  `json:"src_ip"`
	SrcPort     uint16  `json:"src_port"`
	DstIP       string  `json:"dst_ip"`
	DstPort     uint16  `json:"dst_port"`
	Status      string  `json:"status"`
	Class       Class   `json:"class"`
	StartTime   float64 `json:"start_time"`
	EndTime     float64 `json:"end_time"`
	Duration    float64 `json:"duration"`
	PacketsAToB uint64  `json:"packets_src_to_dst"`
	PacketsBToA uint64  `json:"packets_dst_to_src"`
	Packets     uint64  `json:"packets"`
	BytesAToB   uint64  `json:"bytes_src_to_dst"`
	BytesBToA   uint64  `json:"bytes_dst_to_src"`
	Bytes       uint64  `json:"bytes"`
	RTTSamples  int     `json:"rtt_samples"`
}

// Descriptive is a min/mean/max triple. All fields are zero for empty input.
type Descriptive struct {
	Min  float64 `json:"min"`
	Mean float64 `json:"mean"`
	Max  float64 `json:"max"`
}

// Summary holds the aggregate statistics over all connections.
type Summary struct {
	TotalConnections    int `json:"total_connections"`
	CompleteConnections int `json:"complete_connections"`
	ResetConnections    int `json:"reset_connections"`
	OpenConnections     int `json:"open_connections"`
	PreCaptureConns     int `json:"before_capture_connections"`

	Duration   Descriptive `json:"duration"`
	RTT        Descriptive `json:"rtt"`
	Packets    Descriptive `json:"packets"`
	WindowSize Descriptive `json:"window_size"`
}

// CaptureStats counts what happened to each frame read from the capture.
type CaptureStats struct {
	Frames        uint64 `json:"frames"`
	Decoded       uint64 `json:"decoded"`
	NotApplicable uint64 `json:"not_applicable"`
	Truncated     uint64 `json:"truncated"`
}

// Report is the finished, read-only result of one analysis run.
type Report struct {
	Source      string             `json:"source"`
	Capture     CaptureStats       `json:"capture"`
	Connections []ConnectionRecord `json:"connections"`
	Summary     Summary            `json:"summary"`
}
