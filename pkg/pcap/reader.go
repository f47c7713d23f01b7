package pcap

import (
	"ConnSpectra/internal/model"
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	log "github.com/sirupsen/logrus"
)

const (
	globalHeaderLen = 24
	recordHeaderLen = 16

	magicMicroseconds = 0xA1B2C3D4
	magicNanoseconds  = 0xA1B23C4D
)

// Reader reads frames from a legacy pcap capture.
//
// The global header is validated by pcapgo. Frame records are read here:
// pcapgo stops at any record whose captured length exceeds the snap length or
// the original length, while such frames are still returned by this reader.
type Reader struct {
	r         io.Reader
	closer    io.Closer
	byteOrder binary.ByteOrder
	fracUnits float64 // sub-second timestamp units per second
	linkType  layers.LinkType
	hdr       [recordHeaderLen]byte
	done      bool
	err       error
}

// Open opens the capture file at filePath and consumes its global header.
func Open(filePath string) (*Reader, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file: %w", err)
	}
	r, err := NewReader(bufio.NewReader(file))
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read capture header of '%s': %w", filePath, err)
	}
	r.closer = file
	return r, nil
}

// NewReader creates a reader over a capture stream. The global header is read
// and validated here; the byte order and timestamp resolution come from its magic number.
func NewReader(r io.Reader) (*Reader, error) {
	header := make([]byte, globalHeaderLen)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("capture global header too short: %w", err)
	}
	source, err := pcapgo.NewReader(bytes.NewReader(header))
	if err != nil {
		return nil, err
	}

	reader := &Reader{r: r, linkType: source.LinkType()}
	switch binary.LittleEndian.Uint32(header[0:4]) {
	case magicMicroseconds:
		reader.byteOrder, reader.fracUnits = binary.LittleEndian, 1e6
	case magicNanoseconds:
		reader.byteOrder, reader.fracUnits = binary.LittleEndian, 1e9
	default:
		// pcapgo accepted the magic, so it is one of the big-endian forms.
		reader.byteOrder = binary.BigEndian
		reader.fracUnits = 1e6
		if binary.BigEndian.Uint32(header[0:4]) == magicNanoseconds {
			reader.fracUnits = 1e9
		}
	}

	if reader.linkType != layers.LinkTypeEthernet {
		log.Warnf("Capture link type is %s, frames will still be decoded as Ethernet", reader.linkType)
	}
	return reader, nil
}

// LinkType returns the link type named in the global header.
func (r *Reader) LinkType() layers.LinkType {
	return r.linkType
}

// Close closes the underlying file, if the reader owns one.
func (r *Reader) Close() {
	if r.closer != nil {
		r.closer.Close()
	}
}

// Next returns the next frame. It returns false once the stream is exhausted,
// including when the last frame header or payload is cut short. The snap length
// and the original length do not limit how many bytes a record may carry.
func (r *Reader) Next() (model.CaptureFrame, bool) {
	if r.done {
		return model.CaptureFrame{}, false
	}

	if _, err := io.ReadFull(r.r, r.hdr[:]); err != nil {
		r.stop(err)
		return model.CaptureFrame{}, false
	}
	sec := r.byteOrder.Uint32(r.hdr[0:4])
	frac := r.byteOrder.Uint32(r.hdr[4:8])
	inclLen := r.byteOrder.Uint32(r.hdr[8:12])
	origLen := r.byteOrder.Uint32(r.hdr[12:16])

	// Grows with the bytes actually present, so a corrupt length cannot force a huge allocation.
	data, err := io.ReadAll(io.LimitReader(r.r, int64(inclLen)))
	if err != nil {
		r.stop(err)
		return model.CaptureFrame{}, false
	}
	if uint32(len(data)) < inclLen {
		r.done = true
		log.Debugf("Last frame cut short: %d of %d bytes", len(data), inclLen)
		return model.CaptureFrame{}, false
	}
	if inclLen > origLen {
		log.Debugf("Frame carries %d bytes but claims an original length of %d", inclLen, origLen)
	}

	return model.CaptureFrame{
		Timestamp:   float64(sec) + float64(frac)/r.fracUnits,
		CapturedLen: int(inclLen),
		OriginalLen: int(origLen),
		Data:        data,
	}, true
}

func (r *Reader) stop(err error) {
	r.done = true
	if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		r.err = err
		log.Warnf("Stopping at unreadable frame record: %v", err)
	}
}

// Err returns the I/O error that stopped reading early, or nil when the stream
// ended normally or was truncated.
func (r *Reader) Err() error {
	return r.err
}
