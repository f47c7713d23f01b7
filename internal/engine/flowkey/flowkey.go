// Package flowkey maps a packet's endpoint pair to a direction-agnostic connection key.
package flowkey

import "ConnSpectra/internal/model"

// Resolve returns the canonical key for the src/dst pair and whether src is
// endpoint A or endpoint B of that key. Endpoints are ordered by address
// string, then port; the smaller one becomes A.
func Resolve(src, dst model.Endpoint) (model.ConnectionKey, model.Direction) {
	if dst.Less(src) {
		return model.ConnectionKey{A: dst, B: src}, model.BToA
	}
	return model.ConnectionKey{A: src, B: dst}, model.AToB
}

// ForPacket resolves the key of a decoded packet.
func ForPacket(pkt *model.DecodedPacket) (model.ConnectionKey, model.Direction) {
	return Resolve(pkt.Source(), pkt.Destination())
}
