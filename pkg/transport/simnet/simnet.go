// Package simnet provides an in-process channel transport for tests and
// the in-process simulator, standing in for the radio/range-and-bearing
// transport the core treats as an external collaborator. Grounded on
// the teacher's pkg/gossip/doc.go, which names exactly this shape ("an
// in-process channel transport (for testing)") without implementing it.
package simnet

import (
	"math/rand/v2"
	"sync"
)

// Medium is a shared broadcast domain: every Transport registered on
// the same Medium receives every other Transport's broadcasts, modulo
// the configured drop probability. It is the in-process analogue of the
// shared radio air.
type Medium struct {
	mu         sync.Mutex
	members    []*Transport
	packetSize int
	dropProb   float64
}

// NewMedium creates a shared medium that frames packets of packetSize
// bytes and drops a broadcast with probability dropProb (0..1) per
// recipient.
func NewMedium(packetSize int, dropProb float64) *Medium {
	return &Medium{packetSize: packetSize, dropProb: dropProb}
}

// NewTransport attaches a new Transport to the medium.
func (m *Medium) NewTransport() *Transport {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &Transport{medium: m}
	m.members = append(m.members, t)
	return t
}

func (m *Medium) broadcast(from *Transport, packet []byte) {
	m.mu.Lock()
	recipients := make([]*Transport, len(m.members))
	copy(recipients, m.members)
	m.mu.Unlock()

	for _, t := range recipients {
		if t == from {
			continue
		}
		if m.dropProb > 0 && rand.Float64() < m.dropProb {
			continue
		}
		t.deliver(packet)
	}
}

// Transport is one participant's view of a shared Medium. It implements
// replica.Transport.
type Transport struct {
	medium *Medium

	mu       sync.Mutex
	callback func([]byte)
}

// Broadcast hands packet to every other Transport on the medium,
// subject to the medium's drop probability.
func (t *Transport) Broadcast(packet []byte) {
	t.medium.broadcast(t, packet)
}

// OnReceive registers the callback invoked once per delivered packet.
func (t *Transport) OnReceive(callback func(packet []byte)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.callback = callback
}

// PacketSize returns the medium's configured packet size.
func (t *Transport) PacketSize() int { return t.medium.packetSize }

// DropProbability returns the medium's configured drop probability.
// Informational only: the medium applies the drop itself.
func (t *Transport) DropProbability() float64 { return t.medium.dropProb }

func (t *Transport) deliver(packet []byte) {
	t.mu.Lock()
	cb := t.callback
	t.mu.Unlock()
	if cb != nil {
		// Copy: the medium reuses the slice across recipients is not
		// guaranteed by the sender, but a decoder that slices into the
		// packet without copying should not alias another recipient's
		// buffer.
		cp := make([]byte, len(packet))
		copy(cp, packet)
		cb(cp)
	}
}
