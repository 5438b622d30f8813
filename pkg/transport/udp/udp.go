// Package udp is a concrete broadcast Transport for the swarmlist
// gossip protocol, standing in for the range-and-bearing radio link. It
// is out of the core's scope (spec section 1 names transport framing as
// an external collaborator) but is provided so the module is runnable
// end to end.
//
// Grounded on the teacher's cmd/server/main.go plain net/http style (no
// networking framework) and on discovery/etcd.go's background-goroutine
// receive-loop idiom (go cli.KeepAlive(...)).
package udp

import (
	"math/rand/v2"
	"net"
	"sync"
)

// Transport broadcasts fixed-size packets over UDP and implements
// replica.Transport.
type Transport struct {
	conn       *net.UDPConn
	broadcast  *net.UDPAddr
	packetSize int
	dropProb   float64

	mu       sync.Mutex
	callback func([]byte)

	closeOnce sync.Once
	done      chan struct{}
}

// Config configures a udp.Transport.
type Config struct {
	// ListenAddr is the local address to bind for receiving, e.g.
	// ":9000".
	ListenAddr string
	// BroadcastAddr is the destination address packets are sent to,
	// e.g. "255.255.255.255:9000" or a multicast group address.
	BroadcastAddr string
	// PacketSize is the fixed packet size this transport frames.
	PacketSize int
	// DropProbability simulates lossy broadcast by discarding a
	// fraction of inbound packets before they reach the callback.
	DropProbability float64
}

// New binds cfg.ListenAddr and prepares to send to cfg.BroadcastAddr. It
// does not start receiving until OnReceive registers a callback.
func New(cfg Config) (*Transport, error) {
	laddr, err := net.ResolveUDPAddr("udp", cfg.ListenAddr)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, err
	}
	raddr, err := net.ResolveUDPAddr("udp", cfg.BroadcastAddr)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &Transport{
		conn:       conn,
		broadcast:  raddr,
		packetSize: cfg.PacketSize,
		dropProb:   cfg.DropProbability,
		done:       make(chan struct{}),
	}, nil
}

// Broadcast sends packet to the configured broadcast address. packet
// must be exactly PacketSize() bytes.
func (t *Transport) Broadcast(packet []byte) {
	_, _ = t.conn.WriteToUDP(packet, t.broadcast)
}

// OnReceive registers callback and starts the background receive loop
// the first time it is called.
func (t *Transport) OnReceive(callback func(packet []byte)) {
	t.mu.Lock()
	first := t.callback == nil
	t.callback = callback
	t.mu.Unlock()

	if first {
		go t.receiveLoop()
	}
}

// PacketSize returns the fixed packet size this transport frames.
func (t *Transport) PacketSize() int { return t.packetSize }

// DropProbability returns the configured informational drop
// probability.
func (t *Transport) DropProbability() float64 { return t.dropProb }

// Close stops the receive loop and releases the socket.
func (t *Transport) Close() error {
	t.closeOnce.Do(func() { close(t.done) })
	return t.conn.Close()
}

func (t *Transport) receiveLoop() {
	buf := make([]byte, t.packetSize)
	for {
		n, _, err := t.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-t.done:
				return
			default:
				continue
			}
		}
		if t.dropProb > 0 && rand.Float64() < t.dropProb {
			continue
		}

		t.mu.Lock()
		cb := t.callback
		t.mu.Unlock()
		if cb == nil {
			continue
		}
		packet := make([]byte, n)
		copy(packet, buf[:n])
		cb(packet)
	}
}
