package sink

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/pebbe/zmq4"

	"github.com/vrkit/go-vrbridge/internal/log"
	"github.com/vrkit/go-vrbridge/pkg/transform"
)

// ZMQPub publishes CBOR-encoded transform records on a ZeroMQ PUB
// socket. Subscribers that are slow or absent never block publication.
type ZMQPub struct {
	socket *zmq4.Socket
}

var _ transform.Sink = (*ZMQPub)(nil)

// NewZMQPub binds a PUB socket to the given endpoint,
// e.g. "tcp://*:5556".
func NewZMQPub(endpoint string) (*ZMQPub, error) {
	socket, err := zmq4.NewSocket(zmq4.PUB)
	if err != nil {
		return nil, fmt.Errorf("failed to create PUB socket: %w", err)
	}
	if err := socket.Bind(endpoint); err != nil {
		_ = socket.Close()
		return nil, fmt.Errorf("failed to bind %s: %w", endpoint, err)
	}
	log.Info("transform publisher bound", "endpoint", endpoint)
	return &ZMQPub{socket: socket}, nil
}

func (z *ZMQPub) Publish(child, parent string, m transform.Matrix4) {
	payload, err := cbor.Marshal(transform.Record{
		Child:  child,
		Parent: parent,
		Matrix: m,
	})
	if err != nil {
		log.Error("failed to encode transform record", "child", child, "error", err)
		return
	}
	if _, err := z.socket.SendBytes(payload, zmq4.DONTWAIT); err != nil {
		log.Warn("failed to send transform record", "child", child, "error", err)
	}
}

// Close releases the socket.
func (z *ZMQPub) Close() error {
	return z.socket.Close()
}
