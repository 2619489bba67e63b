package sink

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vrkit/go-vrbridge/internal/log"
	"github.com/vrkit/go-vrbridge/pkg/protocol"
	"github.com/vrkit/go-vrbridge/pkg/transform"
)

const (
	dialTimeout    = 10 * time.Second
	writeTimeout   = 5 * time.Second
	redialInterval = 5 * time.Second
)

// WSClient pushes transform messages to a remote transform server over
// a websocket connection. Delivery failures are logged and the
// connection is re-dialed lazily; publication never blocks on a dead
// remote beyond the write timeout.
type WSClient struct {
	url string

	mu       sync.Mutex
	conn     *websocket.Conn
	lastDial time.Time
}

var _ transform.Sink = (*WSClient)(nil)

// NewWSClient dials the remote transform server,
// e.g. "ws://host:8443/ws/transforms".
func NewWSClient(url string) (*WSClient, error) {
	c := &WSClient{url: url}
	if err := c.dial(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *WSClient) dial() error {
	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.Dial(c.url, nil)
	if err != nil {
		return fmt.Errorf("transform server connect failed: %w", err)
	}
	c.conn = conn
	c.lastDial = time.Now()
	log.Info("connected to transform server", "url", c.url)
	return nil
}

func (c *WSClient) Publish(child, parent string, m transform.Matrix4) {
	msg, err := protocol.NewTransformMessage(child, parent, [16]float64(m))
	if err != nil {
		log.Error("failed to build transform message", "child", child, "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		if time.Since(c.lastDial) < redialInterval {
			return
		}
		if err := c.dial(); err != nil {
			c.lastDial = time.Now()
			log.Warn("transform server redial failed", "error", err)
			return
		}
	}

	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(msg); err != nil {
		log.Warn("transform publish failed, dropping connection", "error", err)
		c.conn.Close()
		c.conn = nil
	}
}

// Close closes the connection.
func (c *WSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
