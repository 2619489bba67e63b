package sink

import (
	"github.com/vrkit/go-vrbridge/internal/log"
	"github.com/vrkit/go-vrbridge/pkg/hub"
	"github.com/vrkit/go-vrbridge/pkg/protocol"
	"github.com/vrkit/go-vrbridge/pkg/transform"
)

// HubSink broadcasts transforms as JSON messages to all websocket
// clients of a hub (the dashboard's live transform stream).
type HubSink struct {
	hub *hub.Hub
}

var _ transform.Sink = (*HubSink)(nil)

// NewHubSink creates a sink broadcasting into the given hub.
func NewHubSink(h *hub.Hub) *HubSink {
	return &HubSink{hub: h}
}

func (s *HubSink) Publish(child, parent string, m transform.Matrix4) {
	msg, err := protocol.NewTransformMessage(child, parent, [16]float64(m))
	if err != nil {
		log.Error("failed to build transform message", "child", child, "error", err)
		return
	}
	data, err := msg.Bytes()
	if err != nil {
		log.Error("failed to encode transform message", "child", child, "error", err)
		return
	}
	s.hub.Broadcast(hub.NewJSONMessage(data))
}
