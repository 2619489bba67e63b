// Package hub provides a thread-safe websocket broadcast hub using a
// channel-based fan-out. The bridge runs two hubs: one streaming
// transform updates as JSON and one streaming camera frames as binary
// JPEG.
package hub

// MessageType selects the websocket frame type a message is sent as.
type MessageType int

const (
	// JSONMessage is a text frame carrying an encoded protocol message.
	JSONMessage MessageType = iota
	// BinaryMessage is a raw binary frame, used for JPEG camera frames.
	BinaryMessage
)

// Message is a single unit of data broadcast to every hub client.
type Message struct {
	Type MessageType
	Data []byte
}

// NewJSONMessage wraps pre-encoded JSON for broadcast.
func NewJSONMessage(data []byte) Message {
	return Message{Type: JSONMessage, Data: data}
}

// NewBinaryMessage wraps binary data, typically a JPEG camera frame.
func NewBinaryMessage(data []byte) Message {
	return Message{Type: BinaryMessage, Data: data}
}
