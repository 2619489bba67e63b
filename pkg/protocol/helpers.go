package protocol

// NewTransformMessage creates a transform message
func NewTransformMessage(child, parent string, matrix [16]float64) (*Message, error) {
	return NewMessage(TypeTransform, TransformData{
		Child:  child,
		Parent: parent,
		Matrix: matrix,
	})
}

// NewFrameMessage creates a frame metadata message
func NewFrameMessage(width, height int, sequence uint32) (*Message, error) {
	return NewMessage(TypeFrame, FrameData{
		Width:    width,
		Height:   height,
		Format:   "jpeg",
		Sequence: sequence,
	})
}

// NewStatusMessage creates a status snapshot message
func NewStatusMessage(status StatusData) (*Message, error) {
	return NewMessage(TypeStatus, status)
}

// NewPongMessage creates a pong response
func NewPongMessage() (*Message, error) {
	return NewMessage(TypePong, nil)
}
