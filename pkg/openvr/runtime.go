package openvr

// EventType identifies runtime events the device manager reacts to.
type EventType int

const (
	EventDeviceActivated EventType = iota
	EventDeviceDeactivated
	EventQuit
)

// Event is a queued runtime event.
type Event struct {
	Type        EventType
	DeviceIndex uint32
}

// DevicePose is one raw pose sample from a batched refresh, indexed by
// device slot. Valid and TrackingOK gate whether the sample is usable.
type DevicePose struct {
	Pose       Pose
	Valid      bool
	TrackingOK bool
}

// Runtime is the low-level tracking runtime surface the DevicesManager
// sits on. Implementations must be safe for use from the manager's
// event pump goroutine and the caller's tick goroutine.
type Runtime interface {
	// Connected reports whether a device slot currently holds a
	// connected device.
	Connected(index uint32) bool

	// Serial returns the stable serial-number string of a device.
	Serial(index uint32) (string, error)

	// Class returns the device class of a slot.
	Class(index uint32) DeviceClass

	// MaxDeviceCount is the upper bound of device slots to scan.
	MaxDeviceCount() uint32

	// ComputePoses performs one batched pose refresh for the first
	// count device slots relative to the given origin.
	ComputePoses(origin TrackingOrigin, count uint32) ([]DevicePose, error)

	// ResetSeatedZero re-zeros the seated reference to the current
	// head pose.
	ResetSeatedZero() error

	// PollEvent pops the next queued event, if any.
	PollEvent() (Event, bool)

	// AcknowledgeQuit tells the runtime the quit event was seen and
	// teardown work is in progress.
	AcknowledgeQuit()

	// Shutdown tears the runtime connection down.
	Shutdown()
}

// StreamHandle identifies an acquired camera video stream.
// The zero value is never a valid handle.
type StreamHandle uint64

// FrameHeader carries the metadata of one camera frame. Sequence
// increases with every frame the camera produces; consumers use it to
// detect frames they have already seen.
type FrameHeader struct {
	Width         uint32
	Height        uint32
	BytesPerPixel uint32
	Sequence      uint32
}

// RequiredBytes is the buffer size one frame with this header needs.
func (h FrameHeader) RequiredBytes() int {
	return int(h.Width) * int(h.Height) * int(h.BytesPerPixel)
}

// CameraService is the tracked-camera surface of the runtime.
type CameraService interface {
	// HasCamera reports whether the device in the given slot carries
	// a tracked camera.
	HasCamera(index uint32) (bool, error)

	// FirmwareDescription returns the camera firmware string. Reading
	// it doubles as a communication check during open.
	FirmwareDescription(index uint32) (string, error)

	// FrameSize returns the undistorted frame bounds and the buffer
	// size one frame requires.
	FrameSize(index uint32) (width, height, bufferBytes uint32, err error)

	// AcquireStream starts video streaming for the device.
	AcquireStream(index uint32) (StreamHandle, error)

	// ReleaseStream stops a previously acquired stream.
	ReleaseStream(h StreamHandle) error

	// FrameHeader fetches only the current frame header. It is cheap
	// and copies no pixel data.
	FrameHeader(h StreamHandle) (FrameHeader, error)

	// FrameBuffer copies the current frame into dst and returns its
	// header. dst must be at least the required buffer size.
	FrameBuffer(h StreamHandle, dst []byte) (FrameHeader, error)
}
