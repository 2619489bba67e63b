package openvr

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"
)

// SimDevice describes one slot of the simulated runtime.
type SimDevice struct {
	Serial    string
	Class     DeviceClass
	Connected bool
}

// SimRuntime is an in-process tracking runtime. Devices move on orbits
// around the origin so downstream consumers see changing poses. It
// exists so the bridge binaries and examples run without SteamVR.
type SimRuntime struct {
	mu      sync.Mutex
	devices []SimDevice
	events  []Event
	start   time.Time
	quit    bool
}

var _ Runtime = (*SimRuntime)(nil)

// DefaultSimDevices is the device set a fresh simulator starts with:
// a headset, two controllers, a generic tracker and one base station
// (unsupported class, never managed).
func DefaultSimDevices() []SimDevice {
	return []SimDevice{
		{Serial: "SIM-HMD-0", Class: ClassHMD, Connected: true},
		{Serial: "SIM-CTRL-L", Class: ClassController, Connected: true},
		{Serial: "SIM-CTRL-R", Class: ClassController, Connected: true},
		{Serial: "SIM-TRACKER-0", Class: ClassGenericTracker, Connected: true},
		{Serial: "SIM-BASE-0", Class: ClassTrackingReference, Connected: true},
	}
}

// NewSimRuntime creates a simulator with the given devices, or the
// default set when none are given.
func NewSimRuntime(devices ...SimDevice) *SimRuntime {
	if len(devices) == 0 {
		devices = DefaultSimDevices()
	}
	return &SimRuntime{
		devices: devices,
		start:   time.Now(),
	}
}

func (s *SimRuntime) Connected(index uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(index) >= len(s.devices) {
		return false
	}
	return s.devices[index].Connected
}

func (s *SimRuntime) Serial(index uint32) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(index) >= len(s.devices) {
		return "", fmt.Errorf("no device in slot %d", index)
	}
	return s.devices[index].Serial, nil
}

func (s *SimRuntime) Class(index uint32) DeviceClass {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(index) >= len(s.devices) {
		return ClassInvalid
	}
	return s.devices[index].Class
}

func (s *SimRuntime) MaxDeviceCount() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint32(len(s.devices))
}

// ComputePoses places each connected device on a slow orbit. The
// standing origin is offset upwards relative to seated so the origin
// modes are distinguishable in published data.
func (s *SimRuntime) ComputePoses(origin TrackingOrigin, count uint32) ([]DevicePose, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.quit {
		return nil, errors.New("runtime has quit")
	}

	elapsed := time.Since(s.start).Seconds()
	heightOffset := 0.0
	if origin == OriginStanding {
		heightOffset = -1.2
	}

	poses := make([]DevicePose, count)
	for i := range poses {
		if i >= len(s.devices) || !s.devices[i].Connected {
			continue
		}
		angle := 0.2*elapsed + float64(i)*math.Pi/3
		sin, cos := math.Sin(angle), math.Cos(angle)
		poses[i] = DevicePose{
			Pose: Pose{
				Position: [3]float64{0.5 * cos, 1.5 + heightOffset + 0.05*float64(i), 0.5 * sin},
				// Rotation about the vertical axis by angle.
				Rotation: [9]float64{
					cos, 0, sin,
					0, 1, 0,
					-sin, 0, cos,
				},
			},
			Valid:      true,
			TrackingOK: true,
		}
	}
	return poses, nil
}

func (s *SimRuntime) ResetSeatedZero() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quit {
		return errors.New("runtime has quit")
	}
	s.start = time.Now()
	return nil
}

func (s *SimRuntime) PollEvent() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return Event{}, false
	}
	event := s.events[0]
	s.events = s.events[1:]
	return event, true
}

func (s *SimRuntime) AcknowledgeQuit() {}

func (s *SimRuntime) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quit = true
}

// Connect marks a slot connected and queues an activation event,
// simulating device hotplug.
func (s *SimRuntime) Connect(index uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(index) >= len(s.devices) {
		return
	}
	s.devices[index].Connected = true
	s.events = append(s.events, Event{Type: EventDeviceActivated, DeviceIndex: index})
}

// Disconnect marks a slot disconnected and queues a deactivation event.
func (s *SimRuntime) Disconnect(index uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if int(index) >= len(s.devices) {
		return
	}
	s.devices[index].Connected = false
	s.events = append(s.events, Event{Type: EventDeviceDeactivated, DeviceIndex: index})
}

// SimCamera is an in-process tracked camera producing a moving RGBA
// test pattern with a circular alpha mask, matching the frame layout
// the real camera reports.
type SimCamera struct {
	width     uint32
	height    uint32
	frameRate float64

	mu     sync.Mutex
	start  time.Time
	handle StreamHandle
}

var _ CameraService = (*SimCamera)(nil)

// NewSimCamera creates a simulated camera with the given bounds and
// frame rate.
func NewSimCamera(width, height uint32, frameRate float64) *SimCamera {
	if frameRate <= 0 {
		frameRate = 30
	}
	return &SimCamera{
		width:     width,
		height:    height,
		frameRate: frameRate,
		start:     time.Now(),
	}
}

func (c *SimCamera) HasCamera(index uint32) (bool, error) {
	return true, nil
}

func (c *SimCamera) FirmwareDescription(index uint32) (string, error) {
	return "sim-camera fw 1.0", nil
}

func (c *SimCamera) FrameSize(index uint32) (uint32, uint32, uint32, error) {
	return c.width, c.height, c.width * c.height * 4, nil
}

func (c *SimCamera) AcquireStream(index uint32) (StreamHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle != 0 {
		return 0, errors.New("stream already acquired")
	}
	c.handle = 1
	return c.handle, nil
}

func (c *SimCamera) ReleaseStream(h StreamHandle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h == 0 || h != c.handle {
		return errors.New("invalid stream handle")
	}
	c.handle = 0
	return nil
}

func (c *SimCamera) header() FrameHeader {
	seq := uint32(time.Since(c.start).Seconds()*c.frameRate) + 1
	return FrameHeader{
		Width:         c.width,
		Height:        c.height,
		BytesPerPixel: 4,
		Sequence:      seq,
	}
}

func (c *SimCamera) FrameHeader(h StreamHandle) (FrameHeader, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h == 0 || h != c.handle {
		return FrameHeader{}, errors.New("invalid stream handle")
	}
	return c.header(), nil
}

func (c *SimCamera) FrameBuffer(h StreamHandle, dst []byte) (FrameHeader, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if h == 0 || h != c.handle {
		return FrameHeader{}, errors.New("invalid stream handle")
	}

	header := c.header()
	if len(dst) < header.RequiredBytes() {
		return FrameHeader{}, fmt.Errorf("buffer too small: %d < %d",
			len(dst), header.RequiredBytes())
	}

	cx := float64(c.width) / 2
	cy := float64(c.height) / 2
	radius := math.Min(cx, cy)
	phase := float64(header.Sequence)

	i := 0
	for y := uint32(0); y < c.height; y++ {
		for x := uint32(0); x < c.width; x++ {
			dst[i] = byte(x + uint32(phase))
			dst[i+1] = byte(y)
			dst[i+2] = byte(uint32(phase))
			dx := float64(x) - cx
			dy := float64(y) - cy
			if dx*dx+dy*dy <= radius*radius {
				dst[i+3] = 255
			} else {
				dst[i+3] = 0
			}
			i += 4
		}
	}
	return header, nil
}
