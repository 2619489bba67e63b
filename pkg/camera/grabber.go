package camera

import (
	"errors"
	"fmt"
	"image"

	"github.com/vrkit/go-vrbridge/internal/log"
	"github.com/vrkit/go-vrbridge/pkg/openvr"
)

var (
	// ErrNotOpen is returned when GetImage is called before Open
	// succeeded or after Close.
	ErrNotOpen = errors.New("camera not open")

	// ErrNoNewFrame is returned when the camera has not produced a
	// frame since the last successful GetImage. It is an expected
	// condition at low camera frame rates, not a failure.
	ErrNoNewFrame = errors.New("no new frame available")
)

// Grabber pulls frames from a tracked camera. Each GetImage call
// probes the cheap frame header first and only copies pixel data when
// the sequence number shows an unconsumed frame.
//
// A Grabber is owned by a single consumer goroutine; the frame buffer
// and output image are reused across calls and are not safe for
// concurrent GetImage.
type Grabber struct {
	svc openvr.CameraService
	cfg Config

	handle  openvr.StreamHandle
	buf     []byte
	width   uint32
	height  uint32
	lastSeq uint32
	img     *image.RGBA
}

// NewGrabber creates a grabber over the given camera service.
// Call Open before pulling frames.
func NewGrabber(svc openvr.CameraService, cfg Config) *Grabber {
	return &Grabber{svc: svc, cfg: cfg}
}

// Open probes the camera, allocates the frame buffer, and acquires the
// video stream.
func (g *Grabber) Open() error {
	if g.handle != 0 {
		return errors.New("camera already open")
	}

	has, err := g.svc.HasCamera(g.cfg.DeviceIndex)
	if err != nil {
		return fmt.Errorf("camera probe failed: %w", err)
	}
	if !has {
		return fmt.Errorf("no tracked camera on device %d", g.cfg.DeviceIndex)
	}

	// Reading the firmware description doubles as a check that
	// camera communication works as expected.
	fw, err := g.svc.FirmwareDescription(g.cfg.DeviceIndex)
	if err != nil {
		return fmt.Errorf("failed to read camera firmware description: %w", err)
	}
	log.Info("camera firmware", "description", fw)

	width, height, bufferBytes, err := g.svc.FrameSize(g.cfg.DeviceIndex)
	if err != nil {
		return fmt.Errorf("failed to query camera frame size: %w", err)
	}
	if bufferBytes > 0 && int(bufferBytes) != len(g.buf) {
		g.buf = make([]byte, bufferBytes)
	}
	g.width, g.height = width, height
	g.lastSeq = 0

	handle, err := g.svc.AcquireStream(g.cfg.DeviceIndex)
	if err != nil {
		return fmt.Errorf("failed to acquire video stream: %w", err)
	}
	g.handle = handle

	log.Info("camera stream acquired", "width", width, "height", height)
	return nil
}

// Close releases the video stream and the frame buffer. GetImage calls
// after Close fail with ErrNotOpen.
func (g *Grabber) Close() error {
	if g.handle == 0 {
		return nil
	}
	err := g.svc.ReleaseStream(g.handle)
	g.handle = 0
	g.buf = nil
	g.img = nil
	if err != nil {
		return fmt.Errorf("failed to release video stream: %w", err)
	}
	return nil
}

// GetImage returns the next distinct camera frame as an RGB raster.
// When no frame newer than the last consumed one exists it returns
// ErrNoNewFrame and leaves the previous image untouched. Provider
// errors leave the grabber state unchanged so the next call can retry.
//
// The returned image is reused across calls; callers keeping a frame
// across GetImage calls must copy it.
func (g *Grabber) GetImage() (*image.RGBA, error) {
	if g.handle == 0 {
		return nil, ErrNotOpen
	}

	// Header-only probe, near-zero cost.
	header, err := g.svc.FrameHeader(g.handle)
	if err != nil {
		return nil, fmt.Errorf("failed to get frame header: %w", err)
	}

	if header.Sequence == g.lastSeq {
		return nil, ErrNoNewFrame
	}

	// The frame changed, do the expensive pixel copy. Reallocate the
	// buffer first when the camera reports a different frame size.
	if needed := header.RequiredBytes(); needed > 0 && needed != len(g.buf) {
		g.buf = make([]byte, needed)
	}

	header, err = g.svc.FrameBuffer(g.handle, g.buf)
	if err != nil {
		return nil, fmt.Errorf("failed to get frame buffer: %w", err)
	}

	g.lastSeq = header.Sequence
	g.width, g.height = header.Width, header.Height
	g.unpack()
	return g.img, nil
}

// unpack converts the RGBA frame buffer into the output image. Pixels
// with a zero alpha byte come out black; all others keep their RGB
// bytes unchanged.
func (g *Grabber) unpack() {
	w, h := int(g.width), int(g.height)
	if g.img == nil || g.img.Rect.Dx() != w || g.img.Rect.Dy() != h {
		g.img = image.NewRGBA(image.Rect(0, 0, w, h))
	}

	src := g.buf
	dst := g.img.Pix
	// The fetch header may claim larger dimensions than the buffer the
	// probe header sized; only the bytes actually fetched exist.
	n := 4 * w * h
	if n > len(src) {
		n = len(src)
	}
	for i := 0; i+3 < n; i += 4 {
		if src[i+3] > 0 {
			dst[i] = src[i]
			dst[i+1] = src[i+1]
			dst[i+2] = src[i+2]
		} else {
			dst[i] = 0
			dst[i+1] = 0
			dst[i+2] = 0
		}
		dst[i+3] = 255
	}
}

// Width returns the frame width in pixels.
func (g *Grabber) Width() int { return int(g.width) }

// Height returns the frame height in pixels.
func (g *Grabber) Height() int { return int(g.height) }

// LastSequence returns the sequence number of the last consumed frame.
func (g *Grabber) LastSequence() uint32 { return g.lastSeq }
