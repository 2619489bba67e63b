package transform

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/vrkit/go-vrbridge/internal/log"
	"github.com/vrkit/go-vrbridge/pkg/openvr"
)

// PoseProvider is the tracking surface the broadcaster consumes.
// *openvr.DevicesManager satisfies it.
type PoseProvider interface {
	// ComputePoses refreshes the pose set of all devices in one
	// batched call.
	ComputePoses() error

	// ManagedDevices enumerates the managed serial numbers. The
	// order may change between calls.
	ManagedDevices() []string

	// Type returns the class of a managed device.
	Type(serial string) openvr.DeviceClass

	// Pose returns the latest pose of a device; false means no pose
	// is available this cycle.
	Pose(serial string) (openvr.Pose, bool)
}

// Sink receives published transforms. Publication is fire-and-forget;
// sinks handle their own delivery errors.
type Sink interface {
	Publish(child, parent string, m Matrix4)
}

// Broadcaster samples every managed device once per tick and publishes
// its transform under a deterministic frame name.
//
// A Broadcaster is owned by a single ticking goroutine: the scratch
// matrix is reused across devices and Tick must not be invoked
// concurrently.
type Broadcaster struct {
	provider  PoseProvider
	sink      Sink
	baseFrame string

	scratch Matrix4

	ticks     atomic.Uint64
	published atomic.Uint64
}

// NewBroadcaster creates a broadcaster publishing against baseFrame,
// or DefaultBaseFrame when empty.
func NewBroadcaster(provider PoseProvider, sink Sink, baseFrame string) *Broadcaster {
	if baseFrame == "" {
		baseFrame = DefaultBaseFrame
	}
	return &Broadcaster{
		provider:  provider,
		sink:      sink,
		baseFrame: baseFrame,
	}
}

// Tick runs one sample-and-publish cycle. When the batched refresh
// fails the whole tick is skipped and no transform is published.
// Devices without a pose this cycle are skipped silently.
func (b *Broadcaster) Tick() error {
	if err := b.provider.ComputePoses(); err != nil {
		return fmt.Errorf("tick aborted: %w", err)
	}
	b.ticks.Add(1)

	for _, serial := range b.provider.ManagedDevices() {
		pose, ok := b.provider.Pose(serial)
		if !ok {
			continue
		}

		b.scratch.SetPose(pose)
		b.sink.Publish(FrameName(b.provider.Type(serial), serial), b.baseFrame, b.scratch)
		b.published.Add(1)
	}
	return nil
}

// Run ticks at the given period until the context is cancelled.
// Running in a single goroutine serializes the cycles.
func (b *Broadcaster) Run(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	log.Info("pose broadcaster started",
		"period", period.String(), "base_frame", b.baseFrame)

	for {
		select {
		case <-ctx.Done():
			log.Info("pose broadcaster stopped",
				"ticks", b.Ticks(), "published", b.Published())
			return
		case <-ticker.C:
			if err := b.Tick(); err != nil {
				log.Error("broadcast tick failed", "error", err)
			}
		}
	}
}

// Ticks returns the number of completed cycles.
func (b *Broadcaster) Ticks() uint64 { return b.ticks.Load() }

// Published returns the total number of published transforms.
func (b *Broadcaster) Published() uint64 { return b.published.Load() }

// BaseFrame returns the parent frame transforms are published against.
func (b *Broadcaster) BaseFrame() string { return b.baseFrame }
