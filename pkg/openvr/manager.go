package openvr

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vrkit/go-vrbridge/internal/log"
)

// ErrNotInitialized is returned by manager operations invoked before a
// successful Initialize.
var ErrNotInitialized = errors.New("devices manager not initialized")

// eventPumpInterval is how often queued runtime events are drained.
const eventPumpInterval = time.Second

// DevicesManager owns the set of tracked devices and their latest pose
// samples. Devices are keyed by serial number. A background pump keeps
// the set in sync with device hotplug events from the runtime.
//
// ComputePoses, ManagedDevices, Type and Pose are safe for concurrent
// use; the caller is expected to serialize whole sample-and-publish
// cycles itself.
type DevicesManager struct {
	rt Runtime

	// pumpInterval is fixed before Initialize; tests shorten it.
	pumpInterval time.Duration

	mu          sync.Mutex
	origin      TrackingOrigin
	devices     map[string]TrackedDevice
	poses       []DevicePose
	initialized bool

	stop chan struct{}
	done chan struct{}
}

// NewDevicesManager creates a manager on top of the given runtime.
// Call Initialize before using it.
func NewDevicesManager(rt Runtime) *DevicesManager {
	return &DevicesManager{
		rt:           rt,
		pumpInterval: eventPumpInterval,
		devices:      make(map[string]TrackedDevice),
	}
}

// Initialized reports whether Initialize completed successfully.
func (m *DevicesManager) Initialized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initialized
}

// Initialize scans the runtime for connected devices of supported
// classes, registers them, and starts the event pump.
func (m *DevicesManager) Initialize(origin TrackingOrigin) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return errors.New("devices manager already initialized")
	}
	m.origin = origin

	log.Debug("scanning for connected devices")
	found := 0
	for i := uint32(0); i < m.rt.MaxDeviceCount(); i++ {
		if !m.rt.Connected(i) {
			continue
		}
		found++
		if err := m.addDeviceLocked(i); err != nil {
			return fmt.Errorf("failed to add device with index %d: %w", i, err)
		}
	}
	log.Info("tracking runtime initialized",
		"origin", origin.String(),
		"connected", found,
		"managed", len(m.devices))

	// Events queued before startup describe a state the scan above
	// already captured.
	m.clearEventsLocked()

	m.initialized = true
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	go m.eventPump(m.stop, m.done)

	return nil
}

// AddDevice registers the device in the given slot. Devices of
// unsupported classes are acknowledged and skipped without error.
func (m *DevicesManager) AddDevice(index uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addDeviceLocked(index)
}

func (m *DevicesManager) addDeviceLocked(index uint32) error {
	if !m.rt.Connected(index) {
		return fmt.Errorf("device with index %d is not connected", index)
	}

	serial, err := m.rt.Serial(index)
	if err != nil {
		return fmt.Errorf("failed to read serial of device %d: %w", index, err)
	}

	class := m.rt.Class(index)
	if !class.Supported() {
		log.Info("skipping device with unsupported class",
			"serial", serial, "class", class.String())
		return nil
	}

	if _, ok := m.devices[serial]; ok {
		return fmt.Errorf("device %s already inserted", serial)
	}

	m.devices[serial] = TrackedDevice{Index: index, Serial: serial, Class: class}
	log.Info("device inserted", "serial", serial, "index", index, "class", class.String())
	return nil
}

// RemoveDevice drops a device from the managed set.
func (m *DevicesManager) RemoveDevice(serial string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeDeviceLocked(serial)
}

func (m *DevicesManager) removeDeviceLocked(serial string) error {
	if _, ok := m.devices[serial]; !ok {
		return fmt.Errorf("device with serial %s not found", serial)
	}
	delete(m.devices, serial)
	log.Info("device removed", "serial", serial)
	return nil
}

// ManagedDevices returns the serial numbers of all managed devices.
// The order is not stable across calls.
func (m *DevicesManager) ManagedDevices() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	serials := make([]string, 0, len(m.devices))
	for serial := range m.devices {
		serials = append(serials, serial)
	}
	return serials
}

// Type returns the class of a managed device, or ClassInvalid when the
// serial is unknown or the manager is not initialized.
func (m *DevicesManager) Type(serial string) DeviceClass {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		log.Error("type query before initialization")
		return ClassInvalid
	}
	device, ok := m.devices[serial]
	if !ok {
		log.Error("type query for unknown device", "serial", serial)
		return ClassInvalid
	}
	return device.Class
}

// ComputePoses performs one batched pose refresh for all device slots.
// Subsequent Pose calls read from the refreshed sample set.
func (m *DevicesManager) ComputePoses() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return ErrNotInitialized
	}
	poses, err := m.rt.ComputePoses(m.origin, m.rt.MaxDeviceCount())
	if err != nil {
		return fmt.Errorf("batched pose refresh failed: %w", err)
	}
	m.poses = poses
	return nil
}

// Pose returns the latest sample of a managed device. The boolean is
// false when the device is unknown, disconnected, or its sample is not
// usable this cycle; that is a transient gap, not an error.
func (m *DevicesManager) Pose(serial string) (Pose, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		log.Error("pose query before initialization")
		return Pose{}, false
	}

	device, ok := m.devices[serial]
	if !ok {
		log.Error("pose query for unknown device", "serial", serial)
		return Pose{}, false
	}
	if !m.rt.Connected(device.Index) {
		return Pose{}, false
	}
	if int(device.Index) >= len(m.poses) {
		return Pose{}, false
	}

	sample := m.poses[device.Index]
	if !sample.TrackingOK {
		log.Warn("device tracking state not ok", "serial", serial)
		return Pose{}, false
	}
	if !sample.Valid {
		log.Warn("device pose not valid", "serial", serial)
		return Pose{}, false
	}
	return sample.Pose, true
}

// ResetSeatedPosition re-zeros the seated reference to the current head
// pose. Idempotent; on failure the prior origin stays in effect.
func (m *DevicesManager) ResetSeatedPosition() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return ErrNotInitialized
	}
	if err := m.rt.ResetSeatedZero(); err != nil {
		return fmt.Errorf("failed to reset seated position: %w", err)
	}
	return nil
}

// Close stops the event pump and shuts the runtime down. Safe to call
// more than once, and after the runtime already quit on its own.
func (m *DevicesManager) Close() error {
	m.mu.Lock()
	if m.stop == nil {
		m.mu.Unlock()
		return nil
	}
	stop, done := m.stop, m.done
	m.stop = nil
	wasInitialized := m.initialized
	m.initialized = false
	m.mu.Unlock()

	close(stop)
	<-done
	if wasInitialized {
		m.rt.Shutdown()
	}
	return nil
}

// eventPump drains queued runtime events until Close. The channels are
// passed in rather than read from the struct: Close clears m.stop under
// the mutex while the pump may be mid-drain, and a field read here
// would race that write.
func (m *DevicesManager) eventPump(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.pumpInterval)
	defer ticker.Stop()

	log.Debug("event pump started")
	for {
		select {
		case <-stop:
			log.Debug("event pump exiting")
			return
		case <-ticker.C:
			m.ProcessEvents()
		}
	}
}

// ProcessEvents drains and applies all currently queued runtime events.
func (m *DevicesManager) ProcessEvents() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return
	}

	for {
		event, ok := m.rt.PollEvent()
		if !ok {
			return
		}

		switch event.Type {
		case EventDeviceActivated:
			if err := m.addDeviceLocked(event.DeviceIndex); err != nil {
				log.Warn("failed to add activated device",
					"index", event.DeviceIndex, "error", err)
			}

		case EventDeviceDeactivated:
			for serial, device := range m.devices {
				if device.Index == event.DeviceIndex {
					if err := m.removeDeviceLocked(serial); err != nil {
						log.Warn("failed to remove deactivated device",
							"serial", serial, "error", err)
					}
				}
			}

		case EventQuit:
			m.rt.AcknowledgeQuit()
			for serial := range m.devices {
				if err := m.removeDeviceLocked(serial); err != nil {
					log.Warn("failed to remove device on quit",
						"serial", serial, "error", err)
				}
			}
			m.initialized = false
			m.rt.Shutdown()
			return
		}
	}
}

func (m *DevicesManager) clearEventsLocked() {
	cleared := 0
	for {
		if _, ok := m.rt.PollEvent(); !ok {
			break
		}
		cleared++
	}
	log.Debug("cleared stale runtime events", "count", cleared)
}
