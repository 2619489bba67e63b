// Package openvr models the OpenVR tracking runtime behind small,
// swappable interfaces so the bridge logic can run against either a
// real runtime adapter or the bundled simulator.
package openvr

import (
	"fmt"
	"strings"
)

// TrackingOrigin selects the reference frame the runtime uses when
// reporting absolute device poses.
type TrackingOrigin int

const (
	OriginSeated TrackingOrigin = iota
	OriginStanding
	OriginRaw
)

// String returns the lowercase name used in configuration files.
func (o TrackingOrigin) String() string {
	switch o {
	case OriginSeated:
		return "seated"
	case OriginStanding:
		return "standing"
	case OriginRaw:
		return "raw"
	default:
		return fmt.Sprintf("origin(%d)", int(o))
	}
}

// ParseOrigin parses a case-insensitive origin name.
// Unknown values fall back to seated; the boolean reports whether the
// input was recognized so callers can warn about the fallback.
func ParseOrigin(s string) (TrackingOrigin, bool) {
	switch strings.ToLower(s) {
	case "seated":
		return OriginSeated, true
	case "standing":
		return OriginStanding, true
	case "raw":
		return OriginRaw, true
	default:
		return OriginSeated, false
	}
}

// DeviceClass classifies a tracked device. The values mirror the
// runtime's device class enumeration.
type DeviceClass int

const (
	ClassInvalid DeviceClass = iota
	ClassHMD
	ClassController
	ClassGenericTracker
	ClassTrackingReference
	ClassDisplayRedirect
)

func (c DeviceClass) String() string {
	switch c {
	case ClassHMD:
		return "hmd"
	case ClassController:
		return "controller"
	case ClassGenericTracker:
		return "generic_tracker"
	case ClassTrackingReference:
		return "tracking_reference"
	case ClassDisplayRedirect:
		return "display_redirect"
	default:
		return "invalid"
	}
}

// Supported reports whether the manager registers devices of this class.
// Base stations and display redirects are acknowledged but never managed.
func (c DeviceClass) Supported() bool {
	switch c {
	case ClassHMD, ClassController, ClassGenericTracker:
		return true
	default:
		return false
	}
}

// Pose is the rigid-body pose of one device at one sample instant,
// expressed in the tracking origin frame.
type Pose struct {
	// Position is the translation in meters.
	Position [3]float64

	// Rotation is the 3x3 rotation matrix, row-major.
	Rotation [9]float64
}

// TrackedDevice is one device managed by the DevicesManager. The serial
// number is stable across samples and is the key devices are addressed by.
type TrackedDevice struct {
	Index  uint32
	Serial string
	Class  DeviceClass
}
