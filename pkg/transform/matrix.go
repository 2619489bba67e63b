// Package transform turns tracked device poses into named rigid-body
// transforms and broadcasts them to a sink once per tick.
package transform

import (
	"github.com/vrkit/go-vrbridge/pkg/openvr"
)

// DefaultBaseFrame is the parent frame transforms are published
// against unless overridden in configuration.
const DefaultBaseFrame = "openVR_origin"

// Matrix4 is a 4x4 homogeneous transform, row-major.
type Matrix4 [16]float64

// Identity returns the identity transform.
func Identity() Matrix4 {
	var m Matrix4
	m.SetIdentity()
	return m
}

// SetIdentity resets m to the identity transform.
func (m *Matrix4) SetIdentity() {
	*m = Matrix4{}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// SetPose overwrites the rotation block and translation column with
// the pose components. The bottom row stays [0 0 0 1].
func (m *Matrix4) SetPose(p openvr.Pose) {
	m.SetIdentity()

	m[0], m[1], m[2] = p.Rotation[0], p.Rotation[1], p.Rotation[2]
	m[4], m[5], m[6] = p.Rotation[3], p.Rotation[4], p.Rotation[5]
	m[8], m[9], m[10] = p.Rotation[6], p.Rotation[7], p.Rotation[8]

	m[3] = p.Position[0]
	m[7] = p.Position[1]
	m[11] = p.Position[2]
}

// FromPose builds the homogeneous transform of a pose.
func FromPose(p openvr.Pose) Matrix4 {
	var m Matrix4
	m.SetPose(p)
	return m
}

// At returns the element at row r, column c.
func (m Matrix4) At(r, c int) float64 {
	return m[r*4+c]
}

// FrameName resolves the published child-frame name of a device:
// "hmd/<serial>", "controllers/<serial>", "trackers/<serial>", or the
// bare serial for any other class. The naming is a fixed contract;
// downstream consumers address transforms by these names.
func FrameName(class openvr.DeviceClass, serial string) string {
	switch class {
	case openvr.ClassHMD:
		return "hmd/" + serial
	case openvr.ClassController:
		return "controllers/" + serial
	case openvr.ClassGenericTracker:
		return "trackers/" + serial
	default:
		return serial
	}
}

// Record is one published transform.
type Record struct {
	Child  string  `json:"child" cbor:"child"`
	Parent string  `json:"parent" cbor:"parent"`
	Matrix Matrix4 `json:"matrix" cbor:"matrix"`
}
