package transform

import (
	"testing"

	"github.com/vrkit/go-vrbridge/pkg/openvr"
)

func TestMatrix4_Identity(t *testing.T) {
	m := Identity()
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			want := 0.0
			if r == c {
				want = 1.0
			}
			if got := m.At(r, c); got != want {
				t.Errorf("At(%d,%d) = %v, want %v", r, c, got, want)
			}
		}
	}
}

func TestMatrix4_SetPose(t *testing.T) {
	pose := openvr.Pose{
		Position: [3]float64{0.1, 0.2, 0.3},
		Rotation: [9]float64{1, 2, 3, 4, 5, 6, 7, 8, 9},
	}

	var m Matrix4
	m.SetPose(pose)

	// Rotation block, row-major
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			want := pose.Rotation[r*3+c]
			if got := m.At(r, c); got != want {
				t.Errorf("rotation At(%d,%d) = %v, want %v", r, c, got, want)
			}
		}
	}

	// Translation column
	for r := 0; r < 3; r++ {
		if got := m.At(r, 3); got != pose.Position[r] {
			t.Errorf("translation At(%d,3) = %v, want %v", r, got, pose.Position[r])
		}
	}

	// Bottom row stays [0 0 0 1]
	for c := 0; c < 3; c++ {
		if got := m.At(3, c); got != 0 {
			t.Errorf("At(3,%d) = %v, want 0", c, got)
		}
	}
	if got := m.At(3, 3); got != 1 {
		t.Errorf("At(3,3) = %v, want 1", got)
	}
}

func TestMatrix4_SetPoseResetsScratch(t *testing.T) {
	var m Matrix4
	m.SetPose(openvr.Pose{
		Position: [3]float64{9, 9, 9},
		Rotation: [9]float64{9, 9, 9, 9, 9, 9, 9, 9, 9},
	})
	m.SetPose(openvr.Pose{
		Rotation: [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1},
	})

	if m != Identity() {
		t.Errorf("reused matrix = %v, want identity", m)
	}
}

func TestFrameName(t *testing.T) {
	tests := []struct {
		class  openvr.DeviceClass
		serial string
		want   string
	}{
		{openvr.ClassHMD, "LHR-1", "hmd/LHR-1"},
		{openvr.ClassController, "LHR-2", "controllers/LHR-2"},
		{openvr.ClassGenericTracker, "LHR-3", "trackers/LHR-3"},
		{openvr.ClassTrackingReference, "LHR-4", "LHR-4"},
		{openvr.ClassInvalid, "LHR-5", "LHR-5"},
	}

	for _, tt := range tests {
		if got := FrameName(tt.class, tt.serial); got != tt.want {
			t.Errorf("FrameName(%v, %q) = %q, want %q", tt.class, tt.serial, got, tt.want)
		}
	}
}
