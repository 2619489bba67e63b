// Package camera pulls video frames from the headset's tracked camera
// and exposes them as conventional RGB images.
package camera

// Config holds the tracked-camera settings.
type Config struct {
	// DeviceIndex is the runtime slot of the device carrying the
	// camera. Slot 0 is the headset.
	DeviceIndex uint32 `json:"device_index"`

	// Quality is the JPEG quality (1-100) used when frames are
	// encoded for streaming.
	Quality int `json:"quality"`

	// PollRate is the target frame-pull rate in Hz. Pulling faster
	// than the camera produces frames just yields "no new frame".
	PollRate int `json:"poll_rate"`
}

// DefaultConfig returns the recommended camera configuration.
func DefaultConfig() Config {
	return Config{
		DeviceIndex: 0,
		Quality:     85,
		PollRate:    30,
	}
}

// Validate checks if the config values are within valid ranges.
// Returns a list of validation errors, or nil if valid.
func (c *Config) Validate() []string {
	var errs []string
	if c.Quality < 1 || c.Quality > 100 {
		errs = append(errs, "quality must be between 1 and 100")
	}
	if c.PollRate < 1 || c.PollRate > 120 {
		errs = append(errs, "poll_rate must be between 1 and 120")
	}
	return errs
}
