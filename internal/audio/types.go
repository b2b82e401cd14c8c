// ABOUTME: Audio type definitions
// ABOUTME: Defines sample encodings, stream formats and size helpers
package audio

import "fmt"

// Encoding identifies the numeric representation of one sample.
type Encoding int

const (
	// Int16 is 16-bit signed little-endian PCM.
	Int16 Encoding = iota
	// Float32 is 32-bit IEEE float little-endian PCM.
	Float32
)

func (e Encoding) String() string {
	switch e {
	case Int16:
		return "int16"
	case Float32:
		return "float32"
	default:
		return fmt.Sprintf("encoding(%d)", int(e))
	}
}

// BytesPerSample returns the storage size of one sample.
func (e Encoding) BytesPerSample() int {
	switch e {
	case Float32:
		return 4
	default:
		return 2
	}
}

// Preference selects which encodings a device open may attempt.
type Preference int

const (
	// PreferAuto picks an encoding from the requested level and allows one
	// fallback attempt with the other encoding.
	PreferAuto Preference = iota
	// PreferInt16 attempts Int16 only, no fallback.
	PreferInt16
	// PreferFloat32 attempts Float32 only, no fallback.
	PreferFloat32
)

func (p Preference) String() string {
	switch p {
	case PreferInt16:
		return "int16"
	case PreferFloat32:
		return "float32"
	default:
		return "auto"
	}
}

// ParsePreference maps a CLI value to a Preference.
func ParsePreference(s string) (Preference, error) {
	switch s {
	case "auto", "":
		return PreferAuto, nil
	case "int16", "fixed16":
		return PreferInt16, nil
	case "float32":
		return PreferFloat32, nil
	default:
		return PreferAuto, fmt.Errorf("unknown encoding preference %q (use auto, int16 or float32)", s)
	}
}

// Format describes an output stream format.
type Format struct {
	SampleRate int
	Channels   int
	Encoding   Encoding
}

// BytesPerFrame returns the size of one frame (one sample per channel).
func (f Format) BytesPerFrame() int {
	return f.Channels * f.Encoding.BytesPerSample()
}
