// ABOUTME: dBFS to linear amplitude conversion
// ABOUTME: Applies the encoding-specific scaling and clamps
package tone

import (
	"math"

	"github.com/keepaudio/keepaudio-go/internal/audio"
)

// DBToAmplitude converts a level in dBFS into the linear sample amplitude
// for the given encoding.
//
// For Int16 the result is scaled to the 16-bit range and clamped to
// [1, 32767]. The floor of 1 keeps the stream from being exactly all-zero:
// some devices treat a pure zero stream as silence and power down anyway,
// which is the condition this tool exists to prevent.
//
// For Float32 the linear gain is returned directly. Devices that
// special-case a 0.0 stream as hardware silence can still defeat very low
// levels here; known edge case, not special-cased.
func DBToAmplitude(levelDB float64, enc audio.Encoding) float64 {
	linear := math.Pow(10, levelDB/20)
	if enc == audio.Float32 {
		return linear
	}

	scaled := math.Round(linear * 32767)
	if scaled < 1 {
		return 1
	}
	if scaled > 32767 {
		return 32767
	}
	return scaled
}
