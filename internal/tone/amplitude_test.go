// ABOUTME: Tests for dBFS to amplitude conversion
// ABOUTME: Verifies clamps, known values and monotonicity
package tone

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keepaudio/keepaudio-go/internal/audio"
)

func TestDBToAmplitudeInt16Floor(t *testing.T) {
	// -100 dBFS scales to about 0.33 counts; the floor keeps it audible
	// to the DAC even if not to the listener.
	assert.Equal(t, 1.0, DBToAmplitude(-100, audio.Int16))
	assert.Equal(t, 1.0, DBToAmplitude(-150, audio.Int16))
}

func TestDBToAmplitudeInt16Ceiling(t *testing.T) {
	assert.Equal(t, 32767.0, DBToAmplitude(0, audio.Int16))
	assert.Equal(t, 32767.0, DBToAmplitude(20, audio.Int16))
}

func TestDBToAmplitudeInt16KnownValues(t *testing.T) {
	// -20 dBFS is a linear gain of 0.1.
	assert.Equal(t, 3277.0, DBToAmplitude(-20, audio.Int16))
	// -6 dBFS is about half scale.
	assert.InDelta(t, 16422, DBToAmplitude(-6, audio.Int16), 1)
}

func TestDBToAmplitudeFloat32(t *testing.T) {
	assert.InDelta(t, 1e-5, DBToAmplitude(-100, audio.Float32), 1e-12)
	assert.InDelta(t, 0.1, DBToAmplitude(-20, audio.Float32), 1e-12)
	assert.Equal(t, 1.0, DBToAmplitude(0, audio.Float32))
}

func TestDBToAmplitudeMonotonic(t *testing.T) {
	for _, enc := range []audio.Encoding{audio.Int16, audio.Float32} {
		prev := math.Inf(-1)
		for db := -150.0; db <= -10.0; db += 0.5 {
			amp := DBToAmplitude(db, enc)
			assert.GreaterOrEqual(t, amp, prev, "encoding %v at %.1f dB", enc, db)
			prev = amp
		}
	}
}
