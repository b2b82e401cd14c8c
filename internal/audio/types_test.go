// ABOUTME: Tests for audio type definitions
// ABOUTME: Verifies encoding sizes and preference parsing
package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodingBytesPerSample(t *testing.T) {
	assert.Equal(t, 2, Int16.BytesPerSample())
	assert.Equal(t, 4, Float32.BytesPerSample())
}

func TestFormatBytesPerFrame(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		want   int
	}{
		{"mono int16", Format{SampleRate: 48000, Channels: 1, Encoding: Int16}, 2},
		{"stereo int16", Format{SampleRate: 48000, Channels: 2, Encoding: Int16}, 4},
		{"mono float32", Format{SampleRate: 48000, Channels: 1, Encoding: Float32}, 4},
		{"stereo float32", Format{SampleRate: 48000, Channels: 2, Encoding: Float32}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.format.BytesPerFrame())
		})
	}
}

func TestParsePreference(t *testing.T) {
	tests := []struct {
		in      string
		want    Preference
		wantErr bool
	}{
		{"auto", PreferAuto, false},
		{"", PreferAuto, false},
		{"int16", PreferInt16, false},
		{"fixed16", PreferInt16, false},
		{"float32", PreferFloat32, false},
		{"f64", PreferAuto, true},
	}

	for _, tt := range tests {
		got, err := ParsePreference(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		assert.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestPreferenceString(t *testing.T) {
	assert.Equal(t, "auto", PreferAuto.String())
	assert.Equal(t, "int16", PreferInt16.String())
	assert.Equal(t, "float32", PreferFloat32.String())
}
