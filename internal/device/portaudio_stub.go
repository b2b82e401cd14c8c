//go:build !portaudio

// ABOUTME: PortAudio stub when library not available
// ABOUTME: Provides compile-time placeholder when PortAudio not installed
package device

import (
	"fmt"

	"github.com/keepaudio/keepaudio-go/internal/audio"
)

// PortAudio backend (stub).
type PortAudio struct{}

// NewPortAudio creates the PortAudio backend.
func NewPortAudio() Backend {
	return &PortAudio{}
}

func (p *PortAudio) Name() string { return "portaudio" }

// Devices enumerates output devices.
func (p *PortAudio) Devices() ([]Info, error) {
	return nil, fmt.Errorf("PortAudio support not enabled (build with -tags portaudio)")
}

// Open opens an output stream.
func (p *PortAudio) Open(deviceIndex int, format audio.Format, framesPerBuffer, queueDepth int) (Device, error) {
	return nil, fmt.Errorf("PortAudio support not enabled (build with -tags portaudio)")
}
