// ABOUTME: Mock device backend for engine and ring tests
// ABOUTME: Simulates completion pacing, failures, reset and close accounting
package engine

import (
	"errors"
	"sync"

	"github.com/keepaudio/keepaudio-go/internal/audio"
	"github.com/keepaudio/keepaudio-go/internal/device"
)

// mockDevice reports each submitted buffer as completed after it has been
// "played" for completeAfterPolls calls, loosely modelling a device that
// finishes a buffer every N poll intervals.
type mockDevice struct {
	mu sync.Mutex

	completeAfterPolls int
	pending            map[int]int // token -> polls remaining
	order              []int

	submits    int
	resetCalls int
	closeCalls int

	submitErrAfter int // fail the Nth submit (1-based), 0 = never
	pollErr        error
	holdOnReset    bool // keep pending buffers in flight after Reset
}

func newMockDevice() *mockDevice {
	return &mockDevice{
		completeAfterPolls: 1,
		pending:            map[int]int{},
	}
}

func (d *mockDevice) Submit(token int, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.submits++
	if d.submitErrAfter > 0 && d.submits >= d.submitErrAfter {
		return errors.New("mock device write failure")
	}
	if _, dup := d.pending[token]; dup {
		return errors.New("token submitted twice")
	}
	d.pending[token] = d.completeAfterPolls
	d.order = append(d.order, token)
	return nil
}

func (d *mockDevice) PollCompleted() ([]int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pollErr != nil {
		return nil, d.pollErr
	}

	var done []int
	var stillPending []int
	for _, token := range d.order {
		d.pending[token]--
		if d.pending[token] <= 0 {
			done = append(done, token)
			delete(d.pending, token)
		} else {
			stillPending = append(stillPending, token)
		}
	}
	d.order = stillPending
	return done, nil
}

func (d *mockDevice) Reset() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.resetCalls++
	if !d.holdOnReset {
		// Flush: everything completes on the next poll.
		for token := range d.pending {
			d.pending[token] = 1
		}
	}
	return nil
}

func (d *mockDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closeCalls++
	if d.closeCalls > 1 {
		return errors.New("mock device closed twice")
	}
	return nil
}

// mockBackend hands out a prepared mock device for the default selector.
type mockBackend struct {
	dev     *mockDevice
	openErr error
	opened  []audio.Encoding
}

func (b *mockBackend) Name() string { return "mock" }

func (b *mockBackend) Devices() ([]device.Info, error) {
	return []device.Info{{Index: 0, Name: "mock output", MaxOutputChannels: 2}}, nil
}

func (b *mockBackend) Open(deviceIndex int, format audio.Format, framesPerBuffer, queueDepth int) (device.Device, error) {
	b.opened = append(b.opened, format.Encoding)
	if b.openErr != nil {
		return nil, b.openErr
	}
	return b.dev, nil
}
